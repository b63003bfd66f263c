package game

import (
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalogue is the composition of every deck in a game.
type Catalogue struct {
	Cooperation  int
	Deception    int
	Evolution    int
	Events       []string
	Abilities    []string
	Environments []string
}

// StandardCatalogue returns the standard composition: 25 Cooperation,
// 25 Deception, 125 Evolution and one copy of every registered event,
// ability and environment change.
func StandardCatalogue() Catalogue {
	return Catalogue{
		Cooperation:  25,
		Deception:    25,
		Evolution:    125,
		Events:       Names(EventRegistry),
		Abilities:    Names(AbilityRegistry),
		Environments: Names(EnvironmentRegistry),
	}
}

// Validate checks every named card against the registries.
func (c Catalogue) Validate() error {
	if c.Cooperation < 0 || c.Deception < 0 || c.Evolution < 0 {
		return fmt.Errorf("negative card count in catalogue")
	}
	check := func(kind CardKind, names []string) error {
		for _, name := range names {
			if _, ok := describe(kind, name); !ok {
				return fmt.Errorf("%w: %s %q", ErrUnknownCard, kind, name)
			}
		}
		return nil
	}
	if err := check(KindEvent, c.Events); err != nil {
		return err
	}
	if err := check(KindAbility, c.Abilities); err != nil {
		return err
	}
	return check(KindEnvironment, c.Environments)
}

// Size is the total number of cards the catalogue mints.
func (c Catalogue) Size() int {
	return c.Cooperation + c.Deception + c.Evolution + len(c.Events) + len(c.Abilities) + len(c.Environments)
}

// buildDecks mints every card with a unique ID and builds one deck per kind.
func (c Catalogue) buildDecks(rng *rand.Rand, shuffle bool) map[CardKind]*Deck {
	id := 0
	mint := func(kind CardKind, name, effect string) *Card {
		id++
		desc, _ := describe(kind, effect)
		return &Card{ID: id, Kind: kind, Name: name, Description: desc, Effect: effect}
	}
	plain := func(kind CardKind, n int, desc string) []*Card {
		cards := make([]*Card, 0, n)
		for i := 0; i < n; i++ {
			card := mint(kind, kind.String(), "")
			card.Description = desc
			cards = append(cards, card)
		}
		return cards
	}
	named := func(kind CardKind, names []string) []*Card {
		cards := make([]*Card, 0, len(names))
		for _, name := range names {
			cards = append(cards, mint(kind, name, name))
		}
		return cards
	}

	return map[CardKind]*Deck{
		KindCooperation: NewDeck(KindCooperation, plain(KindCooperation, c.Cooperation, "Declare Cooperate"), rng, shuffle),
		KindDeception:   NewDeck(KindDeception, plain(KindDeception, c.Deception, "Declare Deceive"), rng, shuffle),
		KindEvolution:   NewDeck(KindEvolution, plain(KindEvolution, c.Evolution, "One step toward victory"), rng, shuffle),
		KindEvent:       NewDeck(KindEvent, named(KindEvent, c.Events), rng, shuffle),
		KindAbility:     NewDeck(KindAbility, named(KindAbility, c.Abilities), rng, shuffle),
		KindEnvironment: NewDeck(KindEnvironment, named(KindEnvironment, c.Environments), rng, shuffle),
	}
}

// --- YAML catalogue files ---

// CatalogueFile is the top-level YAML structure of a catalogue override.
// Omitted fields keep the standard composition.
type CatalogueFile struct {
	Cooperation  *int        `yaml:"cooperation"`
	Deception    *int        `yaml:"deception"`
	Evolution    *int        `yaml:"evolution"`
	Events       []CardEntry `yaml:"events"`
	Abilities    []CardEntry `yaml:"abilities"`
	Environments []CardEntry `yaml:"environments"`
}

// CardEntry represents a named card and its count.
type CardEntry struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

// ParseCatalogueFile reads a YAML catalogue override from path.
func ParseCatalogueFile(path string) (Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalogue{}, err
	}
	return ParseCatalogue(data)
}

// ParseCatalogue decodes a YAML catalogue override and validates it.
func ParseCatalogue(data []byte) (Catalogue, error) {
	var cf CatalogueFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return Catalogue{}, fmt.Errorf("parse catalogue YAML: %w", err)
	}

	cat := StandardCatalogue()
	if cf.Cooperation != nil {
		cat.Cooperation = *cf.Cooperation
	}
	if cf.Deception != nil {
		cat.Deception = *cf.Deception
	}
	if cf.Evolution != nil {
		cat.Evolution = *cf.Evolution
	}
	if cf.Events != nil {
		cat.Events = expand(cf.Events)
	}
	if cf.Abilities != nil {
		cat.Abilities = expand(cf.Abilities)
	}
	if cf.Environments != nil {
		cat.Environments = expand(cf.Environments)
	}
	if err := cat.Validate(); err != nil {
		return Catalogue{}, err
	}
	return cat, nil
}

func expand(entries []CardEntry) []string {
	names := []string{}
	for _, e := range entries {
		count := e.Count
		if count == 0 {
			count = 1
		}
		for i := 0; i < count; i++ {
			names = append(names, e.Name)
		}
	}
	return names
}
