package game

import (
	"context"
	"fmt"
	"sort"
)

// AbilityDef describes a persistent ability and the hooks it contributes.
type AbilityDef struct {
	Name        string
	Description string
	Hooks       []Hook
}

// Activatable reports whether the ability offers an OptionalActions activation.
func (a *AbilityDef) Activatable() bool {
	for _, h := range a.Hooks {
		if h.Trigger == TriggerActivate {
			return true
		}
	}
	return false
}

// EventDef is a one-shot event card handler.
type EventDef struct {
	Name        string
	Description string
	Resolve     func(ctx context.Context, g *Game, actor *Player) error
}

// EnvironmentDef is an environment-change card handler.
type EnvironmentDef struct {
	Name        string
	Description string
	Apply       func(ctx context.Context, g *Game, actor *Player) error
}

// The registries are filled in init functions because handlers reach back
// into them (Effect Copy, nested tile resolution, hook dispatch).
var (
	AbilityRegistry     = map[string]*AbilityDef{}
	EventRegistry       = map[string]*EventDef{}
	EnvironmentRegistry = map[string]*EnvironmentDef{}
)

func registerAbilities(defs ...*AbilityDef) {
	for _, d := range defs {
		AbilityRegistry[d.Name] = d
	}
}

func registerEvents(defs ...*EventDef) {
	for _, d := range defs {
		EventRegistry[d.Name] = d
	}
}

func registerEnvironments(defs ...*EnvironmentDef) {
	for _, d := range defs {
		EnvironmentRegistry[d.Name] = d
	}
}

// LookupAbility returns an ability definition by name.
// Panics if the ability is not found.
func LookupAbility(name string) *AbilityDef {
	def, ok := AbilityRegistry[name]
	if !ok {
		panic(fmt.Sprintf("ability not found in registry: %q", name))
	}
	return def
}

// LookupEvent returns an event definition by name.
// Panics if the event is not found.
func LookupEvent(name string) *EventDef {
	def, ok := EventRegistry[name]
	if !ok {
		panic(fmt.Sprintf("event not found in registry: %q", name))
	}
	return def
}

// LookupEnvironment returns an environment definition by name.
// Panics if the environment change is not found.
func LookupEnvironment(name string) *EnvironmentDef {
	def, ok := EnvironmentRegistry[name]
	if !ok {
		panic(fmt.Sprintf("environment change not found in registry: %q", name))
	}
	return def
}

// describe returns the registry description for a named card of kind.
func describe(kind CardKind, name string) (string, bool) {
	switch kind {
	case KindAbility:
		if d, ok := AbilityRegistry[name]; ok {
			return d.Description, true
		}
	case KindEvent:
		if d, ok := EventRegistry[name]; ok {
			return d.Description, true
		}
	case KindEnvironment:
		if d, ok := EnvironmentRegistry[name]; ok {
			return d.Description, true
		}
	}
	return "", false
}

// Names returns the sorted keys of a registry.
func Names[T any](registry map[string]T) []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// --- Dispatch ---

// dispatch applies every matching hook held by an active player, in seat
// order, then ability order within a seat.
func (g *Game) dispatch(ctx context.Context, e *Effect) error {
	for _, holder := range g.Players {
		if holder.Eliminated {
			continue
		}
		for _, card := range append([]*Card(nil), holder.Abilities...) {
			if err := g.applyHooks(ctx, holder, card, e); err != nil {
				return err
			}
			if g.Over {
				return nil
			}
		}
	}
	return nil
}

// dispatchCard applies only the hooks of one held card.
func (g *Game) dispatchCard(ctx context.Context, holder *Player, card *Card, e *Effect) error {
	return g.applyHooks(ctx, holder, card, e)
}

func (g *Game) applyHooks(ctx context.Context, holder *Player, card *Card, e *Effect) error {
	def, ok := AbilityRegistry[card.Effect]
	if !ok {
		return nil
	}
	for _, h := range def.Hooks {
		if !h.matches(holder, e) {
			continue
		}
		if err := h.Apply(ctx, g, holder, e); err != nil {
			return fmt.Errorf("%s %s: %w", def.Name, e.Trigger, err)
		}
	}
	return nil
}
