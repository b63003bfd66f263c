package game

import (
	"fmt"

	"github.com/peterkuimelis/evogame/internal/log"
)

// ModifierKind names a game-wide time-boxed rule change.
type ModifierKind int

const (
	ModEnergyAbsorption ModifierKind = iota
	ModClimateUpheaval
	ModTruce
	ModDeceptionCarnival
	ModCooperationWave
	ModPleasantClimate
	ModDeterioration
)

func (m ModifierKind) String() string {
	switch m {
	case ModEnergyAbsorption:
		return "Energy Absorption"
	case ModClimateUpheaval:
		return "Climate Upheaval"
	case ModTruce:
		return "Truce"
	case ModDeceptionCarnival:
		return "Deception Carnival"
	case ModCooperationWave:
		return "Cooperation Wave"
	case ModPleasantClimate:
		return "Pleasant Climate"
	case ModDeterioration:
		return "Environmental Deterioration"
	default:
		return "Unknown"
	}
}

// Expiry is when a modifier stops applying.
type Expiry int

const (
	ExpireEndOfTurn Expiry = iota // end of the turn it started in
	ExpireOwnerTurn               // start of the owner's next turn
	ExpireRounds                  // after Rounds round boundaries
)

// Modifier is an active time-boxed rule change with an explicit countdown.
type Modifier struct {
	Kind   ModifierKind
	Owner  int
	Expiry Expiry
	Rounds int // remaining round boundaries for ExpireRounds
}

func (g *Game) addModifier(kind ModifierKind, owner *Player, expiry Expiry, rounds int) {
	g.modifiers = append(g.modifiers, &Modifier{Kind: kind, Owner: owner.ID, Expiry: expiry, Rounds: rounds})
	var details string
	switch expiry {
	case ExpireEndOfTurn:
		details = "until end of turn"
	case ExpireOwnerTurn:
		details = fmt.Sprintf("until %s's next turn", owner.Name)
	default:
		details = fmt.Sprintf("%d rounds", rounds)
	}
	g.log(log.NewModifierStartEvent(owner.ID, kind.String(), details))
}

// Modifiers returns a snapshot of the active modifiers.
func (g *Game) Modifiers() []Modifier {
	out := make([]Modifier, len(g.modifiers))
	for i, m := range g.modifiers {
		out[i] = *m
	}
	return out
}

func (g *Game) hasModifier(kind ModifierKind) bool {
	for _, m := range g.modifiers {
		if m.Kind == kind {
			return true
		}
	}
	return false
}

func (g *Game) modifiersOf(kind ModifierKind) []*Modifier {
	var out []*Modifier
	for _, m := range g.modifiers {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// expireModifiers drops every modifier for which done returns true.
func (g *Game) expireModifiers(done func(m *Modifier) bool) {
	kept := g.modifiers[:0]
	for _, m := range g.modifiers {
		if done(m) {
			g.log(log.NewModifierEndEvent(m.Owner, m.Kind.String()))
			continue
		}
		kept = append(kept, m)
	}
	g.modifiers = kept
}

// tickRound counts down round-based modifiers at a round boundary.
func (g *Game) tickRound() {
	g.expireModifiers(func(m *Modifier) bool {
		if m.Expiry != ExpireRounds {
			return false
		}
		m.Rounds--
		return m.Rounds <= 0
	})
}

// effectiveTile applies Climate Upheaval's ResourceRich/NaturalDisaster swap.
func (g *Game) effectiveTile(t TileType) TileType {
	if !g.hasModifier(ModClimateUpheaval) {
		return t
	}
	switch t {
	case TileResourceRich:
		return TileNaturalDisaster
	case TileNaturalDisaster:
		return TileResourceRich
	}
	return t
}
