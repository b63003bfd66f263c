package game

import "context"

// Trigger names the point in resolution at which a hook fires.
type Trigger int

const (
	TriggerAcquire      Trigger = iota // the ability card enters the holder's play area
	TriggerBeforeReveal                // a declaration is chosen but not yet revealed
	TriggerPlayed                      // a declaration was revealed and its card consumed
	TriggerDrawAmount                  // a tile payout amount is being computed
	TriggerForfeit                     // an evolution forfeit amount is being computed
	TriggerOutcome                     // a payoff was applied
	TriggerSwampPeek                   // a deceiver is about to peek the ability deck
	TriggerSwampAfter                  // a swamp resolution finished
	TriggerRoll                        // the movement die was rolled
	TriggerEnvironment                 // an environment card is about to be applied
	TriggerTrustTargets                // all TrustEvolution targets are chosen
	TriggerElimination                 // the holder is about to be eliminated
	TriggerStagnation                  // the holder is about to be eliminated for stagnation
	TriggerActivate                    // the holder activates the ability in OptionalActions
)

func (t Trigger) String() string {
	switch t {
	case TriggerAcquire:
		return "Acquire"
	case TriggerBeforeReveal:
		return "BeforeReveal"
	case TriggerPlayed:
		return "Played"
	case TriggerDrawAmount:
		return "DrawAmount"
	case TriggerForfeit:
		return "Forfeit"
	case TriggerOutcome:
		return "Outcome"
	case TriggerSwampPeek:
		return "SwampPeek"
	case TriggerSwampAfter:
		return "SwampAfter"
	case TriggerRoll:
		return "Roll"
	case TriggerEnvironment:
		return "Environment"
	case TriggerTrustTargets:
		return "TrustTargets"
	case TriggerElimination:
		return "Elimination"
	case TriggerStagnation:
		return "Stagnation"
	case TriggerActivate:
		return "Activate"
	default:
		return "Unknown"
	}
}

// Scope restricts a hook by the holder's relation to the effect's actor.
type Scope int

const (
	ScopeSelf   Scope = iota // holder is the actor
	ScopeOthers              // holder is not the actor
	ScopeAny
)

// Effect is the mutable state of one dispatch. Hooks read it and may
// override Action, Amount, Roll, Targets or set Blocked.
type Effect struct {
	Trigger Trigger
	Context Context
	Actor   *Player
	Target  *Player
	Action  Action
	Amount  int
	Roll    int

	// Targets maps chooser seat to target seat (TrustTargets only).
	Targets map[int]int

	// Blocked suppresses the default behavior that follows the dispatch.
	Blocked bool
}

// Hook is one modifier contributed by a held ability.
type Hook struct {
	Trigger Trigger
	Context Context // CtxNone matches every context
	Action  Action  // ActionNone matches every action
	Scope   Scope

	// Apply runs the modifier for holder against e.
	Apply func(ctx context.Context, g *Game, holder *Player, e *Effect) error
}

func (h Hook) matches(holder *Player, e *Effect) bool {
	if h.Trigger != e.Trigger {
		return false
	}
	if h.Context != CtxNone && h.Context != e.Context {
		return false
	}
	if h.Action != ActionNone && h.Action != e.Action {
		return false
	}
	switch h.Scope {
	case ScopeSelf:
		return e.Actor == holder
	case ScopeOthers:
		return e.Actor != holder
	default:
		return true
	}
}
