package log

// EventType enumerates all observable game events.
type EventType int

const (
	EventNewTurn EventType = iota
	EventNewRound
	EventRoll
	EventMove
	EventTile
	EventDeclare
	EventAbstain
	EventEvolutionGain
	EventForfeit
	EventPoints
	EventConvert
	EventDiscard
	EventReplenish
	EventAbilityGained
	EventAbilityTriggered
	EventAbilityRemoved
	EventMutation
	EventEnvironment
	EventRetype
	EventModifierStart
	EventModifierEnd
	EventTarget
	EventReveal
	EventChallenge
	EventSkip
	EventDirection
	EventShuffle
	EventEliminated
	EventWin
	EventNoWinner
)

func (e EventType) String() string {
	switch e {
	case EventNewTurn:
		return "NewTurn"
	case EventNewRound:
		return "NewRound"
	case EventRoll:
		return "Roll"
	case EventMove:
		return "Move"
	case EventTile:
		return "Tile"
	case EventDeclare:
		return "Declare"
	case EventAbstain:
		return "Abstain"
	case EventEvolutionGain:
		return "EvolutionGain"
	case EventForfeit:
		return "Forfeit"
	case EventPoints:
		return "Points"
	case EventConvert:
		return "Convert"
	case EventDiscard:
		return "Discard"
	case EventReplenish:
		return "Replenish"
	case EventAbilityGained:
		return "AbilityGained"
	case EventAbilityTriggered:
		return "AbilityTriggered"
	case EventAbilityRemoved:
		return "AbilityRemoved"
	case EventMutation:
		return "Mutation"
	case EventEnvironment:
		return "Environment"
	case EventRetype:
		return "Retype"
	case EventModifierStart:
		return "ModifierStart"
	case EventModifierEnd:
		return "ModifierEnd"
	case EventTarget:
		return "Target"
	case EventReveal:
		return "Reveal"
	case EventChallenge:
		return "Challenge"
	case EventSkip:
		return "Skip"
	case EventDirection:
		return "Direction"
	case EventShuffle:
		return "Shuffle"
	case EventEliminated:
		return "Eliminated"
	case EventWin:
		return "Win"
	case EventNoWinner:
		return "NoWinner"
	default:
		return "Unknown"
	}
}

// NoPlayer marks events that are not attributed to a single player.
const NoPlayer = -1

// GameEvent represents a single observable event in a game.
type GameEvent struct {
	Seq     int       // monotonic sequence number
	Turn    int       // which turn (1-based)
	Round   int       // which round (1-based)
	Phase   string    // turn stage or tile name (e.g. "HawkDove")
	Player  int       // acting player seat, or NoPlayer
	Type    EventType // event type
	Card    string    // card name (if applicable)
	Count   int       // numeric payload (cards, points, steps)
	Details string    // human-readable detail string
}
