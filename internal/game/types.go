package game

import "errors"

var (
	ErrInsufficientCards = errors.New("insufficient cards")
	ErrNoPlayers         = errors.New("a game needs at least two players")
	ErrTooManyPlayers    = errors.New("too many players")
	ErrGameOver          = errors.New("game is over")
	ErrUnknownCard       = errors.New("unknown card")
	ErrProtectedTile     = errors.New("start and finish tiles cannot be retyped")
)

const (
	MinPlayers               = 2
	MaxPlayers               = 8
	DefaultBoardSize         = 24
	DefaultVictoryTarget     = 20
	DefaultMaxRounds         = 100
	DefaultStartingEvolution = 5
	DefaultEnvironmentChance = 0.3
	MaxConversionPerTurn     = 3
	StagnationLimit          = 2

	// NoTarget marks an unset player relation.
	NoTarget = -1
)

// --- Enums ---

type CardKind int

const (
	KindCooperation CardKind = iota
	KindDeception
	KindEvolution
	KindEvent
	KindAbility
	KindEnvironment
)

// AllKinds lists every card kind in deck order.
var AllKinds = []CardKind{KindCooperation, KindDeception, KindEvolution, KindEvent, KindAbility, KindEnvironment}

func (k CardKind) String() string {
	switch k {
	case KindCooperation:
		return "Cooperation"
	case KindDeception:
		return "Deception"
	case KindEvolution:
		return "Evolution"
	case KindEvent:
		return "Event"
	case KindAbility:
		return "Ability"
	case KindEnvironment:
		return "EnvironmentChange"
	default:
		return "Unknown"
	}
}

// IsStrategy reports whether cards of this kind count toward the hand limit.
func (k CardKind) IsStrategy() bool {
	return k == KindCooperation || k == KindDeception
}

type TileType int

const (
	TileStart TileType = iota
	TileTrustEvolution
	TileHawkDove
	TileResourceRich
	TileNaturalDisaster
	TileCooperationSanctuary
	TileDeceptionSwamp
	TileMutationEvent
	TileEvolutionLab
	TileFinish
)

// OrdinaryTiles lists the tile types that may be freely retyped.
var OrdinaryTiles = []TileType{
	TileTrustEvolution,
	TileHawkDove,
	TileResourceRich,
	TileNaturalDisaster,
	TileCooperationSanctuary,
	TileDeceptionSwamp,
	TileMutationEvent,
	TileEvolutionLab,
}

func (t TileType) String() string {
	switch t {
	case TileStart:
		return "Start"
	case TileTrustEvolution:
		return "TrustEvolution"
	case TileHawkDove:
		return "HawkDove"
	case TileResourceRich:
		return "ResourceRich"
	case TileNaturalDisaster:
		return "NaturalDisaster"
	case TileCooperationSanctuary:
		return "CooperationSanctuary"
	case TileDeceptionSwamp:
		return "DeceptionSwamp"
	case TileMutationEvent:
		return "MutationEvent"
	case TileEvolutionLab:
		return "EvolutionLab"
	case TileFinish:
		return "Finish"
	default:
		return "Unknown"
	}
}

// Ordinary reports whether the tile is neither Start nor Finish.
func (t TileType) Ordinary() bool {
	return t != TileStart && t != TileFinish
}

// ParseTileType resolves a tile type from its String() name.
func ParseTileType(s string) (TileType, bool) {
	for t := TileStart; t <= TileFinish; t++ {
		if t.String() == s {
			return t, true
		}
	}
	return TileStart, false
}

type Action int

const (
	ActionNone Action = iota
	ActionCooperate
	ActionDeceive
)

func (a Action) String() string {
	switch a {
	case ActionCooperate:
		return "Cooperate"
	case ActionDeceive:
		return "Deceive"
	default:
		return "None"
	}
}

// Kind returns the strategy card kind an action consumes.
func (a Action) Kind() CardKind {
	if a == ActionDeceive {
		return KindDeception
	}
	return KindCooperation
}

// Flip returns the opposite declaration.
func (a Action) Flip() Action {
	switch a {
	case ActionCooperate:
		return ActionDeceive
	case ActionDeceive:
		return ActionCooperate
	default:
		return ActionNone
	}
}

type Direction int

const (
	Forward Direction = iota
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// Context identifies where a decision is asked or a hook fires.
type Context int

const (
	CtxNone Context = iota
	CtxTrustEvolution
	CtxHawkDove
	CtxResourceRich
	CtxNaturalDisaster
	CtxSanctuary
	CtxSwamp
	CtxMutation
	CtxLab
	CtxFinish
	CtxEnvironment
	CtxOptional
	CtxInvestigation
	CtxHandLimit
	CtxTieBreak
)

func (c Context) String() string {
	switch c {
	case CtxTrustEvolution:
		return "TrustEvolution"
	case CtxHawkDove:
		return "HawkDove"
	case CtxResourceRich:
		return "ResourceRich"
	case CtxNaturalDisaster:
		return "NaturalDisaster"
	case CtxSanctuary:
		return "CooperationSanctuary"
	case CtxSwamp:
		return "DeceptionSwamp"
	case CtxMutation:
		return "MutationEvent"
	case CtxLab:
		return "EvolutionLab"
	case CtxFinish:
		return "Finish"
	case CtxEnvironment:
		return "Environment"
	case CtxOptional:
		return "Optional"
	case CtxInvestigation:
		return "Investigation"
	case CtxHandLimit:
		return "HandLimit"
	case CtxTieBreak:
		return "TieBreak"
	default:
		return "None"
	}
}

// tileContext maps a tile type to the context its resolver runs in.
func tileContext(t TileType) Context {
	switch t {
	case TileTrustEvolution:
		return CtxTrustEvolution
	case TileHawkDove:
		return CtxHawkDove
	case TileResourceRich:
		return CtxResourceRich
	case TileNaturalDisaster:
		return CtxNaturalDisaster
	case TileCooperationSanctuary:
		return CtxSanctuary
	case TileDeceptionSwamp:
		return CtxSwamp
	case TileMutationEvent:
		return CtxMutation
	case TileEvolutionLab:
		return CtxLab
	case TileFinish:
		return CtxFinish
	default:
		return CtxNone
	}
}

// Question identifies a yes/no or multiple-choice prompt.
type Question int

const (
	QuestionStrategyShift Question = iota
	QuestionDisasterTransfer
	QuestionBlockDeceiver
	QuestionDefenseMechanism
	QuestionOpportunist
	QuestionTacticalUpgrade
	QuestionEcoEngineering
	QuestionConvertPoints
	QuestionPlayEvent
	QuestionActivateAbility
	QuestionRedeemChallenge
	QuestionInvestigate

	// Multiple-choice prompts (ChooseOption)
	QuestionConvertAmount
	QuestionChooseEvent
	QuestionTakeAbility
	QuestionKeepEvent
	QuestionOrderEvents
	QuestionRetypeTile
	QuestionRetypeType
	QuestionSpaceJump
	QuestionInvestigationDraw
)

func (q Question) String() string {
	switch q {
	case QuestionStrategyShift:
		return "Flip your declaration with Strategy Shift?"
	case QuestionDisasterTransfer:
		return "Force another player to forfeit 1 evolution card?"
	case QuestionBlockDeceiver:
		return "Block a deceiver and draw 1 evolution card?"
	case QuestionDefenseMechanism:
		return "Block this deceiver's peek with Defense Mechanism?"
	case QuestionOpportunist:
		return "Discard a strategy card to take an ability with Opportunist?"
	case QuestionTacticalUpgrade:
		return "Roll a second die with Tactical Upgrade?"
	case QuestionEcoEngineering:
		return "Replace the environment change with Eco Engineering?"
	case QuestionConvertPoints:
		return "Convert evolution points into evolution cards?"
	case QuestionPlayEvent:
		return "Play an event card from your hand?"
	case QuestionActivateAbility:
		return "Activate this ability?"
	case QuestionRedeemChallenge:
		return "Redeem your free Hawk-Dove challenge?"
	case QuestionInvestigate:
		return "Discard 2 strategy cards for an ecological investigation?"
	case QuestionConvertAmount:
		return "How many points to convert?"
	case QuestionChooseEvent:
		return "Which event card to play?"
	case QuestionTakeAbility:
		return "Which ability card to take?"
	case QuestionKeepEvent:
		return "Which event card to keep?"
	case QuestionOrderEvents:
		return "Which event card goes on top next?"
	case QuestionRetypeTile:
		return "Which tile to retype?"
	case QuestionRetypeType:
		return "Which tile type?"
	case QuestionSpaceJump:
		return "Jump to which tile?"
	case QuestionInvestigationDraw:
		return "Which strategy card to draw?"
	default:
		return "Unknown question"
	}
}

// --- Card ---

// Card is an immutable card instance. Effect names the registry handler for
// Event, Ability and EnvironmentChange cards.
type Card struct {
	ID          int
	Kind        CardKind
	Name        string
	Description string
	Effect      string
}

func (c *Card) String() string {
	return c.Name
}
