package log

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// EventLogger is the interface for logging game events.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	events []GameEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

func (l *MemoryLogger) Events() []GameEvent {
	return l.events
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	var result []GameEvent
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// EventsFor returns all events attributed to the given player seat.
func (l *MemoryLogger) EventsFor(player int) []GameEvent {
	var result []GameEvent
	for _, e := range l.events {
		if e.Player == player {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() GameEvent {
	if len(l.events) == 0 {
		return GameEvent{}
	}
	return l.events[len(l.events)-1]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

// --- StructuredLogger: forwards events to a logrus logger as fields ---

// StructuredLogger keeps events in memory and emits each one as a structured
// log entry with turn, round, actor and event_kind fields.
type StructuredLogger struct {
	MemoryLogger
	out   logrus.FieldLogger
	names []string
}

// NewStructuredLogger creates a logger that writes through out. names maps
// player seats to display names for the actor field.
func NewStructuredLogger(out logrus.FieldLogger, names []string) *StructuredLogger {
	return &StructuredLogger{out: out, names: names}
}

func (l *StructuredLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	fields := logrus.Fields{
		"seq":        l.seq,
		"turn":       event.Turn,
		"round":      event.Round,
		"event_kind": event.Type.String(),
	}
	if event.Player >= 0 && event.Player < len(l.names) {
		fields["actor"] = l.names[event.Player]
	}
	if event.Phase != "" {
		fields["phase"] = event.Phase
	}
	if event.Card != "" {
		fields["card"] = event.Card
	}
	if event.Count != 0 {
		fields["count"] = event.Count
	}
	l.out.WithFields(fields).Info(event.Details)
}

// --- Formatting ---

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	phase := e.Phase
	// Pad phase to 14 chars for alignment
	for len(phase) < 14 {
		phase += " "
	}
	return fmt.Sprintf("R%-3d T%-3d %s| %s", e.Round, e.Turn, phase, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []GameEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// --- Helper constructors for common events ---

func NewTurnEvent(player int, name string, turn int) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventNewTurn,
		Details: fmt.Sprintf("=== Turn %d (%s) ===", turn, name),
	}
}

func NewRoundEvent(round int) GameEvent {
	return GameEvent{
		Player:  NoPlayer,
		Type:    EventNewRound,
		Count:   round,
		Details: fmt.Sprintf("--- Round %d ---", round),
	}
}

func NewRollEvent(player int, name string, roll int, details string) GameEvent {
	d := fmt.Sprintf("%s rolls %d", name, roll)
	if details != "" {
		d += " (" + details + ")"
	}
	return GameEvent{
		Player:  player,
		Type:    EventRoll,
		Count:   roll,
		Details: d,
	}
}

func NewMoveEvent(player int, name string, from, to int, tile string) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventMove,
		Count:   to,
		Details: fmt.Sprintf("%s moves %d → %d (%s)", name, from, to, tile),
	}
}

func NewTileEvent(player int, name string, tile string) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventTile,
		Details: fmt.Sprintf("%s triggers %s", name, tile),
	}
}

func NewDeclareEvent(player int, name string, action string) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventDeclare,
		Card:    action,
		Details: fmt.Sprintf("%s plays %s", name, action),
	}
}

func NewAbstainEvent(player int, name string) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventAbstain,
		Details: fmt.Sprintf("%s has no strategy cards and abstains", name),
	}
}

func NewEvolutionGainEvent(player int, name string, count int, reason string) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventEvolutionGain,
		Count:   count,
		Details: fmt.Sprintf("%s draws %s (%s)", name, plural(count, "evolution card"), reason),
	}
}

func NewForfeitEvent(player int, name string, count int, reason string) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventForfeit,
		Count:   count,
		Details: fmt.Sprintf("%s forfeits %s (%s)", name, plural(count, "evolution card"), reason),
	}
}

func NewPointsEvent(player int, name string, delta, total int, reason string) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventPoints,
		Count:   delta,
		Details: fmt.Sprintf("%s gains %s → %d (%s)", name, plural(delta, "evolution point"), total, reason),
	}
}

func NewConvertEvent(player int, name string, points, cards int) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventConvert,
		Count:   cards,
		Details: fmt.Sprintf("%s converts %s into %s", name, plural(points, "point"), plural(cards, "evolution card")),
	}
}

func NewDiscardEvent(player int, name string, cardName string, reason string) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventDiscard,
		Card:    cardName,
		Details: fmt.Sprintf("%s discards %s (%s)", name, cardName, reason),
	}
}

func NewReplenishEvent(player int, name string, cardName string) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventReplenish,
		Card:    cardName,
		Details: fmt.Sprintf("%s replenishes a %s card", name, cardName),
	}
}

func NewAbilityGainedEvent(player int, name string, ability string) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventAbilityGained,
		Card:    ability,
		Details: fmt.Sprintf("%s gains ability %s", name, ability),
	}
}

func NewAbilityTriggeredEvent(player int, name string, ability string, details string) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventAbilityTriggered,
		Card:    ability,
		Details: fmt.Sprintf("%s's %s: %s", name, ability, details),
	}
}

func NewAbilityRemovedEvent(player int, name string, ability string) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventAbilityRemoved,
		Card:    ability,
		Details: fmt.Sprintf("%s's %s is removed from play", name, ability),
	}
}

func NewMutationEvent(player int, name string, card string) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventMutation,
		Card:    card,
		Details: fmt.Sprintf("%s resolves event %s", name, card),
	}
}

func NewEnvironmentEvent(player int, name string, card string) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventEnvironment,
		Card:    card,
		Details: fmt.Sprintf("%s draws environment change %s", name, card),
	}
}

func NewRetypeEvent(position int, from, to string, reason string) GameEvent {
	return GameEvent{
		Player:  NoPlayer,
		Type:    EventRetype,
		Count:   position,
		Details: fmt.Sprintf("tile %d: %s → %s (%s)", position, from, to, reason),
	}
}

func NewModifierStartEvent(player int, modifier string, details string) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventModifierStart,
		Card:    modifier,
		Details: fmt.Sprintf("%s begins (%s)", modifier, details),
	}
}

func NewModifierEndEvent(player int, modifier string) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventModifierEnd,
		Card:    modifier,
		Details: fmt.Sprintf("%s ends", modifier),
	}
}

func NewTargetEvent(player int, name string, target string, reason string) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventTarget,
		Details: fmt.Sprintf("%s targets %s (%s)", name, target, reason),
	}
}

func NewRevealEvent(player int, name string, target string, details string) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventReveal,
		Details: fmt.Sprintf("%s inspects %s: %s", name, target, details),
	}
}

func NewChallengeEvent(player int, name string, opponent string, reason string) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventChallenge,
		Details: fmt.Sprintf("%s challenges %s (%s)", name, opponent, reason),
	}
}

func NewSkipEvent(player int, details string) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventSkip,
		Details: details,
	}
}

func NewDirectionEvent(direction string) GameEvent {
	return GameEvent{
		Player:  NoPlayer,
		Type:    EventDirection,
		Details: fmt.Sprintf("turn order is now %s", direction),
	}
}

func NewShuffleEvent(deck string, count int) GameEvent {
	return GameEvent{
		Player:  NoPlayer,
		Type:    EventShuffle,
		Card:    deck,
		Count:   count,
		Details: fmt.Sprintf("%s discard pile (%d) reshuffled into draw pile", deck, count),
	}
}

func NewEliminatedEvent(player int, name string, reason string) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventEliminated,
		Details: fmt.Sprintf("%s is eliminated (%s)", name, reason),
	}
}

func NewWinEvent(player int, name string, reason string) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventWin,
		Details: fmt.Sprintf("%s wins! (%s)", name, reason),
	}
}

func NewNoWinnerEvent(reason string) GameEvent {
	return GameEvent{
		Player:  NoPlayer,
		Type:    EventNoWinner,
		Details: fmt.Sprintf("game over with no winner (%s)", reason),
	}
}
