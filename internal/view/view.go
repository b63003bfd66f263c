// Package view renders game state and events as JSON-friendly structs for
// the MCP and web surfaces.
package view

import (
	"github.com/peterkuimelis/evogame/internal/game"
	"github.com/peterkuimelis/evogame/internal/log"
)

// Spectator is the seat passed to BuildStateView for a view with no hidden
// information revealed.
const Spectator = -1

// EventView is a simplified game event for clients.
type EventView struct {
	Seq     int    `json:"seq"`
	Turn    int    `json:"turn"`
	Round   int    `json:"round"`
	Phase   string `json:"phase"`
	Player  int    `json:"player"`
	Type    string `json:"type"`
	Card    string `json:"card,omitempty"`
	Count   int    `json:"count,omitempty"`
	Details string `json:"details"`
}

// StateView is the game state from one seat's perspective.
type StateView struct {
	Turn       int            `json:"turn"`
	Round      int            `json:"round"`
	Phase      string         `json:"phase"`
	Current    int            `json:"current"`
	Direction  string         `json:"direction"`
	IsYourTurn bool           `json:"is_your_turn"`
	You        *PlayerView    `json:"you,omitempty"`
	Players    []PlayerView   `json:"players"`
	Board      []TileView     `json:"board"`
	Modifiers  []ModifierView `json:"modifiers,omitempty"`
	Decks      map[string]int `json:"decks"`
	LastEvent  string         `json:"last_event,omitempty"`
	Over       bool           `json:"over"`
	Winner     int            `json:"winner"`
	Result     string         `json:"result,omitempty"`
}

// PlayerView shows one seat. Event card names are only filled in for the
// viewing seat.
type PlayerView struct {
	Seat          int      `json:"seat"`
	Name          string   `json:"name"`
	Position      int      `json:"position"`
	Tile          string   `json:"tile"`
	Evolution     int      `json:"evolution"`
	Cooperation   int      `json:"cooperation"`
	Deception     int      `json:"deception"`
	EventCount    int      `json:"event_count"`
	Events        []string `json:"events,omitempty"`
	Abilities     []string `json:"abilities,omitempty"`
	Points        int      `json:"points"`
	HandLimit     int      `json:"hand_limit"`
	VictoryTarget int      `json:"victory_target"`
	Eliminated    bool     `json:"eliminated,omitempty"`
	CannotMove    bool     `json:"cannot_move,omitempty"`
}

// TileView describes a single board position.
type TileView struct {
	Position int    `json:"position"`
	Type     string `json:"type"`
}

// ModifierView describes an active time-boxed rule change.
type ModifierView struct {
	Kind   string `json:"kind"`
	Owner  int    `json:"owner"`
	Rounds int    `json:"rounds,omitempty"`
}

// CardView describes a catalogue entry.
type CardView struct {
	Kind        string `json:"kind"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Count       int    `json:"count"`
}

// ResultView summarizes a finished game.
type ResultView struct {
	Winner     int            `json:"winner"`
	WinnerName string         `json:"winner_name,omitempty"`
	Reason     string         `json:"reason"`
	Rounds     int            `json:"rounds"`
	Turns      int            `json:"turns"`
	Standings  []StandingView `json:"standings"`
}

type StandingView struct {
	Seat       int      `json:"seat"`
	Name       string   `json:"name"`
	Evolution  int      `json:"evolution"`
	Points     int      `json:"points"`
	Abilities  []string `json:"abilities,omitempty"`
	Eliminated bool     `json:"eliminated,omitempty"`
}

// Event converts a logged game event.
func Event(e log.GameEvent) EventView {
	return EventView{
		Seq:     e.Seq,
		Turn:    e.Turn,
		Round:   e.Round,
		Phase:   e.Phase,
		Player:  e.Player,
		Type:    e.Type.String(),
		Card:    e.Card,
		Count:   e.Count,
		Details: e.Details,
	}
}

// Events converts a slice of events. The result is never nil.
func Events(events []log.GameEvent) []EventView {
	out := make([]EventView, 0, len(events))
	for _, e := range events {
		out = append(out, Event(e))
	}
	return out
}

// BuildStateView creates a StateView from the perspective of seat, or of a
// spectator when seat is Spectator.
func BuildStateView(g *game.Game, seat int) *StateView {
	sv := &StateView{
		Turn:       g.Turn,
		Round:      g.Round,
		Phase:      g.Phase(),
		Current:    g.Current,
		Direction:  g.Direction.String(),
		IsYourTurn: seat == g.Current && !g.Over,
		Decks:      make(map[string]int),
		LastEvent:  g.LastEvent(),
		Over:       g.Over,
		Winner:     g.Winner,
		Result:     g.Reason,
	}
	for _, p := range g.Players {
		pv := Player(g, p, p.ID == seat)
		sv.Players = append(sv.Players, pv)
		if p.ID == seat {
			you := pv
			sv.You = &you
		}
	}
	for i := 0; i < g.Board.Size(); i++ {
		sv.Board = append(sv.Board, TileView{Position: i, Type: g.Board.TileAt(i).Type.String()})
	}
	for _, m := range g.Modifiers() {
		sv.Modifiers = append(sv.Modifiers, ModifierView{Kind: m.Kind.String(), Owner: m.Owner, Rounds: m.Rounds})
	}
	for kind, d := range g.Decks {
		sv.Decks[kind.String()] = d.DrawCount()
	}
	return sv
}

// Player builds the view of one seat. Held event names are revealed only
// when isOwner is set.
func Player(g *game.Game, p *game.Player, isOwner bool) PlayerView {
	pv := PlayerView{
		Seat:          p.ID,
		Name:          p.Name,
		Position:      p.Position,
		Tile:          g.Board.TileAt(p.Position).Type.String(),
		Evolution:     p.EvolutionCount(),
		Cooperation:   p.Count(game.KindCooperation),
		Deception:     p.Count(game.KindDeception),
		EventCount:    p.Count(game.KindEvent),
		Points:        p.Points,
		HandLimit:     p.HandLimit(),
		VictoryTarget: g.VictoryTarget(p),
		Eliminated:    p.Eliminated,
		CannotMove:    p.CannotMoveNextTurn,
	}
	if isOwner {
		for _, c := range p.Hand(game.KindEvent) {
			pv.Events = append(pv.Events, c.Name)
		}
	}
	for _, a := range p.Abilities {
		pv.Abilities = append(pv.Abilities, a.Name)
	}
	return pv
}

// Result converts a game result.
func Result(r game.Result) ResultView {
	rv := ResultView{
		Winner:     r.Winner,
		WinnerName: r.WinnerName,
		Reason:     r.Reason,
		Rounds:     r.Rounds,
		Turns:      r.Turns,
	}
	for _, s := range r.Standings {
		rv.Standings = append(rv.Standings, StandingView{
			Seat:       s.Seat,
			Name:       s.Name,
			Evolution:  s.Evolution,
			Points:     s.Points,
			Abilities:  s.Abilities,
			Eliminated: s.Eliminated,
		})
	}
	return rv
}

// Catalogue lists every card kind in cat with its registry description.
// Named cards that appear more than once are collapsed into one entry.
func Catalogue(cat game.Catalogue) []CardView {
	out := []CardView{
		{Kind: game.KindCooperation.String(), Name: game.KindCooperation.String(), Description: "Declare Cooperate", Count: cat.Cooperation},
		{Kind: game.KindDeception.String(), Name: game.KindDeception.String(), Description: "Declare Deceive", Count: cat.Deception},
		{Kind: game.KindEvolution.String(), Name: game.KindEvolution.String(), Description: "Victory currency", Count: cat.Evolution},
	}
	named := func(kind game.CardKind, names []string, describe func(string) string) {
		index := make(map[string]int)
		for _, name := range names {
			if i, ok := index[name]; ok {
				out[i].Count++
				continue
			}
			index[name] = len(out)
			out = append(out, CardView{Kind: kind.String(), Name: name, Description: describe(name), Count: 1})
		}
	}
	named(game.KindEvent, cat.Events, func(n string) string { return game.LookupEvent(n).Description })
	named(game.KindAbility, cat.Abilities, func(n string) string { return game.LookupAbility(n).Description })
	named(game.KindEnvironment, cat.Environments, func(n string) string { return game.LookupEnvironment(n).Description })
	return out
}
