package game

import (
	"context"
	"fmt"

	"github.com/peterkuimelis/evogame/internal/log"
)

func init() {
	registerEnvironments(
		environment("Drought", "The nearest ResourceRich tile becomes a NaturalDisaster.", drought),
		environment("Oasis", "The nearest NaturalDisaster tile becomes ResourceRich.", oasis),
		environment("Earthquake", "Both tiles next to you become NaturalDisaster.", earthquake),
		environment("Eco Recovery", "The first NaturalDisaster tile becomes TrustEvolution.", ecoRecovery),
		environment("Path Change", "The middle of the longest run of identical tiles becomes a random other type.", pathChange),
		environment("Pleasant Climate", "This turn every Cooperate declaration draws 1 evolution card.", pleasantClimate),
		environment("Environmental Deterioration", "For 2 rounds every Deceive declaration discards 1 more strategy card.", deterioration),
		environment("Terrain Uplift", "The Finish moves 3 tiles forward.", terrainUplift),
		environment("Swamp Expansion", "Two random non-adjacent tiles become DeceptionSwamp.", swampExpansion),
		environment("Sanctuary Appears", "The tile farthest from you becomes a CooperationSanctuary.", sanctuaryAppears),
	)
}

func environment(name, desc string, apply func(ctx context.Context, g *Game, actor *Player) error) *EnvironmentDef {
	return &EnvironmentDef{Name: name, Description: desc, Apply: apply}
}

// retype changes one tile and logs it; Start and Finish are left alone.
func (g *Game) retype(pos int, t TileType, reason string) bool {
	old, err := g.Board.Retype(pos, t)
	if err != nil {
		g.log(log.NewSkipEvent(log.NoPlayer, fmt.Sprintf("tile %d (%s) is protected", g.Board.Wrap(pos), old)))
		return false
	}
	g.log(log.NewRetypeEvent(g.Board.Wrap(pos), old.String(), t.String(), reason))
	return true
}

func drought(_ context.Context, g *Game, actor *Player) error {
	if pos, ok := g.Board.FindNearest(TileResourceRich, actor.Position); ok {
		g.retype(pos, TileNaturalDisaster, "Drought")
	}
	return nil
}

func oasis(_ context.Context, g *Game, actor *Player) error {
	if pos, ok := g.Board.FindNearest(TileNaturalDisaster, actor.Position); ok {
		g.retype(pos, TileResourceRich, "Oasis")
	}
	return nil
}

func earthquake(_ context.Context, g *Game, actor *Player) error {
	for _, pos := range []int{actor.Position - 1, actor.Position + 1} {
		if g.Board.TileAt(pos).Type.Ordinary() {
			g.retype(pos, TileNaturalDisaster, "Earthquake")
		}
	}
	return nil
}

func ecoRecovery(_ context.Context, g *Game, _ *Player) error {
	if pos, ok := g.Board.FindAny(TileNaturalDisaster); ok {
		g.retype(pos, TileTrustEvolution, "Eco Recovery")
	}
	return nil
}

func pathChange(_ context.Context, g *Game, _ *Player) error {
	types := g.Board.Types()
	bestStart, bestLen := -1, 0
	for i := 0; i < len(types); {
		j := i
		for j < len(types) && types[j] == types[i] {
			j++
		}
		if types[i].Ordinary() && j-i > bestLen {
			bestStart, bestLen = i, j-i
		}
		i = j
	}
	if bestStart < 0 {
		return nil
	}
	pos := bestStart + bestLen/2
	var choices []TileType
	for _, t := range OrdinaryTiles {
		if t != types[pos] {
			choices = append(choices, t)
		}
	}
	g.retype(pos, choices[g.rng.Intn(len(choices))], "Path Change")
	return nil
}

func pleasantClimate(_ context.Context, g *Game, actor *Player) error {
	g.addModifier(ModPleasantClimate, actor, ExpireEndOfTurn, 0)
	return nil
}

func deterioration(_ context.Context, g *Game, actor *Player) error {
	g.addModifier(ModDeterioration, actor, ExpireRounds, 2)
	return nil
}

func terrainUplift(_ context.Context, g *Game, _ *Player) error {
	from, _ := g.Board.FindAny(TileFinish)
	to := g.Board.Wrap(from + 3)
	if g.Board.TileAt(to).Type == TileStart {
		to = g.Board.Wrap(to + 1)
	}
	if _, err := g.Board.MoveFinish(to); err != nil {
		return nil
	}
	g.log(log.NewRetypeEvent(to, g.Board.TileAt(from).Type.String(), TileFinish.String(), "Terrain Uplift"))
	g.log(log.NewRetypeEvent(from, TileFinish.String(), g.Board.TileAt(from).Type.String(), "Terrain Uplift"))
	return nil
}

func swampExpansion(_ context.Context, g *Game, _ *Player) error {
	var candidates []int
	for i, t := range g.Board.Types() {
		if t.Ordinary() && t != TileDeceptionSwamp {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	first := candidates[g.rng.Intn(len(candidates))]
	var far []int
	for _, pos := range candidates {
		if g.Board.Distance(pos, first) > 1 {
			far = append(far, pos)
		}
	}
	g.retype(first, TileDeceptionSwamp, "Swamp Expansion")
	if len(far) > 0 {
		g.retype(far[g.rng.Intn(len(far))], TileDeceptionSwamp, "Swamp Expansion")
	}
	return nil
}

func sanctuaryAppears(_ context.Context, g *Game, actor *Player) error {
	pos := g.Board.FindFarthestFrom(actor.Position)
	if !g.Board.TileAt(pos).Type.Ordinary() {
		g.log(log.NewSkipEvent(actor.ID, "the farthest tile is protected"))
		return nil
	}
	g.retype(pos, TileCooperationSanctuary, "Sanctuary Appears")
	return nil
}
