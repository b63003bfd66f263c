package game

import "fmt"

// standardPattern is the repeating run of ordinary tiles between Start and Finish.
var standardPattern = []TileType{
	TileResourceRich,
	TileTrustEvolution,
	TileNaturalDisaster,
	TileHawkDove,
	TileCooperationSanctuary,
	TileDeceptionSwamp,
	TileMutationEvent,
	TileEvolutionLab,
}

// StandardLayout returns a ring of size tiles: Start at 0, Finish at the last
// position and the standard pattern repeated in between.
func StandardLayout(size int) []TileType {
	if size < 3 {
		size = 3
	}
	layout := make([]TileType, size)
	layout[0] = TileStart
	for i := 1; i < size-1; i++ {
		layout[i] = standardPattern[(i-1)%len(standardPattern)]
	}
	layout[size-1] = TileFinish
	return layout
}

type Tile struct {
	Position int
	Type     TileType
}

// Board is a fixed-size ring of tiles with mutable types.
type Board struct {
	tiles []Tile
}

// NewBoard builds a board from a layout. The layout must contain exactly one
// Start and one Finish.
func NewBoard(layout []TileType) (*Board, error) {
	starts, finishes := 0, 0
	b := &Board{tiles: make([]Tile, len(layout))}
	for i, t := range layout {
		switch t {
		case TileStart:
			starts++
		case TileFinish:
			finishes++
		}
		b.tiles[i] = Tile{Position: i, Type: t}
	}
	if starts != 1 || finishes != 1 {
		return nil, fmt.Errorf("board needs exactly one Start and one Finish (have %d and %d)", starts, finishes)
	}
	return b, nil
}

func (b *Board) Size() int {
	return len(b.tiles)
}

// Wrap maps any position onto the ring.
func (b *Board) Wrap(pos int) int {
	n := len(b.tiles)
	return ((pos % n) + n) % n
}

func (b *Board) TileAt(pos int) Tile {
	return b.tiles[b.Wrap(pos)]
}

// Types returns a snapshot of every tile type in position order.
func (b *Board) Types() []TileType {
	out := make([]TileType, len(b.tiles))
	for i, t := range b.tiles {
		out[i] = t.Type
	}
	return out
}

// Retype changes an ordinary tile to another ordinary type.
func (b *Board) Retype(pos int, t TileType) (TileType, error) {
	tile := &b.tiles[b.Wrap(pos)]
	if !tile.Type.Ordinary() || !t.Ordinary() {
		return tile.Type, ErrProtectedTile
	}
	old := tile.Type
	tile.Type = t
	return old, nil
}

// MoveFinish swaps the Finish tile with the tile at pos. Start cannot be the
// destination.
func (b *Board) MoveFinish(pos int) (from int, err error) {
	from, _ = b.FindAny(TileFinish)
	to := b.Wrap(pos)
	if b.tiles[to].Type == TileStart {
		return from, ErrProtectedTile
	}
	b.tiles[from].Type, b.tiles[to].Type = b.tiles[to].Type, TileFinish
	return from, nil
}

// Distance is the ring distance between two positions.
func (b *Board) Distance(a, c int) int {
	d := b.Wrap(a - c)
	if alt := len(b.tiles) - d; alt < d {
		return alt
	}
	return d
}

// FindNearest scans both directions from from (excluding from itself) for a
// tile of type t. Forward wins ties.
func (b *Board) FindNearest(t TileType, from int) (int, bool) {
	n := len(b.tiles)
	for i := 1; i <= n/2; i++ {
		if fwd := b.Wrap(from + i); b.tiles[fwd].Type == t {
			return fwd, true
		}
		if back := b.Wrap(from - i); b.tiles[back].Type == t {
			return back, true
		}
	}
	return 0, false
}

// FindFarthestFrom returns the position with the greatest ring distance from
// pos; the lowest index wins ties.
func (b *Board) FindFarthestFrom(pos int) int {
	best, bestDist := 0, -1
	for i := range b.tiles {
		if d := b.Distance(i, pos); d > bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// FindAny returns the first tile of type t scanning forward from 0.
func (b *Board) FindAny(t TileType) (int, bool) {
	return b.FindForward(t, 0)
}

// FindForward returns the first tile of type t at or after from, wrapping once.
func (b *Board) FindForward(t TileType, from int) (int, bool) {
	for i := 0; i < len(b.tiles); i++ {
		pos := b.Wrap(from + i)
		if b.tiles[pos].Type == t {
			return pos, true
		}
	}
	return 0, false
}

// Positions returns every position holding a tile of type t.
func (b *Board) Positions(t TileType) []int {
	var out []int
	for i, tile := range b.tiles {
		if tile.Type == t {
			out = append(out, i)
		}
	}
	return out
}
