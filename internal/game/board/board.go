package board

import (
	"errors"
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

var (
	// ErrOutOfBounds is returned for an index outside the grid.
	ErrOutOfBounds = errors.New("tile out of bounds")
	// ErrOccupied is returned when placing onto a tile that already holds a card.
	ErrOccupied = errors.New("tile occupied")
	// ErrRejected is returned when the placement rule refuses the card.
	ErrRejected = errors.New("placement rejected by rule")
)

var diagonals = [][2]int{{1, -1}, {1, 1}, {-1, 1}, {-1, -1}}

// Board is the rectangular tile graph. Tiles are stored row-major.
type Board struct {
	cols  int
	rows  int
	tiles []*Tile
}

// NewBoard creates an empty cols x rows board.
func NewBoard(cols, rows int) *Board {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	b := &Board{
		cols:  cols,
		rows:  rows,
		tiles: make([]*Tile, 0, cols*rows),
	}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			b.tiles = append(b.tiles, &Tile{Index: Index{Col: col, Row: row}})
		}
	}
	return b
}

// Cols returns the board width.
func (b *Board) Cols() int { return b.cols }

// Rows returns the board height.
func (b *Board) Rows() int { return b.rows }

// Size returns the number of tiles.
func (b *Board) Size() int { return len(b.tiles) }

// InBounds reports whether idx addresses a tile.
func (b *Board) InBounds(idx Index) bool {
	return idx.Col >= 0 && idx.Col < b.cols && idx.Row >= 0 && idx.Row < b.rows
}

// Tile returns the tile at idx.
func (b *Board) Tile(idx Index) (*Tile, bool) {
	if !b.InBounds(idx) {
		return nil, false
	}
	return b.tiles[idx.Row*b.cols+idx.Col], true
}

// Tiles returns every tile in row-major order.
func (b *Board) Tiles() []*Tile {
	result := make([]*Tile, len(b.tiles))
	copy(result, b.tiles)
	return result
}

// Neighbor returns the adjacent tile in direction d, if on the board.
func (b *Board) Neighbor(idx Index, d Direction) (*Tile, bool) {
	return b.Tile(idx.Step(d))
}

// Neighbours returns the 4-adjacent tiles in Up, Right, Down, Left order.
func (b *Board) Neighbours(idx Index) []*Tile {
	result := make([]*Tile, 0, 4)
	for _, d := range AllDirections() {
		if n, ok := b.Neighbor(idx, d); ok {
			result = append(result, n)
		}
	}
	return result
}

// ConnectionsOf returns the occupied neighbours that connect back to the
// card on idx, ordered Up, Right, Down, Left. Empty when idx is unoccupied.
func (b *Board) ConnectionsOf(idx Index) []Index {
	tile, ok := b.Tile(idx)
	if !ok || !tile.Occupied() {
		return nil
	}
	var result []Index
	for _, d := range AllDirections() {
		if !tile.Content.Has(d) {
			continue
		}
		n, ok := b.Neighbor(idx, d)
		if !ok || !n.Occupied() || !n.Content.Has(d.Opposite()) {
			continue
		}
		result = append(result, n.Index)
	}
	return result
}

// Connected reports whether a and b are adjacent and share a connector pair.
func (b *Board) Connected(a, c Index) bool {
	for _, n := range b.ConnectionsOf(a) {
		if n == c {
			return true
		}
	}
	return false
}

// FreeNeighbours returns the unoccupied tiles around idx, optionally
// including the four diagonals.
func (b *Board) FreeNeighbours(idx Index, includeDiagonal bool) mapset.Set[Index] {
	free := mapset.New[Index]()
	for _, n := range b.Neighbours(idx) {
		if !n.Occupied() {
			free.Put(n.Index)
		}
	}
	if includeDiagonal {
		for _, off := range diagonals {
			if n, ok := b.Tile(idx.Offset(off[0], off[1])); ok && !n.Occupied() {
				free.Put(n.Index)
			}
		}
	}
	return free
}

// Place puts card on the tile at idx.
func (b *Board) Place(idx Index, card *Card) error {
	tile, ok := b.Tile(idx)
	if !ok {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, idx)
	}
	if tile.Occupied() {
		return fmt.Errorf("%w: %s", ErrOccupied, idx)
	}
	tile.Content = card
	return nil
}

// FreeTiles returns the unoccupied indices in row-major order.
func (b *Board) FreeTiles() []Index {
	var result []Index
	for _, t := range b.tiles {
		if !t.Occupied() {
			result = append(result, t.Index)
		}
	}
	return result
}

// Full reports whether every tile holds a card.
func (b *Board) Full() bool {
	for _, t := range b.tiles {
		if !t.Occupied() {
			return false
		}
	}
	return true
}

// ClearMarks resets the Marked hint on every tile.
func (b *Board) ClearMarks() {
	for _, t := range b.tiles {
		t.Marked = false
	}
}
