package board

import "fmt"

// Index addresses a grid cell.
type Index struct {
	Col int
	Row int
}

// Offset returns the index shifted by the given deltas.
func (i Index) Offset(colDelta, rowDelta int) Index {
	return Index{Col: i.Col + colDelta, Row: i.Row + rowDelta}
}

// Step returns the neighbouring index in direction d.
func (i Index) Step(d Direction) Index {
	return i.Offset(d.Delta())
}

func (i Index) String() string {
	return fmt.Sprintf("%d,%d", i.Col, i.Row)
}

// Tile is one grid cell. Marked and Hilite are hints for an external renderer.
type Tile struct {
	Index   Index
	Content *Card
	Marked  bool
	Hilite  bool
}

// Occupied reports whether a card sits on the tile.
func (t *Tile) Occupied() bool {
	return t != nil && t.Content != nil
}
