package board

// Direction is one of the four connector sides of a card.
type Direction int

const (
	Up Direction = iota
	Right
	Down
	Left
)

// AllDirections returns the directions in connector check order.
func AllDirections() []Direction {
	return []Direction{Up, Right, Down, Left}
}

// String returns the string representation of a direction.
func (d Direction) String() string {
	switch d {
	case Up:
		return "UP"
	case Right:
		return "RIGHT"
	case Down:
		return "DOWN"
	case Left:
		return "LEFT"
	default:
		return "UNKNOWN"
	}
}

// IsValid reports whether d is one of the four sides.
func (d Direction) IsValid() bool {
	return d >= Up && d <= Left
}

// Opposite returns the side a neighbour must expose to connect back.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Right:
		return Left
	case Left:
		return Right
	default:
		return d
	}
}

// Delta returns the column and row offsets for this direction.
func (d Direction) Delta() (colDelta, rowDelta int) {
	switch d {
	case Up:
		return 0, -1
	case Right:
		return 1, 0
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	default:
		return 0, 0
	}
}
