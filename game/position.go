package game

import "slices"

// Position is a cell on the square board.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// InBound reports whether p lies on a board of the given size.
func (p Position) InBound(size int) bool {
	return p.X >= 0 && p.X < size && p.Y >= 0 && p.Y < size
}

// Step returns the neighbour of p in direction d.
func (p Position) Step(d Direction) Position {
	delta := deltas[d]
	return Position{X: p.X + delta.X, Y: p.Y + delta.Y}
}

func occupies(body []Position, p Position) bool {
	return slices.Contains(body, p)
}
