package game

import "slices"

// State is a snapshot of one game. Snake[0] is the head.
type State struct {
	Snake    []Position `json:"snake"`
	Food     Position   `json:"food"`
	Heading  Direction  `json:"heading"`
	Score    int        `json:"score"`
	Level    int        `json:"level"`
	GameOver bool       `json:"gameOver"`
}

// Head returns the first body cell.
func (s State) Head() Position {
	return s.Snake[0]
}

// Clone returns a copy that shares no memory with s.
func (s State) Clone() State {
	c := s
	c.Snake = slices.Clone(s.Snake)
	return c
}

func (s State) terminal(heading Direction) State {
	c := s.Clone()
	c.Heading = heading
	c.GameOver = true
	return c
}
