// Package gameapi exposes game sessions and the player's screen over HTTP.
package gameapi

import (
	dmn "github.com/beka-birhanu/vinom-snake/domain"
	"github.com/beka-birhanu/vinom-snake/game"
)

// SessionResponse describes a session and its latest snapshot.
type SessionResponse struct {
	SessionID string     `json:"sessionId"`
	State     game.State `json:"state"`
}

// TurnRequest asks the snake to head somewhere on the next tick. Direction is
// one of UP, DOWN, LEFT or RIGHT, in any case.
type TurnRequest struct {
	Direction string `json:"direction" binding:"required"`
}

// ScreenResponse is the rendered screen. Exactly one of the optional fields
// is set, matching Screen.
type ScreenResponse struct {
	Screen      string               `json:"screen"`
	Playing     *SessionResponse     `json:"playing,omitempty"`
	GameOver    *dmn.GameOver        `json:"gameOver,omitempty"`
	Leaderboard *dmn.LeaderboardView `json:"leaderboard,omitempty"`
}
