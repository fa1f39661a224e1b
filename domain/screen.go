package dmn

import "github.com/beka-birhanu/vinom-snake/game"

// LeaderboardSource tells where a leaderboard view was read from.
type LeaderboardSource string

const (
	SourceRemote LeaderboardSource = "remote"
	SourceLocal  LeaderboardSource = "local"
)

// LeaderboardView is a ranked list ready to show, with an optional notice
// when the remote store could not be reached.
type LeaderboardView struct {
	Entries []PlayerRecord    `json:"entries"`
	Source  LeaderboardSource `json:"source"`
	Notice  string            `json:"notice,omitempty"`
}

// Screen is what a player is looking at. It is a closed set: Menu,
// UsernameInput, Playing, GameOver and Leaderboard.
type Screen interface {
	screen()
	Name() string
}

// Menu is the main menu.
type Menu struct{}

// UsernameInput asks an unknown player for a name.
type UsernameInput struct{}

// Playing shows a running game.
type Playing struct {
	SessionID string     `json:"sessionId"`
	State     game.State `json:"state"`
}

// GameOver shows the result of the last game.
type GameOver struct {
	Score int `json:"score"`
	Level int `json:"level"`
}

// Leaderboard shows the ranked players.
type Leaderboard struct {
	View LeaderboardView `json:"view"`
}

func (Menu) screen()          {}
func (UsernameInput) screen() {}
func (Playing) screen()       {}
func (GameOver) screen()      {}
func (Leaderboard) screen()   {}

func (Menu) Name() string          { return "MENU" }
func (UsernameInput) Name() string { return "USERNAME_INPUT" }
func (Playing) Name() string       { return "PLAYING" }
func (GameOver) Name() string      { return "GAME_OVER" }
func (Leaderboard) Name() string   { return "LEADERBOARD" }
