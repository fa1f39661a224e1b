package dmn

import "time"

// DefaultDifficulty is the only difficulty the game offers so far.
const DefaultDifficulty = "normal"

// GameRecord is one finished game as appended to the history table.
type GameRecord struct {
	ID          int64     `json:"id"`
	PlayerName  string    `json:"playerName"`
	Score       int       `json:"score"`
	Level       int       `json:"level"`
	TimeSeconds int       `json:"timeSeconds"`
	Difficulty  string    `json:"difficulty"`
	Date        time.Time `json:"date"`
}

// ScoreStats summarises the history table. Both values are 0 when it is empty.
type ScoreStats struct {
	MaxScore     int     `json:"maxScore"`
	AverageScore float64 `json:"averageScore"`
}
