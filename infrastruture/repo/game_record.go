package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dmn "github.com/beka-birhanu/vinom-snake/domain"
	"github.com/beka-birhanu/vinom-snake/service/i"
)

const gameRecordColumns = `id, player_name, score, level, time_seconds, difficulty, date`

var _ i.GameRecordRepo = &GameRecordRepo{}

// GameRecordRepo stores finished games in the game_records table.
type GameRecordRepo struct {
	db *sql.DB
}

func NewGameRecordRepo(db *sql.DB) *GameRecordRepo {
	return &GameRecordRepo{db: db}
}

// Append inserts a record and returns its id. A zero Date is set to now.
func (r *GameRecordRepo) Append(ctx context.Context, rec *dmn.GameRecord) (int64, error) {
	if rec.Date.IsZero() {
		rec.Date = time.Now()
	}
	if rec.Difficulty == "" {
		rec.Difficulty = dmn.DefaultDifficulty
	}

	query := `
		INSERT INTO game_records (player_name, score, level, time_seconds, difficulty, date)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	res, err := r.db.ExecContext(ctx, query,
		rec.PlayerName, rec.Score, rec.Level, rec.TimeSeconds, rec.Difficulty, rec.Date.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to append game record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read game record id: %w", err)
	}
	rec.ID = id
	return id, nil
}

func (r *GameRecordRepo) All(ctx context.Context) ([]dmn.GameRecord, error) {
	query := `SELECT ` + gameRecordColumns + ` FROM game_records ORDER BY score DESC, id ASC`
	return r.getMany(ctx, query)
}

func (r *GameRecordRepo) Top(ctx context.Context, limit int) ([]dmn.GameRecord, error) {
	if limit <= 0 {
		return []dmn.GameRecord{}, nil
	}
	query := `SELECT ` + gameRecordColumns + ` FROM game_records ORDER BY score DESC, id ASC LIMIT ?`
	return r.getMany(ctx, query, limit)
}

func (r *GameRecordRepo) ByPlayer(ctx context.Context, name string) ([]dmn.GameRecord, error) {
	query := `SELECT ` + gameRecordColumns + ` FROM game_records WHERE player_name = ? ORDER BY score DESC, id ASC`
	return r.getMany(ctx, query, name)
}

// MaxScore returns the best score ever recorded, 0 when there is none.
func (r *GameRecordRepo) MaxScore(ctx context.Context) (int, error) {
	var best sql.NullInt64
	if err := r.db.QueryRowContext(ctx, `SELECT MAX(score) FROM game_records`).Scan(&best); err != nil {
		return 0, err
	}
	return int(best.Int64), nil
}

// AverageScore returns the mean score, 0 when there is none.
func (r *GameRecordRepo) AverageScore(ctx context.Context) (float64, error) {
	var avg sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, `SELECT AVG(score) FROM game_records`).Scan(&avg); err != nil {
		return 0, err
	}
	return avg.Float64, nil
}

func (r *GameRecordRepo) ClearAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM game_records`)
	return err
}

func (r *GameRecordRepo) getMany(ctx context.Context, query string, args ...interface{}) ([]dmn.GameRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []dmn.GameRecord{}
	for rows.Next() {
		var rec dmn.GameRecord
		var dateMillis int64
		err := rows.Scan(
			&rec.ID, &rec.PlayerName, &rec.Score, &rec.Level, &rec.TimeSeconds, &rec.Difficulty, &dateMillis,
		)
		if err != nil {
			return nil, err
		}
		rec.Date = time.UnixMilli(dateMillis)
		records = append(records, rec)
	}
	return records, rows.Err()
}
