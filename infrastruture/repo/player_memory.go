package repo

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	dmn "github.com/beka-birhanu/vinom-snake/domain"
	"github.com/beka-birhanu/vinom-snake/service/i"
)

var _ i.LocalLeaderboard = &MemoryLeaderboard{}

// MemoryLeaderboard is the process-local key-value leaderboard used when no
// Redis address is configured. Its contents do not survive a restart.
type MemoryLeaderboard struct {
	players     map[string]dmn.PlayerRecord
	currentUser string
	sync.RWMutex
}

func NewMemoryLeaderboard() *MemoryLeaderboard {
	return &MemoryLeaderboard{
		players: make(map[string]dmn.PlayerRecord),
	}
}

func (m *MemoryLeaderboard) Upsert(_ context.Context, name string, score, level int) (*dmn.PlayerRecord, error) {
	rec, err := dmn.NewPlayerRecord(name)
	if err != nil {
		return nil, err
	}

	m.Lock()
	defer m.Unlock()
	if existing, ok := m.players[name]; ok {
		rec = &existing
	}
	merged := rec.Merge(score, level, time.Now())
	m.players[name] = merged
	return &merged, nil
}

func (m *MemoryLeaderboard) Top(_ context.Context, limit int) ([]dmn.PlayerRecord, error) {
	all := m.ranked()
	if limit < 0 {
		limit = 0
	}
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// ranked returns every record, best first, ties by name.
func (m *MemoryLeaderboard) ranked() []dmn.PlayerRecord {
	m.RLock()
	defer m.RUnlock()

	records := make([]dmn.PlayerRecord, 0, len(m.players))
	for _, rec := range m.players {
		records = append(records, rec)
	}
	slices.SortFunc(records, func(a, b dmn.PlayerRecord) int {
		if c := cmp.Compare(b.HighScore, a.HighScore); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return records
}

func (m *MemoryLeaderboard) ByName(_ context.Context, name string) (*dmn.PlayerRecord, error) {
	m.RLock()
	defer m.RUnlock()

	rec, ok := m.players[name]
	if !ok {
		return nil, dmn.ErrPlayerNotFound
	}
	return &rec, nil
}

func (m *MemoryLeaderboard) Clear(_ context.Context) error {
	m.Lock()
	defer m.Unlock()
	clear(m.players)
	return nil
}

func (m *MemoryLeaderboard) CurrentUser(_ context.Context) (string, error) {
	m.RLock()
	defer m.RUnlock()
	return m.currentUser, nil
}

func (m *MemoryLeaderboard) SetCurrentUser(_ context.Context, name string) error {
	if err := dmn.ValidatePlayerName(name); err != nil {
		return err
	}

	m.Lock()
	defer m.Unlock()
	m.currentUser = name
	return nil
}
