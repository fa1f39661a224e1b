package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, cfg Config, seed int64) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	return e
}

func TestConfig(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("validate", func(t *testing.T) {
		assert.NoError(t, cfg.Validate())

		small := cfg
		small.GridSize = 1
		assert.ErrorIs(t, small.Validate(), ErrNotBigEnoughGrid)

		noReward := cfg
		noReward.Reward = 0
		assert.ErrorIs(t, noReward.Validate(), ErrInvalidReward)

		slow := cfg
		slow.BaseInterval = slow.MinInterval - time.Millisecond
		assert.ErrorIs(t, slow.Validate(), ErrInvalidInterval)
	})

	t.Run("level is floor(score/50)+1", func(t *testing.T) {
		for score := 0; score <= 500; score += 10 {
			assert.Equal(t, score/50+1, cfg.LevelFor(score), "score %d", score)
		}
	})

	t.Run("interval shrinks per level down to the floor", func(t *testing.T) {
		assert.Equal(t, 400*time.Millisecond, cfg.IntervalFor(1))
		assert.Equal(t, 355*time.Millisecond, cfg.IntervalFor(2))
		assert.Equal(t, 85*time.Millisecond, cfg.IntervalFor(8))
		assert.Equal(t, 80*time.Millisecond, cfg.IntervalFor(9))
		assert.Equal(t, 80*time.Millisecond, cfg.IntervalFor(50))
	})
}

func TestNewState(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), 1)
	s := e.NewState()

	assert.Equal(t, []Position{{X: 3, Y: 3}}, s.Snake)
	assert.Equal(t, Position{X: 6, Y: 6}, s.Food)
	assert.Equal(t, Right, s.Heading)
	assert.Equal(t, 0, s.Score)
	assert.Equal(t, 1, s.Level)
	assert.False(t, s.GameOver)
}

func TestAdvance(t *testing.T) {
	t.Run("moves without growing", func(t *testing.T) {
		e := newTestEngine(t, DefaultConfig(), 1)
		s := State{
			Snake:   []Position{{X: 3, Y: 3}, {X: 2, Y: 3}},
			Food:    Position{X: 9, Y: 9},
			Heading: Right,
			Level:   1,
		}

		next := e.Advance(s, Right)
		assert.Equal(t, []Position{{X: 4, Y: 3}, {X: 3, Y: 3}}, next.Snake)
		assert.False(t, next.GameOver)
		assert.Equal(t, []Position{{X: 3, Y: 3}, {X: 2, Y: 3}}, s.Snake, "input must not be modified")
	})

	t.Run("eats food and grows", func(t *testing.T) {
		e := newTestEngine(t, DefaultConfig(), 1)
		s := State{
			Snake:   []Position{{X: 5, Y: 6}},
			Food:    Position{X: 6, Y: 6},
			Heading: Right,
			Level:   1,
		}

		next := e.Advance(s, Right)
		assert.Equal(t, []Position{{X: 6, Y: 6}, {X: 5, Y: 6}}, next.Snake)
		assert.Equal(t, 10, next.Score)
		assert.Equal(t, 1, next.Level)
		assert.NotContains(t, next.Snake, next.Food)
		assert.True(t, next.Food.InBound(DefaultGridSize))
	})

	t.Run("levels up at 50", func(t *testing.T) {
		e := newTestEngine(t, DefaultConfig(), 1)
		s := State{
			Snake:   []Position{{X: 5, Y: 6}},
			Food:    Position{X: 6, Y: 6},
			Heading: Right,
			Score:   40,
			Level:   1,
		}

		next := e.Advance(s, Right)
		assert.Equal(t, 50, next.Score)
		assert.Equal(t, 2, next.Level)
	})

	t.Run("wall collision is terminal", func(t *testing.T) {
		e := newTestEngine(t, DefaultConfig(), 1)
		s := State{
			Snake:   []Position{{X: 11, Y: 0}},
			Food:    Position{X: 6, Y: 6},
			Heading: Right,
			Score:   30,
			Level:   1,
		}

		next := e.Advance(s, Right)
		assert.True(t, next.GameOver)
		assert.Equal(t, 30, next.Score)
		assert.Equal(t, 1, next.Level)

		up := e.Advance(State{Snake: []Position{{X: 0, Y: 0}}, Food: Position{X: 5, Y: 5}, Heading: Up, Level: 1}, Up)
		assert.True(t, up.GameOver)
	})

	t.Run("self collision is terminal", func(t *testing.T) {
		e := newTestEngine(t, DefaultConfig(), 1)
		// Head at (2,2) turning down into its own body at (2,3).
		s := State{
			Snake:   []Position{{X: 2, Y: 2}, {X: 3, Y: 2}, {X: 3, Y: 3}, {X: 2, Y: 3}, {X: 1, Y: 3}},
			Food:    Position{X: 9, Y: 9},
			Heading: Left,
			Level:   1,
		}

		next := e.Advance(s, Down)
		assert.True(t, next.GameOver)
		assert.Len(t, next.Snake, 5)
	})

	t.Run("terminal is absorbing", func(t *testing.T) {
		e := newTestEngine(t, DefaultConfig(), 1)
		s := State{Snake: []Position{{X: 11, Y: 0}}, Food: Position{X: 1, Y: 1}, Heading: Right, Level: 1, GameOver: true}

		assert.Equal(t, s, e.Advance(s, Down))
	})

	t.Run("reversal is ignored", func(t *testing.T) {
		e := newTestEngine(t, DefaultConfig(), 1)
		s := State{
			Snake:   []Position{{X: 5, Y: 5}, {X: 4, Y: 5}, {X: 3, Y: 5}},
			Food:    Position{X: 0, Y: 0},
			Heading: Right,
			Level:   1,
		}

		next := e.Advance(s, Left)
		require.False(t, next.GameOver)
		assert.Equal(t, Right, next.Heading)
		assert.Equal(t, Position{X: 6, Y: 5}, next.Head())

		next = e.Advance(next, Left)
		require.False(t, next.GameOver)
		assert.Equal(t, Position{X: 7, Y: 5}, next.Head())
	})

	t.Run("full board is terminal", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.GridSize = 2
		e := newTestEngine(t, cfg, 1)
		s := State{
			Snake:   []Position{{X: 0, Y: 1}, {X: 0, Y: 0}, {X: 1, Y: 0}},
			Food:    Position{X: 1, Y: 1},
			Heading: Down,
			Level:   1,
		}

		next := e.Advance(s, Right)
		assert.True(t, next.GameOver)
		assert.Len(t, next.Snake, 4)
		assert.Equal(t, 10, next.Score)
	})
}

func TestAdvanceReachesFood(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), 7)
	s := e.NewState()

	for range 3 {
		s = e.Advance(s, Right)
	}
	require.Equal(t, Position{X: 6, Y: 3}, s.Head())

	for range 3 {
		s = e.Advance(s, Down)
	}

	assert.False(t, s.GameOver)
	assert.Equal(t, Position{X: 6, Y: 6}, s.Head())
	assert.Equal(t, 10, s.Score)
	assert.Equal(t, 1, s.Level)
	assert.Len(t, s.Snake, 2)
}

// TestAdvanceRandomWalk drives many games with random input and checks the
// invariants after every tick.
func TestAdvanceRandomWalk(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GridSize = 6
	e := newTestEngine(t, cfg, 42)
	input := rand.New(rand.NewSource(99))

	for game := 0; game < 200; game++ {
		s := e.NewState()
		for tick := 0; tick < 500 && !s.GameOver; tick++ {
			prev := s
			next := e.Advance(s, Direction(input.Intn(4)))

			if next.GameOver {
				assert.Equal(t, prev.Score, next.Score)
				break
			}

			assert.True(t, next.Head().InBound(cfg.GridSize))
			assert.NotEqual(t, prev.Heading.Opposite(), next.Heading, "reversal applied")

			grew := len(next.Snake) - len(prev.Snake)
			assert.Contains(t, []int{0, 1}, grew)
			if grew == 1 {
				assert.Equal(t, prev.Score+cfg.Reward, next.Score)
			} else {
				assert.Equal(t, prev.Score, next.Score)
			}
			assert.Zero(t, next.Score%cfg.Reward)
			assert.Equal(t, next.Score/cfg.LevelStep+1, next.Level)
			assert.NotContains(t, next.Snake, next.Food)

			s = next
		}
	}
}

func TestSpawnFood(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GridSize = 3
	e := newTestEngine(t, cfg, 3)

	snake := []Position{{0, 0}, {1, 0}, {2, 0}, {2, 1}, {1, 1}, {0, 1}, {0, 2}, {1, 2}}
	for range 50 {
		food, ok := e.SpawnFood(snake)
		require.True(t, ok)
		assert.Equal(t, Position{X: 2, Y: 2}, food)
	}

	_, ok := e.SpawnFood(append(snake, Position{X: 2, Y: 2}))
	assert.False(t, ok)
}
