package game

import (
	"errors"
	"math/rand"
	"time"
)

// Engine configuration errors.
var (
	ErrNotBigEnoughGrid = errors.New("grid is not big enough")
	ErrInvalidReward    = errors.New("reward and level step must be positive")
	ErrInvalidInterval  = errors.New("intervals must be positive and base must not be below min")
)

// Defaults of the classic board.
const (
	DefaultGridSize     = 12
	DefaultReward       = 10
	DefaultLevelStep    = 50
	DefaultBaseInterval = 400 * time.Millisecond
	DefaultMinInterval  = 80 * time.Millisecond
	DefaultIntervalStep = 45 * time.Millisecond

	minGridSize = 2
)

// Config describes board size, scoring and pacing.
type Config struct {
	GridSize     int
	Reward       int           // Score added per food eaten.
	LevelStep    int           // Score needed per level.
	BaseInterval time.Duration // Tick interval at level 1.
	MinInterval  time.Duration // Fastest tick interval.
	IntervalStep time.Duration // Interval reduction per level.
}

// DefaultConfig returns the classic 12x12 configuration.
func DefaultConfig() Config {
	return Config{
		GridSize:     DefaultGridSize,
		Reward:       DefaultReward,
		LevelStep:    DefaultLevelStep,
		BaseInterval: DefaultBaseInterval,
		MinInterval:  DefaultMinInterval,
		IntervalStep: DefaultIntervalStep,
	}
}

// Validate checks the configuration constraints.
func (c Config) Validate() error {
	if c.GridSize < minGridSize {
		return ErrNotBigEnoughGrid
	}
	if c.Reward <= 0 || c.LevelStep <= 0 {
		return ErrInvalidReward
	}
	if c.MinInterval <= 0 || c.BaseInterval < c.MinInterval || c.IntervalStep < 0 {
		return ErrInvalidInterval
	}
	return nil
}

// LevelFor returns floor(score/LevelStep)+1.
func (c Config) LevelFor(score int) int {
	return score/c.LevelStep + 1
}

// IntervalFor returns max(MinInterval, BaseInterval-(level-1)*IntervalStep).
func (c Config) IntervalFor(level int) time.Duration {
	return max(c.MinInterval, c.BaseInterval-time.Duration(level-1)*c.IntervalStep)
}

// Engine computes successive game states. It holds no game state itself and
// is not safe for concurrent use because of its random source.
type Engine struct {
	cfg Config
	rng *rand.Rand
}

// NewEngine creates an Engine. A nil rng is replaced by a time-seeded one.
func NewEngine(cfg Config, rng *rand.Rand) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{cfg: cfg, rng: rng}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// NewState returns the opening state: a one-cell snake a quarter of the way
// into the board heading right, food at the centre.
func (e *Engine) NewState() State {
	start := e.cfg.GridSize / 4
	center := e.cfg.GridSize / 2
	return State{
		Snake:   []Position{{X: start, Y: start}},
		Food:    Position{X: center, Y: center},
		Heading: Right,
		Score:   0,
		Level:   1,
	}
}

// Advance moves the snake one cell and returns the resulting state. The input
// state is not modified. Terminal states are returned unchanged.
func (e *Engine) Advance(s State, pending Direction) State {
	if s.GameOver || len(s.Snake) == 0 {
		return s
	}

	heading := effective(s.Heading, pending)
	head := s.Snake[0].Step(heading)

	if !head.InBound(e.cfg.GridSize) || occupies(s.Snake, head) {
		return s.terminal(heading)
	}

	body := make([]Position, 0, len(s.Snake)+1)
	body = append(body, head)
	body = append(body, s.Snake...)

	next := State{
		Snake:   body,
		Food:    s.Food,
		Heading: heading,
		Score:   s.Score,
		Level:   s.Level,
	}

	if head != s.Food {
		next.Snake = body[:len(body)-1]
		return next
	}

	next.Score += e.cfg.Reward
	next.Level = e.cfg.LevelFor(next.Score)

	food, ok := e.SpawnFood(next.Snake)
	if !ok {
		// Board is full, nothing left to eat.
		next.GameOver = true
		return next
	}
	next.Food = food
	return next
}

// SpawnFood picks a uniformly random free cell by rejection sampling. It
// reports false when the snake covers the whole board.
func (e *Engine) SpawnFood(snake []Position) (Position, bool) {
	size := e.cfg.GridSize
	if len(snake) >= size*size {
		return Position{}, false
	}

	for {
		food := Position{X: e.rng.Intn(size), Y: e.rng.Intn(size)}
		if !occupies(snake, food) {
			return food, true
		}
	}
}
