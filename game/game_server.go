package game

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// Game-related errors.
var (
	ErrNilEngine = errors.New("engine must not be nil")
	ErrGameOver  = errors.New("game is over")
)

// Result is emitted once when a game loop ends.
type Result struct {
	Score   int           `json:"score"`
	Level   int           `json:"level"`
	Elapsed time.Duration `json:"elapsed"`
	Aborted bool          `json:"aborted"` // Loop was torn down before reaching a terminal state.
}

// Game runs the fixed-interval loop of a single snake game.
// Only the loop goroutine writes the state; direction input is stored
// atomically and read once per tick.
type Game struct {
	engine    *Engine
	state     State
	pending   atomic.Int32
	startedAt time.Time
	stop      chan struct{}
	stopOnce  sync.Once
	StateChan chan State  // Latest snapshot after each tick; stale snapshots are dropped.
	EndChan   chan Result // Receives exactly one Result, then closes.
	sync.RWMutex
}

// New creates a game in its opening state. The loop does not run until Start.
func New(engine *Engine) (*Game, error) {
	if engine == nil {
		return nil, ErrNilEngine
	}

	g := &Game{
		engine:    engine,
		state:     engine.NewState(),
		stop:      make(chan struct{}),
		StateChan: make(chan State, 1),
		EndChan:   make(chan Result, 1),
	}
	g.pending.Store(int32(g.state.Heading))
	return g, nil
}

// Turn records the direction for the next tick. Later calls before the tick
// overwrite earlier ones.
func (g *Game) Turn(d Direction) error {
	if !d.Valid() {
		return ErrInvalidDirection
	}
	if g.Snapshot().GameOver {
		return ErrGameOver
	}
	g.pending.Store(int32(d))
	return nil
}

// Snapshot returns a copy of the current state.
func (g *Game) Snapshot() State {
	g.RLock()
	defer g.RUnlock()
	return g.state.Clone()
}

// Start runs the loop until the state turns terminal, ctx is cancelled or
// Stop is called. It blocks; run it in its own goroutine.
func (g *Game) Start(ctx context.Context) {
	g.Lock()
	g.startedAt = time.Now()
	interval := g.engine.cfg.IntervalFor(g.state.Level)
	g.Unlock()

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			g.finish(true)
			return
		case <-g.stop:
			g.finish(true)
			return
		case <-timer.C:
			next := g.tick()
			g.publish(next)
			if next.GameOver {
				g.finish(false)
				return
			}
			timer.Reset(g.engine.cfg.IntervalFor(next.Level))
		}
	}
}

// Stop tears the loop down. Safe to call more than once.
func (g *Game) Stop() {
	g.stopOnce.Do(func() {
		close(g.stop)
	})
}

func (g *Game) tick() State {
	pending := Direction(g.pending.Load())

	g.Lock()
	defer g.Unlock()
	g.state = g.engine.Advance(g.state, pending)
	return g.state.Clone()
}

// publish hands the snapshot to StateChan without blocking the loop.
func (g *Game) publish(s State) {
	select {
	case g.StateChan <- s:
		return
	default:
	}

	select {
	case <-g.StateChan:
	default:
	}

	select {
	case g.StateChan <- s:
	default:
	}
}

func (g *Game) finish(aborted bool) {
	g.RLock()
	result := Result{
		Score:   g.state.Score,
		Level:   g.state.Level,
		Elapsed: time.Since(g.startedAt),
		Aborted: aborted,
	}
	g.RUnlock()

	g.EndChan <- result
	close(g.StateChan)
	close(g.EndChan)
}
