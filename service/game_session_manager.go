package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	dmn "github.com/beka-birhanu/vinom-snake/domain"
	"github.com/beka-birhanu/vinom-snake/game"
	"github.com/beka-birhanu/vinom-snake/service/i"
	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("game session not found")
	ErrNotSessionOwner = errors.New("game session belongs to another player")
)

var _ i.GameSessionManager = &GameSessionManager{}

type session struct {
	id     uuid.UUID
	player string
	game   *game.Game
	cancel context.CancelFunc
	ended  bool

	subscribers map[int]chan game.State
	nextSubID   int
}

// GameSessionManager runs at most one game per player and forwards every
// finished game to the recorder.
type GameSessionManager struct {
	engineConfig    game.Config
	recorder        i.GameRecorder
	logger          i.Logger
	sessions        map[uuid.UUID]*session
	playerToSession map[string]uuid.UUID
	screens         map[string]dmn.Screen
	wg              sync.WaitGroup
	sync.RWMutex
}

type Config struct {
	EngineConfig game.Config
	Recorder     i.GameRecorder // May be nil; results are then only logged.
	Logger       i.Logger
}

func NewGameSessionManager(c *Config) (*GameSessionManager, error) {
	if err := c.EngineConfig.Validate(); err != nil {
		return nil, err
	}

	return &GameSessionManager{
		engineConfig:    c.EngineConfig,
		recorder:        c.Recorder,
		logger:          c.Logger,
		sessions:        make(map[uuid.UUID]*session),
		playerToSession: make(map[string]uuid.UUID),
		screens:         make(map[string]dmn.Screen),
	}, nil
}

// NewSession stops the player's previous game without recording it and starts
// a fresh one. The game outlives ctx's cancellation but keeps its values.
func (g *GameSessionManager) NewSession(ctx context.Context, player string) (uuid.UUID, game.State, error) {
	if err := dmn.ValidatePlayerName(player); err != nil {
		return uuid.Nil, game.State{}, err
	}

	// Each game owns its engine: the random source is not shared.
	engine, err := game.NewEngine(g.engineConfig, nil)
	if err != nil {
		return uuid.Nil, game.State{}, err
	}
	gameServer, err := game.New(engine)
	if err != nil {
		g.logger.Error(fmt.Sprintf("creating new game: %s", err))
		return uuid.Nil, game.State{}, err
	}

	gameCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	g.Lock()
	if prevID, ok := g.playerToSession[player]; ok {
		g.dropSessionLocked(prevID)
	}
	s := g.saveSessionLocked(player, gameServer)
	s.cancel = cancel
	start := gameServer.Snapshot()
	g.screens[player] = dmn.Playing{SessionID: s.id.String(), State: start}
	g.wg.Add(2)
	g.Unlock()

	go func() {
		defer g.wg.Done()
		gameServer.Start(gameCtx)
	}()
	go func() {
		defer g.wg.Done()
		g.listenGameChan(s)
	}()

	g.logger.Info(fmt.Sprintf("started new game %s for player %q", s.id, player))
	return s.id, start, nil
}

// Turn queues d for the next tick of the session.
func (g *GameSessionManager) Turn(sessionID uuid.UUID, player string, d game.Direction) error {
	s, err := g.owned(sessionID, player)
	if err != nil {
		return err
	}
	return s.game.Turn(d)
}

// State returns the latest snapshot, including the final one of a finished game.
func (g *GameSessionManager) State(sessionID uuid.UUID) (game.State, error) {
	g.RLock()
	s, ok := g.sessions[sessionID]
	g.RUnlock()
	if !ok {
		return game.State{}, ErrSessionNotFound
	}
	return s.game.Snapshot(), nil
}

// Subscribe returns a channel of snapshots. Slow readers only see the latest
// one. The channel closes when the game ends, the session is dropped or
// cancel is called.
func (g *GameSessionManager) Subscribe(sessionID uuid.UUID) (<-chan game.State, func(), error) {
	g.Lock()
	defer g.Unlock()

	s, ok := g.sessions[sessionID]
	if !ok {
		return nil, nil, ErrSessionNotFound
	}

	updates := make(chan game.State, 1)
	updates <- s.game.Snapshot()
	if s.ended {
		close(updates)
		return updates, func() {}, nil
	}

	subID := s.nextSubID
	s.nextSubID++
	s.subscribers[subID] = updates

	cancel := func() {
		g.Lock()
		defer g.Unlock()
		if ch, ok := s.subscribers[subID]; ok {
			delete(s.subscribers, subID)
			close(ch)
		}
	}
	return updates, cancel, nil
}

// EndSession tears the player's session down. The result is not recorded and
// the player goes back to the menu.
func (g *GameSessionManager) EndSession(sessionID uuid.UUID, player string) error {
	if _, err := g.owned(sessionID, player); err != nil {
		return err
	}

	g.Lock()
	g.dropSessionLocked(sessionID)
	g.screens[player] = dmn.Menu{}
	g.Unlock()

	g.logger.Info(fmt.Sprintf("player %q ended game %s", player, sessionID))
	return nil
}

// ShowMenu leaves whatever the player is looking at, tearing down a running
// game, and shows the menu.
func (g *GameSessionManager) ShowMenu(player string) {
	g.navigate(player, dmn.Menu{})
}

// ShowLeaderboard leaves whatever the player is looking at, tearing down a
// running game, and shows view.
func (g *GameSessionManager) ShowLeaderboard(player string, view dmn.LeaderboardView) {
	g.navigate(player, dmn.Leaderboard{View: view})
}

func (g *GameSessionManager) navigate(player string, to dmn.Screen) {
	g.Lock()
	defer g.Unlock()
	if id, ok := g.playerToSession[player]; ok {
		g.dropSessionLocked(id)
	}
	g.screens[player] = to
}

// Screen returns what the player is looking at. Unknown names get the
// username prompt; known players without history get the menu.
func (g *GameSessionManager) Screen(player string) dmn.Screen {
	if dmn.ValidatePlayerName(player) != nil {
		return dmn.UsernameInput{}
	}

	g.RLock()
	defer g.RUnlock()

	if id, ok := g.playerToSession[player]; ok {
		if s := g.sessions[id]; s != nil && !s.ended {
			return dmn.Playing{SessionID: id.String(), State: s.game.Snapshot()}
		}
	}
	if screen, ok := g.screens[player]; ok {
		if _, playing := screen.(dmn.Playing); !playing {
			return screen
		}
	}
	return dmn.Menu{}
}

// StopAll tears down every running game and waits for their loops to exit.
func (g *GameSessionManager) StopAll() {
	g.Lock()
	for id := range g.sessions {
		g.dropSessionLocked(id)
	}
	g.Unlock()

	g.wg.Wait()
}

func (g *GameSessionManager) owned(sessionID uuid.UUID, player string) (*session, error) {
	g.RLock()
	defer g.RUnlock()

	s, ok := g.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.player != player {
		return nil, ErrNotSessionOwner
	}
	return s, nil
}

func (g *GameSessionManager) saveSessionLocked(player string, gs *game.Game) *session {
	sessionID := uuid.New()
	for {
		if _, ok := g.sessions[sessionID]; !ok {
			break
		}
		sessionID = uuid.New()
	}

	s := &session{
		id:          sessionID,
		player:      player,
		game:        gs,
		subscribers: make(map[int]chan game.State),
	}
	g.sessions[sessionID] = s
	g.playerToSession[player] = sessionID
	return s
}

// dropSessionLocked stops the game and forgets the session. Callers hold the
// write lock.
func (g *GameSessionManager) dropSessionLocked(id uuid.UUID) {
	s, ok := g.sessions[id]
	if !ok {
		return
	}

	s.game.Stop()
	g.closeSubscribersLocked(s)
	delete(g.sessions, id)
	if g.playerToSession[s.player] == id {
		delete(g.playerToSession, s.player)
	}
}

func (g *GameSessionManager) closeSubscribersLocked(s *session) {
	for subID, ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, subID)
	}
}

func (g *GameSessionManager) listenGameChan(s *session) {
	defer s.cancel()

	stateChan := s.game.StateChan
	for {
		select {
		case state, ok := <-stateChan:
			if !ok {
				stateChan = nil
				continue
			}
			g.broadcast(s, state)
		case result, ok := <-s.game.EndChan:
			if !ok {
				return
			}
			// The final snapshot may still be buffered.
			for state := range s.game.StateChan {
				g.broadcast(s, state)
			}
			g.finish(s, result)
			return
		}
	}
}

func (g *GameSessionManager) broadcast(s *session, state game.State) {
	g.RLock()
	defer g.RUnlock()
	for _, ch := range s.subscribers {
		offer(ch, state)
	}
}

func (g *GameSessionManager) finish(s *session, result game.Result) {
	g.Lock()
	current := g.sessions[s.id] == s
	if current {
		s.ended = true
		g.closeSubscribersLocked(s)
		if !result.Aborted {
			g.screens[s.player] = dmn.GameOver{Score: result.Score, Level: result.Level}
		}
	}
	g.Unlock()

	if result.Aborted {
		g.logger.Info(fmt.Sprintf("game %s of %q torn down", s.id, s.player))
		return
	}

	g.logger.Info(fmt.Sprintf("game %s of %q over: score=%d level=%d elapsed=%s",
		s.id, s.player, result.Score, result.Level, result.Elapsed))
	if g.recorder == nil {
		return
	}

	player := s.player
	g.recorder.RecordGame(context.Background(), player, result.Score, result.Level, result.Elapsed, func(ok bool) {
		if !ok {
			g.logger.Warning(fmt.Sprintf("result of %q was not synced to the remote leaderboard", player))
		}
	})
}

// offer delivers state, replacing an unread older snapshot.
func offer(ch chan game.State, state game.State) {
	select {
	case ch <- state:
		return
	default:
	}

	select {
	case <-ch:
	default:
	}

	select {
	case ch <- state:
	default:
	}
}
