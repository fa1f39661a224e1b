package gameapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-snake/api/identity"
	dmn "github.com/beka-birhanu/vinom-snake/domain"
	"github.com/beka-birhanu/vinom-snake/game"
	logger "github.com/beka-birhanu/vinom-snake/infrastruture/log"
	"github.com/beka-birhanu/vinom-snake/infrastruture/token"
	"github.com/beka-birhanu/vinom-snake/service"
	"github.com/beka-birhanu/vinom-snake/service/i"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLeaderboard serves a fixed ranking; other methods are unused here.
type stubLeaderboard struct {
	i.LeaderboardService
}

func (stubLeaderboard) Top(_ context.Context, _ int) dmn.LeaderboardView {
	return dmn.LeaderboardView{
		Entries: []dmn.PlayerRecord{{Name: "carol", HighScore: 90, HighestLevel: 2, GamesPlayed: 4}},
		Source:  dmn.SourceLocal,
		Notice:  "offline",
	}
}

type testServer struct {
	engine    *gin.Engine
	manager   *service.GameSessionManager
	tokenizer *token.JwtService
}

func newTestServer(t *testing.T, cfg game.Config) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokenizer, err := token.NewJwtService("secret", "snake")
	require.NoError(t, err)
	gsm, err := service.NewGameSessionManager(&service.Config{EngineConfig: cfg, Logger: logger.Discard()})
	require.NoError(t, err)
	t.Cleanup(gsm.StopAll)

	gc, err := NewGameController(gsm, stubLeaderboard{}, logger.Discard())
	require.NoError(t, err)

	r := gin.New()
	protected := r.Group("/v1")
	protected.Use(identity.Authoriz(tokenizer))
	gc.RegisterProtected(protected)

	return &testServer{engine: r, manager: gsm, tokenizer: tokenizer}
}

func (s *testServer) bearer(t *testing.T, player string) http.Header {
	t.Helper()
	signed, err := s.tokenizer.Generate(map[string]interface{}{service.PlayerNameClaim: player}, time.Minute)
	require.NoError(t, err)
	return http.Header{"Authorization": {"Bearer " + signed}}
}

func (s *testServer) do(method, path string, body interface{}, header http.Header) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func slowConfig() game.Config {
	cfg := game.DefaultConfig()
	cfg.BaseInterval = time.Hour
	cfg.MinInterval = time.Hour
	return cfg
}

func fastConfig() game.Config {
	cfg := game.DefaultConfig()
	cfg.GridSize = 4
	cfg.BaseInterval = 20 * time.Millisecond
	cfg.MinInterval = 20 * time.Millisecond
	return cfg
}

func TestGameLifecycle(t *testing.T) {
	s := newTestServer(t, slowConfig())
	alice := s.bearer(t, "alice")

	w := s.do(http.MethodPost, "/v1/games", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/v1/games", nil, alice)
	require.Equal(t, http.StatusCreated, w.Code)
	var created SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, []game.Position{{X: 3, Y: 3}}, created.State.Snake)
	assert.Equal(t, game.Right, created.State.Heading)
	assert.Contains(t, w.Body.String(), `"heading":"RIGHT"`)

	gamePath := "/v1/games/" + created.SessionID

	w = s.do(http.MethodGet, gamePath, nil, alice)
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("turn", func(t *testing.T) {
		w := s.do(http.MethodPost, gamePath+"/turn", TurnRequest{Direction: "down"}, alice)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = s.do(http.MethodPost, gamePath+"/turn", TurnRequest{Direction: "sideways"}, alice)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(http.MethodPost, gamePath+"/turn", map[string]string{}, alice)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(http.MethodPost, gamePath+"/turn", TurnRequest{Direction: "UP"}, s.bearer(t, "mallory"))
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = s.do(http.MethodPost, "/v1/games/not-a-uuid/turn", TurnRequest{Direction: "UP"}, alice)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(http.MethodPost, "/v1/games/6f1c1c5e-3a3f-4f43-9d8e-0d4f2c1b9a77/turn", TurnRequest{Direction: "UP"}, alice)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("screen while playing", func(t *testing.T) {
		w := s.do(http.MethodGet, "/v1/screen", nil, alice)
		require.Equal(t, http.StatusOK, w.Code)
		var screen ScreenResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &screen))
		assert.Equal(t, "PLAYING", screen.Screen)
		require.NotNil(t, screen.Playing)
		assert.Equal(t, created.SessionID, screen.Playing.SessionID)
	})

	t.Run("end", func(t *testing.T) {
		w := s.do(http.MethodDelete, gamePath, nil, s.bearer(t, "mallory"))
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = s.do(http.MethodDelete, gamePath, nil, alice)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = s.do(http.MethodGet, gamePath, nil, alice)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = s.do(http.MethodGet, "/v1/screen", nil, alice)
		assert.JSONEq(t, `{"screen":"MENU"}`, w.Body.String())
	})
}

func TestScreenNavigation(t *testing.T) {
	s := newTestServer(t, slowConfig())
	bob := s.bearer(t, "bob")

	w := s.do(http.MethodPost, "/v1/games", nil, bob)
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, "/v1/screen/leaderboard?limit=5", nil, bob)
	require.Equal(t, http.StatusOK, w.Code)
	var screen ScreenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &screen))
	assert.Equal(t, "LEADERBOARD", screen.Screen)
	require.NotNil(t, screen.Leaderboard)
	assert.Equal(t, "offline", screen.Leaderboard.Notice)
	assert.Equal(t, "carol", screen.Leaderboard.Entries[0].Name)

	w = s.do(http.MethodPost, "/v1/screen/menu", nil, bob)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"screen":"MENU"}`, w.Body.String())
}

func TestRenderScreen(t *testing.T) {
	assert.Equal(t, &ScreenResponse{Screen: "USERNAME_INPUT"}, renderScreen(dmn.UsernameInput{}))
	assert.Equal(t, &ScreenResponse{Screen: "MENU"}, renderScreen(dmn.Menu{}))

	over := renderScreen(dmn.GameOver{Score: 30, Level: 1})
	require.NotNil(t, over.GameOver)
	assert.Equal(t, 30, over.GameOver.Score)
}

func dialStream(t *testing.T, srv *httptest.Server, sessionID string, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/games/" + sessionID + "/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
		_ = resp.Body.Close()
	})
	return conn
}

func TestStreamRejectsBadCommands(t *testing.T) {
	s := newTestServer(t, slowConfig())
	srv := httptest.NewServer(s.engine)
	defer srv.Close()
	alice := s.bearer(t, "alice")

	w := s.do(http.MethodPost, "/v1/games", nil, alice)
	require.Equal(t, http.StatusCreated, w.Code)
	var created SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	conn := dialStream(t, srv, created.SessionID, alice)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var first StreamMessage
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, created.State.Snake, first.State.Snake)

	require.NoError(t, conn.WriteJSON(StreamCommand{Direction: "sideways"}))
	var rejected map[string]string
	require.NoError(t, conn.ReadJSON(&rejected))
	assert.Equal(t, game.ErrInvalidDirection.Error(), rejected["error"])
}

func TestStreamUntilGameOver(t *testing.T) {
	s := newTestServer(t, fastConfig())
	srv := httptest.NewServer(s.engine)
	defer srv.Close()
	alice := s.bearer(t, "alice")

	w := s.do(http.MethodPost, "/v1/games", nil, alice)
	require.Equal(t, http.StatusCreated, w.Code)
	var created SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	conn := dialStream(t, srv, created.SessionID, alice)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var last StreamMessage
	for {
		var msg StreamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), err)
			break
		}
		last = msg
	}
	assert.True(t, last.State.GameOver)
	assert.Equal(t, game.Position{X: 3, Y: 1}, last.State.Head())

	w = s.do(http.MethodGet, "/v1/screen", nil, alice)
	assert.JSONEq(t, `{"screen":"GAME_OVER","gameOver":{"score":0,"level":1}}`, w.Body.String())
}

func TestStreamUnknownSession(t *testing.T) {
	s := newTestServer(t, slowConfig())
	w := s.do(http.MethodGet, "/v1/games/6f1c1c5e-3a3f-4f43-9d8e-0d4f2c1b9a77/stream", nil, s.bearer(t, "alice"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
