package leaderboardapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-snake/api/identity"
	dmn "github.com/beka-birhanu/vinom-snake/domain"
	idt "github.com/beka-birhanu/vinom-snake/identity"
	logger "github.com/beka-birhanu/vinom-snake/infrastruture/log"
	"github.com/beka-birhanu/vinom-snake/infrastruture/repo"
	"github.com/beka-birhanu/vinom-snake/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const adminKey = "tangerine-Lighthouse-47-orbit!"

func newTestEngine(t *testing.T) (*gin.Engine, *service.Leaderboard) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repo.InitSQLite(filepath.Join(t.TempDir(), "snake.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	lb, err := service.NewLeaderboard(repo.NewMemoryLeaderboard(), repo.NewGameRecordRepo(db), nil, logger.Discard(), nil)
	require.NoError(t, err)

	key, err := idt.NewAdminKey(adminKey, bcrypt.MinCost)
	require.NoError(t, err)

	c := NewLeaderboardController(lb)
	r := gin.New()
	c.RegisterPublic(r.Group("/v1"))
	admin := r.Group("/v1")
	admin.Use(identity.AdminOnly(key))
	c.RegisterAdmin(admin)
	return r, lb
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func del(r http.Handler, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodDelete, path, nil)
	if key != "" {
		req.Header.Set(identity.AdminKeyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seed(t *testing.T, lb *service.Leaderboard) {
	t.Helper()
	ctx := context.Background()
	lb.RecordGame(ctx, "alice", 60, 2, 30*time.Second, nil)
	lb.RecordGame(ctx, "bob", 90, 2, 50*time.Second, nil)
	lb.RecordGame(ctx, "alice", 20, 1, 10*time.Second, nil)
}

func TestLeaderboardRoutes(t *testing.T) {
	r, lb := newTestEngine(t)
	seed(t, lb)

	t.Run("top falls back to local without remote", func(t *testing.T) {
		w := get(r, "/v1/leaderboard?limit=1")
		require.Equal(t, http.StatusOK, w.Code)
		var view dmn.LeaderboardView
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
		assert.Equal(t, dmn.SourceLocal, view.Source)
		require.Len(t, view.Entries, 1)
		assert.Equal(t, "bob", view.Entries[0].Name)
	})

	t.Run("local", func(t *testing.T) {
		w := get(r, "/v1/leaderboard/local?limit=oops")
		require.Equal(t, http.StatusOK, w.Code)
		var view dmn.LeaderboardView
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
		assert.Len(t, view.Entries, 2)
	})

	t.Run("player", func(t *testing.T) {
		w := get(r, "/v1/leaderboard/players/alice")
		require.Equal(t, http.StatusOK, w.Code)
		var rec dmn.PlayerRecord
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
		assert.Equal(t, 60, rec.HighScore)
		assert.Equal(t, 2, rec.GamesPlayed)

		assert.Equal(t, http.StatusNotFound, get(r, "/v1/leaderboard/players/nobody").Code)
		assert.Equal(t, http.StatusBadRequest, get(r, "/v1/leaderboard/players/x").Code)
	})

	t.Run("records", func(t *testing.T) {
		var records []dmn.GameRecord
		w := get(r, "/v1/records")
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
		require.Len(t, records, 3)
		assert.Equal(t, 90, records[0].Score)

		w = get(r, "/v1/records/top?limit=2")
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
		assert.Len(t, records, 2)

		w = get(r, "/v1/records/players/alice")
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
		require.Len(t, records, 2)
		assert.Equal(t, 30, records[0].TimeSeconds)

		w = get(r, "/v1/records/stats")
		assert.JSONEq(t, `{"maxScore":90,"averageScore":56.666666666666664}`, w.Body.String())
	})

	t.Run("admin clears", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, del(r, "/v1/records", "").Code)
		assert.Equal(t, http.StatusForbidden, del(r, "/v1/leaderboard/local", "nope").Code)

		assert.Equal(t, http.StatusNoContent, del(r, "/v1/records", adminKey).Code)
		assert.Equal(t, http.StatusNoContent, del(r, "/v1/leaderboard/local", adminKey).Code)

		assert.JSONEq(t, `[]`, get(r, "/v1/records").Body.String())
		assert.JSONEq(t, `{"maxScore":0,"averageScore":0}`, get(r, "/v1/records/stats").Body.String())
		assert.JSONEq(t, `{"entries":[],"source":"local"}`, get(r, "/v1/leaderboard/local").Body.String())
	})
}
