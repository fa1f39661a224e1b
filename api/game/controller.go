package gameapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/beka-birhanu/vinom-snake/api/identity"
	dmn "github.com/beka-birhanu/vinom-snake/domain"
	"github.com/beka-birhanu/vinom-snake/game"
	"github.com/beka-birhanu/vinom-snake/service"
	"github.com/beka-birhanu/vinom-snake/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GameController runs the player's game sessions and screen navigation.
type GameController struct {
	gameSessionManager i.GameSessionManager
	leaderboard        i.LeaderboardService
	logger             i.Logger
}

// NewGameController initializes a GameController.
func NewGameController(gsm i.GameSessionManager, lb i.LeaderboardService, logger i.Logger) (*GameController, error) {
	if gsm == nil || lb == nil {
		return nil, errors.New("session manager and leaderboard are required")
	}
	return &GameController{
		gameSessionManager: gsm,
		leaderboard:        lb,
		logger:             logger,
	}, nil
}

// RegisterPublic registers public routes.
func (gc *GameController) RegisterPublic(route *gin.RouterGroup) {}

// RegisterProtected registers protected routes.
func (gc *GameController) RegisterProtected(route *gin.RouterGroup) {
	games := route.Group("/games")
	{
		games.POST("", gc.newGame)
		games.GET("/:ID", gc.state)
		games.POST("/:ID/turn", gc.turn)
		games.DELETE("/:ID", gc.end)
		games.GET("/:ID/stream", gc.stream)
	}

	screen := route.Group("/screen")
	{
		screen.GET("", gc.screen)
		screen.POST("/menu", gc.showMenu)
		screen.POST("/leaderboard", gc.showLeaderboard)
	}
}

// RegisterAdmin registers operator routes.
func (gc *GameController) RegisterAdmin(route *gin.RouterGroup) {}

// newGame starts a game for the signed-in player, replacing any running one.
func (gc *GameController) newGame(ctx *gin.Context) {
	player, ok := identity.PlayerName(ctx)
	if !ok {
		ctx.Status(http.StatusUnauthorized)
		return
	}

	id, start, err := gc.gameSessionManager.NewSession(ctx.Request.Context(), player)
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, &SessionResponse{SessionID: id.String(), State: start})
}

// state returns the latest snapshot of a session.
func (gc *GameController) state(ctx *gin.Context) {
	id, ok := sessionID(ctx)
	if !ok {
		return
	}

	state, err := gc.gameSessionManager.State(id)
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, &SessionResponse{SessionID: id.String(), State: state})
}

// turn queues a direction for the next tick.
func (gc *GameController) turn(ctx *gin.Context) {
	player, ok := identity.PlayerName(ctx)
	if !ok {
		ctx.Status(http.StatusUnauthorized)
		return
	}
	id, ok := sessionID(ctx)
	if !ok {
		return
	}

	var request TurnRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	direction, err := game.ParseDirection(request.Direction)
	if err != nil {
		writeError(ctx, err)
		return
	}

	if err := gc.gameSessionManager.Turn(id, player, direction); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// end tears the session down without recording it.
func (gc *GameController) end(ctx *gin.Context) {
	player, ok := identity.PlayerName(ctx)
	if !ok {
		ctx.Status(http.StatusUnauthorized)
		return
	}
	id, ok := sessionID(ctx)
	if !ok {
		return
	}

	if err := gc.gameSessionManager.EndSession(id, player); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (gc *GameController) screen(ctx *gin.Context) {
	player, _ := identity.PlayerName(ctx)
	ctx.JSON(http.StatusOK, renderScreen(gc.gameSessionManager.Screen(player)))
}

func (gc *GameController) showMenu(ctx *gin.Context) {
	player, ok := identity.PlayerName(ctx)
	if !ok {
		ctx.Status(http.StatusUnauthorized)
		return
	}

	gc.gameSessionManager.ShowMenu(player)
	ctx.JSON(http.StatusOK, renderScreen(gc.gameSessionManager.Screen(player)))
}

func (gc *GameController) showLeaderboard(ctx *gin.Context) {
	player, ok := identity.PlayerName(ctx)
	if !ok {
		ctx.Status(http.StatusUnauthorized)
		return
	}

	limit, _ := strconv.Atoi(ctx.Query("limit"))
	view := gc.leaderboard.Top(ctx.Request.Context(), limit)
	gc.gameSessionManager.ShowLeaderboard(player, view)
	ctx.JSON(http.StatusOK, renderScreen(gc.gameSessionManager.Screen(player)))
}

// renderScreen is the single place screens are turned into responses.
func renderScreen(s dmn.Screen) *ScreenResponse {
	resp := &ScreenResponse{Screen: s.Name()}
	switch v := s.(type) {
	case dmn.Playing:
		resp.Playing = &SessionResponse{SessionID: v.SessionID, State: v.State}
	case dmn.GameOver:
		resp.GameOver = &v
	case dmn.Leaderboard:
		resp.Leaderboard = &v.View
	case dmn.Menu, dmn.UsernameInput:
	}
	return resp
}

func sessionID(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Params.ByName("ID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return uuid.Nil, false
	}
	return id, true
}

func writeError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotSessionOwner):
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, game.ErrInvalidDirection), errors.Is(err, dmn.ErrInvalidPlayerName):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, game.ErrGameOver):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected error"})
	}
}
