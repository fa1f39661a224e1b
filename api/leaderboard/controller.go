// Package leaderboardapi serves the rankings and the game history.
package leaderboardapi

import (
	"errors"
	"net/http"
	"strconv"

	dmn "github.com/beka-birhanu/vinom-snake/domain"
	"github.com/beka-birhanu/vinom-snake/service/i"
	"github.com/gin-gonic/gin"
)

// LeaderboardController exposes the leaderboard service.
type LeaderboardController struct {
	leaderboard i.LeaderboardService
}

func NewLeaderboardController(lb i.LeaderboardService) *LeaderboardController {
	return &LeaderboardController{leaderboard: lb}
}

// RegisterPublic registers public routes.
func (lc *LeaderboardController) RegisterPublic(route *gin.RouterGroup) {
	board := route.Group("/leaderboard")
	{
		board.GET("", lc.top)
		board.GET("/local", lc.localTop)
		board.GET("/players/:name", lc.player)
	}

	records := route.Group("/records")
	{
		records.GET("", lc.history)
		records.GET("/top", lc.topRecords)
		records.GET("/stats", lc.stats)
		records.GET("/players/:name", lc.playerRecords)
	}
}

// RegisterProtected registers protected routes.
func (lc *LeaderboardController) RegisterProtected(route *gin.RouterGroup) {}

// RegisterAdmin registers operator routes.
func (lc *LeaderboardController) RegisterAdmin(route *gin.RouterGroup) {
	route.DELETE("/leaderboard/local", lc.clearLocal)
	route.DELETE("/records", lc.clearRecords)
}

// top serves the remote ranking, or the local one with a notice.
func (lc *LeaderboardController) top(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, lc.leaderboard.Top(ctx.Request.Context(), limit(ctx)))
}

func (lc *LeaderboardController) localTop(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, lc.leaderboard.LocalTop(ctx.Request.Context(), limit(ctx)))
}

func (lc *LeaderboardController) player(ctx *gin.Context) {
	rec, err := lc.leaderboard.Player(ctx.Request.Context(), ctx.Param("name"))
	switch {
	case errors.Is(err, dmn.ErrInvalidPlayerName):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, dmn.ErrPlayerNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case err != nil:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not load player"})
	default:
		ctx.JSON(http.StatusOK, rec)
	}
}

func (lc *LeaderboardController) history(ctx *gin.Context) {
	records, err := lc.leaderboard.History(ctx.Request.Context())
	respondRecords(ctx, records, err)
}

func (lc *LeaderboardController) topRecords(ctx *gin.Context) {
	records, err := lc.leaderboard.TopRecords(ctx.Request.Context(), limit(ctx))
	respondRecords(ctx, records, err)
}

func (lc *LeaderboardController) playerRecords(ctx *gin.Context) {
	records, err := lc.leaderboard.PlayerRecords(ctx.Request.Context(), ctx.Param("name"))
	respondRecords(ctx, records, err)
}

// stats never fails the request; a broken store reads as zeros.
func (lc *LeaderboardController) stats(ctx *gin.Context) {
	stats, err := lc.leaderboard.Stats(ctx.Request.Context())
	if err != nil {
		stats = dmn.ScoreStats{}
	}
	ctx.JSON(http.StatusOK, stats)
}

func (lc *LeaderboardController) clearLocal(ctx *gin.Context) {
	if err := lc.leaderboard.ClearLocal(ctx.Request.Context()); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not clear leaderboard"})
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (lc *LeaderboardController) clearRecords(ctx *gin.Context) {
	if err := lc.leaderboard.ClearRecords(ctx.Request.Context()); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not clear records"})
		return
	}
	ctx.Status(http.StatusNoContent)
}

// respondRecords answers with the records, or an empty list when the store
// failed.
func respondRecords(ctx *gin.Context, records []dmn.GameRecord, err error) {
	if err != nil || records == nil {
		records = []dmn.GameRecord{}
	}
	ctx.JSON(http.StatusOK, records)
}

// limit reads ?limit=, 0 when absent or malformed.
func limit(ctx *gin.Context) int {
	n, err := strconv.Atoi(ctx.Query("limit"))
	if err != nil {
		return 0
	}
	return n
}
