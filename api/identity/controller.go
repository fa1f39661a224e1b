package identity

import (
	"errors"
	"net/http"

	dmn "github.com/beka-birhanu/vinom-snake/domain"
	"github.com/beka-birhanu/vinom-snake/service/i"
	"github.com/gin-gonic/gin"
)

// IdentityServer handles HTTP requests related to authentication.
type IdentityServer struct {
	authService i.Authenticator
	players     i.CurrentUserStore
}

// NewIdentityServer creates a new IdentityServer.
func NewIdentityServer(a i.Authenticator, players i.CurrentUserStore) *IdentityServer {
	return &IdentityServer{
		authService: a,
		players:     players,
	}
}

// RegisterPublic registers public routes.
func (c *IdentityServer) RegisterPublic(route *gin.RouterGroup) {
	auth := route.Group("/auth")
	{
		auth.POST("/login", c.login)
	}
}

// RegisterProtected registers privileged routes.
func (c *IdentityServer) RegisterProtected(route *gin.RouterGroup) {
	route.GET("/auth/me", c.me)
}

// RegisterAdmin registers operator routes.
func (c *IdentityServer) RegisterAdmin(route *gin.RouterGroup) {}

// login handles player sign-in.
func (c *IdentityServer) login(ctx *gin.Context) {
	var request LoginRequest

	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := c.authService.SignIn(ctx.Request.Context(), request.Username)
	if err != nil {
		if errors.Is(err, dmn.ErrInvalidPlayerName) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not sign in"})
		return
	}

	ctx.JSON(http.StatusOK, &LoginResponse{
		Username: request.Username,
		Token:    token,
	})
}

// me echoes the player of the presented token.
func (c *IdentityServer) me(ctx *gin.Context) {
	name, ok := PlayerName(ctx)
	if !ok {
		ctx.Status(http.StatusUnauthorized)
		return
	}

	ctx.JSON(http.StatusOK, &MeResponse{
		Username:    name,
		CurrentUser: c.players.CurrentUser(ctx.Request.Context()),
	})
}
