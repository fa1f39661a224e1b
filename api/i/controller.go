package i

import "github.com/gin-gonic/gin"

// Controller mounts its routes on the three groups built by the router.
type Controller interface {
	// RegisterPublic adds routes anyone may call.
	RegisterPublic(*gin.RouterGroup)
	// RegisterProtected adds routes behind the player token check.
	RegisterProtected(*gin.RouterGroup)
	// RegisterAdmin adds destructive routes behind the admin key check.
	RegisterAdmin(*gin.RouterGroup)
}
