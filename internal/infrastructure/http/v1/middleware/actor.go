package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "stockledger/internal/core/context"
)

// HeaderActor carries the acting-user identifier. The core treats it
// as an opaque string; authentication is an upstream concern.
const HeaderActor = "X-Requested-By"

// Actor propagates the acting-user header into the request context so
// generated requisitions record who asked for them.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor := c.GetHeader(HeaderActor); actor != "" {
			ctx := appctx.WithActor(c.Request.Context(), actor)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}
