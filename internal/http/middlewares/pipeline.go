package middlewares

import (
	"github.com/geocoder89/bookrental/internal/apperr"
	"github.com/geocoder89/bookrental/internal/observability"
	"github.com/gin-gonic/gin"
)

// Guard is one step of a route's admission pipeline. Check either returns nil
// to admit the request to the next step or an error that ends the request.
type Guard struct {
	Name  string
	Check func(c *gin.Context) *apperr.Error
}

// Chain runs guards strictly in order and stops at the first rejection,
// writing the rejection as the response. If every guard admits the request,
// control passes to the rest of the gin handler chain.
func Chain(prom *observability.Prom, guards ...Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, g := range guards {
			err := g.Check(c)
			if err == nil {
				continue
			}

			prom.GuardRejected(g.Name, string(err.Kind))
			observability.GuardRejectedEvent(c.Request.Context(), g.Name, string(err.Kind))
			if err.Cause != nil {
				_ = c.Error(err)
			}

			c.AbortWithStatusJSON(err.Status(), err.Body(RequestIDFrom(c)))
			return
		}

		c.Next()
	}
}
