package middlewares

import (
	"mime"
	"net/http"

	"github.com/geocoder89/bookrental/internal/apperr"
	"github.com/gin-gonic/gin"
)

// RequireJSON rejects write requests that carry a body in anything but JSON.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if c.Request.ContentLength == 0 {
				break
			}
			mediaType, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
			if err != nil || mediaType != "application/json" {
				e := apperr.New(apperr.MalformedInput, "Content-Type must be application/json")
				c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, e.Body(RequestIDFrom(c)))
				return
			}
		}
		c.Next()
	}
}
