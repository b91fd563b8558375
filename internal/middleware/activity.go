package middleware

import "github.com/gin-gonic/gin"

// ActivityRecorder receives one input event per authenticated request.
type ActivityRecorder interface {
	Activity()
}

// Activity counts every request that passed JWTAuth as terminal input, so a
// shell that keeps calling the API keeps the session alive.
func Activity(rec ActivityRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec.Activity()
		c.Next()
	}
}
