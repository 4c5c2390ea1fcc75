package middleware

import (
	"github.com/gin-gonic/gin"
)

// NoStore forbids intermediaries and browsers from caching responses.
// Applied to every exam-content route: a cached question or answer payload
// would outlive the session it belongs to.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
