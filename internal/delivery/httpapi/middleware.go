package httpapi

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const errUnauthorized = "UNAUTHORIZED"

// requireBearer rejects requests whose Authorization header is not exactly
// "Bearer <secret>".
func (s *Server) requireBearer() gin.HandlerFunc {
	expected := []byte("Bearer " + s.secret)
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if s.secret == "" || subtle.ConstantTimeCompare([]byte(header), expected) != 1 {
			s.logger.Warn("unauthorized request",
				zap.String("path", c.Request.URL.Path),
				zap.Bool("header_present", header != ""),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}
		c.Next()
	}
}
