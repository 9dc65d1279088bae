package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/voiceeval/internal/utils"
)

const unexpectedMessage = "An unexpected error occurred during processing of the audio file."

// Recovery turns handler panics into a generic INTERNAL response.
func Recovery(l *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		l.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
			"panic":      fmt.Sprint(recovered),
		}).Error("handler panic")

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"code":    utils.CodeInternal,
			"message": unexpectedMessage,
		})
	})
}

// MaxBodySize caps request bodies before multipart parsing buffers them.
func MaxBodySize(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
