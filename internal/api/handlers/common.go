package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/voiceeval/internal/services"
	"github.com/yoockh/voiceeval/internal/utils"
)

type APIError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

// writeError sends only the code and safe message; the full chain goes to the request log.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(utils.HTTPStatus(err), APIError{
		Code:    utils.CodeOf(err),
		Message: utils.SafeMessage(err),
	})
}

// readUpload reads the multipart "file" field, bounded by maxBytes.
func readUpload(c *gin.Context, op string, maxBytes int64) (services.Upload, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, utils.E(utils.CodeInvalidArgument, op, "file too large", err))
			return services.Upload{}, false
		}
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "missing multipart field 'file'", err))
		return services.Upload{}, false
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "file too large", nil))
		return services.Upload{}, false
	}

	file, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to open upload", err))
		return services.Upload{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to read upload", err))
		return services.Upload{}, false
	}

	return services.Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, true
}

func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to the Voice Evaluation Application"})
}

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
