package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// handleUpload accepts one multipart file under the "image" field and returns
// the URL the stored asset is served at.
func (h *httpHandler) handleUpload(c *gin.Context) {
	if _, ok := h.actingUser(c); !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no_file_uploaded"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("failed to open uploaded file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	defer file.Close()

	url, err := h.assetsService.Store(fileHeader.Filename, file)
	if err != nil {
		h.logger.Error("failed to store uploaded file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
