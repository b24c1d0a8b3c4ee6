package controller

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	storageport "github.com/pranishuprety/Respondrr/internal/infrastructure/storage/port"
)

// DownloadAttachmentController streams attachment bytes out of the blob
// store. Clients resolve (bucket, object_path) from the attachment rows
// hydrated on the message list.
type DownloadAttachmentController struct {
	Blobs storageport.BlobStore
}

func NewDownloadAttachmentController(blobs storageport.BlobStore) *DownloadAttachmentController {
	return &DownloadAttachmentController{Blobs: blobs}
}

func (h *DownloadAttachmentController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		bucket := c.Param("bucket")
		objectPath := strings.TrimPrefix(c.Param("objectPath"), "/")
		if bucket == "" || objectPath == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bucket and object path are required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		data, err := h.Blobs.Download(ctx, bucket, objectPath)
		switch {
		case errors.Is(err, storageport.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "object not found"})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		contentType := mime.TypeByExtension(filepath.Ext(objectPath))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.Data(http.StatusOK, contentType, data)
	}
}
