package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/afriel/keepsake/internal/export"
	"github.com/afriel/keepsake/internal/storage"
)

type ExportHandler struct {
	logger *slog.Logger
	albums storage.Albums
	photos storage.Photos
}

func NewExportHandler(logger *slog.Logger, albums storage.Albums, photos storage.Photos) *ExportHandler {
	return &ExportHandler{
		logger: logger,
		albums: albums,
		photos: photos,
	}
}

// Download renders the album as a PDF and serves it as an attachment.
func (h *ExportHandler) Download(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := idParam(c)
	if !ok {
		return
	}

	album, err := h.albums.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "album not found"})
			return
		}
		h.logger.Error("failed to load album", "albumID", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load album"})
		return
	}

	listed, err := h.photos.ListByAlbum(ctx, id)
	if err != nil {
		h.logger.Error("failed to list photos", "albumID", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load photos"})
		return
	}

	// The listing omits image payloads; reload each photo in full for
	// embedding.
	photos := make([]storage.Photo, 0, len(listed))
	for _, item := range listed {
		photo, err := h.photos.GetByID(ctx, item.ID)
		if err != nil {
			h.logger.Error("failed to load photo payload", "photoID", item.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load photos"})
			return
		}
		photos = append(photos, photo)
	}

	doc, err := export.Render(album, photos)
	if err != nil {
		h.logger.Error("failed to render export", "albumID", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render export"})
		return
	}

	filename := export.Filename(album.Title)
	h.logger.Info("album exported", "albumID", id, "photos", len(photos), "filename", filename)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", doc)
}
