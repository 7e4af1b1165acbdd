package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"

	"github.com/afriel/keepsake/internal/storage"
	"github.com/afriel/keepsake/internal/theme"
)

type AlbumHandler struct {
	logger *slog.Logger
	albums storage.Albums
	photos storage.Photos
}

func NewAlbumHandler(logger *slog.Logger, albums storage.Albums, photos storage.Photos) *AlbumHandler {
	return &AlbumHandler{
		logger: logger,
		albums: albums,
		photos: photos,
	}
}

type albumResponse struct {
	ID           int64       `json:"id"`
	Title        string      `json:"title"`
	Theme        theme.Theme `json:"theme"`
	ThemeName    string      `json:"themeName"`
	CoverPhotoID *int64      `json:"coverPhotoId,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

func toAlbumResponse(album storage.Album) albumResponse {
	return albumResponse{
		ID:           album.ID,
		Title:        album.Title,
		Theme:        album.Theme,
		ThemeName:    album.Theme.Style().DisplayName,
		CoverPhotoID: album.CoverPhotoID,
		CreatedAt:    album.CreatedAt,
		UpdatedAt:    album.UpdatedAt,
	}
}

type createAlbumRequest struct {
	Title string `json:"title"`
	Theme string `json:"theme"`
}

func (r createAlbumRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Theme, validation.In(themeChoices()...)),
	)
}

type updateAlbumRequest struct {
	Title *string `json:"title"`
	Theme *string `json:"theme"`
}

func (r updateAlbumRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&r.Theme, validation.In(themeChoices()...)),
	)
}

type setCoverRequest struct {
	PhotoID int64 `json:"photoId"`
}

func (r setCoverRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PhotoID, validation.Required, validation.Min(int64(1))),
	)
}

func themeChoices() []any {
	themes := theme.Themes()
	choices := make([]any, 0, len(themes))
	for _, t := range themes {
		choices = append(choices, string(t))
	}
	return choices
}

func (h *AlbumHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	albums, err := h.albums.List(ctx)
	if err != nil {
		h.logger.Error("failed to list albums", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load albums"})
		return
	}

	items := make([]albumResponse, 0, len(albums))
	for _, album := range albums {
		items = append(items, toAlbumResponse(album))
	}

	c.JSON(http.StatusOK, gin.H{"albums": items})
}

func (h *AlbumHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req createAlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	album, err := h.albums.Create(ctx, storage.AlbumCreate{
		Title: req.Title,
		Theme: theme.Theme(req.Theme),
	})
	if err != nil {
		h.logger.Error("failed to create album", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create album"})
		return
	}

	h.logger.Info("album created", "albumID", album.ID, "title", album.Title)
	c.JSON(http.StatusCreated, toAlbumResponse(album))
}

func (h *AlbumHandler) Get(c *gin.Context) {
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

	photos, err := h.photos.ListByAlbum(ctx, id)
	if err != nil {
		h.logger.Error("failed to list photos", "albumID", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load photos"})
		return
	}

	items := make([]photoResponse, 0, len(photos))
	coverExists := false
	for _, photo := range photos {
		if album.CoverPhotoID != nil && photo.ID == *album.CoverPhotoID {
			coverExists = true
		}
		items = append(items, toPhotoResponse(photo))
	}

	// A cover reference that no longer resolves to one of the album's photos
	// reads as "no cover".
	if album.CoverPhotoID != nil && !coverExists {
		album.CoverPhotoID = nil
	}

	c.JSON(http.StatusOK, gin.H{
		"album":  toAlbumResponse(album),
		"photos": items,
	})
}

func (h *AlbumHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := idParam(c)
	if !ok {
		return
	}

	var req updateAlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	input := storage.AlbumUpdate{Title: req.Title}
	if req.Theme != nil {
		t := theme.Theme(*req.Theme)
		input.Theme = &t
	}

	album, err := h.albums.Update(ctx, id, input)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "album not found"})
			return
		}
		h.logger.Error("failed to update album", "albumID", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update album"})
		return
	}

	h.logger.Info("album updated", "albumID", album.ID)
	c.JSON(http.StatusOK, toAlbumResponse(album))
}

func (h *AlbumHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.albums.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "album not found"})
			return
		}
		h.logger.Error("failed to delete album", "albumID", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete album"})
		return
	}

	h.logger.Info("album deleted", "albumID", id)
	c.Status(http.StatusNoContent)
}

func (h *AlbumHandler) SetCover(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := idParam(c)
	if !ok {
		return
	}

	var req setCoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if err := h.albums.SetCoverPhoto(ctx, id, req.PhotoID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "photo does not belong to this album"})
			return
		}
		h.logger.Error("failed to set cover photo", "albumID", id, "photoID", req.PhotoID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set cover photo"})
		return
	}

	c.Status(http.StatusNoContent)
}
