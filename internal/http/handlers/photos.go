package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"

	"github.com/afriel/keepsake/internal/importer"
	"github.com/afriel/keepsake/internal/picture"
	"github.com/afriel/keepsake/internal/storage"
	"github.com/afriel/keepsake/internal/theme"
)

// maxUploadBytes caps a single uploaded file.
const maxUploadBytes = 32 << 20

type PhotoHandler struct {
	logger   *slog.Logger
	photos   storage.Photos
	importer *importer.Importer
}

func NewPhotoHandler(logger *slog.Logger, photos storage.Photos, imp *importer.Importer) *PhotoHandler {
	return &PhotoHandler{
		logger:   logger,
		photos:   photos,
		importer: imp,
	}
}

type photoResponse struct {
	ID          int64              `json:"id"`
	AlbumID     int64              `json:"albumId"`
	Filename    string             `json:"filename"`
	MimeType    string             `json:"mimeType"`
	Description string             `json:"description,omitempty"`
	Location    string             `json:"location,omitempty"`
	Landmarks   []storage.Landmark `json:"landmarks,omitempty"`
	Latitude    *float64           `json:"latitude,omitempty"`
	Longitude   *float64           `json:"longitude,omitempty"`
	TakenAt     time.Time          `json:"takenAt"`
	Processed   bool               `json:"processed"`
	Filter      theme.Filter       `json:"filter"`
	FilterName  string             `json:"filterName"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

func toPhotoResponse(photo storage.Photo) photoResponse {
	return photoResponse{
		ID:          photo.ID,
		AlbumID:     photo.AlbumID,
		Filename:    photo.Filename,
		MimeType:    photo.MimeType,
		Description: photo.Description,
		Location:    photo.Location,
		Landmarks:   photo.Landmarks,
		Latitude:    photo.Latitude,
		Longitude:   photo.Longitude,
		TakenAt:     photo.TakenAt,
		Processed:   photo.Processed,
		Filter:      photo.Filter,
		FilterName:  photo.Filter.DisplayName(),
		CreatedAt:   photo.CreatedAt,
		UpdatedAt:   photo.UpdatedAt,
	}
}

type updatePhotoRequest struct {
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	TakenAt     *time.Time `json:"takenAt"`
	Filter      *string    `json:"filter"`
}

func (r updatePhotoRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Description, validation.Length(0, 2000)),
		validation.Field(&r.Location, validation.Length(0, 500)),
		validation.Field(&r.Filter, validation.In(filterChoices()...)),
	)
}

func filterChoices() []any {
	filters := theme.Filters()
	choices := make([]any, 0, len(filters))
	for _, f := range filters {
		choices = append(choices, string(f))
	}
	return choices
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// Upload imports a multipart batch of files into the album. Non-image files
// are skipped rather than rejected.
func (h *PhotoHandler) Upload(c *gin.Context) {
	ctx := c.Request.Context()

	albumID, ok := idParam(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	headers := form.File["photos"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})
		return
	}

	files := make([]importer.File, 0, len(headers))
	for _, header := range headers {
		if header.Size > maxUploadBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large: " + header.Filename})
			return
		}

		src, err := header.Open()
		if err != nil {
			h.logger.Error("failed to open uploaded file", "filename", header.Filename, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
			return
		}

		data, err := io.ReadAll(io.LimitReader(src, maxUploadBytes))
		_ = src.Close()
		if err != nil {
			h.logger.Error("failed to read uploaded file", "filename", header.Filename, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
			return
		}

		mimeType := header.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = http.DetectContentType(data)
		}

		files = append(files, importer.File{
			Name:     header.Filename,
			MimeType: mimeType,
			Data:     data,
		})
	}

	created, err := h.importer.Import(ctx, albumID, files)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "album not found"})
			return
		}
		h.logger.Error("import failed", "albumID", albumID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to import photos"})
		return
	}

	items := make([]photoResponse, 0, len(created))
	for _, photo := range created {
		items = append(items, toPhotoResponse(photo))
	}

	c.JSON(http.StatusCreated, gin.H{"photos": items})
}

// Image streams the raw image payload. With ?filter=1 the stored filter is
// applied and the result is served as JPEG.
func (h *PhotoHandler) Image(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := idParam(c)
	if !ok {
		return
	}

	photo, err := h.photos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
			return
		}
		h.logger.Error("failed to load photo", "photoID", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load photo"})
		return
	}

	data := photo.Data
	mimeType := photo.MimeType
	if c.Query("filter") == "1" && photo.Filter != theme.Original {
		data = picture.NormalizeFiltered(photo.Data, photo.Filter, picture.ExportMaxDim, picture.ExportQuality)
		mimeType = "image/jpeg"
	}

	c.Data(http.StatusOK, mimeType, data)
}

func (h *PhotoHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := idParam(c)
	if !ok {
		return
	}

	var req updatePhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	input := storage.PhotoUpdate{
		Description: req.Description,
		Location:    req.Location,
		TakenAt:     req.TakenAt,
	}
	if req.Filter != nil {
		f := theme.Filter(*req.Filter)
		input.Filter = &f
	}

	photo, err := h.photos.Update(ctx, id, input)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
			return
		}
		h.logger.Error("failed to update photo", "photoID", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update photo"})
		return
	}

	c.JSON(http.StatusOK, toPhotoResponse(photo))
}

// Delete removes the photo record. The user's original file outside the app
// is never touched.
func (h *PhotoHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.photos.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
			return
		}
		h.logger.Error("failed to delete photo", "photoID", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete photo"})
		return
	}

	h.logger.Info("photo deleted", "photoID", id)
	c.Status(http.StatusNoContent)
}
