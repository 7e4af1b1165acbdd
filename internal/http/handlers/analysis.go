package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/afriel/keepsake/internal/analysis"
	"github.com/afriel/keepsake/internal/caption"
	"github.com/afriel/keepsake/internal/storage"
)

// AnalysisHandler exposes manual per-photo analysis and the automatic album
// scheduler. Both fields are nil when no captioning API key is configured.
type AnalysisHandler struct {
	logger    *slog.Logger
	albums    storage.Albums
	analyzer  *analysis.Analyzer
	scheduler *analysis.Scheduler
}

func NewAnalysisHandler(logger *slog.Logger, albums storage.Albums, analyzer *analysis.Analyzer, scheduler *analysis.Scheduler) *AnalysisHandler {
	return &AnalysisHandler{
		logger:    logger,
		albums:    albums,
		analyzer:  analyzer,
		scheduler: scheduler,
	}
}

func (h *AnalysisHandler) configured(c *gin.Context) bool {
	if h.analyzer == nil || h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "captioning is not configured"})
		return false
	}
	return true
}

// AnalyzePhoto runs one manual captioning attempt for the photo.
func (h *AnalysisHandler) AnalyzePhoto(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	photo, err := h.analyzer.AnalyzePhoto(c.Request.Context(), id)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, toPhotoResponse(photo))
	case errors.Is(err, analysis.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": "photo is already being analyzed"})
	case errors.Is(err, analysis.ErrNoCaption):
		// The attempt completed; the photo is processed but gained nothing.
		c.JSON(http.StatusOK, gin.H{
			"photo":   toPhotoResponse(photo),
			"warning": "the captioning service did not return a usable result",
		})
	case errors.Is(err, caption.ErrQuotaExhausted):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "captioning quota exhausted, try again later"})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
	default:
		h.logger.Error("manual analysis failed", "photoID", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to analyze photo"})
	}
}

// StartRun begins automatic analysis over the album's unprocessed photos.
func (h *AnalysisHandler) StartRun(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	if _, err := h.albums.GetByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "album not found"})
			return
		}
		h.logger.Error("failed to load album", "albumID", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load album"})
		return
	}

	if err := h.scheduler.Start(id); err != nil {
		if errors.Is(err, analysis.ErrAlreadyRunning) {
			c.JSON(http.StatusConflict, gin.H{"error": "an analysis run is already in progress"})
			return
		}
		h.logger.Error("failed to start analysis run", "albumID", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start analysis"})
		return
	}

	c.JSON(http.StatusAccepted, h.scheduler.Status())
}

// StopRun cancels the current run. The in-flight request, if any, still
// completes and its result is applied.
func (h *AnalysisHandler) StopRun(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	h.scheduler.Stop()
	c.JSON(http.StatusAccepted, h.scheduler.Status())
}

// Status reports the scheduler state.
func (h *AnalysisHandler) Status(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	c.JSON(http.StatusOK, h.scheduler.Status())
}
