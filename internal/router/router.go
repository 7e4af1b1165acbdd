package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/afriel/keepsake/internal/analysis"
	"github.com/afriel/keepsake/internal/config"
	"github.com/afriel/keepsake/internal/http/handlers"
	"github.com/afriel/keepsake/internal/http/middleware"
	"github.com/afriel/keepsake/internal/importer"
	"github.com/afriel/keepsake/internal/storage"
)

// Dependencies collects the wired components the router exposes over HTTP.
// Analyzer and Scheduler are nil when captioning is not configured.
type Dependencies struct {
	Store     storage.Store
	Importer  *importer.Importer
	Analyzer  *analysis.Analyzer
	Scheduler *analysis.Scheduler
}

func New(cfg *config.Config, logger *slog.Logger, deps Dependencies) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))

	albumHandler := handlers.NewAlbumHandler(logger, deps.Store.Albums(), deps.Store.Photos())
	photoHandler := handlers.NewPhotoHandler(logger, deps.Store.Photos(), deps.Importer)
	analysisHandler := handlers.NewAnalysisHandler(logger, deps.Store.Albums(), deps.Analyzer, deps.Scheduler)
	exportHandler := handlers.NewExportHandler(logger, deps.Store.Albums(), deps.Store.Photos())
	authHandler := handlers.NewAuthHandler(logger, cfg.AdminPassword, cfg.AdminCookie)

	r.POST("/login", authHandler.SubmitLogin)

	api := r.Group("/api")
	api.Use(middleware.RequireAdmin(cfg.AdminCookie))

	api.GET("/albums", albumHandler.List)
	api.POST("/albums", albumHandler.Create)
	api.GET("/albums/:id", albumHandler.Get)
	api.PATCH("/albums/:id", albumHandler.Update)
	api.DELETE("/albums/:id", albumHandler.Delete)
	api.PUT("/albums/:id/cover", albumHandler.SetCover)

	api.POST("/albums/:id/photos", photoHandler.Upload)
	api.GET("/photos/:id/image", photoHandler.Image)
	api.PATCH("/photos/:id", photoHandler.Update)
	api.DELETE("/photos/:id", photoHandler.Delete)

	api.POST("/photos/:id/analyze", analysisHandler.AnalyzePhoto)
	api.POST("/albums/:id/analyze", analysisHandler.StartRun)
	api.DELETE("/albums/:id/analyze", analysisHandler.StopRun)
	api.GET("/analysis", analysisHandler.Status)

	api.GET("/albums/:id/export", exportHandler.Download)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return r
}
