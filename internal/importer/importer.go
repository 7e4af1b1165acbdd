// Package importer turns a batch of uploaded files into photo records:
// non-image files are skipped, EXIF metadata is extracted, and the first
// photo of a coverless album becomes its cover.
package importer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/afriel/keepsake/internal/exif"
	"github.com/afriel/keepsake/internal/storage"
)

// File is one uploaded file from the import boundary.
type File struct {
	Name     string
	MimeType string
	Data     []byte
}

// Importer creates photo records for uploaded image files.
type Importer struct {
	store  storage.Store
	logger *slog.Logger
}

// New returns an importer bound to the given store.
func New(store storage.Store, logger *slog.Logger) *Importer {
	return &Importer{store: store, logger: logger}
}

// Import creates a photo record for every image file in the batch, in input
// order. Files without an image mime type are skipped. Metadata extraction is
// best-effort; a photo without an EXIF date falls back to the import time.
// When the album has no cover yet, the first imported photo becomes it.
func (i *Importer) Import(ctx context.Context, albumID int64, files []File) ([]storage.Photo, error) {
	album, err := i.store.Albums().GetByID(ctx, albumID)
	if err != nil {
		return nil, fmt.Errorf("importer: load album: %w", err)
	}

	images := make([]File, 0, len(files))
	for _, f := range files {
		if !strings.HasPrefix(f.MimeType, "image/") {
			i.logger.Debug("skipping non-image file", "filename", f.Name, "mimeType", f.MimeType)
			continue
		}
		images = append(images, f)
	}

	metas := make([]exif.Metadata, len(images))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for idx := range images {
		idx := idx
		g.Go(func() error {
			metas[idx] = exif.Extract(bytes.NewReader(images[idx].Data))
			return nil
		})
	}
	_ = g.Wait()

	now := time.Now().UTC()
	created := make([]storage.Photo, 0, len(images))

	for idx, f := range images {
		meta := metas[idx]

		takenAt := now
		if meta.TakenAt != nil {
			takenAt = *meta.TakenAt
		}

		photo, err := i.store.Photos().Create(ctx, storage.PhotoCreate{
			AlbumID:   albumID,
			Filename:  f.Name,
			MimeType:  f.MimeType,
			Data:      f.Data,
			TakenAt:   takenAt,
			Latitude:  meta.Latitude,
			Longitude: meta.Longitude,
		})
		if err != nil {
			return created, fmt.Errorf("importer: create photo %q: %w", f.Name, err)
		}
		created = append(created, photo)
	}

	if album.CoverPhotoID == nil && len(created) > 0 {
		if err := i.store.Albums().SetCoverPhoto(ctx, albumID, created[0].ID); err != nil {
			i.logger.Warn("failed to assign default cover", "albumID", albumID, "error", err)
		}
	}

	i.logger.Info("import finished", "albumID", albumID, "imported", len(created), "skipped", len(files)-len(images))
	return created, nil
}
