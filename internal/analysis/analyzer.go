// Package analysis drives AI captioning of photos: a one-shot analyzer used
// by the manual per-photo endpoint, and a scheduler that walks an album's
// unprocessed photos one request at a time under a minimum inter-request
// interval.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/afriel/keepsake/internal/caption"
	"github.com/afriel/keepsake/internal/picture"
	"github.com/afriel/keepsake/internal/storage"
)

// ErrBusy indicates the photo is already being analyzed by another path.
var ErrBusy = errors.New("analysis: photo already in flight")

// ErrNoCaption indicates the attempt completed without producing metadata.
// The photo has still been marked processed; the wrapped cause explains what
// went wrong.
var ErrNoCaption = errors.New("analysis: no caption produced")

// Captioner is the slice of the captioning client the analyzer needs.
type Captioner interface {
	Describe(ctx context.Context, jpeg []byte, hint *caption.Hint) (caption.Result, error)
}

// Analyzer performs one captioning attempt for one photo and persists the
// outcome.
type Analyzer struct {
	photos    storage.Photos
	captioner Captioner
	gate      *Gate
	logger    *slog.Logger
}

// NewAnalyzer wires an analyzer onto the photo repository, the captioning
// client and the shared in-flight gate.
func NewAnalyzer(photos storage.Photos, captioner Captioner, gate *Gate, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		photos:    photos,
		captioner: captioner,
		gate:      gate,
		logger:    logger,
	}
}

// AnalyzePhoto runs exactly one captioning attempt for the photo.
//
// Success persists the returned description, location and landmarks and
// marks the photo processed. A non-fatal captioning failure marks the photo
// processed with no new fields and returns ErrNoCaption. A quota rejection
// returns caption.ErrQuotaExhausted and leaves the photo untouched, so it
// stays eligible for a later pass. ErrBusy is returned when the photo is
// already in flight.
func (a *Analyzer) AnalyzePhoto(ctx context.Context, photoID int64) (storage.Photo, error) {
	if !a.gate.TryAcquire(photoID) {
		return storage.Photo{}, ErrBusy
	}
	defer a.gate.Release(photoID)

	photo, err := a.photos.GetByID(ctx, photoID)
	if err != nil {
		return storage.Photo{}, fmt.Errorf("analysis: load photo: %w", err)
	}

	payload := picture.Normalize(photo.Data, picture.CaptionMaxDim, picture.CaptionQuality)

	var hint *caption.Hint
	if photo.Latitude != nil && photo.Longitude != nil {
		hint = &caption.Hint{Latitude: *photo.Latitude, Longitude: *photo.Longitude}
	}

	result, err := a.captioner.Describe(ctx, payload, hint)
	if errors.Is(err, caption.ErrQuotaExhausted) {
		return storage.Photo{}, err
	}

	processed := true

	if err != nil {
		a.logger.Warn("captioning attempt failed", "photoID", photoID, "error", err)
		updated, uerr := a.photos.Update(ctx, photoID, storage.PhotoUpdate{Processed: &processed})
		if uerr != nil {
			return storage.Photo{}, fmt.Errorf("analysis: mark processed: %w", uerr)
		}
		return updated, fmt.Errorf("%w: %v", ErrNoCaption, err)
	}

	landmarks := make([]storage.Landmark, 0, len(result.Landmarks))
	for _, lm := range result.Landmarks {
		landmarks = append(landmarks, storage.Landmark{
			Name:        lm.Name,
			Description: lm.Description,
			URL:         lm.URL,
		})
	}

	updated, err := a.photos.Update(ctx, photoID, storage.PhotoUpdate{
		Description: &result.Description,
		Location:    &result.Location,
		Landmarks:   &landmarks,
		Processed:   &processed,
	})
	if err != nil {
		return storage.Photo{}, fmt.Errorf("analysis: persist result: %w", err)
	}

	a.logger.Info("photo analyzed", "photoID", photoID, "location", result.Location, "landmarks", len(landmarks))
	return updated, nil
}
