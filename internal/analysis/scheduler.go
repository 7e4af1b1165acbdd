package analysis

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/afriel/keepsake/internal/caption"
	"github.com/afriel/keepsake/internal/storage"
)

// ErrAlreadyRunning is returned by Start while a run is in progress.
var ErrAlreadyRunning = errors.New("analysis: scheduler already running")

// State describes the scheduler lifecycle.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateStopped State = "stopped"
)

// StopReason explains why the last run ended.
type StopReason string

const (
	ReasonCompleted     StopReason = "completed"
	ReasonCancelled     StopReason = "cancelled"
	ReasonQuotaExceeded StopReason = "quota_exceeded"
	// ReasonFailed covers storage failures mid-run, which the distilled
	// lifecycle has no slot for but a real run can hit.
	ReasonFailed StopReason = "failed"
)

// Status is a snapshot of the scheduler.
type Status struct {
	State   State      `json:"state"`
	Reason  StopReason `json:"reason,omitempty"`
	AlbumID int64      `json:"albumId,omitempty"`
}

// Scheduler walks an album's unprocessed photos and issues captioning
// requests strictly one at a time, each separated by at least the configured
// interval measured from request start to request start.
type Scheduler struct {
	analyzer *Analyzer
	photos   storage.Photos
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	state   State
	reason  StopReason
	albumID int64
	cancel  context.CancelFunc
}

// NewScheduler builds an idle scheduler. interval is the minimum spacing
// between request starts within one run.
func NewScheduler(analyzer *Analyzer, photos storage.Photos, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		analyzer: analyzer,
		photos:   photos,
		interval: interval,
		logger:   logger,
		state:    StateIdle,
	}
}

// Start begins an automatic run over the album. It is re-entrant after a run
// has stopped, re-scanning the album's current photos, but returns
// ErrAlreadyRunning while a run is active.
func (s *Scheduler) Start(albumID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRunning {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.state = StateRunning
	s.reason = ""
	s.albumID = albumID
	s.cancel = cancel

	s.logger.Info("automatic analysis started", "albumID", albumID, "interval", s.interval)
	go s.run(ctx, albumID)

	return nil
}

// Stop ends the run after the current photo, if any, finishes. The in-flight
// request is allowed to complete and its result is still applied; no new
// request is issued afterwards.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Status returns a snapshot of the scheduler state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{State: s.state}
	if s.state != StateIdle {
		status.AlbumID = s.albumID
	}
	if s.state == StateStopped {
		status.Reason = s.reason
	}
	return status
}

func (s *Scheduler) run(ctx context.Context, albumID int64) {
	// attempted guards against reworking a photo within this run when its
	// attempt ended without flipping the processed flag.
	attempted := make(map[int64]struct{})
	var lastStart time.Time

	for {
		select {
		case <-ctx.Done():
			s.finish(albumID, ReasonCancelled)
			return
		default:
		}

		candidate, err := s.nextCandidate(ctx, albumID, attempted)
		if err != nil {
			s.logger.Error("failed to scan album for unprocessed photos", "albumID", albumID, "error", err)
			s.finish(albumID, ReasonFailed)
			return
		}
		if candidate == nil {
			s.finish(albumID, ReasonCompleted)
			return
		}

		if !lastStart.IsZero() {
			if wait := s.interval - time.Since(lastStart); wait > 0 {
				select {
				case <-ctx.Done():
					s.finish(albumID, ReasonCancelled)
					return
				case <-time.After(wait):
				}
			}
		}

		// A Stop that lands after the interval wait must still prevent the
		// next request from starting.
		if ctx.Err() != nil {
			s.finish(albumID, ReasonCancelled)
			return
		}

		attempted[candidate.ID] = struct{}{}
		lastStart = time.Now()

		// The attempt outlives a Stop call: its result must still land.
		_, err = s.analyzer.AnalyzePhoto(context.WithoutCancel(ctx), candidate.ID)
		switch {
		case err == nil, errors.Is(err, ErrNoCaption):
			// Forward progress either way; the photo is processed now.
		case errors.Is(err, caption.ErrQuotaExhausted):
			s.logger.Warn("automatic analysis halted by quota", "albumID", albumID, "photoID", candidate.ID)
			s.finish(albumID, ReasonQuotaExceeded)
			return
		case errors.Is(err, ErrBusy):
			s.logger.Debug("photo already in flight, skipping", "photoID", candidate.ID)
		default:
			s.logger.Error("analysis attempt failed", "photoID", candidate.ID, "error", err)
			s.finish(albumID, ReasonFailed)
			return
		}
	}
}

func (s *Scheduler) nextCandidate(ctx context.Context, albumID int64, attempted map[int64]struct{}) (*storage.Photo, error) {
	photos, err := s.photos.ListByAlbum(ctx, albumID)
	if err != nil {
		return nil, err
	}

	for i := range photos {
		p := photos[i]
		if p.Processed {
			continue
		}
		if _, done := attempted[p.ID]; done {
			continue
		}
		if s.analyzer.gate.Held(p.ID) {
			continue
		}
		return &p, nil
	}

	return nil, nil
}

func (s *Scheduler) finish(albumID int64, reason StopReason) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.state = StateStopped
	s.reason = reason

	s.logger.Info("automatic analysis stopped", "albumID", albumID, "reason", reason)
}
