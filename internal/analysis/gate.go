package analysis

import "sync"

// Gate holds the per-photo in-flight tokens shared by the manual and
// automatic analysis paths, so only one of them can work on a photo at a
// time.
type Gate struct {
	mu       sync.Mutex
	inFlight map[int64]struct{}
}

// NewGate returns an empty gate.
func NewGate() *Gate {
	return &Gate{inFlight: make(map[int64]struct{})}
}

// TryAcquire claims the token for the photo. It returns false when the photo
// is already in flight.
func (g *Gate) TryAcquire(photoID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, held := g.inFlight[photoID]; held {
		return false
	}
	g.inFlight[photoID] = struct{}{}
	return true
}

// Release returns the token for the photo.
func (g *Gate) Release(photoID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, photoID)
}

// Held reports whether the photo is currently in flight.
func (g *Gate) Held(photoID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, held := g.inFlight[photoID]
	return held
}
