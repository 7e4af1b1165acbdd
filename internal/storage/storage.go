package storage

import (
	"context"
	"errors"
	"time"

	"github.com/afriel/keepsake/internal/theme"
)

// ErrNotFound indicates that the requested entity does not exist in the
// underlying storage.
var ErrNotFound = errors.New("storage: not found")

// Store exposes the persistence primitives required by the application. It is
// expected to be safe for concurrent use.
type Store interface {
	Albums() Albums
	Photos() Photos
	Ping(ctx context.Context) error
	Close() error
}

// Album represents a themed collection of photos.
type Album struct {
	ID           int64
	Title        string
	Theme        theme.Theme
	CoverPhotoID *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AlbumCreate captures the data required to create a new album.
type AlbumCreate struct {
	Title string
	Theme theme.Theme
}

// AlbumUpdate describes the mutable fields for an album. A nil field indicates
// that no update should be applied for that attribute.
type AlbumUpdate struct {
	Title *string
	Theme *theme.Theme
}

// Albums defines the operations supported for managing albums.
type Albums interface {
	Create(ctx context.Context, input AlbumCreate) (Album, error)
	GetByID(ctx context.Context, id int64) (Album, error)
	List(ctx context.Context) ([]Album, error)
	Update(ctx context.Context, id int64, input AlbumUpdate) (Album, error)
	// Delete removes the album together with every photo that belongs to it,
	// as a single transaction. A failure leaves both tables unchanged.
	Delete(ctx context.Context, id int64) error
	SetCoverPhoto(ctx context.Context, albumID, photoID int64) error
	ClearCoverPhoto(ctx context.Context, albumID int64) error
}

// Landmark is one recognised point of interest on a photo.
type Landmark struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// Photo is a single imported image that belongs to an album, together with
// its metadata and user/AI-assigned annotations.
type Photo struct {
	ID          int64
	AlbumID     int64
	Filename    string
	MimeType    string
	Data        []byte
	Description string
	Location    string
	Landmarks   []Landmark
	Latitude    *float64
	Longitude   *float64
	TakenAt     time.Time
	Processed   bool
	Filter      theme.Filter
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PhotoCreate contains the data required to insert a new photo. Processed
// starts out false and Filter defaults to the original filter.
type PhotoCreate struct {
	AlbumID   int64
	Filename  string
	MimeType  string
	Data      []byte
	TakenAt   time.Time
	Latitude  *float64
	Longitude *float64
}

// PhotoUpdate describes the mutable fields for a photo. A nil field indicates
// that no update should be applied for that attribute.
type PhotoUpdate struct {
	Description *string
	Location    *string
	Landmarks   *[]Landmark
	TakenAt     *time.Time
	Processed   *bool
	Filter      *theme.Filter
}

// Photos defines the operations supported for managing photos.
type Photos interface {
	Create(ctx context.Context, input PhotoCreate) (Photo, error)
	// GetByID returns the full record including the image payload.
	GetByID(ctx context.Context, id int64) (Photo, error)
	// ListByAlbum returns the album's photos in album order (taken_at, then
	// created_at, then id) without the image payload.
	ListByAlbum(ctx context.Context, albumID int64) ([]Photo, error)
	Update(ctx context.Context, id int64, input PhotoUpdate) (Photo, error)
	Delete(ctx context.Context, id int64) error
}
