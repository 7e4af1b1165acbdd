package handlers_test

import (
	"context"
	"io"
	"log/slog"

	"github.com/afriel/keepsake/internal/storage"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubAlbums struct {
	list    []storage.Album
	listErr error

	createResp   storage.Album
	createErr    error
	createCalled bool
	lastCreate   storage.AlbumCreate

	getResp storage.Album
	getErr  error

	updateResp storage.Album
	updateErr  error

	deleteErr    error
	deleteCalled bool

	setCoverErr error
}

func (s *stubAlbums) Create(ctx context.Context, input storage.AlbumCreate) (storage.Album, error) {
	s.createCalled = true
	s.lastCreate = input
	return s.createResp, s.createErr
}

func (s *stubAlbums) GetByID(ctx context.Context, id int64) (storage.Album, error) {
	return s.getResp, s.getErr
}

func (s *stubAlbums) List(ctx context.Context) ([]storage.Album, error) {
	return s.list, s.listErr
}

func (s *stubAlbums) Update(ctx context.Context, id int64, input storage.AlbumUpdate) (storage.Album, error) {
	return s.updateResp, s.updateErr
}

func (s *stubAlbums) Delete(ctx context.Context, id int64) error {
	s.deleteCalled = true
	return s.deleteErr
}

func (s *stubAlbums) SetCoverPhoto(ctx context.Context, albumID, photoID int64) error {
	return s.setCoverErr
}

func (s *stubAlbums) ClearCoverPhoto(ctx context.Context, albumID int64) error {
	return nil
}

type stubPhotos struct {
	photos map[int64]storage.Photo

	listResp []storage.Photo
	listErr  error

	getErr    error
	updateErr error
	deleteErr error

	lastUpdate storage.PhotoUpdate
}

func newStubPhotos(photos ...storage.Photo) *stubPhotos {
	s := &stubPhotos{photos: make(map[int64]storage.Photo)}
	for _, p := range photos {
		s.photos[p.ID] = p
	}
	return s
}

func (s *stubPhotos) Create(ctx context.Context, input storage.PhotoCreate) (storage.Photo, error) {
	photo := storage.Photo{
		ID:       int64(len(s.photos) + 1),
		AlbumID:  input.AlbumID,
		Filename: input.Filename,
		MimeType: input.MimeType,
		Data:     input.Data,
		TakenAt:  input.TakenAt,
	}
	s.photos[photo.ID] = photo
	return photo, nil
}

func (s *stubPhotos) GetByID(ctx context.Context, id int64) (storage.Photo, error) {
	if s.getErr != nil {
		return storage.Photo{}, s.getErr
	}
	photo, ok := s.photos[id]
	if !ok {
		return storage.Photo{}, storage.ErrNotFound
	}
	return photo, nil
}

func (s *stubPhotos) ListByAlbum(ctx context.Context, albumID int64) ([]storage.Photo, error) {
	return s.listResp, s.listErr
}

func (s *stubPhotos) Update(ctx context.Context, id int64, input storage.PhotoUpdate) (storage.Photo, error) {
	if s.updateErr != nil {
		return storage.Photo{}, s.updateErr
	}
	photo, ok := s.photos[id]
	if !ok {
		return storage.Photo{}, storage.ErrNotFound
	}

	s.lastUpdate = input
	if input.Description != nil {
		photo.Description = *input.Description
	}
	if input.Location != nil {
		photo.Location = *input.Location
	}
	if input.Landmarks != nil {
		photo.Landmarks = *input.Landmarks
	}
	if input.TakenAt != nil {
		photo.TakenAt = *input.TakenAt
	}
	if input.Processed != nil {
		photo.Processed = *input.Processed
	}
	if input.Filter != nil {
		photo.Filter = *input.Filter
	}

	s.photos[id] = photo
	return photo, nil
}

func (s *stubPhotos) Delete(ctx context.Context, id int64) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.photos[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.photos, id)
	return nil
}
