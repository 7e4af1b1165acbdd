package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/afriel/keepsake/internal/storage"
	"github.com/afriel/keepsake/internal/storage/sqlite"
	"github.com/afriel/keepsake/internal/theme"
)

func TestOpenCreatesSchema(t *testing.T) {
	store := newStore(t)
	defer closeStore(t, store)

	ctx := context.Background()

	albums, err := store.Albums().List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(albums) != 0 {
		t.Fatalf("expected no albums, got %d", len(albums))
	}

	photos, err := store.Photos().ListByAlbum(ctx, 1)
	if err != nil {
		t.Fatalf("ListByAlbum returned error: %v", err)
	}
	if len(photos) != 0 {
		t.Fatalf("expected no photos, got %d", len(photos))
	}
}

func TestAlbumLifecycle(t *testing.T) {
	store := newStore(t)
	defer closeStore(t, store)
	ctx := context.Background()

	created, err := store.Albums().Create(ctx, storage.AlbumCreate{
		Title: "Summer Roadtrip",
		Theme: theme.Retro,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if created.ID == 0 {
		t.Fatalf("expected album ID to be set")
	}
	if created.Theme != theme.Retro {
		t.Fatalf("expected theme %q, got %q", theme.Retro, created.Theme)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps to be populated")
	}

	fetched, err := store.Albums().GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if fetched.ID != created.ID {
		t.Fatalf("expected fetched ID %d, got %d", created.ID, fetched.ID)
	}

	items, err := store.Albums().List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 album, got %d", len(items))
	}

	newTitle := "Summer Adventure"
	newTheme := theme.Modern
	updated, err := store.Albums().Update(ctx, created.ID, storage.AlbumUpdate{
		Title: &newTitle,
		Theme: &newTheme,
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Title != newTitle {
		t.Fatalf("expected updated title %q, got %q", newTitle, updated.Title)
	}
	if updated.Theme != newTheme {
		t.Fatalf("expected updated theme %q, got %q", newTheme, updated.Theme)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Fatalf("expected updated_at to be refreshed")
	}

	photo, err := store.Photos().Create(ctx, storage.PhotoCreate{
		AlbumID:  created.ID,
		Filename: "cover.jpg",
		MimeType: "image/jpeg",
		Data:     []byte("jpeg-bytes"),
	})
	if err != nil {
		t.Fatalf("Photo create returned error: %v", err)
	}

	if err := store.Albums().SetCoverPhoto(ctx, created.ID, photo.ID); err != nil {
		t.Fatalf("SetCoverPhoto returned error: %v", err)
	}

	withCover, err := store.Albums().GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if withCover.CoverPhotoID == nil {
		t.Fatalf("expected cover photo to be set")
	}
	if *withCover.CoverPhotoID != photo.ID {
		t.Fatalf("expected cover photo ID %d, got %d", photo.ID, *withCover.CoverPhotoID)
	}

	if err := store.Albums().ClearCoverPhoto(ctx, created.ID); err != nil {
		t.Fatalf("ClearCoverPhoto returned error: %v", err)
	}

	cleared, err := store.Albums().GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if cleared.CoverPhotoID != nil {
		t.Fatalf("expected cover photo to be cleared")
	}

	if err := store.Albums().Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if _, err := store.Albums().GetByID(ctx, created.ID); err != storage.ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestAlbumDeleteCascadesToPhotos(t *testing.T) {
	store := newStore(t)
	defer closeStore(t, store)
	ctx := context.Background()

	album, err := store.Albums().Create(ctx, storage.AlbumCreate{Title: "Doomed"})
	if err != nil {
		t.Fatalf("create album: %v", err)
	}
	keeper, err := store.Albums().Create(ctx, storage.AlbumCreate{Title: "Keeper"})
	if err != nil {
		t.Fatalf("create album: %v", err)
	}

	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		if _, err := store.Photos().Create(ctx, storage.PhotoCreate{
			AlbumID:  album.ID,
			Filename: name,
			MimeType: "image/jpeg",
			Data:     []byte{0xff, 0xd8},
		}); err != nil {
			t.Fatalf("create photo %s: %v", name, err)
		}
	}
	kept, err := store.Photos().Create(ctx, storage.PhotoCreate{
		AlbumID:  keeper.ID,
		Filename: "kept.jpg",
		MimeType: "image/jpeg",
		Data:     []byte{0xff, 0xd8},
	})
	if err != nil {
		t.Fatalf("create kept photo: %v", err)
	}

	if err := store.Albums().Delete(ctx, album.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	orphans, err := store.Photos().ListByAlbum(ctx, album.ID)
	if err != nil {
		t.Fatalf("ListByAlbum returned error: %v", err)
	}
	if len(orphans) != 0 {
		t.Fatalf("expected cascade to remove all photos, %d remain", len(orphans))
	}

	if _, err := store.Photos().GetByID(ctx, kept.ID); err != nil {
		t.Fatalf("expected other album's photo to survive, got %v", err)
	}

	if err := store.Albums().Delete(ctx, album.ID); err != storage.ErrNotFound {
		t.Fatalf("expected ErrNotFound deleting missing album, got %v", err)
	}
}

func TestPhotosLifecycle(t *testing.T) {
	store := newStore(t)
	defer closeStore(t, store)
	ctx := context.Background()

	album, err := store.Albums().Create(ctx, storage.AlbumCreate{Title: "City Lights"})
	if err != nil {
		t.Fatalf("Create album returned error: %v", err)
	}

	takenAt := time.Date(2024, 12, 24, 21, 15, 0, 0, time.UTC)
	lat, lng := 48.8581, 2.2945

	first, err := store.Photos().Create(ctx, storage.PhotoCreate{
		AlbumID:   album.ID,
		Filename:  "tower.jpg",
		MimeType:  "image/jpeg",
		Data:      []byte("tower-bytes"),
		TakenAt:   takenAt,
		Latitude:  &lat,
		Longitude: &lng,
	})
	if err != nil {
		t.Fatalf("Create photo returned error: %v", err)
	}
	if first.Processed {
		t.Fatalf("expected new photo to be unprocessed")
	}
	if first.Filter != theme.Original {
		t.Fatalf("expected default filter, got %q", first.Filter)
	}

	second, err := store.Photos().Create(ctx, storage.PhotoCreate{
		AlbumID:  album.ID,
		Filename: "skyline.jpg",
		MimeType: "image/jpeg",
		Data:     []byte("skyline-bytes"),
		TakenAt:  takenAt.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Create photo returned error: %v", err)
	}

	photos, err := store.Photos().ListByAlbum(ctx, album.ID)
	if err != nil {
		t.Fatalf("ListByAlbum returned error: %v", err)
	}
	if len(photos) != 2 {
		t.Fatalf("expected 2 photos, got %d", len(photos))
	}
	if photos[0].ID != first.ID || photos[1].ID != second.ID {
		t.Fatalf("expected ordered photos [%d %d], got [%d %d]", first.ID, second.ID, photos[0].ID, photos[1].ID)
	}
	if len(photos[0].Data) != 0 {
		t.Fatalf("expected listing to omit image payload")
	}

	got, err := store.Photos().GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if string(got.Data) != "tower-bytes" {
		t.Fatalf("expected GetByID to include image payload")
	}
	if !got.TakenAt.Equal(takenAt) {
		t.Fatalf("expected TakenAt %v, got %v", takenAt, got.TakenAt)
	}
	if got.Latitude == nil || *got.Latitude != lat {
		t.Fatalf("expected latitude %v, got %v", lat, got.Latitude)
	}

	description := "Sunset over the river"
	location := "Paris, France"
	landmarks := []storage.Landmark{{
		Name:        "Eiffel Tower",
		Description: "Wrought-iron lattice tower completed in 1889.",
		URL:         "https://en.wikipedia.org/wiki/Eiffel_Tower",
	}}
	processed := true
	filter := theme.Mono

	updated, err := store.Photos().Update(ctx, first.ID, storage.PhotoUpdate{
		Description: &description,
		Location:    &location,
		Landmarks:   &landmarks,
		Processed:   &processed,
		Filter:      &filter,
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Description != description || updated.Location != location {
		t.Fatalf("expected annotations to persist, got %+v", updated)
	}
	if !updated.Processed {
		t.Fatalf("expected processed flag to be set")
	}
	if updated.Filter != theme.Mono {
		t.Fatalf("expected filter %q, got %q", theme.Mono, updated.Filter)
	}
	if len(updated.Landmarks) != 1 || updated.Landmarks[0].Name != "Eiffel Tower" {
		t.Fatalf("expected landmarks to round-trip, got %+v", updated.Landmarks)
	}

	if err := store.Photos().Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if _, err := store.Photos().GetByID(ctx, first.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestPhotoDeleteClearsAlbumCover(t *testing.T) {
	store := newStore(t)
	defer closeStore(t, store)
	ctx := context.Background()

	album, err := store.Albums().Create(ctx, storage.AlbumCreate{Title: "Harbour"})
	if err != nil {
		t.Fatalf("create album: %v", err)
	}

	cover, err := store.Photos().Create(ctx, storage.PhotoCreate{
		AlbumID:  album.ID,
		Filename: "cover.jpg",
		MimeType: "image/jpeg",
		Data:     []byte{0xff, 0xd8},
	})
	if err != nil {
		t.Fatalf("create cover photo: %v", err)
	}
	other, err := store.Photos().Create(ctx, storage.PhotoCreate{
		AlbumID:  album.ID,
		Filename: "other.jpg",
		MimeType: "image/jpeg",
		Data:     []byte{0xff, 0xd8},
	})
	if err != nil {
		t.Fatalf("create other photo: %v", err)
	}

	if err := store.Albums().SetCoverPhoto(ctx, album.ID, cover.ID); err != nil {
		t.Fatalf("SetCoverPhoto returned error: %v", err)
	}

	if err := store.Photos().Delete(ctx, cover.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	reloaded, err := store.Albums().GetByID(ctx, album.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if reloaded.CoverPhotoID != nil {
		t.Fatalf("expected cover to be cleared with its photo, got %d", *reloaded.CoverPhotoID)
	}

	// Deleting a photo that is not the cover leaves the reference alone.
	if err := store.Albums().SetCoverPhoto(ctx, album.ID, other.ID); err != nil {
		t.Fatalf("SetCoverPhoto returned error: %v", err)
	}
	extra, err := store.Photos().Create(ctx, storage.PhotoCreate{
		AlbumID:  album.ID,
		Filename: "extra.jpg",
		MimeType: "image/jpeg",
		Data:     []byte{0xff, 0xd8},
	})
	if err != nil {
		t.Fatalf("create extra photo: %v", err)
	}
	if err := store.Photos().Delete(ctx, extra.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	reloaded, err = store.Albums().GetByID(ctx, album.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if reloaded.CoverPhotoID == nil || *reloaded.CoverPhotoID != other.ID {
		t.Fatalf("expected cover %d to survive, got %v", other.ID, reloaded.CoverPhotoID)
	}
}

func TestSetCoverPhotoValidatesOwnership(t *testing.T) {
	store := newStore(t)
	defer closeStore(t, store)
	ctx := context.Background()

	albumA, err := store.Albums().Create(ctx, storage.AlbumCreate{Title: "Album A"})
	if err != nil {
		t.Fatalf("create album A: %v", err)
	}
	albumB, err := store.Albums().Create(ctx, storage.AlbumCreate{Title: "Album B"})
	if err != nil {
		t.Fatalf("create album B: %v", err)
	}

	photo, err := store.Photos().Create(ctx, storage.PhotoCreate{
		AlbumID:  albumB.ID,
		Filename: "photo.jpg",
		MimeType: "image/jpeg",
		Data:     []byte{0xff, 0xd8},
	})
	if err != nil {
		t.Fatalf("create photo: %v", err)
	}

	if err := store.Albums().SetCoverPhoto(ctx, albumA.ID, photo.ID); err != storage.ErrNotFound {
		t.Fatalf("expected ErrNotFound when using foreign photo, got %v", err)
	}
}

func newStore(t *testing.T) storage.Store {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "keepsake.db")

	store, err := sqlite.Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	return store
}

func closeStore(t *testing.T, store storage.Store) {
	t.Helper()
	if err := store.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}
