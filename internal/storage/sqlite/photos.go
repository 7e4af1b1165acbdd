package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/afriel/keepsake/internal/storage"
	"github.com/afriel/keepsake/internal/theme"
)

type photoRepository struct {
	db *sql.DB
}

func (r *photoRepository) Create(ctx context.Context, input storage.PhotoCreate) (storage.Photo, error) {
	now := time.Now().UTC()

	takenAt := input.TakenAt
	if takenAt.IsZero() {
		takenAt = now
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO photos (album_id, filename, mime_type, data, latitude, longitude, taken_at, processed, filter, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?)`,
		input.AlbumID,
		input.Filename,
		input.MimeType,
		input.Data,
		nullFloat(input.Latitude),
		nullFloat(input.Longitude),
		takenAt.UTC(),
		string(theme.DefaultFilter),
		now,
		now,
	)
	if err != nil {
		return storage.Photo{}, fmt.Errorf("sqlite: create photo: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return storage.Photo{}, fmt.Errorf("sqlite: create photo: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *photoRepository) GetByID(ctx context.Context, id int64) (storage.Photo, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, album_id, filename, mime_type, data, description, location, landmarks, latitude, longitude, taken_at, processed, filter, created_at, updated_at
		FROM photos
		WHERE id = ?`,
		id,
	)
	return scanPhoto(row, true)
}

func (r *photoRepository) ListByAlbum(ctx context.Context, albumID int64) ([]storage.Photo, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, album_id, filename, mime_type, description, location, landmarks, latitude, longitude, taken_at, processed, filter, created_at, updated_at
		FROM photos
		WHERE album_id = ?
		ORDER BY taken_at, created_at, id`,
		albumID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list photos: %w", err)
	}
	defer rows.Close()

	var result []storage.Photo
	for rows.Next() {
		photo, err := scanPhoto(rows, false)
		if err != nil {
			return nil, err
		}
		result = append(result, photo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list photos: %w", err)
	}

	return result, nil
}

func (r *photoRepository) Update(ctx context.Context, id int64, input storage.PhotoUpdate) (storage.Photo, error) {
	setClauses := make([]string, 0, 7)
	args := make([]any, 0, 8)

	if input.Description != nil {
		setClauses = append(setClauses, "description = ?")
		args = append(args, *input.Description)
	}

	if input.Location != nil {
		setClauses = append(setClauses, "location = ?")
		args = append(args, *input.Location)
	}

	if input.Landmarks != nil {
		encoded, err := json.Marshal(*input.Landmarks)
		if err != nil {
			return storage.Photo{}, fmt.Errorf("sqlite: update photo: encode landmarks: %w", err)
		}
		setClauses = append(setClauses, "landmarks = ?")
		args = append(args, string(encoded))
	}

	if input.TakenAt != nil {
		setClauses = append(setClauses, "taken_at = ?")
		args = append(args, input.TakenAt.UTC())
	}

	if input.Processed != nil {
		setClauses = append(setClauses, "processed = ?")
		args = append(args, boolToInt(*input.Processed))
	}

	if input.Filter != nil {
		setClauses = append(setClauses, "filter = ?")
		args = append(args, string(*input.Filter))
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = ?")
	args = append(args, time.Now().UTC())
	args = append(args, id)

	query := fmt.Sprintf("UPDATE photos SET %s WHERE id = ?", strings.Join(setClauses, ", "))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return storage.Photo{}, fmt.Errorf("sqlite: update photo: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return storage.Photo{}, fmt.Errorf("sqlite: update photo: %w", err)
	}

	if rowsAffected == 0 {
		return storage.Photo{}, storage.ErrNotFound
	}

	return r.GetByID(ctx, id)
}

// Delete removes the photo and, in the same transaction, clears any album
// cover that referenced it, so listings never point at a deleted photo.
func (r *photoRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: delete photo: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM photos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete photo: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: delete photo: %w", err)
	}

	if rowsAffected == 0 {
		return storage.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE albums
		SET cover_photo_id = NULL, updated_at = ?
		WHERE cover_photo_id = ?`,
		time.Now().UTC(),
		id,
	); err != nil {
		return fmt.Errorf("sqlite: delete photo: clear cover: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: delete photo: commit: %w", err)
	}

	return nil
}

type photoScanner interface {
	Scan(dest ...any) error
}

func scanPhoto(s photoScanner, withData bool) (storage.Photo, error) {
	var (
		photo        storage.Photo
		landmarksRaw string
		latitude     sql.NullFloat64
		longitude    sql.NullFloat64
		takenAtRaw   time.Time
		processedRaw int
		filterRaw    string
		createdAtRaw time.Time
		updatedAtRaw time.Time
	)

	dest := []any{
		&photo.ID,
		&photo.AlbumID,
		&photo.Filename,
		&photo.MimeType,
	}
	if withData {
		dest = append(dest, &photo.Data)
	}
	dest = append(dest,
		&photo.Description,
		&photo.Location,
		&landmarksRaw,
		&latitude,
		&longitude,
		&takenAtRaw,
		&processedRaw,
		&filterRaw,
		&createdAtRaw,
		&updatedAtRaw,
	)

	if err := s.Scan(dest...); err != nil {
		if err == sql.ErrNoRows {
			return storage.Photo{}, storage.ErrNotFound
		}
		return storage.Photo{}, fmt.Errorf("sqlite: scan photo: %w", err)
	}

	if landmarksRaw != "" && landmarksRaw != "[]" {
		if err := json.Unmarshal([]byte(landmarksRaw), &photo.Landmarks); err != nil {
			return storage.Photo{}, fmt.Errorf("sqlite: scan photo: decode landmarks: %w", err)
		}
	}

	if latitude.Valid {
		v := latitude.Float64
		photo.Latitude = &v
	}
	if longitude.Valid {
		v := longitude.Float64
		photo.Longitude = &v
	}

	photo.TakenAt = takenAtRaw.UTC()
	photo.Processed = processedRaw != 0
	photo.Filter = theme.Filter(filterRaw)
	photo.CreatedAt = createdAtRaw.UTC()
	photo.UpdatedAt = updatedAtRaw.UTC()

	return photo, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
