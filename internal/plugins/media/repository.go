package media

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/keyxmakerx/reverie/internal/apperror"
)

// MediaRepository is the data access contract for stored images.
type MediaRepository interface {
	Create(ctx context.Context, file *MediaFile) error
	FindByID(ctx context.Context, id string) (*MediaFile, error)
	Delete(ctx context.Context, id string) error
}

type mediaRepository struct {
	db *sql.DB
}

// NewMediaRepository creates a media repository.
func NewMediaRepository(db *sql.DB) MediaRepository {
	return &mediaRepository{db: db}
}

// Create inserts a media row.
func (r *mediaRepository) Create(ctx context.Context, file *MediaFile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO media_files (id, user_id, filename, thumbnail, mime_type, file_size, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		file.ID, file.UserID, file.Filename, file.Thumbnail,
		file.MimeType, file.FileSize, file.Source, file.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting media file: %w", err)
	}
	return nil
}

// FindByID returns apperror.NotFound for an unknown ID.
func (r *mediaRepository) FindByID(ctx context.Context, id string) (*MediaFile, error) {
	f := &MediaFile{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, filename, thumbnail, mime_type, file_size, source, created_at
		 FROM media_files WHERE id = ?`, id,
	).Scan(&f.ID, &f.UserID, &f.Filename, &f.Thumbnail, &f.MimeType, &f.FileSize, &f.Source, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("media file not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying media file: %w", err)
	}
	return f, nil
}

// Delete removes the row. Journal entries pointing at it lose their sketch
// through ON DELETE SET NULL.
func (r *mediaRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM media_files WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting media file: %w", err)
	}
	return nil
}
