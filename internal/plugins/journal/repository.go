package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/keyxmakerx/reverie/internal/apperror"
	"github.com/keyxmakerx/reverie/internal/config"
	"github.com/keyxmakerx/reverie/internal/database"
)

// EntryRepository is the data access contract for diary entries. Writes are
// last-write-wins per (user, date).
type EntryRepository interface {
	Get(ctx context.Context, userID, date string) (*Entry, error)
	Put(ctx context.Context, entry *Entry) error
	List(ctx context.Context, userID string) ([]Entry, error)
	All(ctx context.Context, userID string) (map[string]Entry, error)
	SetSketch(ctx context.Context, userID, date string, update SketchUpdate) error
	ListNeedingSketch(ctx context.Context, staleBefore time.Time, limit int) ([]Entry, error)
}

// SketchUpdate changes the sketch columns of an entry. An empty MediaID
// keeps whatever sketch is attached.
type SketchUpdate struct {
	Status  string
	MediaID string
	Error   string
}

type entryRepository struct {
	db        *sql.DB
	upsertSQL string
	now       func() time.Time
}

const insertEntry = `INSERT INTO journal_entries (user_id, entry_date, body, sketch_status, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)`

// Upserts per dialect. Only the text and updated_at change on conflict.
const (
	upsertEntryMySQL = insertEntry + `
	ON DUPLICATE KEY UPDATE body = VALUES(body), updated_at = VALUES(updated_at)`
	upsertEntrySQLite = insertEntry + `
	ON CONFLICT(user_id, entry_date) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`
)

// NewEntryRepository creates an entry repository for db's SQL dialect.
func NewEntryRepository(db *sql.DB) EntryRepository {
	upsert := upsertEntrySQLite
	if database.Dialect(db) == config.DriverMySQL {
		upsert = upsertEntryMySQL
	}
	return &entryRepository{db: db, upsertSQL: upsert, now: func() time.Time { return time.Now().UTC() }}
}

const entryColumns = `user_id, entry_date, body, sketch_id, sketch_status, sketch_error, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var (
		e        Entry
		sketchID sql.NullString
		errMsg   sql.NullString
	)
	if err := row.Scan(&e.UserID, &e.Date, &e.Text, &sketchID, &e.SketchStatus, &errMsg, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.SketchID = sketchID.String
	e.SketchError = errMsg.String
	return &e, nil
}

// Get returns apperror.NotFound when the day has no entry.
func (r *entryRepository) Get(ctx context.Context, userID, date string) (*Entry, error) {
	e, err := scanEntry(r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM journal_entries WHERE user_id = ? AND entry_date = ?`,
		userID, date,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("journal entry not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying journal entry: %w", err)
	}
	return e, nil
}

// Put writes the entry text, inserting the row on first save, in one
// statement so two first saves of the same day cannot collide. Sketch
// columns are only changed through SetSketch so a save never clobbers a
// sketch the worker just attached.
func (r *entryRepository) Put(ctx context.Context, entry *Entry) error {
	now := r.now()
	if _, err := r.db.ExecContext(ctx, r.upsertSQL,
		entry.UserID, entry.Date, entry.Text, SketchNone, now, now,
	); err != nil {
		return fmt.Errorf("saving journal entry: %w", err)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now
	if entry.SketchStatus == "" {
		entry.SketchStatus = SketchNone
	}
	return nil
}

// List returns every entry of a user in ascending date order.
func (r *entryRepository) List(ctx context.Context, userID string) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM journal_entries WHERE user_id = ? ORDER BY entry_date ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing journal entries: %w", err)
	}
	return collect(rows)
}

// All returns the entries keyed by date.
func (r *entryRepository) All(ctx context.Context, userID string) (map[string]Entry, error) {
	list, err := r.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Entry, len(list))
	for _, e := range list {
		out[e.Date] = e
	}
	return out, nil
}

// SetSketch updates the sketch status, error and (when given) media ID.
func (r *entryRepository) SetSketch(ctx context.Context, userID, date string, u SketchUpdate) error {
	var mediaID, errMsg sql.NullString
	if u.MediaID != "" {
		mediaID = sql.NullString{String: u.MediaID, Valid: true}
	}
	if u.Error != "" {
		errMsg = sql.NullString{String: u.Error, Valid: true}
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE journal_entries
		 SET sketch_status = ?, sketch_error = ?, sketch_id = COALESCE(?, sketch_id), updated_at = ?
		 WHERE user_id = ? AND entry_date = ?`,
		u.Status, errMsg, mediaID, r.now(), userID, date,
	)
	if err != nil {
		return fmt.Errorf("updating journal sketch: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperror.NewNotFound("journal entry not found")
	}
	return nil
}

// ListNeedingSketch returns entries across all users whose sketch failed,
// was never made, or has been pending since before staleBefore. Oldest
// first. Short entries are filtered by the caller after trimming.
func (r *entryRepository) ListNeedingSketch(ctx context.Context, staleBefore time.Time, limit int) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM journal_entries
		 WHERE LENGTH(body) > ?
		   AND (sketch_status = ?
		        OR (sketch_status = ? AND sketch_id IS NULL)
		        OR (sketch_status = ? AND updated_at < ?))
		 ORDER BY updated_at ASC
		 LIMIT ?`,
		MinSketchText, SketchFailed, SketchNone, SketchPending, staleBefore.UTC(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing entries needing sketches: %w", err)
	}
	return collect(rows)
}

func collect(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal entries: %w", err)
	}
	return out, nil
}
