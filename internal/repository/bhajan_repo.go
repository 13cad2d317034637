package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bhajan-portal/internal/models"
)

const bhajanColumns = `id, title, lyrics, tags, uploader_name, youtube_url, created_at, updated_at, deleted_at`

// bhajanRepo is the concrete implementation of BhajanRepository
type bhajanRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewBhajanRepo creates a new bhajan repository
func NewBhajanRepo(db *sql.DB) BhajanRepository {
	return &bhajanRepo{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBhajan(s rowScanner) (*models.Bhajan, error) {
	var (
		b          models.Bhajan
		tags       sql.NullString
		uploader   sql.NullString
		youtubeURL sql.NullString
		createdAt  sql.NullTime
		updatedAt  sql.NullTime
		deletedAt  sql.NullTime
	)

	err := s.Scan(&b.ID, &b.Title, &b.Lyrics, &tags, &uploader, &youtubeURL, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	b.TagsJSON = tags.String
	b.UploaderName = uploader.String
	if youtubeURL.Valid {
		b.YoutubeURL = &youtubeURL.String
	}
	b.CreatedAt = createdAt.Time.UTC()
	b.UpdatedAt = updatedAt.Time.UTC()
	if deletedAt.Valid {
		t := deletedAt.Time.UTC()
		b.DeletedAt = &t
	}
	return &b, nil
}

func scanBhajans(rows *sql.Rows) ([]*models.Bhajan, error) {
	bhajans := make([]*models.Bhajan, 0)
	for rows.Next() {
		b, err := scanBhajan(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning bhajan: %w", err)
		}
		bhajans = append(bhajans, b)
	}
	return bhajans, rows.Err()
}

// escapeLike escapes LIKE wildcards so the search term matches literally
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// List returns active bhajans, newest first, filtered by search text and tag
func (r *bhajanRepo) List(ctx context.Context, filter models.ListFilter) ([]*models.Bhajan, error) {
	query := `SELECT ` + bhajanColumns + ` FROM bhajans WHERE deleted_at IS NULL`
	args := []interface{}{}

	if filter.Search != "" {
		pattern := "%" + escapeLike(filter.Search) + "%"
		query += ` AND (title LIKE ? ESCAPE '\' OR lyrics LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern)
	}

	if filter.Tag != "" {
		// json_each fails on malformed JSON, so only valid arrays are inspected.
		query += ` AND CASE WHEN json_valid(tags)
			THEN EXISTS (SELECT 1 FROM json_each(bhajans.tags) WHERE json_each.value = ?)
			ELSE 0 END`
		args = append(args, filter.Tag)
	}

	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing bhajans: %w", err)
	}
	defer rows.Close()

	return scanBhajans(rows)
}

// GetByID retrieves an active bhajan by ID
func (r *bhajanRepo) GetByID(ctx context.Context, id int64) (*models.Bhajan, error) {
	b, err := getActive(ctx, r.db, id)
	if err != nil {
		return nil, fmt.Errorf("error getting bhajan: %w", err)
	}
	return b, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func getActive(ctx context.Context, q queryRower, id int64) (*models.Bhajan, error) {
	query := `SELECT ` + bhajanColumns + ` FROM bhajans WHERE id = ? AND deleted_at IS NULL`

	b, err := scanBhajan(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Create inserts a new bhajan and fills in its ID and timestamps
func (r *bhajanRepo) Create(ctx context.Context, bhajan *models.Bhajan) error {
	if bhajan.TagsJSON == "" {
		bhajan.TagsJSON = "[]"
	}
	now := r.now()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO bhajans (title, lyrics, tags, uploader_name, youtube_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, bhajan.Title, bhajan.Lyrics, bhajan.TagsJSON, bhajan.UploaderName, bhajan.YoutubeURL, now, now)
	if err != nil {
		return fmt.Errorf("error creating bhajan: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("error reading bhajan id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing bhajan: %w", err)
	}

	bhajan.ID = id
	bhajan.CreatedAt = now
	bhajan.UpdatedAt = now
	bhajan.DeletedAt = nil
	return nil
}

// Update applies a partial update to an active bhajan.
// Returns nil if no active bhajan has the given ID.
func (r *bhajanRepo) Update(ctx context.Context, id int64, update *models.BhajanUpdate) (*models.Bhajan, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := getActive(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting bhajan: %w", err)
	}
	if existing == nil {
		return nil, nil
	}

	updatedAt := r.now()
	if updatedAt.Before(existing.CreatedAt) {
		updatedAt = existing.CreatedAt
	}

	// Build dynamic update query
	query := `UPDATE bhajans SET updated_at = ?`
	args := []interface{}{updatedAt}

	if update.Title != nil {
		query += `, title = ?`
		args = append(args, *update.Title)
	}
	if update.Lyrics != nil {
		query += `, lyrics = ?`
		args = append(args, *update.Lyrics)
	}
	if update.SetTags {
		query += `, tags = ?`
		args = append(args, models.EncodeTags(update.Tags))
	}
	if update.UploaderName != nil {
		query += `, uploader_name = ?`
		args = append(args, *update.UploaderName)
	}
	if update.SetYoutube {
		query += `, youtube_url = ?`
		args = append(args, update.YoutubeURL)
	}

	query += ` WHERE id = ? AND deleted_at IS NULL`
	args = append(args, id)

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("error updating bhajan: %w", err)
	}

	updated, err := getActive(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("error reloading bhajan: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing bhajan update: %w", err)
	}

	return updated, nil
}

// SoftDelete marks an active bhajan as deleted. Returns false if none matched.
func (r *bhajanRepo) SoftDelete(ctx context.Context, id int64) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE bhajans SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, r.now(), id)
	if err != nil {
		return false, fmt.Errorf("error deleting bhajan: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return false, nil
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("error committing bhajan delete: %w", err)
	}
	return true, nil
}

// DistinctTags returns every tag used by any bhajan, deleted ones included, sorted
func (r *bhajanRepo) DistinctTags(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT tags FROM bhajans`)
	if err != nil {
		return nil, fmt.Errorf("error reading tags: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var raw sql.NullString
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("error scanning tags: %w", err)
		}
		for _, tag := range models.DecodeTags(raw.String) {
			seen[tag] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags, nil
}

// CountActive returns the number of bhajans that are not soft-deleted
func (r *bhajanRepo) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bhajans WHERE deleted_at IS NULL`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting bhajans: %w", err)
	}
	return count, nil
}

// ListAll returns every bhajan, soft-deleted ones included, ordered by ID
func (r *bhajanRepo) ListAll(ctx context.Context) ([]*models.Bhajan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bhajanColumns+` FROM bhajans ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error listing bhajans: %w", err)
	}
	defer rows.Close()

	return scanBhajans(rows)
}

// UpdateLyrics replaces the stored lyrics of a bhajan
func (r *bhajanRepo) UpdateLyrics(ctx context.Context, id int64, lyrics string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE bhajans SET lyrics = ?, updated_at = ? WHERE id = ?`, lyrics, r.now(), id)
	if err != nil {
		return fmt.Errorf("error updating lyrics: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("bhajan %d not found", id)
	}

	return tx.Commit()
}
