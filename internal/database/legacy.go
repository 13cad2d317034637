package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bhajan-portal/internal/models"
)

// legacyColumn is a column that databases created before versioned
// migrations may be missing
type legacyColumn struct {
	Name string
	DDL  string
}

// Order matters: it is the order columns are added in.
var legacyColumns = []legacyColumn{
	{Name: "tags", DDL: "TEXT DEFAULT '[]'"},
	{Name: "uploader_name", DDL: "TEXT"},
	{Name: "youtube_url", DDL: "TEXT DEFAULT NULL"},
	{Name: "created_at", DDL: "DATETIME"},
	{Name: "updated_at", DDL: "DATETIME"},
	{Name: "deleted_at", DDL: "DATETIME DEFAULT NULL"},
}

const backfillSQL = `
UPDATE bhajans SET uploader_name = 'Unknown' WHERE uploader_name IS NULL OR uploader_name = '';
UPDATE bhajans SET created_at = DATETIME('now') WHERE created_at IS NULL;
UPDATE bhajans SET updated_at = DATETIME('now') WHERE updated_at IS NULL;
UPDATE bhajans SET tags = '[]' WHERE tags IS NULL OR tags = '';
`

// TableColumns returns the column names of a table via PRAGMA table_info
func TableColumns(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column info: %w", err)
		}
		columns[name] = true
	}
	return columns, rows.Err()
}

// UpgradeLegacyColumns adds any known column missing from bhajans, converts a
// legacy manual_tags column into JSON tags, and backfills defaults when it
// changed anything. Running it on an up-to-date table is a no-op.
func UpgradeLegacyColumns(ctx context.Context, db *sql.DB) ([]string, error) {
	columns, err := TableColumns(ctx, db, "bhajans")
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table bhajans does not exist")
	}

	var added []string
	for _, col := range legacyColumns {
		if columns[col.Name] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE bhajans ADD COLUMN %s %s", col.Name, col.DDL)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return added, fmt.Errorf("failed to add column %s: %w", col.Name, err)
		}
		added = append(added, col.Name)
	}

	converted := 0
	if columns["manual_tags"] {
		converted, err = convertManualTags(ctx, db)
		if err != nil {
			return added, err
		}
	}

	if len(added) > 0 || converted > 0 {
		if _, err := db.ExecContext(ctx, backfillSQL); err != nil {
			return added, fmt.Errorf("failed to backfill defaults: %w", err)
		}
	}

	return added, nil
}

// convertManualTags copies comma-separated manual_tags into the JSON tags
// column for rows that have no tags yet
func convertManualTags(ctx context.Context, db *sql.DB) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, manual_tags FROM bhajans
		WHERE (tags IS NULL OR tags = '' OR tags = '[]')
		  AND manual_tags IS NOT NULL AND manual_tags != ''
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to read manual_tags: %w", err)
	}

	pending := make(map[int64]string)
	for rows.Next() {
		var id int64
		var manual string
		if err := rows.Scan(&id, &manual); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan manual_tags: %w", err)
		}
		pending[id] = models.EncodeTags(models.ParseTags(manual))
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, err
	}
	rows.Close()

	for id, tags := range pending {
		if _, err := tx.ExecContext(ctx, "UPDATE bhajans SET tags = ? WHERE id = ?", tags, id); err != nil {
			return 0, fmt.Errorf("failed to convert manual_tags for %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(pending), nil
}
