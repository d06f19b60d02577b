package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"catalog/database"
	"catalog/logging"
	"catalog/models"
)

var log = logging.NewLogger("repository")

// ContentRepository stores content records as JSON documents in SQLite
type ContentRepository struct {
	db *database.DB
}

// NewContentRepository creates a new content repository
func NewContentRepository(db *database.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// Find returns records matching the filter, newest first
func (r *ContentRepository) Find(ctx context.Context, filter Filter, limit int) ([]models.Content, error) {
	where, args := sqliteWhere(filter)
	query := `SELECT id, doc FROM content` + where + ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query content: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.WithError(err).Warn("Failed to close rows")
		}
	}()

	contents := []models.Content{}
	for rows.Next() {
		var id int64
		var doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("failed to scan content: %w", err)
		}

		content, err := decodeDocument(id, doc)
		if err != nil {
			return nil, err
		}
		contents = append(contents, *content)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}

	return contents, nil
}

// Get retrieves a record by its ID
func (r *ContentRepository) Get(ctx context.Context, id string) (*models.Content, error) {
	rowID, ok := parseRowID(id)
	if !ok {
		return nil, fmt.Errorf("content %q: %w", id, ErrNotFound)
	}

	var doc string
	err := r.db.QueryRowContext(ctx, `SELECT doc FROM content WHERE id = ?`, rowID).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("content %q: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get content: %w", err)
	}

	return decodeDocument(rowID, doc)
}

// Distinct returns every value stored in the field across all records,
// including empty values
func (r *ContentRepository) Distinct(ctx context.Context, field string) ([]string, error) {
	var query string
	switch field {
	case FieldPosterBadge:
		query = `SELECT DISTINCT json_extract(doc, '$.poster_badge') FROM content`
	case FieldGenres:
		query = `SELECT DISTINCT je.value FROM content, json_each(content.doc, '$.genres') AS je`
	default:
		return nil, fmt.Errorf("distinct not supported for field %q", field)
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query distinct %s: %w", field, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.WithError(err).Warn("Failed to close rows")
		}
	}()

	values := []string{}
	for rows.Next() {
		var value sql.NullString
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("failed to scan distinct %s: %w", field, err)
		}
		values = append(values, value.String)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}

	return values, nil
}

// Create inserts a new record and assigns its ID
func (r *ContentRepository) Create(ctx context.Context, content *models.Content) error {
	doc, err := encodeDocument(content.Document())
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `INSERT INTO content (doc) VALUES (?)`, doc)
	if err != nil {
		return fmt.Errorf("failed to create content: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	content.ID = strconv.FormatInt(id, 10)
	return nil
}

// Replace overwrites an existing record with a re-merged one. Writing the
// whole document drops the previous kind's fields.
func (r *ContentRepository) Replace(ctx context.Context, id string, content *models.Content) error {
	return r.update(ctx, id, func(stored *models.Document) {
		next := content.Document()
		if next.TMDBID == 0 {
			next.TMDBID = stored.TMDBID
		}
		if next.VoteAverage == nil {
			next.VoteAverage = stored.VoteAverage
		}
		*stored = next

		content.ID = id
		content.TMDBID = next.TMDBID
		content.VoteAverage = next.VoteAverage
	})
}

// SetFlags updates the trending and coming-soon toggles
func (r *ContentRepository) SetFlags(ctx context.Context, id string, flags Flags) error {
	return r.update(ctx, id, func(stored *models.Document) {
		if flags.IsTrending != nil {
			stored.IsTrending = *flags.IsTrending
		}
		if flags.IsComingSoon != nil {
			stored.IsComingSoon = *flags.IsComingSoon
		}
	})
}

// Delete removes a record
func (r *ContentRepository) Delete(ctx context.Context, id string) error {
	rowID, ok := parseRowID(id)
	if !ok {
		return fmt.Errorf("content %q: %w", id, ErrNotFound)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM content WHERE id = ?`, rowID)
	if err != nil {
		return fmt.Errorf("failed to delete content: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("content %q: %w", id, ErrNotFound)
	}

	return nil
}

// update applies mutate to the stored document inside a transaction
func (r *ContentRepository) update(ctx context.Context, id string, mutate func(*models.Document)) error {
	rowID, ok := parseRowID(id)
	if !ok {
		return fmt.Errorf("content %q: %w", id, ErrNotFound)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.WithError(err).Warn("Failed to roll back transaction")
		}
	}()

	var raw string
	if err := tx.QueryRowContext(ctx, `SELECT doc FROM content WHERE id = ?`, rowID).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("content %q: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to load content: %w", err)
	}

	var stored models.Document
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return fmt.Errorf("failed to decode content %d: %w", rowID, err)
	}

	mutate(&stored)

	doc, err := encodeDocument(stored)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE content SET doc = ? WHERE id = ?`, doc, rowID); err != nil {
		return fmt.Errorf("failed to update content: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit content update: %w", err)
	}
	return nil
}

func sqliteWhere(f Filter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if f.Kind != "" {
		clauses = append(clauses, `json_extract(doc, '$.type') = ?`)
		args = append(args, string(f.Kind))
	}
	if f.TrendingOnly {
		clauses = append(clauses, `json_extract(doc, '$.is_trending') = 1`)
	}
	switch f.ComingSoon {
	case ComingSoonOnly:
		clauses = append(clauses, `json_extract(doc, '$.is_coming_soon') = 1`)
	case ComingSoonExclude:
		clauses = append(clauses, `COALESCE(json_extract(doc, '$.is_coming_soon'), 0) != 1`)
	}
	if f.Badge != "" {
		clauses = append(clauses, `json_extract(doc, '$.poster_badge') = ?`)
		args = append(args, f.Badge)
	}
	if f.Genre != "" {
		clauses = append(clauses, `EXISTS (SELECT 1 FROM json_each(content.doc, '$.genres') WHERE value = ?)`)
		args = append(args, f.Genre)
	}
	if len(f.AnyGenres) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(f.AnyGenres)), ",")
		clauses = append(clauses, `EXISTS (SELECT 1 FROM json_each(content.doc, '$.genres') WHERE value IN (`+placeholders+`))`)
		for _, g := range f.AnyGenres {
			args = append(args, g)
		}
	}
	if f.TitleContains != "" {
		clauses = append(clauses, `instr(casefold(coalesce(json_extract(doc, '$.title'), '')), casefold(?)) > 0`)
		args = append(args, f.TitleContains)
	}
	if f.ExcludeID != "" {
		if rowID, ok := parseRowID(f.ExcludeID); ok {
			clauses = append(clauses, `id != ?`)
			args = append(args, rowID)
		}
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func parseRowID(id string) (int64, bool) {
	rowID, err := strconv.ParseInt(id, 10, 64)
	if err != nil || rowID <= 0 {
		return 0, false
	}
	return rowID, true
}

func encodeDocument(d models.Document) (string, error) {
	d.ID = ""
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("failed to encode content: %w", err)
	}
	return string(data), nil
}

func decodeDocument(rowID int64, raw string) (*models.Content, error) {
	var d models.Document
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("failed to decode content %d: %w", rowID, err)
	}
	d.ID = strconv.FormatInt(rowID, 10)

	content, err := d.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to decode content %d: %w", rowID, err)
	}
	return content, nil
}
