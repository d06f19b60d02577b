package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"catalog/database"
	"catalog/models"
)

// FeedbackRepository handles visitor feedback in SQLite
type FeedbackRepository struct {
	db *database.DB
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(db *database.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create stores a feedback message with a server-assigned timestamp
func (r *FeedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	feedback.Timestamp = time.Now().UTC()

	query := `INSERT INTO feedback (type, content_title, message, email, reported_content_id, timestamp)
			  VALUES (?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query,
		string(feedback.Type), feedback.ContentTitle, feedback.Message,
		nullString(feedback.Email), nullString(feedback.ReportedContentID), feedback.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	feedback.ID = strconv.FormatInt(id, 10)
	return nil
}

// List returns all feedback, newest first
func (r *FeedbackRepository) List(ctx context.Context) ([]models.Feedback, error) {
	query := `SELECT id, type, content_title, message, email, reported_content_id, timestamp
			  FROM feedback
			  ORDER BY timestamp DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.WithError(err).Warn("Failed to close rows")
		}
	}()

	list := []models.Feedback{}
	for rows.Next() {
		var fb models.Feedback
		var id int64
		var fbType string
		var email, reportedID sql.NullString

		if err := rows.Scan(&id, &fbType, &fb.ContentTitle, &fb.Message, &email, &reportedID, &fb.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}

		fb.ID = strconv.FormatInt(id, 10)
		fb.Type = models.FeedbackType(fbType)
		fb.Email = email.String
		fb.ReportedContentID = reportedID.String
		list = append(list, fb)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feedback: %w", err)
	}

	return list, nil
}

// Delete removes a single feedback message
func (r *FeedbackRepository) Delete(ctx context.Context, id string) error {
	rowID, ok := parseRowID(id)
	if !ok {
		return fmt.Errorf("feedback %q: %w", id, ErrNotFound)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM feedback WHERE id = ?`, rowID)
	if err != nil {
		return fmt.Errorf("failed to delete feedback: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("feedback %q: %w", id, ErrNotFound)
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
