package models

import "time"

// FeedbackType is the kind of message a visitor sent
type FeedbackType string

const (
	FeedbackMovieRequest  FeedbackType = "Movie Request"
	FeedbackProblemReport FeedbackType = "Problem Report"
)

// Feedback is a visitor message, optionally reporting a problem with a content record
type Feedback struct {
	ID                string       `json:"id"`
	Type              FeedbackType `json:"type"`
	ContentTitle      string       `json:"content_title"`
	Message           string       `json:"message"`
	Email             string       `json:"email,omitempty"`
	ReportedContentID string       `json:"reported_content_id,omitempty"`
	Timestamp         time.Time    `json:"timestamp"`
}

// ContactPrefill is the initial state of the contact form
type ContactPrefill struct {
	Type     FeedbackType `json:"type"`
	Title    string       `json:"title"`
	ReportID string       `json:"report_id,omitempty"`
}

// NewContactPrefill chooses the form type from whether a content record is being reported
func NewContactPrefill(title, reportID string) ContactPrefill {
	prefill := ContactPrefill{Type: FeedbackMovieRequest, Title: title, ReportID: reportID}
	if reportID != "" {
		prefill.Type = FeedbackProblemReport
	}
	return prefill
}
