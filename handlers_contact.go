package main

import (
	"net/http"
	"strings"

	"catalog/models"
)

// contactHandler returns the contact form prefill. Reporting a record
// switches the form to a problem report.
func (app *App) contactHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	app.renderPage(w, r, "Contact", models.NewContactPrefill(q.Get("title"), q.Get("report_id")))
}

// submitFeedbackHandler stores a visitor message verbatim with a server timestamp
func (app *App) submitFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid form data"})
		return
	}

	fb := &models.Feedback{
		Type:              models.FeedbackType(r.PostForm.Get("type")),
		ContentTitle:      r.PostForm.Get("content_title"),
		Message:           r.PostForm.Get("message"),
		Email:             strings.TrimSpace(r.PostForm.Get("email")),
		ReportedContentID: r.PostForm.Get("reported_content_id"),
	}

	ctx, cancel := app.storeContext(r)
	defer cancel()

	if err := app.feedback.Create(ctx, fb); err != nil {
		app.writeError(w, r, err, "Failed to save feedback")
		return
	}

	log.WithField("feedback_id", fb.ID).WithField("type", fb.Type).Info("Feedback received")
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message_sent": true,
		"feedback":     fb,
	})
}
