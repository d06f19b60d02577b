package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"catalog/models"
	"catalog/repository"
	"catalog/telemetry"

	"github.com/sirupsen/logrus"
)

// page is the envelope of every public view. Ad settings ride along so the
// view layer can inject them.
type page struct {
	Title      string             `json:"title,omitempty"`
	AdSettings *models.AdSettings `json:"ad_settings"`
	Data       interface{}        `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

// storeContext bounds store calls made on behalf of a request
func (app *App) storeContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), app.storeTimeout)
}

// renderPage writes a public view with the current ad settings. Failing to
// read the settings does not fail the page.
func (app *App) renderPage(w http.ResponseWriter, r *http.Request, title string, data interface{}) {
	ctx, cancel := app.storeContext(r)
	defer cancel()

	ads, err := app.settings.Get(ctx)
	if err != nil {
		log.WithError(err).WithField("request_id", requestIDFrom(r.Context())).Warn("Failed to load ad settings")
		ads = &models.AdSettings{}
	}

	writeJSON(w, http.StatusOK, page{Title: title, AdSettings: ads, Data: data})
}

// writeError maps an error onto a response: missing records are 404,
// rejected submissions 400, anything else is reported and returned as 500.
func (app *App) writeError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, models.ErrInvalidSubmission):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		requestID := requestIDFrom(r.Context())
		log.WithError(err).WithFields(logrus.Fields{
			"request_id": requestID,
			"path":       r.URL.Path,
		}).Error(msg)
		telemetry.CaptureError(err, map[string]string{"route": r.URL.Path, "request_id": requestID})
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msg})
	}
}
