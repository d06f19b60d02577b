package main

import (
	"net/http"
	"strings"

	"catalog/models"
	"catalog/repository"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// dashboardView is the admin overview
type dashboardView struct {
	Content    []models.Content   `json:"content"`
	Feedback   []models.Feedback  `json:"feedback"`
	AdSettings *models.AdSettings `json:"ad_settings"`
}

// editView is the edit form of a single record. Genres are joined the way
// the form submits them.
type editView struct {
	Content *models.Content `json:"content"`
	Genres  string          `json:"genres"`
}

func redirectToAdmin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (app *App) adminDashboardHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := app.storeContext(r)
	defer cancel()

	contents, err := app.content.Find(ctx, repository.Filter{}, 0)
	if err != nil {
		app.writeError(w, r, err, "Failed to list content")
		return
	}

	feedback, err := app.feedback.List(ctx)
	if err != nil {
		app.writeError(w, r, err, "Failed to list feedback")
		return
	}

	ads, err := app.settings.Get(ctx)
	if err != nil {
		app.writeError(w, r, err, "Failed to load settings")
		return
	}

	writeJSON(w, http.StatusOK, dashboardView{Content: contents, Feedback: feedback, AdSettings: ads})
}

// createContentHandler enriches and stores a submitted record
func (app *App) createContentHandler(w http.ResponseWriter, r *http.Request) {
	sub, ok := app.parseSubmission(w, r)
	if !ok {
		return
	}

	content := app.enricher.Prepare(r.Context(), sub)

	ctx, cancel := app.storeContext(r)
	defer cancel()

	if err := app.content.Create(ctx, content); err != nil {
		app.writeError(w, r, err, "Failed to create content")
		return
	}

	log.WithFields(logrus.Fields{
		"content_id": content.ID,
		"title":      content.Title,
		"kind":       content.Kind(),
	}).Info("Added new content")
	redirectToAdmin(w, r)
}

func (app *App) editContentFormHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := app.storeContext(r)
	defer cancel()

	content, err := app.content.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		app.writeError(w, r, err, "Failed to load content")
		return
	}
	writeJSON(w, http.StatusOK, editView{Content: content, Genres: strings.Join(content.Genres, ", ")})
}

// updateContentHandler re-merges a submission over an existing record
func (app *App) updateContentHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	ctx, cancel := app.storeContext(r)
	if _, err := app.content.Get(ctx, id); err != nil {
		cancel()
		app.writeError(w, r, err, "Failed to load content")
		return
	}
	cancel()

	sub, ok := app.parseSubmission(w, r)
	if !ok {
		return
	}

	content := app.enricher.Prepare(r.Context(), sub)

	ctx, cancel = app.storeContext(r)
	defer cancel()

	if err := app.content.Replace(ctx, id, content); err != nil {
		app.writeError(w, r, err, "Failed to update content")
		return
	}

	log.WithFields(logrus.Fields{
		"content_id": id,
		"title":      content.Title,
		"kind":       content.Kind(),
	}).Info("Updated content")
	redirectToAdmin(w, r)
}

func (app *App) deleteContentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := app.storeContext(r)
	defer cancel()

	id := mux.Vars(r)["id"]
	if err := app.content.Delete(ctx, id); err != nil {
		app.writeError(w, r, err, "Failed to delete content")
		return
	}

	log.WithField("content_id", id).Info("Deleted content")
	redirectToAdmin(w, r)
}

// flagsHandler toggles the trending and coming-soon flags. Omitted flags
// keep their stored value.
func (app *App) flagsHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid form data"})
		return
	}

	var flags repository.Flags
	if _, ok := r.PostForm["is_trending"]; ok {
		v := r.PostForm.Get("is_trending") == "true"
		flags.IsTrending = &v
	}
	if _, ok := r.PostForm["is_coming_soon"]; ok {
		v := r.PostForm.Get("is_coming_soon") == "true"
		flags.IsComingSoon = &v
	}

	ctx, cancel := app.storeContext(r)
	defer cancel()

	id := mux.Vars(r)["id"]
	if err := app.content.SetFlags(ctx, id, flags); err != nil {
		app.writeError(w, r, err, "Failed to update flags")
		return
	}

	content, err := app.content.Get(ctx, id)
	if err != nil {
		app.writeError(w, r, err, "Failed to load content")
		return
	}
	writeJSON(w, http.StatusOK, content)
}

func (app *App) settingsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := app.storeContext(r)
	defer cancel()

	ads, err := app.settings.Get(ctx)
	if err != nil {
		app.writeError(w, r, err, "Failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, ads)
}

// saveSettingsHandler upserts all four ad slots. Missing fields clear their slot.
func (app *App) saveSettingsHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid form data"})
		return
	}

	ads := &models.AdSettings{
		PopunderCode:     r.PostForm.Get("popunder_code"),
		SocialBarCode:    r.PostForm.Get("social_bar_code"),
		BannerAdCode:     r.PostForm.Get("banner_ad_code"),
		NativeBannerCode: r.PostForm.Get("native_banner_code"),
	}

	ctx, cancel := app.storeContext(r)
	defer cancel()

	if err := app.settings.Upsert(ctx, ads); err != nil {
		app.writeError(w, r, err, "Failed to save settings")
		return
	}
	redirectToAdmin(w, r)
}

func (app *App) deleteFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := app.storeContext(r)
	defer cancel()

	id := mux.Vars(r)["id"]
	if err := app.feedback.Delete(ctx, id); err != nil {
		app.writeError(w, r, err, "Failed to delete feedback")
		return
	}
	redirectToAdmin(w, r)
}

// parseSubmission reads the posted form. It writes the error response
// itself and reports whether the caller should continue.
func (app *App) parseSubmission(w http.ResponseWriter, r *http.Request) (*models.Submission, bool) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid form data"})
		return nil, false
	}

	sub, err := models.ParseSubmission(r.PostForm)
	if err != nil {
		app.writeError(w, r, err, "Invalid submission")
		return nil, false
	}
	return sub, true
}
