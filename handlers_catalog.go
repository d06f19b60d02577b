package main

import (
	"net/http"
	"strconv"

	"catalog/models"
	"catalog/services"

	"github.com/gorilla/mux"
)

// detailView is the payload of a content detail page
type detailView struct {
	Content    *models.Content  `json:"content"`
	Related    []models.Content `json:"related"`
	TrailerKey string           `json:"trailer_key,omitempty"`
}

// watchView is the payload of a playback page
type watchView struct {
	Title     string `json:"title"`
	WatchLink string `json:"watch_link"`
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		log.WithError(err).Warn("Failed to write response")
	}
}

// homeHandler renders the home page, or search results when q is set
func (app *App) homeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := app.storeContext(r)
	defer cancel()

	if q := r.URL.Query().Get("q"); q != "" {
		results, err := app.catalog.Search(ctx, q)
		if err != nil {
			app.writeError(w, r, err, "Failed to search content")
			return
		}
		app.renderPage(w, r, "Results for '"+q+"'", results)
		return
	}

	home, err := app.catalog.Home(ctx)
	if err != nil {
		app.writeError(w, r, err, "Failed to load home page")
		return
	}
	app.renderPage(w, r, "", home)
}

func (app *App) movieDetailHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := app.storeContext(r)
	defer cancel()

	content, err := app.catalog.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		app.writeError(w, r, err, "Failed to load content")
		return
	}

	related, err := app.catalog.RelatedTo(ctx, content)
	if err != nil {
		app.writeError(w, r, err, "Failed to load related content")
		return
	}

	view := detailView{Content: content, Related: related}
	if app.trailers != nil && content.TMDBID != 0 {
		view.TrailerKey = app.trailers.TrailerKey(r.Context(), content.TMDBID, content.Kind())
	}
	app.renderPage(w, r, content.Title, view)
}

// watchHandler resolves the playable link of a record. For a series, ep
// selects the episode by number.
func (app *App) watchHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := app.storeContext(r)
	defer cancel()

	content, err := app.catalog.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		app.writeError(w, r, err, "Failed to load content")
		return
	}

	view := resolveWatch(content, r.URL.Query().Get("ep"))
	if view.WatchLink == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Watch link not found for this content"})
		return
	}
	app.renderPage(w, r, view.Title, view)
}

func resolveWatch(content *models.Content, ep string) watchView {
	view := watchView{Title: content.Title}

	switch p := content.Playback.(type) {
	case models.MoviePlayback:
		view.WatchLink = p.WatchLink
	case models.SeriesPlayback:
		if ep == "" {
			return view
		}
		for _, episode := range p.Episodes {
			if strconv.Itoa(episode.EpisodeNumber) == ep {
				view.WatchLink = episode.WatchLink
				view.Title = content.Title + " - E" + ep + ": " + episode.Title
				break
			}
		}
	}
	return view
}

// facetHandler serves a full, unbounded facet listing
func (app *App) facetHandler(facet services.Facet, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := app.storeContext(r)
		defer cancel()

		contents, err := app.catalog.ListByFacet(ctx, facet, "", 0)
		if err != nil {
			app.writeError(w, r, err, "Failed to list content")
			return
		}
		app.renderPage(w, r, title, contents)
	}
}

func (app *App) badgeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := app.storeContext(r)
	defer cancel()

	name := mux.Vars(r)["name"]
	contents, err := app.catalog.ListByFacet(ctx, services.FacetBadge, name, 0)
	if err != nil {
		app.writeError(w, r, err, "Failed to list content")
		return
	}
	app.renderPage(w, r, "Tag: "+name, contents)
}

func (app *App) genresHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := app.storeContext(r)
	defer cancel()

	genres, err := app.catalog.DistinctGenres(ctx)
	if err != nil {
		app.writeError(w, r, err, "Failed to list genres")
		return
	}
	app.renderPage(w, r, "Browse by Genre", genres)
}

func (app *App) genreHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := app.storeContext(r)
	defer cancel()

	name := mux.Vars(r)["name"]
	contents, err := app.catalog.ListByFacet(ctx, services.FacetGenre, name, 0)
	if err != nil {
		app.writeError(w, r, err, "Failed to list content")
		return
	}
	app.renderPage(w, r, "Genre: "+name, contents)
}
