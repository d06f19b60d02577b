// Package main provides the main entry point for the content catalog application.
package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"catalog/config"
	"catalog/database"
	"catalog/logging"
	"catalog/metrics"
	"catalog/models"
	"catalog/repository"
	"catalog/services"
	"catalog/telemetry"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

var log = logging.NewLogger("catalog")

// trailerSource finds the trailer of a provider title
type trailerSource interface {
	TrailerKey(ctx context.Context, tmdbID int, kind models.Kind) string
}

// App represents the application with its dependencies
type App struct {
	content         repository.ContentStore
	feedback        repository.FeedbackStore
	settings        repository.SettingsStore
	catalog         *services.CatalogService
	enricher        *services.Enricher
	trailers        trailerSource
	auth            *adminAuth
	feedbackLimiter *ipRateLimiter
	storeTimeout    time.Duration
}

// stores groups the persistence backends selected at startup
type stores struct {
	content  repository.ContentStore
	feedback repository.FeedbackStore
	settings repository.SettingsStore
	close    func()
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Warn("Could not load .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	logging.Configure(cfg.LogLevel, cfg.LogFile)

	if err := telemetry.InitSentry(cfg.SentryDSN, "catalog"); err != nil {
		log.WithError(err).Warn("Sentry disabled")
	}
	defer telemetry.Flush(2 * time.Second)

	// The process must not serve without a confirmed store
	st, err := openStores(context.Background(), cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to store")
	}
	defer st.close()

	// Initialize TMDB service
	tmdbService := services.NewTMDBService(cfg.TMDBAPIKey, cfg.MetadataTimeout, logging.NewLogger("tmdb"))
	if !tmdbService.Enabled() {
		log.Warn("TMDB_API_KEY not set - metadata enrichment is disabled")
	}

	app := newApp(cfg, st, tmdbService)

	addr := ":" + cfg.Port
	log.WithField("addr", addr).Info("Server starting")
	server := &http.Server{
		Addr:         addr,
		Handler:      app.router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if err := server.ListenAndServe(); err != nil {
		log.WithError(err).Error("Server stopped")
	}
}

func newApp(cfg *config.Config, st *stores, tmdb *services.TMDBService) *App {
	return &App{
		content:         st.content,
		feedback:        st.feedback,
		settings:        st.settings,
		catalog:         services.NewCatalogService(st.content, cfg.HomePageSize, logging.NewLogger("catalog_service")),
		enricher:        services.NewEnricher(tmdb, logging.NewLogger("enrichment")),
		trailers:        tmdb,
		auth:            newAdminAuth(cfg.AdminUsername, cfg.AdminPassword, cfg.AdminPasswordHash),
		feedbackLimiter: newIPRateLimiter(cfg.FeedbackRatePerMinute, cfg.TrustProxyHeaders),
		storeTimeout:    cfg.StoreTimeout,
	}
}

// openStores connects the configured backend
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		db, err := database.NewDB(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(logging.NewLogger("database")); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &stores{
			content:  repository.NewContentRepository(db),
			feedback: repository.NewFeedbackRepository(db),
			settings: repository.NewSettingsRepository(db),
			close: func() {
				if err := db.Close(); err != nil {
					log.WithError(err).Warn("Failed to close database")
				}
			},
		}, nil

	case config.DriverMongo:
		client, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.StoreTimeout, logging.NewLogger("database"))
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDatabase)

		indexCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
		defer cancel()
		if err := repository.EnsureMongoIndexes(indexCtx, db); err != nil {
			log.WithError(err).Warn("Failed to ensure MongoDB indexes")
		}

		return &stores{
			content:  repository.NewMongoContentRepository(db),
			feedback: repository.NewMongoFeedbackRepository(db),
			settings: repository.NewMongoSettingsRepository(db),
			close: func() {
				if err := client.Disconnect(context.Background()); err != nil {
					log.WithError(err).Warn("Failed to disconnect from MongoDB")
				}
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func (app *App) router() *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLogger(logging.NewLogger("http")))
	r.Use(metrics.Middleware)

	// Health check endpoint
	r.HandleFunc("/health", healthHandler).Methods("GET")
	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	// Public catalog
	r.HandleFunc("/", app.homeHandler).Methods("GET")
	r.HandleFunc("/movie/{id}", app.movieDetailHandler).Methods("GET")
	r.HandleFunc("/watch/{id}", app.watchHandler).Methods("GET")
	r.HandleFunc("/badge/{name}", app.badgeHandler).Methods("GET")
	r.HandleFunc("/genres", app.genresHandler).Methods("GET")
	r.HandleFunc("/genre/{name}", app.genreHandler).Methods("GET")
	r.HandleFunc("/trending_movies", app.facetHandler(services.FacetTrending, "Trending Now")).Methods("GET")
	r.HandleFunc("/movies_only", app.facetHandler(services.FacetMovies, "All Movies")).Methods("GET")
	r.HandleFunc("/webseries", app.facetHandler(services.FacetSeries, "All Web Series")).Methods("GET")
	r.HandleFunc("/coming_soon", app.facetHandler(services.FacetComingSoon, "Coming Soon")).Methods("GET")
	r.HandleFunc("/recently_added", app.facetHandler(services.FacetRecentlyAdded, "Recently Added")).Methods("GET")
	r.HandleFunc("/contact", app.contactHandler).Methods("GET")
	r.HandleFunc("/contact", app.feedbackLimiter.limit(app.submitFeedbackHandler)).Methods("POST")

	// Admin
	admin := r.NewRoute().Subrouter()
	admin.Use(app.auth.require)
	admin.HandleFunc("/admin", app.adminDashboardHandler).Methods("GET")
	admin.HandleFunc("/admin", app.createContentHandler).Methods("POST")
	admin.HandleFunc("/admin/settings", app.settingsHandler).Methods("GET")
	admin.HandleFunc("/admin/settings", app.saveSettingsHandler).Methods("POST")
	admin.HandleFunc("/admin/save_ads", app.saveSettingsHandler).Methods("POST")
	admin.HandleFunc("/admin/content/{id}/flags", app.flagsHandler).Methods("POST")
	admin.HandleFunc("/edit_movie/{id}", app.editContentFormHandler).Methods("GET")
	admin.HandleFunc("/edit_movie/{id}", app.updateContentHandler).Methods("POST")
	admin.HandleFunc("/delete_movie/{id}", app.deleteContentHandler).Methods("POST")
	admin.HandleFunc("/feedback/delete/{id}", app.deleteFeedbackHandler).Methods("POST")

	return r
}
