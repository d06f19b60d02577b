// Package services provides external service integrations and the catalog's
// content pipelines.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"catalog/metrics"
	"catalog/models"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultTMDBBaseURL is the TMDB v3 API root
	DefaultTMDBBaseURL = "https://api.themoviedb.org/3"
	// TMDBImageBaseURL prefixes poster paths returned by the API
	TMDBImageBaseURL = "https://image.tmdb.org/t/p/w500"
)

// TMDBService handles interactions with The Movie Database API. Every call
// is a fresh round trip; failures are logged and reported as no result.
type TMDBService struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	client  *http.Client
	log     *logrus.Entry
}

// TMDBSearchResponse is the subset of a TMDB search response we consume
type TMDBSearchResponse struct {
	Results []struct {
		ID int `json:"id"`
	} `json:"results"`
}

// TMDBDetails is the subset of a TMDB movie or tv detail response we consume
type TMDBDetails struct {
	ID           int      `json:"id"`
	Overview     string   `json:"overview"`
	ReleaseDate  string   `json:"release_date"`
	FirstAirDate string   `json:"first_air_date"`
	PosterPath   string   `json:"poster_path"`
	VoteAverage  *float64 `json:"vote_average"`
	Genres       []Genre  `json:"genres"`
}

// Genre represents a genre from TMDB
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TMDBVideos is a TMDB videos listing
type TMDBVideos struct {
	Results []TMDBVideo `json:"results"`
}

// TMDBVideo is a single video attached to a title
type TMDBVideo struct {
	Key  string `json:"key"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// NewTMDBService creates a new TMDB service instance. An empty apiKey
// disables all lookups.
func NewTMDBService(apiKey string, timeout time.Duration, log *logrus.Entry) *TMDBService {
	return &TMDBService{
		apiKey:  apiKey,
		baseURL: DefaultTMDBBaseURL,
		timeout: timeout,
		client: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// WithBaseURL points the service at another API root
func (t *TMDBService) WithBaseURL(baseURL string) *TMDBService {
	t.baseURL = baseURL
	return t
}

// Enabled reports whether an API key is configured
func (t *TMDBService) Enabled() bool {
	return t.apiKey != ""
}

// mediaType maps a content kind to TMDB's content-type vocabulary
func mediaType(kind models.Kind) string {
	if kind == models.KindSeries {
		return "tv"
	}
	return "movie"
}

// Lookup resolves a title against TMDB. The first search result is taken as
// the match. It returns nil when the service is disabled, nothing matched, or
// the provider failed.
func (t *TMDBService) Lookup(ctx context.Context, title string, kind models.Kind) *models.Metadata {
	if !t.Enabled() {
		metrics.MetadataLookups.WithLabelValues(metrics.LookupDisabled).Inc()
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	logger := t.log.WithFields(logrus.Fields{"title": title, "kind": kind})
	media := mediaType(kind)

	var search TMDBSearchResponse
	if err := t.get(ctx, "/search/"+media, url.Values{"query": {title}}, &search); err != nil {
		logger.WithError(err).Warn("TMDB search failed")
		metrics.MetadataLookups.WithLabelValues(metrics.LookupError).Inc()
		return nil
	}
	if len(search.Results) == 0 {
		logger.Debug("No TMDB match")
		metrics.MetadataLookups.WithLabelValues(metrics.LookupNotFound).Inc()
		return nil
	}

	var details TMDBDetails
	path := fmt.Sprintf("/%s/%d", media, search.Results[0].ID)
	if err := t.get(ctx, path, nil, &details); err != nil {
		logger.WithError(err).Warn("TMDB detail fetch failed")
		metrics.MetadataLookups.WithLabelValues(metrics.LookupError).Inc()
		return nil
	}

	metrics.MetadataLookups.WithLabelValues(metrics.LookupFound).Inc()
	return convertToMetadata(details, kind)
}

// TrailerKey returns the YouTube key of the first trailer attached to a TMDB
// title, or "" when there is none or the provider failed.
func (t *TMDBService) TrailerKey(ctx context.Context, tmdbID int, kind models.Kind) string {
	if !t.Enabled() || tmdbID == 0 {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var videos TMDBVideos
	path := fmt.Sprintf("/%s/%d/videos", mediaType(kind), tmdbID)
	if err := t.get(ctx, path, nil, &videos); err != nil {
		t.log.WithError(err).WithField("tmdb_id", tmdbID).Warn("TMDB trailer fetch failed")
		return ""
	}

	for _, v := range videos.Results {
		if v.Type == "Trailer" && v.Site == "YouTube" {
			return v.Key
		}
	}
	return ""
}

func (t *TMDBService) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", t.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build TMDB request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch from TMDB: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.log.WithError(err).Warn("Failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("TMDB API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode TMDB response: %w", err)
	}
	return nil
}

func convertToMetadata(details TMDBDetails, kind models.Kind) *models.Metadata {
	meta := &models.Metadata{
		TMDBID:   details.ID,
		Overview: details.Overview,
	}

	// Set poster URL
	if details.PosterPath != "" {
		meta.Poster = TMDBImageBaseURL + details.PosterPath
	}

	if kind == models.KindSeries {
		meta.ReleaseDate = details.FirstAirDate
	} else {
		meta.ReleaseDate = details.ReleaseDate
	}

	for _, g := range details.Genres {
		if g.Name != "" {
			meta.Genres = append(meta.Genres, g.Name)
		}
	}

	// A zero rating means TMDB has no votes yet
	if details.VoteAverage != nil && *details.VoteAverage != 0 {
		rating := *details.VoteAverage
		meta.VoteAverage = &rating
	}

	return meta
}
