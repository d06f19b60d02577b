package services

import (
	"context"

	"catalog/metrics"
	"catalog/models"

	"github.com/sirupsen/logrus"
)

// MetadataLookup resolves a title to provider metadata. It returns nil when
// nothing usable was found.
type MetadataLookup interface {
	Lookup(ctx context.Context, title string, kind models.Kind) *models.Metadata
}

// Enricher turns admin submissions into content records, filling gaps from
// a metadata provider
type Enricher struct {
	metadata MetadataLookup
	log      *logrus.Entry
}

// NewEnricher creates an enricher backed by the given lookup
func NewEnricher(metadata MetadataLookup, log *logrus.Entry) *Enricher {
	return &Enricher{metadata: metadata, log: log}
}

// Prepare builds a content record from a submission. When the poster or the
// overview is missing the provider is consulted once: its poster, overview,
// release date and genres only fill fields the admin left empty, while its
// TMDB id and rating always replace whatever the record held.
func (e *Enricher) Prepare(ctx context.Context, sub *models.Submission) *models.Content {
	content := &models.Content{
		Title:        sub.Title,
		PosterBadge:  sub.PosterBadge,
		Poster:       sub.Poster,
		Overview:     sub.Overview,
		ReleaseDate:  sub.ReleaseDate,
		Genres:       sub.Genres,
		IsTrending:   sub.IsTrending,
		IsComingSoon: sub.IsComingSoon,
		Playback:     playbackFromSubmission(sub),
	}
	if content.Genres == nil {
		content.Genres = []string{}
	}

	if content.Poster != "" && content.Overview != "" {
		metrics.Enrichments.WithLabelValues("skipped").Inc()
		return content
	}

	metrics.Enrichments.WithLabelValues("performed").Inc()
	meta := e.metadata.Lookup(ctx, sub.Title, sub.Kind)
	if meta == nil {
		e.log.WithField("title", sub.Title).Info("No metadata found, keeping submitted fields")
		return content
	}

	applyMetadata(content, meta)
	return content
}

func applyMetadata(content *models.Content, meta *models.Metadata) {
	if content.Poster == "" {
		content.Poster = meta.Poster
	}
	if content.Overview == "" {
		content.Overview = meta.Overview
	}
	if content.ReleaseDate == "" {
		content.ReleaseDate = meta.ReleaseDate
	}
	if len(content.Genres) == 0 && len(meta.Genres) > 0 {
		content.Genres = append([]string(nil), meta.Genres...)
	}

	if meta.TMDBID != 0 {
		content.TMDBID = meta.TMDBID
	}
	if meta.VoteAverage != nil {
		rating := *meta.VoteAverage
		content.VoteAverage = &rating
	}
}

func playbackFromSubmission(sub *models.Submission) models.Playback {
	switch sub.Kind {
	case models.KindSeries:
		episodes := make([]models.Episode, 0, len(sub.Episodes))
		for _, in := range sub.Episodes {
			episodes = append(episodes, models.Episode{
				EpisodeNumber: in.Number,
				Title:         in.Title,
				WatchLink:     in.WatchLink,
				Links: buildLinks(
					qualityURL{models.Quality480p, in.Link480p},
					qualityURL{models.Quality720p, in.Link720p},
				),
			})
		}
		return models.SeriesPlayback{Episodes: episodes}
	default:
		return models.MoviePlayback{
			WatchLink: sub.WatchLink,
			Links: buildLinks(
				qualityURL{models.Quality480p, sub.Link480p},
				qualityURL{models.Quality720p, sub.Link720p},
				qualityURL{models.Quality1080p, sub.Link1080p},
			),
		}
	}
}

type qualityURL struct {
	quality models.Quality
	url     string
}

// buildLinks keeps the tiers with a non-empty URL, in the order given
func buildLinks(tiers ...qualityURL) []models.Link {
	links := []models.Link{}
	for _, tier := range tiers {
		if tier.url != "" {
			links = append(links, models.Link{Quality: tier.quality, URL: tier.url})
		}
	}
	return links
}
