package services

import (
	"context"
	"testing"

	"catalog/logging"
	"catalog/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) Lookup(ctx context.Context, title string, kind models.Kind) *models.Metadata {
	args := m.Called(ctx, title, kind)
	meta, _ := args.Get(0).(*models.Metadata)
	return meta
}

func ratingPtr(v float64) *float64 { return &v }

func fullMetadata() *models.Metadata {
	return &models.Metadata{
		TMDBID:      603,
		Poster:      "https://image.tmdb.org/t/p/w500/p.jpg",
		Overview:    "fetched overview",
		ReleaseDate: "1999-03-30",
		Genres:      []string{"Action", "Science Fiction"},
		VoteAverage: ratingPtr(8.2),
	}
}

func TestEnricher_Prepare_SkipsLookupWhenPosterAndOverviewPresent(t *testing.T) {
	lookup := &mockLookup{}
	enricher := NewEnricher(lookup, logging.Discard())

	sub := &models.Submission{
		Title:       "Heat",
		Kind:        models.KindMovie,
		Poster:      "https://admin/poster.jpg",
		Overview:    "admin overview",
		ReleaseDate: "",
		Genres:      []string{},
	}
	content := enricher.Prepare(context.Background(), sub)

	lookup.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, "https://admin/poster.jpg", content.Poster)
	assert.Equal(t, "admin overview", content.Overview)
	assert.Empty(t, content.ReleaseDate)
	assert.Empty(t, content.Genres)
	assert.Zero(t, content.TMDBID)
	assert.Nil(t, content.VoteAverage)
}

func TestEnricher_Prepare_GapFill(t *testing.T) {
	lookup := &mockLookup{}
	lookup.On("Lookup", mock.Anything, "The Matrix", models.KindMovie).Return(fullMetadata()).Once()
	enricher := NewEnricher(lookup, logging.Discard())

	sub := &models.Submission{
		Title:       "The Matrix",
		Kind:        models.KindMovie,
		Overview:    "admin overview",
		ReleaseDate: "1999",
		Genres:      []string{"Cyberpunk"},
	}
	content := enricher.Prepare(context.Background(), sub)

	lookup.AssertExpectations(t)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/p.jpg", content.Poster)
	assert.Equal(t, "admin overview", content.Overview)
	assert.Equal(t, "1999", content.ReleaseDate)
	assert.Equal(t, []string{"Cyberpunk"}, content.Genres)
}

func TestEnricher_Prepare_FillsAllEmptyFields(t *testing.T) {
	lookup := &mockLookup{}
	lookup.On("Lookup", mock.Anything, "Show", models.KindSeries).Return(fullMetadata()).Once()
	enricher := NewEnricher(lookup, logging.Discard())

	content := enricher.Prepare(context.Background(), &models.Submission{
		Title:  "Show",
		Kind:   models.KindSeries,
		Poster: "https://admin/poster.jpg",
	})

	lookup.AssertExpectations(t)
	assert.Equal(t, "https://admin/poster.jpg", content.Poster)
	assert.Equal(t, "fetched overview", content.Overview)
	assert.Equal(t, "1999-03-30", content.ReleaseDate)
	assert.Equal(t, []string{"Action", "Science Fiction"}, content.Genres)
}

func TestEnricher_Prepare_NoMetadataLeavesGaps(t *testing.T) {
	lookup := &mockLookup{}
	lookup.On("Lookup", mock.Anything, "Obscure", models.KindMovie).Return(nil).Once()
	enricher := NewEnricher(lookup, logging.Discard())

	content := enricher.Prepare(context.Background(), &models.Submission{Title: "Obscure", Kind: models.KindMovie})

	lookup.AssertExpectations(t)
	assert.Empty(t, content.Poster)
	assert.Empty(t, content.Overview)
	assert.Equal(t, []string{}, content.Genres)
	assert.Zero(t, content.TMDBID)
	assert.Nil(t, content.VoteAverage)
}

func TestEnricher_Prepare_ProviderIdentityAndRatingAlwaysWin(t *testing.T) {
	lookup := &mockLookup{}
	lookup.On("Lookup", mock.Anything, "Dune", models.KindMovie).
		Return(&models.Metadata{TMDBID: 438631, VoteAverage: ratingPtr(7.8)}).Once()
	enricher := NewEnricher(lookup, logging.Discard())

	content := enricher.Prepare(context.Background(), &models.Submission{
		Title:  "Dune",
		Kind:   models.KindMovie,
		Poster: "https://admin/dune.jpg",
	})

	assert.Equal(t, 438631, content.TMDBID)
	require.NotNil(t, content.VoteAverage)
	assert.Equal(t, 7.8, *content.VoteAverage)
	assert.Equal(t, "https://admin/dune.jpg", content.Poster)
	assert.Empty(t, content.Overview)
}

func TestEnricher_Prepare_MovieLinks(t *testing.T) {
	enricher := NewEnricher(&mockLookup{}, logging.Discard())

	content := enricher.Prepare(context.Background(), &models.Submission{
		Title:     "Linked",
		Kind:      models.KindMovie,
		Poster:    "p",
		Overview:  "o",
		WatchLink: "https://watch/linked",
		Link480p:  "a",
		Link1080p: "b",
	})

	movie, ok := content.Movie()
	require.True(t, ok)
	assert.Equal(t, "https://watch/linked", movie.WatchLink)
	assert.Equal(t, []models.Link{
		{Quality: models.Quality480p, URL: "a"},
		{Quality: models.Quality1080p, URL: "b"},
	}, movie.Links)
}

func TestEnricher_Prepare_SeriesEpisodes(t *testing.T) {
	enricher := NewEnricher(&mockLookup{}, logging.Discard())

	content := enricher.Prepare(context.Background(), &models.Submission{
		Title:    "Series",
		Kind:     models.KindSeries,
		Poster:   "p",
		Overview: "o",
		Episodes: []models.EpisodeInput{
			{Number: 1, Title: "Pilot", WatchLink: "w1", Link480p: "e1-480", Link720p: "e1-720"},
			{Number: 2, Title: "Second", WatchLink: "w2", Link720p: "e2-720"},
			{Number: 3, Title: "Third"},
		},
	})

	assert.Equal(t, models.KindSeries, content.Kind())
	series, ok := content.Series()
	require.True(t, ok)
	require.Len(t, series.Episodes, 3)

	assert.Equal(t, models.Episode{
		EpisodeNumber: 1,
		Title:         "Pilot",
		WatchLink:     "w1",
		Links: []models.Link{
			{Quality: models.Quality480p, URL: "e1-480"},
			{Quality: models.Quality720p, URL: "e1-720"},
		},
	}, series.Episodes[0])
	assert.Equal(t, []models.Link{{Quality: models.Quality720p, URL: "e2-720"}}, series.Episodes[1].Links)
	assert.Equal(t, []models.Link{}, series.Episodes[2].Links)

	doc := content.Document()
	assert.Empty(t, doc.WatchLink)
	assert.Empty(t, doc.Links)
}

func TestEnricher_Prepare_CopiesFlagsAndBadge(t *testing.T) {
	enricher := NewEnricher(&mockLookup{}, logging.Discard())

	content := enricher.Prepare(context.Background(), &models.Submission{
		Title:        "Flags",
		Kind:         models.KindMovie,
		Poster:       "p",
		Overview:     "o",
		PosterBadge:  "HD",
		IsTrending:   true,
		IsComingSoon: true,
	})

	assert.Equal(t, "HD", content.PosterBadge)
	assert.True(t, content.IsTrending)
	assert.True(t, content.IsComingSoon)
}
