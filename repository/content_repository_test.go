package repository

import (
	"context"
	"errors"
	"testing"

	"catalog/database"
	"catalog/logging"
	"catalog/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (*database.DB, func()) {
	// Create a temporary test database
	testDB, err := database.NewDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	if err := testDB.Migrate(logging.Discard()); err != nil {
		t.Fatalf("Failed to initialize test schema: %v", err)
	}

	// Return cleanup function
	cleanup := func() {
		if err := testDB.Close(); err != nil {
			t.Logf("Failed to close test database: %v", err)
		}
	}

	return testDB, cleanup
}

func setupTestRepo(t *testing.T) (*ContentRepository, func()) {
	db, cleanup := setupTestDB(t)
	return NewContentRepository(db), cleanup
}

func createTestMovieForRepo(t *testing.T, repo *ContentRepository, title string, genres ...string) *models.Content {
	content := &models.Content{
		Title:    title,
		Poster:   "https://example.com/poster.jpg",
		Overview: "A test movie",
		Genres:   genres,
		Playback: models.MoviePlayback{
			WatchLink: "https://watch/" + title,
			Links:     []models.Link{{Quality: models.Quality720p, URL: "https://dl/720"}},
		},
	}
	require.NoError(t, repo.Create(context.Background(), content))
	return content
}

func titles(contents []models.Content) []string {
	out := make([]string, 0, len(contents))
	for _, c := range contents {
		out = append(out, c.Title)
	}
	return out
}

func TestContentRepository_CreateAndGet(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	created := createTestMovieForRepo(t, repo, "Heat", "Crime", "Drama")
	assert.NotEmpty(t, created.ID)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Heat", got.Title)
	assert.Equal(t, []string{"Crime", "Drama"}, got.Genres)

	movie, ok := got.Movie()
	require.True(t, ok)
	assert.Equal(t, "https://watch/Heat", movie.WatchLink)
	assert.Len(t, movie.Links, 1)
}

func TestContentRepository_Get_NotFound(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	for _, id := range []string{"999", "0", "-1", "not-an-id", "507f1f77bcf86cd799439011"} {
		t.Run(id, func(t *testing.T) {
			_, err := repo.Get(context.Background(), id)
			assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
		})
	}
}

func TestContentRepository_Find_NewestFirstWithLimit(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	for _, title := range []string{"First", "Second", "Third"} {
		createTestMovieForRepo(t, repo, title)
	}

	all, err := repo.Find(context.Background(), Filter{}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Third", "Second", "First"}, titles(all))

	limited, err := repo.Find(context.Background(), Filter{}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Third", "Second"}, titles(limited))
}

func TestContentRepository_Find_Filters(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	trending := createTestMovieForRepo(t, repo, "Trending Movie", "Action")
	require.NoError(t, repo.SetFlags(ctx, trending.ID, Flags{IsTrending: boolPtr(true)}))

	soon := createTestMovieForRepo(t, repo, "Soon Movie", "Action", "Drama")
	require.NoError(t, repo.SetFlags(ctx, soon.ID, Flags{IsTrending: boolPtr(true), IsComingSoon: boolPtr(true)}))

	series := &models.Content{
		Title:       "The Series",
		PosterBadge: "HD",
		Genres:      []string{"Drama"},
		Playback:    models.SeriesPlayback{Episodes: []models.Episode{{EpisodeNumber: 1, Title: "Pilot"}}},
	}
	require.NoError(t, repo.Create(ctx, series))

	testCases := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"trending excludes coming soon", Filter{TrendingOnly: true, ComingSoon: ComingSoonExclude}, []string{"Trending Movie"}},
		{"coming soon only", Filter{ComingSoon: ComingSoonOnly}, []string{"Soon Movie"}},
		{"series only", Filter{Kind: models.KindSeries, ComingSoon: ComingSoonExclude}, []string{"The Series"}},
		{"movies only", Filter{Kind: models.KindMovie}, []string{"Soon Movie", "Trending Movie"}},
		{"badge", Filter{Badge: "HD"}, []string{"The Series"}},
		{"genre containment", Filter{Genre: "Drama"}, []string{"The Series", "Soon Movie"}},
		{"any genre excluding self", Filter{AnyGenres: []string{"Action", "Comedy"}, ExcludeID: trending.ID}, []string{"Soon Movie"}},
		{"title contains is case insensitive", Filter{TitleContains: "SERIES"}, []string{"The Series"}},
		{"title contains is literal", Filter{TitleContains: "%"}, []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.Find(ctx, tc.filter, 0)
			require.NoError(t, err)
			assert.Equal(t, tc.want, titles(got))
		})
	}
}

func TestContentRepository_Distinct(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	for i, badge := range []string{"New", "", "New", "HD"} {
		c := &models.Content{
			Title:       "Badge " + string(rune('A'+i)),
			PosterBadge: badge,
			Genres:      []string{"Action", "Drama"}[:1+i%2],
			Playback:    models.MoviePlayback{},
		}
		require.NoError(t, repo.Create(ctx, c))
	}

	badges, err := repo.Distinct(ctx, FieldPosterBadge)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"New", "", "HD"}, badges)

	genres, err := repo.Distinct(ctx, FieldGenres)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Action", "Drama"}, genres)

	_, err = repo.Distinct(ctx, "title")
	assert.Error(t, err)
}

func TestContentRepository_Replace_SwitchesKind(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	rating := 7.1
	movie := createTestMovieForRepo(t, repo, "Was A Movie")
	movie.TMDBID = 11
	movie.VoteAverage = &rating
	require.NoError(t, repo.Replace(ctx, movie.ID, movie))

	edited := &models.Content{
		Title:    "Now A Series",
		Playback: models.SeriesPlayback{Episodes: []models.Episode{{EpisodeNumber: 1, Title: "One", WatchLink: "w"}}},
	}
	require.NoError(t, repo.Replace(ctx, movie.ID, edited))
	assert.Equal(t, movie.ID, edited.ID)

	got, err := repo.Get(ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, models.KindSeries, got.Kind())
	assert.Equal(t, "Now A Series", got.Title)
	assert.Empty(t, got.Document().WatchLink)
	assert.Empty(t, got.Document().Links)
	assert.Len(t, got.Document().Episodes, 1)

	// provider fields survive an edit that did not consult the provider
	assert.Equal(t, 11, got.TMDBID)
	require.NotNil(t, got.VoteAverage)
	assert.Equal(t, 7.1, *got.VoteAverage)
	assert.Equal(t, 11, edited.TMDBID)
}

func TestContentRepository_Replace_NotFound(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	err := repo.Replace(context.Background(), "999", &models.Content{Title: "x", Playback: models.MoviePlayback{}})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestContentRepository_SetFlags(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	c := createTestMovieForRepo(t, repo, "Flagged")
	require.NoError(t, repo.SetFlags(ctx, c.ID, Flags{IsComingSoon: boolPtr(true)}))

	got, err := repo.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.IsComingSoon)
	assert.False(t, got.IsTrending)

	err = repo.SetFlags(ctx, "12345", Flags{IsTrending: boolPtr(true)})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestContentRepository_Delete_Success(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	content := createTestMovieForRepo(t, repo, "Movie to Delete")

	// Delete the content
	require.NoError(t, repo.Delete(ctx, content.ID))

	// Verify it no longer exists
	_, err := repo.Get(ctx, content.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestContentRepository_Delete_DoubleDelete(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	content := createTestMovieForRepo(t, repo, "Double Delete Test")
	require.NoError(t, repo.Delete(ctx, content.ID))

	// Try to delete again - should fail
	err := repo.Delete(ctx, content.ID)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestContentRepository_Delete_MultipleContents(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	contents := make([]*models.Content, 3)
	for i := 0; i < 3; i++ {
		contents[i] = createTestMovieForRepo(t, repo, "Movie "+string(rune('A'+i)))
	}

	// Delete the middle one
	require.NoError(t, repo.Delete(ctx, contents[1].ID))

	all, err := repo.Find(ctx, Filter{}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Movie C", "Movie A"}, titles(all))
}

func boolPtr(b bool) *bool { return &b }
