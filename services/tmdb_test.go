package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"catalog/logging"
	"catalog/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTMDB(t *testing.T, handler http.HandlerFunc) *TMDBService {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewTMDBService("test-key", 2*time.Second, logging.Discard()).WithBaseURL(server.URL)
}

func TestTMDBService_Lookup_Movie(t *testing.T) {
	svc := newTestTMDB(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		switch r.URL.Path {
		case "/search/movie":
			assert.Equal(t, "The Matrix", r.URL.Query().Get("query"))
			fmt.Fprint(w, `{"results":[{"id":603},{"id":999}]}`)
		case "/movie/603":
			fmt.Fprint(w, `{
				"id": 603,
				"overview": "A hacker learns the truth.",
				"release_date": "1999-03-30",
				"first_air_date": "ignored",
				"poster_path": "/matrix.jpg",
				"vote_average": 8.2,
				"genres": [{"id": 28, "name": "Action"}, {"id": 878, "name": "Science Fiction"}]
			}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	meta := svc.Lookup(context.Background(), "The Matrix", models.KindMovie)
	require.NotNil(t, meta)
	assert.Equal(t, 603, meta.TMDBID)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/matrix.jpg", meta.Poster)
	assert.Equal(t, "A hacker learns the truth.", meta.Overview)
	assert.Equal(t, "1999-03-30", meta.ReleaseDate)
	assert.Equal(t, []string{"Action", "Science Fiction"}, meta.Genres)
	require.NotNil(t, meta.VoteAverage)
	assert.Equal(t, 8.2, *meta.VoteAverage)
}

func TestTMDBService_Lookup_SeriesUsesTVAndFirstAirDate(t *testing.T) {
	svc := newTestTMDB(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search/tv":
			fmt.Fprint(w, `{"results":[{"id":1399}]}`)
		case "/tv/1399":
			fmt.Fprint(w, `{"id":1399,"first_air_date":"2011-04-17","release_date":"","vote_average":0}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	meta := svc.Lookup(context.Background(), "Thrones", models.KindSeries)
	require.NotNil(t, meta)
	assert.Equal(t, "2011-04-17", meta.ReleaseDate)
	assert.Empty(t, meta.Poster)
	assert.Empty(t, meta.Genres)
	assert.Nil(t, meta.VoteAverage, "zero rating is treated as absent")
}

func TestTMDBService_Lookup_EmptyResults(t *testing.T) {
	var detailCalls int32
	svc := newTestTMDB(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search/movie" {
			fmt.Fprint(w, `{"results":[]}`)
			return
		}
		atomic.AddInt32(&detailCalls, 1)
	})

	assert.Nil(t, svc.Lookup(context.Background(), "Nothing", models.KindMovie))
	assert.Zero(t, atomic.LoadInt32(&detailCalls))
}

func TestTMDBService_Lookup_FailuresAreAbsorbed(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "search status error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
		},
		{
			name: "malformed search body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"results": [`)
			},
		},
		{
			name: "detail failure",
			handler: func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/search/movie" {
					fmt.Fprint(w, `{"results":[{"id":1}]}`)
					return
				}
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestTMDB(t, tc.handler)
			assert.Nil(t, svc.Lookup(context.Background(), "X", models.KindMovie))
		})
	}
}

func TestTMDBService_Lookup_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	svc := NewTMDBService("k", 50*time.Millisecond, logging.Discard()).WithBaseURL(server.URL)

	start := time.Now()
	assert.Nil(t, svc.Lookup(context.Background(), "Slow", models.KindMovie))
	assert.Less(t, time.Since(start), time.Second)
}

func TestTMDBService_Disabled(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	svc := NewTMDBService("", time.Second, logging.Discard()).WithBaseURL(server.URL)
	assert.False(t, svc.Enabled())
	assert.Nil(t, svc.Lookup(context.Background(), "Anything", models.KindMovie))
	assert.Empty(t, svc.TrailerKey(context.Background(), 603, models.KindMovie))
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestTMDBService_TrailerKey(t *testing.T) {
	svc := newTestTMDB(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tv/7/videos":
			fmt.Fprint(w, `{"results":[
				{"key":"teaser","site":"YouTube","type":"Teaser"},
				{"key":"vimeo","site":"Vimeo","type":"Trailer"},
				{"key":"abc123","site":"YouTube","type":"Trailer"},
				{"key":"later","site":"YouTube","type":"Trailer"}
			]}`)
		case "/movie/8/videos":
			fmt.Fprint(w, `{"results":[]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	ctx := context.Background()
	assert.Equal(t, "abc123", svc.TrailerKey(ctx, 7, models.KindSeries))
	assert.Empty(t, svc.TrailerKey(ctx, 8, models.KindMovie))
	assert.Empty(t, svc.TrailerKey(ctx, 9, models.KindMovie))
	assert.Empty(t, svc.TrailerKey(ctx, 0, models.KindMovie))
}
