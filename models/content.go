// Package models defines the data structures used throughout the application.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind discriminates between the two shapes of catalog content
type Kind string

// Content kind constants
const (
	KindMovie  Kind = "movie"
	KindSeries Kind = "series"
)

// ParseKind maps a submitted content type to a Kind. An empty value means movie.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.TrimSpace(s)) {
	case "", KindMovie:
		return KindMovie, nil
	case KindSeries:
		return KindSeries, nil
	default:
		return "", fmt.Errorf("unknown content type %q", s)
	}
}

// Quality is a playback quality tier label
type Quality string

// Quality tiers, in the order links are assembled
const (
	Quality480p  Quality = "480p"
	Quality720p  Quality = "720p"
	Quality1080p Quality = "1080p"
)

// Link is a download or stream URL for one quality tier
type Link struct {
	Quality Quality `json:"quality" bson:"quality"`
	URL     string  `json:"url" bson:"url"`
}

// Episode is a single episode of a series
type Episode struct {
	EpisodeNumber int    `json:"episode_number" bson:"episode_number"`
	Title         string `json:"title" bson:"title"`
	WatchLink     string `json:"watch_link" bson:"watch_link"`
	Links         []Link `json:"links" bson:"links"`
}

// Playback is the kind-specific part of a content record. It is implemented
// only by MoviePlayback and SeriesPlayback.
type Playback interface {
	Kind() Kind
	isPlayback()
}

// MoviePlayback holds the playback data of a movie
type MoviePlayback struct {
	WatchLink string
	Links     []Link
}

// Kind implements Playback
func (MoviePlayback) Kind() Kind  { return KindMovie }
func (MoviePlayback) isPlayback() {}

// SeriesPlayback holds the playback data of a series
type SeriesPlayback struct {
	Episodes []Episode
}

// Kind implements Playback
func (SeriesPlayback) Kind() Kind  { return KindSeries }
func (SeriesPlayback) isPlayback() {}

// Content represents a movie or series in the catalog
type Content struct {
	ID           string
	Title        string
	PosterBadge  string
	Poster       string
	Overview     string
	ReleaseDate  string
	Genres       []string
	VoteAverage  *float64
	TMDBID       int
	IsTrending   bool
	IsComingSoon bool
	Playback     Playback
}

// Kind returns the kind selected by the record's playback data
func (c *Content) Kind() Kind {
	if c.Playback == nil {
		return KindMovie
	}
	return c.Playback.Kind()
}

// Movie returns the movie playback data, if the record is a movie
func (c *Content) Movie() (MoviePlayback, bool) {
	p, ok := c.Playback.(MoviePlayback)
	return p, ok
}

// Series returns the series playback data, if the record is a series
func (c *Content) Series() (SeriesPlayback, bool) {
	p, ok := c.Playback.(SeriesPlayback)
	return p, ok
}

// Document is the flat stored and wire shape of a content record. Only the
// fields of the record's own kind are populated.
type Document struct {
	ID           string    `json:"id,omitempty" bson:"-"`
	Title        string    `json:"title" bson:"title"`
	Type         Kind      `json:"type" bson:"type"`
	PosterBadge  string    `json:"poster_badge" bson:"poster_badge"`
	Poster       string    `json:"poster" bson:"poster"`
	Overview     string    `json:"overview" bson:"overview"`
	ReleaseDate  string    `json:"release_date" bson:"release_date"`
	Genres       []string  `json:"genres" bson:"genres"`
	VoteAverage  *float64  `json:"vote_average,omitempty" bson:"vote_average,omitempty"`
	TMDBID       int       `json:"tmdb_id,omitempty" bson:"tmdb_id,omitempty"`
	IsTrending   bool      `json:"is_trending" bson:"is_trending"`
	IsComingSoon bool      `json:"is_coming_soon" bson:"is_coming_soon"`
	WatchLink    string    `json:"watch_link,omitempty" bson:"watch_link,omitempty"`
	Links        []Link    `json:"links,omitempty" bson:"links,omitempty"`
	Episodes     []Episode `json:"episodes,omitempty" bson:"episodes,omitempty"`
}

// Document flattens the record into its stored shape
func (c Content) Document() Document {
	d := Document{
		ID:           c.ID,
		Title:        c.Title,
		Type:         c.Kind(),
		PosterBadge:  c.PosterBadge,
		Poster:       c.Poster,
		Overview:     c.Overview,
		ReleaseDate:  c.ReleaseDate,
		Genres:       c.Genres,
		VoteAverage:  c.VoteAverage,
		TMDBID:       c.TMDBID,
		IsTrending:   c.IsTrending,
		IsComingSoon: c.IsComingSoon,
	}
	if d.Genres == nil {
		d.Genres = []string{}
	}

	switch p := c.Playback.(type) {
	case MoviePlayback:
		d.WatchLink = p.WatchLink
		d.Links = p.Links
	case SeriesPlayback:
		d.Episodes = p.Episodes
	}
	return d
}

// Content rebuilds a record from its stored shape. Fields that belong to the
// other kind are dropped.
func (d Document) Content() (*Content, error) {
	kind, err := ParseKind(string(d.Type))
	if err != nil {
		return nil, err
	}

	c := &Content{
		ID:           d.ID,
		Title:        d.Title,
		PosterBadge:  d.PosterBadge,
		Poster:       d.Poster,
		Overview:     d.Overview,
		ReleaseDate:  d.ReleaseDate,
		Genres:       d.Genres,
		VoteAverage:  d.VoteAverage,
		TMDBID:       d.TMDBID,
		IsTrending:   d.IsTrending,
		IsComingSoon: d.IsComingSoon,
	}

	switch kind {
	case KindMovie:
		c.Playback = MoviePlayback{WatchLink: d.WatchLink, Links: d.Links}
	case KindSeries:
		c.Playback = SeriesPlayback{Episodes: d.Episodes}
	}
	return c, nil
}

// MarshalJSON encodes the record in its flat document shape
func (c Content) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Document())
}

// UnmarshalJSON decodes a flat document into the record
func (c *Content) UnmarshalJSON(data []byte) error {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	decoded, err := d.Content()
	if err != nil {
		return err
	}
	*c = *decoded
	return nil
}
