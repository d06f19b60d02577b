package models

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrInvalidSubmission is returned when an admin submission cannot be turned into a record
var ErrInvalidSubmission = errors.New("invalid submission")

// Repeated form fields carrying per-episode data, addressed by position
const (
	fieldEpisodeNumber    = "episode_number[]"
	fieldEpisodeTitle     = "episode_title[]"
	fieldEpisodeWatchLink = "episode_watch_link[]"
	fieldEpisodeLink480p  = "episode_link_480p[]"
	fieldEpisodeLink720p  = "episode_link_720p[]"
)

// EpisodeInput is one row of submitted episode fields
type EpisodeInput struct {
	Number    int
	Title     string
	WatchLink string
	Link480p  string
	Link720p  string
}

// Submission is an admin-submitted content draft
type Submission struct {
	Title        string
	Kind         Kind
	IsTrending   bool
	IsComingSoon bool
	PosterBadge  string
	Poster       string
	Overview     string
	ReleaseDate  string
	Genres       []string

	// movie
	WatchLink string
	Link480p  string
	Link720p  string
	Link1080p string

	// series
	Episodes []EpisodeInput
}

// ParseSubmission builds a Submission from posted form values. Per-episode
// fields must all be submitted once per episode and episode numbers must be
// integers; anything else is rejected with ErrInvalidSubmission.
func ParseSubmission(form url.Values) (*Submission, error) {
	title := strings.TrimSpace(form.Get("title"))
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidSubmission)
	}

	kind, err := ParseKind(form.Get("content_type"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSubmission, err)
	}

	sub := &Submission{
		Title:        title,
		Kind:         kind,
		IsTrending:   form.Get("is_trending") == "true",
		IsComingSoon: form.Get("is_coming_soon") == "true",
		PosterBadge:  strings.TrimSpace(form.Get("poster_badge")),
		Poster:       strings.TrimSpace(form.Get("poster_url")),
		Overview:     strings.TrimSpace(form.Get("overview")),
		ReleaseDate:  strings.TrimSpace(form.Get("release_date")),
		Genres:       SplitGenres(form.Get("genres")),
	}

	switch kind {
	case KindMovie:
		sub.WatchLink = form.Get("watch_link")
		sub.Link480p = form.Get("link_480p")
		sub.Link720p = form.Get("link_720p")
		sub.Link1080p = form.Get("link_1080p")
	case KindSeries:
		episodes, err := parseEpisodes(form)
		if err != nil {
			return nil, err
		}
		sub.Episodes = episodes
	}

	return sub, nil
}

// SplitGenres splits a comma separated genre list, dropping blank entries
func SplitGenres(s string) []string {
	genres := []string{}
	for _, g := range strings.Split(s, ",") {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}
	return genres
}

func parseEpisodes(form url.Values) ([]EpisodeInput, error) {
	numbers := form[fieldEpisodeNumber]
	titles := form[fieldEpisodeTitle]
	watchLinks := form[fieldEpisodeWatchLink]
	links480p := form[fieldEpisodeLink480p]
	links720p := form[fieldEpisodeLink720p]

	for name, values := range map[string][]string{
		fieldEpisodeTitle:     titles,
		fieldEpisodeWatchLink: watchLinks,
		fieldEpisodeLink480p:  links480p,
		fieldEpisodeLink720p:  links720p,
	} {
		if len(values) != len(numbers) {
			return nil, fmt.Errorf("%w: %d values for %s, expected %d",
				ErrInvalidSubmission, len(values), name, len(numbers))
		}
	}

	episodes := make([]EpisodeInput, 0, len(numbers))
	for i, raw := range numbers {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: episode number %q at position %d is not an integer",
				ErrInvalidSubmission, raw, i+1)
		}
		episodes = append(episodes, EpisodeInput{
			Number:    n,
			Title:     titles[i],
			WatchLink: watchLinks[i],
			Link480p:  links480p[i],
			Link720p:  links720p[i],
		})
	}
	return episodes, nil
}
