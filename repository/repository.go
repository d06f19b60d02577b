// Package repository provides data access layer for the catalog.
package repository

import (
	"context"
	"errors"

	"catalog/models"
)

// ErrNotFound is returned when no record matches the requested ID
var ErrNotFound = errors.New("not found")

// ComingSoon selects how a Filter treats the coming-soon flag
type ComingSoon int

const (
	// ComingSoonAny ignores the flag
	ComingSoonAny ComingSoon = iota
	// ComingSoonOnly matches records flagged coming soon
	ComingSoonOnly
	// ComingSoonExclude matches records not flagged coming soon, including
	// records where the flag was never set
	ComingSoonExclude
)

// Filter selects content records. Zero-valued fields do not constrain the
// result; all set fields must match.
type Filter struct {
	Kind          models.Kind
	TrendingOnly  bool
	ComingSoon    ComingSoon
	Badge         string
	Genre         string
	AnyGenres     []string
	TitleContains string
	ExcludeID     string
}

// Distinct fields
const (
	FieldPosterBadge = "poster_badge"
	FieldGenres      = "genres"
)

// Flags are the standalone toggles of a content record. Nil fields are left unchanged.
type Flags struct {
	IsTrending   *bool `json:"is_trending,omitempty"`
	IsComingSoon *bool `json:"is_coming_soon,omitempty"`
}

// ContentStore persists content records. Find results are ordered newest
// first by store-assigned ID; a limit of zero means unbounded.
type ContentStore interface {
	Find(ctx context.Context, filter Filter, limit int) ([]models.Content, error)
	Get(ctx context.Context, id string) (*models.Content, error)
	Distinct(ctx context.Context, field string) ([]string, error)
	Create(ctx context.Context, content *models.Content) error
	// Replace stores a full re-merge of an existing record. Fields of the
	// record's previous kind are removed first. The provider identity and
	// rating are kept from the stored record when the new one lacks them.
	Replace(ctx context.Context, id string, content *models.Content) error
	SetFlags(ctx context.Context, id string, flags Flags) error
	Delete(ctx context.Context, id string) error
}

// FeedbackStore persists visitor feedback. List is ordered newest first.
type FeedbackStore interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	List(ctx context.Context) ([]models.Feedback, error)
	Delete(ctx context.Context, id string) error
}

// SettingsStore persists the singleton ad settings record. Get returns the
// zero value when nothing has been saved yet.
type SettingsStore interface {
	Get(ctx context.Context) (*models.AdSettings, error)
	Upsert(ctx context.Context, settings *models.AdSettings) error
}
