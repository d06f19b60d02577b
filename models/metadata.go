package models

// Metadata is the subset of a metadata provider record used to enrich content.
// Each field is zero when the provider did not return it.
type Metadata struct {
	TMDBID      int      `json:"tmdb_id,omitempty"`
	Poster      string   `json:"poster,omitempty"`
	Overview    string   `json:"overview,omitempty"`
	ReleaseDate string   `json:"release_date,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	VoteAverage *float64 `json:"vote_average,omitempty"`
}
