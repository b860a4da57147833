package domain

import (
	"context"
)

// Catalog provides read-only access to the external title catalog.
// Every method may fail with ErrCatalogUnavailable; an empty result is not an error.
type Catalog interface {
	// SearchByDate returns titles released on a single day, most popular first
	SearchByDate(ctx context.Context, q DateQuery) ([]Candidate, error)

	// SearchPage returns one page of a filtered search together with the total page count
	SearchPage(ctx context.Context, kind MediaKind, f Filter, page int) (Page, error)

	// FetchDetails returns synopsis, video extras and watch providers for a single title
	FetchDetails(ctx context.Context, kind MediaKind, id int64) (*Details, error)

	// FetchGenres returns the localized genre taxonomy (id -> name)
	FetchGenres(ctx context.Context, kind MediaKind) (map[int]string, error)

	// PosterURL resolves a poster path into a displayable image URL
	PosterURL(posterPath string) string
}

// Translator converts text into the configured target language.
// Callers treat every error as "keep the original text".
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}
