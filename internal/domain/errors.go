package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrCatalogUnavailable indicates the catalog could not be reached or answered with a failure
	ErrCatalogUnavailable = errors.New("catalog is unavailable")

	// ErrNoResults indicates a search completed but found nothing to show
	ErrNoResults = errors.New("no results found")

	// ErrListNotFound indicates a result list id was never created or has been evicted
	ErrListNotFound = errors.New("result list not found")

	// ErrStaleList indicates a page token points outside of a known list
	ErrStaleList = errors.New("result list is stale")

	// ErrInvalidAction indicates an action token could not be decoded
	ErrInvalidAction = errors.New("invalid action token")

	// ErrInvalidHorizon indicates a negative forward-search horizon
	ErrInvalidHorizon = errors.New("search horizon must not be negative")
)
