package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmcdole/releasebot/internal/domain"
	"github.com/mmcdole/releasebot/internal/search"
)

// GenreService loads genre taxonomies into the shared index.
// The durable store keeps the last good copy for when the catalog is down.
type GenreService struct {
	catalog domain.Catalog
	store   domain.Store
	index   *search.GenreIndex
	logger  *slog.Logger
}

// NewGenreService creates a new genre service
func NewGenreService(catalog domain.Catalog, store domain.Store, index *search.GenreIndex, logger *slog.Logger) *GenreService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenreService{
		catalog: catalog,
		store:   store,
		index:   index,
		logger:  logger,
	}
}

// Load fetches every kind's taxonomy. A kind that can be neither fetched nor
// restored from the store stays empty and is reported in the returned error.
func (s *GenreService) Load(ctx context.Context) error {
	var errs []error
	for _, kind := range domain.Kinds {
		if err := s.loadKind(ctx, kind); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *GenreService) loadKind(ctx context.Context, kind domain.MediaKind) error {
	names, err := s.catalog.FetchGenres(ctx, kind)
	if err == nil && len(names) > 0 {
		s.index.Set(kind, names)
		if err := s.store.SaveGenres(kind, names); err != nil {
			s.logger.Warn("failed to cache genres", "kind", kind, "error", err)
		}
		s.logger.Info("genres loaded", "kind", kind, "count", len(names))
		return nil
	}

	if cached, ok := s.store.LoadGenres(kind); ok && len(cached) > 0 {
		s.index.Set(kind, cached)
		s.logger.Warn("using cached genres", "kind", kind, "count", len(cached), "error", err)
		return nil
	}

	if err == nil {
		err = domain.ErrNoResults
	}
	return fmt.Errorf("genres for %s: %w", kind, err)
}

// Index returns the shared genre index
func (s *GenreService) Index() *search.GenreIndex {
	return s.index
}

// AnimationID resolves the animation genre by name, falling back to a fixed id
func (s *GenreService) AnimationID(name string, fallback int) int {
	if id, ok := s.index.Lookup(domain.KindMovie, name); ok {
		return id
	}
	return fallback
}
