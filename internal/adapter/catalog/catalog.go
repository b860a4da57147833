package catalog

import (
	"fmt"
	"log/slog"

	"github.com/mmcdole/releasebot/internal/adapter"
	"github.com/mmcdole/releasebot/internal/adapter/catalog/tmdb"
	"github.com/mmcdole/releasebot/internal/domain"
)

// New creates the catalog backend from configuration.
// This factory function abstracts away the specific backend implementation.
func New(cfg *adapter.TMDBConfig, logger *slog.Logger) (domain.Catalog, error) {
	if cfg == nil {
		return nil, fmt.Errorf("catalog config is nil")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: catalog API key is required", adapter.ErrMissingCredentials)
	}

	return tmdb.NewClient(tmdb.Options{
		APIKey:        cfg.APIKey,
		BaseURL:       cfg.BaseURL,
		ImageBaseURL:  cfg.ImageBaseURL,
		PosterSize:    cfg.PosterSize,
		Language:      cfg.Language,
		GenreLanguage: cfg.GenreLanguage,
		ReleaseType:   cfg.ReleaseType,
		Timeout:       cfg.Timeout,
	}, nil, logger), nil
}
