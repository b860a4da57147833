package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmcdole/releasebot/internal/domain"
)

// FinderOptions configures a Finder
type FinderOptions struct {
	PrimaryRegion  string
	FallbackRegion string
	MinVotes       int
	Location       *time.Location // Defines "today"
	Clock          func() time.Time
}

// Finder answers the date-driven discovery questions:
// today's releases, the next release day and a past calendar day.
type Finder struct {
	catalog  domain.Catalog
	enricher *Enricher
	opts     FinderOptions
	now      func() time.Time
	logger   *slog.Logger
}

// NewFinder creates a new finder
func NewFinder(catalog domain.Catalog, enricher *Enricher, opts FinderOptions, logger *slog.Logger) *Finder {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &Finder{
		catalog:  catalog,
		enricher: enricher,
		opts:     opts,
		now:      now,
		logger:   logger,
	}
}

// Today returns midnight of the current day in the configured location
func (f *Finder) Today() time.Time {
	now := f.now().In(f.opts.Location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, f.opts.Location)
}

// TodayReleases returns up to limit enriched releases of the current day,
// most popular first
func (f *Finder) TodayReleases(ctx context.Context, kind domain.MediaKind, limit int) ([]domain.Record, error) {
	candidates, region, err := f.searchWithFallback(ctx, kind, f.Today())
	if err != nil {
		return nil, err
	}
	return f.enrichTop(ctx, candidates, region, limit)
}

// NextReleases walks forward from tomorrow for up to horizonDays days and
// returns the releases of the first day that has any, together with that day.
// An exhausted horizon yields no records and a zero time.
func (f *Finder) NextReleases(ctx context.Context, kind domain.MediaKind, limit, horizonDays int) ([]domain.Record, time.Time, error) {
	if horizonDays < 0 {
		return nil, time.Time{}, domain.ErrInvalidHorizon
	}

	today := f.Today()
	for offset := 1; offset <= horizonDays; offset++ {
		if err := ctx.Err(); err != nil {
			return nil, time.Time{}, err
		}

		day := today.AddDate(0, 0, offset)
		candidates, region, err := f.searchWithFallback(ctx, kind, day)
		if err != nil {
			return nil, time.Time{}, err
		}
		if len(candidates) == 0 {
			continue
		}

		f.logger.Debug("next release day found", "kind", kind, "date", day.Format(time.DateOnly), "offset", offset)
		records, err := f.enrichTop(ctx, candidates, region, limit)
		if err != nil {
			return nil, time.Time{}, err
		}
		return records, day, nil
	}

	f.logger.Info("no releases within horizon", "kind", kind, "days", horizonDays)
	return nil, time.Time{}, nil
}

// HistoricalReleases returns up to limit releases that originally premiered
// on month/day of the given year. Neither region nor vote floor applies.
// A day that does not exist in that year (Feb 29) has no releases.
func (f *Finder) HistoricalReleases(ctx context.Context, kind domain.MediaKind, year int, month time.Month, day, limit int) ([]domain.Record, error) {
	date := time.Date(year, month, day, 0, 0, 0, 0, f.opts.Location)
	if date.Month() != month || date.Day() != day {
		return nil, nil
	}

	candidates, err := f.catalog.SearchByDate(ctx, domain.DateQuery{
		Kind: kind,
		Date: date,
		Mode: domain.DateModeOriginal,
	})
	if err != nil {
		return nil, err
	}
	return f.enrichTop(ctx, withPosters(candidates), "", limit)
}

// searchWithFallback queries the primary region and retries the fallback
// region when the primary one has nothing with a poster. Returned candidates
// all have posters; region is the one that answered.
func (f *Finder) searchWithFallback(ctx context.Context, kind domain.MediaKind, day time.Time) ([]domain.Candidate, string, error) {
	for _, region := range f.regions() {
		candidates, err := f.catalog.SearchByDate(ctx, domain.DateQuery{
			Kind:     kind,
			Date:     day,
			Region:   region,
			Mode:     domain.DateModeRelease,
			MinVotes: f.opts.MinVotes,
		})
		if err != nil {
			return nil, "", err
		}
		if candidates = withPosters(candidates); len(candidates) > 0 {
			return candidates, region, nil
		}
		f.logger.Debug("no releases in region", "kind", kind, "region", region, "date", day.Format(time.DateOnly))
	}
	return nil, "", nil
}

// regions returns the distinct regions to try, in order
func (f *Finder) regions() []string {
	regions := make([]string, 0, 2)
	if f.opts.PrimaryRegion != "" {
		regions = append(regions, f.opts.PrimaryRegion)
	}
	if f.opts.FallbackRegion != "" && f.opts.FallbackRegion != f.opts.PrimaryRegion {
		regions = append(regions, f.opts.FallbackRegion)
	}
	if len(regions) == 0 {
		regions = append(regions, "")
	}
	return regions
}

// enrichTop enriches the first limit candidates, keeping catalog order
func (f *Finder) enrichTop(ctx context.Context, candidates []domain.Candidate, region string, limit int) ([]domain.Record, error) {
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return f.enricher.EnrichAll(ctx, candidates, region)
}
