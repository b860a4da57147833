package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mmcdole/releasebot/internal/domain"
)

const (
	// AvailabilityUnknown is shown when no region has subscription or purchase offers
	AvailabilityUnknown = "Статус релиза неизвестен"

	availabilityPrefix = "📺 Онлайн: "
	maxProviders       = 2
	trailerSite        = "YouTube"
	trailerType        = "Trailer"
	trailerURLPrefix   = "https://www.youtube.com/watch?v="
	defaultEnrichLimit = 2
)

// EnricherOptions configures an Enricher
type EnricherOptions struct {
	PreferredRegion string
	FallbackRegion  string
	Concurrency     int // Parallel enrichments per batch
}

// Enricher turns raw candidates into display-ready records
type Enricher struct {
	catalog    domain.Catalog
	translator domain.Translator
	gate       *Gate // Spaces out translation calls across the whole process
	opts       EnricherOptions
	logger     *slog.Logger
}

// NewEnricher creates a new enricher. The gate is shared by every batch.
func NewEnricher(catalog domain.Catalog, translator domain.Translator, gate *Gate, opts EnricherOptions, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultEnrichLimit
	}
	return &Enricher{
		catalog:    catalog,
		translator: translator,
		gate:       gate,
		opts:       opts,
		logger:     logger,
	}
}

// Enrich fetches details for one candidate and merges trailer, availability
// and translated synopsis into a record. A details failure fails the record;
// a translation failure keeps the original text.
// Availability prefers region when set, then the configured regions.
func (e *Enricher) Enrich(ctx context.Context, c domain.Candidate, region string) (domain.Record, error) {
	details, err := e.catalog.FetchDetails(ctx, c.Kind, c.ID)
	if err != nil {
		return domain.Record{}, fmt.Errorf("details for %s %d: %w", c.Kind, c.ID, err)
	}

	rec := domain.Record{
		Candidate:    c,
		Availability: Availability(details.Providers, region, e.opts.PreferredRegion, e.opts.FallbackRegion),
		TrailerURL:   TrailerURL(details.Videos),
		PosterURL:    e.catalog.PosterURL(c.PosterPath),
	}

	source := c.Overview
	if strings.TrimSpace(source) == "" {
		source = details.Overview
	}
	rec.Overview = source
	if strings.TrimSpace(source) == "" {
		return rec, nil
	}

	if err := e.gate.Wait(ctx); err != nil {
		return domain.Record{}, err
	}
	translated, err := e.translator.Translate(ctx, source)
	switch {
	case err != nil:
		e.logger.Debug("translation degraded", "id", c.ID, "error", err)
	case strings.TrimSpace(translated) == "":
		e.logger.Debug("translation degraded", "id", c.ID, "error", "empty result")
	default:
		rec.Overview = translated
	}
	return rec, nil
}

// EnrichAll enriches candidates with bounded parallelism, preserving input
// order. Candidates without a poster are skipped and failed enrichments are
// dropped; the batch fails only when every enrichment failed.
func (e *Enricher) EnrichAll(ctx context.Context, candidates []domain.Candidate, region string) ([]domain.Record, error) {
	candidates = withPosters(candidates)
	if len(candidates) == 0 {
		return nil, nil
	}

	results := make([]domain.Record, len(candidates))
	errs := make([]error, len(candidates))

	g := new(errgroup.Group)
	g.SetLimit(e.opts.Concurrency)
	for i, c := range candidates {
		g.Go(func() error {
			results[i], errs[i] = e.Enrich(ctx, c, region)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make([]domain.Record, 0, len(candidates))
	var lastErr error
	for i, rec := range results {
		if errs[i] != nil {
			e.logger.Warn("enrichment failed, dropping candidate",
				"id", candidates[i].ID,
				"kind", candidates[i].Kind,
				"error", errs[i],
			)
			lastErr = errs[i]
			continue
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("all %d enrichments failed: %w", len(candidates), lastErr)
	}
	return records, nil
}

// TrailerURL returns the watch link of the first hosted trailer, or ""
func TrailerURL(videos []domain.Video) string {
	for _, v := range videos {
		if v.Site == trailerSite && v.Type == trailerType && v.Key != "" {
			return trailerURLPrefix + v.Key
		}
	}
	return ""
}

// Availability summarizes watch offers from the first region that has any.
// Subscription offers win over purchases; at most two names are listed.
func Availability(providers map[string]domain.RegionOffers, regions ...string) string {
	for _, region := range regions {
		if region == "" {
			continue
		}
		offers, ok := providers[strings.ToUpper(region)]
		if !ok || !offers.HasOffers() {
			continue
		}

		names := offers.Flatrate
		if len(names) == 0 {
			names = offers.Buy
		}
		names = slices.Clone(names[:min(maxProviders, len(names))])
		slices.Sort(names)
		names = slices.Compact(names)
		return availabilityPrefix + strings.Join(names, ", ")
	}
	return AvailabilityUnknown
}

// withPosters keeps only candidates that can be shown as photo cards
func withPosters(candidates []domain.Candidate) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.HasPoster() {
			out = append(out, c)
		}
	}
	return out
}
