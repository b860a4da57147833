package service

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/mmcdole/releasebot/internal/domain"
)

// DefaultPageCap is the deepest page the catalog serves
const DefaultPageCap = 500

// RandomOptions configures a RandomPicker
type RandomOptions struct {
	PageCap        int
	MinRating      float64
	MinVotes       int
	AnimeKeywordID int
}

// RandomPicker samples a single title matching a filter. Sampling a random
// page and then a random item on it avoids the catalog's popularity bias.
type RandomPicker struct {
	catalog domain.Catalog
	opts    RandomOptions
	logger  *slog.Logger

	mu  sync.Mutex // Protects rnd
	rnd *rand.Rand
}

// NewRandomPicker creates a picker. A nil src seeds from the clock.
func NewRandomPicker(catalog domain.Catalog, opts RandomOptions, src rand.Source, logger *slog.Logger) *RandomPicker {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.PageCap <= 0 {
		opts.PageCap = DefaultPageCap
	}
	if src == nil {
		seed := uint64(time.Now().UnixNano())
		src = rand.NewPCG(seed, seed>>1|1)
	}
	return &RandomPicker{
		catalog: catalog,
		opts:    opts,
		logger:  logger,
		rnd:     rand.New(src),
	}
}

// Filter builds the search filter for a random action.
// animationID is the genre id of animation in the catalog taxonomy.
func (p *RandomPicker) Filter(a domain.Action, animationID int) domain.Filter {
	f := domain.Filter{
		MinRating: p.opts.MinRating,
		MinVotes:  p.opts.MinVotes,
	}
	switch a.Selector {
	case domain.SelectCartoon:
		f.WithGenres = []int{animationID}
		if p.opts.AnimeKeywordID > 0 {
			f.WithoutKeywords = []int{p.opts.AnimeKeywordID}
		}
	case domain.SelectAnime:
		f.WithGenres = []int{animationID}
		if p.opts.AnimeKeywordID > 0 {
			f.WithKeywords = []int{p.opts.AnimeKeywordID}
		}
	default:
		f.WithGenres = []int{a.GenreID}
		// Movie genres exclude cartoons, which have their own chooser entry
		if a.Kind == domain.KindMovie && a.GenreID != animationID {
			f.WithoutGenres = []int{animationID}
		}
	}
	return f
}

// Pick returns one uniformly sampled title with a poster, or ok == false
// when the sampled page has nothing to show. A filter that matches nothing
// at all fails with domain.ErrNoResults.
func (p *RandomPicker) Pick(ctx context.Context, kind domain.MediaKind, f domain.Filter) (domain.Candidate, bool, error) {
	first, err := p.catalog.SearchPage(ctx, kind, f, 1)
	if err != nil {
		return domain.Candidate{}, false, err
	}

	pages := min(first.TotalPages, p.opts.PageCap)
	if pages <= 0 {
		return domain.Candidate{}, false, domain.ErrNoResults
	}

	page := first
	if n := 1 + p.intN(pages); n != 1 {
		page, err = p.catalog.SearchPage(ctx, kind, f, n)
		if err != nil {
			return domain.Candidate{}, false, err
		}
	}

	candidates := withPosters(page.Results)
	if len(candidates) == 0 {
		p.logger.Debug("random page had no posters", "kind", kind, "page", page.Number)
		return domain.Candidate{}, false, nil
	}
	return candidates[p.intN(len(candidates))], true, nil
}

func (p *RandomPicker) intN(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rnd.IntN(n)
}
