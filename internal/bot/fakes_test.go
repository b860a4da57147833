package bot

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mmcdole/releasebot/internal/adapter"
	"github.com/mmcdole/releasebot/internal/adapter/translate"
	"github.com/mmcdole/releasebot/internal/card"
	"github.com/mmcdole/releasebot/internal/domain"
	"github.com/mmcdole/releasebot/internal/search"
	"github.com/mmcdole/releasebot/internal/service"
	"github.com/mmcdole/releasebot/internal/store"
)

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

type fakeCatalog struct {
	mu sync.Mutex

	byDate     map[string][]domain.Candidate
	pages      map[int][]domain.Candidate
	totalPages int
	searchErr  error
	genres     map[domain.MediaKind]map[int]string
	genresErr  error

	filters []domain.Filter
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		byDate: make(map[string][]domain.Candidate),
		pages:  make(map[int][]domain.Candidate),
		genres: map[domain.MediaKind]map[int]string{
			domain.KindMovie:  {28: "боевик", 35: "комедия", 16: "мультфильм"},
			domain.KindSeries: {18: "драма"},
		},
	}
}

func dateKey(kind domain.MediaKind, day time.Time, region string) string {
	return fmt.Sprintf("%s|%s|%s", kind, day.Format(time.DateOnly), region)
}

func (f *fakeCatalog) SearchByDate(_ context.Context, q domain.DateQuery) ([]domain.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.byDate[dateKey(q.Kind, q.Date, q.Region)], nil
}

func (f *fakeCatalog) SearchPage(_ context.Context, _ domain.MediaKind, filter domain.Filter, page int) (domain.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
	if f.searchErr != nil {
		return domain.Page{}, f.searchErr
	}
	return domain.Page{Number: page, TotalPages: f.totalPages, Results: f.pages[page]}, nil
}

func (f *fakeCatalog) FetchDetails(context.Context, domain.MediaKind, int64) (*domain.Details, error) {
	return &domain.Details{
		Providers: map[string]domain.RegionOffers{"US": {Flatrate: []string{"Netflix"}}},
	}, nil
}

func (f *fakeCatalog) FetchGenres(_ context.Context, kind domain.MediaKind) (map[int]string, error) {
	if f.genresErr != nil {
		return nil, f.genresErr
	}
	return f.genres[kind], nil
}

func (f *fakeCatalog) PosterURL(path string) string {
	return "https://img.test/w780" + path
}

func (f *fakeCatalog) pageCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.filters)
}

func movie(id int64, title string) domain.Candidate {
	return domain.Candidate{
		ID:         id,
		Kind:       domain.KindMovie,
		Title:      title,
		Overview:   "about " + title,
		PosterPath: fmt.Sprintf("/%d.jpg", id),
		Rating:     7.5,
		GenreIDs:   []int{28},
	}
}

// shown is one delivery recorded by recorder
type shown struct {
	Text     string
	Controls card.Controls
	Card     *card.Card
}

// recorder is a Presenter that remembers what it was asked to show
type recorder struct {
	mu    sync.Mutex
	items []shown
}

func (r *recorder) ShowText(_ context.Context, text string, controls card.Controls) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, shown{Text: text, Controls: controls})
	return nil
}

func (r *recorder) ShowCard(_ context.Context, c card.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, shown{Text: c.Text, Controls: c.Controls, Card: &c})
	return nil
}

func (r *recorder) all() []shown {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]shown(nil), r.items...)
}

func (r *recorder) last(t *testing.T) shown {
	t.Helper()
	items := r.all()
	require.NotEmpty(t, items)
	return items[len(items)-1]
}

type fixture struct {
	cat   *fakeCatalog
	store *store.State
	h     *Handler
}

func newFixture(t *testing.T, cat *fakeCatalog) *fixture {
	t.Helper()
	logger := adapter.NullLogger()

	st, err := store.Open(store.Options{Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	enricher := service.NewEnricher(cat, translate.Noop{}, nil, service.EnricherOptions{
		PreferredRegion: "RU",
		FallbackRegion:  "US",
	}, logger)
	finder := service.NewFinder(cat, enricher, service.FinderOptions{
		PrimaryRegion:  "RU",
		FallbackRegion: "US",
		Clock:          func() time.Time { return fixedNow },
	}, logger)
	picker := service.NewRandomPicker(cat, service.RandomOptions{AnimeKeywordID: 210024}, rand.NewPCG(7, 11), logger)
	genres := service.NewGenreService(cat, st, search.NewGenreIndex(logger), logger)
	_ = genres.Load(context.Background())

	h := NewHandler(finder, picker, enricher, genres, st, Options{
		TodayLimit:         5,
		NextLimit:          5,
		HistoryLimit:       3,
		HorizonDays:        3,
		MovieGenres:        []string{"Боевик", "комедия", "вестерн"},
		SeriesGenres:       []string{"Драма"},
		AnimationGenreName: "мультфильм",
		AnimationGenreID:   16,
	}, logger)

	return &fixture{cat: cat, store: st, h: h}
}
