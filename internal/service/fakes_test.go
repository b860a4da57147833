package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/releasebot/internal/domain"
)

// fakeCatalog serves canned results keyed by query
type fakeCatalog struct {
	mu sync.Mutex

	byDate     map[string][]domain.Candidate // dateKey(kind, date, region)
	searchErr  error
	pages      map[int][]domain.Candidate
	totalPages int
	details    map[int64]*domain.Details
	detailErrs map[int64]error
	genres     map[domain.MediaKind]map[int]string
	genresErr  error

	dateCalls   []domain.DateQuery
	pageCalls   []int
	detailCalls int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		byDate:     make(map[string][]domain.Candidate),
		pages:      make(map[int][]domain.Candidate),
		details:    make(map[int64]*domain.Details),
		detailErrs: make(map[int64]error),
		genres:     make(map[domain.MediaKind]map[int]string),
	}
}

func dateKey(kind domain.MediaKind, day time.Time, region string) string {
	return fmt.Sprintf("%s|%s|%s", kind, day.Format(time.DateOnly), region)
}

func (f *fakeCatalog) SearchByDate(_ context.Context, q domain.DateQuery) ([]domain.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dateCalls = append(f.dateCalls, q)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.byDate[dateKey(q.Kind, q.Date, q.Region)], nil
}

func (f *fakeCatalog) SearchPage(_ context.Context, _ domain.MediaKind, _ domain.Filter, page int) (domain.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageCalls = append(f.pageCalls, page)
	if f.searchErr != nil {
		return domain.Page{}, f.searchErr
	}
	return domain.Page{Number: page, TotalPages: f.totalPages, Results: f.pages[page]}, nil
}

func (f *fakeCatalog) FetchDetails(_ context.Context, _ domain.MediaKind, id int64) (*domain.Details, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls++
	if err := f.detailErrs[id]; err != nil {
		return nil, err
	}
	if d, ok := f.details[id]; ok {
		return d, nil
	}
	return &domain.Details{}, nil
}

func (f *fakeCatalog) FetchGenres(_ context.Context, kind domain.MediaKind) (map[int]string, error) {
	if f.genresErr != nil {
		return nil, f.genresErr
	}
	return f.genres[kind], nil
}

func (f *fakeCatalog) PosterURL(path string) string {
	if path == "" {
		return ""
	}
	return "https://img.test/w780" + path
}

func (f *fakeCatalog) dateCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.dateCalls)
}

// upperTranslator "translates" by upper-casing
type upperTranslator struct {
	mu    sync.Mutex
	fail  bool
	calls int
}

func (t *upperTranslator) Translate(_ context.Context, text string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	if t.fail {
		return "", errors.New("translate: 429")
	}
	return strings.ToUpper(text), nil
}

func candidate(id int64, title string) domain.Candidate {
	return domain.Candidate{
		ID:         id,
		Kind:       domain.KindMovie,
		Title:      title,
		Overview:   "about " + title,
		PosterPath: fmt.Sprintf("/%d.jpg", id),
		Rating:     7.1,
	}
}

func posterless(id int64, title string) domain.Candidate {
	c := candidate(id, title)
	c.PosterPath = ""
	return c
}
