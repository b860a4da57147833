package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/releasebot/internal/adapter"
	"github.com/mmcdole/releasebot/internal/domain"
)

var fixedNow = time.Date(2024, 5, 1, 22, 30, 0, 0, time.UTC)

func newTestFinder(cat *fakeCatalog) *Finder {
	enricher := newTestEnricher(cat, &upperTranslator{})
	f := NewFinder(cat, enricher, FinderOptions{
		PrimaryRegion:  "RU",
		FallbackRegion: "US",
		MinVotes:       10,
	}, adapter.NullLogger())
	f.now = func() time.Time { return fixedNow }
	return f
}

func day(offset int) time.Time {
	return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func TestTodayReleasesFallsBackToSecondRegion(t *testing.T) {
	cat := newFakeCatalog()
	cat.byDate[dateKey(domain.KindMovie, day(0), "US")] = []domain.Candidate{candidate(20, "Second"), candidate(10, "First")}
	cat.details[20] = &domain.Details{Providers: map[string]domain.RegionOffers{
		"RU": {Flatrate: []string{"Kinopoisk"}},
		"US": {Flatrate: []string{"Max"}},
	}}
	f := newTestFinder(cat)

	records, err := f.TodayReleases(context.Background(), domain.KindMovie, 5)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, int64(20), records[0].ID, "catalog order is preserved")
	assert.Equal(t, int64(10), records[1].ID)
	assert.Equal(t, "📺 Онлайн: Max", records[0].Availability, "availability follows the answering region")

	require.Len(t, cat.dateCalls, 2)
	assert.Equal(t, "RU", cat.dateCalls[0].Region)
	assert.Equal(t, "US", cat.dateCalls[1].Region)
	assert.Equal(t, domain.DateModeRelease, cat.dateCalls[0].Mode)
	assert.Equal(t, 10, cat.dateCalls[0].MinVotes)
}

func TestTodayReleasesFallsBackWhenPrimaryHasNoPosters(t *testing.T) {
	cat := newFakeCatalog()
	cat.byDate[dateKey(domain.KindMovie, day(0), "RU")] = []domain.Candidate{posterless(1, "Bare")}
	cat.byDate[dateKey(domain.KindMovie, day(0), "US")] = []domain.Candidate{candidate(2, "B"), candidate(3, "C")}
	f := newTestFinder(cat)

	records, err := f.TodayReleases(context.Background(), domain.KindMovie, 5)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, int64(2), records[0].ID)
	assert.Equal(t, int64(3), records[1].ID)
	require.Len(t, cat.dateCalls, 2)
	assert.Equal(t, "US", cat.dateCalls[1].Region)
}

func TestTodayReleasesHonorsLimitAndPosters(t *testing.T) {
	cat := newFakeCatalog()
	cat.byDate[dateKey(domain.KindSeries, day(0), "RU")] = []domain.Candidate{
		posterless(1, "NoPoster"),
		candidate(2, "B"),
		candidate(3, "C"),
		candidate(4, "D"),
	}
	f := newTestFinder(cat)

	records, err := f.TodayReleases(context.Background(), domain.KindSeries, 2)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, int64(2), records[0].ID)
	assert.Equal(t, int64(3), records[1].ID)
	assert.Len(t, cat.dateCalls, 1, "no fallback when the primary region answers")
}

func TestTodayReleasesPropagatesCatalogFailure(t *testing.T) {
	cat := newFakeCatalog()
	cat.searchErr = domain.ErrCatalogUnavailable
	f := newTestFinder(cat)

	_, err := f.TodayReleases(context.Background(), domain.KindMovie, 5)
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
}

func TestNextReleasesWalksForward(t *testing.T) {
	cat := newFakeCatalog()
	cat.byDate[dateKey(domain.KindMovie, day(3), "US")] = []domain.Candidate{candidate(7, "Later")}
	f := newTestFinder(cat)

	records, found, err := f.NextReleases(context.Background(), domain.KindMovie, 5, 90)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, day(3), found)
	// Days 1 and 2 try both regions, day 3 finds results in the fallback
	assert.Equal(t, 6, cat.dateCallCount())
}

func TestNextReleasesSkipsPosterlessRegion(t *testing.T) {
	cat := newFakeCatalog()
	cat.byDate[dateKey(domain.KindMovie, day(1), "RU")] = []domain.Candidate{posterless(1, "Bare")}
	cat.byDate[dateKey(domain.KindMovie, day(1), "US")] = []domain.Candidate{candidate(2, "Tomorrow")}
	f := newTestFinder(cat)

	records, found, err := f.NextReleases(context.Background(), domain.KindMovie, 3, 90)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, int64(2), records[0].ID)
	assert.Equal(t, day(1), found)
	assert.Equal(t, 2, cat.dateCallCount())
}

func TestNextReleasesHorizonExhausted(t *testing.T) {
	cat := newFakeCatalog()
	f := newTestFinder(cat)

	records, found, err := f.NextReleases(context.Background(), domain.KindSeries, 5, 4)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.True(t, found.IsZero())
	assert.Equal(t, 8, cat.dateCallCount())
}

func TestNextReleasesZeroHorizonMakesNoCalls(t *testing.T) {
	cat := newFakeCatalog()
	f := newTestFinder(cat)

	records, found, err := f.NextReleases(context.Background(), domain.KindMovie, 5, 0)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.True(t, found.IsZero())
	assert.Zero(t, cat.dateCallCount())

	_, _, err = f.NextReleases(context.Background(), domain.KindMovie, 5, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidHorizon)
	assert.Zero(t, cat.dateCallCount())
}

func TestNextReleasesStopsWhenCancelled(t *testing.T) {
	cat := newFakeCatalog()
	f := newTestFinder(cat)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := f.NextReleases(ctx, domain.KindMovie, 5, 90)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, cat.dateCallCount())
}

func TestHistoricalReleasesIgnoresRegion(t *testing.T) {
	cat := newFakeCatalog()
	past := time.Date(1994, 5, 1, 0, 0, 0, 0, time.UTC)
	cat.byDate[dateKey(domain.KindMovie, past, "")] = []domain.Candidate{
		candidate(1, "A"), candidate(2, "B"), candidate(3, "C"), candidate(4, "D"),
	}
	f := newTestFinder(cat)

	records, err := f.HistoricalReleases(context.Background(), domain.KindMovie, 1994, time.May, 1, 3)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	require.Len(t, cat.dateCalls, 1)
	assert.Empty(t, cat.dateCalls[0].Region)
	assert.Equal(t, domain.DateModeOriginal, cat.dateCalls[0].Mode)
	assert.Zero(t, cat.dateCalls[0].MinVotes, "historical searches carry no vote floor")
}

func TestHistoricalReleasesMissingLeapDay(t *testing.T) {
	cat := newFakeCatalog()
	f := newTestFinder(cat)

	records, err := f.HistoricalReleases(context.Background(), domain.KindMovie, 2023, time.February, 29, 3)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Zero(t, cat.dateCallCount())
}

func TestTodayUsesConfiguredLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	f := NewFinder(newFakeCatalog(), nil, FinderOptions{Location: loc}, adapter.NullLogger())
	f.now = func() time.Time { return fixedNow } // 22:30 UTC is already the next day at UTC+3

	today := f.Today()
	assert.Equal(t, 2, today.Day())
	assert.Equal(t, time.May, today.Month())
}
