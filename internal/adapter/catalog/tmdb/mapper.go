package tmdb

import (
	"strings"

	"github.com/mmcdole/releasebot/internal/domain"
)

// MapCandidates converts discover results to domain candidates
func MapCandidates(items []DiscoverItem, kind domain.MediaKind) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(items))
	for _, it := range items {
		out = append(out, mapCandidate(it, kind))
	}
	return out
}

func mapCandidate(it DiscoverItem, kind domain.MediaKind) domain.Candidate {
	c := domain.Candidate{
		ID:          it.ID,
		Kind:        kind,
		Title:       it.Title,
		Overview:    it.Overview,
		PosterPath:  it.PosterPath,
		Popularity:  it.Popularity,
		Rating:      it.VoteAverage,
		GenreIDs:    append([]int(nil), it.GenreIDs...),
		ReleaseDate: it.ReleaseDate,
	}
	if kind == domain.KindSeries {
		c.Title = it.Name
		c.ReleaseDate = it.FirstAirDate
	}
	// Some entries only carry one of the two fields
	if c.Title == "" {
		c.Title = firstNonEmpty(it.Title, it.Name)
	}
	return c
}

// MapDetails converts a details response to domain details
func MapDetails(resp DetailsResponse) *domain.Details {
	d := &domain.Details{
		Overview:  resp.Overview,
		Videos:    make([]domain.Video, 0, len(resp.Videos.Results)),
		Providers: make(map[string]domain.RegionOffers, len(resp.WatchProviders.Results)),
	}
	for _, v := range resp.Videos.Results {
		d.Videos = append(d.Videos, domain.Video{Key: v.Key, Site: v.Site, Type: v.Type})
	}
	for region, rp := range resp.WatchProviders.Results {
		d.Providers[strings.ToUpper(region)] = domain.RegionOffers{
			Flatrate: providerNames(rp.Flatrate),
			Buy:      providerNames(rp.Buy),
			Rent:     providerNames(rp.Rent),
		}
	}
	return d
}

// MapGenres converts a genre list to an id -> name map
func MapGenres(genres []Genre) map[int]string {
	out := make(map[int]string, len(genres))
	for _, g := range genres {
		if g.Name == "" {
			continue
		}
		out[g.ID] = g.Name
	}
	return out
}

func providerNames(ps []Provider) []string {
	if len(ps) == 0 {
		return nil
	}
	names := make([]string, 0, len(ps))
	for _, p := range ps {
		if p.ProviderName != "" {
			names = append(names, p.ProviderName)
		}
	}
	return names
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
