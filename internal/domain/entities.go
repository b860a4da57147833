package domain

import (
	"strings"
	"time"
)

// MediaKind distinguishes catalog content types
type MediaKind string

const (
	KindMovie  MediaKind = "movie"
	KindSeries MediaKind = "series"
)

// Kinds lists every supported media kind in display order
var Kinds = []MediaKind{KindMovie, KindSeries}

// ParseMediaKind converts a token segment into a MediaKind
func ParseMediaKind(s string) (MediaKind, bool) {
	switch MediaKind(s) {
	case KindMovie:
		return KindMovie, true
	case KindSeries:
		return KindSeries, true
	default:
		return "", false
	}
}

// Candidate is a raw search hit from the catalog, before enrichment.
// Produced by the catalog adapter and never modified afterwards.
type Candidate struct {
	ID          int64     `json:"id"`
	Kind        MediaKind `json:"kind"`
	Title       string    `json:"title"`
	Overview    string    `json:"overview"`              // Original-language synopsis
	PosterPath  string    `json:"poster_path,omitempty"` // Empty when the catalog has no poster
	Popularity  float64   `json:"popularity"`
	Rating      float64   `json:"rating"` // Average vote, 0-10
	GenreIDs    []int     `json:"genre_ids,omitempty"`
	ReleaseDate string    `json:"release_date,omitempty"` // YYYY-MM-DD (release or first-air date)
}

// HasPoster reports whether the candidate can be shown as a photo card
func (c Candidate) HasPoster() bool {
	return strings.TrimSpace(c.PosterPath) != ""
}

// Record is a candidate merged with details, availability and translated text.
// Overview holds the translated synopsis (or the original when translation failed).
type Record struct {
	Candidate
	Availability string `json:"availability"`
	TrailerURL   string `json:"trailer_url,omitempty"`
	PosterURL    string `json:"poster_url"`
}

// Video is a single entry of an item's video extras
type Video struct {
	Key  string
	Site string // Hosting platform, e.g. "YouTube"
	Type string // "Trailer", "Teaser", "Clip", ...
}

// RegionOffers lists provider names per offer type for one region, in catalog order
type RegionOffers struct {
	Flatrate []string
	Buy      []string
	Rent     []string
}

// HasOffers reports whether the region has any subscription or purchase offers
func (o RegionOffers) HasOffers() bool {
	return len(o.Flatrate) > 0 || len(o.Buy) > 0
}

// Details holds the secondary data fetched for a single catalog item
type Details struct {
	Overview  string
	Videos    []Video
	Providers map[string]RegionOffers // Keyed by ISO 3166-1 region code
}

// ResultList is an immutable, ordered set of records backing one paginated card.
// Only the viewed position changes, and that lives in the action tokens.
type ResultList struct {
	ID        string    `json:"id"`
	Caption   string    `json:"caption"` // Card title prefix shared by every page
	Items     []Record  `json:"items"`
	CreatedAt time.Time `json:"created_at"`
}

// Len returns the number of pages in the list
func (l ResultList) Len() int {
	return len(l.Items)
}

// GenreTaxonomy maps genre ids to localized names for one media kind,
// together with the inverse (lowercased name -> id) lookup.
type GenreTaxonomy struct {
	Kind   MediaKind
	names  map[int]string
	byName map[string]int
}

// NewGenreTaxonomy builds a taxonomy and its inverse index
func NewGenreTaxonomy(kind MediaKind, names map[int]string) *GenreTaxonomy {
	t := &GenreTaxonomy{
		Kind:   kind,
		names:  make(map[int]string, len(names)),
		byName: make(map[string]int, len(names)),
	}
	for id, name := range names {
		t.names[id] = name
		t.byName[strings.ToLower(strings.TrimSpace(name))] = id
	}
	return t
}

// Name returns the localized display name of a genre id
func (t *GenreTaxonomy) Name(id int) (string, bool) {
	if t == nil {
		return "", false
	}
	name, ok := t.names[id]
	return name, ok
}

// ID returns the genre id for a display name, case-insensitively
func (t *GenreTaxonomy) ID(name string) (int, bool) {
	if t == nil {
		return 0, false
	}
	id, ok := t.byName[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}

// Names returns a copy of the id -> name mapping
func (t *GenreTaxonomy) Names() map[int]string {
	out := make(map[int]string, t.Len())
	if t == nil {
		return out
	}
	for id, name := range t.names {
		out[id] = name
	}
	return out
}

// Len returns the number of genres
func (t *GenreTaxonomy) Len() int {
	if t == nil {
		return 0
	}
	return len(t.names)
}

// DateMode selects which date field a catalog date search filters on
type DateMode int

const (
	// DateModeRelease matches regional releases (digital releases for movies,
	// first-air date with a watch region for series).
	DateModeRelease DateMode = iota
	// DateModeOriginal matches the original premiere date and ignores regions.
	DateModeOriginal
)

// DateQuery describes a single-day catalog search
type DateQuery struct {
	Kind     MediaKind
	Date     time.Time
	Region   string // Empty for region-independent searches
	Mode     DateMode
	MinVotes int
}

// Filter narrows a paged catalog search used for random picks
type Filter struct {
	WithGenres      []int
	WithoutGenres   []int
	WithKeywords    []int
	WithoutKeywords []int
	MinRating       float64
	MinVotes        int
}

// Page is one page of a paged catalog search
type Page struct {
	Number     int
	TotalPages int
	Results    []Candidate
}
