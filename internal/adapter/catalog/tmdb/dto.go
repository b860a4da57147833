package tmdb

// DiscoverResponse represents a page of /discover results
type DiscoverResponse struct {
	Page         int            `json:"page"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
	Results      []DiscoverItem `json:"results"`
}

// DiscoverItem is a single movie or TV show in a discover page.
// Movies carry title/release_date, shows carry name/first_air_date.
type DiscoverItem struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title,omitempty"`
	Name         string  `json:"name,omitempty"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	Popularity   float64 `json:"popularity"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	GenreIDs     []int   `json:"genre_ids"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	FirstAirDate string  `json:"first_air_date,omitempty"`
}

// DetailsResponse represents /movie/{id} or /tv/{id} with videos and
// watch providers appended
type DetailsResponse struct {
	ID             int64          `json:"id"`
	Overview       string         `json:"overview"`
	Videos         VideosResponse `json:"videos"`
	WatchProviders WatchProviders `json:"watch/providers"`
}

// VideosResponse wraps the appended video list
type VideosResponse struct {
	Results []VideoItem `json:"results"`
}

// VideoItem is a single trailer, teaser or clip
type VideoItem struct {
	Key  string `json:"key"`
	Site string `json:"site"`
	Type string `json:"type"`
	Name string `json:"name"`
}

// WatchProviders wraps the per-region provider listing
type WatchProviders struct {
	Results map[string]RegionProviders `json:"results"`
}

// RegionProviders lists providers per offer type in one region
type RegionProviders struct {
	Link     string     `json:"link,omitempty"`
	Flatrate []Provider `json:"flatrate,omitempty"`
	Buy      []Provider `json:"buy,omitempty"`
	Rent     []Provider `json:"rent,omitempty"`
}

// Provider is a single streaming or purchase service
type Provider struct {
	ProviderID   int    `json:"provider_id"`
	ProviderName string `json:"provider_name"`
}

// GenreListResponse represents /genre/{movie|tv}/list
type GenreListResponse struct {
	Genres []Genre `json:"genres"`
}

// Genre is a single taxonomy entry
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ErrorResponse is the body TMDB returns on failures
type ErrorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Success       bool   `json:"success"`
}
