package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/releasebot/internal/domain"
)

const (
	defaultTimeout    = 20 * time.Second
	defaultBaseURL    = "https://api.themoviedb.org/3"
	defaultImageURL   = "https://image.tmdb.org/t/p"
	defaultPosterSize = "w780"
	dateLayout        = "2006-01-02"
	sortByPopularity  = "popularity.desc"
	appendDetails     = "videos,watch/providers"
)

// Options configures a TMDB client
type Options struct {
	APIKey        string
	BaseURL       string
	ImageBaseURL  string
	PosterSize    string
	Language      string // Search result language
	GenreLanguage string // Genre taxonomy language
	ReleaseType   int    // Movie release type filter for regional date searches
	Timeout       time.Duration
}

// Client implements domain.Catalog against the TMDB v3 API.
// Requests are made once; any transport failure or non-2xx status
// surfaces as domain.ErrCatalogUnavailable.
type Client struct {
	opts       Options
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new TMDB API client. A nil httpClient gets a default one.
func NewClient(opts Options, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.ImageBaseURL == "" {
		opts.ImageBaseURL = defaultImageURL
	}
	if opts.PosterSize == "" {
		opts.PosterSize = defaultPosterSize
	}
	if opts.GenreLanguage == "" {
		opts.GenreLanguage = opts.Language
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	opts.ImageBaseURL = strings.TrimRight(opts.ImageBaseURL, "/")

	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		opts:       opts,
		httpClient: httpClient,
		logger:     logger,
	}
}

// pathType maps a media kind to the TMDB path segment
func pathType(kind domain.MediaKind) string {
	if kind == domain.KindSeries {
		return "tv"
	}
	return "movie"
}

// doRequest performs a GET against the TMDB API and returns the raw body
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.opts.APIKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.opts.BaseURL, path, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("tmdb request", "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Error("tmdb request failed", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCatalogUnavailable, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrCatalogUnavailable, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr ErrorResponse
		_ = json.Unmarshal(body, &apiErr)
		c.logger.Error("tmdb request error",
			"status", resp.StatusCode,
			"path", path,
			"message", apiErr.StatusMessage,
		)
		return nil, fmt.Errorf("%w: %s: status %d", domain.ErrCatalogUnavailable, path, resp.StatusCode)
	}

	return body, nil
}

// getJSON performs a request and decodes the body into out
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.doRequest(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: failed to parse %s: %v", domain.ErrCatalogUnavailable, path, err)
	}
	return nil
}

// SearchByDate returns the first page of titles released on q.Date, most popular first
func (c *Client) SearchByDate(ctx context.Context, q domain.DateQuery) ([]domain.Candidate, error) {
	day := q.Date.Format(dateLayout)

	query := url.Values{}
	query.Set("language", c.opts.Language)
	query.Set("sort_by", sortByPopularity)
	query.Set("include_adult", "false")
	query.Set("page", "1")
	if q.MinVotes > 0 {
		query.Set("vote_count.gte", strconv.Itoa(q.MinVotes))
	}

	switch {
	case q.Kind == domain.KindSeries:
		query.Set("first_air_date.gte", day)
		query.Set("first_air_date.lte", day)
		if q.Mode == domain.DateModeRelease && q.Region != "" {
			query.Set("watch_region", q.Region)
		}
	case q.Mode == domain.DateModeOriginal:
		query.Set("primary_release_date.gte", day)
		query.Set("primary_release_date.lte", day)
	default:
		query.Set("release_date.gte", day)
		query.Set("release_date.lte", day)
		if c.opts.ReleaseType > 0 {
			query.Set("with_release_type", strconv.Itoa(c.opts.ReleaseType))
		}
		if q.Region != "" {
			query.Set("region", q.Region)
		}
	}

	var resp DiscoverResponse
	if err := c.getJSON(ctx, "/discover/"+pathType(q.Kind), query, &resp); err != nil {
		return nil, err
	}
	return MapCandidates(resp.Results, q.Kind), nil
}

// SearchPage returns one page of a filtered discover search
func (c *Client) SearchPage(ctx context.Context, kind domain.MediaKind, f domain.Filter, page int) (domain.Page, error) {
	if page < 1 {
		page = 1
	}

	query := url.Values{}
	query.Set("language", c.opts.Language)
	query.Set("sort_by", sortByPopularity)
	query.Set("include_adult", "false")
	query.Set("page", strconv.Itoa(page))
	setIDs(query, "with_genres", f.WithGenres)
	setIDs(query, "without_genres", f.WithoutGenres)
	setIDs(query, "with_keywords", f.WithKeywords)
	setIDs(query, "without_keywords", f.WithoutKeywords)
	if f.MinRating > 0 {
		query.Set("vote_average.gte", strconv.FormatFloat(f.MinRating, 'f', -1, 64))
	}
	if f.MinVotes > 0 {
		query.Set("vote_count.gte", strconv.Itoa(f.MinVotes))
	}

	var resp DiscoverResponse
	if err := c.getJSON(ctx, "/discover/"+pathType(kind), query, &resp); err != nil {
		return domain.Page{}, err
	}
	return domain.Page{
		Number:     resp.Page,
		TotalPages: resp.TotalPages,
		Results:    MapCandidates(resp.Results, kind),
	}, nil
}

// FetchDetails returns synopsis, videos and watch providers for one title
func (c *Client) FetchDetails(ctx context.Context, kind domain.MediaKind, id int64) (*domain.Details, error) {
	query := url.Values{}
	query.Set("language", c.opts.Language)
	query.Set("append_to_response", appendDetails)

	path := fmt.Sprintf("/%s/%d", pathType(kind), id)
	var resp DetailsResponse
	if err := c.getJSON(ctx, path, query, &resp); err != nil {
		return nil, err
	}
	return MapDetails(resp), nil
}

// FetchGenres returns the localized genre taxonomy for a media kind
func (c *Client) FetchGenres(ctx context.Context, kind domain.MediaKind) (map[int]string, error) {
	query := url.Values{}
	query.Set("language", c.opts.GenreLanguage)

	var resp GenreListResponse
	if err := c.getJSON(ctx, "/genre/"+pathType(kind)+"/list", query, &resp); err != nil {
		return nil, err
	}
	return MapGenres(resp.Genres), nil
}

// PosterURL resolves a poster path at the configured size
func (c *Client) PosterURL(posterPath string) string {
	posterPath = strings.TrimSpace(posterPath)
	if posterPath == "" {
		return ""
	}
	if !strings.HasPrefix(posterPath, "/") {
		posterPath = "/" + posterPath
	}
	return c.opts.ImageBaseURL + "/" + c.opts.PosterSize + posterPath
}

func setIDs(query url.Values, key string, ids []int) {
	if len(ids) == 0 {
		return
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	query.Set(key, strings.Join(parts, ","))
}
