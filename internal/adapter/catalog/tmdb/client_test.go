package tmdb

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/releasebot/internal/adapter"
	"github.com/mmcdole/releasebot/internal/domain"
)

var _ domain.Catalog = (*Client)(nil)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func respond(status int, body string) (*http.Response, error) {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}, nil
}

func newTestClient(fn roundTripFunc) *Client {
	return NewClient(Options{
		APIKey:        "secret",
		BaseURL:       "https://tmdb.test/3",
		Language:      "en-US",
		GenreLanguage: "ru-RU",
		ReleaseType:   4,
	}, &http.Client{Transport: fn}, adapter.NullLogger())
}

func TestSearchByDateMovieRegionalRelease(t *testing.T) {
	var captured url.Values
	var path string
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		path = req.URL.Path
		captured = req.URL.Query()
		return respond(http.StatusOK, `{"page":1,"total_pages":1,"results":[
			{"id":11,"title":"Dune","overview":"Sand.","poster_path":"/dune.jpg","popularity":99.5,"vote_average":8.1,"genre_ids":[878,12],"release_date":"2024-05-01"}
		]}`)
	})

	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	got, err := client.SearchByDate(context.Background(), domain.DateQuery{
		Kind: domain.KindMovie, Date: day, Region: "RU", MinVotes: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, "/3/discover/movie", path)
	assert.Equal(t, "secret", captured.Get("api_key"))
	assert.Equal(t, "2024-05-01", captured.Get("release_date.gte"))
	assert.Equal(t, "2024-05-01", captured.Get("release_date.lte"))
	assert.Equal(t, "4", captured.Get("with_release_type"))
	assert.Equal(t, "RU", captured.Get("region"))
	assert.Equal(t, "10", captured.Get("vote_count.gte"))
	assert.Equal(t, "popularity.desc", captured.Get("sort_by"))
	assert.Equal(t, "false", captured.Get("include_adult"))

	require.Len(t, got, 1)
	assert.Equal(t, domain.Candidate{
		ID: 11, Kind: domain.KindMovie, Title: "Dune", Overview: "Sand.",
		PosterPath: "/dune.jpg", Popularity: 99.5, Rating: 8.1,
		GenreIDs: []int{878, 12}, ReleaseDate: "2024-05-01",
	}, got[0])
}

func TestSearchByDateSeriesUsesFirstAirDate(t *testing.T) {
	var captured url.Values
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/3/discover/tv", req.URL.Path)
		captured = req.URL.Query()
		return respond(http.StatusOK, `{"page":1,"total_pages":1,"results":[
			{"id":7,"name":"Severance","first_air_date":"2024-05-01","vote_average":8.4}
		]}`)
	})

	got, err := client.SearchByDate(context.Background(), domain.DateQuery{
		Kind: domain.KindSeries, Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Region: "US",
	})
	require.NoError(t, err)

	assert.Equal(t, "2024-05-01", captured.Get("first_air_date.gte"))
	assert.Equal(t, "US", captured.Get("watch_region"))
	assert.Empty(t, captured.Get("with_release_type"))
	require.Len(t, got, 1)
	assert.Equal(t, "Severance", got[0].Title)
	assert.Equal(t, "2024-05-01", got[0].ReleaseDate)
	assert.False(t, got[0].HasPoster())
}

func TestSearchByDateOriginalIgnoresRegion(t *testing.T) {
	var captured url.Values
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		captured = req.URL.Query()
		return respond(http.StatusOK, `{"page":1,"total_pages":0,"results":[]}`)
	})

	got, err := client.SearchByDate(context.Background(), domain.DateQuery{
		Kind: domain.KindMovie, Date: time.Date(1994, 9, 23, 0, 0, 0, 0, time.UTC),
		Mode: domain.DateModeOriginal, Region: "RU",
	})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, "1994-09-23", captured.Get("primary_release_date.gte"))
	assert.Empty(t, captured.Get("region"))
	assert.Empty(t, captured.Get("with_release_type"))
}

func TestSearchPageEncodesFilter(t *testing.T) {
	var captured url.Values
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		captured = req.URL.Query()
		return respond(http.StatusOK, `{"page":3,"total_pages":812,"results":[{"id":1,"title":"A"}]}`)
	})

	page, err := client.SearchPage(context.Background(), domain.KindMovie, domain.Filter{
		WithGenres:    []int{28},
		WithoutGenres: []int{16},
		MinRating:     7.5,
		MinVotes:      150,
	}, 3)
	require.NoError(t, err)

	assert.Equal(t, "28", captured.Get("with_genres"))
	assert.Equal(t, "16", captured.Get("without_genres"))
	assert.Equal(t, "7.5", captured.Get("vote_average.gte"))
	assert.Equal(t, "150", captured.Get("vote_count.gte"))
	assert.Equal(t, "3", captured.Get("page"))
	assert.Equal(t, 812, page.TotalPages)
	assert.Len(t, page.Results, 1)
}

func TestFetchDetailsMapsVideosAndProviders(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/3/tv/42", req.URL.Path)
		assert.Equal(t, "videos,watch/providers", req.URL.Query().Get("append_to_response"))
		return respond(http.StatusOK, `{
			"id":42,"overview":"Long text",
			"videos":{"results":[{"key":"abc","site":"YouTube","type":"Trailer"}]},
			"watch/providers":{"results":{"US":{"flatrate":[{"provider_name":"Netflix"}],"buy":[{"provider_name":"Apple TV"}]}}}
		}`)
	})

	d, err := client.FetchDetails(context.Background(), domain.KindSeries, 42)
	require.NoError(t, err)
	assert.Equal(t, "Long text", d.Overview)
	assert.Equal(t, []domain.Video{{Key: "abc", Site: "YouTube", Type: "Trailer"}}, d.Videos)
	assert.Equal(t, []string{"Netflix"}, d.Providers["US"].Flatrate)
	assert.Equal(t, []string{"Apple TV"}, d.Providers["US"].Buy)
}

func TestFetchGenresUsesGenreLanguage(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/3/genre/movie/list", req.URL.Path)
		assert.Equal(t, "ru-RU", req.URL.Query().Get("language"))
		return respond(http.StatusOK, `{"genres":[{"id":28,"name":"боевик"},{"id":16,"name":"мультфильм"}]}`)
	})

	genres, err := client.FetchGenres(context.Background(), domain.KindMovie)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{28: "боевик", 16: "мультфильм"}, genres)
}

func TestCatalogFailuresAreUnavailable(t *testing.T) {
	cases := map[string]roundTripFunc{
		"server error": func(*http.Request) (*http.Response, error) {
			return respond(http.StatusInternalServerError, `{"status_message":"boom"}`)
		},
		"unauthorized": func(*http.Request) (*http.Response, error) {
			return respond(http.StatusUnauthorized, `{"status_code":7,"status_message":"Invalid API key"}`)
		},
		"transport": func(*http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		},
		"bad json": func(*http.Request) (*http.Response, error) {
			return respond(http.StatusOK, `{"results":`)
		},
	}

	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			calls := 0
			client := newTestClient(func(req *http.Request) (*http.Response, error) {
				calls++
				return fn(req)
			})
			_, err := client.FetchGenres(context.Background(), domain.KindSeries)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
			assert.Equal(t, 1, calls, "catalog requests are not retried")
		})
	}
}

func TestPosterURL(t *testing.T) {
	client := newTestClient(nil)
	assert.Equal(t, "https://image.tmdb.org/t/p/w780/abc.jpg", client.PosterURL("/abc.jpg"))
	assert.Equal(t, "https://image.tmdb.org/t/p/w780/abc.jpg", client.PosterURL("abc.jpg"))
	assert.Empty(t, client.PosterURL(""))
}
