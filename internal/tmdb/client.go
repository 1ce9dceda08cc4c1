package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/subworks/subflow/pkg/log"
)

const defaultBaseURL = "https://api.themoviedb.org/3"

// Client queries The Movie Database. It accepts either a v3 API key or
// a v4 bearer token; the two are distinguished by shape (bearer tokens
// are long JWTs with two dot separators).
type Client struct {
	apiKey        string
	baseURL       string
	isBearerToken bool
	httpClient    *http.Client
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:        apiKey,
		baseURL:       defaultBaseURL,
		isBearerToken: looksLikeBearerToken(apiKey),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func looksLikeBearerToken(apiKey string) bool {
	return strings.Count(apiKey, ".") == 2 && len(apiKey) > 100
}

// SearchTitle searches for a movie or TV series by title. A year of 0
// searches without a year filter; TV searches filter on first air date.
func (c *Client) SearchTitle(ctx context.Context, title string, isSeries bool, year, limit int) ([]Result, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("TMDB API key not provided")
	}
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("title is empty")
	}

	params := url.Values{}
	params.Set("query", strings.TrimSpace(title))
	params.Set("language", "en-US")
	params.Set("include_adult", "false")
	if year >= 1900 && year <= 2030 {
		if isSeries {
			params.Set("first_air_date_year", strconv.Itoa(year))
		} else {
			params.Set("year", strconv.Itoa(year))
		}
	} else if year != 0 {
		log.Warn("Ignoring out-of-range year %d for query %q", year, title)
	}

	endpoint := "/search/movie"
	if isSeries {
		endpoint = "/search/tv"
	}

	var resp searchResponse
	if err := c.get(ctx, endpoint, params, &resp); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > len(resp.Results) {
		limit = len(resp.Results)
	}

	ret := make([]Result, 0, limit)
	for _, item := range resp.Results[:limit] {
		result := Result{
			ID:          item.ID,
			Title:       item.Title,
			ReleaseDate: item.ReleaseDate,
			Overview:    item.Overview,
			PosterPath:  item.PosterPath,
			VoteAverage: item.VoteAverage,
			Popularity:  item.Popularity,
		}
		if isSeries {
			result.Title = item.Name
			result.ReleaseDate = item.FirstAirDate
		}
		result.Year = yearFromDate(result.ReleaseDate)
		ret = append(ret, result)
	}
	return ret, nil
}

// FindBestMatch returns the result whose release year matches exactly
// when a year is known, otherwise the first (most relevant) result.
// Returns nil when nothing matched.
func (c *Client) FindBestMatch(ctx context.Context, title string, isSeries bool, year int) (*Result, error) {
	results, err := c.SearchTitle(ctx, title, isSeries, year, 10)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	if year != 0 {
		for i := range results {
			if results[i].Year == year {
				return &results[i], nil
			}
		}
	}
	return &results[0], nil
}

// MovieDetails fetches the detailed record for a movie ID.
func (c *Client) MovieDetails(ctx context.Context, movieID int) (*Details, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("TMDB API key not provided")
	}

	params := url.Values{}
	params.Set("language", "en-US")

	var resp detailsResponse
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", movieID), params, &resp); err != nil {
		return nil, err
	}

	details := &Details{
		ID:            resp.ID,
		Title:         resp.Title,
		OriginalTitle: resp.OriginalTitle,
		ReleaseDate:   resp.ReleaseDate,
		Year:          yearFromDate(resp.ReleaseDate),
		Overview:      resp.Overview,
		Runtime:       resp.Runtime,
		VoteAverage:   resp.VoteAverage,
		VoteCount:     resp.VoteCount,
		Popularity:    resp.Popularity,
		PosterPath:    resp.PosterPath,
		BackdropPath:  resp.BackdropPath,
		IMDBID:        resp.IMDBID,
		Tagline:       resp.Tagline,
		Status:        resp.Status,
	}
	for _, genre := range resp.Genres {
		details.Genres = append(details.Genres, genre.Name)
	}
	return details, nil
}

// TestAPIKey validates the configured key against the configuration
// endpoint.
func (c *Client) TestAPIKey(ctx context.Context) error {
	if c.apiKey == "" {
		return fmt.Errorf("TMDB API key not provided")
	}

	req, err := c.newRequest(ctx, "/configuration", url.Values{})
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach TMDB: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return fmt.Errorf("TMDB API key is invalid")
	default:
		return fmt.Errorf("TMDB API returned status %d", resp.StatusCode)
	}
}

func (c *Client) newRequest(ctx context.Context, endpoint string, params url.Values) (*http.Request, error) {
	if !c.isBearerToken {
		params.Set("api_key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build TMDB request: %w", err)
	}
	if c.isBearerToken {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	req, err := c.newRequest(ctx, endpoint, params)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("TMDB request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("TMDB returned status %d for %s", resp.StatusCode, endpoint)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse TMDB response: %w", err)
	}
	return nil
}

func yearFromDate(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
