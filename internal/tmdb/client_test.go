package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchTitle_Movie(t *testing.T) {
	var gotPath, gotQuery, gotYear string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("query")
		gotYear = r.URL.Query().Get("year")
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[
			{"id":27205,"title":"Inception","release_date":"2010-07-15","overview":"A thief...","popularity":90.1},
			{"id":1,"title":"Inception: The Cobol Job","release_date":"2010-12-07"}
		]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	results, err := client.SearchTitle(context.Background(), "Inception", false, 2010, 5)
	require.NoError(t, err)

	assert.Equal(t, "/search/movie", gotPath)
	assert.Equal(t, "Inception", gotQuery)
	assert.Equal(t, "2010", gotYear)

	require.Len(t, results, 2)
	assert.Equal(t, 27205, results[0].ID)
	assert.Equal(t, "Inception", results[0].Title)
	assert.Equal(t, 2010, results[0].Year)
}

func TestSearchTitle_SeriesUsesTVEndpointAndFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/tv", r.URL.Path)
		assert.Equal(t, "1994", r.URL.Query().Get("first_air_date_year"))
		assert.Empty(t, r.URL.Query().Get("year"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[
			{"id":1668,"name":"Friends","first_air_date":"1994-09-22","overview":"Six friends"}
		]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	results, err := client.SearchTitle(context.Background(), "Friends", true, 1994, 5)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "Friends", results[0].Title)
	assert.Equal(t, "1994-09-22", results[0].ReleaseDate)
	assert.Equal(t, 1994, results[0].Year)
}

func TestFindBestMatch_PrefersExactYear(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[
			{"id":1,"title":"Dune","release_date":"1984-12-14"},
			{"id":2,"title":"Dune","release_date":"2021-09-15"}
		]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	best, err := client.FindBestMatch(context.Background(), "Dune", false, 2021)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, 2, best.ID)
}

func TestFindBestMatch_FallsBackToFirstResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[
			{"id":1,"title":"Dune","release_date":"1984-12-14"},
			{"id":2,"title":"Dune","release_date":"2021-09-15"}
		]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	best, err := client.FindBestMatch(context.Background(), "Dune", false, 0)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, 1, best.ID)
}

func TestFindBestMatch_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	best, err := client.FindBestMatch(context.Background(), "Nothing", false, 0)
	require.NoError(t, err)
	assert.Nil(t, best)
}

func TestMovieDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/27205", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id":27205,"title":"Inception","release_date":"2010-07-15",
			"overview":"A thief...","runtime":148,
			"genres":[{"id":28,"name":"Action"},{"id":878,"name":"Science Fiction"}],
			"imdb_id":"tt1375666"
		}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	details, err := client.MovieDetails(context.Background(), 27205)
	require.NoError(t, err)

	assert.Equal(t, "Inception", details.Title)
	assert.Equal(t, 148, details.Runtime)
	assert.Equal(t, 2010, details.Year)
	assert.Equal(t, []string{"Action", "Science Fiction"}, details.Genres)
	assert.Equal(t, "tt1375666", details.IMDBID)
}

func TestBearerTokenAuth(t *testing.T) {
	token := strings.Repeat("a", 60) + "." + strings.Repeat("b", 60) + "." + strings.Repeat("c", 20)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
		assert.Empty(t, r.URL.Query().Get("api_key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	client := NewClient(token, WithBaseURL(server.URL))
	_, err := client.SearchTitle(context.Background(), "Anything", false, 0, 5)
	require.NoError(t, err)
}

func TestTestAPIKey(t *testing.T) {
	status := http.StatusOK
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/configuration", r.URL.Path)
		w.WriteHeader(status)
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	require.NoError(t, client.TestAPIKey(context.Background()))

	status = http.StatusUnauthorized
	err := client.TestAPIKey(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid")
}

func TestSearchTitle_RequiresKeyAndTitle(t *testing.T) {
	client := NewClient("")
	_, err := client.SearchTitle(context.Background(), "x", false, 0, 5)
	require.Error(t, err)

	client = NewClient("key")
	_, err = client.SearchTitle(context.Background(), "  ", false, 0, 5)
	require.Error(t, err)
}
