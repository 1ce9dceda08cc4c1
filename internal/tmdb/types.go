package tmdb

// Result is one search hit, normalized across the movie and TV
// endpoints (TV responses use name/first_air_date instead of
// title/release_date).
type Result struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	Year        int     `json:"year"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	Popularity  float64 `json:"popularity"`
}

// Details is the detailed record for a single movie.
type Details struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	OriginalTitle string   `json:"original_title"`
	ReleaseDate   string   `json:"release_date"`
	Year          int      `json:"year"`
	Overview      string   `json:"overview"`
	Runtime       int      `json:"runtime"`
	Genres        []string `json:"genres"`
	VoteAverage   float64  `json:"vote_average"`
	VoteCount     int      `json:"vote_count"`
	Popularity    float64  `json:"popularity"`
	PosterPath    string   `json:"poster_path"`
	BackdropPath  string   `json:"backdrop_path"`
	IMDBID        string   `json:"imdb_id"`
	Tagline       string   `json:"tagline"`
	Status        string   `json:"status"`
}

type searchResponse struct {
	Results []searchItem `json:"results"`
}

type searchItem struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	VoteAverage  float64 `json:"vote_average"`
	Popularity   float64 `json:"popularity"`
}

type detailsResponse struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	ReleaseDate   string  `json:"release_date"`
	Overview      string  `json:"overview"`
	Runtime       int     `json:"runtime"`
	Genres        []struct {
		Name string `json:"name"`
	} `json:"genres"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	Popularity   float64 `json:"popularity"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	IMDBID       string  `json:"imdb_id"`
	Tagline      string  `json:"tagline"`
	Status       string  `json:"status"`
}
