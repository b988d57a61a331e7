// Package tmdb is a minimal client for the parts of the TMDB API the app
// needs: title/poster/genre metadata and cast/crew credits for a movie.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

type Client struct {
	APIKey  string
	BaseURL string
	HTTP    *http.Client
}

type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	Genres      []Genre `json:"genres"`
}

// ReleaseYear parses the leading year of ReleaseDate, 0 if absent.
func (m *Movie) ReleaseYear() int {
	if len(m.ReleaseDate) < 4 {
		return 0
	}
	var y int
	if _, err := fmt.Sscanf(m.ReleaseDate[:4], "%d", &y); err != nil {
		return 0
	}
	return y
}

// GenreNames flattens Genres for storage.
func (m *Movie) GenreNames() []string {
	out := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		out = append(out, g.Name)
	}
	return out
}

type CastMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
	Order       int    `json:"order"`
}

type CrewMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Job         string `json:"job"`
	ProfilePath string `json:"profile_path"`
}

type Credits struct {
	ID   int64        `json:"id"`
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

type SearchMoviesResponse struct {
	Page         int     `json:"page"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
	Results      []Movie `json:"results"`
}

func New(apiKey, base string) *Client {
	return &Client{
		APIKey:  apiKey,
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.APIKey)
	u.RawQuery = params.Encode()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb status %d", res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func (c *Client) SearchMovies(ctx context.Context, query string, page int) (*SearchMoviesResponse, error) {
	params := url.Values{"query": []string{query}}
	if page > 0 {
		params.Set("page", fmt.Sprint(page))
	}
	var out SearchMoviesResponse
	if err := c.get(ctx, "/search/movie", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetMovie(ctx context.Context, id int64) (*Movie, error) {
	var out Movie
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetCredits(ctx context.Context, id int64) (*Credits, error) {
	var out Credits
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/credits", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
