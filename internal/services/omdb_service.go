package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/liamwears/popcorn/internal/models"
)

var (
	// ErrMoviesNotFound is returned when OMDb answers Response "False"
	ErrMoviesNotFound = errors.New("movies not found")
	// ErrRequestFailed is returned for non-2xx responses
	ErrRequestFailed = errors.New("something went wrong with the request")
)

// APIError is a non-2xx answer from OMDb
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("OMDb API error: status %d, body: %s", e.StatusCode, e.Body)
}

// Unwrap lets callers match ErrRequestFailed with errors.Is
func (e *APIError) Unwrap() error {
	return ErrRequestFailed
}

// OMDBService handles interactions with the OMDb catalog API
type OMDBService struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

// OMDBConfig holds OMDb service configuration
type OMDBConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// NewOMDBService creates a new OMDb service
func NewOMDBService(cfg OMDBConfig) *OMDBService {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &OMDBService{
		client: &http.Client{
			Timeout: timeout,
		},
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// omdbEnvelope carries the fields shared by every OMDb answer
type omdbEnvelope struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

// omdbSearchResponse represents a search response from OMDb
type omdbSearchResponse struct {
	omdbEnvelope
	Search []struct {
		Title  string `json:"Title"`
		Year   string `json:"Year"`
		Poster string `json:"Poster"`
		ImdbID string `json:"imdbID"`
	} `json:"Search"`
}

// omdbDetailResponse represents a title lookup response from OMDb
type omdbDetailResponse struct {
	omdbEnvelope
	ImdbID     string `json:"imdbID"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Poster     string `json:"Poster"`
	Runtime    string `json:"Runtime"`
	ImdbRating string `json:"imdbRating"`
	Plot       string `json:"Plot"`
	Released   string `json:"Released"`
	Actors     string `json:"Actors"`
	Director   string `json:"Director"`
	Genre      string `json:"Genre"`
}

// doRequest performs an HTTP request to the OMDb API
func (s *OMDBService) doRequest(ctx context.Context, params map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	q := req.URL.Query()
	q.Add("apikey", s.apiKey)
	for key, value := range params {
		q.Add(key, value)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

// SearchMovies searches the catalog by free-text title.
// An answer with Response "False" is reported as ErrMoviesNotFound.
func (s *OMDBService) SearchMovies(ctx context.Context, query string) ([]models.Movie, error) {
	body, err := s.doRequest(ctx, map[string]string{"s": query})
	if err != nil {
		return nil, err
	}

	var response omdbSearchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal search results: %w", err)
	}

	if response.Response == "False" {
		return nil, fmt.Errorf("%w: %s", ErrMoviesNotFound, response.Error)
	}

	movies := make([]models.Movie, 0, len(response.Search))
	for _, m := range response.Search {
		movies = append(movies, models.Movie{
			ImdbID: m.ImdbID,
			Title:  m.Title,
			Year:   m.Year,
			Poster: m.Poster,
		})
	}

	return movies, nil
}

// GetMovie retrieves one title by its IMDb identifier
func (s *OMDBService) GetMovie(ctx context.Context, imdbID string) (*models.MovieDetail, error) {
	body, err := s.doRequest(ctx, map[string]string{"i": imdbID})
	if err != nil {
		return nil, err
	}

	var response omdbDetailResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal movie: %w", err)
	}

	if response.Response == "False" {
		return nil, fmt.Errorf("%w: %s", ErrMoviesNotFound, response.Error)
	}

	return &models.MovieDetail{
		ImdbID:     response.ImdbID,
		Title:      response.Title,
		Year:       response.Year,
		Poster:     response.Poster,
		Runtime:    response.Runtime,
		ImdbRating: response.ImdbRating,
		Plot:       response.Plot,
		Released:   response.Released,
		Actors:     response.Actors,
		Director:   response.Director,
		Genre:      response.Genre,
	}, nil
}
