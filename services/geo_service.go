package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/joaovasc10/bora/helpers"
	"github.com/joaovasc10/bora/types"
)

// RealGeoService wraps the Mapbox geocoding API plus the backend endpoint
// that hands out the scoped map token.
type RealGeoService struct {
	apiBaseUrl    string // backend, for the token endpoint
	mapboxBaseUrl string
	client        *http.Client

	tokenMu sync.Mutex
	token   string
}

func NewGeoService(apiBaseUrl, mapboxBaseUrl string) *RealGeoService {
	if mapboxBaseUrl == "" {
		mapboxBaseUrl = helpers.DEFAULT_MAPBOX_BASE_URL
	}
	return &RealGeoService{
		apiBaseUrl:    apiBaseUrl,
		mapboxBaseUrl: mapboxBaseUrl,
		client:        &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchMapToken fetches and caches the public map token from the backend.
func (s *RealGeoService) FetchMapToken(ctx context.Context) (string, error) {
	s.tokenMu.Lock()
	defer s.tokenMu.Unlock()
	if s.token != "" {
		return s.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiBaseUrl+helpers.MAPBOX_TOKEN_PATH, nil)
	if err != nil {
		return "", fmt.Errorf("error creating token request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error fetching map token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("map token request failed: %s", resp.Status)
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("error decoding map token: %w", err)
	}
	if payload.Token == "" {
		return "", fmt.Errorf("map token response was empty")
	}
	s.token = payload.Token
	return s.token, nil
}

type mapboxResponse struct {
	Features []struct {
		PlaceName string    `json:"place_name"`
		Center    []float64 `json:"center"`
	} `json:"features"`
}

// ForwardGeocode resolves free-text input to location candidates, used by
// the creation modal's search-as-you-type field.
func (s *RealGeoService) ForwardGeocode(ctx context.Context, query string) ([]types.GeocodeResult, error) {
	if query == "" {
		return nil, nil
	}
	token, err := s.FetchMapToken(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("access_token", token)
	params.Set("autocomplete", "true")
	params.Set("limit", "5")
	params.Set("language", "pt")
	requestUrl := s.mapboxBaseUrl + "/geocoding/v5/mapbox.places/" + url.PathEscape(query) + ".json?" + params.Encode()

	data, err := s.geocode(ctx, requestUrl)
	if err != nil {
		return nil, err
	}

	results := make([]types.GeocodeResult, 0, len(data.Features))
	for _, f := range data.Features {
		if len(f.Center) < 2 {
			continue
		}
		results = append(results, types.GeocodeResult{
			PlaceName: f.PlaceName,
			Lng:       f.Center[0],
			Lat:       f.Center[1],
		})
	}
	return results, nil
}

// ReverseGeocode resolves a clicked point to a display address. An empty
// string (no error) means nothing was found.
func (s *RealGeoService) ReverseGeocode(ctx context.Context, lng, lat float64) (string, error) {
	token, err := s.FetchMapToken(ctx)
	if err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("access_token", token)
	params.Set("language", "pt")
	params.Set("types", "address,place")
	coords := strconv.FormatFloat(lng, 'f', -1, 64) + "," + strconv.FormatFloat(lat, 'f', -1, 64)
	requestUrl := s.mapboxBaseUrl + "/geocoding/v5/mapbox.places/" + coords + ".json?" + params.Encode()

	data, err := s.geocode(ctx, requestUrl)
	if err != nil {
		return "", err
	}
	if len(data.Features) == 0 {
		return "", nil
	}
	return data.Features[0].PlaceName, nil
}

func (s *RealGeoService) geocode(ctx context.Context, requestUrl string) (*mapboxResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestUrl, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating geocode request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode request failed: %s", resp.Status)
	}

	var data mapboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding geocode response: %w", err)
	}
	return &data, nil
}
