package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/joaovasc10/bora/helpers"
	"github.com/joaovasc10/bora/types"
)

// RealCityService resolves city records; the id is needed to tag newly
// created events with their city.
type RealCityService struct {
	baseUrl string
	client  *http.Client
}

func NewCityService(baseUrl string) *RealCityService {
	return &RealCityService{
		baseUrl: baseUrl,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *RealCityService) GetCity(ctx context.Context, slug string) (*types.City, error) {
	if slug == "" {
		return nil, fmt.Errorf("city slug is empty")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseUrl+helpers.CITIES_PATH+slug+"/", nil)
	if err != nil {
		return nil, fmt.Errorf("error creating city request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching city: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("city request failed: %s", resp.Status)
	}

	var city types.City
	if err := json.NewDecoder(resp.Body).Decode(&city); err != nil {
		return nil, fmt.Errorf("error decoding city: %w", err)
	}
	return &city, nil
}

func (s *RealCityService) ListCities(ctx context.Context) ([]types.City, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseUrl+helpers.CITIES_PATH, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating cities request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching cities: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cities request failed: %s", resp.Status)
	}

	var cities []types.City
	if err := json.NewDecoder(resp.Body).Decode(&cities); err != nil {
		return nil, fmt.Errorf("error decoding cities: %w", err)
	}
	return cities, nil
}
