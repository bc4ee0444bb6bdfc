package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetCity(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/cities/porto-alegre/", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id":"city-1","name":"Porto Alegre","slug":"porto-alegre","state":"RS"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	service := NewCityService(server.URL)

	city, err := service.GetCity(context.Background(), "porto-alegre")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if city.Id != "city-1" || city.Name != "Porto Alegre" {
		t.Errorf("city = %+v", city)
	}
}

func TestGetCityEmptySlug(t *testing.T) {
	service := NewCityService("http://backend")
	if _, err := service.GetCity(context.Background(), ""); err == nil {
		t.Error("empty slug should fail before any request")
	}
}

func TestGetCityNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	service := NewCityService(server.URL)
	if _, err := service.GetCity(context.Background(), "nowhere"); err == nil {
		t.Error("expected an error for a 404")
	}
}

func TestListCities(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/cities/", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"id":"city-1","slug":"porto-alegre"},{"id":"city-2","slug":"canoas"}]`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	service := NewCityService(server.URL)

	cities, err := service.ListCities(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cities) != 2 || cities[1].Slug != "canoas" {
		t.Errorf("cities = %+v", cities)
	}
}
