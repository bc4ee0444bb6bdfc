package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func geoTestServers(t *testing.T, mapboxHandler http.HandlerFunc) (*RealGeoService, *int64) {
	t.Helper()

	var tokenCalls int64
	backend := http.NewServeMux()
	backend.HandleFunc("/api/auth/mapbox-token/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&tokenCalls, 1)
		json.NewEncoder(w).Encode(map[string]string{"token": "pk.test"})
	})
	backendServer := httptest.NewServer(backend)
	t.Cleanup(backendServer.Close)

	mapboxServer := httptest.NewServer(mapboxHandler)
	t.Cleanup(mapboxServer.Close)

	return NewGeoService(backendServer.URL, mapboxServer.URL), &tokenCalls
}

func TestForwardGeocode(t *testing.T) {
	var gotPath, gotQuery string
	service, tokenCalls := geoTestServers(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		io.WriteString(w, `{"features":[
			{"place_name":"Av. Ipiranga, Porto Alegre","center":[-51.21,-30.05]},
			{"place_name":"broken feature","center":[]}
		]}`)
	})

	results, err := service.ForwardGeocode(context.Background(), "ipiranga")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, features without coordinates must be dropped", len(results))
	}
	if results[0].PlaceName != "Av. Ipiranga, Porto Alegre" || results[0].Lng != -51.21 {
		t.Errorf("result = %+v", results[0])
	}

	if gotPath != "/geocoding/v5/mapbox.places/ipiranga.json" {
		t.Errorf("path = %q", gotPath)
	}
	for _, param := range []string{"access_token=pk.test", "language=pt", "autocomplete=true", "limit=5"} {
		if !strings.Contains(gotQuery, param) {
			t.Errorf("query %q is missing %q", gotQuery, param)
		}
	}

	// second lookup reuses the cached token
	if _, err := service.ForwardGeocode(context.Background(), "redenção"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := atomic.LoadInt64(tokenCalls); got != 1 {
		t.Errorf("token endpoint hit %d times, want 1", got)
	}
}

func TestForwardGeocodeEmptyQuery(t *testing.T) {
	service, tokenCalls := geoTestServers(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request should be sent for an empty query")
	})

	results, err := service.ForwardGeocode(context.Background(), "")
	if err != nil || results != nil {
		t.Errorf("got %v, %v", results, err)
	}
	if atomic.LoadInt64(tokenCalls) != 0 {
		t.Error("empty query must not fetch a token")
	}
}

func TestReverseGeocode(t *testing.T) {
	var gotPath, gotQuery string
	service, _ := geoTestServers(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		io.WriteString(w, `{"features":[{"place_name":"Centro Histórico, Porto Alegre","center":[-51.23,-30.03]}]}`)
	})

	address, err := service.ReverseGeocode(context.Background(), -51.23, -30.03)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if address != "Centro Histórico, Porto Alegre" {
		t.Errorf("address = %q", address)
	}
	if gotPath != "/geocoding/v5/mapbox.places/-51.23,-30.03.json" {
		t.Errorf("path = %q", gotPath)
	}
	if !strings.Contains(gotQuery, "types=address%2Cplace") {
		t.Errorf("query %q is missing the types filter", gotQuery)
	}
}

func TestReverseGeocodeNoResults(t *testing.T) {
	service, _ := geoTestServers(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"features":[]}`)
	})

	address, err := service.ReverseGeocode(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if address != "" {
		t.Errorf("address = %q, want empty for no matches", address)
	}
}
