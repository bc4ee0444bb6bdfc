package test_helpers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/gorilla/mux"

	"github.com/joaovasc10/bora/mapsurface"
	"github.com/joaovasc10/bora/types"
)

var nextPort int64 = 8090

// GetNextPort hands out distinct localhost ports for tests that need to
// pin a mock server to a known address.
func GetNextPort() int {
	return int(atomic.AddInt64(&nextPort, 1))
}

// ----------------------------------------------------------------
// Service mocks: function fields, one per interface method
// ----------------------------------------------------------------

type MockSessionService struct {
	IsAuthenticatedFunc      func() bool
	CurrentUserFunc          func() *types.User
	AuthenticatedRequestFunc func(ctx context.Context, method, requestUrl string, body []byte, contentType string) (*http.Response, error)
	LoginFunc                func(ctx context.Context, email, password string) (*types.User, error)
	RegisterFunc             func(ctx context.Context, email, password1, password2 string) (*types.User, error)
	LogoutFunc               func(ctx context.Context) error
	RefreshFunc              func(ctx context.Context) bool
}

func (m *MockSessionService) IsAuthenticated() bool {
	if m.IsAuthenticatedFunc != nil {
		return m.IsAuthenticatedFunc()
	}
	return false
}

func (m *MockSessionService) CurrentUser() *types.User {
	if m.CurrentUserFunc != nil {
		return m.CurrentUserFunc()
	}
	return nil
}

func (m *MockSessionService) AuthenticatedRequest(ctx context.Context, method, requestUrl string, body []byte, contentType string) (*http.Response, error) {
	return m.AuthenticatedRequestFunc(ctx, method, requestUrl, body, contentType)
}

func (m *MockSessionService) Login(ctx context.Context, email, password string) (*types.User, error) {
	return m.LoginFunc(ctx, email, password)
}

func (m *MockSessionService) Register(ctx context.Context, email, password1, password2 string) (*types.User, error) {
	return m.RegisterFunc(ctx, email, password1, password2)
}

func (m *MockSessionService) Logout(ctx context.Context) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx)
	}
	return nil
}

func (m *MockSessionService) Refresh(ctx context.Context) bool {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx)
	}
	return false
}

type MockEventsService struct {
	FetchEventsFunc     func(ctx context.Context, query url.Values) (*types.FeatureCollection, error)
	FetchMineFunc       func(ctx context.Context) (*types.FeatureCollection, error)
	FetchNearbyFunc     func(ctx context.Context, lng, lat, radiusKm float64) (*types.FeatureCollection, error)
	FetchCategoriesFunc func(ctx context.Context) ([]types.Category, error)
	CreateEventFunc     func(ctx context.Context, draft *types.DraftEvent) (*types.EventFeature, error)
	InteractFunc        func(ctx context.Context, eventId, kind string) (*types.InteractionResult, error)
}

func (m *MockEventsService) FetchEvents(ctx context.Context, query url.Values) (*types.FeatureCollection, error) {
	return m.FetchEventsFunc(ctx, query)
}

func (m *MockEventsService) FetchMine(ctx context.Context) (*types.FeatureCollection, error) {
	return m.FetchMineFunc(ctx)
}

func (m *MockEventsService) FetchNearby(ctx context.Context, lng, lat, radiusKm float64) (*types.FeatureCollection, error) {
	return m.FetchNearbyFunc(ctx, lng, lat, radiusKm)
}

func (m *MockEventsService) FetchCategories(ctx context.Context) ([]types.Category, error) {
	return m.FetchCategoriesFunc(ctx)
}

func (m *MockEventsService) CreateEvent(ctx context.Context, draft *types.DraftEvent) (*types.EventFeature, error) {
	return m.CreateEventFunc(ctx, draft)
}

func (m *MockEventsService) Interact(ctx context.Context, eventId, kind string) (*types.InteractionResult, error) {
	return m.InteractFunc(ctx, eventId, kind)
}

type MockGeoService struct {
	ForwardGeocodeFunc func(ctx context.Context, query string) ([]types.GeocodeResult, error)
	ReverseGeocodeFunc func(ctx context.Context, lng, lat float64) (string, error)
	FetchMapTokenFunc  func(ctx context.Context) (string, error)
}

func (m *MockGeoService) ForwardGeocode(ctx context.Context, query string) ([]types.GeocodeResult, error) {
	if m.ForwardGeocodeFunc != nil {
		return m.ForwardGeocodeFunc(ctx, query)
	}
	return nil, nil
}

func (m *MockGeoService) ReverseGeocode(ctx context.Context, lng, lat float64) (string, error) {
	if m.ReverseGeocodeFunc != nil {
		return m.ReverseGeocodeFunc(ctx, lng, lat)
	}
	return "", nil
}

func (m *MockGeoService) FetchMapToken(ctx context.Context) (string, error) {
	if m.FetchMapTokenFunc != nil {
		return m.FetchMapTokenFunc(ctx)
	}
	return "test-map-token", nil
}

type MockCityService struct {
	GetCityFunc    func(ctx context.Context, slug string) (*types.City, error)
	ListCitiesFunc func(ctx context.Context) ([]types.City, error)
}

func (m *MockCityService) GetCity(ctx context.Context, slug string) (*types.City, error) {
	if m.GetCityFunc != nil {
		return m.GetCityFunc(ctx, slug)
	}
	return &types.City{Id: "city-1", Slug: slug}, nil
}

func (m *MockCityService) ListCities(ctx context.Context) ([]types.City, error) {
	if m.ListCitiesFunc != nil {
		return m.ListCitiesFunc(ctx)
	}
	return nil, nil
}

// MockSessionStore keeps the session in memory.
type MockSessionStore struct {
	mu      sync.Mutex
	Session *types.Session
}

func (m *MockSessionStore) Load() (*types.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Session == nil {
		return &types.Session{}, nil
	}
	return m.Session, nil
}

func (m *MockSessionStore) Save(session *types.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Session = session
	return nil
}

func (m *MockSessionStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Session = nil
	return nil
}

func (m *MockSessionStore) Close() error { return nil }

// ----------------------------------------------------------------
// Fake map surface, recording every call for assertions
// ----------------------------------------------------------------

type FakeMarker struct {
	Handle  mapsurface.MarkerHandle
	Lng     float64
	Lat     float64
	Style   mapsurface.MarkerStyle
	OnClick func(mapsurface.ClickPayload)
}

type FlyToCall struct {
	Lng, Lat, Zoom float64
}

type FakeSurface struct {
	mu sync.Mutex

	Datasets      []*types.FeatureCollection
	Markers       map[mapsurface.MarkerHandle]FakeMarker
	Order         []mapsurface.MarkerHandle
	Removed       []mapsurface.MarkerHandle
	FlyToCalls    []FlyToCall
	FitBoundsBox  [][4]float64
	clusterClick  func(mapsurface.ClusterClick)
	fallbackClick func(mapsurface.ClickPayload)
	ready         func()
}

func NewFakeSurface() *FakeSurface {
	return &FakeSurface{Markers: map[mapsurface.MarkerHandle]FakeMarker{}}
}

func (s *FakeSurface) SetDataset(fc *types.FeatureCollection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Datasets = append(s.Datasets, fc)
	return nil
}

func (s *FakeSurface) AddMarker(handle mapsurface.MarkerHandle, lng, lat float64, style mapsurface.MarkerStyle, onClick func(mapsurface.ClickPayload)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Markers[handle] = FakeMarker{Handle: handle, Lng: lng, Lat: lat, Style: style, OnClick: onClick}
	s.Order = append(s.Order, handle)
	return nil
}

func (s *FakeSurface) RemoveMarker(handle mapsurface.MarkerHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Markers, handle)
	s.Removed = append(s.Removed, handle)
}

func (s *FakeSurface) FlyTo(lng, lat, zoom float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FlyToCalls = append(s.FlyToCalls, FlyToCall{Lng: lng, Lat: lat, Zoom: zoom})
}

func (s *FakeSurface) FitBounds(minLng, minLat, maxLng, maxLat float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FitBoundsBox = append(s.FitBoundsBox, [4]float64{minLng, minLat, maxLng, maxLat})
}

func (s *FakeSurface) OnClusterClick(handler func(mapsurface.ClusterClick)) {
	s.clusterClick = handler
}

func (s *FakeSurface) OnFallbackClick(handler func(mapsurface.ClickPayload)) {
	s.fallbackClick = handler
}

func (s *FakeSurface) OnReady(handler func()) {
	s.ready = handler
}

func (s *FakeSurface) MarkerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Markers)
}

func (s *FakeSurface) LastDataset() *types.FeatureCollection {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Datasets) == 0 {
		return nil
	}
	return s.Datasets[len(s.Datasets)-1]
}

// ClickMarker fires the click handler of the i-th rendered marker.
func (s *FakeSurface) ClickMarker(i int) {
	s.mu.Lock()
	var marker FakeMarker
	found := false
	live := 0
	for _, handle := range s.Order {
		m, ok := s.Markers[handle]
		if !ok {
			continue
		}
		if live == i {
			marker = m
			found = true
			break
		}
		live++
	}
	s.mu.Unlock()
	if found && marker.OnClick != nil {
		marker.OnClick(mapsurface.ClickPayload{Lng: marker.Lng, Lat: marker.Lat})
	}
}

func (s *FakeSurface) TriggerReady() {
	if s.ready != nil {
		s.ready()
	}
}

func (s *FakeSurface) TriggerClusterClick(click mapsurface.ClusterClick) {
	if s.clusterClick != nil {
		s.clusterClick(click)
	}
}

func (s *FakeSurface) TriggerFallbackClick(payload mapsurface.ClickPayload) {
	if s.fallbackClick != nil {
		s.fallbackClick(payload)
	}
}

// ----------------------------------------------------------------
// Fake backend: mux router with the endpoints the client consumes
// ----------------------------------------------------------------

// BackendConfig customizes NewBackendRouter. Nil handlers fall back to
// simple defaults.
type BackendConfig struct {
	Events       *types.FeatureCollection
	Categories   []types.Category
	City         *types.City
	AccessToken  string
	RefreshToken string
	OnInteract   func(eventId, kind string) (status int, body interface{})
}

// NewBackendRouter builds a fake Bora backend covering the endpoints the
// client consumes. Tests wrap it in httptest.NewServer.
func NewBackendRouter(cfg BackendConfig) *mux.Router {
	if cfg.Events == nil {
		cfg.Events = types.NewFeatureCollection(nil)
	}
	if cfg.AccessToken == "" {
		cfg.AccessToken = "test-access-token"
	}
	if cfg.RefreshToken == "" {
		cfg.RefreshToken = "test-refresh-token"
	}

	router := mux.NewRouter()

	router.HandleFunc("/api/events/", func(w http.ResponseWriter, r *http.Request) {
		writeJson(w, http.StatusOK, cfg.Events)
	}).Methods(http.MethodGet)

	router.HandleFunc("/api/events/", func(w http.ResponseWriter, r *http.Request) {
		if len(cfg.Events.Features) == 0 {
			writeJson(w, http.StatusCreated, types.EventFeature{Type: "Feature", Id: "created-1"})
			return
		}
		writeJson(w, http.StatusCreated, cfg.Events.Features[0])
	}).Methods(http.MethodPost)

	router.HandleFunc("/api/events/mine/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			writeJson(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
			return
		}
		writeJson(w, http.StatusOK, cfg.Events)
	}).Methods(http.MethodGet)

	router.HandleFunc("/api/events/{id}/interact/", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			InteractionType string `json:"interaction_type"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if cfg.OnInteract != nil {
			status, payload := cfg.OnInteract(mux.Vars(r)["id"], body.InteractionType)
			writeJson(w, status, payload)
			return
		}
		writeJson(w, http.StatusCreated, map[string]string{"id": "i-1", "interaction_type": body.InteractionType})
	}).Methods(http.MethodPost)

	router.HandleFunc("/api/categories/", func(w http.ResponseWriter, r *http.Request) {
		writeJson(w, http.StatusOK, cfg.Categories)
	}).Methods(http.MethodGet)

	router.HandleFunc("/api/cities/{slug}/", func(w http.ResponseWriter, r *http.Request) {
		if cfg.City == nil {
			writeJson(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
			return
		}
		writeJson(w, http.StatusOK, cfg.City)
	}).Methods(http.MethodGet)

	router.HandleFunc("/api/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		writeJson(w, http.StatusOK, map[string]interface{}{
			"access_token":  cfg.AccessToken,
			"refresh_token": cfg.RefreshToken,
			"user":          map[string]string{"id": "u-1", "email": "test@example.com"},
		})
	}).Methods(http.MethodPost)

	router.HandleFunc("/api/auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		writeJson(w, http.StatusOK, map[string]string{"access": cfg.AccessToken})
	}).Methods(http.MethodPost)

	router.HandleFunc("/api/auth/logout/", func(w http.ResponseWriter, r *http.Request) {
		writeJson(w, http.StatusResetContent, map[string]string{"detail": "Logged out successfully."})
	}).Methods(http.MethodPost)

	router.HandleFunc("/api/auth/me/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			writeJson(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
			return
		}
		writeJson(w, http.StatusOK, map[string]string{"id": "u-1", "email": "test@example.com"})
	}).Methods(http.MethodGet)

	router.HandleFunc("/api/auth/mapbox-token/", func(w http.ResponseWriter, r *http.Request) {
		writeJson(w, http.StatusOK, map[string]string{"token": "pk.test"})
	}).Methods(http.MethodGet)

	return router
}

func writeJson(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
