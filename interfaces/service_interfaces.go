package interfaces

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/joaovasc10/bora/types"
)

type SessionServiceInterface interface {
	IsAuthenticated() bool
	CurrentUser() *types.User
	// AuthenticatedRequest attaches the bearer token when present and
	// performs at most one refresh-and-retry on an authorization failure.
	// An empty contentType leaves the Content-Type header unset so
	// multipart bodies keep their own boundary header.
	AuthenticatedRequest(ctx context.Context, method, requestUrl string, body []byte, contentType string) (*http.Response, error)
	Login(ctx context.Context, email, password string) (*types.User, error)
	Register(ctx context.Context, email, password1, password2 string) (*types.User, error)
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) bool
}

type EventsServiceInterface interface {
	FetchEvents(ctx context.Context, query url.Values) (*types.FeatureCollection, error)
	FetchMine(ctx context.Context) (*types.FeatureCollection, error)
	FetchNearby(ctx context.Context, lng, lat, radiusKm float64) (*types.FeatureCollection, error)
	FetchCategories(ctx context.Context) ([]types.Category, error)
	CreateEvent(ctx context.Context, draft *types.DraftEvent) (*types.EventFeature, error)
	Interact(ctx context.Context, eventId, kind string) (*types.InteractionResult, error)
}

type GeoServiceInterface interface {
	ForwardGeocode(ctx context.Context, query string) ([]types.GeocodeResult, error)
	ReverseGeocode(ctx context.Context, lng, lat float64) (string, error)
	FetchMapToken(ctx context.Context) (string, error)
}

type CityServiceInterface interface {
	GetCity(ctx context.Context, slug string) (*types.City, error)
	ListCities(ctx context.Context) ([]types.City, error)
}

type SessionStoreInterface interface {
	Load() (*types.Session, error)
	Save(session *types.Session) error
	Clear() error
	io.Closer
}

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrMissingEventId   = errors.New("event has no identifier")
	ErrNoLocation       = errors.New("no location selected")
	ErrInvalidKind      = errors.New("invalid interaction type")
)
