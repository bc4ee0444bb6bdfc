package app

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/joaovasc10/bora/helpers"
	"github.com/joaovasc10/bora/interfaces"
	"github.com/joaovasc10/bora/mapsurface"
	"github.com/joaovasc10/bora/types"
)

// Notifier surfaces transient user-visible notifications. The rendering of
// toasts is outside this module.
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Info(msg string)
}

// App wires the filter state, services, map surface and bus together and
// runs the fetch/merge/render pipeline. All cross-component state lives
// here instead of in globals so tests can build isolated instances.
type App struct {
	Filters *types.FilterState
	Events  interfaces.EventsServiceInterface
	Session interfaces.SessionServiceInterface
	Surface mapsurface.Surface
	Markers *mapsurface.MarkerSet
	Bus     *Bus
	Notify  Notifier

	// Now is the pipeline's clock, overridable in tests.
	Now func() time.Time

	mu          sync.Mutex
	fetchSeq    uint64
	appliedSeq  uint64
	lastApplied []types.EventFeature
}

func New(filters *types.FilterState, events interfaces.EventsServiceInterface, session interfaces.SessionServiceInterface, surface mapsurface.Surface, bus *Bus, notify Notifier) *App {
	return &App{
		Filters: filters,
		Events:  events,
		Session: session,
		Surface: surface,
		Markers: mapsurface.NewMarkerSet(),
		Bus:     bus,
		Notify:  notify,
		Now:     helpers.CurrentTime,
	}
}

// Start registers the surface and bus handlers. The pin-clicked handler is
// wired by the detail controller.
func (a *App) Start(ctx context.Context) error {
	a.Surface.OnClusterClick(func(click mapsurface.ClusterClick) {
		minLng, minLat, maxLng, maxLat, _ := mapsurface.ClusterBounds(click.Points)
		a.Surface.FitBounds(minLng, minLat, maxLng, maxLat)
	})
	a.Surface.OnFallbackClick(func(payload mapsurface.ClickPayload) {
		a.publishPinClicked(payload)
	})
	a.Surface.OnReady(func() {
		if err := a.Bus.Publish(TopicMapReady, struct{}{}); err != nil {
			log.Printf("Error publishing map-ready: %v", err)
		}
	})

	return a.Bus.Subscribe(ctx, TopicShowMyEvents, func([]byte) {
		a.ShowMyEvents(ctx)
	})
}

// FetchEvents translates the current filters, queries the backend and
// returns the features. Failures are reported to the user and collapse to
// an empty collection; nothing propagates past this boundary.
func (a *App) FetchEvents(ctx context.Context) *types.FeatureCollection {
	query := helpers.BuildEventsQuery(a.Filters, a.Now())
	fc, err := a.Events.FetchEvents(ctx, query)
	if err != nil {
		log.Printf("Error fetching events: %v", err)
		a.Notify.Error("Não foi possível carregar os eventos.")
		return types.NewFeatureCollection(nil)
	}
	return fc
}

// LoadAndRenderEvents runs the full pipeline: fetch, client-side
// multi-category merge, dataset replace, marker re-render. Responses that
// complete after a newer request has already been applied are discarded.
// It returns the rendered feature list.
func (a *App) LoadAndRenderEvents(ctx context.Context) []types.EventFeature {
	a.mu.Lock()
	a.fetchSeq++
	seq := a.fetchSeq
	a.mu.Unlock()

	fc := a.FetchEvents(ctx)

	// The backend only filters by a single category; two or more selected
	// categories are intersected here.
	selected := a.Filters.SelectedCategories()
	features := fc.Features
	if len(selected) >= 2 {
		features = filterByCategories(features, selected)
	}

	a.mu.Lock()
	if seq < a.appliedSeq {
		a.mu.Unlock()
		log.Printf("Discarding stale events response (seq %d < %d)", seq, a.appliedSeq)
		return a.lastAppliedFeatures()
	}
	a.appliedSeq = seq
	a.lastApplied = features
	a.mu.Unlock()

	a.render(features)
	return features
}

// ShowMyEvents renders the logged-in user's own events, bypassing filters.
func (a *App) ShowMyEvents(ctx context.Context) []types.EventFeature {
	if !a.Session.IsAuthenticated() {
		a.Notify.Info("Entre para ver seus eventos.")
		return nil
	}
	fc, err := a.Events.FetchMine(ctx)
	if err != nil {
		log.Printf("Error fetching my events: %v", err)
		a.Notify.Error("Não foi possível carregar seus eventos.")
		return nil
	}
	a.render(fc.Features)
	return fc.Features
}

func (a *App) render(features []types.EventFeature) {
	if err := a.Surface.SetDataset(types.NewFeatureCollection(features)); err != nil {
		log.Printf("Error replacing map dataset: %v", err)
	}
	a.Markers.Render(a.Surface, features, a.publishPinClicked)
}

func (a *App) publishPinClicked(payload mapsurface.ClickPayload) {
	err := a.Bus.Publish(TopicPinClicked, PinClickedPayload{
		Properties: payload.Properties,
		Lng:        payload.Lng,
		Lat:        payload.Lat,
	})
	if err != nil {
		log.Printf("Error publishing pin-clicked: %v", err)
	}
}

func (a *App) lastAppliedFeatures() []types.EventFeature {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastApplied
}

// Filter mutators. The state record itself carries no notifications, so
// every mutation explicitly re-runs the pipeline.

func (a *App) ToggleCategory(ctx context.Context, slug string) {
	a.Filters.ToggleCategory(slug)
	a.LoadAndRenderEvents(ctx)
}

func (a *App) SetDateFilter(ctx context.Context, value string) {
	a.Filters.DateFilter = value
	a.LoadAndRenderEvents(ctx)
}

func (a *App) SetFreeOnly(ctx context.Context, freeOnly bool) {
	a.Filters.IsFree = freeOnly
	a.LoadAndRenderEvents(ctx)
}

func (a *App) SetSearchQuery(ctx context.Context, query string) {
	a.Filters.SearchQuery = query
	a.LoadAndRenderEvents(ctx)
}

func filterByCategories(features []types.EventFeature, selected []string) []types.EventFeature {
	allowed := map[string]bool{}
	for _, slug := range selected {
		allowed[slug] = true
	}
	out := make([]types.EventFeature, 0, len(features))
	for _, f := range features {
		if allowed[f.Properties.Category.Slug] {
			out = append(out, f)
		}
	}
	return out
}
