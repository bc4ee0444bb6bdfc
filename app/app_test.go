package app

import (
	"context"
	"net/url"
	"sync"
	"testing"

	"github.com/joaovasc10/bora/mapsurface"
	"github.com/joaovasc10/bora/test_helpers"
	"github.com/joaovasc10/bora/types"
)

func feature(id, categorySlug string) types.EventFeature {
	return types.EventFeature{
		Type: "Feature",
		Id:   id,
		Geometry: types.Geometry{
			Type:        "Point",
			Coordinates: []float64{-51.2, -30.0},
		},
		Properties: types.EventProperties{
			Id:       id,
			Title:    "Event " + id,
			Category: types.Category{Slug: categorySlug},
		},
	}
}

func featuresFor(counts map[string]int) []types.EventFeature {
	out := []types.EventFeature{}
	for _, slug := range []string{"music", "sports", "food"} {
		for i := 0; i < counts[slug]; i++ {
			out = append(out, feature(slug+"-"+string(rune('a'+i)), slug))
		}
	}
	return out
}

func newTestApp(events *test_helpers.MockEventsService, session *test_helpers.MockSessionService) (*App, *test_helpers.FakeSurface, *fakeNotifier) {
	surface := test_helpers.NewFakeSurface()
	notify := &fakeNotifier{}
	a := New(types.NewFilterState(), events, session, surface, NewBus(), notify)
	return a, surface, notify
}

func TestLoadAndRenderMergesMultipleCategoriesClientSide(t *testing.T) {
	// 5 music, 3 sports, 2 food; the backend cannot filter on two
	// categories so it returns everything
	all := featuresFor(map[string]int{"music": 5, "sports": 3, "food": 2})

	var gotQuery url.Values
	events := &test_helpers.MockEventsService{
		FetchEventsFunc: func(ctx context.Context, query url.Values) (*types.FeatureCollection, error) {
			gotQuery = query
			return types.NewFeatureCollection(all), nil
		},
	}
	a, surface, _ := newTestApp(events, &test_helpers.MockSessionService{})
	a.Filters.ToggleCategory("music")
	a.Filters.ToggleCategory("sports")
	a.Filters.IsFree = true

	rendered := a.LoadAndRenderEvents(context.Background())

	if gotQuery.Has("category") {
		t.Errorf("two selected categories must not send a category param, got %q", gotQuery.Get("category"))
	}
	if gotQuery.Get("is_free") != "true" {
		t.Errorf("is_free = %q", gotQuery.Get("is_free"))
	}
	if len(rendered) != 8 {
		t.Errorf("rendered %d features, want 5 music + 3 sports", len(rendered))
	}
	if dataset := surface.LastDataset(); dataset == nil || len(dataset.Features) != 8 {
		t.Errorf("dataset does not match the merged feature set")
	}
	if surface.MarkerCount() != 8 {
		t.Errorf("marker count = %d, want 8", surface.MarkerCount())
	}
	for _, f := range rendered {
		if slug := f.Properties.Category.Slug; slug != "music" && slug != "sports" {
			t.Errorf("unselected category %q leaked through the merge", slug)
		}
	}
}

func TestLoadAndRenderSingleCategoryUsesServerFilter(t *testing.T) {
	var gotQuery url.Values
	events := &test_helpers.MockEventsService{
		FetchEventsFunc: func(ctx context.Context, query url.Values) (*types.FeatureCollection, error) {
			gotQuery = query
			return types.NewFeatureCollection(featuresFor(map[string]int{"music": 2})), nil
		},
	}
	a, _, _ := newTestApp(events, &test_helpers.MockSessionService{})
	a.Filters.ToggleCategory("music")

	rendered := a.LoadAndRenderEvents(context.Background())

	if gotQuery.Get("category") != "music" {
		t.Errorf("category = %q", gotQuery.Get("category"))
	}
	if len(rendered) != 2 {
		t.Errorf("rendered %d features", len(rendered))
	}
}

func TestLoadAndRenderFetchFailureCollapsesToEmpty(t *testing.T) {
	events := &test_helpers.MockEventsService{
		FetchEventsFunc: func(ctx context.Context, query url.Values) (*types.FeatureCollection, error) {
			return nil, context.DeadlineExceeded
		},
	}
	a, surface, notify := newTestApp(events, &test_helpers.MockSessionService{})

	rendered := a.LoadAndRenderEvents(context.Background())

	if len(rendered) != 0 {
		t.Errorf("rendered %d features on failure", len(rendered))
	}
	if surface.MarkerCount() != 0 {
		t.Errorf("marker count = %d", surface.MarkerCount())
	}
	if len(notify.errors) == 0 {
		t.Error("fetch failure should notify the user")
	}
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	slow := featuresFor(map[string]int{"music": 1})
	fast := featuresFor(map[string]int{"sports": 2})

	firstStarted := make(chan struct{})
	release := make(chan struct{})
	calls := 0
	var callsMu sync.Mutex

	events := &test_helpers.MockEventsService{
		FetchEventsFunc: func(ctx context.Context, query url.Values) (*types.FeatureCollection, error) {
			callsMu.Lock()
			calls++
			mine := calls
			callsMu.Unlock()
			if mine == 1 {
				close(firstStarted)
				<-release
				return types.NewFeatureCollection(slow), nil
			}
			return types.NewFeatureCollection(fast), nil
		},
	}
	a, surface, _ := newTestApp(events, &test_helpers.MockSessionService{})

	var wg sync.WaitGroup
	var slowResult []types.EventFeature
	wg.Add(1)
	go func() {
		defer wg.Done()
		slowResult = a.LoadAndRenderEvents(context.Background())
	}()
	<-firstStarted

	fastResult := a.LoadAndRenderEvents(context.Background())
	close(release)
	wg.Wait()

	if len(fastResult) != 2 {
		t.Fatalf("fast result has %d features", len(fastResult))
	}
	if len(slowResult) != 2 {
		t.Errorf("the stale response replaced the newer one: %d features", len(slowResult))
	}
	if len(surface.Datasets) != 1 {
		t.Errorf("dataset replaced %d times, the stale response must not render", len(surface.Datasets))
	}
	if dataset := surface.LastDataset(); len(dataset.Features) != 2 {
		t.Errorf("map shows %d features, want the newer response", len(dataset.Features))
	}
}

func TestShowMyEventsRequiresAuth(t *testing.T) {
	fetchMineCalled := false
	events := &test_helpers.MockEventsService{
		FetchMineFunc: func(ctx context.Context) (*types.FeatureCollection, error) {
			fetchMineCalled = true
			return types.NewFeatureCollection(nil), nil
		},
	}
	session := &test_helpers.MockSessionService{
		IsAuthenticatedFunc: func() bool { return false },
	}
	a, _, notify := newTestApp(events, session)

	if got := a.ShowMyEvents(context.Background()); got != nil {
		t.Errorf("got %v", got)
	}
	if fetchMineCalled {
		t.Error("FetchMine must not run unauthenticated")
	}
	if len(notify.infos) == 0 {
		t.Error("expected a login prompt")
	}
}

func TestShowMyEventsBypassesFilters(t *testing.T) {
	mine := featuresFor(map[string]int{"food": 2})
	events := &test_helpers.MockEventsService{
		FetchMineFunc: func(ctx context.Context) (*types.FeatureCollection, error) {
			return types.NewFeatureCollection(mine), nil
		},
	}
	session := &test_helpers.MockSessionService{
		IsAuthenticatedFunc: func() bool { return true },
	}
	a, surface, _ := newTestApp(events, session)
	// active filters must not hide the user's own events
	a.Filters.ToggleCategory("music")

	rendered := a.ShowMyEvents(context.Background())

	if len(rendered) != 2 {
		t.Errorf("rendered %d features", len(rendered))
	}
	if surface.MarkerCount() != 2 {
		t.Errorf("marker count = %d", surface.MarkerCount())
	}
}

func TestClusterClickFitsBounds(t *testing.T) {
	events := &test_helpers.MockEventsService{}
	a, surface, _ := newTestApp(events, &test_helpers.MockSessionService{})
	if err := a.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	surface.TriggerClusterClick(mapsurface.ClusterClick{Points: [][2]float64{
		{-51.25, -30.05},
		{-51.20, -30.00},
	}})

	if len(surface.FitBoundsBox) != 1 {
		t.Fatalf("FitBounds called %d times", len(surface.FitBoundsBox))
	}
	box := surface.FitBoundsBox[0]
	if box[0] > -51.25+1e-6 || box[2] < -51.20-1e-6 {
		t.Errorf("bounds %v do not cover the cluster points", box)
	}
}

func TestToggleCategoryRerunsPipeline(t *testing.T) {
	fetches := 0
	events := &test_helpers.MockEventsService{
		FetchEventsFunc: func(ctx context.Context, query url.Values) (*types.FeatureCollection, error) {
			fetches++
			return types.NewFeatureCollection(nil), nil
		},
	}
	a, _, _ := newTestApp(events, &test_helpers.MockSessionService{})

	a.ToggleCategory(context.Background(), "music")
	a.SetFreeOnly(context.Background(), true)
	a.SetSearchQuery(context.Background(), "feira")

	if fetches != 3 {
		t.Errorf("pipeline ran %d times, want one run per mutation", fetches)
	}
}
