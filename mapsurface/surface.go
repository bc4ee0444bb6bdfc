// Package mapsurface defines the capability boundary over the map
// renderer: draw a point dataset, place markers, move the viewport. The
// real renderer lives outside this module; tests use a fake.
package mapsurface

import "github.com/joaovasc10/bora/types"

// MarkerHandle identifies one rendered marker.
type MarkerHandle string

// MarkerStyle is the category-derived pin styling.
type MarkerStyle struct {
	Color      string
	HoverColor string
	Icon       string
}

// ClickPayload is what a marker (or fallback layer) click reports: the
// feature's raw property bag plus normalized coordinates. FromFallback is
// set when the invisible click-target layer produced the event.
type ClickPayload struct {
	Properties   map[string]interface{}
	Lng          float64
	Lat          float64
	FromFallback bool
}

// ClusterClick reports the member coordinates of a clicked cluster as
// (lng, lat) pairs.
type ClusterClick struct {
	Points [][2]float64
}

// Surface is the minimal rendering capability the core consumes.
//
// AddMarker and SetDataset are synchronous: when they return, the layer is
// rendered. The creation pipeline relies on that to open a new event's
// detail right after a reload instead of guessing with a timer.
type Surface interface {
	// SetDataset fully replaces the rendered point/cluster source.
	SetDataset(fc *types.FeatureCollection) error
	AddMarker(handle MarkerHandle, lng, lat float64, style MarkerStyle, onClick func(ClickPayload)) error
	RemoveMarker(handle MarkerHandle)
	// FlyTo animates the viewport to the given center and zoom.
	FlyTo(lng, lat, zoom float64)
	// FitBounds frames the given box, used to expand clusters.
	FitBounds(minLng, minLat, maxLng, maxLat float64)
	// OnClusterClick registers the cluster expansion handler.
	OnClusterClick(handler func(ClusterClick))
	// OnFallbackClick registers the invisible click-target layer handler,
	// the fallback path when native marker clicks are unreliable. Payloads
	// must match marker click payloads.
	OnFallbackClick(handler func(ClickPayload))
	// OnReady registers a handler for the surface becoming interactive.
	OnReady(handler func())
}
