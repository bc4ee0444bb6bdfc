package mapsurface

import (
	"log"

	"github.com/joaovasc10/bora/types"
)

// LogSurface is a headless Surface that records nothing and logs every
// call. Useful for smoke runs without a rendering host attached.
type LogSurface struct {
	clusterClick  func(ClusterClick)
	fallbackClick func(ClickPayload)
	ready         func()
}

func NewLogSurface() *LogSurface {
	return &LogSurface{}
}

func (s *LogSurface) SetDataset(fc *types.FeatureCollection) error {
	log.Printf("map: dataset replaced with %d features", len(fc.Features))
	return nil
}

func (s *LogSurface) AddMarker(handle MarkerHandle, lng, lat float64, style MarkerStyle, onClick func(ClickPayload)) error {
	log.Printf("map: marker %s at %.5f,%.5f color %s", handle, lng, lat, style.Color)
	return nil
}

func (s *LogSurface) RemoveMarker(handle MarkerHandle) {
	log.Printf("map: marker %s removed", handle)
}

func (s *LogSurface) FlyTo(lng, lat, zoom float64) {
	log.Printf("map: fly to %.5f,%.5f zoom %.0f", lng, lat, zoom)
}

func (s *LogSurface) FitBounds(minLng, minLat, maxLng, maxLat float64) {
	log.Printf("map: fit bounds [%.5f,%.5f]..[%.5f,%.5f]", minLng, minLat, maxLng, maxLat)
}

func (s *LogSurface) OnClusterClick(handler func(ClusterClick)) {
	s.clusterClick = handler
}

func (s *LogSurface) OnFallbackClick(handler func(ClickPayload)) {
	s.fallbackClick = handler
}

func (s *LogSurface) OnReady(handler func()) {
	s.ready = handler
}
