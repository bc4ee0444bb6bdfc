package mapsurface

import (
	"encoding/json"
	"log"
	"math"

	"github.com/golang/geo/s2"
	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/joaovasc10/bora/helpers"
	"github.com/joaovasc10/bora/types"
)

type markerEntry struct {
	handle  MarkerHandle
	feature types.EventFeature
}

// MarkerSet owns the currently rendered markers. Every render cycle
// destroys the prior set and creates a fresh one from the feature list; the
// handle↔feature pairing is kept so click payloads can carry the feature's
// data.
type MarkerSet struct {
	entries []markerEntry
}

func NewMarkerSet() *MarkerSet {
	return &MarkerSet{}
}

// Render replaces all markers on the surface with one per feature. onClick
// receives the clicked feature's properties and coordinates.
func (m *MarkerSet) Render(surface Surface, features []types.EventFeature, onClick func(ClickPayload)) {
	for _, entry := range m.entries {
		surface.RemoveMarker(entry.handle)
	}
	m.entries = m.entries[:0]

	for _, feature := range features {
		feature.Normalize()
		handle := MarkerHandle(uuid.NewString())
		payload := clickPayloadFor(feature)
		err := surface.AddMarker(handle, feature.Lng(), feature.Lat(), StyleForCategory(feature.Properties.Category), func(ClickPayload) {
			if onClick != nil {
				onClick(payload)
			}
		})
		if err != nil {
			log.Printf("Error adding marker for event %s: %v", feature.EventId(), err)
			continue
		}
		m.entries = append(m.entries, markerEntry{handle: handle, feature: feature})
	}
}

func (m *MarkerSet) Len() int {
	return len(m.entries)
}

// FeatureByHandle recovers the feature behind a rendered marker.
func (m *MarkerSet) FeatureByHandle(handle MarkerHandle) (types.EventFeature, bool) {
	for _, entry := range m.entries {
		if entry.handle == handle {
			return entry.feature, true
		}
	}
	return types.EventFeature{}, false
}

func clickPayloadFor(feature types.EventFeature) ClickPayload {
	props := map[string]interface{}{}
	encoded, err := json.Marshal(feature.Properties)
	if err == nil {
		_ = json.Unmarshal(encoded, &props)
	}
	return ClickPayload{Properties: props, Lng: feature.Lng(), Lat: feature.Lat()}
}

// StyleForCategory derives pin styling from the category: its configured
// hex color, a lightened variant for hover, and its icon. Bad or missing
// colors fall back to the backend's default pin color.
func StyleForCategory(category types.Category) MarkerStyle {
	hex := category.ColorHex
	base, err := colorful.Hex(hex)
	if err != nil {
		hex = helpers.DEFAULT_PIN_COLOR
		base, _ = colorful.Hex(hex)
	}

	// blend towards white in Hcl space for the hover state
	white, _ := colorful.Hex("#FFFFFF")
	hover := base.BlendHcl(white, 0.3).Clamped()

	return MarkerStyle{
		Color:      hex,
		HoverColor: hover.Hex(),
		Icon:       category.Icon,
	}
}

// ClusterBounds computes the bounding box of a cluster's member points plus
// a zoom level that frames them, for expand-on-click.
func ClusterBounds(points [][2]float64) (minLng, minLat, maxLng, maxLat, zoom float64) {
	if len(points) == 0 {
		return 0, 0, 0, 0, 0
	}

	rect := s2.EmptyRect()
	for _, p := range points {
		rect = rect.AddPoint(s2.LatLngFromDegrees(p[1], p[0]))
	}

	minLng = rect.Lo().Lng.Degrees()
	minLat = rect.Lo().Lat.Degrees()
	maxLng = rect.Hi().Lng.Degrees()
	maxLat = rect.Hi().Lat.Degrees()

	span := math.Max(rect.Size().Lng.Degrees(), rect.Size().Lat.Degrees())
	if span <= 0 {
		return minLng, minLat, maxLng, maxLat, 16
	}
	zoom = math.Floor(math.Log2(360 / span))
	if zoom < 0 {
		zoom = 0
	}
	if zoom > 16 {
		zoom = 16
	}
	return minLng, minLat, maxLng, maxLat, zoom
}
