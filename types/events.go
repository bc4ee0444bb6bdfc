package types

import (
	"encoding/json"
	"fmt"
)

// Category carries the visual styling metadata used for map pins.
type Category struct {
	Id          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Icon        string `json:"icon,omitempty"`
	ColorHex    string `json:"color_hex,omitempty"`
	Description string `json:"description,omitempty"`
}

// UnmarshalJSON accepts either a JSON object or a JSON string containing
// one. The backend sends objects, but click payloads recovered from the map
// layer arrive with nested fields re-encoded as strings.
func (c *Category) UnmarshalJSON(data []byte) error {
	data, err := unwrapStringEncoded(data)
	if err != nil {
		return fmt.Errorf("category: %w", err)
	}
	type alias Category
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("category: %w", err)
	}
	*c = Category(a)
	return nil
}

type Tag struct {
	Id   string `json:"id,omitempty"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// UnmarshalJSON accepts {name: ...} objects or plain strings.
func (t *Tag) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Tag{Name: s}
		return nil
	}
	type alias Tag
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("tag: %w", err)
	}
	*t = Tag(a)
	return nil
}

// TagList accepts a JSON array or a string-encoded JSON array.
type TagList []Tag

func (l *TagList) UnmarshalJSON(data []byte) error {
	data, err := unwrapStringEncoded(data)
	if err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	var tags []Tag
	if err := json.Unmarshal(data, &tags); err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	*l = tags
	return nil
}

// InteractionCounts maps interaction kind (GOING, INTERESTED, SAVED,
// REPORTED) to its count.
type InteractionCounts map[string]int

func (ic *InteractionCounts) UnmarshalJSON(data []byte) error {
	data, err := unwrapStringEncoded(data)
	if err != nil {
		return fmt.Errorf("interaction_counts: %w", err)
	}
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("interaction_counts: %w", err)
	}
	*ic = m
	return nil
}

// EventProperties is the property bag of an event feature, normalized.
// The backend's serializer keeps the identifier at the feature level, so
// Id here may be empty until Normalize overlays it.
type EventProperties struct {
	Id                string            `json:"id,omitempty"`
	Title             string            `json:"title"`
	Description       string            `json:"description,omitempty"`
	OrganizerName     string            `json:"organizer_name,omitempty"`
	Category          Category          `json:"category,omitempty"`
	Tags              TagList           `json:"tags,omitempty"`
	City              City              `json:"city,omitempty"`
	Address           string            `json:"address,omitempty"`
	Neighborhood      string            `json:"neighborhood,omitempty"`
	StartDatetime     string            `json:"start_datetime,omitempty"`
	EndDatetime       string            `json:"end_datetime,omitempty"`
	IsFree            bool              `json:"is_free"`
	PriceInfo         string            `json:"price_info,omitempty"`
	InstagramUrl      string            `json:"instagram_url,omitempty"`
	TicketUrl         string            `json:"ticket_url,omitempty"`
	CoverImageUrl     string            `json:"cover_image_url,omitempty"`
	MaxCapacity       int               `json:"max_capacity,omitempty"`
	IsRecurring       bool              `json:"is_recurring,omitempty"`
	Status            string            `json:"status,omitempty"`
	IsVerified        bool              `json:"is_verified,omitempty"`
	ViewCount         int               `json:"view_count,omitempty"`
	InteractionCounts InteractionCounts `json:"interaction_counts,omitempty"`
	CreatedAt         string            `json:"created_at,omitempty"`
}

type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// EventFeature is a single point-located event as delivered by the backend.
type EventFeature struct {
	Type       string          `json:"type"`
	Id         string          `json:"id,omitempty"`
	Geometry   Geometry        `json:"geometry"`
	Properties EventProperties `json:"properties"`
}

// Lng returns the feature's longitude, or 0 for a non-point geometry.
func (f *EventFeature) Lng() float64 {
	if len(f.Geometry.Coordinates) < 2 {
		return 0
	}
	return f.Geometry.Coordinates[0]
}

func (f *EventFeature) Lat() float64 {
	if len(f.Geometry.Coordinates) < 2 {
		return 0
	}
	return f.Geometry.Coordinates[1]
}

// EventId resolves the event identifier, checking the feature level first
// and the property bag second.
func (f *EventFeature) EventId() string {
	if f.Id != "" {
		return f.Id
	}
	return f.Properties.Id
}

// Normalize overlays the feature-level identifier into the property bag so
// downstream consumers only need to look in one place.
func (f *EventFeature) Normalize() {
	if f.Properties.Id == "" && f.Id != "" {
		f.Properties.Id = f.Id
	}
	if f.Id == "" && f.Properties.Id != "" {
		f.Id = f.Properties.Id
	}
}

type FeatureCollection struct {
	Type     string         `json:"type"`
	Features []EventFeature `json:"features"`
}

func NewFeatureCollection(features []EventFeature) *FeatureCollection {
	if features == nil {
		features = []EventFeature{}
	}
	return &FeatureCollection{Type: "FeatureCollection", Features: features}
}

// Normalize normalizes every contained feature.
func (fc *FeatureCollection) Normalize() {
	if fc.Type == "" {
		fc.Type = "FeatureCollection"
	}
	for i := range fc.Features {
		fc.Features[i].Normalize()
	}
}

// InteractionResult is the outcome of posting an interaction toggle.
type InteractionResult struct {
	Kind    string
	Removed bool
	Detail  string
}

// ValidationError carries backend field errors from a 400 response.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	msg := ""
	for field, errs := range e.Fields {
		for _, fe := range errs {
			if msg != "" {
				msg += "; "
			}
			msg += field + ": " + fe
		}
	}
	if msg == "" {
		msg = "validation failed"
	}
	return msg
}

// unwrapStringEncoded peels one layer of string encoding off a JSON value:
// `"{\"a\":1}"` becomes `{"a":1}`. Already-structural values pass through.
func unwrapStringEncoded(data []byte) ([]byte, error) {
	if len(data) == 0 || data[0] != '"' {
		return data, nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return []byte(s), nil
}
