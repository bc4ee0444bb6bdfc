package types

import (
	"encoding/json"
	"fmt"
)

// City mirrors GET /api/cities/{slug}/. The id is what tags new events
// with their city on creation.
type City struct {
	Id          string   `json:"id,omitempty"`
	Name        string   `json:"name,omitempty"`
	Slug        string   `json:"slug,omitempty"`
	State       string   `json:"state,omitempty"`
	Country     string   `json:"country,omitempty"`
	ZoomDefault float64  `json:"zoom_default,omitempty"`
	IsActive    bool     `json:"is_active,omitempty"`
	CenterLng   *float64 `json:"center_lng,omitempty"`
	CenterLat   *float64 `json:"center_lat,omitempty"`
}

// UnmarshalJSON tolerates the city arriving as a string-encoded object, the
// same as other nested event properties.
func (c *City) UnmarshalJSON(data []byte) error {
	data, err := unwrapStringEncoded(data)
	if err != nil {
		return fmt.Errorf("city: %w", err)
	}
	type alias City
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("city: %w", err)
	}
	*c = City(a)
	return nil
}
