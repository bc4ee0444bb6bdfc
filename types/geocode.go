package types

// GeocodeResult is one candidate from a forward geocode lookup.
type GeocodeResult struct {
	PlaceName string  `json:"place_name"`
	Lng       float64 `json:"lng"`
	Lat       float64 `json:"lat"`
}
