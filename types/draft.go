package types

import (
	"github.com/go-playground/validator/v10"
)

var draftValidator = validator.New()

// DraftEvent is the creation-modal form state. It only lives while the
// modal is open and is fully reset when it closes.
type DraftEvent struct {
	Title         string   `json:"title" validate:"required,max=200"`
	Description   string   `json:"description" validate:"required"`
	OrganizerName string   `json:"organizer_name" validate:"omitempty,max=120"`
	CategoryId    string   `json:"category" validate:"required"`
	Lng           *float64 `json:"lng"`
	Lat           *float64 `json:"lat"`
	Address       string   `json:"address"`
	Neighborhood  string   `json:"neighborhood"`
	CityId        string   `json:"city"`
	StartDatetime string   `json:"start_datetime" validate:"required"`
	EndDatetime   string   `json:"end_datetime"`
	IsFree        bool     `json:"is_free"`
	PriceInfo     string   `json:"price_info"`
	InstagramUrl  string   `json:"instagram_url" validate:"omitempty,url"`
	TicketUrl     string   `json:"ticket_url" validate:"omitempty,url"`
	MaxCapacity   int      `json:"max_capacity" validate:"omitempty,min=1"`
	Timezone      string   `json:"-"`

	TagNames []string `json:"tag_names" validate:"max=5"`

	CoverImageName string `json:"-"`
	CoverImage     []byte `json:"-"`
}

// HasLocation reports whether a point has been selected. Submission is
// blocked until both coordinates are present.
func (d *DraftEvent) HasLocation() bool {
	return d.Lng != nil && d.Lat != nil
}

func (d *DraftEvent) SetLocation(lng, lat float64) {
	d.Lng = &lng
	d.Lat = &lat
}

func (d *DraftEvent) ClearLocation() {
	d.Lng = nil
	d.Lat = nil
}

// Validate runs struct-tag validation and maps failures to per-field
// messages keyed by the lowercased field name.
func (d *DraftEvent) Validate() map[string]string {
	err := draftValidator.Struct(d)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"form": err.Error()}
	}
	out := map[string]string{}
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			out[fe.Field()] = "this field is required"
		case "max":
			out[fe.Field()] = "value is too long"
		case "min":
			out[fe.Field()] = "value is too small"
		case "url":
			out[fe.Field()] = "must be a valid URL"
		default:
			out[fe.Field()] = "invalid value"
		}
	}
	return out
}
