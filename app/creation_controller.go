package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/ringsaturn/tzf"

	"github.com/joaovasc10/bora/helpers"
	"github.com/joaovasc10/bora/interfaces"
	"github.com/joaovasc10/bora/types"
)

// CreationModal is the event-creation form surface. Markup and show/hide
// mechanics live outside this module.
type CreationModal interface {
	Show()
	Hide()
	SetSubmitting(submitting bool)
	SetFieldError(field, msg string)
	SetFormError(msg string)
	SetLocationText(text string)
	SetSuggestions(results []types.GeocodeResult)
	SetImagePreview(name string, data []byte)
	SetDescriptionCount(count int)
	SetPriceVisible(visible bool)
	RenderTags(tags []string)
}

// Geolocator is the current-position capability; it may be absent.
type Geolocator interface {
	Current(ctx context.Context) (lng, lat float64, err error)
}

const maxCoverImageBytes = 5 * 1024 * 1024

const defaultSearchDebounce = 300 * time.Millisecond

// CreationController runs the event-creation state machine: closed → open
// (auth required) → draft sub-interactions → submit → closed on success.
// Draft state is reset on every close, cancel included.
type CreationController struct {
	session    interfaces.SessionServiceInterface
	events     interfaces.EventsServiceInterface
	geo        interfaces.GeoServiceInterface
	city       interfaces.CityServiceInterface
	modal      CreationModal
	geolocator Geolocator
	notify     Notifier
	app        *App
	detail     *DetailController
	citySlug   string

	draft  *types.DraftEvent
	tags   *helpers.TagSet
	isOpen bool

	cachedCity *types.City

	debounceMu    sync.Mutex
	debounce      *time.Timer
	DebounceDelay time.Duration

	tzOnce   sync.Once
	tzFinder tzf.F
}

func NewCreationController(a *App, detail *DetailController, geo interfaces.GeoServiceInterface, city interfaces.CityServiceInterface, modal CreationModal, geolocator Geolocator, citySlug string) *CreationController {
	return &CreationController{
		session:       a.Session,
		events:        a.Events,
		geo:           geo,
		city:          city,
		modal:         modal,
		geolocator:    geolocator,
		notify:        a.Notify,
		app:           a,
		detail:        detail,
		citySlug:      citySlug,
		draft:         &types.DraftEvent{},
		tags:          helpers.NewTagSet(),
		DebounceDelay: defaultSearchDebounce,
	}
}

// Open transitions to the open state. Unauthenticated attempts are
// rejected with a prompt; the modal never shows.
func (c *CreationController) Open() error {
	if !c.session.IsAuthenticated() {
		c.notify.Info("Entre para criar um evento.")
		return interfaces.ErrNotAuthenticated
	}
	c.isOpen = true
	c.modal.Show()
	return nil
}

// Close cancels the flow and resets the draft.
func (c *CreationController) Close() {
	c.isOpen = false
	c.modal.Hide()
	c.resetDraft()
}

func (c *CreationController) IsOpen() bool {
	return c.isOpen
}

// Draft exposes the form state for field binding.
func (c *CreationController) Draft() *types.DraftEvent {
	return c.draft
}

func (c *CreationController) SetFree(free bool) {
	c.draft.IsFree = free
	c.modal.SetPriceVisible(!free)
}

func (c *CreationController) SetDescription(text string) {
	c.draft.Description = text
	c.modal.SetDescriptionCount(len([]rune(text)))
}

// SelectLocation records a picked point (map click or suggestion), reverse
// geocodes it for display and resolves the point's timezone.
func (c *CreationController) SelectLocation(ctx context.Context, lng, lat float64) {
	c.draft.SetLocation(lng, lat)
	c.draft.Timezone = c.timezoneAt(lng, lat)

	address, err := c.geo.ReverseGeocode(ctx, lng, lat)
	if err != nil || address == "" {
		if err != nil {
			log.Printf("Error reverse geocoding: %v", err)
		}
		address = fmt.Sprintf("%.5f, %.5f", lat, lng)
	}
	c.draft.Address = address
	c.modal.SetLocationText(address)
}

// UseCurrentLocation selects the device position. Missing geolocation
// degrades to a message without blocking the rest of the form.
func (c *CreationController) UseCurrentLocation(ctx context.Context) {
	if c.geolocator == nil {
		c.notify.Info("Localização não disponível neste dispositivo.")
		return
	}
	lng, lat, err := c.geolocator.Current(ctx)
	if err != nil {
		log.Printf("Error reading geolocation: %v", err)
		c.notify.Info("Não foi possível obter sua localização.")
		return
	}
	c.SelectLocation(ctx, lng, lat)
}

// SearchLocation forward-geocodes as the user types, debounced. A new
// keystroke cancels the pending trigger only; an already-dispatched lookup
// still completes.
func (c *CreationController) SearchLocation(ctx context.Context, query string) {
	c.debounceMu.Lock()
	defer c.debounceMu.Unlock()
	if c.debounce != nil {
		c.debounce.Stop()
	}
	c.debounce = time.AfterFunc(c.DebounceDelay, func() {
		results, err := c.geo.ForwardGeocode(ctx, query)
		if err != nil {
			log.Printf("Error searching location %q: %v", query, err)
			return
		}
		c.modal.SetSuggestions(results)
	})
}

// ChooseSuggestion applies a forward-geocode candidate.
func (c *CreationController) ChooseSuggestion(result types.GeocodeResult) {
	c.draft.SetLocation(result.Lng, result.Lat)
	c.draft.Timezone = c.timezoneAt(result.Lng, result.Lat)
	c.draft.Address = result.PlaceName
	c.modal.SetLocationText(result.PlaceName)
	c.modal.SetSuggestions(nil)
}

func (c *CreationController) AddTag(name string) {
	if _, err := c.tags.Add(name); err != nil {
		c.notify.Error(err.Error())
		return
	}
	c.modal.RenderTags(c.tags.Items())
}

func (c *CreationController) RemoveTag(name string) {
	c.tags.Remove(name)
	c.modal.RenderTags(c.tags.Items())
}

func (c *CreationController) Tags() []string {
	return c.tags.Items()
}

// LoadCoverImage reads the picked file for local preview. Nothing is
// uploaded until submit.
func (c *CreationController) LoadCoverImage(name string, r io.Reader) error {
	data, err := io.ReadAll(io.LimitReader(r, maxCoverImageBytes+1))
	if err != nil {
		return fmt.Errorf("error reading cover image: %w", err)
	}
	if len(data) > maxCoverImageBytes {
		c.modal.SetFieldError("cover_image", "A imagem deve ter no máximo 5 MB.")
		return fmt.Errorf("cover image exceeds %d bytes", maxCoverImageBytes)
	}
	c.draft.CoverImageName = name
	c.draft.CoverImage = data
	c.modal.SetImagePreview(name, data)
	return nil
}

// Submit validates the draft and performs the multipart POST. The modal
// stays open on any failure; the submit control is re-enabled on every
// path.
func (c *CreationController) Submit(ctx context.Context) error {
	c.modal.SetSubmitting(true)
	defer c.modal.SetSubmitting(false)

	if !c.draft.HasLocation() {
		c.modal.SetFieldError("location", "Selecione um local para o evento.")
		return interfaces.ErrNoLocation
	}

	c.draft.TagNames = c.tags.Items()

	if fieldErrs := c.draft.Validate(); fieldErrs != nil {
		for field, msg := range fieldErrs {
			c.modal.SetFieldError(field, msg)
		}
		return fmt.Errorf("draft validation failed")
	}

	if c.draft.CityId == "" {
		if city := c.resolveCity(ctx); city != nil {
			c.draft.CityId = city.Id
		}
	}

	created, err := c.events.CreateEvent(ctx, c.draft)
	if err != nil {
		if ve, ok := err.(*types.ValidationError); ok {
			c.modal.SetFormError(ve.Error())
			return err
		}
		log.Printf("Error creating event: %v", err)
		c.notify.Error("Não foi possível criar o evento. Tente novamente.")
		return err
	}

	lng, lat := created.Lng(), created.Lat()
	c.isOpen = false
	c.modal.Hide()
	c.resetDraft()
	c.notify.Success("Evento criado!")

	// the normal pipeline makes the new pin appear; marker rendering is
	// synchronous, so the detail can open right after
	c.app.LoadAndRenderEvents(ctx)
	c.app.Surface.FlyTo(lng, lat, 15)
	if c.detail != nil {
		props := map[string]interface{}{}
		if raw, merr := featurePropertiesMap(created); merr == nil {
			props = raw
		}
		c.detail.OpenDetail(props, lng, lat)
	}
	return nil
}

func (c *CreationController) resolveCity(ctx context.Context) *types.City {
	if c.cachedCity != nil {
		return c.cachedCity
	}
	if c.city == nil || c.citySlug == "" {
		return nil
	}
	city, err := c.city.GetCity(ctx, c.citySlug)
	if err != nil {
		log.Printf("Error resolving city %q: %v", c.citySlug, err)
		return nil
	}
	c.cachedCity = city
	return city
}

func (c *CreationController) timezoneAt(lng, lat float64) string {
	c.tzOnce.Do(func() {
		finder, err := tzf.NewDefaultFinder()
		if err != nil {
			log.Printf("Error initializing timezone finder: %v", err)
			return
		}
		c.tzFinder = finder
	})
	if c.tzFinder == nil {
		return ""
	}
	return c.tzFinder.GetTimezoneName(lng, lat)
}

func featurePropertiesMap(feature *types.EventFeature) (map[string]interface{}, error) {
	encoded, err := json.Marshal(feature.Properties)
	if err != nil {
		return nil, err
	}
	props := map[string]interface{}{}
	if err := json.Unmarshal(encoded, &props); err != nil {
		return nil, err
	}
	return props, nil
}

func (c *CreationController) resetDraft() {
	c.draft = &types.DraftEvent{}
	c.tags.Clear()
	c.modal.RenderTags(nil)
	c.modal.SetImagePreview("", nil)
	c.modal.SetLocationText("")
	c.modal.SetSuggestions(nil)
	c.modal.SetDescriptionCount(0)
}
