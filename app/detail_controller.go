package app

import (
	"context"
	"fmt"
	"log"

	"github.com/joaovasc10/bora/helpers"
	"github.com/joaovasc10/bora/interfaces"
	"github.com/joaovasc10/bora/types"
)

// DetailPanel is the slide-in detail surface. Showing and hiding markup is
// outside this module; the controller only decides what it displays.
type DetailPanel interface {
	Show(view DetailView)
	Hide()
}

// Clipboard is the share-link boundary. WriteText may fail where clipboard
// access is unavailable; the controller falls back to displaying the URL.
type Clipboard interface {
	WriteText(text string) error
}

// DetailView is the fully normalized, display-ready event detail.
type DetailView struct {
	EventId        string
	Title          string
	Description    string
	OrganizerName  string
	CategoryName   string
	CategoryIcon   string
	Tags           []string
	Address        string
	Neighborhood   string
	CityName       string
	DateDisplay    string
	IsFree         bool
	PriceInfo      string
	InstagramUrl   string
	TicketUrl      string
	CoverImageUrl  string
	Counts         map[string]int
	Lng            float64
	Lat            float64
	ActionsEnabled bool
}

// DetailController renders a selected event and performs the idempotent
// interaction toggles against the backend.
type DetailController struct {
	session       interfaces.SessionServiceInterface
	events        interfaces.EventsServiceInterface
	panel         DetailPanel
	clipboard     Clipboard
	notify        Notifier
	publicBaseUrl string

	currentId string
	isOpen    bool
}

func NewDetailController(session interfaces.SessionServiceInterface, events interfaces.EventsServiceInterface, panel DetailPanel, clipboard Clipboard, notify Notifier, publicBaseUrl string) *DetailController {
	return &DetailController{
		session:       session,
		events:        events,
		panel:         panel,
		clipboard:     clipboard,
		notify:        notify,
		publicBaseUrl: publicBaseUrl,
	}
}

// Wire subscribes the controller to pin-clicked signals.
func (c *DetailController) Wire(ctx context.Context, bus *Bus) error {
	return bus.SubscribePinClicked(ctx, func(payload PinClickedPayload) {
		c.OpenDetail(payload.Properties, payload.Lng, payload.Lat)
	})
}

// OpenDetail normalizes the raw property bag and reveals the detail panel.
// Without a resolvable event id the detail still renders read-only; only
// the action buttons require an id.
func (c *DetailController) OpenDetail(rawProperties map[string]interface{}, lng, lat float64) {
	props, err := types.NormalizeProperties(rawProperties)
	if err != nil {
		log.Printf("Error normalizing event properties: %v", err)
		c.notify.Error("Não foi possível abrir o evento.")
		return
	}

	tags := make([]string, 0, len(props.Tags))
	for _, tag := range props.Tags {
		tags = append(tags, tag.Name)
	}

	counts := map[string]int{}
	for kind, count := range props.InteractionCounts {
		counts[kind] = count
	}

	view := DetailView{
		EventId:        props.Id,
		Title:          props.Title,
		Description:    props.Description,
		OrganizerName:  props.OrganizerName,
		CategoryName:   props.Category.Name,
		CategoryIcon:   props.Category.Icon,
		Tags:           tags,
		Address:        props.Address,
		Neighborhood:   props.Neighborhood,
		CityName:       props.City.Name,
		DateDisplay:    helpers.FormatDateRange(props.StartDatetime, props.EndDatetime),
		IsFree:         props.IsFree,
		PriceInfo:      props.PriceInfo,
		InstagramUrl:   props.InstagramUrl,
		TicketUrl:      props.TicketUrl,
		CoverImageUrl:  props.CoverImageUrl,
		Counts:         counts,
		Lng:            lng,
		Lat:            lat,
		ActionsEnabled: props.Id != "",
	}

	c.currentId = props.Id
	c.isOpen = true
	c.panel.Show(view)
}

// CloseDetail hides the panel. Reopening afterwards works normally.
func (c *DetailController) CloseDetail() {
	c.isOpen = false
	c.panel.Hide()
}

func (c *DetailController) IsOpen() bool {
	return c.isOpen
}

// Interact posts an interaction toggle for the open event. Counts are not
// adjusted locally; they refresh on the next full data reload.
func (c *DetailController) Interact(ctx context.Context, kind string) error {
	if c.currentId == "" {
		// local precondition failure, never sent to the backend
		c.notify.Error("Este evento não pode receber interações.")
		return interfaces.ErrMissingEventId
	}
	if !c.session.IsAuthenticated() {
		c.notify.Info("Entre para interagir com eventos.")
		return interfaces.ErrNotAuthenticated
	}

	result, err := c.events.Interact(ctx, c.currentId, kind)
	if err != nil {
		log.Printf("Error toggling interaction %s: %v", kind, err)
		c.notify.Error("Não foi possível registrar a interação.")
		return err
	}

	if result.Removed {
		c.notify.Info(interactionLabel(kind) + " removido.")
	} else {
		c.notify.Success(interactionLabel(kind) + " registrado!")
	}
	return nil
}

// Share copies the canonical event URL to the clipboard, or shows the URL
// when clipboard access is unavailable.
func (c *DetailController) Share() {
	if c.currentId == "" {
		c.notify.Error("Este evento não tem um link compartilhável.")
		return
	}
	shareUrl := fmt.Sprintf("%s/events/%s", c.publicBaseUrl, c.currentId)
	if err := c.clipboard.WriteText(shareUrl); err != nil {
		c.notify.Info("Link do evento: " + shareUrl)
		return
	}
	c.notify.Success("Link copiado!")
}

func interactionLabel(kind string) string {
	switch kind {
	case helpers.INTERACTION_GOING:
		return "Eu vou"
	case helpers.INTERACTION_INTERESTED:
		return "Interesse"
	case helpers.INTERACTION_SAVED:
		return "Evento salvo"
	case helpers.INTERACTION_REPORTED:
		return "Denúncia"
	default:
		return kind
	}
}
