package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/joaovasc10/bora/interfaces"
	"github.com/joaovasc10/bora/test_helpers"
	"github.com/joaovasc10/bora/types"
)

func newDetailController(events *test_helpers.MockEventsService, session *test_helpers.MockSessionService) (*DetailController, *fakePanel, *fakeClipboard, *fakeNotifier) {
	panel := &fakePanel{}
	clipboard := &fakeClipboard{}
	notify := &fakeNotifier{}
	c := NewDetailController(session, events, panel, clipboard, notify, "https://bora.app")
	return c, panel, clipboard, notify
}

func TestOpenDetailNormalizesStringEncodedProperties(t *testing.T) {
	c, panel, _, _ := newDetailController(&test_helpers.MockEventsService{}, &test_helpers.MockSessionService{})

	c.OpenDetail(map[string]interface{}{
		"id":             "ev-1",
		"title":          "Feira do Bonfim",
		"category":       `{"name":"Mercado","slug":"market","icon":"🛍️"}`,
		"tags":           `[{"name":"vintage"}]`,
		"start_datetime": "2025-09-12T10:00:00Z",
		"is_free":        true,
	}, -51.23, -30.03)

	if !c.IsOpen() {
		t.Fatal("detail should be open")
	}
	view := panel.last()
	if view.Title != "Feira do Bonfim" {
		t.Errorf("title = %q", view.Title)
	}
	if view.CategoryName != "Mercado" {
		t.Errorf("string-encoded category was not normalized: %q", view.CategoryName)
	}
	if len(view.Tags) != 1 || view.Tags[0] != "vintage" {
		t.Errorf("tags = %v", view.Tags)
	}
	if !view.ActionsEnabled {
		t.Error("actions should be enabled when the id resolves")
	}
	if view.DateDisplay == "" {
		t.Error("date display is empty")
	}
}

func TestOpenDetailWithoutIdIsReadOnly(t *testing.T) {
	c, panel, _, _ := newDetailController(&test_helpers.MockEventsService{}, &test_helpers.MockSessionService{})

	c.OpenDetail(map[string]interface{}{"title": "Evento sem id"}, 0, 0)

	view := panel.last()
	if view.ActionsEnabled {
		t.Error("actions must be disabled without an event id")
	}
}

func TestInteractWithoutIdNeverReachesBackend(t *testing.T) {
	events := &test_helpers.MockEventsService{
		InteractFunc: func(ctx context.Context, eventId, kind string) (*types.InteractionResult, error) {
			t.Fatal("interaction must not be sent without an id")
			return nil, nil
		},
	}
	c, _, _, notify := newDetailController(events, &test_helpers.MockSessionService{
		IsAuthenticatedFunc: func() bool { return true },
	})
	c.OpenDetail(map[string]interface{}{"title": "Evento sem id"}, 0, 0)

	err := c.Interact(context.Background(), "GOING")
	if !errors.Is(err, interfaces.ErrMissingEventId) {
		t.Errorf("err = %v", err)
	}
	if len(notify.errors) == 0 {
		t.Error("expected an error notification")
	}
}

func TestInteractRequiresLogin(t *testing.T) {
	events := &test_helpers.MockEventsService{
		InteractFunc: func(ctx context.Context, eventId, kind string) (*types.InteractionResult, error) {
			t.Fatal("interaction must not be sent unauthenticated")
			return nil, nil
		},
	}
	c, _, _, notify := newDetailController(events, &test_helpers.MockSessionService{
		IsAuthenticatedFunc: func() bool { return false },
	})
	c.OpenDetail(map[string]interface{}{"id": "ev-1", "title": "Show"}, 0, 0)

	err := c.Interact(context.Background(), "GOING")
	if !errors.Is(err, interfaces.ErrNotAuthenticated) {
		t.Errorf("err = %v", err)
	}
	if len(notify.infos) == 0 {
		t.Error("expected a login prompt")
	}
}

func TestInteractToggleAlternatesWording(t *testing.T) {
	removed := false
	events := &test_helpers.MockEventsService{
		InteractFunc: func(ctx context.Context, eventId, kind string) (*types.InteractionResult, error) {
			removed = !removed
			return &types.InteractionResult{Kind: kind, Removed: !removed}, nil
		},
	}
	c, _, _, notify := newDetailController(events, &test_helpers.MockSessionService{
		IsAuthenticatedFunc: func() bool { return true },
	})
	c.OpenDetail(map[string]interface{}{"id": "ev-1", "title": "Show"}, 0, 0)

	// first toggle adds
	if err := c.Interact(context.Background(), "GOING"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notify.successes) != 1 || !strings.Contains(notify.successes[0], "registrado") {
		t.Errorf("successes = %v", notify.successes)
	}

	// second toggle removes
	if err := c.Interact(context.Background(), "GOING"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notify.infos) != 1 || !strings.Contains(notify.infos[0], "removido") {
		t.Errorf("infos = %v", notify.infos)
	}
}

func TestShareCopiesCanonicalUrl(t *testing.T) {
	c, _, clipboard, notify := newDetailController(&test_helpers.MockEventsService{}, &test_helpers.MockSessionService{})
	c.OpenDetail(map[string]interface{}{"id": "ev-1", "title": "Show"}, 0, 0)

	c.Share()

	if len(clipboard.texts) != 1 || clipboard.texts[0] != "https://bora.app/events/ev-1" {
		t.Errorf("copied %v", clipboard.texts)
	}
	if len(notify.successes) != 1 {
		t.Errorf("successes = %v", notify.successes)
	}
}

func TestShareFallsBackWhenClipboardFails(t *testing.T) {
	c, _, clipboard, notify := newDetailController(&test_helpers.MockEventsService{}, &test_helpers.MockSessionService{})
	clipboard.fail = true
	c.OpenDetail(map[string]interface{}{"id": "ev-1", "title": "Show"}, 0, 0)

	c.Share()

	if len(notify.infos) != 1 || !strings.Contains(notify.infos[0], "https://bora.app/events/ev-1") {
		t.Errorf("fallback should show the URL, got %v", notify.infos)
	}
}

func TestCloseAndReopen(t *testing.T) {
	c, panel, _, _ := newDetailController(&test_helpers.MockEventsService{}, &test_helpers.MockSessionService{})

	c.OpenDetail(map[string]interface{}{"id": "ev-1", "title": "Show"}, 0, 0)
	c.CloseDetail()
	if c.IsOpen() {
		t.Error("detail should be closed")
	}
	c.OpenDetail(map[string]interface{}{"id": "ev-2", "title": "Outro"}, 0, 0)
	if !c.IsOpen() || panel.last().EventId != "ev-2" {
		t.Errorf("reopen failed: %+v", panel.last())
	}
}
