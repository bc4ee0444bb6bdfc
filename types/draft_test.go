package types

import "testing"

func validDraft() *DraftEvent {
	d := &DraftEvent{
		Title:         "Sarau na Redenção",
		Description:   "Poesia e música ao pôr do sol.",
		CategoryId:    "cat-1",
		StartDatetime: "2025-09-12T18:00:00Z",
		IsFree:        true,
	}
	d.SetLocation(-51.22, -30.04)
	return d
}

func TestDraftValidatePasses(t *testing.T) {
	if errs := validDraft().Validate(); errs != nil {
		t.Errorf("unexpected field errors: %v", errs)
	}
}

func TestDraftValidateRequiredFields(t *testing.T) {
	d := &DraftEvent{}
	errs := d.Validate()
	if errs == nil {
		t.Fatal("expected field errors")
	}
	for _, field := range []string{"Title", "Description", "CategoryId", "StartDatetime"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("missing error for %s, got %v", field, errs)
		}
	}
}

func TestDraftValidateBadUrl(t *testing.T) {
	d := validDraft()
	d.TicketUrl = "not a url"
	errs := d.Validate()
	if errs["TicketUrl"] == "" {
		t.Errorf("expected TicketUrl error, got %v", errs)
	}
}

func TestDraftValidateTooManyTags(t *testing.T) {
	d := validDraft()
	d.TagNames = []string{"a", "b", "c", "d", "e", "f"}
	errs := d.Validate()
	if errs["TagNames"] == "" {
		t.Errorf("expected TagNames error, got %v", errs)
	}
}

func TestDraftLocation(t *testing.T) {
	d := &DraftEvent{}
	if d.HasLocation() {
		t.Error("fresh draft should have no location")
	}
	d.SetLocation(-51.0, -30.0)
	if !d.HasLocation() {
		t.Error("expected location after SetLocation")
	}
	d.ClearLocation()
	if d.HasLocation() {
		t.Error("expected no location after ClearLocation")
	}
}
