package app

import (
	"fmt"
	"sync"

	"github.com/joaovasc10/bora/types"
)

// fakeNotifier records every notification for assertions.
type fakeNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
	infos     []string
}

func (n *fakeNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *fakeNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

func (n *fakeNotifier) Info(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.infos = append(n.infos, msg)
}

func (n *fakeNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := []string{}
	out = append(out, n.successes...)
	out = append(out, n.errors...)
	out = append(out, n.infos...)
	return out
}

type fakePanel struct {
	views  []DetailView
	hidden int
}

func (p *fakePanel) Show(view DetailView) { p.views = append(p.views, view) }
func (p *fakePanel) Hide()                { p.hidden++ }

func (p *fakePanel) last() DetailView {
	if len(p.views) == 0 {
		return DetailView{}
	}
	return p.views[len(p.views)-1]
}

type fakeClipboard struct {
	fail  bool
	texts []string
}

func (c *fakeClipboard) WriteText(text string) error {
	if c.fail {
		return fmt.Errorf("clipboard unavailable")
	}
	c.texts = append(c.texts, text)
	return nil
}

type fakeModal struct {
	shown       int
	hidden      int
	submitting  []bool
	fieldErrors map[string]string
	formErrors  []string
	location    []string
	suggestions [][]types.GeocodeResult
	tags        [][]string
}

func newFakeModal() *fakeModal {
	return &fakeModal{fieldErrors: map[string]string{}}
}

func (m *fakeModal) Show()                      { m.shown++ }
func (m *fakeModal) Hide()                      { m.hidden++ }
func (m *fakeModal) SetSubmitting(s bool)       { m.submitting = append(m.submitting, s) }
func (m *fakeModal) SetFieldError(f, msg string) { m.fieldErrors[f] = msg }
func (m *fakeModal) SetFormError(msg string)    { m.formErrors = append(m.formErrors, msg) }
func (m *fakeModal) SetLocationText(text string) { m.location = append(m.location, text) }
func (m *fakeModal) SetSuggestions(r []types.GeocodeResult) {
	m.suggestions = append(m.suggestions, r)
}
func (m *fakeModal) SetImagePreview(string, []byte) {}
func (m *fakeModal) SetDescriptionCount(int)        {}
func (m *fakeModal) SetPriceVisible(bool)           {}
func (m *fakeModal) RenderTags(tags []string)       { m.tags = append(m.tags, tags) }
