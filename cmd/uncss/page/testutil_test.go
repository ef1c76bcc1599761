package page

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"uncss/cmd/uncss/ui"
	"uncss/internal/clipboard"
	"uncss/internal/reduction"
	"uncss/internal/submission"
)

// blockingReducer holds each call until the test releases it.
type blockingReducer struct {
	mu      sync.Mutex
	calls   []submission.Input
	release chan reply
}

type reply struct {
	out string
	err error
}

func newBlockingReducer() *blockingReducer {
	return &blockingReducer{release: make(chan reply)}
}

func (r *blockingReducer) Reduce(ctx context.Context, html, css string) (string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, submission.Input{HTML: html, CSS: css})
	r.mu.Unlock()

	select {
	case rep := <-r.release:
		return rep.out, rep.err
	case <-ctx.Done():
		return "", reduction.Transport(ctx.Err())
	}
}

func (r *blockingReducer) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// fakeClipboard records writes and fails when err is set.
type fakeClipboard struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (c *fakeClipboard) write(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.texts = append(c.texts, text)
	return c.err
}

type testPage struct {
	Model
	reducer *blockingReducer
	clip    *fakeClipboard
}

// NewTestModel builds a page over a blocking reducer and a fake clipboard.
func NewTestModel(t *testing.T) *testPage {
	t.Helper()

	reducer := newBlockingReducer()
	clip := &fakeClipboard{}
	ctrl := submission.New(reducer)

	m, err := New(Config{
		Controller: ctrl,
		Clipboard:  clipboard.NewAdapter(clipboard.WithWriter(clip.write)),
		Styles:     ui.NewStyles(ui.LightTheme()),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(m.Shutdown)

	return &testPage{Model: m, reducer: reducer, clip: clip}
}

// send runs msg through Update and keeps the resulting model.
func (p *testPage) send(msg tea.Msg) tea.Cmd {
	next, cmd := p.Model.Update(msg)
	p.Model = next.(Model)
	return cmd
}

func (p *testPage) key(k tea.KeyType) tea.Cmd {
	return p.send(tea.KeyMsg{Type: k})
}

func (p *testPage) typeText(s string) {
	p.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// nextState waits for the next controller state and applies it.
func (p *testPage) nextState(t *testing.T) submission.State {
	t.Helper()

	msgs := make(chan tea.Msg, 1)
	cmd := p.waitForState()
	go func() { msgs <- cmd() }()

	select {
	case msg := <-msgs:
		sm, ok := msg.(stateMsg)
		if !ok {
			t.Fatalf("expected stateMsg, got %T", msg)
		}
		p.send(sm)
		return submission.State(sm)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for state")
		return submission.State{}
	}
}

// resolve releases the in-flight request.
func (p *testPage) resolve(t *testing.T, out string, err error) {
	t.Helper()
	select {
	case p.reducer.release <- reply{out: out, err: err}:
	case <-time.After(2 * time.Second):
		t.Fatal("no request in flight")
	}
}

// fill types html and css into their panes and leaves focus on HTML.
func (p *testPage) fill(html, css string) {
	p.typeText(html)
	p.key(tea.KeyTab)
	p.typeText(css)
	p.key(tea.KeyShiftTab)
}

var errNoClipboard = errors.New("no clipboard")
