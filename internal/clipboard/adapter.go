// Package clipboard copies rendered text to the system clipboard on a user
// trigger and reports the outcome as feedback.
package clipboard

import (
	"errors"
	"sync"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"
)

// Feedback is the outcome of the last copy attempt on a binding.
type Feedback int

const (
	FeedbackNone Feedback = iota
	CopySucceeded
	CopyFailed
)

// Message returns the line shown under the copy button.
func (f Feedback) Message() string {
	switch f {
	case CopySucceeded:
		return "已复制到剪贴板"
	case CopyFailed:
		return "按Command+C复制"
	default:
		return ""
	}
}

func (f Feedback) String() string {
	switch f {
	case CopySucceeded:
		return "CopySucceeded"
	case CopyFailed:
		return "CopyFailed"
	default:
		return "None"
	}
}

// Action is what a trigger does with its target.
type Action string

// ActionCopy is the only supported action; targets are read-only.
const ActionCopy Action = "copy"

// EventKind selects an outcome channel.
type EventKind string

const (
	EventSuccess EventKind = "success"
	EventError   EventKind = "error"
)

// Event describes one copy attempt.
type Event struct {
	Action  Action
	Trigger string
	Text    string
	Err     error
}

// Options configure a binding.
type Options struct {
	Action Action
	// Target returns the text to copy at trigger time.
	Target func() string
}

var (
	ErrAlreadyAttached   = errors.New("clipboard: trigger already attached")
	ErrUnsupportedAction = errors.New("clipboard: unsupported action")
	ErrNoTarget          = errors.New("clipboard: no target text source")
	ErrUnsupported       = errors.New("clipboard: system clipboard unavailable")
)

// Writer writes text to a clipboard.
type Writer func(text string) error

// systemWriter is replaced in tests.
var systemWriter Writer = func(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	return clipboard.WriteAll(text)
}

// Adapter hands out bindings between trigger names and text sources.
type Adapter struct {
	mu       sync.Mutex
	write    Writer
	logger   *zap.Logger
	bindings map[string]*Binding
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithWriter replaces the system clipboard writer.
func WithWriter(w Writer) Option {
	return func(a *Adapter) {
		if w != nil {
			a.write = w
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAdapter returns an adapter backed by the system clipboard.
func NewAdapter(opts ...Option) *Adapter {
	a := &Adapter{
		write:    systemWriter,
		logger:   zap.NewNop(),
		bindings: make(map[string]*Binding),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Attach binds trigger to opts. A trigger may be attached once per lifetime;
// Close the binding to release it.
func (a *Adapter) Attach(trigger string, opts Options) (*Binding, error) {
	if opts.Action == "" {
		opts.Action = ActionCopy
	}
	if opts.Action != ActionCopy {
		return nil, ErrUnsupportedAction
	}
	if opts.Target == nil {
		return nil, ErrNoTarget
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.bindings[trigger]; ok {
		return nil, ErrAlreadyAttached
	}

	b := &Binding{
		adapter: a,
		trigger: trigger,
		opts:    opts,
	}
	a.bindings[trigger] = b
	a.logger.Debug("clipboard trigger attached", zap.String("trigger", trigger))
	return b, nil
}

// Close closes every binding still attached.
func (a *Adapter) Close() {
	a.mu.Lock()
	bindings := make([]*Binding, 0, len(a.bindings))
	for _, b := range a.bindings {
		bindings = append(bindings, b)
	}
	a.mu.Unlock()

	for _, b := range bindings {
		b.Close()
	}
}

func (a *Adapter) detach(trigger string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.bindings, trigger)
	a.logger.Debug("clipboard trigger detached", zap.String("trigger", trigger))
}

// Binding is one attached trigger. It owns its Feedback.
type Binding struct {
	adapter *Adapter
	trigger string
	opts    Options

	mu        sync.Mutex
	onSuccess []func(Event)
	onError   []func(Event)
	feedback  Feedback
	closed    bool
}

// On registers fn for the given outcome.
func (b *Binding) On(kind EventKind, fn func(Event)) {
	if fn == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	switch kind {
	case EventSuccess:
		b.onSuccess = append(b.onSuccess, fn)
	case EventError:
		b.onError = append(b.onError, fn)
	}
}

// Trigger copies the target text and returns the resulting feedback. A
// closed binding does nothing and returns FeedbackNone.
func (b *Binding) Trigger() Feedback {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return FeedbackNone
	}
	text := b.opts.Target()
	b.mu.Unlock()

	err := b.adapter.write(text)
	ev := Event{Action: b.opts.Action, Trigger: b.trigger, Text: text, Err: err}

	b.mu.Lock()
	var handlers []func(Event)
	if err != nil {
		b.feedback = CopyFailed
		handlers = append(handlers, b.onError...)
	} else {
		b.feedback = CopySucceeded
		handlers = append(handlers, b.onSuccess...)
	}
	fb := b.feedback
	b.mu.Unlock()

	if err != nil {
		b.adapter.logger.Info("clipboard copy failed", zap.String("trigger", b.trigger), zap.Error(err))
	} else {
		b.adapter.logger.Debug("clipboard copy succeeded", zap.String("trigger", b.trigger), zap.Int("bytes", len(text)))
	}

	for _, fn := range handlers {
		fn(ev)
	}
	return fb
}

// Feedback returns the outcome of the last copy attempt.
func (b *Binding) Feedback() Feedback {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.feedback
}

// Close releases the handlers and the trigger registration. It is idempotent.
func (b *Binding) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.onSuccess = nil
	b.onError = nil
	b.mu.Unlock()

	b.adapter.detach(b.trigger)
}
