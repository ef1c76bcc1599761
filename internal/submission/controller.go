package submission

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"uncss/internal/reduction"
)

// Reducer performs one reduction request. *reduction.Client implements it.
type Reducer interface {
	Reduce(ctx context.Context, html, css string) (string, error)
}

// Controller owns the submission state machine:
//
//	Idle|Succeeded|Failed --Submit(invalid)--> Failed
//	Idle|Succeeded|Failed --Submit(valid)----> Loading
//	Loading --success--> Succeeded
//	Loading --failure--> Failed
//
// Submit while Loading is rejected, never queued.
type Controller struct {
	reducer Reducer
	cell    *Cell
	logger  *zap.Logger

	mu     sync.Mutex // serializes transitions
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a controller in the Idle state.
func New(reducer Reducer, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		reducer: reducer,
		cell:    NewCell(State{Phase: Idle}),
		logger:  zap.NewNop(),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	return c.cell.Load()
}

// Subscribe returns a channel of state writes and its cancel function.
func (c *Controller) Subscribe() (<-chan State, func()) {
	return c.cell.Subscribe()
}

// Submit validates in and, if valid, starts a reduction request. It returns
// immediately; the outcome is observed through State or Subscribe.
func (c *Controller) Submit(in Input) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		c.logger.Debug("submit after close ignored")
		return
	}

	cur := c.cell.Load()
	if cur.IsLoading() {
		c.logger.Debug("submit rejected: request already in flight")
		return
	}

	if err := in.Validate(); err != nil {
		c.logger.Info("submission invalid", zap.String("reason", err.Message))
		c.cell.store(cur.fail(err))
		return
	}

	c.cell.store(cur.loading())
	c.logger.Info("submission dispatched",
		zap.Int("html_bytes", len(in.HTML)),
		zap.Int("css_bytes", len(in.CSS)))

	c.wg.Add(1)
	go c.dispatch(in)
}

func (c *Controller) dispatch(in Input) {
	defer c.wg.Done()

	output, err := c.reducer.Reduce(c.ctx, in.HTML, in.CSS)

	c.mu.Lock()
	defer c.mu.Unlock()

	cur := c.cell.Load()
	if err != nil {
		re := reduction.AsError(err)
		c.logger.Info("submission failed",
			zap.String("kind", re.Name()),
			zap.String("message", re.Message))
		c.cell.store(cur.fail(re))
		return
	}

	c.logger.Info("submission succeeded", zap.Int("output_bytes", len(output)))
	c.cell.store(cur.succeed(output))
}

// Close cancels an in-flight request, waits for it to settle and closes all
// subscriptions. Later submits are ignored. Close is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
	c.cell.closeAll()
}
