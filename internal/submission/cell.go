package submission

import "sync"

// Cell holds the current State. The controller is its only writer; any number
// of readers may Load it or Subscribe to writes.
//
// Each subscriber channel has room for one value. When a reader falls behind,
// the pending value is replaced by the newer one, so readers may skip
// intermediate states but always observe the latest.
type Cell struct {
	mu    sync.RWMutex
	value State
	subs  map[int]chan State
	next  int
}

// NewCell returns a cell holding initial.
func NewCell(initial State) *Cell {
	return &Cell{
		value: initial,
		subs:  make(map[int]chan State),
	}
}

// Load returns the current value.
func (c *Cell) Load() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Subscribe returns a channel that receives every subsequent write and a
// function that cancels the subscription and closes the channel.
func (c *Cell) Subscribe() (<-chan State, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.next
	c.next++
	ch := make(chan State, 1)
	c.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(sub)
			}
		})
	}
}

// store writes s and notifies subscribers without blocking.
func (c *Cell) store(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = s
	for _, ch := range c.subs {
		select {
		case ch <- s:
			continue
		default:
		}
		// Reader is behind: drop the stale pending value.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}

// closeAll cancels every subscription.
func (c *Cell) closeAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
}
