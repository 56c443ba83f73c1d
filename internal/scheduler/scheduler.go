// scheduler debounces preview refreshes triggered by editor events.
package scheduler

import (
	"log"
	"sync"
	"time"
)

// Coordinator coalesces bursts of triggering events into one refresh per
// quiet interval. Each Trigger issues a new token; a scheduled refresh
// whose token has been superseded aborts silently.
type Coordinator struct {
	mu      sync.Mutex
	delay   time.Duration
	token   uint64
	refresh func() error
}

// New creates a Coordinator running refresh after delay of quiet.
func New(delay time.Duration, refresh func() error) *Coordinator {
	return &Coordinator{
		delay:   delay,
		refresh: refresh,
	}
}

// Trigger schedules a refresh after the quiet interval. Failures of
// background refreshes are logged, never surfaced; silence while typing
// beats noise.
func (c *Coordinator) Trigger() {
	c.mu.Lock()
	c.token++
	token := c.token
	c.mu.Unlock()

	time.AfterFunc(c.delay, func() {
		if c.superseded(token) {
			return
		}
		if err := c.refresh(); err != nil {
			log.Printf("scheduler: background refresh skipped: %v", err)
		}
	})
}

// Flush cancels any pending refresh and runs one immediately,
// surfacing failures to the caller.
func (c *Coordinator) Flush() error {
	c.mu.Lock()
	c.token++
	c.mu.Unlock()
	return c.refresh()
}

// Cancel invalidates any pending refresh without running one.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	c.token++
	c.mu.Unlock()
}

func (c *Coordinator) superseded(token uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return token != c.token
}
