package scroll

import (
	"sync"

	"github.com/fwojciec/preview"
)

// Coordinator is the exclusion state between scroll-sync drivers. At most
// one driver is active; the others are refused until it ends.
type Coordinator struct {
	mu     sync.Mutex
	active preview.Driver
}

// Begin claims the coordinator for d. It succeeds when idle or when d
// already holds it.
func (c *Coordinator) Begin(d preview.Driver) bool {
	_, ok := c.Claim(d)
	return ok
}

// Claim is Begin that also reports whether this call took the coordinator
// from idle. Only a caller that acquired it should End it.
func (c *Coordinator) Claim(d preview.Driver) (acquired, ok bool) {
	if d == preview.DriverIdle {
		return false, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.active {
	case d:
		return false, true
	case preview.DriverIdle:
		c.active = d
		return true, true
	}
	return false, false
}

// End releases the coordinator if d holds it.
func (c *Coordinator) End(d preview.Driver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == d {
		c.active = preview.DriverIdle
	}
}

// Active returns the driver currently holding the coordinator.
func (c *Coordinator) Active() preview.Driver {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}
