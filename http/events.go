package http

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/fwojciec/preview"
	previewjson "github.com/fwojciec/preview/json"
	"github.com/fwojciec/preview/live"
)

// client queues updates for one event stream. The subscriber callback runs
// inside the render and must never block, so a full queue marks the client
// stale instead and the stream catches up with a reset.
type client struct {
	updates chan live.Update
	wake    chan struct{}
	stale   atomic.Bool

	last    uint64
	started bool
}

func newClient(buffer int) *client {
	return &client{
		updates: make(chan live.Update, buffer),
		wake:    make(chan struct{}, 1),
	}
}

func (c *client) push(u live.Update) {
	select {
	case c.updates <- u:
	default:
		c.stale.Store(true)
		select {
		case c.wake <- struct{}{}:
		default:
		}
	}
}

// next blocks until there is a frame to send or ctx is done.
func (c *client) next(ctx context.Context, p *live.Previewer) (previewjson.Frame, bool) {
	for {
		if c.stale.Swap(false) {
			return c.resync(p), true
		}
		select {
		case <-ctx.Done():
			return previewjson.Frame{}, false
		case <-c.wake:
		case u := <-c.updates:
			if f, ok := c.frame(u); ok {
				return f, true
			}
		}
	}
}

// frame converts u, skipping tree updates the client already has.
func (c *client) frame(u live.Update) (previewjson.Frame, bool) {
	if u.Formatted {
		return previewjson.Frame{Generation: u.Generation, Formatted: true}, true
	}
	if c.started && u.Generation <= c.last {
		return previewjson.Frame{}, false
	}
	c.last, c.started = u.Generation, true
	return previewjson.Frame{Generation: u.Generation, Reset: u.Reset, Root: u.Root, Ops: u.Ops}, true
}

func (c *client) resync(p *live.Previewer) previewjson.Frame {
	var f previewjson.Frame
	p.View(func(root *preview.Node, generation uint64) {
		f = previewjson.Frame{Generation: generation, Reset: true, Root: root.Clone()}
	})
	c.last, c.started = f.Generation, true
	return f
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	c := newClient(s.clientBuffer)
	unsubscribe := s.previewer.Subscribe(c.push)
	defer unsubscribe()

	s.logger.Debug("mirror client connected", "remote", r.RemoteAddr)
	defer s.logger.Debug("mirror client disconnected", "remote", r.RemoteAddr)

	for {
		frame, ok := c.next(r.Context(), s.previewer)
		if !ok {
			return
		}
		data, err := previewjson.MarshalFrame(frame)
		if err != nil {
			s.logger.Error("marshal frame", "generation", frame.Generation, "error", err)
			continue
		}
		if _, err := fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", frame.Generation, frame.Kind(), data); err != nil {
			return
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
