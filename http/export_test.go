package http

import (
	"context"

	previewjson "github.com/fwojciec/preview/json"
	"github.com/fwojciec/preview/live"
)

// Client exposes the per-stream update queue for testing.
type Client struct{ c *client }

// NewClient returns a queue holding at most buffer updates.
func NewClient(buffer int) Client {
	return Client{c: newClient(buffer)}
}

// Push delivers u as the previewer would.
func (c Client) Push(u live.Update) { c.c.push(u) }

// Next returns the next frame to send.
func (c Client) Next(ctx context.Context, p *live.Previewer) (previewjson.Frame, bool) {
	return c.c.next(ctx, p)
}
