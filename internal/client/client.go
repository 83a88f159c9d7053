package client

import "boardsync/internal/model"

// Client ties a Socket to a Reconciler: broadcasts feed the local
// mirror, local draws are inserted optimistically and then sent.
type Client struct {
	rec  *Reconciler
	sock *Socket
}

// New builds a client for one board. onState, when non-nil, receives
// connected/disconnected transitions for the UI indicator.
func New(baseURL, boardID, token string, onState func(bool)) *Client {
	rec := NewReconciler()
	c := &Client{rec: rec}
	c.sock = NewSocket(baseURL, boardID, token, Events{
		OnSync:   func(shapes []model.Shape, _ int) { rec.ApplySync(shapes) },
		OnDraw:   func(shape model.Shape) { rec.ApplyDraw(shape) },
		OnDelete: rec.ApplyDelete,
		OnClear:  rec.ApplyClear,
		OnState:  onState,
	})
	return c
}

func (c *Client) Connect() error { return c.sock.Connect() }
func (c *Client) Close()         { c.sock.Close() }

// Draw applies the shape locally first, then sends it. Send failures
// are best effort: the optimistic copy stays until the next sync.
func (c *Client) Draw(shape model.Shape) (model.Shape, error) {
	shape = c.rec.LocalDraw(shape)
	return shape, c.sock.SendDraw(shape)
}

func (c *Client) Delete(shapeID string) error {
	c.rec.ApplyDelete(shapeID)
	return c.sock.SendDelete(shapeID)
}

func (c *Client) Clear() error {
	c.rec.ApplyClear()
	return c.sock.SendClear()
}

func (c *Client) Shapes() []model.Shape { return c.rec.Shapes() }
func (c *Client) Connected() bool       { return c.sock.Connected() }
