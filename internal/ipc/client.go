package ipc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"go.klb.dev/xclipy/internal/message"
	"go.klb.dev/xclipy/internal/wire"
)

// Client sends requests to a running daemon.
type Client struct {
	path string
}

// NewClient returns a Client for the socket at path.
func NewClient(path string) *Client { return &Client{path: path} }

// Call sends req on a fresh connection and returns the response. An ERROR
// response is returned as an error.
func (c *Client) Call(req *message.Message) (*message.Message, error) {
	conn, err := Dial(c.path)
	if err != nil {
		return nil, err
	}
	wc := wire.New(conn)
	defer wc.Close()

	if err := wc.WriteMsg(req); err != nil {
		return nil, fmt.Errorf("sending %s: %w", req.Type, err)
	}
	wc.SetReadDeadline(requestTimeout)
	resp, err := wc.ReadMsg()
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", req.Type, err)
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp, nil
}

// Watch subscribes to daemon events and calls fn for each until ctx is done,
// the daemon hangs up, or fn returns an error.
func (c *Client) Watch(ctx context.Context, fn func(*message.Message) error) error {
	conn, err := Dial(c.path)
	if err != nil {
		return err
	}
	wc := wire.New(conn)
	defer wc.Close()

	stop := context.AfterFunc(ctx, func() { _ = wc.Close() })
	defer stop()

	if err := wc.WriteMsg(&message.Message{Type: message.TypeWatch}); err != nil {
		return fmt.Errorf("sending WATCH: %w", err)
	}
	for {
		ev, err := wc.ReadMsg()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("reading event: %w", err)
		}
		if err := ev.Err(); err != nil {
			return err
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
}
