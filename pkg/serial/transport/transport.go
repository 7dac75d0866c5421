// Package transport carries framed objects over WebSocket binary messages.
// Each message is exactly one frame.
package transport

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/internal/logging"
	serrors "github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/errors"
	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/frame"
	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/meta"
)

// Subprotocol is negotiated on every connection.
const Subprotocol = "serial.v1"

// Options configures a connection.
type Options struct {
	// Frame controls the frames this side sends and the payload size it
	// accepts.
	Frame frame.Options
	// Strict makes Receive return the cause of a decoding failure instead
	// of ErrNoResult.
	Strict bool
	// InsecureSkipVerify disables the origin check in Accept.
	InsecureSkipVerify bool
}

// DefaultOptions returns binary frames without compression.
func DefaultOptions() Options {
	return Options{Frame: frame.DefaultOptions()}
}

// Conn exchanges objects with a peer. One goroutine may Send while another
// Receives.
type Conn struct {
	ws   *websocket.Conn
	root *meta.Root
	opts Options
	log  *zap.Logger
}

func newConn(ws *websocket.Conn, root *meta.Root, opts Options, side string) *Conn {
	if root == nil {
		root = meta.NewRoot(nil)
	}
	maxPayload := opts.Frame.MaxPayload
	if maxPayload <= 0 {
		maxPayload = frame.DefaultMaxPayload
	}
	// brotli can expand incompressible input slightly
	ws.SetReadLimit(int64(frame.HeaderSize + maxPayload + maxPayload/8 + 1024))
	return &Conn{
		ws:   ws,
		root: root,
		opts: opts,
		log:  logging.Named("transport").With(zap.String("side", side)),
	}
}

// Dial connects to a server at url.
func Dial(ctx context.Context, url string, root *meta.Root, opts Options) (*Conn, error) {
	ws, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		Subprotocols: []string{Subprotocol},
	})
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", url, err)
	}
	if ws.Subprotocol() != Subprotocol {
		ws.Close(websocket.StatusPolicyViolation, "subprotocol "+Subprotocol+" required")
		return nil, fmt.Errorf("transport: server did not negotiate %s", Subprotocol)
	}
	c := newConn(ws, root, opts, "client")
	c.log.Info("connected", zap.String("url", url))
	return c, nil
}

// Accept upgrades an HTTP request to a connection.
func Accept(w http.ResponseWriter, r *http.Request, root *meta.Root, opts Options) (*Conn, error) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:       []string{Subprotocol},
		InsecureSkipVerify: opts.InsecureSkipVerify,
	})
	if err != nil {
		return nil, fmt.Errorf("transport: accept: %w", err)
	}
	if ws.Subprotocol() != Subprotocol {
		ws.Close(websocket.StatusPolicyViolation, "subprotocol "+Subprotocol+" required")
		return nil, fmt.Errorf("transport: client did not negotiate %s", Subprotocol)
	}
	c := newConn(ws, root, opts, "server")
	c.log.Info("accepted", zap.String("remote", r.RemoteAddr))
	return c, nil
}

// Send frames instance with t and writes it as one binary message.
func (c *Conn) Send(ctx context.Context, instance any, t meta.Type) error {
	data, err := frame.Encode(instance, t, c.opts.Frame)
	if err != nil {
		return err
	}
	if err := c.ws.Write(ctx, websocket.MessageBinary, data); err != nil {
		return fmt.Errorf("transport: send: %w", err)
	}
	c.log.Debug("sent frame", zap.Int("bytes", len(data)))
	return nil
}

// Receive reads the next message and decodes the object it carries.
func (c *Conn) Receive(ctx context.Context) (any, meta.Type, error) {
	typ, data, err := c.ws.Read(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("transport: receive: %w", err)
	}
	if typ != websocket.MessageBinary {
		return nil, nil, serrors.New(serrors.ErrMalformedInput, "receive", "unexpected %s message", typ)
	}
	c.log.Debug("received frame", zap.Int("bytes", len(data)))
	if c.opts.Strict {
		return frame.DecodeStrict(data, c.root, c.opts.Frame)
	}
	return frame.Decode(data, c.root, c.opts.Frame)
}

// Close performs the closing handshake.
func (c *Conn) Close() error {
	c.log.Debug("closing")
	return c.ws.Close(websocket.StatusNormalClosure, "")
}

// CloseStatus returns the close code carried by err, or -1.
func CloseStatus(err error) websocket.StatusCode {
	return websocket.CloseStatus(err)
}
