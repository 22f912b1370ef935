package agent

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Zordux/Last-Vector/internal/sim"
)

// Client drives a remote policy. It satisfies registry.Policy, so the
// runner and the viewer treat it like any built-in policy.
type Client struct {
	conn    net.Conn
	scanner *bufio.Scanner
	model   string
	logger  *log.Logger

	mu  sync.Mutex
	err error // sticky: set once the stream can no longer be trusted
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientLogger replaces the client's logger.
func WithClientLogger(l *log.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// Dial connects to a policy server and performs the hello handshake.
func Dial(ctx context.Context, addr string, opts ...ClientOption) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("agent: dial %s: %w", addr, err)
	}

	c := &Client{
		conn:    conn,
		scanner: newScanner(conn),
		logger: log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "agent",
		}),
	}
	for _, opt := range opts {
		opt(c)
	}

	var reply helloMessage
	if err := c.roundTrip(ctx, helloMessage{Type: typeHello}, &reply); err != nil {
		conn.Close()
		return nil, err
	}
	if reply.Type != typeHello || reply.Model == "" {
		conn.Close()
		return nil, fmt.Errorf("%w: bad hello reply %+v", ErrProtocol, reply)
	}
	c.model = reply.Model

	c.logger.Info("connected", "addr", addr, "model", c.model)
	return c, nil
}

// Model returns the model name the server announced.
func (c *Client) Model() string {
	return c.model
}

// ID returns the unique identifier for this policy.
func (c *Client) ID() string {
	return "agent"
}

// Title returns the display name, including the remote model.
func (c *Client) Title() string {
	return "Agent: " + c.model
}

// Reset is a no-op; the protocol carries no episode boundaries.
func (c *Client) Reset(uint64) {}

// Act sends one observation and waits for the remote action.
// Cancelling ctx aborts the exchange and leaves the client unusable.
func (c *Client) Act(ctx context.Context, obs []float32) (sim.Action, error) {
	var resp actionMessage
	if err := c.roundTrip(ctx, observationMessage{Obs: obs}, &resp); err != nil {
		return sim.NoOp(), err
	}
	if len(resp.Action) != sim.ActionDim() {
		return sim.NoOp(), fmt.Errorf("%w: action has %d values, want %d",
			ErrProtocol, len(resp.Action), sim.ActionDim())
	}
	return sim.ParseAction(resp.Action), nil
}

// Close closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		c.err = errors.New("agent: client closed")
	}
	return c.conn.Close()
}

func (c *Client) roundTrip(ctx context.Context, req, resp any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return c.err
	}

	deadline, _ := ctx.Deadline()
	c.conn.SetDeadline(deadline)
	stop := context.AfterFunc(ctx, func() {
		// Unblock pending I/O.
		c.conn.SetDeadline(time.Unix(1, 0))
	})

	err := writeMessage(c.conn, req)
	if err == nil {
		err = readMessage(c.scanner, resp)
	}
	stop()

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		c.err = fmt.Errorf("agent: %w", err)
		return c.err
	}
	return nil
}
