package agent

import (
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zordux/Last-Vector/internal/registry"
	"github.com/Zordux/Last-Vector/internal/sim"
)

type stubPolicy struct {
	action sim.Action
	resets *atomic.Int32
}

func (p *stubPolicy) ID() string    { return "stub" }
func (p *stubPolicy) Title() string { return "Stub" }

func (p *stubPolicy) Reset(uint64) {
	if p.resets != nil {
		p.resets.Add(1)
	}
}

func (p *stubPolicy) Act(context.Context, []float32) (sim.Action, error) {
	return p.action, nil
}

var stubAction = sim.Action{
	MoveX:         0.5,
	MoveY:         -1,
	AimX:          0,
	AimY:          1,
	Shoot:         true,
	Reload:        true,
	UpgradeChoice: 2,
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func stubFactory() registry.Policy {
	return &stubPolicy{action: stubAction}
}

// startServer serves on a loopback port until the test ends.
func startServer(t *testing.T, srv *Server) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("Serve did not stop")
		}
	})
	return ln.Addr().String()
}

// fakeServer accepts one connection and hands it to script.
func fakeServer(t *testing.T, script func(conn net.Conn, sc *bufio.Scanner)) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		script(conn, newScanner(conn))
	}()
	return ln.Addr().String()
}

func dial(t *testing.T, addr string) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Dial(ctx, addr, WithClientLogger(quietLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestClientServerRoundTrip(t *testing.T) {
	srv := NewServer(stubFactory, WithServerLogger(quietLogger()))
	assert.Equal(t, "stub", srv.Model())

	c := dial(t, startServer(t, srv))
	assert.Equal(t, "stub", c.Model())
	assert.Equal(t, "agent", c.ID())
	assert.Equal(t, "Agent: stub", c.Title())

	obs := make([]float32, sim.ObservationDim())
	for i := 0; i < 3; i++ {
		a, err := c.Act(context.Background(), obs)
		require.NoError(t, err)
		assert.Equal(t, stubAction, a)
	}
}

func TestServerModelNameOverride(t *testing.T) {
	srv := NewServer(stubFactory,
		WithServerLogger(quietLogger()),
		WithModelName("ppo_last_vector.zip"),
	)
	c := dial(t, startServer(t, srv))
	assert.Equal(t, "ppo_last_vector.zip", c.Model())
}

func TestServerPolicyPerSession(t *testing.T) {
	var created, resets atomic.Int32
	factory := func() registry.Policy {
		created.Add(1)
		return &stubPolicy{action: sim.NoOp(), resets: &resets}
	}
	srv := NewServer(factory, WithServerLogger(quietLogger()), WithModelName("m"))
	addr := startServer(t, srv)

	obs := make([]float32, sim.ObservationDim())
	for i := 0; i < 2; i++ {
		c := dial(t, addr)
		_, err := c.Act(context.Background(), obs)
		require.NoError(t, err)
	}

	// The model name is set, so no probe instance is built.
	assert.Equal(t, int32(2), created.Load())
	assert.Equal(t, int32(2), resets.Load())
}

func TestDialRejectsBadHello(t *testing.T) {
	addr := fakeServer(t, func(conn net.Conn, sc *bufio.Scanner) {
		sc.Scan()
		io.WriteString(conn, `{"type":"hello"}`+"\n")
	})

	_, err := Dial(context.Background(), addr, WithClientLogger(quietLogger()))
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestClientRejectsShortAction(t *testing.T) {
	addr := fakeServer(t, func(conn net.Conn, sc *bufio.Scanner) {
		sc.Scan()
		io.WriteString(conn, `{"type":"hello","model":"fake"}`+"\n")
		sc.Scan()
		io.WriteString(conn, `{"action":[1,0]}`+"\n")
		sc.Scan()
	})

	c := dial(t, addr)
	a, err := c.Act(context.Background(), make([]float32, sim.ObservationDim()))
	assert.ErrorIs(t, err, ErrProtocol)
	assert.Equal(t, sim.NoOp(), a)
}

func TestClientClampsRemoteAction(t *testing.T) {
	addr := fakeServer(t, func(conn net.Conn, sc *bufio.Scanner) {
		sc.Scan()
		io.WriteString(conn, `{"type":"hello","model":"fake"}`+"\n")
		sc.Scan()
		io.WriteString(conn, "\n"+`{"action":[3,-3,0,0,0.7,0.2,0,9]}`+"\n")
		sc.Scan()
	})

	c := dial(t, addr)
	a, err := c.Act(context.Background(), make([]float32, sim.ObservationDim()))
	require.NoError(t, err)
	assert.Equal(t, 1.0, a.MoveX)
	assert.Equal(t, -1.0, a.MoveY)
	assert.True(t, a.Shoot)
	assert.False(t, a.Sprint)
	assert.Equal(t, 2, a.UpgradeChoice)
}

func TestClientContextDeadline(t *testing.T) {
	addr := fakeServer(t, func(conn net.Conn, sc *bufio.Scanner) {
		sc.Scan()
		io.WriteString(conn, `{"type":"hello","model":"slow"}`+"\n")
		// Never answer the observation.
		sc.Scan()
		sc.Scan()
	})

	c := dial(t, addr)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Act(ctx, make([]float32, sim.ObservationDim()))
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// The stream is out of sync now; further calls fail fast.
	_, err = c.Act(context.Background(), make([]float32, sim.ObservationDim()))
	assert.Error(t, err)
}

// rawSession dials the server and returns the connection with a reader.
func rawSession(t *testing.T, addr string) (net.Conn, *bufio.Reader) {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetDeadline(time.Now().Add(5 * time.Second))
	return conn, bufio.NewReader(conn)
}

func TestServerRequiresHello(t *testing.T) {
	addr := startServer(t, NewServer(stubFactory, WithServerLogger(quietLogger())))
	conn, r := rawSession(t, addr)

	_, err := io.WriteString(conn, `{"obs":[]}`+"\n")
	require.NoError(t, err)

	_, err = r.ReadString('\n')
	assert.Error(t, err, "server should close the session")
}

func TestServerRejectsWrongObservationSize(t *testing.T) {
	addr := startServer(t, NewServer(stubFactory, WithServerLogger(quietLogger())))
	conn, r := rawSession(t, addr)

	io.WriteString(conn, `{"type":"hello"}`+"\n")
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"hello","model":"stub"}`, line)

	io.WriteString(conn, `{"obs":[0,0,0]}`+"\n")
	_, err = r.ReadString('\n')
	assert.Error(t, err)
}

func TestServerRejectsOversizedMessage(t *testing.T) {
	addr := startServer(t, NewServer(stubFactory, WithServerLogger(quietLogger())))
	conn, r := rawSession(t, addr)

	io.WriteString(conn, `{"type":"hello"}`+"\n")
	_, err := r.ReadString('\n')
	require.NoError(t, err)

	go io.WriteString(conn, strings.Repeat("x", 2*MaxLineBytes))

	_, err = r.ReadString('\n')
	assert.Error(t, err)
}

func TestServeStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewServer(stubFactory, WithServerLogger(quietLogger()))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	// An idle session must not hold up shutdown.
	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestReadMessage(t *testing.T) {
	sc := newScanner(strings.NewReader("\n  \n{\"type\":\"hello\"}\nnot json\n"))

	var hello helloMessage
	require.NoError(t, readMessage(sc, &hello))
	assert.Equal(t, typeHello, hello.Type)

	err := readMessage(sc, &hello)
	assert.ErrorIs(t, err, ErrProtocol)

	err = readMessage(sc, &hello)
	assert.ErrorIs(t, err, io.EOF)
}
