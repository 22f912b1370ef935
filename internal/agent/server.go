package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Zordux/Last-Vector/internal/registry"
	"github.com/Zordux/Last-Vector/internal/sim"
)

// Server hosts a policy for remote clients. Each connection gets its own
// policy instance.
type Server struct {
	factory registry.Factory
	model   string
	logger  *log.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithModelName overrides the name announced in the hello reply.
func WithModelName(name string) ServerOption {
	return func(s *Server) {
		s.model = name
	}
}

// WithServerLogger replaces the server's logger.
func WithServerLogger(l *log.Logger) ServerOption {
	return func(s *Server) {
		s.logger = l
	}
}

// NewServer creates a server for the policies built by factory.
// The model name defaults to the policy ID.
func NewServer(factory registry.Factory, opts ...ServerOption) *Server {
	s := &Server{
		factory: factory,
		logger: log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "agent-server",
		}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.model == "" {
		s.model = factory().ID()
	}
	return s
}

// Model returns the announced model name.
func (s *Server) Model() string {
	return s.model
}

// Serve accepts connections on ln until ctx is cancelled. It closes ln
// and every open session before returning. A cancelled context yields nil.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	s.logger.Info("serving policy", "addr", ln.Addr().String(), "model", s.model)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("agent: accept: %w", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handle(ctx, conn)
		}()
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	logger := s.logger.With("session", uuid.NewString(), "remote", conn.RemoteAddr().String())

	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	logger.Info("client connected")
	steps, err := s.converse(ctx, conn)

	switch {
	case errors.Is(err, io.EOF):
		logger.Info("client disconnected", "steps", steps)
	case ctx.Err() != nil:
		logger.Info("session closed on shutdown", "steps", steps)
	case errors.Is(err, ErrProtocol):
		logger.Warn("client protocol error", "steps", steps, "error", err)
	default:
		logger.Warn("client socket error", "steps", steps, "error", err)
	}
}

// converse runs one session. It always returns a non-nil error; io.EOF
// marks a clean disconnect.
func (s *Server) converse(ctx context.Context, conn net.Conn) (int, error) {
	sc := newScanner(conn)

	var hello helloMessage
	if err := readMessage(sc, &hello); err != nil {
		return 0, err
	}
	if hello.Type != typeHello {
		return 0, fmt.Errorf("%w: expected hello, got %q", ErrProtocol, hello.Type)
	}
	if err := writeMessage(conn, helloMessage{Type: typeHello, Model: s.model}); err != nil {
		return 0, err
	}

	policy := s.factory()
	policy.Reset(0)

	steps := 0
	for {
		var req observationMessage
		if err := readMessage(sc, &req); err != nil {
			return steps, err
		}
		if len(req.Obs) != sim.ObservationDim() {
			return steps, fmt.Errorf("%w: observation has %d values, want %d",
				ErrProtocol, len(req.Obs), sim.ObservationDim())
		}

		a, err := policy.Act(ctx, req.Obs)
		if err != nil {
			return steps, fmt.Errorf("agent: policy: %w", err)
		}
		values := a.Sanitized().Values()
		if err := writeMessage(conn, actionMessage{Action: values[:]}); err != nil {
			return steps, err
		}
		steps++
	}
}
