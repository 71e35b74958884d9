package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/freekieb7/hello/telemetry"
)

const (
	acceptBackoffInitial = 5 * time.Millisecond
	defaultName          = "hello"
)

var (
	ErrServerClosed = errors.New("http: server closed")
)

type Server struct {
	Name        string
	Logger      *slog.Logger
	Dispatcher  Dispatcher
	Tracer      trace.Tracer
	Instruments *telemetry.Instruments

	// AcceptBackoffMax enables sleeping between consecutive failed accepts,
	// growing exponentially up to this value. Zero retries immediately.
	AcceptBackoffMax time.Duration

	ConnCtxPool *ConnCtxPool

	initOnce sync.Once
	stats    stats
	mu       sync.Mutex
	listener net.Listener
	closed   atomic.Bool
}

type stats struct {
	accepted     atomic.Uint64
	acceptErrors atomic.Uint64
	readErrors   atomic.Uint64
	writeErrors  atomic.Uint64
	responses    atomic.Uint64
	active       atomic.Int64
}

// Stats is a snapshot of the server counters.
type Stats struct {
	Accepted     uint64
	AcceptErrors uint64
	ReadErrors   uint64
	WriteErrors  uint64
	Responses    uint64
	Active       int64
}

// NewServer returns a server using the global OpenTelemetry providers, a
// discarding logger and the Detached dispatcher. A zero Server gets the
// same defaults on first use.
func NewServer(name string) *Server {
	s := &Server{Name: name}
	s.init()
	return s
}

func (s *Server) init() {
	s.initOnce.Do(func() {
		if s.Name == "" {
			s.Name = defaultName
		}
		if s.Logger == nil {
			s.Logger = slog.New(slog.DiscardHandler)
		}
		if s.Dispatcher == nil {
			s.Dispatcher = Detached()
		}
		if s.Tracer == nil {
			s.Tracer = otel.Tracer(s.Name)
		}
		if s.Instruments == nil {
			inst, err := telemetry.NewInstruments(otel.Meter(s.Name))
			if err != nil {
				panic(err)
			}
			s.Instruments = inst
		}
		if s.ConnCtxPool == nil {
			s.ConnCtxPool = NewConnCtxPool()
		}
	})
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.init()

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	s.Logger.Info("server listening", "addr", listener.Addr().String())

	return s.Serve(listener)
}

// Serve accepts connections until the listener is closed. Accept errors are
// logged and never end the loop.
func (s *Server) Serve(listener net.Listener) error {
	s.init()

	if err := s.trackListener(listener); err != nil {
		return err
	}

	var bo backoff.BackOff
	if s.AcceptBackoffMax > 0 {
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = min(acceptBackoffInitial, s.AcceptBackoffMax)
		eb.MaxInterval = s.AcceptBackoffMax
		eb.MaxElapsedTime = 0
		eb.Reset()
		bo = eb
	}

	ctx := context.Background()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.closed.Load() || errors.Is(err, net.ErrClosed) {
				return ErrServerClosed
			}

			s.stats.acceptErrors.Add(1)
			s.Instruments.AcceptErrors.Add(ctx, 1)
			s.Logger.Error("failed to establish connection", "error", err)

			if bo != nil {
				time.Sleep(bo.NextBackOff())
			}
			continue
		}

		if bo != nil {
			bo.Reset()
		}

		s.stats.accepted.Add(1)
		s.Instruments.ConnectionsAccepted.Add(ctx, 1)
		s.Logger.Info("connection established", "remote", conn.RemoteAddr().String())

		s.Dispatcher.Dispatch(func() {
			defer s.recoverHandler(conn)
			s.ServeConn(conn)
		})
	}
}

// ServeConn reads one request buffer from conn, answers with FixedResponse
// and closes conn on every path.
func (s *Server) ServeConn(conn net.Conn) {
	defer conn.Close()

	s.init()

	connCtx := s.ConnCtxPool.Get()
	connCtx.Reset(conn)
	defer s.ConnCtxPool.Put(connCtx)

	remote := conn.RemoteAddr().String()
	connID := connCtx.ID.String()

	ctx, span := s.Tracer.Start(context.Background(), "hello.serve_conn",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("hello.conn.id", connID),
			attribute.String("network.peer.address", remote),
		),
	)
	defer span.End()

	s.stats.active.Add(1)
	s.Instruments.ActiveHandlers.Add(ctx, 1)
	defer func() {
		s.stats.active.Add(-1)
		s.Instruments.ActiveHandlers.Add(ctx, -1)
	}()

	logger := s.Logger.With("conn", connID, "remote", remote)

	if err := connCtx.ReadRequest(); err != nil {
		s.stats.readErrors.Add(1)
		s.Instruments.ReadErrors.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "read request")
		logger.Error("failed to read from stream", "error", err)
		return
	}

	span.SetAttributes(attribute.Int("hello.request.size", connCtx.N))
	s.Instruments.RequestSize.Record(ctx, int64(connCtx.N))
	logger.InfoContext(ctx, "received request", "bytes", connCtx.N, "request", DecodeLossy(connCtx.Request()))

	if err := FixedResponse.Write(connCtx.ConnWriter); err != nil {
		s.stats.writeErrors.Add(1)
		s.Instruments.WriteErrors.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "write response")
		logger.Error("failed to write response", "error", err)
		return
	}

	s.stats.responses.Add(1)
	s.Instruments.ResponsesSent.Add(ctx, 1)
}

// Close stops the accept loop. Handlers already running are not waited for.
func (s *Server) Close() error {
	s.closed.Store(true)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

func (s *Server) Stats() Stats {
	return Stats{
		Accepted:     s.stats.accepted.Load(),
		AcceptErrors: s.stats.acceptErrors.Load(),
		ReadErrors:   s.stats.readErrors.Load(),
		WriteErrors:  s.stats.writeErrors.Load(),
		Responses:    s.stats.responses.Load(),
		Active:       s.stats.active.Load(),
	}
}

func (s *Server) trackListener(listener net.Listener) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		listener.Close()
		return ErrServerClosed
	}
	s.listener = listener
	return nil
}

func (s *Server) recoverHandler(conn net.Conn) {
	if r := recover(); r != nil {
		s.Logger.Error("connection handler panicked", "remote", conn.RemoteAddr().String(), "panic", r)
	}
}
