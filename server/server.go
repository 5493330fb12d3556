// Package server publishes the views of a live portfolio stream over HTTP.
//
// GET /ws upgrades to a websocket receiving one JSON frame per update,
// GET /view answers the latest frame and GET /metrics exposes the prometheus
// collectors.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/saudanwar3/portfolio/renderer"
	"github.com/saudanwar3/portfolio/stream"
)

const (
	// DefaultBuffer is the number of frames queued per client before it is
	// dropped as too slow.
	DefaultBuffer = 16
	writeTimeout  = 5 * time.Second
)

// Frame is the JSON message published for each stream update. The view
// fields are inlined when the state carries a snapshot.
type Frame struct {
	State string `json:"state"`
	Error string `json:"error,omitempty"`
	*renderer.View
}

// NewFrame converts a stream update into a frame, formatting amounts in the
// reporting currency.
func NewFrame(u stream.Update, reporting string) Frame {
	f := Frame{State: u.State.String()}
	switch u.State {
	case stream.Running:
		v := renderer.FormatSnapshot(u.Snapshot, reporting)
		f.View = &v
	case stream.Unavailable:
		if u.Err != nil {
			f.Error = u.Err.Error()
		}
	}
	return f
}

// Server fans the updates of a stream out to websocket clients.
type Server struct {
	stream   *stream.Stream
	currency string
	buffer   int
	gatherer prometheus.Gatherer
	logger   zerolog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	sub     *stream.Subscription
	last    Frame
	frame   []byte // last frame, encoded
	clients map[uuid.UUID]*client
	closed  bool
}

// Option configures a Server.
type Option func(*Server)

// WithCurrency sets the reporting currency of the balance.
func WithCurrency(code string) Option {
	return func(s *Server) { s.currency = code }
}

// WithBuffer sets the number of frames queued per client.
func WithBuffer(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.buffer = n
		}
	}
}

// WithGatherer sets the metrics served on /metrics, prometheus.DefaultGatherer by default.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithLogger sets the logger of the server.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New returns a server publishing st. Call Start to attach it.
func New(st *stream.Stream, opts ...Option) *Server {
	s := &Server{
		stream:   st,
		currency: renderer.DefaultCurrency,
		buffer:   DefaultBuffer,
		gatherer: prometheus.DefaultGatherer,
		logger:   log.Logger,
		last:     Frame{State: stream.Idle.String()},
		clients:  make(map[uuid.UUID]*client),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "server").Logger()
	s.frame, _ = json.Marshal(s.last)
	return s
}

// Start subscribes the server to its stream. The server holds its own
// subscription, so the stream keeps running with no websocket client.
func (s *Server) Start() error {
	sub, err := s.stream.Subscribe(s.publish)
	if err != nil {
		return fmt.Errorf("cannot subscribe to stream: %w", err)
	}
	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()
	return nil
}

// Close detaches the server from the stream and disconnects every client.
func (s *Server) Close() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.closed = true
	for id, c := range s.clients {
		s.removeLocked(id, c)
	}
	s.mu.Unlock()
	if sub != nil {
		sub.Cancel()
	}
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.serveWS)
	mux.HandleFunc("GET /view", s.serveView)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return mux
}

// ListenAndServe serves the routes on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info().Str("addr", addr).Msg("listening")

	select {
	case err := <-errc:
		return fmt.Errorf("cannot serve %s: %w", addr, err)
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	s.Close()
	if err := srv.Shutdown(shutdown); err != nil {
		return fmt.Errorf("cannot shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Latest returns the last published frame.
func (s *Server) Latest() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Clients returns the number of connected websocket clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// publish receives the stream updates.
func (s *Server) publish(u stream.Update) {
	f := NewFrame(u, s.currency)
	data, err := json.Marshal(f)
	if err != nil {
		s.logger.Error().Err(err).Msg("cannot encode frame")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = f
	s.frame = data
	for id, c := range s.clients {
		select {
		case c.send <- data:
		default:
			s.logger.Warn().Str("client", id.String()).Msg("client too slow, dropped")
			s.removeLocked(id, c)
		}
	}
}

func (s *Server) serveView(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	f, data := s.last, s.frame
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if f.View == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	w.Write(data)
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug().Err(err).Msg("cannot upgrade")
		return
	}
	c := &client{
		id:   uuid.New(),
		conn: conn,
		send: make(chan []byte, s.buffer),
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return
	}
	// the last frame is queued first, later ones follow in order.
	c.send <- s.frame
	s.clients[c.id] = c
	n := len(s.clients)
	s.mu.Unlock()
	s.logger.Debug().Str("client", c.id.String()).Int("clients", n).Msg("connected")

	go c.writeLoop(s.logger)
	c.readLoop()

	s.mu.Lock()
	if cur, ok := s.clients[c.id]; ok && cur == c {
		s.removeLocked(c.id, c)
	}
	n = len(s.clients)
	s.mu.Unlock()
	s.logger.Debug().Str("client", c.id.String()).Int("clients", n).Msg("disconnected")
}

// removeLocked forgets c and closes its queue, which ends its writer.
func (s *Server) removeLocked(id uuid.UUID, c *client) {
	delete(s.clients, id)
	close(c.send)
}

type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
}

// writeLoop writes the queued frames until the queue is closed.
func (c *client) writeLoop(logger zerolog.Logger) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			logger.Debug().Err(err).Str("client", c.id.String()).Msg("cannot write")
			// closing the connection ends readLoop, then the server closes the queue.
			c.conn.Close()
			for range c.send {
			}
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readLoop discards client messages until the connection fails.
func (c *client) readLoop() {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
