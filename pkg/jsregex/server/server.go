// Package server exposes an Engine over HTTP and WebSocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chosenoffset/jsregex/pkg/jsregex"
	"github.com/chosenoffset/jsregex/pkg/jsregex/converter"
	"github.com/chosenoffset/jsregex/pkg/jsregex/handlers"
	"github.com/chosenoffset/jsregex/pkg/jsregex/metrics"
	"github.com/chosenoffset/jsregex/pkg/jsregex/syntax"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
)

type Config struct {
	Host            string
	Port            int
	MaxClients      int
	EventBufferSize int
	MaxBodyBytes    int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	// AllowedOrigins lists the hosts WebSocket clients may connect from.
	// Requests without an Origin header are always accepted.
	AllowedOrigins []string
}

func DefaultConfig() Config {
	return Config{
		Host:            "localhost",
		Port:            9090,
		MaxClients:      100,
		EventBufferSize: 50,
		MaxBodyBytes:    1 << 20,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		IdleTimeout:     60 * time.Second,
		AllowedOrigins:  []string{"localhost", "127.0.0.1"},
	}
}

type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithGatherer serves the given registry on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}

type Server struct {
	cfg          Config
	engine       *jsregex.Engine
	server       *http.Server
	upgrader     websocket.Upgrader
	clients      map[*client]bool
	clientsMutex sync.RWMutex
	events       chan handlers.Event
	stop         chan struct{}
	stopOnce     sync.Once
	startOnce    sync.Once
	eventBuffer  []handlers.Event
	eventIndex   int
	eventCount   int
	mutex        sync.RWMutex
	httpMetrics  *metrics.HTTPMetrics
	gatherer     prometheus.Gatherer
	logger       *slog.Logger
}

// NewServer creates a server for engine and subscribes it to the engine's
// conversion and warning events.
func NewServer(engine *jsregex.Engine, cfg Config, opts ...Option) *Server {
	defaults := DefaultConfig()
	if cfg.MaxClients <= 0 {
		cfg.MaxClients = defaults.MaxClients
	}
	if cfg.EventBufferSize <= 0 {
		cfg.EventBufferSize = defaults.EventBufferSize
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaults.MaxBodyBytes
	}

	s := &Server{
		cfg:         cfg,
		engine:      engine,
		clients:     make(map[*client]bool),
		events:      make(chan handlers.Event, 100),
		stop:        make(chan struct{}),
		eventBuffer: make([]handlers.Event, cfg.EventBufferSize),
		httpMetrics: metrics.NewHTTPMetrics(1000),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin:     s.checkOrigin,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	engine.RegisterHandler(handlers.ConversionEvent, handlers.HandlerFunc(s.SendEvent))
	engine.RegisterHandler(handlers.WarningEvent, handlers.HandlerFunc(s.SendEvent))
	return s
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return slices.Contains(s.cfg.AllowedOrigins, u.Hostname())
}

// Handler returns the server's routes and starts the event broadcaster.
func (s *Server) Handler() http.Handler {
	s.startOnce.Do(func() { go s.broadcast() })

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/convert", s.httpMetrics.Middleware("/api/convert", s.handleConvert))
	mux.HandleFunc("POST /api/validate", s.httpMetrics.Middleware("/api/validate", s.handleValidate))
	mux.HandleFunc("GET /api/events", s.httpMetrics.Middleware("/api/events", s.handleEvents))
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handlePlayground)
	mux.HandleFunc("/ws", s.handleWebSocket)
	if s.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

// Start serves until Stop is called.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         s.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}
	s.mutex.Lock()
	s.server = srv
	s.mutex.Unlock()

	s.logger.Info("starting jsregex server", "addr", srv.Addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop() error {
	s.stopOnce.Do(func() { close(s.stop) })

	s.mutex.RLock()
	srv := s.server
	s.mutex.RUnlock()
	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// SendEvent queues an event for the event buffer and connected clients.
// Events are dropped while the queue is full.
func (s *Server) SendEvent(event handlers.Event) error {
	select {
	case s.events <- event:
	default:
		s.logger.Debug("event queue full, dropping event", "type", event.Type, "id", event.ConversionID)
	}
	return nil
}

// ConvertRequest is the body of /api/convert and of WebSocket messages.
// Unset options fall back to the engine's.
type ConvertRequest struct {
	Document          json.RawMessage `json:"document"`
	Target            string          `json:"target,omitempty"`
	EmulatePossessive *bool           `json:"emulate_possessive,omitempty"`
	ExtraFlags        *string         `json:"extra_flags,omitempty"`
}

func (s *Server) convert(req ConvertRequest) (*jsregex.Conversion, int, error) {
	if len(req.Document) == 0 {
		return nil, http.StatusBadRequest, errors.New("document is required")
	}

	opts := s.engine.GetOptions()
	if req.Target != "" {
		target, err := converter.ParseTarget(req.Target)
		if err != nil {
			return nil, http.StatusBadRequest, err
		}
		opts.Target = target
	}
	if req.EmulatePossessive != nil {
		opts.EmulatePossessive = *req.EmulatePossessive
	}
	if req.ExtraFlags != nil {
		opts.ExtraFlags = *req.ExtraFlags
	}

	conv, err := s.engine.ConvertDocumentWithOptions(req.Document, syntax.FormatJSON, opts)
	switch {
	case err == nil:
		return conv, http.StatusOK, nil
	case jsregex.IsLimitError(err), errors.Is(err, jsregex.ErrNilTree):
		return nil, http.StatusUnprocessableEntity, err
	default:
		return nil, http.StatusBadRequest, err
	}
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON request")
		return
	}

	conv, status, err := s.convert(req)
	if err != nil {
		s.logger.Info("conversion refused", "status", status, "error", err)
		writeError(w, status, err.Error())
		return
	}
	writeData(w, http.StatusOK, conv)
}

type validationResponse struct {
	Valid      bool                     `json:"valid"`
	Violations []syntax.SchemaViolation `json:"violations,omitempty"`
	Message    string                   `json:"message,omitempty"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	format := syntax.FormatJSON
	if f := r.URL.Query().Get("format"); f != "" {
		parsed, err := syntax.ParseFormat(f)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		format = parsed
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}

	violations, err := syntax.ValidateDocument(data, format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := validationResponse{Valid: len(violations) == 0, Violations: violations}
	if resp.Valid {
		resp.Message = "Tree document is valid"
	}
	writeData(w, http.StatusOK, resp)
}

func (s *Server) handleEvents(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, s.recentEvents())
}

// recentEvents copies the event buffer in chronological order.
func (s *Server) recentEvents() []handlers.Event {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	events := make([]handlers.Event, s.eventCount)
	size := len(s.eventBuffer)
	if s.eventCount == size {
		for i := range size {
			events[i] = s.eventBuffer[(s.eventIndex+i)%size]
		}
	} else {
		copy(events, s.eventBuffer[:s.eventCount])
	}
	return events
}

// Stats returns request statistics for the API routes.
func (s *Server) Stats() metrics.HTTPStats {
	return s.httpMetrics.GetStats()
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, s.Stats())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, map[string]int{"clients": s.clientCount()})
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"data":   data,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "error",
		"error":  message,
	})
}
