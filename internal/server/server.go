package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zgpcy/ledclock/internal/clockface"
	"github.com/zgpcy/ledclock/internal/collector"
	"github.com/zgpcy/ledclock/internal/config"
	"github.com/zgpcy/ledclock/internal/logger"
)

//go:embed templates/index.html
var indexTemplate string

// HTTP server timeout constants
const (
	DefaultReadTimeout  = 15 * time.Second // Maximum duration for reading the entire request
	DefaultWriteTimeout = 15 * time.Second // Maximum duration before timing out writes of the response
	DefaultIdleTimeout  = 60 * time.Second // Maximum amount of time to wait for the next request
)

// indexPageData holds template data for the index page
type indexPageData struct {
	OnColor    string
	OffColor   string
	Layout     clockface.Layout
	GlyphWidth int
	Digits     []int // plain slice so the page script gets a JSON array
	StatusText string
	LastTick   string
	Location   string
}

// digitsResponse is the /digits payload
type digitsResponse struct {
	Digits     clockface.Digits  `json:"digits"`
	Text       string            `json:"text"`
	Frames     uint64            `json:"frames"`
	Ticks      uint64            `json:"ticks"`
	State      string            `json:"state"`
	LastTick   *time.Time        `json:"last_tick,omitempty"`
	LastDigits *clockface.Digits `json:"last_digits,omitempty"`
}

// Server represents the HTTP server
type Server struct {
	server    *http.Server
	collector *collector.TickCollector
	face      *clockface.Face
	cfg       *config.Config
	logger    *logger.Logger
	index     *template.Template
}

// NewServer creates a new HTTP server. stream serves the /ws websocket
// endpoint; gatherer backs /metrics (nil means the default registry).
func NewServer(cfg *config.Config, c *collector.TickCollector, face *clockface.Face, stream http.Handler, gatherer prometheus.Gatherer, log *logger.Logger) (*Server, error) {
	tmpl, err := template.New("index").Parse(indexTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse index template: %w", err)
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	mux := http.NewServeMux()

	s := &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
			Handler:      mux,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
			IdleTimeout:  DefaultIdleTimeout,
		},
		collector: c,
		face:      face,
		cfg:       cfg,
		logger:    log.WithFields("component", "http"),
		index:     tmpl,
	}

	// Register handlers
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/digits", s.handleDigits)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	if stream != nil {
		mux.Handle("/ws", stream)
	}

	return s, nil
}

// Handler returns the HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", "address", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// handleIndex serves the LED clock page
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	palette := s.face.Palette()
	statusText := "Waiting for first tick"
	if s.collector.IsReady() {
		statusText = "Ticking"
	}

	lastTick := s.collector.LastTickTime()
	lastTickText := "Never"
	if !lastTick.IsZero() {
		lastTickText = lastTick.Format("2006-01-02 15:04:05 MST")
	}

	digits := s.face.Digits()
	data := indexPageData{
		OnColor:    palette.On.String(),
		OffColor:   palette.Off.String(),
		Layout:     s.face.Layout(),
		GlyphWidth: clockface.GlyphWidth,
		Digits:     digits[:],
		StatusText: statusText,
		LastTick:   lastTickText,
		Location:   s.cfg.Location,
	}

	w.Header().Set("Content-Type", "text/html")
	if err := s.index.Execute(w, data); err != nil {
		s.logger.Error("Failed to execute index template", "error", err)
	}
}

// handleDigits returns the digits currently on the face
func (s *Server) handleDigits(w http.ResponseWriter, r *http.Request) {
	digits := s.face.Digits()
	resp := digitsResponse{
		Digits: digits,
		Text:   digits.String(),
		Frames: s.face.Frames(),
		Ticks:  s.collector.TickCount(),
		State:  s.collector.State().String(),
	}
	// last_digits lags the face while a frame is still being pushed
	if last := s.collector.LastTickTime(); !last.IsZero() {
		resp.LastTick = &last
		lastDigits := s.collector.LastDigits()
		resp.LastDigits = &lastDigits
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("Failed to write digits response", "error", err)
	}
}

// handleHealth handles health check requests (always returns 200 for liveness)
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(`{"status":"healthy"}`)); err != nil {
		s.logger.Error("Failed to write health response", "error", err)
	}
}

// handleReady handles readiness check requests (returns 200 once the display
// has been refreshed and the last tick succeeded)
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if !s.collector.IsReady() {
		w.WriteHeader(http.StatusServiceUnavailable)
		if _, err := w.Write([]byte(`{"status":"not ready","message":"waiting for first tick"}`)); err != nil {
			s.logger.Error("Failed to write ready response", "error", err)
		}
		return
	}

	if err := s.collector.LastError(); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		body, _ := json.Marshal(map[string]string{"status": "not ready", "error": err.Error()})
		if _, writeErr := w.Write(body); writeErr != nil {
			s.logger.Error("Failed to write ready response", "error", writeErr)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(`{"status":"ready"}`)); err != nil {
		s.logger.Error("Failed to write ready response", "error", err)
	}
}
