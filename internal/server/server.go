package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"lantern/internal/api"
	"lantern/internal/channel"
	"lantern/internal/loop"
	"lantern/internal/planes"
	"lantern/internal/sensor"
	"lantern/pkg/logging"
)

const subsystem = "HTTP"

// Config configures the display HTTP API.
type Config struct {
	Host string
	Port int
	// ID and Name identify this display to companions.
	ID   string
	Name string
}

// Server serves the display HTTP API.
type Server struct {
	cfg     Config
	display api.DisplayAPI

	mu       sync.Mutex
	http     *http.Server
	listener net.Listener
}

// New creates a server for display.
func New(cfg Config, display api.DisplayAPI) *Server {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	return &Server{cfg: cfg, display: display}
}

// Start listens and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.http != nil {
		return fmt.Errorf("http server already started")
	}

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	s.listener = ln
	s.http = &http.Server{
		Handler:           NewRouter(s.display, s.cfg.ID, s.cfg.Name),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	logging.Info(subsystem, "Serving display API on http://%s", ln.Addr())

	srv := s.http
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error(subsystem, err, "HTTP server error")
		}
	}()
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.http = nil
	s.listener = nil
	s.mu.Unlock()

	if srv == nil {
		return fmt.Errorf("http server not started")
	}
	logging.Info(subsystem, "Stopping display API")
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// NewRouter builds the display API routes.
func NewRouter(display api.DisplayAPI, id, name string) *mux.Router {
	h := &handlers{display: display, id: id, name: name}

	r := mux.NewRouter()
	r.HandleFunc(api.PathHealth, h.health).Methods(http.MethodGet)
	r.HandleFunc(api.PathStatus, h.status).Methods(http.MethodGet)
	r.HandleFunc(api.PathChannels, h.channels).Methods(http.MethodGet)
	r.HandleFunc(api.PathPlanes, h.getPlanes).Methods(http.MethodGet)
	r.HandleFunc(api.PathPlanes, h.putPlanes).Methods(http.MethodPut)
	r.HandleFunc(api.PathPlane, h.putPlane).Methods(http.MethodPut)
	r.HandleFunc(api.PathPlane, h.deletePlane).Methods(http.MethodDelete)
	r.HandleFunc(api.PathDirection, h.putDirection).Methods(http.MethodPut)
	r.HandleFunc(api.PathGravity, h.putGravity).Methods(http.MethodPut)
	r.Use(logRequests)
	return r
}

type handlers struct {
	display api.DisplayAPI
	id      string
	name    string
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.Health{Status: "ok", ID: h.id, Name: h.name})
}

func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	st, err := h.display.Status(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *handlers) channels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.display.ChannelTypes())
}

func (h *handlers) getPlanes(w http.ResponseWriter, r *http.Request) {
	p, err := h.display.Planes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handlers) putPlanes(w http.ResponseWriter, r *http.Request) {
	var p planes.Planes
	if !decode(w, r, &p) {
		return
	}
	if p == nil {
		p = planes.Planes{}
	}
	if err := h.display.SetPlanes(r.Context(), p); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) putPlane(w http.ResponseWriter, r *http.Request) {
	d, err := channel.ParseDirection(mux.Vars(r)["direction"])
	if err != nil {
		writeError(w, err)
		return
	}
	var cfg channel.Config
	if !decode(w, r, &cfg) {
		return
	}
	if err := h.display.SetPlane(r.Context(), d, cfg); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) deletePlane(w http.ResponseWriter, r *http.Request) {
	d, err := channel.ParseDirection(mux.Vars(r)["direction"])
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.display.ClearPlane(r.Context(), d); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) putDirection(w http.ResponseWriter, r *http.Request) {
	var req api.DirectionRequest
	if !decode(w, r, &req) {
		return
	}
	d, err := channel.ParseDirection(string(req.Direction))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.display.SetDirection(r.Context(), d); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) putGravity(w http.ResponseWriter, r *http.Request) {
	var req api.GravityRequest
	if !decode(w, r, &req) {
		return
	}
	d, err := h.display.ReportGravity(r.Context(), req.X, req.Y, req.Z)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.DirectionRequest{Direction: d})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	return true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, channel.ErrUnknownDirection), errors.Is(err, planes.ErrInvalid), errors.Is(err, sensor.ErrWeakReading):
		return http.StatusBadRequest
	case errors.Is(err, loop.ErrStopped), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		logging.Error(subsystem, err, "Request failed")
	}
	writeJSON(w, code, api.ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Debug(subsystem, "Failed to write response: %v", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.Debug(subsystem, "%s %s -> %d (%s)", r.Method, r.URL.Path, rec.code, time.Since(start))
	})
}
