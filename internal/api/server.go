// Package api serves the status of the live process over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rxtech-lab/argo-pairs/internal/logger"
	"github.com/rxtech-lab/argo-pairs/internal/trading/live"
	"github.com/rxtech-lab/argo-pairs/pkg/errors"
	"go.uber.org/zap"
)

// SnapshotSource provides the state the server reports.
type SnapshotSource interface {
	Snapshot() (live.Snapshot, error)
}

// Route is a single endpoint of the router.
type Route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc http.HandlerFunc
}

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code,omitempty"`
}

type quoteResponse struct {
	Symbol string     `json:"symbol"`
	Quote  live.Quote `json:"quote"`
}

// Server is the status HTTP server.
type Server struct {
	source  SnapshotSource
	log     *logger.Logger
	started time.Time

	httpServer *http.Server
}

// NewServer creates a server listening on address once Start is called.
func NewServer(address string, source SnapshotSource, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewNopLogger()
	}

	s := &Server{
		source:  source,
		log:     log.Named("api"),
		started: time.Now(),
	}

	s.httpServer = &http.Server{
		Addr:              address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Router returns the router with every route registered.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)

	routes := []Route{
		{"Health", http.MethodGet, "/health", s.health},
		{"Snapshot", http.MethodGet, "/snapshot", s.snapshot},
		{"Quote", http.MethodGet, "/quotes/{symbol}", s.quote},
	}

	for _, route := range routes {
		router.
			Methods(route.Method).
			Path(route.Pattern).
			Name(route.Name).
			Handler(s.logRequests(route.HandlerFunc, route.Name))
	}

	return router
}

// logRequests logs every request of the inner handler.
func (s *Server) logRequests(inner http.Handler, name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		inner.ServeHTTP(w, r)

		s.log.Debug("Request served",
			zap.String("method", r.Method),
			zap.String("uri", r.RequestURI),
			zap.String("route", name),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

// Start listens and serves in the background.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to listen on %s", s.httpServer.Addr)
	}

	s.log.Info("Status server listening", zap.String("address", listener.Addr().String()))

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("Status server stopped", zap.Error(err))
		}
	}()

	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) snapshot(w http.ResponseWriter, _ *http.Request) {
	snapshot, err := s.source.Snapshot()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)

		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) quote(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	snapshot, err := s.source.Snapshot()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)

		return
	}

	quote, ok := snapshot.Quotes[symbol]
	if !ok {
		writeError(w, http.StatusNotFound, errors.NewPriceUnavailableError(symbol))

		return
	}

	writeJSON(w, http.StatusOK, quoteResponse{Symbol: symbol, Quote: quote})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: int(errors.GetCode(err))})
}
