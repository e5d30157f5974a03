// Package httpapi exposes the type registry and object store over HTTP.
// Handlers translate requests into store calls and store errors into status
// codes; they hold no state of their own.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/typekeep/typekeep/pkg/types"
)

// Server routes registry and object requests to a store.
type Server struct {
	store types.Store
	log   *slog.Logger
}

// NewServer creates a Server over store. A nil logger falls back to the
// process default.
func NewServer(store types.Store, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{store: store, log: log}
}

// Handler returns the routed handler with request-id and request-logging
// middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /types", s.handleRegisterType)
	mux.HandleFunc("GET /types", s.handleListTypes)
	mux.HandleFunc("GET /types/{type_id}", s.handleGetType)
	mux.HandleFunc("DELETE /types/{type_id}", s.handleDeleteType)

	mux.HandleFunc("POST /objects/{type_id}", s.handleCreateObject)
	mux.HandleFunc("GET /objects/{type_id}", s.handleListObjects)
	mux.HandleFunc("GET /objects/{type_id}/{object_id}", s.handleGetObject)
	mux.HandleFunc("DELETE /objects/{type_id}/{object_id}", s.handleDeleteObject)

	return s.withRequestID(s.withLogging(mux))
}
