// Package server exposes the tracker and the demand board over a small JSON
// API.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"zenflow/internal/demands"
	"zenflow/internal/tracker"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	router  *chi.Mux
	items   *tracker.Service
	demands *demands.Manager
	log     *logrus.Logger

	// demandMu serialises area selection with the demand call that follows.
	demandMu sync.Mutex
}

// New builds the router. board may be nil, in which case the area and demand
// routes answer 501.
func New(items *tracker.Service, board *demands.Manager, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{items: items, demands: board, log: log}

	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(requestLogger(log))
	router.Use(chimiddleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Route("/api", func(r chi.Router) {
		r.Get("/items", s.listItems)
		r.Post("/items", s.createItem)
		r.Get("/items/{id}", s.getItem)
		r.Put("/items/{id}", s.updateItem)
		r.Post("/items/{id}/progress", s.recordProgress)
		r.Post("/items/{id}/delete", s.requestDelete)
		r.Post("/items/{id}/delete/confirm", s.confirmDelete)
		r.Post("/items/{id}/delete/cancel", s.cancelDelete)
		r.Get("/agenda", s.agenda)

		r.Group(func(r chi.Router) {
			r.Use(s.requireBoard)

			r.Get("/areas", s.listAreas)
			r.Post("/areas", s.createArea)
			r.Post("/areas/{id}/delete", s.requestDeleteArea)
			r.Post("/areas/{id}/delete/confirm", s.confirmDeleteArea)
			r.Get("/areas/{id}/demands", s.listDemands)
			r.Post("/areas/{id}/demands", s.createDemand)
			r.Post("/demands/{id}/toggle", s.toggleDemand)
			r.Delete("/demands/{id}", s.deleteDemand)
		})
	})

	s.router = router
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("http server stopped")
	return nil
}

func (s *Server) requireBoard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.demands == nil {
			writeJSON(w, http.StatusNotImplemented, errorBody{Error: "demand board is not available for this backend"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request through logrus.
func requestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			entry := log.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   ww.Status(),
				"bytes":    ww.BytesWritten(),
				"duration": time.Since(start).String(),
			})
			if id := chimiddleware.GetReqID(r.Context()); id != "" {
				entry = entry.WithField("request_id", id)
			}
			if ww.Status() >= http.StatusInternalServerError {
				entry.Warn("request failed")
				return
			}
			entry.Debug("request")
		})
	}
}
