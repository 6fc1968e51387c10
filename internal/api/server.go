package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/groupmute/groupmute/internal/biz"
	"github.com/groupmute/groupmute/internal/biz/repo"
	"github.com/groupmute/groupmute/internal/biz/usecase"
	"github.com/groupmute/groupmute/internal/logger"
	"github.com/groupmute/groupmute/internal/metrics"
	"github.com/groupmute/groupmute/internal/service"
)

// Server provides the HTTP API for the listener, the settings UI and operators
type Server struct {
	prefs         repo.PreferencesRepo
	usecases      *biz.Usecases
	notifications *service.NotificationService
	broadcaster   *service.Broadcaster
	metrics       *metrics.Metrics
	log           *logger.Logger

	server *http.Server
	addr   string

	// closed on Stop so open streams end before Shutdown waits on them
	done     chan struct{}
	stopOnce sync.Once
}

// NewServer creates a new API server
func NewServer(
	prefs repo.PreferencesRepo,
	usecases *biz.Usecases,
	notifications *service.NotificationService,
	broadcaster *service.Broadcaster,
	m *metrics.Metrics,
	log *logger.Logger,
	addr string,
) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		prefs:         prefs,
		usecases:      usecases,
		notifications: notifications,
		broadcaster:   broadcaster,
		metrics:       m,
		log:           log.Component("api"),
		addr:          addr,
		done:          make(chan struct{}),
	}
}

// Handler builds the request router
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Preferences
	mux.HandleFunc("/api/schedules", s.handleSchedules)
	mux.HandleFunc("/api/settings", s.handleSettings)
	mux.HandleFunc("/api/groups", s.handleGroups)

	// Mute log
	mux.HandleFunc("/api/mutelogs", s.handleMuteLogs)
	mux.HandleFunc("/api/mutelogs/stream", s.handleMuteLogStream)

	// Notifications
	mux.HandleFunc("/api/notifications", s.handleNotifications)
	mux.HandleFunc("/api/notifications/", s.handleNotificationItem)
	mux.HandleFunc("/api/evaluate", s.handleEvaluate)

	// Metrics
	mux.Handle("/metrics", s.metrics.Handler())

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return mux
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info("Starting HTTP server", "addr", s.addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop ends open streams and stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.done) })
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// ============ Helpers ============

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeStatusJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, usecase.ErrEventNotFound):
		status = http.StatusNotFound
	case errors.Is(err, usecase.ErrActionOutOfRange), errors.Is(err, usecase.ErrNoRemoteInputs):
		status = http.StatusUnprocessableEntity
	}
	s.writeStatusJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	s.writeStatusJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}
