package webserver

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"f1laptrend/pkg/dashboard"
	"f1laptrend/pkg/pubsub"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Options struct {
	Address      string
	DataDir      string // served under /data/ when set
	Defaults     dashboard.Inputs
	LoadTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type Manager struct {
	r       *mux.Router
	fetcher dashboard.Fetcher
	ps      *pubsub.PubSub[dashboard.Snapshot]
	opts    Options
	logger  *zap.Logger
}

func NewManager(fetcher dashboard.Fetcher, ps *pubsub.PubSub[dashboard.Snapshot], opts Options, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = 30 * time.Second
	}
	if opts.Defaults.Circuit == "" {
		opts.Defaults = dashboard.DefaultInputs()
	}
	if ps == nil {
		ps = pubsub.NewPubSub[dashboard.Snapshot]()
	}
	m := &Manager{
		r:       mux.NewRouter(),
		fetcher: fetcher,
		ps:      ps,
		opts:    opts,
		logger:  logger,
	}

	m.rootHandlers()
	m.apiHandlers()
	return m
}

// Handler exposes the router, mainly for tests.
func (m *Manager) Handler() http.Handler {
	return m.r
}

func (m *Manager) rootHandlers() {
	m.r.HandleFunc("/ws", m.websocketHandler())
	if m.opts.DataDir == "" {
		return
	}
	fs := http.FileServer(http.Dir(m.opts.DataDir))
	dataStr := "/data/"
	m.r.PathPrefix(dataStr).Handler(http.StripPrefix(dataStr, fs))
}

func (m *Manager) apiHandlers() {
	api := m.r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/circuits", m.circuitsHandler()).Methods(http.MethodGet)

	c := api.PathPrefix("/circuits/{circuit}").Subrouter()
	c.HandleFunc("/view", m.viewHandler()).Methods(http.MethodGet)
	c.HandleFunc("/chart.png", m.chartHandler()).Methods(http.MethodGet)
	c.HandleFunc("/trend.png", m.trendHandler()).Methods(http.MethodGet)
	c.HandleFunc("/sparkline.png", m.sparklineHandler()).Methods(http.MethodGet)
}

// Debug logs every registered route.
func (m *Manager) Debug() {
	_ = m.r.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		fields := []zap.Field{}
		if pathTemplate, err := route.GetPathTemplate(); err == nil {
			fields = append(fields, zap.String("path", pathTemplate))
		}
		if methods, err := route.GetMethods(); err == nil {
			fields = append(fields, zap.String("methods", strings.Join(methods, ",")))
		}
		m.logger.Debug("route", fields...)
		return nil
	})
}

// Serve listens until ctx is cancelled, then shuts down gracefully.
func (m *Manager) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         m.opts.Address,
		WriteTimeout: m.opts.WriteTimeout,
		ReadTimeout:  m.opts.ReadTimeout,
		IdleTimeout:  m.opts.IdleTimeout,
		Handler:      m.r,
		BaseContext:  func(_ net.Listener) context.Context { return ctx },
	}

	errChan := make(chan error, 1)
	go func() {
		m.logger.Info("webserver listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	// Doesn't block if no connections, but will otherwise wait
	// until the timeout deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	m.logger.Info("webserver shutting down")
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}
