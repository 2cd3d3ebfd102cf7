// Package server provides the HTTP API of propverify.
//
// The server wires a Verifier to HTTP handlers, fans verification events
// out to WebSocket clients and any extra subscribers, and exposes
// Prometheus metrics:
//
//	srv, err := server.New(verifier, server.DefaultConfig(), server.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	srv.Start()
//	defer srv.Shutdown(ctx)
//	http.ListenAndServe(":8080", srv.Handler())
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/agentstation/propverify"
	"github.com/agentstation/propverify/internal/events"
	"github.com/agentstation/propverify/internal/server/cache"
	ws "github.com/agentstation/propverify/internal/server/websocket"
	"github.com/agentstation/propverify/pkg/constants"
	"github.com/agentstation/propverify/pkg/logging"
	"github.com/agentstation/propverify/pkg/property"
	"github.com/agentstation/propverify/pkg/regions"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	verifier    *propverify.Verifier
	cache       *cache.Cache
	broker      *events.Broker
	wsHub       *ws.Hub
	subscribers []events.Subscriber
	upgrader    websocket.Upgrader
	gatherer    prometheus.Gatherer
	regions     regions.Table
	logger      *zerolog.Logger
	config      Config
	ctx         context.Context
	cancel      context.CancelFunc
	startTime   time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithGatherer serves the metrics of g at /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithSubscriber forwards verification events to sub in addition to the WebSocket hub.
func WithSubscriber(sub events.Subscriber) Option {
	return func(s *Server) {
		if sub != nil {
			s.subscribers = append(s.subscribers, sub)
		}
	}
}

// WithRegions sets the region table served at /regions.
func WithRegions(table regions.Table) Option {
	return func(s *Server) {
		s.regions = table
	}
}

// New creates a new server instance with the given configuration.
func New(v *propverify.Verifier, cfg Config, opts ...Option) (*Server, error) {
	if v == nil {
		return nil, fmt.Errorf("verifier cannot be nil")
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = constants.CacheTTL
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		verifier: v,
		cache:    cache.New(cfg.CacheTTL, constants.CacheCleanupInterval),
		gatherer: prometheus.DefaultGatherer,
		regions:  regions.Default(),
		logger:   logging.Default(),
		config:   cfg,
		ctx:      ctx,
		cancel:   cancel,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.CORSEnabled && len(cfg.CORSOrigins) > 0 {
		s.upgrader.CheckOrigin = s.checkOrigin
	} else if cfg.CORSEnabled {
		s.upgrader.CheckOrigin = func(*http.Request) bool { return true }
	}

	s.broker = events.NewBroker(s.logger)
	s.wsHub = ws.NewHub(s.logger)

	s.connectHooks()

	s.logger.Debug().Msg("Server instance created")
	return s, nil
}

// connectHooks publishes verifier results to the broker.
func (s *Server) connectHooks() {
	s.verifier.OnPropertyUnified(func(p *property.Property) {
		s.cache.InvalidateProperty(p.PropertyID)
		s.broker.Publish(events.PropertyUnified, events.UnifiedPayload{
			PropertyID: p.PropertyID,
			Revision:   p.Revision,
			Sources:    sourceNames(p.DataSourcesIntegrated),
		})
	})

	s.verifier.OnVerifyFailed(func(propertyID string, err error) {
		s.broker.Publish(events.PropertyFailed, events.FailedPayload{
			PropertyID: propertyID,
			Error:      err.Error(),
		})
	})
}

// Start starts the broker and the WebSocket hub and subscribes the transports.
func (s *Server) Start() {
	go s.broker.Run(s.ctx)
	go s.wsHub.Run(s.ctx)

	for _, sub := range append([]events.Subscriber{s.wsHub}, s.subscribers...) {
		if !s.broker.Subscribe(sub) {
			s.logger.Warn().Msg("Event broker stopped before transports subscribed")
			return
		}
	}
	s.logger.Debug().Int("subscribers", s.broker.SubscriberCount()).Msg("Background services started")
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// HTTPServer returns an http.Server for the configured address and timeouts.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// Shutdown stops the background services and waits for the broker to close its subscribers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down server background services")
	s.cancel()

	select {
	case <-s.broker.Done():
		s.logger.Info().Msg("Background services shut down")
		return nil
	case <-ctx.Done():
		s.logger.Warn().Msg("Background services shutdown timed out")
		return ctx.Err()
	}
}

// Cache returns the server's cache instance.
func (s *Server) Cache() *cache.Cache {
	return s.cache
}

// WSHub returns the WebSocket hub.
func (s *Server) WSHub() *ws.Hub {
	return s.wsHub
}

// Broker returns the event broker for publishing events.
func (s *Server) Broker() *events.Broker {
	return s.broker
}

// StartTime returns the server start time for uptime calculations.
func (s *Server) StartTime() time.Time {
	return s.startTime
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.config.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func sourceNames(in property.Integration) []string {
	ids := in.Sources()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
