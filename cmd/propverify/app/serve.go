package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/propverify/internal/events"
	"github.com/agentstation/propverify/internal/server"
	"github.com/agentstation/propverify/pkg/constants"
)

// NewServeCommand creates the serve command.
func (a *App) NewServeCommand() *cobra.Command {
	defaults := server.DefaultConfig()

	cmd := &cobra.Command{
		Use:     "serve",
		GroupID: "core",
		Short:   "Serve the verification REST API",
		Long: `Start the HTTP API for property verification.

Endpoints:
  POST {prefix}/properties/{id}/verify      verify and store a property
  GET  {prefix}/properties/{id}             read the stored record
  GET  {prefix}/properties/{id}/provenance  field provenance
  GET  {prefix}/regions                     region table
  GET  {prefix}/updates/ws                  live verification events
  GET  /metrics                             Prometheus metrics

When amqp_url is configured every event is also published to RabbitMQ.`,
		Example: `  propverify serve
  propverify serve --port 9090 --cors --cors-origins https://app.example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := defaults
			cfg.Host, _ = cmd.Flags().GetString("host")
			cfg.Port, _ = cmd.Flags().GetInt("port")
			cfg.PathPrefix, _ = cmd.Flags().GetString("prefix")
			cfg.CORSEnabled, _ = cmd.Flags().GetBool("cors")
			cfg.CORSOrigins, _ = cmd.Flags().GetStringSlice("cors-origins")
			cfg.MetricsEnabled, _ = cmd.Flags().GetBool("metrics")
			cfg.CacheTTL = a.config.CacheTTL
			cfg.Version = a.version
			return a.serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("host", defaults.Host, "host address to bind to")
	cmd.Flags().IntP("port", "p", defaults.Port, "port to listen on")
	cmd.Flags().String("prefix", defaults.PathPrefix, "API path prefix")
	cmd.Flags().Bool("cors", false, "enable CORS")
	cmd.Flags().StringSlice("cors-origins", nil, "allowed CORS origins (default all when --cors is set)")
	cmd.Flags().Bool("metrics", defaults.MetricsEnabled, "expose Prometheus metrics on /metrics")

	return cmd
}

func (a *App) serve(ctx context.Context, cfg server.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	v, err := a.Verifier(ctx)
	if err != nil {
		return err
	}

	opts := []server.Option{
		server.WithLogger(a.logger),
		server.WithGatherer(a.registry),
	}
	pub, err := a.Publisher()
	if err != nil {
		return err
	}
	if pub != nil {
		opts = append(opts, server.WithSubscriber(events.Subscriber(pub)))
	}

	srv, err := server.New(v, cfg, opts...)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv.Start()

	httpServer := srv.HTTPServer()
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().
			Str("addr", httpServer.Addr).
			Str("prefix", cfg.PathPrefix).
			Bool("cors", cfg.CORSEnabled).
			Bool("amqp", pub != nil).
			Msg("Starting API server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			_ = srv.Shutdown(context.Background())
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info().Msg("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	start := time.Now()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("background services shutdown failed: %w", err)
	}
	a.logger.Info().Dur("took", time.Since(start)).Msg("Server stopped gracefully")
	return nil
}
