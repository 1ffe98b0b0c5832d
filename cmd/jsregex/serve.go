package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/chosenoffset/jsregex/pkg/jsregex/handlers"
	"github.com/chosenoffset/jsregex/pkg/jsregex/server"
)

func (a *app) serveCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the conversion server",
		Long: `Serve conversions over HTTP and WebSocket.

Endpoints:
  POST /api/convert    convert a tree document
  POST /api/validate   validate a tree document
  GET  /api/events     recent conversion events
  GET  /api/stats      request statistics
  GET  /metrics        Prometheus metrics
  GET  /ws             WebSocket conversions and event stream`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("host") {
				a.cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			return a.runServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")

	return cmd
}

func (a *app) runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	engine, err := a.newEngine(a.cfg.Options(), reg)
	if err != nil {
		return err
	}
	engine.RegisterHandler(handlers.WarningEvent, handlers.NewLogHandler(a.logger))

	sc := a.cfg.Server
	srv := server.NewServer(engine, server.Config{
		Host:            sc.Host,
		Port:            sc.Port,
		MaxClients:      sc.MaxClients,
		EventBufferSize: sc.EventBufferSize,
		MaxBodyBytes:    sc.MaxBodyBytes,
		ReadTimeout:     sc.ReadTimeout,
		WriteTimeout:    sc.WriteTimeout,
		IdleTimeout:     sc.IdleTimeout,
		AllowedOrigins:  sc.AllowedOrigins,
	}, server.WithLogger(a.logger), server.WithGatherer(reg))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		a.logger.Info("shutting down")
		return srv.Stop()
	}
}
