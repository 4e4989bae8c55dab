package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hazyhaar/socialconnect-core/pkg/api"
	"github.com/hazyhaar/socialconnect-core/pkg/catalog"
	"github.com/hazyhaar/socialconnect-core/pkg/chassis"
	"github.com/hazyhaar/socialconnect-core/pkg/importer"
	"github.com/hazyhaar/socialconnect-core/pkg/mcpquic"
	"github.com/hazyhaar/socialconnect-core/pkg/store"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Serve the SocialConnect API.

With transport "http" (default) the API is served over plain HTTP, and
mcp_addr optionally adds a standalone MCP-over-QUIC listener on UDP.
With transport "chassis" the same port carries TLS (HTTP/1.1+HTTP/2) on TCP
and QUIC (HTTP/3 + MCP) on UDP.

SIGHUP reloads the tables; SIGINT/SIGTERM shut down gracefully.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default :8420)")
	serveCmd.Flags().String("transport", "", "http or chassis")
	serveCmd.Flags().Bool("direct-mappings", false, "enable exact-address sector overrides")
	serveCmd.Flags().String("mcp-addr", "", "UDP address of a standalone MCP QUIC listener (http transport)")
	_ = viper.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("mcp_addr", serveCmd.Flags().Lookup("mcp-addr"))
	_ = viper.BindPFlag("transport", serveCmd.Flags().Lookup("transport"))
	_ = viper.BindPFlag("detect.direct_mappings", serveCmd.Flags().Lookup("direct-mappings"))
}

func runServe(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	logger := e.logger

	st, err := e.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	reg, err := e.loadRegistry()
	if err != nil {
		return err
	}
	info := reg.Info()
	logger.Info("tables loaded", "version", info.Version, "sectors", len(info.Sectors), "problematiques", info.Problematiques, "actions", info.Actions)

	router := api.NewRouter(reg, st, api.Options{
		Logger:        logger,
		RateLimit:     e.cfg.RateLimit.RPS,
		Burst:         e.cfg.RateLimit.Burst,
		RateLimitIdle: e.cfg.RateLimit.Idle,
		Workers:       e.cfg.Workers,
	})

	// SIGHUP: hot reload tables.
	// SIGINT/SIGTERM: graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go watchReload(ctx, reg, logger)

	if iv := e.cfg.Sources.CheckInterval; iv > 0 {
		sdb, err := importer.OpenSourceDB(e.cfg.DBPath)
		if err != nil {
			return err
		}
		defer sdb.Close()
		go importer.NewChecker(sdb, logger, iv).Start(ctx)
		logger.Info("import source checker started", "interval", iv)
	}

	if e.cfg.Transport == "chassis" {
		return serveChassis(ctx, e, router, reg, st)
	}
	if e.cfg.MCPAddr != "" {
		l, err := listenMCP(e, reg, st)
		if err != nil {
			return err
		}
		defer l.Close()
		go func() {
			if err := l.Serve(ctx); err != nil && ctx.Err() == nil {
				logger.Error("MCP listener stopped", "error", err)
			}
		}()
	}
	return serveHTTP(ctx, e.cfg.Addr, router, logger)
}

func newMCPServer(reg *catalog.Registry, st *store.Store) *server.MCPServer {
	mcpSrv := server.NewMCPServer("socialconnect", version, server.WithToolCapabilities(false))
	api.RegisterMCPTools(mcpSrv, reg, st)
	return mcpSrv
}

// listenMCP binds the standalone MCP QUIC listener. Without a configured
// certificate it uses a self-signed one.
func listenMCP(e *env, reg *catalog.Registry, st *store.Store) (*mcpquic.Listener, error) {
	if e.cfg.TLS.CertFile == "" || e.cfg.TLS.KeyFile == "" {
		e.logger.Warn("no TLS certificate configured, MCP listener uses a self-signed one")
	}
	tlsCfg, err := mcpquic.ServerTLSConfig(e.cfg.TLS.CertFile, e.cfg.TLS.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("mcp tls: %w", err)
	}
	l, err := mcpquic.NewListener(e.cfg.MCPAddr, tlsCfg, newMCPServer(reg, st), e.logger)
	if err != nil {
		return nil, fmt.Errorf("mcp listen %s: %w", e.cfg.MCPAddr, err)
	}
	return l, nil
}

func watchReload(ctx context.Context, reg *catalog.Registry, logger *slog.Logger) {
	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	defer signal.Stop(sighup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sighup:
			logger.Info("SIGHUP received, reloading tables")
			if err := reg.Reload(); err != nil {
				logger.Error("reload failed", "error", err)
				continue
			}
			info := reg.Info()
			logger.Info("tables reloaded", "version", info.Version, "sectors", len(info.Sectors))
		}
	}
}

func serveHTTP(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("socialconnect listening", "addr", addr, "transport", "http")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func serveChassis(ctx context.Context, e *env, handler http.Handler, reg *catalog.Registry, st *store.Store) error {
	mcpSrv := newMCPServer(reg, st)

	cs, err := chassis.New(chassis.Config{
		Addr:      e.cfg.Addr,
		CertFile:  e.cfg.TLS.CertFile,
		KeyFile:   e.cfg.TLS.KeyFile,
		Handler:   handler,
		MCPServer: mcpSrv,
		Logger:    e.logger,
	})
	if err != nil {
		return err
	}

	runErr := cs.Start(ctx)

	e.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := cs.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
