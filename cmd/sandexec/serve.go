package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quayrun/sandexec/blobstore"
	"github.com/quayrun/sandexec/internal/api"
	"github.com/quayrun/sandexec/internal/config"
	"github.com/quayrun/sandexec/internal/sysmonitor"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the sandboxed execution HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	slog.Info("starting sandexec")

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("failed to load config, using defaults", "error", err)
		cfg = &config.Config{}
	}

	selfExe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving own executable path: %w", err)
	}

	blob, err := newBlobStore(cfg)
	if err != nil {
		return fmt.Errorf("creating blob store: %w", err)
	}

	if err := os.MkdirAll(cfg.ScratchBaseOrDefault(), 0o755); err != nil {
		return fmt.Errorf("creating scratch base: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		err := config.Watch(ctx, func(newCfg *config.Config) {
			slog.Info("reloaded config", "listen_addr", newCfg.ListenAddrOrDefault())
			cfg = newCfg
		})
		if err != nil && ctx.Err() == nil {
			slog.Error("config watcher failed", "error", err)
		}
	}()

	if cfg.SysMonitorEnabled() {
		sysmonitor.Start(ctx, cfg.ScratchBaseOrDefault())
	}

	server := api.New(cfg.ScratchBaseOrDefault(), blob, selfExe)
	httpServer := &http.Server{
		Addr:    cfg.ListenAddrOrDefault(),
		Handler: server.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.ListenAddrOrDefault())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-sigCh:
		slog.Info("shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return httpServer.Shutdown(shutdownCtx)
}

func newBlobStore(cfg *config.Config) (blobstore.Store, error) {
	if cfg.BlobStore == nil || cfg.BlobStore.UseInMemory() {
		return blobstore.NewMemStore(), nil
	}
	return blobstore.NewS3Store(context.Background(), blobstore.S3Config{
		Bucket:   cfg.BlobStore.Bucket,
		Endpoint: cfg.BlobStore.Endpoint,
		Region:   cfg.BlobStore.Region,
	})
}
