// Package preview serves a built site locally and rebuilds it when sources
// change or on a schedule.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// Options configures Serve.
type Options struct {
	Addr         string // listen address, ":8000" by default
	BuildDir     string
	Build        BuildFunc
	WatchDirs    []string // watched recursively
	WatchFiles   []string // watched individually, such as the config file
	Debounce     time.Duration
	RebuildEvery time.Duration // 0 disables scheduled rebuilds
	Registry     *prom.Registry
	Logger       *slog.Logger
	// Ready, when set, receives the bound address once the server listens.
	Ready func(addr string)
}

// Serve runs an initial build, then serves BuildDir until ctx is done while
// rebuilding on changes.
func Serve(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Build == nil {
		return errors.New("preview: no build function")
	}
	addr := opts.Addr
	if addr == "" {
		addr = ":8000"
	}

	rb := NewRebuilder(opts.Build, logger)
	rb.BuildNow(ctx)

	watcher, err := NewWatcher(opts.WatchDirs, opts.WatchFiles, []string{opts.BuildDir}, opts.Debounce, rb.Trigger, logger)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		_ = watcher.fs.Close()
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           NewRouter(opts.BuildDir, rb, opts.Registry),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go rb.Run(runCtx)
	go func() { _ = watcher.Run(runCtx) }()

	if opts.RebuildEvery > 0 {
		sched, err := NewScheduler(opts.RebuildEvery, rb.Trigger, logger)
		if err != nil {
			_ = ln.Close()
			return err
		}
		sched.Start()
		defer func() { _ = sched.Stop() }()
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	bound := ln.Addr().String()
	logger.Info("Preview server listening", logfields.URL("http://"+bound))
	if opts.Ready != nil {
		opts.Ready(bound)
	}

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("preview server: %w", err)
		}
		return nil
	}

	logger.Info("Shutting down preview server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", logfields.Error(err))
	}
	cancel()
	<-rb.Done()
	return nil
}
