package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"hospital-portal/internal/config"
	"hospital-portal/internal/handler"
	"hospital-portal/internal/health"
	"hospital-portal/internal/logging"
	"hospital-portal/internal/session"
	"hospital-portal/internal/store"
	"hospital-portal/internal/web"
)

const (
	purgeEvery  = time.Hour
	probeEvery  = 15 * time.Second
	stopTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}
	log, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// database
	st, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer st.Close()
	log.Info(ctx, "database ready", "dialect", st.Dialect())

	views, err := web.New()
	if err != nil {
		return fmt.Errorf("templates: %w", err)
	}
	sessions := session.NewManager(st, cfg.SecretKey, cfg.SessionTTL, cfg.CookieSecure)
	h := handler.New(st, sessions, views, log)

	checker := health.New(st, log)
	go checker.Run(ctx, probeEvery)
	go purgeSessions(ctx, st, log)

	// grpc health server
	var grpcSrv *grpc.Server
	if cfg.GRPCPort != "" {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			return fmt.Errorf("listen grpc: %w", err)
		}
		grpcSrv = grpc.NewServer()
		checker.Register(grpcSrv)
		go func() {
			log.Info(ctx, "grpc health listening", "port", cfg.GRPCPort)
			if err := grpcSrv.Serve(lis); err != nil {
				log.Error(ctx, "grpc", "err", err)
			}
		}()
	}

	mux := http.NewServeMux()
	mux.Handle("/healthz", checker)
	mux.Handle("/", h.Routes())

	httpSrv := &http.Server{
		Addr:              ":" + cfg.WebPort,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "http listening", "port", cfg.WebPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// graceful shutdown
	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Error(ctx, "http", "err", err)
	}
	log.Info(context.Background(), "shutting down")

	checker.Shutdown()
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// purgeSessions drops expired session rows until ctx is done.
func purgeSessions(ctx context.Context, st *store.Store, log logging.Logger) {
	t := time.NewTicker(purgeEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := st.PurgeSessions(ctx, now)
			if err != nil {
				log.Warn(ctx, "purge sessions", "err", err)
				continue
			}
			if n > 0 {
				log.Debug(ctx, "purged sessions", "count", n)
			}
		}
	}
}
