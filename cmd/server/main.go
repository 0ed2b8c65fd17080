package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/xtding233/card-randomizer/internal/archive"
	"github.com/xtding233/card-randomizer/internal/config"
	"github.com/xtding233/card-randomizer/internal/game"
	"github.com/xtding233/card-randomizer/internal/service"
)

// healthService is the gRPC health name reporting whether the default
// profile and its data tables load.
const healthService = "randomizer"

// ParseConfig loads env defaults and then parses flags.
func ParseConfig(fs *flag.FlagSet, args []string) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	cfg.BindCommon(fs)
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.GRPCAddr, "grpc-addr", cfg.GRPCAddr, "gRPC health listen address (empty disables)")
	fs.DurationVar(&cfg.WatchInterval, "watch-interval", cfg.WatchInterval, "config and data poll interval (0 disables)")
	if err := config.ParseFromArgs(&cfg, fs, args); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// reloader re-reads the default profile after a file change and mirrors the
// outcome into the HTTP readiness flag and the gRPC health status. After a
// good reload the watcher follows the profile's current data tables.
type reloader struct {
	svc     *service.Service
	h       *handler
	health  *health.Server
	watcher *game.FileWatcher
	profile string
	logger  *log.Logger
}

func (r *reloader) reload() error {
	err := r.svc.Reload(r.profile)
	r.h.setReady(err)
	status := grpc_health_v1.HealthCheckResponse_SERVING
	if err != nil {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
		r.logger.Printf("reload profile %s: %v", r.profile, err)
	}
	if r.health != nil {
		r.health.SetServingStatus("", status)
		r.health.SetServingStatus(healthService, status)
	}
	if err == nil && r.watcher != nil {
		r.watcher.SetPaths(r.svc.WatchPaths(r.profile))
	}
	return err
}

func (r *reloader) onChange(paths []string) {
	r.logger.Printf("changed: %v", paths)
	if r.reload() == nil {
		r.logger.Printf("reloaded profile %s", r.profile)
	}
}

// Run serves HTTP, and gRPC health when configured, until ctx is done.
func Run(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	var store *archive.Store
	if cfg.ArchivePath != "" {
		var err error
		if store, err = archive.Open(cfg.ArchivePath); err != nil {
			return err
		}
		defer store.Close()
	}
	svc := service.New(game.NewLoader(cfg.ConfigDir), cfg.DataDir, store, logger)
	h := newHandler(svc, cfg.Profile, logger)
	rl := &reloader{svc: svc, h: h, profile: cfg.Profile, logger: logger}

	errs := make(chan error, 2)
	var grpcServer *grpc.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", cfg.GRPCAddr, err)
		}
		grpcServer = grpc.NewServer()
		rl.health = health.NewServer()
		grpc_health_v1.RegisterHealthServer(grpcServer, rl.health)
		logger.Printf("grpc health listening on %v", lis.Addr())
		go func() {
			if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				errs <- fmt.Errorf("serve gRPC: %w", err)
			}
		}()
	}
	// a broken profile still starts the server, reporting unavailable
	_ = rl.reload()

	if cfg.WatchInterval > 0 {
		rl.watcher = game.NewFileWatcher(svc.WatchPaths(cfg.Profile), cfg.WatchInterval, rl.onChange)
		go rl.watcher.Run(ctx)
	}

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: h.routes(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Printf("listening on %s ...", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("serve HTTP: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errs:
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("shutdown HTTP: %w", err)
	}
	if grpcServer != nil {
		rl.health.Shutdown()
		grpcServer.GracefulStop()
	}
	return runErr
}

func main() {
	cfg, err := ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := Run(ctx, cfg, log.Default()); err != nil {
		log.Fatal(err)
	}
}
