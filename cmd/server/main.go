package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"timeslider/internal/adapter/config/watch"
	httpadapter "timeslider/internal/adapter/http"
	metricsinmem "timeslider/internal/adapter/metrics/inmemory"
	gormrepo "timeslider/internal/adapter/repo/gorm"
	"timeslider/internal/adapter/repo/memory"
	"timeslider/internal/app/ports"
	"timeslider/internal/app/slider"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

type options struct {
	addr          string
	corsOrigin    string
	configPath    string
	dsn           string
	migrationsDir string
	verbose       bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := options{}
	cmd := &cobra.Command{
		Use:          "timeslider",
		Short:        "Temporal slider controller for time-enabled map layers",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(opts.verbose)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts, logger)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.addr, "addr", envOr("TIMESLIDER_ADDR", ":8080"), "listen address")
	flags.StringVar(&opts.corsOrigin, "cors-origin", envOr("TIMESLIDER_CORS_ORIGIN", "*"), "Access-Control-Allow-Origin sent to renderers")
	flags.StringVar(&opts.configPath, "config", envOr("TIMESLIDER_CONFIG", ""), "slider config file (yaml or json), watched for changes")
	flags.StringVar(&opts.dsn, "db-dsn", envOr("TIMESLIDER_DB_DSN", ""), "postgres dsn for the window mirror; in-memory when empty")
	flags.StringVar(&opts.migrationsDir, "migrations", envOr("TIMESLIDER_MIGRATIONS_DIR", "migrations"), "directory of SQL migrations applied at startup")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// windowStore is the mirror the controller publishes to. cleanup drops what this process wrote.
type windowStore struct {
	store   ports.WindowStore
	mirror  ports.WindowLister
	cleanup func(context.Context) error
}

func buildStore(ctx context.Context, opts options, logger *zap.Logger) (windowStore, error) {
	if strings.TrimSpace(opts.dsn) == "" {
		logger.Info("using in-memory window store")
		repo := memory.NewWindowRepo(memory.NewStore())
		return windowStore{
			store:   repo,
			mirror:  repo,
			cleanup: func(context.Context) error { return nil },
		}, nil
	}

	db, err := gormrepo.OpenPostgres(ctx, opts.dsn)
	if err != nil {
		return windowStore{}, err
	}
	if opts.migrationsDir != "" {
		if _, statErr := os.Stat(opts.migrationsDir); statErr == nil {
			applied, err := gormrepo.ApplyMigrations(ctx, db, os.DirFS(opts.migrationsDir))
			if err != nil {
				return windowStore{}, err
			}
			logger.Info("migrations applied", zap.Strings("versions", applied))
		} else {
			logger.Warn("migrations dir not found, skipping", zap.String("dir", opts.migrationsDir))
		}
	}
	sessionID := uuid.NewString()
	repo := gormrepo.NewWindowRepo(db, sessionID)
	logger.Info("using postgres window store", zap.String("session_id", sessionID))
	return windowStore{
		store:  repo,
		mirror: repo,
		cleanup: func(ctx context.Context) error {
			n, err := repo.DeleteSession(ctx)
			if err == nil {
				logger.Info("session windows removed", zap.Int64("rows", n))
			}
			return err
		},
	}, nil
}

func run(ctx context.Context, opts options, logger *zap.Logger) error {
	ws, err := buildStore(ctx, opts, logger)
	if err != nil {
		return err
	}
	kpiRecorder := metricsinmem.NewRecorder()
	ctl := slider.NewController(slider.Config{
		Store:   ws.store,
		Metrics: kpiRecorder,
		Logger:  logger.Named("slider"),
	})

	var watcher *watch.Watcher
	if opts.configPath != "" {
		watcher, err = watch.New(watch.Config{
			Path:   opts.configPath,
			Syncer: ctl,
			Logger: logger.Named("config"),
		})
		if err != nil {
			return err
		}
		if err := watcher.Reload(ctx); err != nil {
			return fmt.Errorf("load slider config: %w", err)
		}
	} else {
		logger.Warn("no slider config given, no layers mounted")
	}

	h := httpadapter.Handler{Slider: ctl, KPI: kpiRecorder, Mirror: ws.mirror, AllowOrigin: opts.corsOrigin}
	s := server.Default(server.WithHostPorts(opts.addr), server.WithExitWaitTime(time.Second))
	h.RegisterRoutes(s)
	s.OnShutdown = append(s.OnShutdown, func(ctx context.Context) {
		ctl.Close()
		if err := ws.cleanup(ctx); err != nil {
			logger.Warn("remove session windows", zap.Error(err))
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("timeslider server listening", zap.String("addr", opts.addr), zap.Strings("layers", ctl.LayerPaths()))
		err := s.Run()
		if gctx.Err() != nil {
			return nil
		}
		if err == nil {
			err = errors.New("server stopped unexpectedly")
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})
	if watcher != nil {
		g.Go(func() error { return watcher.Run(gctx) })
	}
	return g.Wait()
}

func envOr(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}
