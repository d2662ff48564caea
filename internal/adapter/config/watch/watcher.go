// Package watch reloads the slider config file when it changes on disk and pushes the result
// into the controller.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"timeslider/internal/app/slider"
	"timeslider/internal/config"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const DefaultDebounce = 250 * time.Millisecond

// Syncer receives the resolved layer specs after every successful reload.
type Syncer interface {
	Sync(ctx context.Context, specs []slider.LayerSpec) error
}

type Config struct {
	Path     string
	Syncer   Syncer
	Logger   *zap.Logger
	Debounce time.Duration
}

type Watcher struct {
	path     string
	syncer   Syncer
	logger   *zap.Logger
	debounce time.Duration
}

func New(cfg Config) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, errors.New("watch: config path is required")
	}
	if cfg.Syncer == nil {
		return nil, errors.New("watch: syncer is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", cfg.Path, err)
	}
	return &Watcher{
		path:     abs,
		syncer:   cfg.Syncer,
		logger:   cfg.Logger,
		debounce: cfg.Debounce,
	}, nil
}

// Reload reads the config file and syncs the controller with it.
func (w *Watcher) Reload(ctx context.Context) error {
	cfg, err := config.Load(w.path)
	if err != nil {
		return err
	}
	specs, err := cfg.Resolve()
	if err != nil {
		return err
	}
	if err := w.syncer.Sync(ctx, specs); err != nil {
		return err
	}
	w.logger.Info("slider config reloaded", zap.String("path", w.path), zap.Int("layers", len(specs)))
	return nil
}

// Run watches the directory holding the config file until ctx is done. Editors often replace
// the file instead of writing it, so events are matched by name. Bursts of events collapse
// into one reload.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch: add %s: %w", filepath.Dir(w.path), err)
	}
	w.logger.Info("watching slider config", zap.String("path", w.path))

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("slider config changed", zap.String("op", event.Op.String()))
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("slider config watch error", zap.Error(err))

		case <-timer.C:
			if err := w.Reload(ctx); err != nil {
				w.logger.Warn("slider config reload failed", zap.String("path", w.path), zap.Error(err))
			}
		}
	}
}
