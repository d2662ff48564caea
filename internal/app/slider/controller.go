package slider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"timeslider/internal/app/animation"
	"timeslider/internal/app/ports"
	"timeslider/internal/domain/temporal"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidRequest         = errors.New("invalid slider request")
	ErrUnknownLayer           = errors.New("unknown layer path")
	ErrInvalidModeCombination = errors.New("invalid mode combination")
	ErrFilteringDisabled      = errors.New("filtering is disabled")
	ErrInvalidDelay           = errors.New("invalid delay")
)

type Config struct {
	Store     ports.WindowStore
	Metrics   ports.SliderMetrics
	AfterFunc animation.AfterFunc
	Logger    *zap.Logger
	Now       func() time.Time
}

// Controller owns the window state of every mounted layer. Operations and timer callbacks
// are serialized, so each layer path sees a total order of transitions.
type Controller struct {
	mu      sync.Mutex
	store   ports.WindowStore
	metrics ports.SliderMetrics
	logger  *zap.Logger
	now     func() time.Time
	sched   *animation.Scheduler
	layers  map[string]*layerState
}

type layerState struct {
	spec   LayerSpec
	window temporal.Window
	step   temporal.StepContext
	runID  string
}

func NewController(cfg Config) *Controller {
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Controller{
		store:   cfg.Store,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
		now:     cfg.Now,
		sched:   animation.NewScheduler(cfg.AfterFunc),
		layers:  map[string]*layerState{},
	}
}

// Register mounts a layer, or replaces the domain of a mounted one. A replaced layer stops
// playing, forgets its step context and keeps its window clamped into the new domain when the
// handle count still matches.
func (c *Controller) Register(ctx context.Context, spec LayerSpec) error {
	spec.LayerPath = strings.TrimSpace(spec.LayerPath)
	if spec.LayerPath == "" {
		return ErrInvalidRequest
	}
	if spec.Delay <= 0 {
		spec.Delay = temporal.DefaultDelay
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if st, ok := c.layers[spec.LayerPath]; ok {
		var values []int64
		if len(st.window.Values) == spec.Domain.Handles() {
			values = temporal.Normalize(spec.Domain, st.window.Values)
		} else {
			seeded, err := seedValues(spec)
			if err != nil {
				return err
			}
			values = seeded
		}
		c.cancel(spec.LayerPath)
		st.spec = spec
		st.step = temporal.StepContext{}
		st.window.Playing = false
		st.window.Values = values
		c.logger.Info("layer domain replaced", zap.String("layer_path", spec.LayerPath), zap.Int64s("values", st.window.Values))
		c.publish(ctx, spec.LayerPath, st)
		return nil
	}

	window, err := c.seedWindow(ctx, spec)
	if err != nil {
		return err
	}
	st := &layerState{spec: spec, window: window}
	c.layers[spec.LayerPath] = st
	c.logger.Info("layer registered",
		zap.String("layer_path", spec.LayerPath),
		zap.Int64("min", spec.Domain.Min),
		zap.Int64("max", spec.Domain.Max),
		zap.Int("discrete_values", len(spec.Domain.DiscreteValues)),
		zap.Bool("single_handle", spec.Domain.SingleHandle),
	)
	c.publish(ctx, spec.LayerPath, st)
	return nil
}

func (c *Controller) seedWindow(ctx context.Context, spec LayerSpec) (temporal.Window, error) {
	w := temporal.Window{
		Locked:    spec.Locked,
		Reversed:  spec.Reversed,
		Delay:     spec.Delay,
		Filtering: spec.Filtering,
	}
	if c.store != nil {
		snap, err := c.store.Get(ctx, spec.LayerPath)
		switch {
		case err == nil && len(snap.Values) == spec.Domain.Handles():
			w.Values = temporal.Normalize(spec.Domain, snap.Values)
			w.Locked = snap.Locked
			w.Reversed = snap.Reversed
			w.Filtering = snap.Filtering
			if snap.DelayMS > 0 {
				w.Delay = time.Duration(snap.DelayMS) * time.Millisecond
			}
			return w, nil
		case err != nil && !errors.Is(err, ports.ErrNotFound):
			c.logger.Warn("read stored window", zap.String("layer_path", spec.LayerPath), zap.Error(err))
		}
	}
	values, err := seedValues(spec)
	if err != nil {
		return temporal.Window{}, err
	}
	w.Values = values
	return w, nil
}

func seedValues(spec LayerSpec) ([]int64, error) {
	d := spec.Domain
	switch {
	case len(spec.DefaultValues) == 0 && d.SingleHandle && d.Discrete():
		return []int64{d.DiscreteValues[0]}, nil
	case len(spec.DefaultValues) == 0 && d.SingleHandle:
		return []int64{d.Min}, nil
	case len(spec.DefaultValues) == 0:
		return []int64{d.Min, d.Max}, nil
	case len(spec.DefaultValues) != d.Handles():
		return nil, fmt.Errorf("%w: layer %s has %d handles but %d default values",
			ErrInvalidModeCombination, spec.LayerPath, d.Handles(), len(spec.DefaultValues))
	default:
		return temporal.Normalize(d, spec.DefaultValues), nil
	}
}

// Remove unmounts a layer and drops its mirrored state.
func (c *Controller) Remove(ctx context.Context, layerPath string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.layers[layerPath]; !ok {
		return ErrUnknownLayer
	}
	c.sched.Forget(layerPath)
	delete(c.layers, layerPath)
	if c.store != nil {
		if err := c.store.Delete(ctx, layerPath); err != nil && !errors.Is(err, ports.ErrNotFound) {
			c.metrics.RecordPublishFailure()
			c.logger.Warn("delete mirrored window", zap.String("layer_path", layerPath), zap.Error(err))
		}
	}
	c.logger.Info("layer removed", zap.String("layer_path", layerPath))
	return nil
}

// Sync makes the mounted layers match specs. New paths are registered and known ones get their
// domain replaced. Layers absent from specs are removed; a known layer whose new spec is
// rejected keeps its previous domain.
func (c *Controller) Sync(ctx context.Context, specs []LayerSpec) error {
	keep := make(map[string]bool, len(specs))
	var errs []error
	for _, spec := range specs {
		keep[strings.TrimSpace(spec.LayerPath)] = true
		if err := c.Register(ctx, spec); err != nil {
			errs = append(errs, fmt.Errorf("register %s: %w", spec.LayerPath, err))
		}
	}
	for _, path := range c.LayerPaths() {
		if keep[path] {
			continue
		}
		if err := c.Remove(ctx, path); err != nil && !errors.Is(err, ErrUnknownLayer) {
			errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
		}
	}
	return errors.Join(errs...)
}

// Close stops every animation. The controller must not be used afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sched.Close()
	for _, st := range c.layers {
		st.window.Playing = false
	}
}

func (c *Controller) LayerPaths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.layers))
	for path := range c.layers {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// SetValues applies a manual scrub. Out-of-domain values are clamped and snapped; a handle
// count that does not match the domain is rejected.
func (c *Controller) SetValues(ctx context.Context, layerPath string, values []int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, err := c.layer(layerPath)
	if err != nil {
		return err
	}
	if len(values) != st.spec.Domain.Handles() {
		return fmt.Errorf("%w: layer %s takes %d values, got %d",
			ErrInvalidModeCombination, layerPath, st.spec.Domain.Handles(), len(values))
	}
	c.cancel(layerPath)
	st.window.Playing = false
	st.step = temporal.StepContext{}
	st.window.Values = temporal.Normalize(st.spec.Domain, values)
	c.publish(ctx, layerPath, st)
	return nil
}

func (c *Controller) SetLocked(ctx context.Context, layerPath string, locked bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, err := c.layer(layerPath)
	if err != nil {
		return err
	}
	c.cancel(layerPath)
	st.window.Locked = locked
	if st.window.Playing {
		c.arm(layerPath, st)
	}
	c.publish(ctx, layerPath, st)
	return nil
}

// SetReversed flips the animation direction. A running animation steps at once in the new
// direction and keeps going.
func (c *Controller) SetReversed(ctx context.Context, layerPath string, reversed bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, err := c.layer(layerPath)
	if err != nil {
		return err
	}
	c.cancel(layerPath)
	st.window.Reversed = reversed
	if st.window.Playing {
		c.step(layerPath, st, temporal.AnimationDirection(reversed))
		c.arm(layerPath, st)
	}
	c.publish(ctx, layerPath, st)
	return nil
}

// SetDelay changes the pause between animation steps. A pending timer keeps its delay; the
// next one armed uses the new value.
func (c *Controller) SetDelay(ctx context.Context, layerPath string, delay time.Duration) error {
	if delay <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDelay, delay)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	st, err := c.layer(layerPath)
	if err != nil {
		return err
	}
	st.window.Delay = delay
	c.publish(ctx, layerPath, st)
	return nil
}

func (c *Controller) SetFiltering(ctx context.Context, layerPath string, enabled bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, err := c.layer(layerPath)
	if err != nil {
		return err
	}
	st.window.Filtering = enabled
	if !enabled {
		c.cancel(layerPath)
		st.window.Playing = false
	}
	c.publish(ctx, layerPath, st)
	return nil
}

// Play captures the anchor from the leading handle, steps once right away and schedules the
// following steps.
func (c *Controller) Play(ctx context.Context, layerPath string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, err := c.layer(layerPath)
	if err != nil {
		return err
	}
	return c.play(ctx, layerPath, st)
}

func (c *Controller) play(ctx context.Context, layerPath string, st *layerState) error {
	if !st.window.Filtering {
		return ErrFilteringDisabled
	}
	c.cancel(layerPath)
	st.step = st.step.WithAnchor(st.window.LeadingValue())
	st.window.Playing = true
	st.runID = uuid.NewString()
	c.logger.Debug("animation started",
		zap.String("layer_path", layerPath),
		zap.String("run_id", st.runID),
		zap.Duration("delay", st.window.Delay),
	)
	c.step(layerPath, st, temporal.AnimationDirection(st.window.Reversed))
	c.arm(layerPath, st)
	c.publish(ctx, layerPath, st)
	return nil
}

// Pause stops the animation. The memoized window width is kept so that resuming continues
// with the same step.
func (c *Controller) Pause(ctx context.Context, layerPath string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, err := c.layer(layerPath)
	if err != nil {
		return err
	}
	c.pause(ctx, layerPath, st)
	return nil
}

func (c *Controller) pause(ctx context.Context, layerPath string, st *layerState) {
	c.cancel(layerPath)
	if st.window.Playing {
		c.logger.Debug("animation paused", zap.String("layer_path", layerPath), zap.String("run_id", st.runID))
	}
	st.window.Playing = false
	c.publish(ctx, layerPath, st)
}

func (c *Controller) TogglePlay(ctx context.Context, layerPath string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, err := c.layer(layerPath)
	if err != nil {
		return err
	}
	if st.window.Playing {
		c.pause(ctx, layerPath, st)
		return nil
	}
	return c.play(ctx, layerPath, st)
}

func (c *Controller) StepBack(ctx context.Context, layerPath string) error {
	return c.manualStep(ctx, layerPath, temporal.Back)
}

func (c *Controller) StepForward(ctx context.Context, layerPath string) error {
	return c.manualStep(ctx, layerPath, temporal.Forward)
}

func (c *Controller) manualStep(ctx context.Context, layerPath string, dir temporal.Direction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, err := c.layer(layerPath)
	if err != nil {
		return err
	}
	if !st.window.Filtering {
		return ErrFilteringDisabled
	}
	c.cancel(layerPath)
	st.window.Playing = false
	anchor := st.window.Values[0]
	if dir == temporal.Back {
		anchor = st.window.LeadingValue()
	}
	st.step = st.step.WithAnchor(anchor)
	c.step(layerPath, st, dir)
	c.publish(ctx, layerPath, st)
	return nil
}

// advance runs when an animation timer fires.
func (c *Controller) advance(layerPath string, token animation.Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.layers[layerPath]
	if !ok || !c.sched.Claim(layerPath, token) {
		return
	}
	if !st.window.Playing || !st.window.Filtering {
		return
	}
	c.step(layerPath, st, temporal.AnimationDirection(st.window.Reversed))
	c.arm(layerPath, st)
	c.publish(context.Background(), layerPath, st)
}

func (c *Controller) step(layerPath string, st *layerState, dir temporal.Direction) {
	strategy, values, next := temporal.Step(st.spec.Domain, st.window, st.step, dir)
	st.window.Values = values
	st.step = next
	c.metrics.RecordStep(strategy)
	c.logger.Debug("window stepped",
		zap.String("layer_path", layerPath),
		zap.Stringer("direction", dir),
		zap.String("strategy", string(strategy)),
		zap.Int64s("values", values),
	)
}

func (c *Controller) arm(layerPath string, st *layerState) {
	_, replaced := c.sched.Arm(layerPath, st.window.Delay, func(token animation.Token) {
		c.advance(layerPath, token)
	})
	if replaced {
		c.metrics.RecordTimerCancelled()
	}
	c.metrics.RecordTimerArmed()
}

func (c *Controller) cancel(layerPath string) {
	if c.sched.Cancel(layerPath) {
		c.metrics.RecordTimerCancelled()
	}
}

func (c *Controller) layer(layerPath string) (*layerState, error) {
	st, ok := c.layers[layerPath]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLayer, layerPath)
	}
	return st, nil
}

// publish mirrors the layer state to the store. The store never feeds back into transitions,
// so a failed write is logged and counted but does not undo anything.
func (c *Controller) publish(ctx context.Context, layerPath string, st *layerState) {
	if c.store == nil {
		return
	}
	snap := ports.WindowSnapshot{
		LayerPath: layerPath,
		Values:    append([]int64(nil), st.window.Values...),
		Locked:    st.window.Locked,
		Reversed:  st.window.Reversed,
		DelayMS:   st.window.Delay.Milliseconds(),
		Filtering: st.window.Filtering,
		Playing:   st.window.Playing,
		UpdatedAt: c.now(),
	}
	if err := c.store.Save(ctx, snap); err != nil {
		c.metrics.RecordPublishFailure()
		c.logger.Warn("publish window", zap.String("layer_path", layerPath), zap.Error(err))
	}
}

type nopMetrics struct{}

func (nopMetrics) RecordStep(temporal.Strategy) {}
func (nopMetrics) RecordTimerArmed()            {}
func (nopMetrics) RecordTimerCancelled()        {}
func (nopMetrics) RecordPublishFailure()        {}
