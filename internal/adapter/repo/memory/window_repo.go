package memory

import (
	"context"
	"sort"

	"timeslider/internal/app/ports"
)

type WindowRepo struct {
	store *Store
}

func NewWindowRepo(store *Store) WindowRepo {
	return WindowRepo{store: store}
}

func (r WindowRepo) Get(_ context.Context, layerPath string) (ports.WindowSnapshot, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	snap, ok := r.store.windows[layerPath]
	if !ok {
		return ports.WindowSnapshot{}, ports.ErrNotFound
	}
	return cloneSnapshot(snap), nil
}

func (r WindowRepo) Save(_ context.Context, snap ports.WindowSnapshot) error {
	if len(snap.Values) == 0 || len(snap.Values) > 2 {
		return ports.ErrInvalidSnapshot
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.windows[snap.LayerPath] = cloneSnapshot(snap)
	return nil
}

func (r WindowRepo) Delete(_ context.Context, layerPath string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.windows[layerPath]; !ok {
		return ports.ErrNotFound
	}
	delete(r.store.windows, layerPath)
	return nil
}

// List returns every mirrored window ordered by layer path.
func (r WindowRepo) List(_ context.Context) ([]ports.WindowSnapshot, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]ports.WindowSnapshot, 0, len(r.store.windows))
	for _, snap := range r.store.windows {
		out = append(out, cloneSnapshot(snap))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LayerPath < out[j].LayerPath })
	return out, nil
}
