package ports

import (
	"context"
	"time"
)

// WindowSnapshot is what the controller publishes for one layer after every transition.
type WindowSnapshot struct {
	LayerPath string    `json:"layer_path"`
	Values    []int64   `json:"values"`
	Locked    bool      `json:"locked"`
	Reversed  bool      `json:"reversed"`
	DelayMS   int64     `json:"delay_ms"`
	Filtering bool      `json:"filtering"`
	Playing   bool      `json:"playing"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WindowStore mirrors slider state for downstream readers. The controller only reads it when a
// layer is mounted.
type WindowStore interface {
	Get(ctx context.Context, layerPath string) (WindowSnapshot, error)
	Save(ctx context.Context, snapshot WindowSnapshot) error
	Delete(ctx context.Context, layerPath string) error
}

// WindowLister reads back the whole mirror, ordered by layer path.
type WindowLister interface {
	List(ctx context.Context) ([]WindowSnapshot, error)
}
