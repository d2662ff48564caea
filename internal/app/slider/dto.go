package slider

import (
	"time"

	"timeslider/internal/domain/temporal"
)

// LayerSpec is everything the controller needs to mount one layer.
type LayerSpec struct {
	LayerPath     string
	Domain        temporal.Domain
	Title         map[string]string
	Description   map[string]string
	Field         string
	FieldAlias    string
	Locked        bool
	Reversed      bool
	Delay         time.Duration
	Filtering     bool
	DefaultValues []int64
}

// View is the renderer-facing state of one layer.
type View struct {
	LayerPath      string               `json:"layer_path"`
	Title          map[string]string    `json:"title,omitempty"`
	Description    map[string]string    `json:"description,omitempty"`
	Field          string               `json:"field,omitempty"`
	FieldAlias     string               `json:"field_alias,omitempty"`
	Heading        string               `json:"heading"`
	Domain         temporal.Domain      `json:"domain"`
	Granularity    temporal.Granularity `json:"granularity"`
	Ticks          []temporal.Tick      `json:"ticks"`
	Values         []int64              `json:"values"`
	ValueLabels    []string             `json:"value_labels"`
	Locked         bool                 `json:"locked"`
	Reversed       bool                 `json:"reversed"`
	Filtering      bool                 `json:"filtering"`
	Playing        bool                 `json:"playing"`
	DelayMS        int64                `json:"delay_ms"`
	DelayChoicesMS []int64              `json:"delay_choices_ms"`
	Summary        string               `json:"summary"`
	LockTooltip    string               `json:"lock_tooltip"`
	TimerState     string               `json:"timer_state"`
}
