package gormrepo

import (
	"context"
	"errors"
	"time"

	"timeslider/internal/adapter/repo/gorm/model"
	"timeslider/internal/app/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WindowRepo mirrors slider windows into postgres. Rows belong to one process session and are
// dropped with DeleteSession on shutdown.
type WindowRepo struct {
	db        *gorm.DB
	sessionID string
}

func NewWindowRepo(db *gorm.DB, sessionID string) WindowRepo {
	return WindowRepo{db: db, sessionID: sessionID}
}

func (r WindowRepo) Get(ctx context.Context, layerPath string) (ports.WindowSnapshot, error) {
	var m model.SliderWindow
	err := r.db.WithContext(ctx).
		Where(&model.SliderWindow{SessionID: r.sessionID, LayerPath: layerPath}).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.WindowSnapshot{}, ports.ErrNotFound
		}
		return ports.WindowSnapshot{}, err
	}
	return toSnapshot(m), nil
}

// List returns this session's rows ordered by layer path.
func (r WindowRepo) List(ctx context.Context) ([]ports.WindowSnapshot, error) {
	var rows []model.SliderWindow
	err := r.db.WithContext(ctx).
		Where("session_id = ?", r.sessionID).
		Order("layer_path").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]ports.WindowSnapshot, 0, len(rows))
	for _, m := range rows {
		out = append(out, toSnapshot(m))
	}
	return out, nil
}

func toSnapshot(m model.SliderWindow) ports.WindowSnapshot {
	values := []int64{m.ValueStart}
	if m.ValueEnd != nil {
		values = append(values, *m.ValueEnd)
	}
	return ports.WindowSnapshot{
		LayerPath: m.LayerPath,
		Values:    values,
		Locked:    m.Locked,
		Reversed:  m.Reversed,
		DelayMS:   m.DelayMs,
		Filtering: m.Filtering,
		Playing:   m.Playing,
		UpdatedAt: m.UpdatedAt,
	}
}

func (r WindowRepo) Save(ctx context.Context, snap ports.WindowSnapshot) error {
	if len(snap.Values) == 0 || len(snap.Values) > 2 {
		return ports.ErrInvalidSnapshot
	}
	m := model.SliderWindow{
		SessionID:  r.sessionID,
		LayerPath:  snap.LayerPath,
		ValueStart: snap.Values[0],
		Locked:     snap.Locked,
		Reversed:   snap.Reversed,
		DelayMs:    snap.DelayMS,
		Filtering:  snap.Filtering,
		Playing:    snap.Playing,
		UpdatedAt:  snap.UpdatedAt,
	}
	if len(snap.Values) == 2 {
		end := snap.Values[1]
		m.ValueEnd = &end
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = time.Now()
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "session_id"}, {Name: "layer_path"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"value_start", "value_end", "locked", "reversed", "delay_ms", "filtering", "playing", "updated_at",
			}),
		}).
		Create(&m).Error
}

func (r WindowRepo) Delete(ctx context.Context, layerPath string) error {
	res := r.db.WithContext(ctx).
		Where("session_id = ? AND layer_path = ?", r.sessionID, layerPath).
		Delete(&model.SliderWindow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// DeleteSession removes every row written by this session.
func (r WindowRepo) DeleteSession(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("session_id = ?", r.sessionID).
		Delete(&model.SliderWindow{})
	return res.RowsAffected, res.Error
}
