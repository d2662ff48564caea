package memory

import (
	"sync"

	"timeslider/internal/app/ports"
)

type Store struct {
	mu      sync.RWMutex
	windows map[string]ports.WindowSnapshot
}

func NewStore() *Store {
	return &Store{
		windows: make(map[string]ports.WindowSnapshot),
	}
}

func cloneSnapshot(snap ports.WindowSnapshot) ports.WindowSnapshot {
	snap.Values = append([]int64(nil), snap.Values...)
	return snap
}
