// Package inmemory keeps received reports in process memory, in arrival
// order. The default storage when no database is configured.
package inmemory

import (
	"context"
	"sync"

	"github.com/and161185/sysfs-stats/model"
)

type MemStorage struct {
	reports []model.Report
	mu      sync.RWMutex
}

func NewMemStorage(ctx context.Context) *MemStorage {
	return &MemStorage{}
}

func (store *MemStorage) Save(ctx context.Context, report *model.Report) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.reports = append(store.reports, *report)
	return nil
}

func (store *MemStorage) List(ctx context.Context) ([]model.Report, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	result := make([]model.Report, len(store.reports))
	copy(result, store.reports)
	return result, nil
}

func (store *MemStorage) Ping(ctx context.Context) error {
	return nil
}
