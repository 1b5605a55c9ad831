package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/comitanigiacomo/garmin-notion-sync/internal/core/domain"
)

var _ domain.SyncRunRepository = (*InMemorySyncRunRepository)(nil)

type InMemorySyncRunRepository struct {
	store map[string]domain.SyncRun

	mu sync.RWMutex
}

func NewInMemorySyncRunRepository() *InMemorySyncRunRepository {
	return &InMemorySyncRunRepository{
		store: make(map[string]domain.SyncRun),
	}
}

func (r *InMemorySyncRunRepository) Create(ctx context.Context, run *domain.SyncRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[run.ID] = *run
	return nil
}

func (r *InMemorySyncRunRepository) Update(ctx context.Context, run *domain.SyncRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[run.ID]; !ok {
		return domain.ErrSyncRunNotFound
	}

	r.store[run.ID] = *run
	return nil
}

func (r *InMemorySyncRunRepository) GetByID(ctx context.Context, id string) (*domain.SyncRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.store[id]
	if !ok {
		return nil, domain.ErrSyncRunNotFound
	}
	return &run, nil
}

func (r *InMemorySyncRunRepository) ListRecent(ctx context.Context, limit int) ([]*domain.SyncRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runs := make([]*domain.SyncRun, 0, len(r.store))
	for _, run := range r.store {
		clone := run
		runs = append(runs, &clone)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
