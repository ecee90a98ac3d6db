package dataset

import (
	"context"
	"sync"

	"tabemb/internal/domain"
)

// Memory keeps the last written dataset in process. It backs dry runs.
type Memory struct {
	mu sync.RWMutex
	ds *domain.Dataset
}

func NewMemory() *Memory { return &Memory{} }

// Read returns the stored dataset, or an empty one when nothing was written.
func (m *Memory) Read(ctx context.Context) (*domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ds == nil {
		return &domain.Dataset{}, nil
	}
	return m.ds, nil
}

// Write stores ds.
func (m *Memory) Write(ctx context.Context, ds *domain.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ds = ds
	return nil
}
