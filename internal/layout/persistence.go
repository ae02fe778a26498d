// Package layout persists the free-canvas rectangles of charts in a single
// key-value slot.
package layout

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/j-veylop/syncgrid-tui/internal/logger"
	"github.com/j-veylop/syncgrid-tui/internal/models"
)

// StorageKey is the slot holding the JSON array of layouts.
const StorageKey = "chart-layouts"

// Store is the key-value backend. *db.DB satisfies it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Persistence keeps the layouts in memory and mirrors every settled change to
// the store once the initial load has completed.
type Persistence struct {
	mu      sync.RWMutex
	store   Store
	layouts []models.ChartLayout
	loaded  bool
}

// New creates a persistence layer over store. Nothing is read until Load.
func New(store Store) *Persistence {
	return &Persistence{store: store}
}

// Load reads the slot once. Read and parse failures are logged and treated as
// an empty slot; the layer is marked loaded either way.
func (p *Persistence) Load(ctx context.Context) []models.ChartLayout {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loaded {
		return p.copyLocked()
	}
	defer func() { p.loaded = true }()

	data, ok, err := p.store.Get(ctx, StorageKey)
	if err != nil {
		logger.Error("failed to load chart layouts", "error", err)
		return p.copyLocked()
	}
	if !ok || len(data) == 0 {
		return p.copyLocked()
	}

	var parsed []models.ChartLayout
	if err := json.Unmarshal(data, &parsed); err != nil {
		logger.Error("failed to load chart layouts", "error", err)
		return p.copyLocked()
	}

	p.layouts = parsed
	logger.Debug("chart layouts loaded", "count", len(parsed))
	return p.copyLocked()
}

// Loaded reports whether Load has completed.
func (p *Persistence) Loaded() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loaded
}

// Get returns the layout for id.
func (p *Persistence) Get(id string) (models.ChartLayout, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, l := range p.layouts {
		if l.ID == id {
			return l, true
		}
	}
	return models.ChartLayout{}, false
}

// Layouts returns a copy of every known layout.
func (p *Persistence) Layouts() []models.ChartLayout {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.copyLocked()
}

// Update merges patch into the layout for id, creating it with the default
// geometry when absent, then saves. A failed save is logged and returned but
// the in-memory layout keeps the update.
func (p *Persistence) Update(ctx context.Context, id string, patch models.LayoutPatch) (models.ChartLayout, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := -1
	for i := range p.layouts {
		if p.layouts[i].ID == id {
			idx = i
			break
		}
	}

	changed := false
	if idx < 0 {
		p.layouts = append(p.layouts, models.ChartLayout{
			ID:     id,
			Width:  models.DefaultLayoutWidth,
			Height: models.DefaultLayoutHeight,
		})
		idx = len(p.layouts) - 1
		changed = true
	}
	if patch.Apply(&p.layouts[idx]) {
		changed = true
	}
	updated := p.layouts[idx]

	if !changed {
		return updated, nil
	}
	return updated, p.saveLocked(ctx)
}

// Reset clears the slot and the in-memory layouts.
func (p *Persistence) Reset(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.layouts = nil
	if err := p.store.Delete(ctx, StorageKey); err != nil {
		logger.Error("failed to reset chart layouts", "error", err)
		return err
	}
	return nil
}

func (p *Persistence) saveLocked(ctx context.Context) error {
	if !p.loaded || len(p.layouts) == 0 {
		return nil
	}

	data, err := json.Marshal(p.layouts)
	if err != nil {
		return fmt.Errorf("failed to encode chart layouts: %w", err)
	}
	if err := p.store.Set(ctx, StorageKey, data); err != nil {
		logger.Error("failed to save chart layouts", "error", err)
		return err
	}
	return nil
}

func (p *Persistence) copyLocked() []models.ChartLayout {
	out := make([]models.ChartLayout, len(p.layouts))
	copy(out, p.layouts)
	return out
}
