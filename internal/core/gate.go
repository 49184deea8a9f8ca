package core

// gate.go keeps imports in one process from overlapping.
//
// An import holds the gate for its whole run. A second caller does not queue
// behind it: it gets ErrImportInProgress immediately, since re-running the
// same file right after it finished would only skip every row. Imports in
// other processes are not covered; the title unique index is the last guard.

import (
	"context"
	"sync"
	"time"
)

// importGate is a one-slot semaphore.
type importGate struct {
	slot chan struct{}

	mu        sync.RWMutex
	active    bool
	startedAt time.Time
}

func newImportGate() *importGate {
	return &importGate{slot: make(chan struct{}, 1)}
}

// tryAcquire takes the slot without blocking.
// The caller MUST call release when it gets true.
func (g *importGate) tryAcquire() bool {
	select {
	case g.slot <- struct{}{}:
		g.mu.Lock()
		g.active = true
		g.startedAt = time.Now()
		g.mu.Unlock()
		return true
	default:
		return false
	}
}

// release frees the slot.
func (g *importGate) release() {
	g.mu.Lock()
	g.active = false
	g.startedAt = time.Time{}
	g.mu.Unlock()

	<-g.slot
}

// GateStatus is a snapshot of the import gate.
type GateStatus struct {
	Running   bool      `json:"running"`
	StartedAt time.Time `json:"started_at,omitempty"`
}

func (g *importGate) status() GateStatus {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return GateStatus{Running: g.active, StartedAt: g.startedAt}
}

// waitForDrain blocks until no import is running or ctx is done.
func (g *importGate) waitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if !g.status().Running {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
