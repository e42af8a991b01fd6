package bot

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SelectionTable tracks dropdown interactions that are awaiting a choice.
// Each pending selection is keyed by a generated id carried in the
// component's custom id; resolving removes it, and entries that outlive the
// TTL expire instead of resolving.
type SelectionTable struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	pending map[string]time.Time
}

// NewSelectionTable creates a table whose entries expire after ttl.
func NewSelectionTable(ttl time.Duration) *SelectionTable {
	return &SelectionTable{
		ttl:     ttl,
		now:     time.Now,
		pending: make(map[string]time.Time),
	}
}

// Begin registers a new pending selection and returns its id.
func (t *SelectionTable) Begin() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sweepLocked()

	id := uuid.NewString()
	t.pending[id] = t.now()
	return id
}

// Resolve consumes a pending selection. It returns false when the id is
// unknown or the selection expired, in which case the interaction should be
// answered with an expiry notice.
func (t *SelectionTable) Resolve(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	created, ok := t.pending[id]
	if !ok {
		return false
	}
	delete(t.pending, id)

	return t.now().Sub(created) <= t.ttl
}

// sweepLocked drops entries past their TTL so abandoned dropdowns do not
// accumulate.
func (t *SelectionTable) sweepLocked() {
	cutoff := t.now().Add(-t.ttl)
	for id, created := range t.pending {
		if created.Before(cutoff) {
			delete(t.pending, id)
		}
	}
}
