package task

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is a point-in-time view of one registered submission.
type Entry struct {
	Handle       uuid.UUID  `json:"handle"`
	Type         string     `json:"type"`
	RegisteredAt time.Time  `json:"registered_at"`
	Status       TaskStatus `json:"status"`
	Token        TokenState `json:"-"`
}

type registration struct {
	taskType     string
	token        *Token
	registeredAt time.Time
	status       TaskStatus
}

// Registry maps task handles to their cancellation tokens. Entries live from
// registration until the submission's outcome is final.
type Registry struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*registration
	now     func() time.Time
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[uuid.UUID]*registration),
		now:     time.Now,
	}
}

// Register stores tok under a fresh handle. The entry is visible to Cancel
// before Register returns.
func (r *Registry) Register(taskType string, tok *Token) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.New()
	for r.taken(id) {
		id = uuid.New()
	}

	r.entries[id] = &registration{
		taskType:     taskType,
		token:        tok,
		registeredAt: r.now(),
		status:       TaskStatusCreated,
	}
	return id
}

func (r *Registry) taken(id uuid.UUID) bool {
	_, live := r.entries[id]
	return live || id == uuid.Nil
}

// Cancel requests cancellation of the submission registered under id. It
// returns false when id is unknown, already finished, or already cancelled.
func (r *Registry) Cancel(id uuid.UUID) bool {
	r.mu.Lock()
	reg, ok := r.entries[id]
	r.mu.Unlock()
	if !ok {
		return false
	}
	return reg.token.Cancel()
}

// SetStatus records lifecycle progress for id. Unknown handles are ignored.
func (r *Registry) SetStatus(id uuid.UUID, status TaskStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reg, ok := r.entries[id]; ok {
		reg.status = status
	}
}

// Finish removes id. After Finish the handle no longer affects anything.
func (r *Registry) Finish(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// Len returns the number of live entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Snapshot returns the live entries ordered by registration time.
func (r *Registry) Snapshot() []Entry {
	r.mu.Lock()
	out := make([]Entry, 0, len(r.entries))
	for id, reg := range r.entries {
		out = append(out, Entry{
			Handle:       id,
			Type:         reg.taskType,
			RegisteredAt: reg.registeredAt,
			Status:       reg.status,
			Token:        reg.token.State(),
		})
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].RegisteredAt.Equal(out[j].RegisteredAt) {
			return out[i].Handle.String() < out[j].Handle.String()
		}
		return out[i].RegisteredAt.Before(out[j].RegisteredAt)
	})
	return out
}
