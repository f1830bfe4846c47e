package game

import "sync"

// Registry maps room ids to their table. Tables are independent units;
// the registry lock only guards the map itself.
type Registry struct {
	mu     sync.RWMutex
	tables map[int64]*Table
}

func NewRegistry() *Registry {
	return &Registry{tables: make(map[int64]*Table)}
}

// Create builds and stores a table for the room, replacing any existing one.
func (r *Registry) Create(roomID, smallBlind, bigBlind int64) *Table {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := NewTable(roomID, smallBlind, bigBlind)
	r.tables[roomID] = t
	return t
}

func (r *Registry) Get(roomID int64) (*Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tables[roomID]
	return t, ok
}

// GetOrCreate returns the room's table, building one with the given blinds
// on first use.
func (r *Registry) GetOrCreate(roomID, smallBlind, bigBlind int64) *Table {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.tables[roomID]; ok {
		return t
	}
	t := NewTable(roomID, smallBlind, bigBlind)
	r.tables[roomID] = t
	return t
}

func (r *Registry) Remove(roomID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tables, roomID)
}
