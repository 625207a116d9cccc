// Package world implements the Atlas Engine entity-component store: a
// sparse, heterogeneous, "archetype-free" ECS whose priority is API
// simplicity and snapshot clarity for the networking layer over raw
// iteration throughput.
package world

import (
	"reflect"
	"sync"

	"github.com/brentp/intintmap"
)

// EntityID is a monotonically-assigned, never-recycled (within a session)
// entity handle. The zero value is the sentinel "no entity".
type EntityID uint64

// ComponentTypeID is an opaque discriminator for a component's static Go
// type. It carries no ordering and exists only to be used as a map key.
type ComponentTypeID = reflect.Type

// TickFunc is the per-tick callback a World drives via Update.
type TickFunc func(dt float64)

// World owns the live entity roster and the per-entity component maps. A
// zero-value World is not ready for use; call New.
type World struct {
	mu sync.Mutex

	nextID   EntityID
	roster   []EntityID
	// index maps EntityID -> position in roster, so IsAlive/DestroyEntity
	// don't need a linear scan as the roster grows. intintmap is the same
	// choice the teacher repo reaches for alongside its own ordered entity
	// slices (server/world/world.go's activeColumnIndex/entityColumnIndex).
	index *intintmap.Map

	components map[EntityID]map[ComponentTypeID]any

	tickFn TickFunc
}

// New returns an empty World.
func New() *World {
	return &World{
		index:      intintmap.New(64, 0.6),
		components: make(map[EntityID]map[ComponentTypeID]any),
	}
}

// CreateEntity allocates the next EntityID, appends it to the live roster in
// creation order, and returns it. Ids are never recycled within a World's
// lifetime.
func (w *World) CreateEntity() EntityID {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.nextID++
	id := w.nextID
	w.index.Put(int64(id), int64(len(w.roster)))
	w.roster = append(w.roster, id)
	return id
}

// DestroyEntity removes id from the roster and drops its entire component
// map, atomically with respect to any other World method (World serializes
// all of its own state access, though spec.md §5 only requires this to be
// driven from a single tick thread). The order of surviving entities is
// preserved.
func (w *World) DestroyEntity(id EntityID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	pos, ok := w.index.Get(int64(id))
	if !ok {
		return
	}
	w.roster = append(w.roster[:pos], w.roster[pos+1:]...)
	w.index.Del(int64(id))
	for i := int(pos); i < len(w.roster); i++ {
		w.index.Put(int64(w.roster[i]), int64(i))
	}
	delete(w.components, id)
}

// IsAlive reports whether id is present in the live roster.
func (w *World) IsAlive(id EntityID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.index.Get(int64(id))
	return ok
}

// GetEntities returns the live entities in creation order. The returned
// slice is a copy; mutating it does not affect the World.
func (w *World) GetEntities() []EntityID {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]EntityID, len(w.roster))
	copy(out, w.roster)
	return out
}

// EntityCount returns the number of currently live entities.
func (w *World) EntityCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.roster)
}

// AddComponent attaches value to id under value's static type. A prior
// component of the same type on the same entity is overwritten
// (last-writer-wins; a World never holds more than one instance of a type
// per entity).
func AddComponent[T any](w *World, id EntityID, value T) {
	key := reflect.TypeOf(value)
	w.mu.Lock()
	defer w.mu.Unlock()
	m, ok := w.components[id]
	if !ok {
		m = make(map[ComponentTypeID]any)
		w.components[id] = m
	}
	m[key] = value
}

// GetComponent returns the component of type T attached to id, and whether
// one was present.
func GetComponent[T any](w *World, id EntityID) (T, bool) {
	var zero T
	key := reflect.TypeOf(zero)
	w.mu.Lock()
	defer w.mu.Unlock()
	m, ok := w.components[id]
	if !ok {
		return zero, false
	}
	v, ok := m[key]
	if !ok {
		return zero, false
	}
	return v.(T), true
}

// HasComponent reports whether id currently has a component of type T.
// HasComponent(id) is always equivalent to GetComponent(id)'s second return
// value.
func HasComponent[T any](w *World, id EntityID) bool {
	_, ok := GetComponent[T](w, id)
	return ok
}

// RemoveComponent detaches the component of type T from id, if present.
func RemoveComponent[T any](w *World, id EntityID) {
	var zero T
	key := reflect.TypeOf(zero)
	w.mu.Lock()
	defer w.mu.Unlock()
	m, ok := w.components[id]
	if !ok {
		return
	}
	delete(m, key)
}

// GetComponentTypes returns the set of component types currently attached to
// id, in unspecified order.
func (w *World) GetComponentTypes(id EntityID) []ComponentTypeID {
	w.mu.Lock()
	defer w.mu.Unlock()
	m := w.components[id]
	types := make([]ComponentTypeID, 0, len(m))
	for t := range m {
		types = append(types, t)
	}
	return types
}

// SetTickCallback sets the function Update invokes.
func (w *World) SetTickCallback(fn TickFunc) {
	w.mu.Lock()
	w.tickFn = fn
	w.mu.Unlock()
}

// Update invokes the registered tick callback, if any, with dt. Update is a
// single synchronous call: it does not return until the callback does, and
// the callback is the only place World mutation is expected to happen during
// a tick (per spec.md §5).
func (w *World) Update(dt float64) {
	w.mu.Lock()
	fn := w.tickFn
	w.mu.Unlock()
	if fn != nil {
		fn(dt)
	}
}
