package world_test

import (
	"testing"

	"github.com/atlas-engine/atlas/server/world"
)

type position struct{ X, Y float64 }
type velocity struct{ DX, DY float64 }

func TestCreateDestroyEntityInvariants(t *testing.T) {
	w := world.New()
	id := w.CreateEntity()
	world.AddComponent(w, id, position{1, 2})

	if !w.IsAlive(id) {
		t.Fatal("entity should be alive after creation")
	}
	if !world.HasComponent[position](w, id) {
		t.Fatal("entity should have position component")
	}

	w.DestroyEntity(id)

	if w.IsAlive(id) {
		t.Fatal("entity should not be alive after destruction")
	}
	if world.HasComponent[position](w, id) {
		t.Fatal("destroyed entity must not retain any component")
	}
	if _, ok := world.GetComponent[position](w, id); ok {
		t.Fatal("GetComponent must return false for a destroyed entity")
	}
}

func TestHasComponentMatchesGetComponent(t *testing.T) {
	w := world.New()
	id := w.CreateEntity()

	if world.HasComponent[position](w, id) {
		t.Fatal("entity should not have a component it was never given")
	}
	world.AddComponent(w, id, position{3, 4})
	if !world.HasComponent[position](w, id) {
		t.Fatal("HasComponent should be true after AddComponent")
	}
	world.RemoveComponent[position](w, id)
	if world.HasComponent[position](w, id) {
		t.Fatal("HasComponent should be false after RemoveComponent")
	}
}

func TestAddComponentTwiceIsLastWriterWins(t *testing.T) {
	w := world.New()
	id := w.CreateEntity()
	world.AddComponent(w, id, position{1, 1})
	world.AddComponent(w, id, position{9, 9})

	got, ok := world.GetComponent[position](w, id)
	if !ok {
		t.Fatal("expected a position component")
	}
	if got != (position{9, 9}) {
		t.Fatalf("got %+v, want the latest write {9 9}", got)
	}
}

func TestEntitiesIterateInCreationOrderAfterDestruction(t *testing.T) {
	w := world.New()
	a := w.CreateEntity()
	b := w.CreateEntity()
	c := w.CreateEntity()

	w.DestroyEntity(b)

	got := w.GetEntities()
	want := []world.EntityID{a, c}
	if len(got) != len(want) {
		t.Fatalf("GetEntities() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("GetEntities() = %v, want %v", got, want)
		}
	}
}

func TestEntityIDsNeverRecycled(t *testing.T) {
	w := world.New()
	a := w.CreateEntity()
	w.DestroyEntity(a)
	b := w.CreateEntity()
	if b == a {
		t.Fatalf("new entity id %d reused destroyed id %d", b, a)
	}
}

func TestGetComponentTypesReflectsAttachedComponents(t *testing.T) {
	w := world.New()
	id := w.CreateEntity()
	world.AddComponent(w, id, position{})
	world.AddComponent(w, id, velocity{})

	types := w.GetComponentTypes(id)
	if len(types) != 2 {
		t.Fatalf("GetComponentTypes() returned %d types, want 2", len(types))
	}
}

func TestUpdateInvokesTickCallback(t *testing.T) {
	w := world.New()
	var gotDt float64
	calls := 0
	w.SetTickCallback(func(dt float64) {
		calls++
		gotDt = dt
	})
	w.Update(0.5)
	if calls != 1 {
		t.Fatalf("tick callback invoked %d times, want 1", calls)
	}
	if gotDt != 0.5 {
		t.Fatalf("dt = %v, want 0.5", gotDt)
	}
}

func TestUpdateWithNoCallbackIsNoop(t *testing.T) {
	w := world.New()
	w.Update(1.0 / 30.0) // must not panic
}
