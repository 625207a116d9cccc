package inspect_test

import (
	"testing"

	"github.com/atlas-engine/atlas/server/inspect"
	"github.com/atlas-engine/atlas/server/net"
	"github.com/atlas-engine/atlas/server/world"
)

type health struct{ HP int }

func TestBuildECSSnapshotCountsComponents(t *testing.T) {
	w := world.New()
	a := w.CreateEntity()
	world.AddComponent(w, a, health{HP: 10})
	w.CreateEntity()

	snap := inspect.BuildECSSnapshot(w)
	if snap.EntityCount != 2 {
		t.Fatalf("EntityCount = %d, want 2", snap.EntityCount)
	}
	if snap.Entities[0].ID != a || snap.Entities[0].ComponentCount != 1 {
		t.Fatalf("Entities[0] = %+v, want id=%d components=1", snap.Entities[0], a)
	}
	if snap.Entities[1].ComponentCount != 0 {
		t.Fatalf("Entities[1].ComponentCount = %d, want 0", snap.Entities[1].ComponentCount)
	}
}

func TestBuildNetSnapshotReflectsModeAndPeers(t *testing.T) {
	c := net.New(nil)
	c.Init(net.Server)
	c.AddPeer()

	snap := inspect.BuildNetSnapshot(c)
	if snap.Mode != "Server" || !snap.IsAuthority {
		t.Fatalf("snap = %+v, want mode=Server authority=true", snap)
	}
	if len(snap.Peers) != 1 || !snap.Peers[0].Connected {
		t.Fatalf("Peers = %+v, want one connected peer", snap.Peers)
	}
}
