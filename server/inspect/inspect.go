// Package inspect builds read-only snapshots of engine state for headless
// tooling (a remote admin dashboard, a test harness, a log line) that wants
// what the editor's ECS Inspector and Network panels would draw, without a
// UI framework to draw it in.
package inspect

import (
	"github.com/atlas-engine/atlas/server/net"
	"github.com/atlas-engine/atlas/server/world"
)

// EntitySnapshot describes one live entity's component footprint, the data
// an ECS Inspector panel lists per row.
type EntitySnapshot struct {
	ID             world.EntityID
	ComponentCount int
}

// ECSSnapshot is a point-in-time view of a World, matching what the
// ECS Inspector panel would display.
type ECSSnapshot struct {
	EntityCount int
	Entities    []EntitySnapshot
}

// BuildECSSnapshot reads w's current entity roster and component counts. It
// takes no lock beyond what World's own exported methods already take, so it
// is safe to call between ticks.
func BuildECSSnapshot(w *world.World) ECSSnapshot {
	ids := w.GetEntities()
	snap := ECSSnapshot{
		EntityCount: len(ids),
		Entities:    make([]EntitySnapshot, len(ids)),
	}
	for i, id := range ids {
		snap.Entities[i] = EntitySnapshot{
			ID:             id,
			ComponentCount: len(w.GetComponentTypes(id)),
		}
	}
	return snap
}

// PeerSnapshot mirrors net.Peer for display purposes.
type PeerSnapshot struct {
	ID        uint32
	RTT       float64
	Connected bool
}

// NetSnapshot is a point-in-time view of a net.Context, matching what the
// Network panel would display: mode, peer list, and whether this context
// holds simulation authority.
type NetSnapshot struct {
	Mode        string
	IsAuthority bool
	Peers       []PeerSnapshot
}

// BuildNetSnapshot reads c's current mode and peer list.
func BuildNetSnapshot(c *net.Context) NetSnapshot {
	peers := c.Peers()
	snap := NetSnapshot{
		Mode:        c.Mode().String(),
		IsAuthority: c.IsAuthority(),
		Peers:       make([]PeerSnapshot, len(peers)),
	}
	for i, p := range peers {
		snap.Peers[i] = PeerSnapshot{ID: p.ID, RTT: p.RTT, Connected: p.Connected}
	}
	return snap
}
