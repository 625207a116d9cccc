// Package net implements the Atlas Engine's net context: a mode-switchable
// messaging substrate with integrated snapshot/rollback hooks. The default
// transport is loopback (outbound packets become inbound on the next Poll),
// which keeps the core testable headless with zero mocking; a real
// Transport collaborator (see the raknet subpackage) can be attached to
// replace it without changing NetContext's external contract.
package net

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/segmentio/fasthash/fnv1a"
)

// Mode selects how a NetContext participates in a session.
type Mode uint8

const (
	Standalone Mode = iota
	Client
	Server
	P2PHost
	P2PPeer
)

func (m Mode) String() string {
	switch m {
	case Standalone:
		return "Standalone"
	case Client:
		return "Client"
	case Server:
		return "Server"
	case P2PHost:
		return "P2P_Host"
	case P2PPeer:
		return "P2P_Peer"
	default:
		return "Unknown"
	}
}

// Packet is a single unit of wire traffic. Size is advisory; Payload's
// length is authoritative.
type Packet struct {
	Type    uint16
	Size    uint16
	Tick    uint32
	Payload []byte
}

// Peer describes one connected participant. Token supplements spec.md's
// {id, rtt, connected} fields with a random per-peer identity. Numeric ids
// only grow within a session but restart at 1 on every Init, so a host can
// use Token to tell apart two peers that received the same id in different
// sessions.
type Peer struct {
	ID        uint32
	RTT       float64
	Connected bool
	Token     uuid.UUID
}

// QueuedPacket is an outbound packet paired with its destination. DestPeerID
// of 0 means broadcast.
type QueuedPacket struct {
	DestPeerID uint32
	Packet     Packet
}

// Snapshot is an opaque serialization of world state the net layer owns; the
// core never interprets ECSState.
type Snapshot struct {
	Tick     uint32
	ECSState []byte
}

// Transport is the seam a host uses to replace the default loopback
// behaviour with a real wire transport while preserving the ordering
// contract in spec.md §5: packets sent since the previous Poll become
// receivable after it.
type Transport interface {
	// Send delivers pkt to peerID, or to every connected peer if peerID is 0.
	Send(peerID uint32, pkt Packet) error
	// Receive returns the next packet available from the transport, if any,
	// without blocking.
	Receive() (Packet, bool)
	// Flush is a sync-point hint for transports that buffer writes.
	Flush() error
}

// Context is the mode-switchable messaging substrate described by spec.md
// §4.8. A zero-value Context is not ready for use; call New.
type Context struct {
	log *slog.Logger

	mu         sync.Mutex
	mode       Mode
	peers      []Peer
	nextPeerID uint32
	outbound   []QueuedPacket
	inbound    []Packet
	snapshots  []Snapshot
	transport  Transport
}

// New returns a Context in Standalone mode. log defaults to slog.Default()
// when nil.
func New(log *slog.Logger) *Context {
	if log == nil {
		log = slog.Default()
	}
	c := &Context{log: log}
	c.Init(Standalone)
	return c
}

// UseTransport attaches a real Transport collaborator. Passing nil restores
// the default loopback behaviour.
func (c *Context) UseTransport(t Transport) {
	c.mu.Lock()
	c.transport = t
	c.mu.Unlock()
}

// Init resets all state and sets mode.
func (c *Context) Init(mode Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = mode
	c.peers = nil
	c.outbound = nil
	c.inbound = nil
	c.snapshots = nil
	c.nextPeerID = 1
}

// Shutdown clears all state and returns mode to Standalone.
func (c *Context) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = Standalone
	c.peers = nil
	c.outbound = nil
	c.inbound = nil
	c.snapshots = nil
}

// Poll drains the outbound queue into the inbound queue in FIFO order when
// no Transport is attached (the loopback default). When a Transport is
// attached, Poll instead hands each queued outbound packet to it and then
// drains whatever the transport has waiting to receive.
func (c *Context) Poll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.transport == nil {
		for _, qp := range c.outbound {
			c.inbound = append(c.inbound, qp.Packet)
		}
		c.outbound = c.outbound[:0]
		return
	}

	for _, qp := range c.outbound {
		if err := c.transport.Send(qp.DestPeerID, qp.Packet); err != nil {
			c.log.Warn("net: transport send failed", "dest", qp.DestPeerID, "error", err)
		}
	}
	c.outbound = c.outbound[:0]

	for {
		pkt, ok := c.transport.Receive()
		if !ok {
			break
		}
		c.inbound = append(c.inbound, pkt)
	}
}

// Send enqueues pkt for delivery to peerID.
func (c *Context) Send(peerID uint32, pkt Packet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outbound = append(c.outbound, QueuedPacket{DestPeerID: peerID, Packet: pkt})
	c.log.Debug("net: packet queued", "dest", peerID, "type", pkt.Type, "digest", fnv1a.HashBytes32(pkt.Payload))
}

// Broadcast enqueues pkt for delivery to every connected peer.
func (c *Context) Broadcast(pkt Packet) {
	c.Send(0, pkt)
}

// Flush is a sync-point for transports; it forwards to the attached
// Transport's Flush, or is a no-op for the loopback default.
func (c *Context) Flush() error {
	c.mu.Lock()
	t := c.transport
	c.mu.Unlock()
	if t == nil {
		return nil
	}
	return t.Flush()
}

// Receive pops the front of the inbound queue into outPkt and returns true,
// or returns false if the queue is empty.
func (c *Context) Receive(outPkt *Packet) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.inbound) == 0 {
		return false
	}
	*outPkt = c.inbound[0]
	c.inbound = c.inbound[1:]
	return true
}

// Mode returns the current net mode.
func (c *Context) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Peers returns a copy of the currently connected peer list.
func (c *Context) Peers() []Peer {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Peer, len(c.peers))
	copy(out, c.peers)
	return out
}

// IsAuthority reports whether the current mode holds simulation authority.
func (c *Context) IsAuthority() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode == Server || c.mode == P2PHost
}

// AddPeer allocates the next peer id, appends a connected peer with rtt 0,
// and returns the new id.
func (c *Context) AddPeer() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextPeerID
	c.nextPeerID++
	c.peers = append(c.peers, Peer{ID: id, Connected: true, Token: uuid.New()})
	return id
}

// RemovePeer erases peerID from the peer list.
func (c *Context) RemovePeer(peerID uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, p := range c.peers {
		if p.ID == peerID {
			c.peers = append(c.peers[:i], c.peers[i+1:]...)
			return
		}
	}
}

// SaveSnapshot appends a snapshot keyed by tick. The payload is left empty
// by default: populating ECSState is the caller's responsibility (the net
// layer treats it as opaque, per spec.md §3).
func (c *Context) SaveSnapshot(tick uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots = append(c.snapshots, Snapshot{Tick: tick})
}

// SaveSnapshotState is like SaveSnapshot but attaches an explicit opaque
// ecsState payload, for callers that have one to hand (e.g. a serialized
// World roster).
func (c *Context) SaveSnapshotState(tick uint32, ecsState []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots = append(c.snapshots, Snapshot{Tick: tick, ECSState: ecsState})
}

// RollbackTo discards snapshots newer than target, so the last-remaining
// snapshot becomes authoritative. An in-flight World.Update must be allowed
// to complete before a caller invokes RollbackTo, per spec.md §5.
func (c *Context) RollbackTo(target uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.snapshots) > 0 && c.snapshots[len(c.snapshots)-1].Tick > target {
		c.snapshots = c.snapshots[:len(c.snapshots)-1]
	}
}

// Snapshots returns a copy of the snapshot ring, ordered by tick.
func (c *Context) Snapshots() []Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Snapshot, len(c.snapshots))
	copy(out, c.snapshots)
	return out
}

// ReplayFrom is a reserved hook for applying queued input frames from tick
// up to the current tick. The core specifies its shape but not a
// reconciliation policy; a full rollback-netcode implementation layers
// input-frame queues and per-peer authoritative ticks on top of this without
// altering the Context API.
func (c *Context) ReplayFrom(tick uint32) {
	c.log.Debug("net: replay requested", "from_tick", tick)
}
