// Package raknet adapts github.com/sandertv/go-raknet into an
// atlasnet.Transport, giving the core a real UDP-based transport
// collaborator to replace NetContext's loopback default. The wire framing
// here (a length-prefixed encoding of atlasnet.Packet) is this adapter's own
// choice, not part of the core's contract — spec.md explicitly leaves wire
// format to the transport collaborator.
package raknet

import (
	"encoding/binary"
	"io"
	"log/slog"
	"net"
	"sync"

	rak "github.com/sandertv/go-raknet"

	atlasnet "github.com/atlas-engine/atlas/server/net"
)

// Transport is a raknet-backed atlasnet.Transport. It can run as either a
// server (accepting inbound connections, fanning broadcasts out to all of
// them) or a client (a single dial to one remote host).
type Transport struct {
	log *slog.Logger

	mu    sync.Mutex
	conns map[uint32]net.Conn
	order []uint32

	listener *rak.Listener
	nextID   uint32

	incoming chan atlasnet.Packet
}

// Dial opens a single client connection to addr and returns a Transport
// whose Send always writes to that connection, regardless of peerID — a
// client only ever has one peer, the server it dialed.
func Dial(addr string, log *slog.Logger) (*Transport, error) {
	conn, err := rak.Dial(addr)
	if err != nil {
		return nil, err
	}
	t := newTransport(log)
	t.nextID = 1
	t.conns[1] = conn
	t.order = append(t.order, 1)
	go t.readLoop(1, conn)
	return t, nil
}

// Listen starts accepting raknet connections on addr. Call Serve in a
// goroutine to keep accepting new peers.
func Listen(addr string, log *slog.Logger) (*Transport, error) {
	l, err := rak.Listen(addr)
	if err != nil {
		return nil, err
	}
	t := newTransport(log)
	t.listener = l
	return t, nil
}

func newTransport(log *slog.Logger) *Transport {
	if log == nil {
		log = slog.Default()
	}
	return &Transport{
		log:      log,
		conns:    make(map[uint32]net.Conn),
		incoming: make(chan atlasnet.Packet, 256),
	}
}

// Serve accepts incoming connections until the listener is closed. Each
// accepted connection is assigned the next peer id and read from in its own
// goroutine. Serve blocks; run it in a goroutine.
func (t *Transport) Serve() error {
	if t.listener == nil {
		return nil
	}
	for {
		conn, err := t.listener.Accept()
		if err != nil {
			return err
		}
		t.mu.Lock()
		t.nextID++
		id := t.nextID
		t.conns[id] = conn
		t.order = append(t.order, id)
		t.mu.Unlock()
		go t.readLoop(id, conn)
	}
}

func (t *Transport) readLoop(peerID uint32, conn net.Conn) {
	for {
		pkt, err := decodePacket(conn)
		if err != nil {
			if err != io.EOF {
				t.log.Warn("raknet transport: read failed", "peer", peerID, "error", err)
			}
			t.mu.Lock()
			delete(t.conns, peerID)
			t.mu.Unlock()
			return
		}
		t.incoming <- pkt
	}
}

// Send writes pkt to peerID's connection, or to every known connection if
// peerID is 0 (broadcast).
func (t *Transport) Send(peerID uint32, pkt Packet) error {
	return t.send(peerID, pkt)
}

func (t *Transport) send(peerID uint32, pkt atlasnet.Packet) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	// A dialed transport holds exactly one connection, registered as peer 1.
	if t.listener == nil {
		peerID = 1
	}
	if peerID == 0 {
		var firstErr error
		for _, id := range t.order {
			conn, ok := t.conns[id]
			if !ok {
				continue
			}
			if err := encodePacket(conn, pkt); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}
	conn, ok := t.conns[peerID]
	if !ok {
		return net.ErrClosed
	}
	return encodePacket(conn, pkt)
}

// Receive returns the next packet delivered by any connection, without
// blocking.
func (t *Transport) Receive() (atlasnet.Packet, bool) {
	select {
	case pkt := <-t.incoming:
		return pkt, true
	default:
		return atlasnet.Packet{}, false
	}
}

// Flush is a no-op: raknet writes are unbuffered at this adapter's level.
func (t *Transport) Flush() error { return nil }

// Close closes every connection and the listener, if any.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, conn := range t.conns {
		conn.Close()
	}
	if t.listener != nil {
		return t.listener.Close()
	}
	return nil
}

// Packet is a local alias so this file reads naturally; it is identical to
// atlasnet.Packet.
type Packet = atlasnet.Packet

func encodePacket(w io.Writer, pkt atlasnet.Packet) error {
	buf := make([]byte, 2+2+4+4+len(pkt.Payload))
	binary.LittleEndian.PutUint16(buf[0:2], pkt.Type)
	binary.LittleEndian.PutUint16(buf[2:4], pkt.Size)
	binary.LittleEndian.PutUint32(buf[4:8], pkt.Tick)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(pkt.Payload)))
	copy(buf[12:], pkt.Payload)
	_, err := w.Write(buf)
	return err
}

func decodePacket(r io.Reader) (atlasnet.Packet, error) {
	var hdr [12]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return atlasnet.Packet{}, err
	}
	payloadLen := binary.LittleEndian.Uint32(hdr[8:12])
	payload := make([]byte, payloadLen)
	if payloadLen > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return atlasnet.Packet{}, err
		}
	}
	return atlasnet.Packet{
		Type:    binary.LittleEndian.Uint16(hdr[0:2]),
		Size:    binary.LittleEndian.Uint16(hdr[2:4]),
		Tick:    binary.LittleEndian.Uint32(hdr[4:8]),
		Payload: payload,
	}, nil
}
