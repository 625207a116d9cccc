package net

import (
	"encoding/binary"
	"math"
)

// InputFrame is a single player's input sample for one tick. It is carried
// in packet payloads; the core never interprets MoveX/MoveY — it only
// provides a stable wire codec so hosts don't each reinvent one.
type InputFrame struct {
	Tick     uint32
	PlayerID uint32
	MoveX    float32
	MoveY    float32
}

const inputFrameSize = 4 + 4 + 4 + 4

// EncodeInputFrame serializes f into a fixed-size little-endian payload
// suitable for Packet.Payload. MoveX/MoveY are written verbatim: like every
// other field this package carries, they are opaque to the core, and any
// magnitude policy (clamping, normalizing, or reusing the two floats for
// something other than a movement vector) belongs to a domain layer above
// server/net, not to the wire codec.
func EncodeInputFrame(f InputFrame) []byte {
	buf := make([]byte, inputFrameSize)
	binary.LittleEndian.PutUint32(buf[0:4], f.Tick)
	binary.LittleEndian.PutUint32(buf[4:8], f.PlayerID)
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(f.MoveX))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(f.MoveY))
	return buf
}

// DecodeInputFrame parses a payload produced by EncodeInputFrame. It returns
// false if the payload is too short.
func DecodeInputFrame(payload []byte) (InputFrame, bool) {
	if len(payload) < inputFrameSize {
		return InputFrame{}, false
	}
	return InputFrame{
		Tick:     binary.LittleEndian.Uint32(payload[0:4]),
		PlayerID: binary.LittleEndian.Uint32(payload[4:8]),
		MoveX:    math.Float32frombits(binary.LittleEndian.Uint32(payload[8:12])),
		MoveY:    math.Float32frombits(binary.LittleEndian.Uint32(payload[12:16])),
	}, true
}
