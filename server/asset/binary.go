// Package asset implements the Atlas Engine binary asset codec and the
// filesystem registry that indexes compiled graph assets.
package asset

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"

	"github.com/atlas-engine/atlas/server/vm"
)

// Magic is the four-byte "ATLS" magic number every asset blob starts with.
// Read rejects any blob whose magic does not match.
const Magic uint32 = 0x41544C53

// FormatVersion is the AssetHeader.version written by this package. It is
// advisory: Read does not reject on a version mismatch, per spec.md §9 (the
// header's size and hash fields are written but not validated).
const FormatVersion uint16 = 1

// Type discriminates the payload an asset blob carries. Only TypeGraph is
// produced by this engine; the others are reserved for asset kinds outside
// the core's scope (world, mesh, material, ...).
type Type uint16

const (
	TypeGraph Type = iota
	TypeWorld
	TypePlanet
	TypeGalaxy
	TypeMesh
	TypeMaterial
	TypeMechanic
	TypeVoxelSchema
	TypeGameType
	TypeEditorProfile
)

const headerSize = 4 + 2 + 2 + 4 + 8 // magic, version, type, size, hash
const instructionSize = 1 + 3 + 4 + 4 + 4 // opcode, pad, a, b, c

var errBadMagic = errors.New("asset: bad magic, not an Atlas asset blob")

// EncodeBytecode writes bc to w in the layout documented in spec.md §4.5:
// a fixed header followed by the constant pool and the instruction stream,
// all little-endian. The header's hash field is populated with the xxhash64
// digest of the payload that follows it; spec.md treats the field as
// advisory and readers never validate it, but a real digest costs nothing
// and gives tooling something to check against corruption.
func EncodeBytecode(w io.Writer, bc vm.Bytecode) error {
	payload := encodePayload(bc)

	var hdr [headerSize]byte
	binary.LittleEndian.PutUint32(hdr[0:4], Magic)
	binary.LittleEndian.PutUint16(hdr[4:6], FormatVersion)
	binary.LittleEndian.PutUint16(hdr[6:8], uint16(TypeGraph))
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(len(payload)))
	binary.LittleEndian.PutUint64(hdr[12:20], xxhash.Sum64(payload))

	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

func encodePayload(bc vm.Bytecode) []byte {
	var buf bytes.Buffer
	buf.Grow(4 + len(bc.Constants)*8 + 4 + len(bc.Instructions)*instructionSize)

	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], uint32(len(bc.Constants)))
	buf.Write(u32[:])
	for _, c := range bc.Constants {
		var u64 [8]byte
		binary.LittleEndian.PutUint64(u64[:], uint64(c))
		buf.Write(u64[:])
	}

	binary.LittleEndian.PutUint32(u32[:], uint32(len(bc.Instructions)))
	buf.Write(u32[:])
	for _, inst := range bc.Instructions {
		var rec [instructionSize]byte
		rec[0] = byte(inst.Opcode)
		binary.LittleEndian.PutUint32(rec[4:8], inst.A)
		binary.LittleEndian.PutUint32(rec[8:12], inst.B)
		binary.LittleEndian.PutUint32(rec[12:16], inst.C)
		buf.Write(rec[:])
	}
	return buf.Bytes()
}

// DecodeBytecode reads a blob written by EncodeBytecode from r. It returns
// errBadMagic if the header's magic number does not match Magic; the
// version, size and hash header fields are read but not validated, per
// spec.md §9.
func DecodeBytecode(r io.Reader) (vm.Bytecode, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return vm.Bytecode{}, err
	}
	if binary.LittleEndian.Uint32(hdr[0:4]) != Magic {
		return vm.Bytecode{}, errBadMagic
	}

	var u32 [4]byte
	if _, err := io.ReadFull(r, u32[:]); err != nil {
		return vm.Bytecode{}, err
	}
	constCount := binary.LittleEndian.Uint32(u32[:])
	constants := make([]int64, constCount)
	for i := range constants {
		var u64 [8]byte
		if _, err := io.ReadFull(r, u64[:]); err != nil {
			return vm.Bytecode{}, err
		}
		constants[i] = int64(binary.LittleEndian.Uint64(u64[:]))
	}

	if _, err := io.ReadFull(r, u32[:]); err != nil {
		return vm.Bytecode{}, err
	}
	codeCount := binary.LittleEndian.Uint32(u32[:])
	instructions := make([]vm.Instruction, codeCount)
	for i := range instructions {
		var rec [instructionSize]byte
		if _, err := io.ReadFull(r, rec[:]); err != nil {
			return vm.Bytecode{}, err
		}
		instructions[i] = vm.Instruction{
			Opcode: vm.Opcode(rec[0]),
			A:      binary.LittleEndian.Uint32(rec[4:8]),
			B:      binary.LittleEndian.Uint32(rec[8:12]),
			C:      binary.LittleEndian.Uint32(rec[12:16]),
		}
	}

	return vm.Bytecode{Constants: constants, Instructions: instructions}, nil
}

// WriteGraph writes bc to the file at path, creating or truncating it. It
// returns false (rather than an error) on any failure, matching the
// Read/Write boolean-return policy in spec.md §7 — callers that need the
// underlying cause should use EncodeBytecode with their own *os.File.
func WriteGraph(path string, bc vm.Bytecode) bool {
	f, err := os.Create(path)
	if err != nil {
		return false
	}
	defer f.Close()
	return EncodeBytecode(f, bc) == nil
}

// ReadGraph reads a Bytecode previously written by WriteGraph from path. It
// returns (zero-value, false) if the file cannot be opened, is truncated, or
// fails the magic check.
func ReadGraph(path string) (vm.Bytecode, bool) {
	f, err := os.Open(path)
	if err != nil {
		return vm.Bytecode{}, false
	}
	defer f.Close()
	bc, err := DecodeBytecode(f)
	if err != nil {
		return vm.Bytecode{}, false
	}
	return bc, true
}
