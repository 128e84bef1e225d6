package emu

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
)

// Save state format constants
const (
	stateVersion    = 1
	stateMagic      = "eMGPUState\x00\x00"
	stateHeaderSize = 22 // magic(12) + version(2) + traceCRC(4) + dataCRC(4)
)

// emulatorSerializeSize covers the inline Emulator fields:
// cursor(4) + memAddr(4) + pending(4) + mismatch(4) + exhausted(1) +
// vblankIRQ(1) + gpuIRQ(1) + showVRAM(1)
const emulatorSerializeSize = 20

var (
	ErrStateTooSmall = errors.New("save state too short")
	ErrStateMagic    = errors.New("invalid save state magic")
	ErrStateVersion  = errors.New("unsupported save state version")
	ErrStateTrace    = errors.New("save state is for a different trace")
	ErrStateCRC      = errors.New("save state data is corrupted")
)

// boolByte converts a bool to a uint8 (0 or 1).
func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// SerializeSize returns the total size in bytes needed for a save state.
func SerializeSize() int {
	return stateHeaderSize +
		mainRAMSize +
		GPUSerializeSize +
		emulatorSerializeSize
}

// SerializeSize returns the total size in bytes needed for a save state.
func (e *Emulator) SerializeSize() int {
	return SerializeSize()
}

// Serialize creates a save state and returns it as a byte slice.
func (e *Emulator) Serialize() ([]byte, error) {
	data := make([]byte, e.SerializeSize())

	// Write header
	copy(data[0:12], stateMagic)
	binary.LittleEndian.PutUint16(data[12:14], stateVersion)
	binary.LittleEndian.PutUint32(data[14:18], e.traceCRC)

	offset := stateHeaderSize

	// Main RAM (2MB)
	copy(data[offset:], e.bus.ram[:])
	offset += mainRAMSize

	// GPU
	if err := e.gpu.Serialize(data[offset:]); err != nil {
		return nil, err
	}
	offset += GPUSerializeSize

	// Emulator inline state
	e.serializeBase(data, offset)

	// Calculate and write data CRC32 (over everything after header)
	dataCRC := crc32.ChecksumIEEE(data[stateHeaderSize:])
	binary.LittleEndian.PutUint32(data[18:22], dataCRC)

	return data, nil
}

// Deserialize restores emulator state from a save state byte slice.
// Region is NOT restored - the current region setting is preserved.
func (e *Emulator) Deserialize(data []byte) error {
	if err := e.VerifyState(data); err != nil {
		return err
	}

	offset := stateHeaderSize

	// Main RAM (2MB)
	copy(e.bus.ram[:], data[offset:offset+mainRAMSize])
	offset += mainRAMSize

	// GPU
	if err := e.gpu.Deserialize(data[offset:]); err != nil {
		return err
	}
	offset += GPUSerializeSize

	// Emulator inline state
	e.deserializeBase(data, offset)

	e.render()
	return nil
}

// VerifyState checks if a save state is valid without loading it.
func (e *Emulator) VerifyState(data []byte) error {
	if len(data) < e.SerializeSize() {
		return ErrStateTooSmall
	}

	if string(data[0:12]) != stateMagic {
		return ErrStateMagic
	}

	version := binary.LittleEndian.Uint16(data[12:14])
	if version > stateVersion {
		return ErrStateVersion
	}

	traceCRC := binary.LittleEndian.Uint32(data[14:18])
	if traceCRC != e.traceCRC {
		return ErrStateTrace
	}

	expectedCRC := binary.LittleEndian.Uint32(data[18:22])
	actualCRC := crc32.ChecksumIEEE(data[stateHeaderSize:])
	if expectedCRC != actualCRC {
		return ErrStateCRC
	}

	return nil
}

// serializeBase writes Emulator inline state to the data buffer.
func (e *Emulator) serializeBase(data []byte, offset int) int {
	binary.LittleEndian.PutUint32(data[offset:], uint32(e.cursor))
	offset += 4
	binary.LittleEndian.PutUint32(data[offset:], e.memAddr)
	offset += 4
	binary.LittleEndian.PutUint32(data[offset:], uint32(e.pending))
	offset += 4
	binary.LittleEndian.PutUint32(data[offset:], uint32(e.mismatch))
	offset += 4

	data[offset] = boolByte(e.exhausted)
	offset++
	data[offset] = boolByte(e.vblankIRQ)
	offset++
	data[offset] = boolByte(e.gpuIRQ)
	offset++
	data[offset] = boolByte(e.showVRAM)
	offset++

	return offset
}

// deserializeBase reads Emulator inline state from the data buffer.
func (e *Emulator) deserializeBase(data []byte, offset int) int {
	e.cursor = int(binary.LittleEndian.Uint32(data[offset:]))
	offset += 4
	e.memAddr = binary.LittleEndian.Uint32(data[offset:])
	offset += 4
	e.pending = int(binary.LittleEndian.Uint32(data[offset:]))
	offset += 4
	e.mismatch = int(binary.LittleEndian.Uint32(data[offset:]))
	offset += 4

	e.exhausted = data[offset] != 0
	offset++
	e.vblankIRQ = data[offset] != 0
	offset++
	e.gpuIRQ = data[offset] != 0
	offset++
	e.showVRAM = data[offset] != 0
	offset++

	return offset
}
