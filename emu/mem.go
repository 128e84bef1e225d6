package emu

import "encoding/binary"

const (
	mainRAMSize = 0x200000 // 2MB main RAM
	mainRAMMask = mainRAMSize - 1

	gpuBase = 0x1F801810 // GP0/GPUREAD
	gpuEnd  = 0x1F801817 // GP1/GPUSTAT
)

// Bus routes 32-bit accesses between main RAM and the GPU ports.
//
// Address map (physical, KUSEG/KSEG0/KSEG1 folded):
//
//	0x00000000-0x007FFFFF  main RAM (2MB, mirrored)
//	0x1F801810-0x1F801813  GP0 write / GPUREAD read
//	0x1F801814-0x1F801817  GP1 write / GPUSTAT read
type Bus struct {
	ram [mainRAMSize]byte
	gpu *GPU
}

// NewBus creates a Bus connected to gpu.
func NewBus(gpu *GPU) *Bus {
	return &Bus{gpu: gpu}
}

// physical strips the segment bits of a CPU address.
func physical(addr uint32) uint32 {
	return addr & 0x1FFFFFFF
}

// Read32 reads a word. Unmapped addresses read as zero.
func (b *Bus) Read32(addr uint32) uint32 {
	addr = physical(addr)
	switch {
	case addr < 0x00800000:
		return b.ReadWord(addr)
	case addr >= gpuBase && addr <= gpuEnd:
		return b.gpu.Read(addr - gpuBase)
	}
	return 0
}

// Write32 writes a word. Writes to unmapped addresses are ignored.
func (b *Bus) Write32(addr uint32, value uint32) {
	addr = physical(addr)
	switch {
	case addr < 0x00800000:
		b.writeRAM(addr, value)
	case addr >= gpuBase && addr <= gpuEnd:
		b.gpu.Write(addr-gpuBase, value)
	}
}

// ReadWord reads an aligned RAM word for DMA transfers.
func (b *Bus) ReadWord(addr uint32) uint32 {
	off := addr & mainRAMMask &^ 3
	return binary.LittleEndian.Uint32(b.ram[off:])
}

func (b *Bus) writeRAM(addr uint32, value uint32) {
	off := addr & mainRAMMask &^ 3
	binary.LittleEndian.PutUint32(b.ram[off:], value)
}

// Reset clears main RAM.
func (b *Bus) Reset() {
	clear(b.ram[:])
}
