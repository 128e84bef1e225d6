package emu

// maxLinkedListNodes bounds an ordering-table walk so a cyclic list
// cannot hang the caller.
const maxLinkedListNodes = 0x4000

// linkedListEnd marks the last node of an ordering table.
const linkedListEnd = 0xFFFFFF

// MemoryReader provides word-level read access to main RAM for DMA
// transfers.
type MemoryReader interface {
	ReadWord(addr uint32) uint32
}

// WriteBlock pumps words into GP0 the way a block or request-synced DMA
// channel does.
func (g *GPU) WriteBlock(words []uint32) {
	for _, w := range words {
		g.WriteGP0(w)
	}
}

// ReadBlock fills dst from GPUREAD.
func (g *GPU) ReadBlock(dst []uint32) {
	for i := range dst {
		dst[i] = g.ReadData()
	}
}

// WriteLinkedList walks an ordering table starting at addr and feeds each
// node's payload to GP0. A node header holds the payload word count in
// bits 24-31 and the next node address in bits 0-23. The walk ends at
// address 0xFFFFFF or 0. It returns the address the walk stopped at.
func (g *GPU) WriteLinkedList(mem MemoryReader, addr uint32) uint32 {
	for nodes := 0; ; nodes++ {
		header := mem.ReadWord(addr)
		count := header >> 24

		addr += 4
		for i := uint32(0); i < count; i++ {
			g.WriteGP0(mem.ReadWord(addr))
			addr += 4
		}

		addr = header & 0xFFFFFF
		if addr == linkedListEnd || addr == 0 {
			return addr
		}
		if nodes+1 >= maxLinkedListNodes {
			g.logger.Printf("linked list DMA exceeds %d nodes, stopping at 0x%06x", maxLinkedListNodes, addr)
			return addr
		}
	}
}
