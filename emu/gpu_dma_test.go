package emu

import (
	"bytes"
	"strings"
	"testing"
)

// wordMemory is a sparse word-addressed RAM.
type wordMemory map[uint32]uint32

func (m wordMemory) ReadWord(addr uint32) uint32 { return m[addr] }

func TestDMA_LinkedList(t *testing.T) {
	g := makeTestGPU()
	mem := wordMemory{
		// node 0x100: two words, next 0x200
		0x100: 2<<24 | 0x200,
		0x104: 0xE1000001,
		0x108: 0xE6000001,
		// node 0x200: empty, next 0x300
		0x200: 0x300,
		// node 0x300: fill rect, end
		0x300: 3<<24 | linkedListEnd,
		0x304: 0x020000FF,
		0x308: xy(0, 0),
		0x30C: xy(16, 1),
	}

	if end := g.WriteLinkedList(mem, 0x100); end != linkedListEnd {
		t.Errorf("expected walk to end at 0x%06X, got 0x%06X", linkedListEnd, end)
	}
	if x, _ := g.Registers().TexturePage(); x != 64 {
		t.Errorf("expected E1 applied, page x %d", x)
	}
	if !g.Registers().MaskSetting().SetMask {
		t.Error("expected E6 applied")
	}
	if got := g.Pixel(0, 0); got != 0x001F {
		t.Errorf("expected fill from last node, got 0x%04X", got)
	}
}

func TestDMA_LinkedListStopsAtZero(t *testing.T) {
	g := makeTestGPU()
	mem := wordMemory{0x80: 1<<24 | 0, 0x84: 0xE1000002}
	if end := g.WriteLinkedList(mem, 0x80); end != 0 {
		t.Errorf("expected end at 0, got 0x%06X", end)
	}
	if x, _ := g.Registers().TexturePage(); x != 128 {
		t.Errorf("expected payload executed, page x %d", x)
	}
}

func TestDMA_LinkedListCycleBreaker(t *testing.T) {
	var buf bytes.Buffer
	g := makeLoggedGPU(&buf)

	mem := &countingMemory{words: wordMemory{0x40: 0x40}}
	end := g.WriteLinkedList(mem, 0x40)
	if end != 0x40 {
		t.Errorf("expected walk to stop at 0x40, got 0x%06X", end)
	}
	if mem.reads != maxLinkedListNodes {
		t.Errorf("expected %d header reads, got %d", maxLinkedListNodes, mem.reads)
	}
	if !strings.Contains(buf.String(), "linked list DMA exceeds") {
		t.Errorf("expected cycle log, got %q", buf.String())
	}
}

type countingMemory struct {
	words wordMemory
	reads int
}

func (m *countingMemory) ReadWord(addr uint32) uint32 {
	m.reads++
	return m.words[addr]
}

func TestDMA_Blocks(t *testing.T) {
	g := makeTestGPU()
	g.WriteBlock([]uint32{0xA0000000, xy(0, 0), xy(2, 2), 0x00020001, 0x00040003})
	if g.Busy() {
		t.Fatal("expected upload complete")
	}

	writeGP0(g, 0xC0000000, xy(0, 0), xy(2, 2))
	out := make([]uint32, 2)
	g.ReadBlock(out)
	if out[0] != 0x00020001 || out[1] != 0x00040003 {
		t.Errorf("unexpected readback %08X %08X", out[0], out[1])
	}
}

func TestDMA_LinkedListThroughBus(t *testing.T) {
	g := makeTestGPU()
	bus := NewBus(g)
	bus.Write32(0x1000, 1<<24|linkedListEnd)
	bus.Write32(0x1004, 0xE1000003)

	g.WriteLinkedList(bus, 0x80001000)
	if x, _ := g.Registers().TexturePage(); x != 192 {
		t.Errorf("expected node read through KSEG0 mirror, page x %d", x)
	}
}
