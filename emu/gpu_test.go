package emu

import (
	"bytes"
	"io"
	"log"
	"strings"
	"testing"
)

// makeTestGPU creates a GPU with diagnostics discarded.
func makeTestGPU() *GPU {
	g := NewGPU()
	g.SetLogger(log.New(io.Discard, "", 0))
	return g
}

// makeLoggedGPU creates a GPU whose diagnostics are captured in buf.
func makeLoggedGPU(buf *bytes.Buffer) *GPU {
	g := NewGPU()
	g.SetLogger(log.New(buf, "", 0))
	return g
}

// xy packs a signed vertex position the way GP0 commands carry it.
func xy(x, y int) uint32 {
	return uint32(uint16(int16(y)))<<16 | uint32(uint16(int16(x)))
}

// writeGP0 feeds a sequence of words to GP0.
func writeGP0(g *GPU, words ...uint32) {
	for _, w := range words {
		g.WriteGP0(w)
	}
}

// mockBackend records every primitive handed to it.
type mockBackend struct {
	triangles  [][3]Vertex
	lines      [][2]Vertex
	rectangles []Quad
}

func (m *mockBackend) DrawTriangle(s Surface, v [3]Vertex) { m.triangles = append(m.triangles, v) }
func (m *mockBackend) DrawLine(s Surface, v [2]Vertex)     { m.lines = append(m.lines, v) }
func (m *mockBackend) DrawRectangle(s Surface, q Quad)     { m.rectangles = append(m.rectangles, q) }

func TestGPU_PowerOnStatus(t *testing.T) {
	g := makeTestGPU()
	// bits 13, 23 (display disabled), 26, 27, 28
	want := uint32(0x1C802000)
	if got := g.Status(); got != want {
		t.Errorf("expected GPUSTAT 0x%08X, got 0x%08X", want, got)
	}
}

func TestGPU_BusAddressDecode(t *testing.T) {
	g := makeTestGPU()

	// Offset 4 is GP1; display enable
	g.Write(0x4, 0x03000000)
	if !g.Registers().DisplayEnabled() {
		t.Error("expected display enabled after GP1 write at offset 4")
	}

	// Offset 0 is GP0; low address bits are ignored
	g.Write(0x2, 0xE1000203)
	if got := g.Registers().DrawMode(); got != 0x203 {
		t.Errorf("expected draw mode 0x203, got 0x%X", got)
	}

	if got, want := g.Read(0x4), g.Status(); got != want {
		t.Errorf("expected GPUSTAT 0x%08X from offset 4, got 0x%08X", want, got)
	}
	if got := g.Read(0x8); got != 0 {
		t.Errorf("expected 0 from unmapped offset, got 0x%08X", got)
	}
}

func TestGPU_MaskedWrite(t *testing.T) {
	g := makeTestGPU()

	g.WritePixel(5, 5, 0x1234)
	if got := g.Pixel(5, 5); got != 0x1234 {
		t.Errorf("expected 0x1234, got 0x%04X", got)
	}

	// Set mask while drawing
	g.WriteGP0(0xE6000001)
	g.WritePixel(6, 5, 0x0001)
	if got := g.Pixel(6, 5); got != 0x8001 {
		t.Errorf("expected mask bit forced, got 0x%04X", got)
	}

	// Check mask before draw: (6,5) now has bit 15 and must not change
	g.WriteGP0(0xE6000002)
	g.WritePixel(6, 5, 0x0002)
	if got := g.Pixel(6, 5); got != 0x8001 {
		t.Errorf("expected masked cell unchanged, got 0x%04X", got)
	}
	g.WritePixel(5, 5, 0x0003)
	if got := g.Pixel(5, 5); got != 0x0003 {
		t.Errorf("expected unmasked cell written, got 0x%04X", got)
	}
}

func TestGPU_PixelWraps(t *testing.T) {
	g := makeTestGPU()
	g.WritePixel(VRAMWidth+3, VRAMHeight+2, 0x0042)
	if got := g.Pixel(3, 2); got != 0x0042 {
		t.Errorf("expected wrapped write at (3,2), got 0x%04X", got)
	}
	if got := g.Pixel(-1, -1); got != g.Pixel(VRAMWidth-1, VRAMHeight-1) {
		t.Errorf("expected negative coordinates to wrap")
	}
}

func TestGPU_DrawingArea(t *testing.T) {
	g := makeTestGPU()
	writeGP0(g,
		0xE3000000|10<<10|20,   // top-left (20,10)
		0xE4000000|300<<10|400, // bottom-right (400,300)
	)

	a := g.DrawingArea()
	if a != (Rect{Left: 20, Top: 10, Right: 400, Bottom: 300}) {
		t.Errorf("unexpected drawing area %+v", a)
	}
	if !g.insideDrawingArea(20, 10) {
		t.Error("expected top-left corner inside")
	}
	if g.insideDrawingArea(400, 100) {
		t.Error("expected right edge outside")
	}
	if g.insideDrawingArea(19, 100) {
		t.Error("expected column left of area outside")
	}
}

func TestGPU_ReconfigureRenderingPaths(t *testing.T) {
	g := makeTestGPU()
	m := &mockBackend{}
	g.SetBackend(m)

	tri := []uint32{0x20FFFFFF, xy(0, 0), xy(10, 0), xy(0, 10)}

	writeGP0(g, tri...)
	if len(m.triangles) != 0 {
		t.Errorf("expected no software triangles by default, got %d", len(m.triangles))
	}
	if g.DrawList().Len() != 3 {
		t.Errorf("expected 3 draw list vertices, got %d", g.DrawList().Len())
	}

	g.Reconfigure(Options{SoftwareRendering: true})
	writeGP0(g, tri...)
	if len(m.triangles) != 1 {
		t.Errorf("expected 1 software triangle, got %d", len(m.triangles))
	}
	if g.DrawList().Len() != 3 {
		t.Errorf("expected draw list unchanged with hardware path off, got %d", g.DrawList().Len())
	}
}

func TestGPU_SwapDrawList(t *testing.T) {
	g := makeTestGPU()
	writeGP0(g, 0x20FFFFFF, xy(0, 0), xy(10, 0), xy(0, 10))

	next := NewDrawList()
	next.push(Vertex{})
	prev := g.SwapDrawList(next)

	if prev.Len() != 3 {
		t.Errorf("expected previous list with 3 vertices, got %d", prev.Len())
	}
	if g.DrawList() != next || next.Len() != 0 {
		t.Errorf("expected installed list to be reset, len %d", next.Len())
	}
}

func TestGPU_UnknownOpcodeLogged(t *testing.T) {
	var buf bytes.Buffer
	g := makeLoggedGPU(&buf)

	g.WriteGP0(0x03123456)
	if g.Busy() {
		t.Error("expected unknown opcode to leave the decoder idle")
	}
	if !strings.Contains(buf.String(), "unknown command") {
		t.Errorf("expected unknown command log, got %q", buf.String())
	}

	buf.Reset()
	g.WriteGP0(0x00000001)
	if !strings.Contains(buf.String(), "non-zero argument") {
		t.Errorf("expected nop argument log, got %q", buf.String())
	}
}
