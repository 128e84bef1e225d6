package emu

import (
	"log"
	"os"
)

// Bus register offsets relative to the GPU base address.
const (
	regGP0 = 0x0 // write: GP0, read: GPUREAD
	regGP1 = 0x4 // write: GP1, read: GPUSTAT
)

// readMode selects what a GPUREAD access returns.
type readMode uint8

const (
	readNormal readMode = iota // latched value
	readVRAM                   // VRAM->CPU transfer in progress
	readInfo                   // GP1(10h) query result
)

// Options selects the rendering paths and debug features of a GPU.
type Options struct {
	// SoftwareRendering forwards primitives to the Backend.
	SoftwareRendering bool
	// HardwareRendering appends primitive vertices to the per-frame DrawList.
	HardwareRendering bool
	// LogCommands records every dispatched GP0 command.
	LogCommands bool
}

// DefaultOptions returns the options used by NewGPU.
func DefaultOptions() Options {
	return Options{HardwareRendering: true}
}

// GPU is the graphics command processor: the GP0/GP1 ports, the register
// bank, VRAM and the video timing counters.
type GPU struct {
	vram [VRAMWidth * VRAMHeight]uint16

	regs    RegisterBank
	decoder decoder

	// Block transfer cursors
	upload   vramCursor // CPU->VRAM
	download vramCursor // VRAM->CPU

	readMode  readMode
	readLatch uint32

	timing timingEngine

	// Edges consumed by the owning system
	vblankEdge bool
	irqEdge    bool

	backend  Backend
	drawList *DrawList
	opts     Options

	logger *log.Logger
	cmdLog []LogEntry
}

// NewGPU creates a GPU in its power-on state with DefaultOptions.
func NewGPU() *GPU {
	g := &GPU{
		drawList: NewDrawList(),
		opts:     DefaultOptions(),
		logger:   log.New(os.Stderr, "gpu: ", log.LstdFlags),
	}
	g.Reset()
	return g
}

// SetLogger replaces the diagnostic logger.
func (g *GPU) SetLogger(l *log.Logger) {
	g.logger = l
}

// SetBackend sets the rasterizer used when software rendering is enabled.
func (g *GPU) SetBackend(b Backend) {
	g.backend = b
}

// Reconfigure applies new options. It takes effect for the next command.
func (g *GPU) Reconfigure(opts Options) {
	g.opts = opts
}

// Options returns the active options.
func (g *GPU) Options() Options {
	return g.opts
}

// Reset performs a GP1(00h) reset: registers return to their power-on
// values and any in-flight command or transfer is dropped. VRAM is kept.
func (g *GPU) Reset() {
	g.regs.reset()
	g.resetCommandBuffer()
	g.readMode = readNormal
	g.download.active = false
}

// resetCommandBuffer drops pending GP0 state without touching registers.
func (g *GPU) resetCommandBuffer() {
	g.decoder.reset()
	g.upload.active = false
}

// Write handles a 32-bit bus write at the given GPU-relative address.
func (g *GPU) Write(addr uint32, val uint32) {
	switch addr &^ 3 {
	case regGP0:
		g.WriteGP0(val)
	case regGP1:
		g.WriteGP1(val)
	}
}

// Read handles a 32-bit bus read at the given GPU-relative address.
func (g *GPU) Read(addr uint32) uint32 {
	switch addr &^ 3 {
	case regGP0:
		return g.ReadData()
	case regGP1:
		return g.Status()
	}
	return 0
}

// ReadData returns the next GPUREAD word. During a VRAM->CPU transfer each
// read packs two pixels; otherwise the last latched value is returned.
func (g *GPU) ReadData() uint32 {
	if g.readMode != readVRAM {
		return g.readLatch
	}
	g.readLatch = g.downloadWord()
	if !g.download.active {
		g.readMode = readNormal
	}
	return g.readLatch
}

// Status assembles GPUSTAT.
func (g *GPU) Status() uint32 {
	return g.regs.status(g.timing.Odd, g.uploading())
}

// uploading reports whether a CPU->VRAM transfer is consuming GP0 words.
func (g *GPU) uploading() bool {
	return g.decoder.kind == cmdCopyCPUToVRAMData
}

// Registers returns a snapshot of the register bank.
func (g *GPU) Registers() RegisterBank {
	return g.regs
}

// Busy reports whether the decoder is in the middle of a command.
func (g *GPU) Busy() bool {
	return g.decoder.state != decoderIdle
}

// --- VRAM access ---

func vramIndex(x, y int) int {
	return (y&(VRAMHeight-1))*VRAMWidth + (x & (VRAMWidth - 1))
}

// Pixel returns the VRAM cell at (x, y). Coordinates wrap.
func (g *GPU) Pixel(x, y int) uint16 {
	return g.vram[vramIndex(x, y)]
}

// WritePixel stores a pixel honoring the mask bit setting.
func (g *GPU) WritePixel(x, y int, value uint16) {
	g.maskedWrite(x, y, value)
}

// maskedWrite is the single write path for everything except fill-rect.
// With check-mask set, cells whose bit 15 is set are left untouched.
func (g *GPU) maskedWrite(x, y int, value uint16) {
	i := vramIndex(x, y)
	ms := g.regs.MaskSetting()
	if ms.CheckMask && g.vram[i]&0x8000 != 0 {
		return
	}
	if ms.SetMask {
		value |= 0x8000
	}
	g.vram[i] = value
}

// VRAM returns the backing framebuffer. Callers must not write to it.
func (g *GPU) VRAM() []uint16 {
	return g.vram[:]
}

// DrawingArea returns the clip rectangle limited to VRAM bounds.
func (g *GPU) DrawingArea() Rect {
	a := g.regs.DrawingArea()
	return Rect{
		Left:   g.minDrawingX(a.Left),
		Top:    g.minDrawingY(a.Top),
		Right:  g.maxDrawingX(a.Right),
		Bottom: g.maxDrawingY(a.Bottom),
	}
}

func (g *GPU) minDrawingX(x int) int { return max(int(g.regs.areaLeft), max(0, x)) }
func (g *GPU) minDrawingY(y int) int { return max(int(g.regs.areaTop), max(0, y)) }
func (g *GPU) maxDrawingX(x int) int { return min(int(g.regs.areaRight), min(VRAMWidth, x)) }
func (g *GPU) maxDrawingY(y int) int { return min(int(g.regs.areaBottom), min(VRAMHeight, y)) }

// insideDrawingArea reports whether (x, y) lies within the clip rectangle.
func (g *GPU) insideDrawingArea(x, y int) bool {
	return x >= int(g.regs.areaLeft) && x < int(g.regs.areaRight) && x < VRAMWidth &&
		y >= int(g.regs.areaTop) && y < int(g.regs.areaBottom) && y < VRAMHeight
}

// --- Timing and edges ---

// Step advances video timing by the given number of GPU cycles and reports
// whether a frame completed.
func (g *GPU) Step(cycles int) bool {
	frame, vblank := g.timing.step(cycles, GetTimingForRegion(g.timingRegion()), g.regs.interlaced480())
	if vblank {
		g.vblankEdge = true
	}
	return frame
}

// timingRegion returns the video standard selected by GP1(08h).
func (g *GPU) timingRegion() Region {
	if g.regs.IsPAL() {
		return RegionPAL
	}
	return RegionNTSC
}

// Timing returns the current timing counters.
func (g *GPU) Timing() TimingState {
	return g.timing.TimingState
}

// TakeVBlank returns and clears the vblank-start edge.
func (g *GPU) TakeVBlank() bool {
	v := g.vblankEdge
	g.vblankEdge = false
	return v
}

// TakeIRQ returns and clears the GP0(1Fh) interrupt edge.
func (g *GPU) TakeIRQ() bool {
	v := g.irqEdge
	g.irqEdge = false
	return v
}

// --- Per-frame geometry ---

// DrawList returns the vertex buffer primitives are currently appended to.
func (g *GPU) DrawList() *DrawList {
	return g.drawList
}

// SwapDrawList installs next as the active vertex buffer after resetting
// it, and returns the previous buffer to the caller.
func (g *GPU) SwapDrawList(next *DrawList) *DrawList {
	prev := g.drawList
	next.Reset()
	g.drawList = next
	return prev
}
