package emu

import (
	"encoding/binary"
	"hash/crc32"
	"image"

	emucore "github.com/user-none/eblitui/api"
)

// Compile-time interface checks.
var _ emucore.Emulator = (*Emulator)(nil)
var _ emucore.SaveStater = (*Emulator)(nil)
var _ emucore.MemoryInspector = (*Emulator)(nil)
var _ emucore.MemoryMapper = (*Emulator)(nil)

// Core identification reported to frontends.
const (
	Name    = "emgpu"
	Version = "0.1.0"
)

// Display limits for frontends. The VRAM view is larger and only shown by
// the bundled runner.
const (
	ScreenWidth     = 640
	MaxScreenHeight = 480
)

// buttonVRAM is the input bit that toggles the VRAM view.
const buttonVRAM = 7

// Emulator drives a GPU from a recorded trace, one video frame at a time.
type Emulator struct {
	gpu *GPU
	bus *Bus

	// Trace playback
	trace     *Trace
	traceCRC  uint32
	cursor    int    // next record
	memAddr   uint32 // RAM write cursor for TraceMemWrite
	pending   int    // GPU cycles left from the current step record
	mismatch  int    // TraceRead results that differed from the recording
	exhausted bool

	// Region timing
	region Region
	timing RegionTiming

	// Interrupt edges latched during the last frame
	vblankIRQ bool
	gpuIRQ    bool

	// Per-frame geometry, double buffered
	frameList *DrawList
	spareList *DrawList

	buttons     uint32
	showVRAM    bool
	framebuffer *image.RGBA
	width       int
	height      int
}

// NewEmulator creates an emulator replaying trace. A nil trace runs an
// idle GPU.
func NewEmulator(trace *Trace, region Region) *Emulator {
	if trace == nil {
		trace = &Trace{Version: traceVersion}
	}
	gpu := NewGPU()
	e := &Emulator{
		gpu:         gpu,
		bus:         NewBus(gpu),
		trace:       trace,
		traceCRC:    crc32.ChecksumIEEE(trace.Encode()),
		frameList:   NewDrawList(),
		spareList:   NewDrawList(),
		framebuffer: image.NewRGBA(image.Rect(0, 0, VRAMWidth, VRAMHeight)),
	}
	e.SetRegion(region)
	e.render()
	return e
}

// GPU returns the emulated GPU.
func (e *Emulator) GPU() *GPU {
	return e.gpu
}

// Bus returns the memory bus the GPU is mapped on.
func (e *Emulator) Bus() *Bus {
	return e.bus
}

// RunFrame executes trace records until the GPU completes a frame. Step
// records are split into line-sized chunks so vblank is observed on the
// right line. Once the trace is exhausted the GPU runs idle.
func (e *Emulator) RunFrame() {
	e.vblankIRQ = false
	e.gpuIRQ = false

	for {
		if e.pending == 0 && !e.exhausted {
			if e.cursor >= len(e.trace.Records) {
				e.exhausted = true
			} else {
				e.execute(e.trace.Records[e.cursor])
				e.cursor++
				continue
			}
		}

		lineDots := GetTimingForRegion(e.gpu.timingRegion()).DotsPerLine
		n := lineDots
		if e.pending > 0 {
			n = min(e.pending, lineDots)
			e.pending -= n
		}

		frame := e.gpu.Step(n)
		if e.gpu.TakeVBlank() {
			e.vblankIRQ = true
		}
		if frame {
			break
		}
	}

	done := e.gpu.SwapDrawList(e.spareList)
	e.spareList = e.frameList
	e.frameList = done

	e.render()
}

// execute applies one trace record.
func (e *Emulator) execute(r TraceRecord) {
	switch r.Kind {
	case TraceGP0:
		e.bus.Write32(gpuBase, r.Value)
	case TraceGP1:
		e.bus.Write32(gpuBase+4, r.Value)
	case TraceRead:
		if got := e.bus.Read32(gpuBase); got != r.Value {
			e.mismatch++
			if e.gpu.opts.LogCommands {
				e.gpu.logger.Printf("trace record %d: GPUREAD 0x%08x, recorded 0x%08x", e.cursor, got, r.Value)
			}
		}
	case TraceStep:
		e.pending = int(r.Value)
	case TraceSetAddress:
		e.memAddr = r.Value
	case TraceMemWrite:
		e.bus.Write32(e.memAddr, r.Value)
		e.memAddr += 4
	case TraceLinkedList:
		e.gpu.WriteLinkedList(e.bus, r.Value)
	}
	if e.gpu.TakeIRQ() {
		e.gpuIRQ = true
	}
}

// render refreshes the RGBA framebuffer from VRAM. Pixels outside the
// active area are cleared when the area shrinks.
func (e *Emulator) render() {
	w, h := VRAMWidth, VRAMHeight
	if !e.showVRAM {
		area := e.gpu.DisplayRect()
		w = min(area.Dx(), VRAMWidth)
		h = min(area.Dy(), VRAMHeight)
	}
	if w < e.width || h < e.height {
		clear(e.framebuffer.Pix)
	}
	e.width, e.height = w, h

	if e.showVRAM {
		e.gpu.RenderVRAM(e.framebuffer)
		return
	}
	e.gpu.RenderDisplay(e.framebuffer)
}

// SetInput takes a frontend button mask. A press of the VRAM button
// toggles between the display area and the whole of VRAM.
func (e *Emulator) SetInput(player int, buttons uint32) {
	if player != 0 {
		return
	}
	pressed := buttons &^ e.buttons
	e.buttons = buttons
	if pressed&(1<<buttonVRAM) != 0 {
		e.SetShowVRAM(!e.showVRAM)
	}
}

// GetAudioSamples returns nil; the GPU produces no audio.
func (e *Emulator) GetAudioSamples() []int16 {
	return nil
}

// VBlankIRQ returns and clears the vblank interrupt raised during the last frame.
func (e *Emulator) VBlankIRQ() bool {
	v := e.vblankIRQ
	e.vblankIRQ = false
	return v
}

// GPUIRQ returns and clears the GP0(1Fh) interrupt raised during the last frame.
func (e *Emulator) GPUIRQ() bool {
	v := e.gpuIRQ
	e.gpuIRQ = false
	return v
}

// DrawList returns the vertices emitted during the last completed frame.
// The list stays valid until the next RunFrame.
func (e *Emulator) DrawList() *DrawList {
	return e.frameList
}

// TraceDone reports whether every trace record has been executed.
func (e *Emulator) TraceDone() bool {
	return e.exhausted
}

// TraceMismatches returns how many GPUREAD results differed from the trace.
func (e *Emulator) TraceMismatches() int {
	return e.mismatch
}

// SetShowVRAM switches GetFramebuffer between the display area and the
// whole of VRAM.
func (e *Emulator) SetShowVRAM(show bool) {
	e.showVRAM = show
	e.render()
}

// ShowVRAM reports whether the whole of VRAM is displayed.
func (e *Emulator) ShowVRAM() bool {
	return e.showVRAM
}

// GetFramebuffer returns raw RGBA pixel data for current frame.
func (e *Emulator) GetFramebuffer() []byte {
	return e.framebuffer.Pix
}

// GetFramebufferStride returns the stride (bytes per row) of the framebuffer.
func (e *Emulator) GetFramebufferStride() int {
	return e.framebuffer.Stride
}

// GetActiveWidth returns the width of the rendered area.
func (e *Emulator) GetActiveWidth() int {
	return e.width
}

// GetActiveHeight returns the height of the rendered area.
func (e *Emulator) GetActiveHeight() int {
	return e.height
}

// GetRegion returns the emulator's region setting.
func (e *Emulator) GetRegion() Region {
	return e.region
}

// GetTiming returns FPS and scanline count for the current region.
func (e *Emulator) GetTiming() emucore.Timing {
	return emucore.Timing{
		FPS:       e.timing.FPS,
		Scanlines: e.timing.LinesPerFrame,
	}
}

// SetRegion updates the frame pacing region. GPU line timing follows the
// video standard selected through GP1(08h).
func (e *Emulator) SetRegion(region Region) {
	e.region = region
	e.timing = GetTimingForRegion(region)
}

// SetOption applies a core option change identified by key.
func (e *Emulator) SetOption(key string, value string) {
	opts := e.gpu.Options()
	on := value == "true"
	switch key {
	case "software_rendering":
		opts.SoftwareRendering = on
	case "hardware_rendering":
		opts.HardwareRendering = on
	case "log_commands":
		opts.LogCommands = on
	default:
		return
	}
	e.gpu.Reconfigure(opts)
}

// ReadMemory reads from a flat address into buf and returns the number
// of bytes read. Addresses 0-0x1FFFFF are main RAM, 0x200000 onward is
// VRAM as little-endian pixels.
func (e *Emulator) ReadMemory(addr uint32, buf []byte) uint32 {
	var count uint32
	for i := range buf {
		cur := addr + uint32(i)
		switch {
		case cur < mainRAMSize:
			buf[i] = e.bus.ram[cur]
		case cur < mainRAMSize+vramBytes:
			off := cur - mainRAMSize
			p := e.gpu.vram[off>>1]
			if off&1 != 0 {
				buf[i] = uint8(p >> 8)
			} else {
				buf[i] = uint8(p)
			}
		default:
			return count
		}
		count++
	}
	return count
}

// MemoryVRAM is the MemoryMapper region type for VRAM, stored as
// little-endian pixels. It follows the region types defined by emucore.
const MemoryVRAM = emucore.MemorySystemRAM + 1

const vramBytes = VRAMWidth * VRAMHeight * 2

// MemoryMap returns a list of available memory regions with sizes.
func (e *Emulator) MemoryMap() []emucore.MemoryRegion {
	return []emucore.MemoryRegion{
		{Type: emucore.MemorySystemRAM, Size: mainRAMSize},
		{Type: MemoryVRAM, Size: vramBytes},
	}
}

// ReadRegion returns a copy of the specified memory region.
func (e *Emulator) ReadRegion(regionType int) []byte {
	switch regionType {
	case emucore.MemorySystemRAM:
		out := make([]byte, mainRAMSize)
		copy(out, e.bus.ram[:])
		return out
	case MemoryVRAM:
		out := make([]byte, vramBytes)
		for i, p := range e.gpu.vram[:] {
			binary.LittleEndian.PutUint16(out[i*2:], p)
		}
		return out
	default:
		return nil
	}
}

// WriteRegion writes data to the specified memory region.
func (e *Emulator) WriteRegion(regionType int, data []byte) {
	switch regionType {
	case emucore.MemorySystemRAM:
		copy(e.bus.ram[:], data)
	case MemoryVRAM:
		for i := 0; i+1 < len(data) && i/2 < len(e.gpu.vram); i += 2 {
			e.gpu.vram[i/2] = binary.LittleEndian.Uint16(data[i:])
		}
	}
}

// Close releases any resources held by the emulator.
func (e *Emulator) Close() {}
