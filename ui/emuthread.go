package ui

import (
	"fmt"
	"image"
	"strings"
	"sync"
	"time"

	"github.com/user-none/emgpu/emu"
)

// SharedFramebuffer holds pixel data written by the emulation goroutine
// and read by Ebiten's Draw() method. Uses separate write and read buffers
// so the emu goroutine can write new data while Draw uses the read copy.
type SharedFramebuffer struct {
	mu          sync.Mutex
	writePixels []byte // Written by emu goroutine under lock
	readPixels  []byte // Snapshot copied on Read for safe external use
	stride      int
	width       int
	height      int
}

// NewSharedFramebuffer creates a framebuffer large enough for a full
// VRAM view.
func NewSharedFramebuffer() *SharedFramebuffer {
	return &SharedFramebuffer{
		writePixels: make([]byte, emu.VRAMWidth*emu.VRAMHeight*4),
		readPixels:  make([]byte, emu.VRAMWidth*emu.VRAMHeight*4),
	}
}

// Update copies framebuffer data from the emulation goroutine.
func (sf *SharedFramebuffer) Update(pixels []byte, stride, width, height int) {
	sf.mu.Lock()
	n := min(stride*height, len(sf.writePixels), len(pixels))
	copy(sf.writePixels[:n], pixels[:n])
	sf.stride = stride
	sf.width = width
	sf.height = height
	sf.mu.Unlock()
}

// Read returns a snapshot of the current framebuffer state.
// Copies the write buffer into the read buffer under the lock,
// then returns the read buffer which is safe to use without holding the lock.
func (sf *SharedFramebuffer) Read() (pixels []byte, stride, width, height int) {
	sf.mu.Lock()
	stride = sf.stride
	width = sf.width
	height = sf.height
	n := min(stride*height, len(sf.writePixels))
	if n > 0 {
		copy(sf.readPixels[:n], sf.writePixels[:n])
	}
	pixels = sf.readPixels
	sf.mu.Unlock()
	return
}

// SharedGeometry holds the vertex buffer of the last completed frame
// together with the VRAM position shown at the display's top-left.
type SharedGeometry struct {
	mu       sync.Mutex
	write    []emu.Vertex
	read     []emu.Vertex
	origin   image.Point
	hasFrame bool
}

// Update copies a frame's vertices from the emulation goroutine.
func (sg *SharedGeometry) Update(verts []emu.Vertex, origin image.Point) {
	sg.mu.Lock()
	sg.write = append(sg.write[:0], verts...)
	sg.origin = origin
	sg.hasFrame = true
	sg.mu.Unlock()
}

// Read returns a snapshot of the last frame's vertices.
func (sg *SharedGeometry) Read() (verts []emu.Vertex, origin image.Point, ok bool) {
	sg.mu.Lock()
	sg.read = append(sg.read[:0], sg.write...)
	verts, origin, ok = sg.read, sg.origin, sg.hasFrame
	sg.mu.Unlock()
	return
}

// View holds display toggles set on the Ebiten thread.
type View struct {
	ShowVRAM     bool // whole VRAM instead of the display area
	ShowGeometry bool // draw the vertex buffer over the framebuffer
	ShowStatus   bool // status bar
}

// SharedView passes View changes from the Ebiten thread to the emulation
// goroutine.
type SharedView struct {
	mu   sync.Mutex
	view View
}

// NewSharedView creates a SharedView with the given initial state.
func NewSharedView(v View) *SharedView {
	return &SharedView{view: v}
}

// Update applies f to the view under the lock.
func (sv *SharedView) Update(f func(*View)) {
	sv.mu.Lock()
	f(&sv.view)
	sv.mu.Unlock()
}

// Read returns the current view.
func (sv *SharedView) Read() View {
	sv.mu.Lock()
	v := sv.view
	sv.mu.Unlock()
	return v
}

// Status is a per-frame snapshot of GPU state for display.
type Status struct {
	GPUSTAT     uint32
	Frame       int
	Width       int
	Height      int
	DisplayMode uint32
	DrawMode    uint32
	DrawingArea emu.Rect
	OffsetX     int
	OffsetY     int
	Vertices    int
	TraceDone   bool
	Mismatches  int
}

// CaptureStatus snapshots e after a frame.
func CaptureStatus(e *emu.Emulator) Status {
	g := e.GPU()
	regs := g.Registers()
	ox, oy := regs.DrawingOffset()
	return Status{
		GPUSTAT:     g.Status(),
		Frame:       g.Timing().Frame,
		Width:       regs.HorizontalResolution(),
		Height:      regs.VerticalResolution(),
		DisplayMode: regs.DisplayMode(),
		DrawMode:    regs.DrawMode(),
		DrawingArea: regs.DrawingArea(),
		OffsetX:     ox,
		OffsetY:     oy,
		Vertices:    e.DrawList().Len(),
		TraceDone:   e.TraceDone(),
		Mismatches:  e.TraceMismatches(),
	}
}

// Line returns a one line summary for the status bar.
func (s Status) Line() string {
	trace := "playing"
	if s.TraceDone {
		trace = "done"
	}
	return fmt.Sprintf("frame %d  %dx%d  verts %d  trace %s  mismatches %d  GPUSTAT %08X",
		s.Frame, s.Width, s.Height, s.Vertices, trace, s.Mismatches, s.GPUSTAT)
}

// Dump returns a multi-line register listing.
func (s Status) Dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "GPUSTAT      %08X\n", s.GPUSTAT)
	fmt.Fprintf(&b, "frame        %d\n", s.Frame)
	fmt.Fprintf(&b, "display mode %06X (%dx%d)\n", s.DisplayMode, s.Width, s.Height)
	fmt.Fprintf(&b, "draw mode    %06X\n", s.DrawMode)
	fmt.Fprintf(&b, "drawing area (%d,%d)-(%d,%d)\n",
		s.DrawingArea.Left, s.DrawingArea.Top, s.DrawingArea.Right, s.DrawingArea.Bottom)
	fmt.Fprintf(&b, "offset       (%d,%d)\n", s.OffsetX, s.OffsetY)
	fmt.Fprintf(&b, "vertices     %d\n", s.Vertices)
	fmt.Fprintf(&b, "mismatches   %d\n", s.Mismatches)
	return b.String()
}

// SharedStatus passes Status snapshots from the emulation goroutine to
// the Ebiten thread.
type SharedStatus struct {
	mu     sync.Mutex
	status Status
}

// Update stores a new snapshot.
func (ss *SharedStatus) Update(s Status) {
	ss.mu.Lock()
	ss.status = s
	ss.mu.Unlock()
}

// Read returns the latest snapshot.
func (ss *SharedStatus) Read() Status {
	ss.mu.Lock()
	s := ss.status
	ss.mu.Unlock()
	return s
}

// EmuControl manages pause/resume/stop coordination between
// the Ebiten thread and the emulation goroutine.
type EmuControl struct {
	mu       sync.Mutex
	pauseReq bool
	paused   bool
	running  bool
	stopReq  bool
	stepReq  bool
	err      error
	ackCh    chan struct{}
}

// NewEmuControl creates a new emulation control.
func NewEmuControl() *EmuControl {
	return &EmuControl{
		running: true,
		ackCh:   make(chan struct{}, 1),
	}
}

// RequestPause asks the emulation goroutine to pause and blocks
// until it acknowledges the pause.
func (ec *EmuControl) RequestPause() {
	ec.mu.Lock()
	if ec.paused || ec.pauseReq || !ec.running {
		ec.mu.Unlock()
		return
	}
	ec.pauseReq = true
	ec.mu.Unlock()

	// Wait for emu goroutine to acknowledge
	<-ec.ackCh
}

// RequestResume tells the emulation goroutine to resume.
func (ec *EmuControl) RequestResume() {
	ec.mu.Lock()
	ec.pauseReq = false
	ec.paused = false
	ec.mu.Unlock()
}

// RequestStep lets a paused emulation goroutine run exactly one frame.
func (ec *EmuControl) RequestStep() {
	ec.mu.Lock()
	if ec.paused {
		ec.stepReq = true
	}
	ec.mu.Unlock()
}

// CheckPause is called by the emulation goroutine between frames.
// If a pause has been requested, it sends an acknowledgment and
// spins until resumed, stepped or stopped. Returns false if the
// goroutine should exit.
func (ec *EmuControl) CheckPause() bool {
	ec.mu.Lock()
	if !ec.running || ec.stopReq {
		ec.mu.Unlock()
		return false
	}
	if !ec.pauseReq {
		ec.mu.Unlock()
		return true
	}

	// Acknowledge pause request once
	ack := !ec.paused
	ec.paused = true
	ec.mu.Unlock()

	if ack {
		// Non-blocking send of ack (buffer size 1)
		select {
		case ec.ackCh <- struct{}{}:
		default:
		}
	}

	// Spin-wait until resumed, stepped or stopped
	for {
		ec.mu.Lock()
		if !ec.running || ec.stopReq {
			ec.mu.Unlock()
			return false
		}
		if !ec.pauseReq {
			ec.paused = false
			ec.mu.Unlock()
			return true
		}
		if ec.stepReq {
			ec.stepReq = false
			ec.mu.Unlock()
			return true
		}
		ec.mu.Unlock()
		time.Sleep(10 * time.Millisecond)
	}
}

// Fail records the error that stopped the emulation goroutine.
func (ec *EmuControl) Fail(err error) {
	ec.mu.Lock()
	ec.err = err
	ec.running = false
	ec.mu.Unlock()
}

// Err returns the error passed to Fail, if any.
func (ec *EmuControl) Err() error {
	ec.mu.Lock()
	err := ec.err
	ec.mu.Unlock()
	return err
}

// Stop signals the emulation goroutine to exit.
func (ec *EmuControl) Stop() {
	ec.mu.Lock()
	ec.running = false
	ec.stopReq = true
	// Also clear pause so CheckPause unblocks
	ec.pauseReq = false
	ec.mu.Unlock()
}

// ShouldRun returns true if the goroutine should continue running.
func (ec *EmuControl) ShouldRun() bool {
	ec.mu.Lock()
	r := ec.running && !ec.stopReq
	ec.mu.Unlock()
	return r
}

// IsPaused returns true if the emulation goroutine is currently paused.
func (ec *EmuControl) IsPaused() bool {
	ec.mu.Lock()
	p := ec.paused
	ec.mu.Unlock()
	return p
}
