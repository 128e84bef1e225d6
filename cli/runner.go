// Package cli provides a command-line runner for the emulator.
// It replays a GPU trace in a window with debugging hotkeys.
package cli

import (
	"image"
	"image/color"
	"log"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"

	emubridge "github.com/user-none/emgpu/bridge/ebiten"
	"github.com/user-none/emgpu/emu"
	"github.com/user-none/emgpu/ui"
)

// Status bar layout.
const (
	statusBarHeight = 18
	messageDuration = 2 * time.Second
)

var (
	statusBarColor  = color.RGBA{0, 0, 0, 200}
	statusTextColor = color.RGBA{190, 190, 190, 255}
	messageColor    = color.RGBA{0, 220, 90, 255}
)

// Runner wraps an emulator for command-line mode.
// The emulator runs on a dedicated goroutine paced by the region frame rate.
// The Ebiten thread handles hotkeys and rendering from the shared state.
type Runner struct {
	emulator *emubridge.Emulator

	// Emulation goroutine control
	emuControl        *ui.EmuControl
	sharedFramebuffer *ui.SharedFramebuffer
	sharedGeometry    *ui.SharedGeometry
	sharedView        *ui.SharedView
	sharedStatus      *ui.SharedStatus
	emuDone           chan struct{}

	clipboardOnce sync.Once
	clipboardOK   bool

	message      string
	messageUntil time.Time
}

// NewRunner creates a new Runner wrapping the given emulator and starts
// emulation.
func NewRunner(e *emubridge.Emulator, view ui.View) *Runner {
	r := &Runner{
		emulator:          e,
		emuControl:        ui.NewEmuControl(),
		sharedFramebuffer: ui.NewSharedFramebuffer(),
		sharedGeometry:    &ui.SharedGeometry{},
		sharedView:        ui.NewSharedView(view),
		sharedStatus:      &ui.SharedStatus{},
		emuDone:           make(chan struct{}),
	}

	// Start emulation goroutine
	go r.emulationLoop()

	return r
}

// Close cleans up the runner's resources.
func (r *Runner) Close() {
	if r.emuControl != nil {
		r.emuControl.Stop()
		<-r.emuDone
	}
}

// emulationLoop runs on a dedicated goroutine. A GP1 protocol error
// stops emulation and is reported through EmuControl.
func (r *Runner) emulationLoop() {
	defer close(r.emuDone)
	defer func() {
		if v := recover(); v != nil {
			err, ok := v.(*emu.ControlPortError)
			if !ok {
				panic(v)
			}
			log.Printf("emulation stopped: %v", err)
			r.emuControl.Fail(err)
		}
	}()

	timing := r.emulator.GetTiming()
	frameTime := time.Duration(float64(time.Second) / float64(timing.FPS))
	lastFrameTime := time.Now()

	for {
		if !r.emuControl.CheckPause() {
			return
		}

		view := r.sharedView.Read()
		if view.ShowVRAM != r.emulator.ShowVRAM() {
			r.emulator.SetShowVRAM(view.ShowVRAM)
		}

		// Run one frame
		r.emulator.RunFrame()
		r.publishFrame(view.ShowVRAM)

		elapsed := time.Since(lastFrameTime)
		if sleepTime := frameTime - elapsed; sleepTime > time.Millisecond {
			time.Sleep(sleepTime)
		}
		lastFrameTime = time.Now()
	}
}

// publishFrame copies the finished frame into the shared buffers.
func (r *Runner) publishFrame(showVRAM bool) {
	r.sharedFramebuffer.Update(
		r.emulator.GetFramebuffer(),
		r.emulator.GetFramebufferStride(),
		r.emulator.GetActiveWidth(),
		r.emulator.GetActiveHeight(),
	)

	origin := image.Point{}
	if !showVRAM {
		origin = r.emulator.GPU().DisplayRect().Min
	}
	r.sharedGeometry.Update(r.emulator.DrawList().Vertices, origin)
	r.sharedStatus.Update(ui.CaptureStatus(r.emulator.Emulator))
}

// Update implements ebiten.Game.
func (r *Runner) Update() error {
	if err := r.emuControl.Err(); err != nil {
		return err
	}
	if !ebiten.IsFocused() {
		return nil
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	r.handleHotkeys()
	return nil
}

// handleHotkeys processes the debugging keys:
//
//	V    toggle full VRAM view
//	H    toggle geometry overlay
//	Tab  toggle status bar
//	C    copy a register dump to the clipboard
//	P    pause / resume
//	N    advance one frame while paused
//
// Escape quits.
func (r *Runner) handleHotkeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyV):
		r.sharedView.Update(func(v *ui.View) { v.ShowVRAM = !v.ShowVRAM })
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		r.sharedView.Update(func(v *ui.View) { v.ShowGeometry = !v.ShowGeometry })
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		r.sharedView.Update(func(v *ui.View) { v.ShowStatus = !v.ShowStatus })
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		r.copyRegisters()
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		if r.emuControl.IsPaused() {
			r.emuControl.RequestResume()
			r.showMessage("resumed")
		} else {
			r.emuControl.RequestPause()
			r.showMessage("paused")
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyN):
		r.emuControl.RequestStep()
	}
}

// copyRegisters writes the latest register dump to the system clipboard.
func (r *Runner) copyRegisters() {
	r.clipboardOnce.Do(func() {
		r.clipboardOK = clipboard.Init() == nil
	})
	if !r.clipboardOK {
		r.showMessage("clipboard unavailable")
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(r.sharedStatus.Read().Dump()))
	r.showMessage("registers copied")
}

func (r *Runner) showMessage(msg string) {
	r.message = msg
	r.messageUntil = time.Now().Add(messageDuration)
}

// Draw implements ebiten.Game.
func (r *Runner) Draw(screen *ebiten.Image) {
	pixels, stride, width, height := r.sharedFramebuffer.Read()
	if height == 0 {
		return
	}
	r.emulator.DrawCachedFramebuffer(screen, pixels, stride, width, height)

	view := r.sharedView.Read()
	if view.ShowGeometry {
		if verts, origin, ok := r.sharedGeometry.Read(); ok {
			r.emulator.DrawGeometry(screen, verts, origin, width, height)
		}
	}
	if view.ShowStatus {
		r.drawStatusBar(screen)
	}
}

// drawStatusBar draws a one line summary along the bottom of the window.
func (r *Runner) drawStatusBar(screen *ebiten.Image) {
	b := screen.Bounds()
	bar := screen.SubImage(image.Rect(b.Min.X, b.Max.Y-statusBarHeight, b.Max.X, b.Max.Y)).(*ebiten.Image)
	bar.Fill(statusBarColor)

	face := basicfont.Face7x13
	baseline := b.Max.Y - 5
	line := r.sharedStatus.Read().Line()
	text.Draw(screen, line, face, b.Min.X+4, baseline, statusTextColor)

	if r.message != "" && time.Now().Before(r.messageUntil) {
		w := text.BoundString(face, r.message).Dx()
		text.Draw(screen, r.message, face, b.Max.X-w-4, baseline, messageColor)
	}
}

// Layout implements ebiten.Game.
func (r *Runner) Layout(outsideWidth, outsideHeight int) (int, int) {
	return r.emulator.Layout(outsideWidth, outsideHeight)
}
