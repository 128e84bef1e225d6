// Package ebiten provides an Ebiten-specific wrapper for the emulator.
package ebiten

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/user-none/emgpu/emu"
)

// Emulator wraps emu.Emulator with Ebiten-specific functionality. Besides
// blitting the rendered framebuffer it acts as the hardware geometry path,
// drawing the per-frame vertex buffer with DrawTriangles.
type Emulator struct {
	*emu.Emulator

	offscreen *ebiten.Image           // Offscreen buffer for native resolution rendering
	geometry  *ebiten.Image           // Primitives of the last frame, display sized
	white     *ebiten.Image           // 1x1 source for untextured triangles
	drawOpts  ebiten.DrawImageOptions // Pre-allocated draw options to avoid per-frame allocation
	triOpts   ebiten.DrawTrianglesOptions

	vertices []ebiten.Vertex
	indices  []uint16
}

// NewEmulator creates a new emulator instance with Ebiten rendering.
func NewEmulator(trace *emu.Trace, region emu.Region) *Emulator {
	src := ebiten.NewImage(3, 3)
	src.Fill(color.White)

	return &Emulator{
		Emulator: emu.NewEmulator(trace, region),
		white:    src.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image),
		vertices: make([]ebiten.Vertex, 0, 4096),
		indices:  make([]uint16, 0, 6144),
	}
}

// Close cleans up the emulator resources.
func (e *Emulator) Close() {
	e.Emulator.Close()
}

// Layout implements ebiten.Game.
func (e *Emulator) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// fit returns the scale and offset that fit a width x height image into
// screen while preserving aspect ratio.
func fit(screen *ebiten.Image, width, height int) (scale, offsetX, offsetY float64) {
	screenW, screenH := screen.Bounds().Dx(), screen.Bounds().Dy()
	nativeW := float64(width)
	nativeH := float64(height)

	scaleX := float64(screenW) / nativeW
	scaleY := float64(screenH) / nativeH
	scale = scaleX
	if scaleY < scaleX {
		scale = scaleY
	}

	offsetX = (float64(screenW) - nativeW*scale) / 2
	offsetY = (float64(screenH) - nativeH*scale) / 2
	return scale, offsetX, offsetY
}

// drawScaled draws img onto screen with nearest filtering at the fitted
// scale.
func (e *Emulator) drawScaled(screen, img *ebiten.Image, width, height int) {
	scale, offsetX, offsetY := fit(screen, width, height)
	e.drawOpts = ebiten.DrawImageOptions{}
	e.drawOpts.GeoM.Scale(scale, scale)
	e.drawOpts.GeoM.Translate(offsetX, offsetY)
	e.drawOpts.Filter = ebiten.FilterNearest
	screen.DrawImage(img, &e.drawOpts)
}

// DrawCachedFramebuffer renders pre-cached pixel data to the screen.
// The emulation goroutine writes pixels to a shared framebuffer, and the
// Ebiten Draw() thread renders the active width x height area of it.
func (e *Emulator) DrawCachedFramebuffer(screen *ebiten.Image, pixels []byte, stride, width, height int) {
	if width == 0 || height == 0 || stride == 0 {
		return
	}

	requiredLen := stride * height
	if len(pixels) < requiredLen {
		return
	}

	// Rows keep the full stride; the active area is a sub-image
	rowPixels := stride / 4
	if e.offscreen == nil || e.offscreen.Bounds().Dx() != rowPixels || e.offscreen.Bounds().Dy() != height {
		e.offscreen = ebiten.NewImage(rowPixels, height)
	}
	e.offscreen.WritePixels(pixels[:requiredLen])

	active := e.offscreen.SubImage(image.Rect(0, 0, min(width, rowPixels), height)).(*ebiten.Image)
	e.drawScaled(screen, active, width, height)
}

// DrawGeometry rasterizes a frame's vertex buffer over the framebuffer.
// origin is the VRAM position shown at the top-left of the display.
// Textures are not sampled; textured primitives use their modulation
// color.
func (e *Emulator) DrawGeometry(screen *ebiten.Image, verts []emu.Vertex, origin image.Point, width, height int) {
	if width == 0 || height == 0 || len(verts) == 0 {
		return
	}
	if e.geometry == nil || e.geometry.Bounds().Dx() != width || e.geometry.Bounds().Dy() != height {
		e.geometry = ebiten.NewImage(width, height)
	}
	e.geometry.Clear()

	ox, oy := float32(origin.X), float32(origin.Y)
	for i := 0; i < len(verts); {
		if len(e.vertices)+4 > math.MaxUint16 {
			e.flush()
		}
		if verts[i].Type == emu.PrimitiveLine {
			if i+1 >= len(verts) {
				break
			}
			e.appendLine(verts[i], verts[i+1], ox, oy)
			i += 2
			continue
		}
		if i+2 >= len(verts) {
			break
		}
		e.appendTriangle(verts[i:i+3], ox, oy)
		i += 3
	}
	e.flush()

	e.drawScaled(screen, e.geometry, width, height)
}

func (e *Emulator) flush() {
	if len(e.indices) > 0 {
		e.geometry.DrawTriangles(e.vertices, e.indices, e.white, &e.triOpts)
	}
	e.vertices = e.vertices[:0]
	e.indices = e.indices[:0]
}

func (e *Emulator) appendTriangle(tri []emu.Vertex, ox, oy float32) {
	base := uint16(len(e.vertices))
	for _, v := range tri {
		e.vertices = append(e.vertices, ebitenVertex(v, float32(v.X)-ox, float32(v.Y)-oy))
	}
	e.indices = append(e.indices, base, base+1, base+2)
}

// appendLine expands a line into a one pixel wide quad.
func (e *Emulator) appendLine(a, b emu.Vertex, ox, oy float32) {
	ax, ay := float32(a.X)-ox+0.5, float32(a.Y)-oy+0.5
	bx, by := float32(b.X)-ox+0.5, float32(b.Y)-oy+0.5

	dx, dy := bx-ax, by-ay
	length := float32(math.Hypot(float64(dx), float64(dy)))
	nx, ny := float32(0), float32(0.5)
	if length > 0 {
		nx, ny = -dy/length*0.5, dx/length*0.5
	}

	base := uint16(len(e.vertices))
	e.vertices = append(e.vertices,
		ebitenVertex(a, ax+nx, ay+ny),
		ebitenVertex(a, ax-nx, ay-ny),
		ebitenVertex(b, bx+nx, by+ny),
		ebitenVertex(b, bx-nx, by-ny),
	)
	e.indices = append(e.indices, base, base+1, base+2, base+1, base+2, base+3)
}

// ebitenVertex converts a GPU vertex at the given destination position.
// Texture modulation treats 0x80 as full intensity.
func ebitenVertex(v emu.Vertex, x, y float32) ebiten.Vertex {
	r, g, b := float32(v.Color.R)/255, float32(v.Color.G)/255, float32(v.Color.B)/255
	if v.BitDepth != 0 {
		if v.Flags&emu.FlagRawTexture != 0 {
			r, g, b = 1, 1, 1
		} else {
			r, g, b = min(1, r*2), min(1, g*2), min(1, b*2)
		}
	}
	a := float32(1)
	if v.Flags&emu.FlagSemiTransparent != 0 {
		a = 0.5
	}
	return ebiten.Vertex{
		DstX:   x,
		DstY:   y,
		SrcX:   1,
		SrcY:   1,
		ColorR: r,
		ColorG: g,
		ColorB: b,
		ColorA: a,
	}
}
