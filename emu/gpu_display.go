package emu

import "image"

// expand5 widens a 5-bit channel to 8 bits, replicating the top bits.
func expand5(c uint16) uint8 {
	c &= 0x1F
	return uint8(c<<3 | c>>2)
}

// RGB15 converts a VRAM cell to 8-bit channels. The mask bit is ignored.
func RGB15(p uint16) (r, g, b uint8) {
	return expand5(p), expand5(p >> 5), expand5(p >> 10)
}

// DisplayRect returns the VRAM area scanned out by the display, using
// the resolution selected by GP1(08h). The rectangle may extend past
// VRAM; rendering wraps.
func (g *GPU) DisplayRect() image.Rectangle {
	x, y := g.regs.DisplayStart()
	return image.Rect(x, y, x+g.regs.HorizontalResolution(), y+g.regs.VerticalResolution())
}

// vramByte returns byte i of a VRAM row viewed as little-endian bytes.
func (g *GPU) vramByte(y, i int) uint8 {
	p := g.Pixel(i>>1, y)
	if i&1 != 0 {
		return uint8(p >> 8)
	}
	return uint8(p)
}

// RenderDisplay draws the display area into dst, which must be at least
// DisplayRect's size. In 24-bit mode each row is read as packed RGB888
// bytes starting at the display start X.
func (g *GPU) RenderDisplay(dst *image.RGBA) {
	area := g.DisplayRect()
	w, h := area.Dx(), area.Dy()
	depth24 := g.regs.Is24Bit()

	for y := 0; y < h; y++ {
		row := dst.Pix[y*dst.Stride:]
		vy := area.Min.Y + y
		for x := 0; x < w; x++ {
			var r, gr, b uint8
			if depth24 {
				base := area.Min.X*2 + x*3
				r = g.vramByte(vy, base)
				gr = g.vramByte(vy, base+1)
				b = g.vramByte(vy, base+2)
			} else {
				r, gr, b = RGB15(g.Pixel(area.Min.X+x, vy))
			}
			o := x * 4
			row[o] = r
			row[o+1] = gr
			row[o+2] = b
			row[o+3] = 0xFF
		}
	}
}

// RenderVRAM draws the whole 1024x512 VRAM as 15-bit pixels into dst.
func (g *GPU) RenderVRAM(dst *image.RGBA) {
	for y := 0; y < VRAMHeight; y++ {
		row := dst.Pix[y*dst.Stride:]
		src := g.vram[y*VRAMWidth : (y+1)*VRAMWidth]
		for x, p := range src {
			r, gr, b := RGB15(p)
			o := x * 4
			row[o] = r
			row[o+1] = gr
			row[o+2] = b
			row[o+3] = 0xFF
		}
	}
}
