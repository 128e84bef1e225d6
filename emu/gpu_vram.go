package emu

// Copy rectangles are normalized the same way for all three transfer
// commands: the position wraps and a zero size means the full span.
func copyStartX(x uint32) int { return int(x & 0x3FF) }
func copyStartY(y uint32) int { return int(y & 0x1FF) }
func copyWidth(w uint32) int  { return int((w-1)&0x3FF) + 1 }
func copyHeight(h uint32) int { return int((h-1)&0x1FF) + 1 }

// vramCursor walks a transfer rectangle in raster order. End coordinates
// may exceed VRAM; accesses wrap.
type vramCursor struct {
	startX, startY int
	endX, endY     int
	x, y           int
	active         bool
}

func (c *vramCursor) begin(pos, size uint32) {
	c.startX = copyStartX(pos & 0xFFFF)
	c.startY = copyStartY(pos >> 16)
	c.endX = c.startX + copyWidth(size&0xFFFF)
	c.endY = c.startY + copyHeight(size>>16)
	c.x = c.startX
	c.y = c.startY
	c.active = true
}

// advance moves to the next cell and deactivates past the last row.
func (c *vramCursor) advance() {
	c.x++
	if c.x >= c.endX {
		c.x = c.startX
		c.y++
		if c.y >= c.endY {
			c.active = false
		}
	}
}

// checkCopyHeader logs a non-zero low 24 bits in a copy command word.
func (g *GPU) checkCopyHeader(name string, word uint32) {
	if word&0xFFFFFF != 0 {
		g.logger.Printf("%s: suspicious command word 0x%08x", name, word)
	}
}

// beginCPUToVRAM latches the GP0(A0h) destination rectangle. Data words
// follow through uploadWord.
func (g *GPU) beginCPUToVRAM(b *commandBuffer) {
	g.checkCopyHeader("copy cpu->vram", b.get(0))
	g.upload.begin(b.get(1), b.get(2))
}

// uploadWord stores the two pixels of one data word and reports whether
// the transfer finished. A pixel arriving after the last cell is dropped.
func (g *GPU) uploadWord(word uint32) bool {
	c := &g.upload
	for _, px := range [2]uint16{uint16(word), uint16(word >> 16)} {
		if !c.active {
			break
		}
		g.maskedWrite(c.x, c.y, px)
		c.advance()
	}
	return !c.active
}

// beginVRAMToCPU latches the GP0(C0h) source rectangle and switches
// GPUREAD to transfer mode.
func (g *GPU) beginVRAMToCPU(b *commandBuffer) {
	g.checkCopyHeader("copy vram->cpu", b.get(0))
	g.download.begin(b.get(1), b.get(2))
	g.readMode = readVRAM
}

// downloadWord packs the next two source pixels, low pixel first. Reading
// past the end of the rectangle yields zero for the missing half.
func (g *GPU) downloadWord() uint32 {
	c := &g.download
	var w uint32
	for i := 0; i < 2 && c.active; i++ {
		w |= uint32(g.Pixel(c.x, c.y)) << (16 * i)
		c.advance()
	}
	return w
}

// copyVRAMToVRAM runs a GP0(80h) copy in one go. Source and destination
// wrap independently and each destination cell goes through the mask check.
func (g *GPU) copyVRAMToVRAM(b *commandBuffer) {
	g.checkCopyHeader("copy vram->vram", b.get(0))

	src, dst, size := b.get(1), b.get(2), b.get(3)
	srcX := copyStartX(src & 0xFFFF)
	srcY := copyStartY(src >> 16)
	dstX := copyStartX(dst & 0xFFFF)
	dstY := copyStartY(dst >> 16)
	width := copyWidth(size & 0xFFFF)
	height := copyHeight(size >> 16)

	if width > VRAMWidth || height > VRAMHeight {
		g.logger.Printf("copy vram->vram: suspicious size %dx%d", width, height)
		return
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.maskedWrite(dstX+x, dstY+y, g.Pixel(srcX+x, srcY+y))
		}
	}
}
