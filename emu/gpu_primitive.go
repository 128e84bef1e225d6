package emu

// fillRectangle runs GP0(02h). The fill ignores the drawing area, the
// drawing offset and the mask bit settings.
func (g *GPU) fillRectangle(b *commandBuffer) {
	pos, size := b.get(1), b.get(2)

	startX := int(pos & 0x3F0)
	startY := int((pos >> 16) & 0x1FF)
	endX := min(VRAMWidth, startX+int(((size&0x3FF)+0x0F)&^0x0F))
	endY := min(VRAMHeight, startY+int((size>>16)&0x1FF))

	color := to15Bit(colorFromWord(b.get(0)))
	for y := startY; y < endY; y++ {
		row := g.vram[y*VRAMWidth : (y+1)*VRAMWidth]
		for x := startX; x < endX; x++ {
			row[x] = color
		}
	}
}

// position decodes a packed 0xYYYYXXXX vertex word and applies the
// drawing offset.
func (g *GPU) position(w uint32) (x, y int) {
	ox, oy := g.regs.DrawingOffset()
	x = int(signExtend11(w&0x7FF)) + ox
	y = int(signExtend11((w>>16)&0x7FF)) + oy
	return x, y
}

// baseVertex returns a vertex carrying the register snapshot every
// primitive needs.
func (g *GPU) baseVertex(t PrimitiveType, flags VertexFlags) Vertex {
	return Vertex{
		Type:          t,
		Flags:         flags,
		TextureWindow: g.regs.TextureWindow(),
		Mask:          g.regs.MaskSetting(),
	}
}

// shadingFlags builds the flag bits shared by all primitive kinds.
func (g *GPU) shadingFlags(op uint8, blend int) VertexFlags {
	var f VertexFlags
	if op&0x02 != 0 {
		f |= FlagSemiTransparent
	}
	if g.regs.Dithering() {
		f |= FlagDithered
	}
	f |= VertexFlags(blend&0x03) << flagBlendShift
	return f
}

// drawPolygonCommand runs GP0(20h-3Fh). A quad becomes the triangles
// 0,1,2 and 1,2,3.
//
// Word order per vertex: [color if gouraud and not first] xy [texcoord].
// The first texcoord word carries the CLUT in its high half, the second
// carries the texture page.
func (g *GPU) drawPolygonCommand(b *commandBuffer) {
	op := b.opcode()
	n := polygonVertexCount(op)
	raw := op&0x01 != 0
	textured := op&0x04 != 0
	gouraud := op&0x10 != 0

	var v [4]Vertex
	var palette, texpage uint32
	leading := colorFromWord(b.get(0))

	ptr := 1
	for i := 0; i < n; i++ {
		if !raw && (!gouraud || i == 0) {
			v[i].Color = leading
		}
		v[i].X, v[i].Y = g.position(b.get(ptr))
		ptr++
		if textured {
			t := b.get(ptr)
			ptr++
			switch i {
			case 0:
				palette = t >> 16
			case 1:
				texpage = t >> 16
			}
			v[i].U = int(t & 0xFF)
			v[i].V = int((t >> 8) & 0xFF)
		}
		if gouraud && i < n-1 {
			v[i+1].Color = colorFromWord(b.get(ptr))
			ptr++
		}
	}

	blend := g.regs.SemiTransparency()
	if textured {
		blend = int((texpage >> 5) & 0x03)
	}
	flags := g.shadingFlags(op, blend)
	if raw {
		flags |= FlagRawTexture
	}
	if gouraud {
		flags |= FlagGouraud
	}

	tw, mask := g.regs.TextureWindow(), g.regs.MaskSetting()
	for i := 0; i < n; i++ {
		v[i].Type = PrimitivePolygon
		v[i].Flags = flags
		v[i].TextureWindow = tw
		v[i].Mask = mask
		if textured {
			v[i].ClutX = int(palette&0x3F) * 16
			v[i].ClutY = int((palette >> 6) & 0x1FF)
			v[i].PageX = int(texpage&0x0F) * 64
			v[i].PageY = int((texpage>>4)&0x01) * 256
			v[i].BitDepth = textureBits(int((texpage >> 7) & 0x03))
		}
	}

	g.emitTriangle([3]Vertex{v[0], v[1], v[2]})
	if n == 4 {
		g.emitTriangle([3]Vertex{v[1], v[2], v[3]})
	}
}

// drawLineCommand runs GP0(40h-5Fh). A polyline stops at the first
// terminator word found where a segment would start, or after
// maxPolylineSegments segments.
//
// Word order: xy0, then per segment [color if gouraud] xy.
func (g *GPU) drawLineCommand(b *commandBuffer) {
	op := b.opcode()
	gouraud := op&0x10 != 0
	segments := 1
	if op&0x08 != 0 {
		segments = maxPolylineSegments
	}

	flags := g.shadingFlags(op, g.regs.SemiTransparency())
	if gouraud {
		flags |= FlagGouraud
	}
	leading := colorFromWord(b.get(0))

	var p [2]Vertex
	ptr := 1
	for i := 0; i < segments; i++ {
		if !b.has(ptr) || isPolylineTerminator(b.get(ptr)) {
			break
		}
		if i == 0 {
			p[0] = g.baseVertex(PrimitiveLine, flags)
			p[0].X, p[0].Y = g.position(b.get(ptr))
			p[0].Color = leading
			ptr++
		} else {
			p[0] = p[1]
		}

		p[1] = g.baseVertex(PrimitiveLine, flags)
		p[1].Color = leading
		if gouraud {
			if !b.has(ptr) {
				break
			}
			p[1].Color = colorFromWord(b.get(ptr))
			ptr++
		}
		if !b.has(ptr) || isPolylineTerminator(b.get(ptr)) {
			break
		}
		p[1].X, p[1].Y = g.position(b.get(ptr))
		ptr++

		g.emitLine(p)
	}
}

// drawRectangleCommand runs GP0(60h-7Fh). The texture page and depth come
// from the draw mode register, not the command.
//
// Word order: color, xy, [texcoord+CLUT], [size if variable].
func (g *GPU) drawRectangleCommand(b *commandBuffer) {
	op := b.opcode()
	textured := op&0x04 != 0

	flags := g.shadingFlags(op, g.regs.SemiTransparency())
	if op&0x01 != 0 {
		flags |= FlagRawTexture
	}

	q := Quad{
		Color:         colorFromWord(b.get(0)),
		Flags:         flags,
		TextureWindow: g.regs.TextureWindow(),
		Mask:          g.regs.MaskSetting(),
	}
	q.X, q.Y = g.position(b.get(1))

	ptr := 2
	if textured {
		t := b.get(ptr)
		ptr++
		q.U = int(t & 0xFF)
		q.V = int((t >> 8) & 0xFF)
		q.ClutX = int((t>>16)&0x3F) * 16
		q.ClutY = int((t >> 22) & 0x1FF)
		q.PageX, q.PageY = g.regs.TexturePage()
		q.BitDepth = g.regs.TextureDepth()
	}

	if s := rectangleSize(op); s != 0 {
		q.Width, q.Height = s, s
	} else {
		size := b.get(ptr)
		q.Width = int(signExtend11(size & 0x7FF))
		q.Height = int(signExtend11((size >> 16) & 0x7FF))
	}

	g.emitRectangle(q)
}

// emitTriangle hands a triangle to the enabled rendering paths.
func (g *GPU) emitTriangle(t [3]Vertex) {
	if g.opts.HardwareRendering {
		g.drawList.push(t[:]...)
	}
	if g.opts.SoftwareRendering && g.backend != nil {
		g.backend.DrawTriangle(g, t)
	}
}

func (g *GPU) emitLine(l [2]Vertex) {
	if g.opts.HardwareRendering {
		g.drawList.push(l[:]...)
	}
	if g.opts.SoftwareRendering && g.backend != nil {
		g.backend.DrawLine(g, l)
	}
}

// emitRectangle expands the quad into two triangles for the draw list and
// passes the undivided quad to the software backend.
func (g *GPU) emitRectangle(q Quad) {
	if g.opts.HardwareRendering {
		corners := quadCorners(q)
		for _, i := range [6]int{0, 1, 2, 1, 2, 3} {
			g.drawList.push(corners[i])
		}
	}
	if g.opts.SoftwareRendering && g.backend != nil {
		g.backend.DrawRectangle(g, q)
	}
}

// quadCorners returns the rectangle corners in the order top-left,
// top-right, bottom-left, bottom-right with matching texture coordinates.
func quadCorners(q Quad) [4]Vertex {
	var c [4]Vertex
	for i := range c {
		dx := (i & 1) * q.Width
		dy := (i >> 1) * q.Height
		c[i] = Vertex{
			Type:          PrimitiveRectangle,
			X:             q.X + dx,
			Y:             q.Y + dy,
			Color:         q.Color,
			U:             q.U + dx,
			V:             q.V + dy,
			BitDepth:      q.BitDepth,
			ClutX:         q.ClutX,
			ClutY:         q.ClutY,
			PageX:         q.PageX,
			PageY:         q.PageY,
			Flags:         q.Flags,
			TextureWindow: q.TextureWindow,
			Mask:          q.Mask,
		}
	}
	return c
}
