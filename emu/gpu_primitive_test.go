package emu

import "testing"

func TestPrimitive_ColorTruncation(t *testing.T) {
	g := makeTestGPU()
	for _, c := range []uint32{0x000000, 0xFFFFFF, 0x0000FF, 0x00FF00, 0xFF0000, 0x123456, 0x07F80F, 0x818283} {
		writeGP0(g, 0x02000000|c, xy(0, 0), xy(16, 1))
		r, gr, b := c&0xFF, (c>>8)&0xFF, (c>>16)&0xFF
		want := uint16(r>>3) | uint16(gr>>3)<<5 | uint16(b>>3)<<10
		if got := g.Pixel(0, 0); got != want {
			t.Errorf("color 0x%06X: expected 0x%04X, got 0x%04X", c, want, got)
		}
	}
}

func TestPrimitive_FillRectangleIgnoresMask(t *testing.T) {
	g := makeTestGPU()
	for x := 0; x < 16; x++ {
		g.vram[vramIndex(x, 0)] = 0x8000
	}
	writeGP0(g, 0xE6000003) // set and check mask
	writeGP0(g, 0x020000FF, xy(0, 0), xy(16, 1))

	for x := 0; x < 16; x++ {
		if got := g.Pixel(x, 0); got != 0x001F {
			t.Fatalf("expected (%d,0) overwritten with 0x001F, got 0x%04X", x, got)
		}
	}
}

func TestPrimitive_FillRectangleAlignment(t *testing.T) {
	g := makeTestGPU()
	// X start is rounded down to 16, width rounded up to 16
	writeGP0(g, 0x02FFFFFF, xy(0x25, 3), xy(1, 1))
	if g.Pixel(0x20, 3) == 0 || g.Pixel(0x2F, 3) == 0 {
		t.Error("expected cells 0x20-0x2F filled")
	}
	if g.Pixel(0x1F, 3) != 0 || g.Pixel(0x30, 3) != 0 {
		t.Error("expected fill limited to one 16-pixel column group")
	}
}

func TestPrimitive_FillRectangleClipped(t *testing.T) {
	g := makeTestGPU()
	writeGP0(g, 0x02FFFFFF, xy(1008, 510), xy(64, 8))
	if g.Pixel(1023, 511) == 0 {
		t.Error("expected bottom-right cell filled")
	}
	if g.Pixel(0, 0) != 0 || g.Pixel(1008, 0) != 0 {
		t.Error("expected fill not to wrap")
	}
}

func TestPrimitive_PolygonDrawingOffset(t *testing.T) {
	g := makeTestGPU()
	dx, dy := -5, 10
	g.WriteGP0(0xE5000000 | uint32(dx)&0x7FF | (uint32(dy)&0x7FF)<<11)

	raw := [][2]int{{100, 50}, {-3, 7}, {1023, -1024}}
	writeGP0(g, 0x20112233, xy(raw[0][0], raw[0][1]), xy(raw[1][0], raw[1][1]), xy(raw[2][0], raw[2][1]))

	v := g.DrawList().Vertices
	if len(v) != 3 {
		t.Fatalf("expected 3 vertices, got %d", len(v))
	}
	for i, p := range raw {
		if v[i].X != p[0]+dx || v[i].Y != p[1]+dy {
			t.Errorf("vertex %d: expected (%d,%d), got (%d,%d)", i, p[0]+dx, p[1]+dy, v[i].X, v[i].Y)
		}
		if v[i].Color != (Color{R: 0x33, G: 0x22, B: 0x11}) {
			t.Errorf("vertex %d: expected leading color, got %+v", i, v[i].Color)
		}
		if v[i].Type != PrimitivePolygon {
			t.Errorf("vertex %d: expected polygon type", i)
		}
	}
}

func TestPrimitive_PositionSignExtension(t *testing.T) {
	g := makeTestGPU()
	// Bits above the 11-bit field are ignored
	writeGP0(g, 0x20FFFFFF, 0xF800F800|xy(0x400, 0x3FF), xy(0, 0), xy(0, 0))
	v := g.DrawList().Vertices[0]
	if v.X != -1024 || v.Y != 1023 {
		t.Errorf("expected (-1024,1023), got (%d,%d)", v.X, v.Y)
	}
}

func TestPrimitive_QuadSplitsIntoTriangles(t *testing.T) {
	g := makeTestGPU()
	writeGP0(g, 0x28FFFFFF, xy(0, 0), xy(10, 0), xy(0, 10), xy(10, 10))

	v := g.DrawList().Vertices
	if len(v) != 6 {
		t.Fatalf("expected 6 vertices, got %d", len(v))
	}
	want := [6][2]int{{0, 0}, {10, 0}, {0, 10}, {10, 0}, {0, 10}, {10, 10}}
	for i, w := range want {
		if v[i].X != w[0] || v[i].Y != w[1] {
			t.Errorf("vertex %d: expected (%d,%d), got (%d,%d)", i, w[0], w[1], v[i].X, v[i].Y)
		}
	}
}

func TestPrimitive_GouraudTexturedQuad(t *testing.T) {
	g := makeTestGPU()

	palette := uint32(2 | 5<<6)                // CLUT (32, 5)
	texpage := uint32(3 | 1<<4 | 2<<5 | 1<<7) // page (192,256), blend 2, 8-bit
	writeGP0(g,
		0x3C000001, xy(0, 0), palette<<16|0x0201,
		0x00000002, xy(8, 0), texpage<<16|0x0403,
		0x00000003, xy(0, 8), 0x0605,
		0x00000004, xy(8, 8), 0x0807,
	)

	v := g.DrawList().Vertices
	if len(v) != 6 {
		t.Fatalf("expected 6 vertices, got %d", len(v))
	}
	for i, want := range []uint8{1, 2, 3, 2, 3, 4} {
		if v[i].Color.R != want {
			t.Errorf("vertex %d: expected red %d, got %d", i, want, v[i].Color.R)
		}
	}
	for i, want := range [][2]int{{1, 2}, {3, 4}, {5, 6}, {3, 4}, {5, 6}, {7, 8}} {
		if v[i].U != want[0] || v[i].V != want[1] {
			t.Errorf("vertex %d: expected uv (%d,%d), got (%d,%d)", i, want[0], want[1], v[i].U, v[i].V)
		}
	}

	p := v[5]
	if p.ClutX != 32 || p.ClutY != 5 {
		t.Errorf("expected CLUT (32,5), got (%d,%d)", p.ClutX, p.ClutY)
	}
	if p.PageX != 192 || p.PageY != 256 {
		t.Errorf("expected page (192,256), got (%d,%d)", p.PageX, p.PageY)
	}
	if p.BitDepth != 8 {
		t.Errorf("expected 8-bit texture, got %d", p.BitDepth)
	}
	if p.Flags&FlagGouraud == 0 {
		t.Error("expected gouraud flag")
	}
	if p.Flags&(FlagSemiTransparent|FlagRawTexture) != 0 {
		t.Errorf("unexpected flags 0x%X", p.Flags)
	}
	if p.Flags.BlendMode() != 2 {
		t.Errorf("expected blend mode 2 from texpage, got %d", p.Flags.BlendMode())
	}
}

func TestPrimitive_RawTextureDropsColor(t *testing.T) {
	g := makeTestGPU()
	writeGP0(g, 0x25FFFFFF, xy(0, 0), 0, xy(8, 0), 0, xy(0, 8), 0)

	v := g.DrawList().Vertices
	if len(v) != 3 {
		t.Fatalf("expected 3 vertices, got %d", len(v))
	}
	if v[0].Color != (Color{}) {
		t.Errorf("expected no color on raw textured vertex, got %+v", v[0].Color)
	}
	if v[0].Flags&FlagRawTexture == 0 {
		t.Error("expected raw texture flag")
	}
}

func TestPrimitive_VertexSnapshot(t *testing.T) {
	g := makeTestGPU()
	writeGP0(g, 0xE2000000|0x1F, 0xE6000001)
	writeGP0(g, 0x20FFFFFF, xy(0, 0), xy(1, 0), xy(0, 1))
	writeGP0(g, 0xE2000000, 0xE6000000)

	v := g.DrawList().Vertices[0]
	if v.TextureWindow.MaskX != 0x1F {
		t.Errorf("expected texture window snapshot, got %+v", v.TextureWindow)
	}
	if !v.Mask.SetMask {
		t.Error("expected mask snapshot with SetMask")
	}
}

func TestPrimitive_DitherAndSemiTransparency(t *testing.T) {
	g := makeTestGPU()
	writeGP0(g, 0xE1000000|1<<9|3<<5)
	writeGP0(g, 0x22FFFFFF, xy(0, 0), xy(1, 0), xy(0, 1))

	f := g.DrawList().Vertices[0].Flags
	if f&FlagDithered == 0 || f&FlagSemiTransparent == 0 {
		t.Errorf("expected dithered semi-transparent flags, got 0x%X", f)
	}
	if f.BlendMode() != 3 {
		t.Errorf("expected blend mode 3 from draw mode, got %d", f.BlendMode())
	}
}

func TestPrimitive_Line(t *testing.T) {
	g := makeTestGPU()
	m := &mockBackend{}
	g.SetBackend(m)
	g.Reconfigure(Options{SoftwareRendering: true, HardwareRendering: true})
	writeGP0(g, 0xE5000000|uint32(4)|uint32(2)<<11)

	writeGP0(g, 0x40FF0000, xy(1, 1), xy(-20, 30))

	v := g.DrawList().Vertices
	if len(v) != 2 {
		t.Fatalf("expected 2 vertices, got %d", len(v))
	}
	if v[0].X != 5 || v[0].Y != 3 || v[1].X != -16 || v[1].Y != 32 {
		t.Errorf("unexpected endpoints (%d,%d)-(%d,%d)", v[0].X, v[0].Y, v[1].X, v[1].Y)
	}
	if v[0].Type != PrimitiveLine {
		t.Error("expected line type")
	}
	if v[1].Color.B != 0xFF {
		t.Errorf("expected flat color on both ends, got %+v", v[1].Color)
	}
	if len(m.lines) != 1 {
		t.Errorf("expected 1 line on the backend, got %d", len(m.lines))
	}
}

func TestPrimitive_GouraudPolyline(t *testing.T) {
	g := makeTestGPU()
	writeGP0(g,
		0x58000010, xy(0, 0),
		0x00000020, xy(10, 0),
		0x00000030, xy(10, 10),
		polylineEndAlt,
	)
	if g.Busy() {
		t.Fatal("expected decoder idle")
	}

	v := g.DrawList().Vertices
	if len(v) != 4 {
		t.Fatalf("expected 4 vertices, got %d", len(v))
	}
	for i, want := range []uint8{0x10, 0x20, 0x20, 0x30} {
		if v[i].Color.R != want {
			t.Errorf("vertex %d: expected red 0x%02X, got 0x%02X", i, want, v[i].Color.R)
		}
	}
	if v[2].X != 10 || v[2].Y != 0 {
		t.Errorf("expected second segment to start at (10,0), got (%d,%d)", v[2].X, v[2].Y)
	}
}

func TestPrimitive_VariableRectangle(t *testing.T) {
	g := makeTestGPU()
	m := &mockBackend{}
	g.SetBackend(m)
	g.Reconfigure(Options{SoftwareRendering: true, HardwareRendering: true})

	writeGP0(g, 0x60123456, xy(5, 6), xy(16, 32))

	v := g.DrawList().Vertices
	if len(v) != 6 {
		t.Fatalf("expected 6 vertices, got %d", len(v))
	}
	want := [6][2]int{{5, 6}, {21, 6}, {5, 38}, {21, 6}, {5, 38}, {21, 38}}
	for i, w := range want {
		if v[i].X != w[0] || v[i].Y != w[1] {
			t.Errorf("vertex %d: expected (%d,%d), got (%d,%d)", i, w[0], w[1], v[i].X, v[i].Y)
		}
	}
	if len(m.rectangles) != 1 {
		t.Fatalf("expected 1 rectangle on the backend, got %d", len(m.rectangles))
	}
	q := m.rectangles[0]
	if q.Width != 16 || q.Height != 32 || q.BitDepth != 0 {
		t.Errorf("unexpected quad %+v", q)
	}
}

func TestPrimitive_TexturedRectangleUsesDrawMode(t *testing.T) {
	g := makeTestGPU()
	m := &mockBackend{}
	g.SetBackend(m)
	g.Reconfigure(Options{SoftwareRendering: true})

	writeGP0(g, 0xE1000000|2|2<<7) // page x 128, 15-bit
	tex := uint32(0x10) | uint32(0x20)<<8 | uint32(3)<<16 | uint32(100)<<22
	writeGP0(g, 0x74808080, xy(0, 0), tex)

	if len(m.rectangles) != 1 {
		t.Fatalf("expected 1 rectangle, got %d", len(m.rectangles))
	}
	q := m.rectangles[0]
	if q.Width != 8 || q.Height != 8 {
		t.Errorf("expected 8x8, got %dx%d", q.Width, q.Height)
	}
	if q.U != 0x10 || q.V != 0x20 {
		t.Errorf("expected uv (16,32), got (%d,%d)", q.U, q.V)
	}
	if q.ClutX != 48 || q.ClutY != 100 {
		t.Errorf("expected CLUT (48,100), got (%d,%d)", q.ClutX, q.ClutY)
	}
	if q.PageX != 128 || q.PageY != 0 {
		t.Errorf("expected page (128,0), got (%d,%d)", q.PageX, q.PageY)
	}
	if q.BitDepth != 16 {
		t.Errorf("expected 16-bit texture, got %d", q.BitDepth)
	}

	// Reserved depth 3 also reads as 16-bit
	writeGP0(g, 0xE1000000|3<<7)
	writeGP0(g, 0x7C808080, xy(0, 0), tex)
	if got := m.rectangles[1].BitDepth; got != 16 {
		t.Errorf("expected depth 3 to map to 16, got %d", got)
	}
	if got := m.rectangles[1].Width; got != 16 {
		t.Errorf("expected 16x16 rectangle, got width %d", got)
	}
}
