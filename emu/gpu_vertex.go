package emu

// PrimitiveType identifies which command produced a vertex.
type PrimitiveType uint8

const (
	PrimitivePolygon PrimitiveType = iota
	PrimitiveRectangle
	PrimitiveLine
)

// VertexFlags describe how a primitive is shaded.
//
//	bit 0     semi-transparent
//	bit 1     raw texture (no color modulation)
//	bit 2     dithered
//	bit 3     gouraud shaded
//	bits 5-6  semi-transparency equation
type VertexFlags uint32

const (
	FlagSemiTransparent VertexFlags = 1 << 0
	FlagRawTexture      VertexFlags = 1 << 1
	FlagDithered        VertexFlags = 1 << 2
	FlagGouraud         VertexFlags = 1 << 3

	flagBlendShift = 5
)

// BlendMode returns the semi-transparency equation carried in the flags.
func (f VertexFlags) BlendMode() int {
	return int(f>>flagBlendShift) & 0x03
}

// Color is an 8-bit per channel vertex color.
type Color struct {
	R, G, B uint8
}

// colorFromWord decodes a command word's low 24 bits (0xBBGGRR).
func colorFromWord(w uint32) Color {
	return Color{R: uint8(w), G: uint8(w >> 8), B: uint8(w >> 16)}
}

// to15Bit truncates each 8-bit channel to its top 5 bits.
func to15Bit(c Color) uint16 {
	return uint16(c.R>>3) | uint16(c.G>>3)<<5 | uint16(c.B>>3)<<10
}

// Vertex is one point submitted to the geometry backend. TextureWindow and
// Mask are captured when the primitive is decoded so later register writes
// do not affect it.
type Vertex struct {
	Type     PrimitiveType
	X, Y     int
	Color    Color
	U, V     int
	BitDepth int // 0 when untextured
	ClutX    int
	ClutY    int
	PageX    int
	PageY    int
	Flags    VertexFlags

	TextureWindow TextureWindow
	Mask          MaskSetting
}

// Quad is a decoded rectangle command.
type Quad struct {
	X, Y          int
	Width, Height int
	Color         Color
	U, V          int
	ClutX, ClutY  int
	PageX, PageY  int
	BitDepth      int
	Flags         VertexFlags

	TextureWindow TextureWindow
	Mask          MaskSetting
}

// Surface is the framebuffer view handed to a geometry backend. Writes go
// through the mask-bit check.
type Surface interface {
	Pixel(x, y int) uint16
	WritePixel(x, y int, value uint16)
	DrawingArea() Rect
}

// Backend rasterizes decoded primitives. Calls are fire-and-forget.
type Backend interface {
	DrawTriangle(s Surface, v [3]Vertex)
	DrawLine(s Surface, v [2]Vertex)
	DrawRectangle(s Surface, q Quad)
}

// DrawList is a per-frame vertex buffer. Triangles are stored as
// consecutive vertex triples, lines as pairs.
type DrawList struct {
	Vertices []Vertex
}

// NewDrawList creates a DrawList with preallocated capacity.
func NewDrawList() *DrawList {
	return &DrawList{Vertices: make([]Vertex, 0, 4096)}
}

// Reset empties the list, keeping its storage.
func (d *DrawList) Reset() {
	d.Vertices = d.Vertices[:0]
}

// Len returns the number of vertices in the list.
func (d *DrawList) Len() int {
	return len(d.Vertices)
}

func (d *DrawList) push(v ...Vertex) {
	d.Vertices = append(d.Vertices, v...)
}
