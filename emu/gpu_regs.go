package emu

// VRAM dimensions in 16-bit cells.
const (
	VRAMWidth  = 1024
	VRAMHeight = 512
)

// gpuVersion is returned by the GP1(10h) version query.
const gpuVersion = 2

// DMA directions selected by GP1(04h).
const (
	DMAOff      = 0
	DMAFIFO     = 1
	DMACPUToGPU = 2
	DMAGPUToCPU = 3

	dmaDirectionMask = 0x03
)

// --- GP0(E1h) draw mode ---
//
//	bits 0-3  texture page X base (N*64)
//	bit  4    texture page Y base (N*256)
//	bits 5-6  semi-transparency
//	bits 7-8  texture page colors (0=4bit, 1=8bit, 2=15bit)
//	bit  9    dither 24->15
//	bit  10   drawing to display area allowed
//	bit  11   texture disable
//	bit  12   textured rectangle X flip
//	bit  13   textured rectangle Y flip
type drawMode uint32

func (m drawMode) pageBaseX() int        { return int(m&0x0F) * 64 }
func (m drawMode) pageBaseY() int        { return int((m>>4)&0x01) * 256 }
func (m drawMode) semiTransparency() int { return int((m >> 5) & 0x03) }
func (m drawMode) textureColors() int    { return int((m >> 7) & 0x03) }
func (m drawMode) dither() bool          { return m&(1<<9) != 0 }
func (m drawMode) textureDisable() bool  { return m&(1<<11) != 0 }
func (m drawMode) rectXFlip() bool       { return m&(1<<12) != 0 }
func (m drawMode) rectYFlip() bool       { return m&(1<<13) != 0 }

// textureBits maps a 2-bit texture color field to bits per texel.
func textureBits(colors int) int {
	switch colors {
	case 0:
		return 4
	case 1:
		return 8
	default:
		return 16
	}
}

// TextureWindow is the decoded GP0(E2h) register, in 8-pixel steps.
type TextureWindow struct {
	MaskX   uint8
	MaskY   uint8
	OffsetX uint8
	OffsetY uint8
}

func decodeTextureWindow(raw uint32) TextureWindow {
	return TextureWindow{
		MaskX:   uint8(raw & 0x1F),
		MaskY:   uint8((raw >> 5) & 0x1F),
		OffsetX: uint8((raw >> 10) & 0x1F),
		OffsetY: uint8((raw >> 15) & 0x1F),
	}
}

// MaskSetting is the decoded GP0(E6h) register.
type MaskSetting struct {
	SetMask   bool // force bit 15 on every written pixel
	CheckMask bool // skip pixels whose bit 15 is already set
}

func decodeMaskSetting(raw uint32) MaskSetting {
	return MaskSetting{
		SetMask:   raw&0x01 != 0,
		CheckMask: raw&0x02 != 0,
	}
}

// --- GP1(08h) display mode ---
//
//	bits 0-1  horizontal resolution 1 (256/320/512/640)
//	bit  2    vertical resolution (0=240, 1=480 when interlaced)
//	bit  3    video mode (0=NTSC, 1=PAL)
//	bit  4    display color depth (0=15bit, 1=24bit)
//	bit  5    vertical interlace
//	bit  6    horizontal resolution 2 (1=368)
//	bit  7    reverse flag
type displayMode uint32

func (m displayMode) hres1() uint32     { return uint32(m) & 0x03 }
func (m displayMode) vres() uint32      { return (uint32(m) >> 2) & 0x01 }
func (m displayMode) pal() bool         { return m&(1<<3) != 0 }
func (m displayMode) colorDepth() bool  { return m&(1<<4) != 0 }
func (m displayMode) interlace() bool   { return m&(1<<5) != 0 }
func (m displayMode) hres2() uint32     { return (uint32(m) >> 6) & 0x01 }
func (m displayMode) reverseFlag() bool { return m&(1<<7) != 0 }

// Rect is an inclusive-exclusive rectangle in VRAM coordinates.
type Rect struct {
	Left, Top, Right, Bottom int
}

// RegisterBank holds the GPU control registers. Bit-packed registers are
// stored raw and decoded on access.
type RegisterBank struct {
	drawMode      drawMode
	textureWindow uint32
	maskSetting   uint32

	areaLeft, areaTop     uint16
	areaRight, areaBottom uint16
	offsetX, offsetY      int16

	displayDisabled       bool
	dmaDirection          uint8
	displayStartX         uint16
	displayStartY         uint16
	hRangeStart           uint16
	hRangeEnd             uint16
	vRangeStart           uint16
	vRangeEnd             uint16
	displayMode           displayMode
	textureDisableAllowed bool
	irqRequest            bool
}

// reset restores power-on register values. VRAM is not part of the bank.
func (r *RegisterBank) reset() {
	*r = RegisterBank{
		displayDisabled: true,
		hRangeStart:     0x200,
		hRangeEnd:       0x200 + 256*10,
		vRangeStart:     0x10,
		vRangeEnd:       0x10 + 240,
	}
}

// signExtend11 sign-extends an 11-bit two's complement field (sign in bit 10).
func signExtend11(v uint32) int16 {
	return int16(uint16(v)<<5) >> 5
}

func (r *RegisterBank) setDrawMode(raw uint32)      { r.drawMode = drawMode(raw & 0xFFFFFF) }
func (r *RegisterBank) setTextureWindow(raw uint32) { r.textureWindow = raw & 0xFFFFF }
func (r *RegisterBank) setMaskSetting(raw uint32)   { r.maskSetting = raw & 0x03 }

func (r *RegisterBank) setAreaTopLeft(raw uint32) {
	r.areaLeft = uint16(raw & 0x3FF)
	r.areaTop = uint16((raw >> 10) & 0x3FF)
}

func (r *RegisterBank) setAreaBottomRight(raw uint32) {
	r.areaRight = uint16(raw & 0x3FF)
	r.areaBottom = uint16((raw >> 10) & 0x3FF)
}

func (r *RegisterBank) setDrawingOffset(raw uint32) {
	r.offsetX = signExtend11(raw & 0x7FF)
	r.offsetY = signExtend11((raw >> 11) & 0x7FF)
}

func (r *RegisterBank) setDisplayStart(raw uint32) {
	r.displayStartX = uint16(raw & 0x3FF)
	r.displayStartY = uint16((raw >> 10) & 0x1FF)
}

func (r *RegisterBank) setHorizontalRange(raw uint32) {
	r.hRangeStart = uint16(raw & 0xFFF)
	r.hRangeEnd = uint16((raw >> 12) & 0xFFF)
}

func (r *RegisterBank) setVerticalRange(raw uint32) {
	r.vRangeStart = uint16(raw & 0x3FF)
	r.vRangeEnd = uint16((raw >> 10) & 0x3FF)
}

func (r *RegisterBank) setDisplayMode(raw uint32) { r.displayMode = displayMode(raw & 0xFFFFFF) }

// --- Accessors ---

// DrawMode returns the raw GP0(E1h) register.
func (r RegisterBank) DrawMode() uint32 { return uint32(r.drawMode) }

// TexturePage returns the texture page base in VRAM coordinates.
func (r RegisterBank) TexturePage() (x, y int) {
	return r.drawMode.pageBaseX(), r.drawMode.pageBaseY()
}

// SemiTransparency returns the draw mode blending equation (0-3).
func (r RegisterBank) SemiTransparency() int { return r.drawMode.semiTransparency() }

// TextureDepth returns the bits per texel selected by the draw mode.
func (r RegisterBank) TextureDepth() int { return textureBits(r.drawMode.textureColors()) }

// Dithering reports whether 24->15 bit dithering is enabled.
func (r RegisterBank) Dithering() bool { return r.drawMode.dither() }

// TextureDisabled reports the draw mode texture-disable bit.
func (r RegisterBank) TextureDisabled() bool { return r.drawMode.textureDisable() }

// TextureDisableAllowed reports the GP1(09h) latch.
func (r RegisterBank) TextureDisableAllowed() bool { return r.textureDisableAllowed }

// RectangleFlip returns the textured-rectangle flip bits. They are stored
// but not interpreted.
func (r RegisterBank) RectangleFlip() (x, y bool) {
	return r.drawMode.rectXFlip(), r.drawMode.rectYFlip()
}

// TextureWindow returns the decoded texture window register.
func (r RegisterBank) TextureWindow() TextureWindow { return decodeTextureWindow(r.textureWindow) }

// MaskSetting returns the decoded mask bit register.
func (r RegisterBank) MaskSetting() MaskSetting { return decodeMaskSetting(r.maskSetting) }

// DrawingArea returns the clip rectangle set by GP0(E3h)/GP0(E4h).
func (r RegisterBank) DrawingArea() Rect {
	return Rect{
		Left:   int(r.areaLeft),
		Top:    int(r.areaTop),
		Right:  int(r.areaRight),
		Bottom: int(r.areaBottom),
	}
}

// DrawingOffset returns the signed vertex bias set by GP0(E5h).
func (r RegisterBank) DrawingOffset() (x, y int) { return int(r.offsetX), int(r.offsetY) }

// DisplayEnabled reports whether video output is enabled.
func (r RegisterBank) DisplayEnabled() bool { return !r.displayDisabled }

// DMADirection returns the 2-bit DMA direction.
func (r RegisterBank) DMADirection() int { return int(r.dmaDirection) }

// DisplayStart returns the top-left VRAM cell of the display area.
func (r RegisterBank) DisplayStart() (x, y int) {
	return int(r.displayStartX), int(r.displayStartY)
}

// HorizontalRange returns the display range in GPU clocks relative to HSYNC.
func (r RegisterBank) HorizontalRange() (start, end int) {
	return int(r.hRangeStart), int(r.hRangeEnd)
}

// VerticalRange returns the display range in scanlines relative to VSYNC.
func (r RegisterBank) VerticalRange() (start, end int) {
	return int(r.vRangeStart), int(r.vRangeEnd)
}

// DisplayMode returns the raw GP1(08h) register.
func (r RegisterBank) DisplayMode() uint32 { return uint32(r.displayMode) }

// HorizontalResolution returns the output width in pixels.
func (r RegisterBank) HorizontalResolution() int {
	if r.displayMode.hres2() != 0 {
		return 368
	}
	switch r.displayMode.hres1() {
	case 0:
		return 256
	case 1:
		return 320
	case 2:
		return 512
	default:
		return 640
	}
}

// VerticalResolution returns the output height in lines.
func (r RegisterBank) VerticalResolution() int {
	if r.displayMode.vres() != 0 {
		return 480
	}
	return 240
}

// IsPAL reports whether the display mode selects PAL timing.
func (r RegisterBank) IsPAL() bool { return r.displayMode.pal() }

// Is24Bit reports whether the display area is read as packed RGB888.
func (r RegisterBank) Is24Bit() bool { return r.displayMode.colorDepth() }

// Interlaced reports whether interlaced output is enabled.
func (r RegisterBank) Interlaced() bool { return r.displayMode.interlace() }

// interlaced480 reports the 480-line interlaced mode whose field parity
// follows the frame counter.
func (r RegisterBank) interlaced480() bool {
	return r.displayMode.vres() != 0 && r.displayMode.interlace()
}

// IRQ reports the GP0(1Fh) interrupt latch.
func (r RegisterBank) IRQ() bool { return r.irqRequest }

// status assembles GPUSTAT. odd is the current field parity and
// cpuToVRAM reports an in-flight CPU->VRAM transfer.
func (r RegisterBank) status(odd, cpuToVRAM bool) uint32 {
	var dataRequest uint32
	switch r.dmaDirection {
	case DMAOff:
		dataRequest = 0
	case DMAFIFO, DMACPUToGPU:
		dataRequest = 1
	case DMAGPUToCPU:
		dataRequest = boolBit(!cpuToVRAM)
	}

	ms := r.MaskSetting()

	s := uint32(r.drawMode) & 0x7FF
	s |= boolBit(ms.SetMask) << 11
	s |= boolBit(ms.CheckMask) << 12
	s |= 1 << 13 // always set
	s |= boolBit(r.displayMode.reverseFlag()) << 14
	s |= boolBit(r.drawMode.textureDisable()) << 15
	s |= r.displayMode.hres2() << 16
	s |= r.displayMode.hres1() << 17
	s |= r.displayMode.vres() << 19
	s |= boolBit(r.displayMode.pal()) << 20
	s |= boolBit(r.displayMode.colorDepth()) << 21
	s |= boolBit(r.displayMode.interlace()) << 22
	s |= boolBit(r.displayDisabled) << 23
	s |= boolBit(r.irqRequest) << 24
	s |= dataRequest << 25
	s |= 1 << 26 // ready to receive command word
	s |= boolBit(!cpuToVRAM) << 27
	s |= 1 << 28 // ready to receive DMA block
	s |= uint32(r.dmaDirection&dmaDirectionMask) << 29
	s |= boolBit(odd) << 31
	return s
}

func boolBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
