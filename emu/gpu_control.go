package emu

import "fmt"

// GP1 opcodes.
const (
	gp1Reset              = 0x00
	gp1ResetCommandBuffer = 0x01
	gp1AckIRQ             = 0x02
	gp1DisplayEnable      = 0x03
	gp1DMADirection       = 0x04
	gp1DisplayStart       = 0x05
	gp1HorizontalRange    = 0x06
	gp1VerticalRange      = 0x07
	gp1DisplayMode        = 0x08
	gp1TextureDisable     = 0x09
	gp1InfoFirst          = 0x10
	gp1InfoLast           = 0x1F
)

// GP1(10h) info sub-queries.
const (
	infoTextureWindow = 2
	infoAreaTopLeft   = 3
	infoAreaBottom    = 4
	infoDrawOffset    = 5
	infoVersion       = 7
	infoZero          = 8
)

// ControlPortError is raised as a panic value when GP1 receives an opcode
// outside the defined set. It means the command stream is out of sync.
type ControlPortError struct {
	Command  uint8
	Argument uint32
}

func (e *ControlPortError) Error() string {
	return fmt.Sprintf("gpu: invalid GP1 command 0x%02x (argument 0x%06x)", e.Command, e.Argument)
}

// WriteGP1 executes one control port command. The opcode is bits 24-29.
func (g *GPU) WriteGP1(word uint32) {
	cmd := uint8((word >> 24) & 0x3F)
	arg := word & 0xFFFFFF

	switch {
	case cmd == gp1Reset:
		g.Reset()
	case cmd == gp1ResetCommandBuffer:
		g.resetCommandBuffer()
	case cmd == gp1AckIRQ:
		g.regs.irqRequest = false
	case cmd == gp1DisplayEnable:
		g.regs.displayDisabled = arg&0x01 != 0
	case cmd == gp1DMADirection:
		g.regs.dmaDirection = uint8(arg & dmaDirectionMask)
	case cmd == gp1DisplayStart:
		g.regs.setDisplayStart(arg)
	case cmd == gp1HorizontalRange:
		g.regs.setHorizontalRange(arg)
	case cmd == gp1VerticalRange:
		g.regs.setVerticalRange(arg)
	case cmd == gp1DisplayMode:
		g.regs.setDisplayMode(arg)
	case cmd == gp1TextureDisable:
		g.regs.textureDisableAllowed = arg&0x01 != 0
	case cmd >= gp1InfoFirst && cmd <= gp1InfoLast:
		g.queryInfo(arg & 0x0F)
	default:
		panic(&ControlPortError{Command: cmd, Argument: arg})
	}
}

// queryInfo latches a GP1(10h) result into GPUREAD. Unlisted sub-queries
// leave the latch unchanged.
func (g *GPU) queryInfo(q uint32) {
	g.readMode = readInfo
	r := &g.regs
	switch q {
	case infoTextureWindow:
		g.readLatch = r.textureWindow
	case infoAreaTopLeft:
		g.readLatch = uint32(r.areaTop)<<10 | uint32(r.areaLeft)
	case infoAreaBottom:
		g.readLatch = uint32(r.areaBottom)<<10 | uint32(r.areaRight)
	case infoDrawOffset:
		g.readLatch = (uint32(uint16(r.offsetY))&0x7FF)<<11 | uint32(uint16(r.offsetX))&0x7FF
	case infoVersion:
		g.readLatch = gpuVersion
	case infoZero:
		g.readLatch = 0
	}
}
