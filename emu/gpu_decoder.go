package emu

// maxCommandWords is the capacity of the GP0 command buffer. A polyline
// fills it completely when no terminator arrives.
const maxCommandWords = 32

// Polyline terminators. Either word ends a multi-segment line command.
const (
	polylineEnd    = 0x55555555
	polylineEndAlt = 0x50005000
)

// maxPolylineSegments caps the number of segments decoded from one polyline
// command. Streams with more segments desynchronize.
const maxPolylineSegments = 15

// commandKind is the decoded class of a GP0 opcode.
type commandKind uint8

const (
	cmdNone commandKind = iota
	cmdNop
	cmdClearCache
	cmdFillRectangle
	cmdPolygon
	cmdLine
	cmdRectangle
	cmdCopyCPUToVRAM
	cmdCopyCPUToVRAMData
	cmdCopyVRAMToCPU
	cmdCopyVRAMToVRAM
	cmdDrawMode
	cmdTextureWindow
	cmdAreaTopLeft
	cmdAreaBottomRight
	cmdDrawingOffset
	cmdMaskSetting
	cmdIRQRequest
	cmdUnknown
)

var commandNames = [...]string{
	cmdNone:              "None",
	cmdNop:               "Nop",
	cmdClearCache:        "ClearCache",
	cmdFillRectangle:     "FillRectangle",
	cmdPolygon:           "Polygon",
	cmdLine:              "Line",
	cmdRectangle:         "Rectangle",
	cmdCopyCPUToVRAM:     "CopyCpuToVram",
	cmdCopyCPUToVRAMData: "CopyCpuToVramData",
	cmdCopyVRAMToCPU:     "CopyVramToCpu",
	cmdCopyVRAMToVRAM:    "CopyVramToVram",
	cmdDrawMode:          "DrawMode",
	cmdTextureWindow:     "TextureWindow",
	cmdAreaTopLeft:       "DrawingAreaTopLeft",
	cmdAreaBottomRight:   "DrawingAreaBottomRight",
	cmdDrawingOffset:     "DrawingOffset",
	cmdMaskSetting:       "MaskSetting",
	cmdIRQRequest:        "IRQRequest",
	cmdUnknown:           "Unknown",
}

func (k commandKind) String() string {
	if int(k) < len(commandNames) {
		return commandNames[k]
	}
	return "Invalid"
}

// commandInfo describes one GP0 opcode. args returns the number of words
// following the command word; nil means a single-word command.
type commandInfo struct {
	kind commandKind
	args func(op uint8) int
}

func fixedArgs(n int) func(uint8) int {
	return func(uint8) int { return n }
}

// Polygon opcode bits: 0 raw texture, 1 semi-transparent, 2 textured,
// 3 quad, 4 gouraud.
func polygonArgs(op uint8) int {
	n := polygonVertexCount(op)
	size := n
	if op&0x04 != 0 {
		size *= 2
	}
	if op&0x10 != 0 {
		size += n - 1
	}
	return size
}

func polygonVertexCount(op uint8) int {
	if op&0x08 != 0 {
		return 4
	}
	return 3
}

// Line opcode bits: 1 semi-transparent, 3 polyline, 4 gouraud.
func lineArgs(op uint8) int {
	if op&0x08 != 0 {
		return maxCommandWords - 1
	}
	if op&0x10 != 0 {
		return 3
	}
	return 2
}

// Rectangle opcode bits: 0 raw texture, 1 semi-transparent, 2 textured,
// 3-4 size (0 variable, 1 1x1, 2 8x8, 3 16x16).
func rectangleArgs(op uint8) int {
	n := 1
	if rectangleSize(op) == 0 {
		n++
	}
	if op&0x04 != 0 {
		n++
	}
	return n
}

func rectangleSize(op uint8) int {
	switch (op >> 3) & 0x03 {
	case 1:
		return 1
	case 2:
		return 8
	case 3:
		return 16
	}
	return 0
}

// gp0Commands maps every opcode to its command class.
var gp0Commands = buildCommandTable()

func buildCommandTable() [256]commandInfo {
	var t [256]commandInfo
	for i := range t {
		t[i] = commandInfo{kind: cmdUnknown}
	}
	t[0x00] = commandInfo{kind: cmdNop}
	t[0x01] = commandInfo{kind: cmdClearCache}
	t[0x02] = commandInfo{kind: cmdFillRectangle, args: fixedArgs(2)}
	t[0x1F] = commandInfo{kind: cmdIRQRequest}
	for op := 0x20; op < 0x40; op++ {
		t[op] = commandInfo{kind: cmdPolygon, args: polygonArgs}
	}
	for op := 0x40; op < 0x60; op++ {
		t[op] = commandInfo{kind: cmdLine, args: lineArgs}
	}
	for op := 0x60; op < 0x80; op++ {
		t[op] = commandInfo{kind: cmdRectangle, args: rectangleArgs}
	}
	t[0x80] = commandInfo{kind: cmdCopyVRAMToVRAM, args: fixedArgs(3)}
	t[0xA0] = commandInfo{kind: cmdCopyCPUToVRAM, args: fixedArgs(2)}
	t[0xC0] = commandInfo{kind: cmdCopyVRAMToCPU, args: fixedArgs(2)}
	t[0xE1] = commandInfo{kind: cmdDrawMode}
	t[0xE2] = commandInfo{kind: cmdTextureWindow}
	t[0xE3] = commandInfo{kind: cmdAreaTopLeft}
	t[0xE4] = commandInfo{kind: cmdAreaBottomRight}
	t[0xE5] = commandInfo{kind: cmdDrawingOffset}
	t[0xE6] = commandInfo{kind: cmdMaskSetting}
	return t
}

// decoderState is the GP0 state machine position.
type decoderState uint8

const (
	decoderIdle decoderState = iota
	decoderAccumulating
	decoderReady
)

// commandBuffer holds the words of the in-flight GP0 command, command
// word first.
type commandBuffer struct {
	words [maxCommandWords]uint32
	n     int
}

func (b *commandBuffer) clear()           { b.n = 0 }
func (b *commandBuffer) push(w uint32)    { b.words[b.n] = w; b.n++ }
func (b *commandBuffer) get(i int) uint32 { return b.words[i] }
func (b *commandBuffer) slice() []uint32  { return b.words[:b.n] }
func (b *commandBuffer) has(i int) bool   { return i < b.n }
func (b *commandBuffer) opcode() uint8    { return uint8(b.words[0] >> 24) }

// decoder accumulates GP0 words into commands.
type decoder struct {
	state    decoderState
	kind     commandKind
	opcode   uint8
	expected int // total words including the command word
	buf      commandBuffer
}

func (d *decoder) reset() {
	d.state = decoderIdle
	d.kind = cmdNone
	d.opcode = 0
	d.expected = 0
	d.buf.clear()
}

func isPolylineTerminator(w uint32) bool {
	return w == polylineEnd || w == polylineEndAlt
}

// WriteGP0 feeds one word to the draw port.
func (g *GPU) WriteGP0(word uint32) {
	d := &g.decoder

	if d.state == decoderIdle {
		op := uint8(word >> 24)
		info := gp0Commands[op]
		d.buf.clear()
		d.buf.push(word)
		d.opcode = op
		d.kind = info.kind

		if info.args == nil {
			g.executeImmediate(info.kind, word)
			g.logCommand(info.kind, op, d.buf.slice(), true)
			d.reset()
			return
		}

		d.expected = 1 + info.args(op)
		d.state = decoderAccumulating
		return
	}

	if d.kind == cmdCopyCPUToVRAMData {
		if g.uploadWord(word) {
			d.reset()
		}
		return
	}

	d.buf.push(word)
	if d.kind == cmdLine && d.opcode&0x08 != 0 && isPolylineTerminator(word) {
		d.expected = d.buf.n
	}
	if d.buf.n < d.expected {
		return
	}

	if d.kind == cmdLine && d.opcode&0x08 != 0 && !isPolylineTerminator(word) {
		g.logger.Printf("GP0(0x%02x) polyline exceeds %d words without terminator", d.opcode, maxCommandWords)
	}

	d.state = decoderReady
	g.logCommand(d.kind, d.opcode, d.buf.slice(), false)
	g.dispatch()

	if d.kind == cmdCopyCPUToVRAM {
		// Header consumed; stay accumulating one data word at a time.
		d.kind = cmdCopyCPUToVRAMData
		d.state = decoderAccumulating
		d.buf.clear()
		if !g.upload.active {
			d.reset()
		}
		return
	}
	d.reset()
}

// dispatch runs a complete multi-word command.
func (g *GPU) dispatch() {
	b := &g.decoder.buf
	switch g.decoder.kind {
	case cmdFillRectangle:
		g.fillRectangle(b)
	case cmdPolygon:
		g.drawPolygonCommand(b)
	case cmdLine:
		g.drawLineCommand(b)
	case cmdRectangle:
		g.drawRectangleCommand(b)
	case cmdCopyCPUToVRAM:
		g.beginCPUToVRAM(b)
	case cmdCopyVRAMToCPU:
		g.beginVRAMToCPU(b)
	case cmdCopyVRAMToVRAM:
		g.copyVRAMToVRAM(b)
	}
}

// executeImmediate runs a single-word GP0 command.
func (g *GPU) executeImmediate(kind commandKind, word uint32) {
	arg := word & 0xFFFFFF
	switch kind {
	case cmdNop:
		if arg != 0 {
			g.logger.Printf("GP0(0x00) nop: non-zero argument (0x%06x)", arg)
		}
	case cmdClearCache:
		// No texture cache is modelled.
	case cmdDrawMode:
		g.regs.setDrawMode(arg)
	case cmdTextureWindow:
		g.regs.setTextureWindow(arg)
	case cmdAreaTopLeft:
		g.regs.setAreaTopLeft(arg)
	case cmdAreaBottomRight:
		g.regs.setAreaBottomRight(arg)
	case cmdDrawingOffset:
		g.regs.setDrawingOffset(arg)
	case cmdMaskSetting:
		g.regs.setMaskSetting(arg)
	case cmdIRQRequest:
		g.regs.irqRequest = true
		g.irqEdge = true
	default:
		g.logger.Printf("GP0(0x%02x) unknown command, args 0x%06x", word>>24, arg)
	}
}
