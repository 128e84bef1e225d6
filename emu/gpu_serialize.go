package emu

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	gpuSerializeVersion = 1
	// GPUSerializeSize is the total bytes needed for GPU serialization.
	// version(1) + vram(1048576) +
	// regs: drawMode(4) + textureWindow(4) + maskSetting(4) + area(8) +
	// offset(4) + displayDisabled(1) + dmaDirection(1) + displayStart(4) +
	// hRange(4) + vRange(4) + displayMode(4) + textureDisableAllowed(1) +
	// irqRequest(1) +
	// decoder: state(1) + kind(1) + opcode(1) + expected(4) + count(4) +
	// words(128) +
	// upload(25) + download(25) + readMode(1) + readLatch(4) +
	// timing: dot(4) + line(4) + frame(4) + odd(1) +
	// vblankEdge(1) + irqEdge(1)
	GPUSerializeSize = 1048830

	cursorSerializeSize = 25

	// Offsets of the fields checked before a state is applied.
	gpuDecoderOffset  = 1 + VRAMWidth*VRAMHeight*2 + 24 + 20
	gpuReadModeOffset = gpuDecoderOffset + 11 + maxCommandWords*4 + 2*cursorSerializeSize
)

// Serialize writes GPU state to buf. buf must be at least GPUSerializeSize bytes.
func (g *GPU) Serialize(buf []byte) error {
	if len(buf) < GPUSerializeSize {
		return errors.New("GPU serialize buffer too small")
	}

	offset := 0

	// Version
	buf[offset] = gpuSerializeVersion
	offset++

	// VRAM (1MB)
	for _, p := range g.vram {
		binary.LittleEndian.PutUint16(buf[offset:], p)
		offset += 2
	}

	// Draw registers
	r := &g.regs
	binary.LittleEndian.PutUint32(buf[offset:], uint32(r.drawMode))
	offset += 4
	binary.LittleEndian.PutUint32(buf[offset:], r.textureWindow)
	offset += 4
	binary.LittleEndian.PutUint32(buf[offset:], r.maskSetting)
	offset += 4
	for _, v := range [4]uint16{r.areaLeft, r.areaTop, r.areaRight, r.areaBottom} {
		binary.LittleEndian.PutUint16(buf[offset:], v)
		offset += 2
	}
	binary.LittleEndian.PutUint16(buf[offset:], uint16(r.offsetX))
	offset += 2
	binary.LittleEndian.PutUint16(buf[offset:], uint16(r.offsetY))
	offset += 2

	// Display registers
	buf[offset] = boolByte(r.displayDisabled)
	offset++
	buf[offset] = r.dmaDirection
	offset++
	for _, v := range [6]uint16{r.displayStartX, r.displayStartY, r.hRangeStart, r.hRangeEnd, r.vRangeStart, r.vRangeEnd} {
		binary.LittleEndian.PutUint16(buf[offset:], v)
		offset += 2
	}
	binary.LittleEndian.PutUint32(buf[offset:], uint32(r.displayMode))
	offset += 4
	buf[offset] = boolByte(r.textureDisableAllowed)
	offset++
	buf[offset] = boolByte(r.irqRequest)
	offset++

	// Decoder
	d := &g.decoder
	buf[offset] = uint8(d.state)
	offset++
	buf[offset] = uint8(d.kind)
	offset++
	buf[offset] = d.opcode
	offset++
	binary.LittleEndian.PutUint32(buf[offset:], uint32(d.expected))
	offset += 4
	binary.LittleEndian.PutUint32(buf[offset:], uint32(d.buf.n))
	offset += 4
	for _, w := range d.buf.words {
		binary.LittleEndian.PutUint32(buf[offset:], w)
		offset += 4
	}

	// Transfers
	offset = serializeCursor(buf, offset, &g.upload)
	offset = serializeCursor(buf, offset, &g.download)
	buf[offset] = uint8(g.readMode)
	offset++
	binary.LittleEndian.PutUint32(buf[offset:], g.readLatch)
	offset += 4

	// Timing
	binary.LittleEndian.PutUint32(buf[offset:], uint32(int32(g.timing.Dot)))
	offset += 4
	binary.LittleEndian.PutUint32(buf[offset:], uint32(int32(g.timing.Line)))
	offset += 4
	binary.LittleEndian.PutUint32(buf[offset:], uint32(int32(g.timing.Frame)))
	offset += 4
	buf[offset] = boolByte(g.timing.Odd)
	offset++

	// Edges
	buf[offset] = boolByte(g.vblankEdge)
	offset++
	buf[offset] = boolByte(g.irqEdge)

	return nil
}

// Deserialize reads GPU state from buf. buf must be at least GPUSerializeSize bytes.
func (g *GPU) Deserialize(buf []byte) error {
	if len(buf) < GPUSerializeSize {
		return errors.New("GPU deserialize buffer too small")
	}

	offset := 0

	// Version
	version := buf[offset]
	offset++
	if version > gpuSerializeVersion {
		return errors.New("unsupported GPU state version")
	}
	if err := validateGPUState(buf); err != nil {
		return err
	}

	// VRAM (1MB)
	for i := range g.vram {
		g.vram[i] = binary.LittleEndian.Uint16(buf[offset:])
		offset += 2
	}

	// Draw registers
	r := &g.regs
	r.drawMode = drawMode(binary.LittleEndian.Uint32(buf[offset:]))
	offset += 4
	r.textureWindow = binary.LittleEndian.Uint32(buf[offset:])
	offset += 4
	r.maskSetting = binary.LittleEndian.Uint32(buf[offset:])
	offset += 4
	for _, v := range [4]*uint16{&r.areaLeft, &r.areaTop, &r.areaRight, &r.areaBottom} {
		*v = binary.LittleEndian.Uint16(buf[offset:])
		offset += 2
	}
	r.offsetX = int16(binary.LittleEndian.Uint16(buf[offset:]))
	offset += 2
	r.offsetY = int16(binary.LittleEndian.Uint16(buf[offset:]))
	offset += 2

	// Display registers
	r.displayDisabled = buf[offset] != 0
	offset++
	r.dmaDirection = buf[offset] & dmaDirectionMask
	offset++
	for _, v := range [6]*uint16{&r.displayStartX, &r.displayStartY, &r.hRangeStart, &r.hRangeEnd, &r.vRangeStart, &r.vRangeEnd} {
		*v = binary.LittleEndian.Uint16(buf[offset:])
		offset += 2
	}
	r.displayMode = displayMode(binary.LittleEndian.Uint32(buf[offset:]))
	offset += 4
	r.textureDisableAllowed = buf[offset] != 0
	offset++
	r.irqRequest = buf[offset] != 0
	offset++

	// Decoder
	d := &g.decoder
	d.state = decoderState(buf[offset])
	offset++
	d.kind = commandKind(buf[offset])
	offset++
	d.opcode = buf[offset]
	offset++
	d.expected = int(binary.LittleEndian.Uint32(buf[offset:]))
	offset += 4
	d.buf.n = int(binary.LittleEndian.Uint32(buf[offset:]))
	offset += 4
	for i := range d.buf.words {
		d.buf.words[i] = binary.LittleEndian.Uint32(buf[offset:])
		offset += 4
	}

	// Transfers
	offset = deserializeCursor(buf, offset, &g.upload)
	offset = deserializeCursor(buf, offset, &g.download)
	g.readMode = readMode(buf[offset])
	offset++
	g.readLatch = binary.LittleEndian.Uint32(buf[offset:])
	offset += 4

	// Timing
	g.timing.Dot = int(int32(binary.LittleEndian.Uint32(buf[offset:])))
	offset += 4
	g.timing.Line = int(int32(binary.LittleEndian.Uint32(buf[offset:])))
	offset += 4
	g.timing.Frame = int(int32(binary.LittleEndian.Uint32(buf[offset:])))
	offset += 4
	g.timing.Odd = buf[offset] != 0
	offset++

	// Edges
	g.vblankEdge = buf[offset] != 0
	offset++
	g.irqEdge = buf[offset] != 0

	return nil
}

// validateGPUState checks the enumerated and length fields of a state so
// a bad state is rejected before any GPU field is overwritten.
func validateGPUState(buf []byte) error {
	d := buf[gpuDecoderOffset:]
	if decoderState(d[0]) > decoderReady {
		return fmt.Errorf("GPU state has invalid decoder state %d", d[0])
	}
	if commandKind(d[1]) > cmdUnknown {
		return fmt.Errorf("GPU state has invalid command kind %d", d[1])
	}
	expected := binary.LittleEndian.Uint32(d[3:])
	n := binary.LittleEndian.Uint32(d[7:])
	if n > maxCommandWords || expected > maxCommandWords {
		return errors.New("GPU state has invalid command buffer length")
	}
	if readMode(buf[gpuReadModeOffset]) > readInfo {
		return fmt.Errorf("GPU state has invalid read mode %d", buf[gpuReadModeOffset])
	}
	return nil
}

func serializeCursor(buf []byte, offset int, c *vramCursor) int {
	for _, v := range [6]int{c.startX, c.startY, c.endX, c.endY, c.x, c.y} {
		binary.LittleEndian.PutUint32(buf[offset:], uint32(int32(v)))
		offset += 4
	}
	buf[offset] = boolByte(c.active)
	return offset + 1
}

func deserializeCursor(buf []byte, offset int, c *vramCursor) int {
	for _, v := range [6]*int{&c.startX, &c.startY, &c.endX, &c.endY, &c.x, &c.y} {
		*v = int(int32(binary.LittleEndian.Uint32(buf[offset:])))
		offset += 4
	}
	c.active = buf[offset] != 0
	return offset + 1
}
