package emu

// TimingState is the position of the video beam.
type TimingState struct {
	Dot   int  // GPU cycles into the current line
	Line  int  // Scanline within the frame
	Frame int  // Completed frames
	Odd   bool // Field parity reported in GPUSTAT bit 31
}

// timingEngine converts GPU cycles into scanlines and frames.
type timingEngine struct {
	TimingState
}

// step adds cycles and reports whether the frame completed and whether
// the beam entered vertical blank during this call.
//
// Before vblank the parity follows the frame counter in 480-line
// interlaced mode and the line counter otherwise. It is always even
// during vblank.
func (t *timingEngine) step(cycles int, rt RegionTiming, interlaced480 bool) (frame, vblank bool) {
	t.Dot += cycles
	lines := t.Dot / rt.DotsPerLine
	if lines == 0 {
		return false, false
	}
	t.Dot %= rt.DotsPerLine

	prev := t.Line
	t.Line += lines
	vblank = prev < rt.VBlankStart && t.Line >= rt.VBlankStart

	switch {
	case t.Line >= rt.VBlankStart:
		t.Odd = false
	case interlaced480:
		t.Odd = t.Frame&1 != 0
	default:
		t.Odd = t.Line&1 != 0
	}

	if t.Line >= rt.LinesPerFrame {
		t.Line = 0
		t.Frame++
		frame = true
	}
	return frame, vblank
}
