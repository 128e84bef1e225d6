package emu

import (
	"fmt"
	"strings"

	emucore "github.com/user-none/eblitui/api"
)

// Region is an alias for emucore.Region so the video standard is shared
// with frontends.
type Region = emucore.Region

const (
	RegionNTSC = emucore.RegionNTSC
	RegionPAL  = emucore.RegionPAL
)

// RegionTiming holds the video timing constants of one standard.
// Dots are GPU clock cycles.
type RegionTiming struct {
	DotsPerLine   int // GPU cycles per scanline
	LinesPerFrame int // Total scanlines per frame
	VBlankStart   int // First scanline of vertical blank
	FPS           int // Frames per second
}

// NTSC timing: 3413 dots per line, 263 lines, vblank from line 243, 60 Hz
var NTSCTiming = RegionTiming{
	DotsPerLine:   3413,
	LinesPerFrame: 263,
	VBlankStart:   243,
	FPS:           60,
}

// PAL timing: 3406 dots per line, 314 lines, vblank from line 256, 50 Hz
var PALTiming = RegionTiming{
	DotsPerLine:   3406,
	LinesPerFrame: 314,
	VBlankStart:   256,
	FPS:           50,
}

// GetTimingForRegion returns the appropriate timing constants
func GetTimingForRegion(r Region) RegionTiming {
	if r == RegionPAL {
		return PALTiming
	}
	return NTSCTiming
}

// DotsPerFrame returns the number of GPU cycles in one frame.
func (t RegionTiming) DotsPerFrame() int {
	return t.DotsPerLine * t.LinesPerFrame
}

// ParseRegion maps a user supplied name ("ntsc", "pal") to a Region.
// The match is case-insensitive.
func ParseRegion(name string) (Region, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ntsc", "":
		return RegionNTSC, nil
	case "pal":
		return RegionPAL, nil
	}
	return RegionNTSC, fmt.Errorf("unknown region %q", name)
}

// DefaultRegion returns the default region (NTSC).
func DefaultRegion() Region {
	return RegionNTSC
}

// DetectRegion returns the video standard chosen by the first GP1(08h)
// write in the trace, or the default when the trace never sets one.
func DetectRegion(t *Trace) Region {
	for _, r := range t.Records {
		if r.Kind != TraceGP1 || (r.Value>>24)&0x3F != gp1DisplayMode {
			continue
		}
		if r.Value&(1<<3) != 0 {
			return RegionPAL
		}
		return RegionNTSC
	}
	return DefaultRegion()
}
