package adapter

import (
	"testing"

	"github.com/user-none/emgpu/emu"
)

func TestFactory_CreateEmulator(t *testing.T) {
	f := &Factory{}
	if _, err := f.CreateEmulator([]byte("not a trace"), emu.RegionNTSC); err == nil {
		t.Error("expected error for invalid trace")
	}

	trace := &emu.Trace{Records: []emu.TraceRecord{{Kind: emu.TraceGP1, Value: 0x08000008}}}
	e, err := f.CreateEmulator(trace.Encode(), emu.RegionPAL)
	if err != nil {
		t.Fatalf("CreateEmulator: %v", err)
	}
	ge, ok := e.(*emu.Emulator)
	if !ok {
		t.Fatalf("expected *emu.Emulator, got %T", e)
	}
	if ge.GetRegion() != emu.RegionPAL {
		t.Error("expected requested region")
	}
}

func TestFactory_DetectRegion(t *testing.T) {
	f := &Factory{}
	trace := &emu.Trace{Records: []emu.TraceRecord{{Kind: emu.TraceGP1, Value: 0x08000008}}}
	if r, _ := f.DetectRegion(trace.Encode()); r != emu.RegionPAL {
		t.Errorf("expected PAL, got %v", r)
	}
	if r, _ := f.DetectRegion(nil); r != emu.RegionNTSC {
		t.Errorf("expected NTSC fallback, got %v", r)
	}
}

func TestFactory_SystemInfo(t *testing.T) {
	info := (&Factory{}).SystemInfo()
	if info.SerializeSize != emu.SerializeSize() {
		t.Errorf("expected serialize size %d, got %d", emu.SerializeSize(), info.SerializeSize)
	}
	if info.CoreName != emu.Name {
		t.Errorf("expected core name %s, got %s", emu.Name, info.CoreName)
	}
}

func TestFactory_CoreOptionsApply(t *testing.T) {
	info := (&Factory{}).SystemInfo()
	for _, opt := range info.CoreOptions {
		if opt.Key == "software_rendering" {
			t.Error("software rendering has no rasterizer in the shipped core")
		}

		e := emu.NewEmulator(nil, emu.RegionNTSC)
		e.SetOption(opt.Key, opt.Default)
		before := e.GPU().Options()

		flipped := "true"
		if opt.Default == "true" {
			flipped = "false"
		}
		e.SetOption(opt.Key, flipped)
		if e.GPU().Options() == before {
			t.Errorf("option %s has no effect", opt.Key)
		}
	}
}
