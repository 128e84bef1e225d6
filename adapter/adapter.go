package adapter

import (
	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/emgpu/emu"
)

// Compile-time interface check.
var _ emucore.CoreFactory = (*Factory)(nil)

// Factory implements emucore.CoreFactory for the GPU trace player. The
// "ROM" handed over by a frontend is a recorded GPU trace.
type Factory struct{}

// SystemInfo returns system metadata for UI configuration.
func (f *Factory) SystemInfo() emucore.SystemInfo {
	return emucore.SystemInfo{
		Name:            "emgpu",
		ConsoleName:     "GPU Trace",
		Extensions:      []string{".gputrace", ".trace"},
		ScreenWidth:     emu.ScreenWidth,
		MaxScreenHeight: emu.MaxScreenHeight,
		AspectRatio:     4.0 / 3.0,
		SampleRate:      48000,
		Buttons: []emucore.Button{
			{Name: "VRAM", ID: 7, DefaultKey: "V", DefaultPad: "Start"},
		},
		Players: 1,
		CoreOptions: []emucore.CoreOption{
			{
				Key:         "hardware_rendering",
				Label:       "Hardware Geometry",
				Description: "Collect decoded primitives into the per-frame vertex buffer",
				Type:        emucore.CoreOptionBool,
				Default:     "true",
			},
			{
				Key:         "log_commands",
				Label:       "Command Log",
				Description: "Record every GP0 command for inspection",
				Type:        emucore.CoreOptionBool,
				Default:     "false",
			},
		},
		DataDirName:   "emgpu",
		CoreName:      emu.Name,
		CoreVersion:   emu.Version,
		SerializeSize: emu.SerializeSize(),
	}
}

// CreateEmulator parses the trace and creates an emulator replaying it.
func (f *Factory) CreateEmulator(rom []byte, region emucore.Region) (emucore.Emulator, error) {
	trace, err := emu.ParseTrace(rom)
	if err != nil {
		return nil, err
	}
	return emu.NewEmulator(trace, region), nil
}

// DetectRegion picks the region from the trace's first display mode
// write. The bool return is false since no database lookup is involved.
func (f *Factory) DetectRegion(rom []byte) (emucore.Region, bool) {
	trace, err := emu.ParseTrace(rom)
	if err != nil {
		return emu.DefaultRegion(), false
	}
	return emu.DetectRegion(trace), false
}
