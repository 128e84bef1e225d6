package emu

import "testing"

func TestLog_DisabledByDefault(t *testing.T) {
	g := makeTestGPU()
	writeGP0(g, 0xE1000001, 0x020000FF, xy(0, 0), xy(16, 1))
	if n := len(g.CommandLog()); n != 0 {
		t.Errorf("expected empty log, got %d entries", n)
	}
}

func TestLog_Entries(t *testing.T) {
	g := makeTestGPU()
	g.Reconfigure(Options{HardwareRendering: true, LogCommands: true})

	writeGP0(g, 0xE1000001)
	writeGP0(g, 0x20FFFFFF, xy(0, 0), xy(1, 0), xy(0, 1))

	log := g.CommandLog()
	if len(log) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(log))
	}
	if log[0].Kind != "Extra" || log[0].Opcode != 0xE1 || len(log[0].Words) != 1 {
		t.Errorf("unexpected immediate entry %+v", log[0])
	}
	if log[1].Kind != "Polygon" || log[1].Opcode != 0x20 || len(log[1].Words) != 4 {
		t.Errorf("unexpected polygon entry %+v", log[1])
	}

	g.ClearCommandLog()
	if len(g.CommandLog()) != 0 {
		t.Error("expected log cleared")
	}
}

func TestLog_Replay(t *testing.T) {
	src := makeTestGPU()
	src.Reconfigure(Options{HardwareRendering: true, LogCommands: true})
	writeGP0(src,
		0xE1000001,
		0x0200FF00, xy(32, 8), xy(16, 4),
		0x80000000, xy(32, 8), xy(100, 100), xy(16, 4),
		0x28FFFFFF, xy(0, 0), xy(4, 0), xy(0, 4), xy(4, 4),
	)
	log := src.CommandLog()

	dst := makeTestGPU()
	dst.Reconfigure(Options{HardwareRendering: true, LogCommands: true})
	dst.ReplayLog(log)

	if len(dst.CommandLog()) != 0 {
		t.Error("expected replay not to be logged")
	}
	if !dst.Options().LogCommands {
		t.Error("expected logging restored after replay")
	}
	if got := dst.Pixel(110, 101); got != 0x03E0 {
		t.Errorf("expected copied fill at (110,101), got 0x%04X", got)
	}
	if x, _ := dst.Registers().TexturePage(); x != 64 {
		t.Errorf("expected draw mode replayed, page x %d", x)
	}
	if dst.DrawList().Len() != 6 {
		t.Errorf("expected quad replayed, got %d vertices", dst.DrawList().Len())
	}
}
