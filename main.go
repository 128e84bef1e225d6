package main

import (
	"flag"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	emubridge "github.com/user-none/emgpu/bridge/ebiten"
	"github.com/user-none/emgpu/cli"
	"github.com/user-none/emgpu/emu"
	"github.com/user-none/emgpu/ui"
)

func main() {
	tracePath := flag.String("trace", "", "path to GPU trace file (required)")
	regionFlag := flag.String("region", "auto", "region: auto, ntsc, or pal")
	showVRAM := flag.Bool("vram", false, "start with the full VRAM view")
	logCommands := flag.Bool("log-commands", false, "record GP0 commands")
	scale := flag.Int("scale", 2, "initial window scale")
	flag.Parse()

	if *tracePath == "" {
		log.Fatal("Trace path is required. Usage: emgpu -trace <path>")
	}
	if *scale < 1 {
		log.Fatalf("Invalid scale: %d", *scale)
	}

	data, err := os.ReadFile(*tracePath)
	if err != nil {
		log.Fatalf("Failed to load trace: %v", err)
	}
	trace, err := emu.ParseTrace(data)
	if err != nil {
		log.Fatalf("Failed to parse trace: %v", err)
	}

	// Determine region
	var region emu.Region
	if strings.ToLower(*regionFlag) == "auto" {
		region = emu.DetectRegion(trace)
	} else if region, err = emu.ParseRegion(*regionFlag); err != nil {
		log.Fatalf("Invalid region: %s (use auto, ntsc, or pal)", *regionFlag)
	}

	e := emubridge.NewEmulator(trace, region)
	e.SetOption("log_commands", strconv.FormatBool(*logCommands))

	// Window scale is relative to a 320x240 display
	ebiten.SetWindowSize(emu.ScreenWidth/2*(*scale), emu.MaxScreenHeight/2*(*scale))
	ebiten.SetWindowTitle(emu.Name)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(320, 240, -1, -1)
	ebiten.SetTPS(60)

	runner := cli.NewRunner(e, ui.View{ShowVRAM: *showVRAM, ShowStatus: true})
	defer runner.Close()
	defer e.Close()

	if err := ebiten.RunGame(runner); err != nil {
		log.Fatal(err)
	}
}
