//go:build !libretro && !ios

package main

import (
	"flag"
	"log"

	"github.com/user-none/eblitui/standalone"
	"github.com/user-none/emgpu/adapter"
)

func main() {
	tracePath := flag.String("trace", "", "path to GPU trace (opens UI if not provided)")
	regionFlag := flag.String("region", "auto", "region: auto, ntsc, or pal")
	logCommands := flag.Bool("log-commands", false, "record GP0 commands")
	flag.Parse()

	factory := &adapter.Factory{}

	if *tracePath != "" {
		options := map[string]string{
			"log_commands": "false",
		}
		if *logCommands {
			options["log_commands"] = "true"
		}
		if err := standalone.RunDirect(factory, *tracePath, *regionFlag, options); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := standalone.Run(factory); err != nil {
		log.Fatal(err)
	}
}
