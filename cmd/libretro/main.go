package main

import (
	libretro "github.com/user-none/eblitui/libretro"
	"github.com/user-none/emgpu/adapter"
)

func init() {
	libretro.RegisterFactory(&adapter.Factory{}, []libretro.RetropadMapping{
		{RetroID: libretro.JoypadStart, BitID: 7}, // VRAM view
	})
}

func main() {}
