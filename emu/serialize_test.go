package emu

import (
	"encoding/binary"
	"testing"
)

func TestSerialize_RoundTrip(t *testing.T) {
	records := []TraceRecord{
		gp1(0x03000000),
		gp0(0x02FF0000), gp0(xy(0, 0)), gp0(xy(16, 1)),
		step(uint32(NTSCTiming.DotsPerFrame())),
		gp0(0xE1000001),
	}
	e := makeTestEmulator(records...)
	e.RunFrame()

	state, err := e.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if len(state) != e.SerializeSize() {
		t.Fatalf("expected %d bytes, got %d", e.SerializeSize(), len(state))
	}

	cursor, pending := e.cursor, e.pending
	e.RunFrame()
	e.GPU().WritePixel(0, 0, 0)

	if err := e.Deserialize(state); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if e.cursor != cursor || e.pending != pending {
		t.Errorf("expected playback at %d/%d, got %d/%d", cursor, pending, e.cursor, e.pending)
	}
	if got := e.GPU().Pixel(0, 0); got != 0x7C00 {
		t.Errorf("expected VRAM restored, got 0x%04X", got)
	}
	if fb := e.GetFramebuffer(); fb[2] != 0xFF {
		t.Error("expected framebuffer refreshed after load")
	}
}

func TestSerialize_VerifyErrors(t *testing.T) {
	e := makeTestEmulator(gp0(0xE1000001))
	state, err := e.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	corrupt := func(f func([]byte)) []byte {
		c := append([]byte(nil), state...)
		f(c)
		return c
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short", state[:len(state)-1], ErrStateTooSmall},
		{"magic", corrupt(func(b []byte) { b[0] = 'x' }), ErrStateMagic},
		{"version", corrupt(func(b []byte) { binary.LittleEndian.PutUint16(b[12:], stateVersion+1) }), ErrStateVersion},
		{"trace", corrupt(func(b []byte) { b[14] ^= 0xFF }), ErrStateTrace},
		{"crc", corrupt(func(b []byte) { b[stateHeaderSize+100] ^= 0x01 }), ErrStateCRC},
	}
	for _, tt := range tests {
		if err := e.VerifyState(tt.data); err != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}

	if err := e.VerifyState(state); err != nil {
		t.Errorf("expected valid state, got %v", err)
	}
}

func TestSerialize_OtherTraceRejected(t *testing.T) {
	a := makeTestEmulator(gp0(0xE1000001))
	b := makeTestEmulator(gp0(0xE1000002))

	state, err := a.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if err := b.Deserialize(state); err != ErrStateTrace {
		t.Errorf("expected ErrStateTrace, got %v", err)
	}
}
