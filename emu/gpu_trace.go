package emu

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Trace file format:
//
//	magic   [8]byte  "GPUTRACE"
//	version uint16   little-endian
//	records          kind(1) + value(4, little-endian), repeated
const (
	traceMagic      = "GPUTRACE"
	traceVersion    = 1
	traceHeaderSize = 10
	traceRecordSize = 5
)

var (
	ErrTraceMagic     = errors.New("not a GPU trace")
	ErrTraceTruncated = errors.New("GPU trace truncated")
)

// TraceKind identifies what a trace record does.
type TraceKind uint8

const (
	TraceGP0        TraceKind = iota // write value to GP0
	TraceGP1                         // write value to GP1
	TraceRead                        // read GPUREAD, value is the expected result
	TraceStep                        // advance timing by value GPU cycles
	TraceSetAddress                  // set the RAM write cursor
	TraceMemWrite                    // store value at the cursor, cursor += 4
	TraceLinkedList                  // run an ordering-table DMA starting at value
	traceKindCount
)

var traceKindNames = [...]string{
	TraceGP0:        "gp0",
	TraceGP1:        "gp1",
	TraceRead:       "read",
	TraceStep:       "step",
	TraceSetAddress: "addr",
	TraceMemWrite:   "mem",
	TraceLinkedList: "dma",
}

func (k TraceKind) String() string {
	if k < traceKindCount {
		return traceKindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// TraceRecord is one recorded bus event.
type TraceRecord struct {
	Kind  TraceKind
	Value uint32
}

// Trace is a recorded GPU command stream.
type Trace struct {
	Version uint16
	Records []TraceRecord
}

// ParseTrace decodes a binary trace.
func ParseTrace(data []byte) (*Trace, error) {
	if len(data) < traceHeaderSize || string(data[:len(traceMagic)]) != traceMagic {
		return nil, ErrTraceMagic
	}
	version := binary.LittleEndian.Uint16(data[8:10])
	if version > traceVersion {
		return nil, fmt.Errorf("unsupported trace version %d", version)
	}

	body := data[traceHeaderSize:]
	if len(body)%traceRecordSize != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrTraceTruncated, len(body)%traceRecordSize)
	}

	t := &Trace{
		Version: version,
		Records: make([]TraceRecord, 0, len(body)/traceRecordSize),
	}
	for off := 0; off < len(body); off += traceRecordSize {
		kind := TraceKind(body[off])
		if kind >= traceKindCount {
			return nil, fmt.Errorf("trace record %d: unknown kind %d", off/traceRecordSize, kind)
		}
		t.Records = append(t.Records, TraceRecord{
			Kind:  kind,
			Value: binary.LittleEndian.Uint32(body[off+1:]),
		})
	}
	return t, nil
}

// Encode returns the binary form of the trace.
func (t *Trace) Encode() []byte {
	data := make([]byte, traceHeaderSize+len(t.Records)*traceRecordSize)
	copy(data, traceMagic)
	binary.LittleEndian.PutUint16(data[8:10], traceVersion)

	off := traceHeaderSize
	for _, r := range t.Records {
		data[off] = uint8(r.Kind)
		binary.LittleEndian.PutUint32(data[off+1:], r.Value)
		off += traceRecordSize
	}
	return data
}

// TraceFromLog converts a command log into GP0 write records. CPU->VRAM
// headers are dropped because the log holds no pixel data for them.
func TraceFromLog(entries []LogEntry) *Trace {
	t := &Trace{Version: traceVersion}
	for _, e := range entries {
		if e.Kind == cmdCopyCPUToVRAM.String() {
			continue
		}
		for _, w := range e.Words {
			t.Records = append(t.Records, TraceRecord{Kind: TraceGP0, Value: w})
		}
	}
	return t
}
