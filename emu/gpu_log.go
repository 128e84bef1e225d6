package emu

// kindExtra labels single-word GP0 commands in the command log.
const kindExtra = "Extra"

// LogEntry is one recorded GP0 command. Words holds the command word
// followed by its arguments exactly as they were written.
type LogEntry struct {
	Opcode uint8
	Kind   string
	Words  []uint32
}

// logCommand records a command when LogCommands is enabled.
func (g *GPU) logCommand(kind commandKind, op uint8, words []uint32, immediate bool) {
	if !g.opts.LogCommands {
		return
	}
	name := kind.String()
	if immediate {
		name = kindExtra
	}
	g.cmdLog = append(g.cmdLog, LogEntry{
		Opcode: op,
		Kind:   name,
		Words:  append([]uint32(nil), words...),
	})
}

// CommandLog returns the recorded commands.
func (g *GPU) CommandLog() []LogEntry {
	return g.cmdLog
}

// ClearCommandLog drops all recorded commands.
func (g *GPU) ClearCommandLog() {
	g.cmdLog = g.cmdLog[:0]
}

// ReplayLog writes the words of each entry back to GP0 in order. Logging
// is suspended for the duration of the replay. CPU->VRAM headers are
// skipped since their pixel data is not recorded.
func (g *GPU) ReplayLog(entries []LogEntry) {
	logging := g.opts.LogCommands
	g.opts.LogCommands = false
	defer func() { g.opts.LogCommands = logging }()

	for _, e := range entries {
		if e.Kind == cmdCopyCPUToVRAM.String() {
			continue
		}
		for _, w := range e.Words {
			g.WriteGP0(w)
		}
	}
}
