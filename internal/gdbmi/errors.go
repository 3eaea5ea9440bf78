package gdbmi

import "errors"

var (
	// ErrBusy indicates the debuggee is running and gdb cannot accept a
	// command. No I/O was performed; retry once execution stops.
	ErrBusy = errors.New("gdbmi: debuggee is running")

	// ErrQuit indicates the gdb process is gone: its output pipe reached EOF
	// and the result queue is closed. The session handle must be discarded;
	// there is no automatic respawn.
	ErrQuit = errors.New("gdbmi: session terminated")
)
