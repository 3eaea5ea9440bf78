// Package gdbmi implements the GDB machine interface (MI) protocol engine.
//
// It owns the gdb subprocess, demultiplexes its interleaved line output into
// typed records, and enforces the single-command-in-flight discipline that
// makes uncorrelated request/response matching safe: gdb's MI replies carry
// no correlation token, so at most one command may ever be outstanding.
//
// Two goroutines touch protocol state: the caller (serializes commands,
// blocks for replies) and one reader goroutine that owns the stdout pipe for
// the session's lifetime. The shared execution flag is written only by the
// reader and read by the executor before every write.
package gdbmi
