//go:build !linux

package tui

import (
	"errors"
	"os"
)

// PTY is the master side of a pseudo terminal allocated for the debuggee.
type PTY struct {
	Master    *os.File
	SlavePath string
}

// OpenPTY is not supported on this platform; the inferior's output then
// shares the console pane.
func OpenPTY() (*PTY, error) {
	return nil, errors.New("pty: not supported on this platform")
}

// Resize propagates the pane size to the slave terminal.
func (p *PTY) Resize(width, height int) error { return nil }

// Close releases the master side.
func (p *PTY) Close() error { return p.Master.Close() }
