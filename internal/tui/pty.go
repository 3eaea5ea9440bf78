//go:build linux

package tui

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// PTY is the master side of a pseudo terminal allocated for the debuggee.
// Its slave path is handed to gdb via --tty so the inferior's I/O lands in
// the terminal pane instead of interleaving with the MI stream.
type PTY struct {
	Master    *os.File
	SlavePath string
}

// OpenPTY allocates a pseudo terminal pair.
func OpenPTY() (*PTY, error) {
	fd, err := unix.Open("/dev/ptmx", unix.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, fmt.Errorf("pty: open ptmx: %w", err)
	}
	if err := unix.IoctlSetPointerInt(fd, unix.TIOCSPTLCK, 0); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("pty: unlock: %w", err)
	}
	n, err := unix.IoctlGetInt(fd, unix.TIOCGPTN)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("pty: slave number: %w", err)
	}
	return &PTY{
		Master:    os.NewFile(uintptr(fd), "/dev/ptmx"),
		SlavePath: fmt.Sprintf("/dev/pts/%d", n),
	}, nil
}

// Resize propagates the pane size to the slave terminal.
func (p *PTY) Resize(width, height int) error {
	ws := &unix.Winsize{Row: uint16(height), Col: uint16(width)}
	if err := unix.IoctlSetWinsize(int(p.Master.Fd()), unix.TIOCSWINSZ, ws); err != nil {
		return fmt.Errorf("pty: resize: %w", err)
	}
	return nil
}

// Close releases the master side.
func (p *PTY) Close() error {
	return p.Master.Close()
}
