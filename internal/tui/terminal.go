package tui

import (
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
)

// terminalScrollback caps the retained debuggee output.
const terminalScrollback = 5000

// TerminalPane shows the debuggee's terminal output read from its pty. It
// implements io.Writer so the pty reader can feed it directly. Focused, it
// forwards keystrokes to the debuggee's stdin.
type TerminalPane struct {
	mu      sync.Mutex
	lines   []string
	partial string

	// stdin is the pty master; nil until a debuggee terminal is attached.
	stdin interface{ Write([]byte) (int, error) }
}

// NewTerminalPane creates an empty terminal pane.
func NewTerminalPane() *TerminalPane {
	return &TerminalPane{}
}

// Attach connects the pane's keyboard input to the debuggee's terminal.
func (p *TerminalPane) Attach(stdin interface{ Write([]byte) (int, error) }) {
	p.mu.Lock()
	p.stdin = stdin
	p.mu.Unlock()
}

// Write implements io.Writer for the pty reader goroutine.
func (p *TerminalPane) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.partial += strings.ReplaceAll(string(data), "\r\n", "\n")
	for {
		idx := strings.IndexAny(p.partial, "\n\r")
		if idx < 0 {
			break
		}
		p.lines = append(p.lines, p.partial[:idx])
		p.partial = p.partial[idx+1:]
		if len(p.lines) > terminalScrollback {
			p.lines = p.lines[len(p.lines)-terminalScrollback:]
		}
	}
	return len(data), nil
}

// Lines returns a snapshot of the completed output lines.
func (p *TerminalPane) Lines() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.lines...)
}

// HandleKey forwards a keystroke to the debuggee when a terminal is
// attached.
func (p *TerminalPane) HandleKey(ev *tcell.EventKey) {
	p.mu.Lock()
	stdin := p.stdin
	p.mu.Unlock()
	if stdin == nil {
		return
	}
	var data []byte
	switch ev.Key() {
	case tcell.KeyEnter:
		data = []byte{'\n'}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		data = []byte{0x7f}
	case tcell.KeyTab:
		data = []byte{'\t'}
	case tcell.KeyCtrlC:
		data = []byte{0x03}
	case tcell.KeyCtrlD:
		data = []byte{0x04}
	case tcell.KeyRune:
		data = []byte(string(ev.Rune()))
	default:
		return
	}
	_, _ = stdin.Write(data)
}

// Draw renders the tail of the output into the rectangle. The pending
// unterminated line is shown last.
func (p *TerminalPane) Draw(screen tcell.Screen, r Rect, focused bool) {
	if r.Empty() {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	style := tcell.StyleDefault
	visible := append([]string(nil), p.lines...)
	if p.partial != "" {
		visible = append(visible, p.partial)
	}
	start := len(visible) - r.Height
	if start < 0 {
		start = 0
	}
	y := r.Y
	for _, line := range visible[start:] {
		fillLine(screen, r, y, style, ' ')
		drawText(screen, r, r.X, y, style, line)
		y++
	}
	for ; y < r.Y+r.Height; y++ {
		fillLine(screen, r, y, style, ' ')
	}
}
