package tui

import (
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
)

// consoleScrollback caps the number of retained console lines.
const consoleScrollback = 5000

// Console is the gdb console pane: a scrollback of output lines above an
// input line with history. Output may arrive from the engine's reader
// goroutine while the UI draws, so the widget locks internally.
type Console struct {
	mu      sync.Mutex
	lines   []string
	partial string

	input   []rune
	cursor  int
	history []string
	histPos int

	scroll int
}

// NewConsole creates an empty console.
func NewConsole() *Console {
	return &Console{}
}

// Append adds stream output to the scrollback. Text may contain embedded
// newlines and may end mid-line; a trailing fragment is buffered until its
// newline arrives.
func (c *Console) Append(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.partial += text
	for {
		idx := strings.IndexByte(c.partial, '\n')
		if idx < 0 {
			break
		}
		c.pushLine(c.partial[:idx])
		c.partial = c.partial[idx+1:]
	}
}

// AppendLine adds one complete line to the scrollback.
func (c *Console) AppendLine(line string) {
	c.mu.Lock()
	c.pushLine(line)
	c.mu.Unlock()
}

// pushLine must be called with mu held.
func (c *Console) pushLine(line string) {
	c.lines = append(c.lines, line)
	if len(c.lines) > consoleScrollback {
		c.lines = c.lines[len(c.lines)-consoleScrollback:]
	}
	// Keep the view pinned to the bottom unless the user scrolled up.
	if c.scroll > 0 {
		c.scroll++
	}
}

// HandleKey processes a key event while the console is focused. It returns
// the submitted command line and true when Enter completed an input.
func (c *Console) HandleKey(ev *tcell.EventKey) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch ev.Key() {
	case tcell.KeyEnter:
		line := string(c.input)
		c.input = c.input[:0]
		c.cursor = 0
		c.scroll = 0
		if line != "" {
			c.history = append(c.history, line)
		}
		c.histPos = len(c.history)
		c.pushLine("(gdb) " + line)
		return line, true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if c.cursor > 0 {
			c.input = append(c.input[:c.cursor-1], c.input[c.cursor:]...)
			c.cursor--
		}
	case tcell.KeyDelete:
		if c.cursor < len(c.input) {
			c.input = append(c.input[:c.cursor], c.input[c.cursor+1:]...)
		}
	case tcell.KeyLeft:
		if c.cursor > 0 {
			c.cursor--
		}
	case tcell.KeyRight:
		if c.cursor < len(c.input) {
			c.cursor++
		}
	case tcell.KeyHome, tcell.KeyCtrlA:
		c.cursor = 0
	case tcell.KeyEnd, tcell.KeyCtrlE:
		c.cursor = len(c.input)
	case tcell.KeyCtrlU:
		c.input = c.input[:0]
		c.cursor = 0
	case tcell.KeyUp:
		if c.histPos > 0 {
			c.histPos--
			c.input = []rune(c.history[c.histPos])
			c.cursor = len(c.input)
		}
	case tcell.KeyDown:
		if c.histPos < len(c.history) {
			c.histPos++
			if c.histPos == len(c.history) {
				c.input = c.input[:0]
			} else {
				c.input = []rune(c.history[c.histPos])
			}
			c.cursor = len(c.input)
		}
	case tcell.KeyPgUp:
		c.scroll += 10
		if max := len(c.lines); c.scroll > max {
			c.scroll = max
		}
	case tcell.KeyPgDn:
		c.scroll -= 10
		if c.scroll < 0 {
			c.scroll = 0
		}
	case tcell.KeyRune:
		c.input = append(c.input[:c.cursor], append([]rune{ev.Rune()}, c.input[c.cursor:]...)...)
		c.cursor++
	}
	return "", false
}

// InputLine returns the current input text. Used by tests and the prompt.
func (c *Console) InputLine() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return string(c.input)
}

// Lines returns a snapshot of the scrollback.
func (c *Console) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

// Draw renders the console into the rectangle. The bottom row is the input
// line; the rows above show the tail of the scrollback.
func (c *Console) Draw(screen tcell.Screen, r Rect, focused bool) {
	if r.Empty() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	style := tcell.StyleDefault
	outRows := r.Height - 1
	end := len(c.lines) - c.scroll
	if end < 0 {
		end = 0
	}
	start := end - outRows
	if start < 0 {
		start = 0
	}
	y := r.Y
	for i := start; i < end; i++ {
		fillLine(screen, r, y, style, ' ')
		drawText(screen, r, r.X, y, style, c.lines[i])
		y++
	}
	for ; y < r.Y+r.Height-1; y++ {
		fillLine(screen, r, y, style, ' ')
	}

	inputY := r.Y + r.Height - 1
	fillLine(screen, r, inputY, style, ' ')
	x := drawText(screen, r, r.X, inputY, style.Bold(true), "(gdb) ")
	drawText(screen, r, x, inputY, style, string(c.input))
	if focused {
		screen.ShowCursor(x+c.cursor, inputY)
	}
}
