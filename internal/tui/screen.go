// Package tui implements ugdb's terminal user interface: the screen
// wrapper, the pane widgets (console, source view, expression table,
// debuggee terminal) and the layout arrangement that maps the pane tree
// to screen rectangles.
package tui

import (
	"sync"

	"github.com/gdamore/tcell/v2"
)

// Screen wraps a tcell screen for the widget layer.
type Screen struct {
	mu     sync.Mutex
	screen tcell.Screen
}

// NewScreen creates a screen on the real terminal.
func NewScreen() (*Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Screen{screen: screen}, nil
}

// NewScreenFrom wraps an existing tcell screen. Tests pass a simulation
// screen here.
func NewScreenFrom(screen tcell.Screen) *Screen {
	return &Screen{screen: screen}
}

// Init initializes the terminal.
func (s *Screen) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.screen.Init(); err != nil {
		return err
	}
	s.screen.EnableMouse()
	return nil
}

// Fini restores the terminal.
func (s *Screen) Fini() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen.Fini()
}

// Size returns the terminal dimensions.
func (s *Screen) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen.Size()
}

// Clear erases the whole screen.
func (s *Screen) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen.Clear()
}

// Show flushes pending drawing to the terminal.
func (s *Screen) Show() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen.Show()
}

// PollEvent blocks for the next terminal event.
func (s *Screen) PollEvent() tcell.Event {
	return s.screen.PollEvent()
}

// PostQuit interrupts a blocked PollEvent during shutdown.
func (s *Screen) PostQuit() {
	s.screen.PostEventWait(tcell.NewEventInterrupt(nil))
}

// Raw exposes the underlying tcell screen to widgets for drawing.
func (s *Screen) Raw() tcell.Screen {
	return s.screen
}

// drawText draws text clipped to the rectangle, starting at (x, y) in
// screen coordinates. Returns the x position after the last drawn cell.
func drawText(screen tcell.Screen, r Rect, x, y int, style tcell.Style, text string) int {
	if y < r.Y || y >= r.Y+r.Height {
		return x
	}
	for _, ch := range text {
		if x >= r.X+r.Width {
			break
		}
		if x >= r.X {
			screen.SetContent(x, y, ch, nil, style)
		}
		x++
	}
	return x
}

// fillLine fills one row of the rectangle with a rune.
func fillLine(screen tcell.Screen, r Rect, y int, style tcell.Style, ch rune) {
	if y < r.Y || y >= r.Y+r.Height {
		return
	}
	for x := r.X; x < r.X+r.Width; x++ {
		screen.SetContent(x, y, ch, nil, style)
	}
}
