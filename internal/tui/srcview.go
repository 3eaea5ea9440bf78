package tui

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
)

// ViewMode selects what the source view shows.
type ViewMode int

const (
	// ModeSource shows source lines.
	ModeSource ViewMode = iota
	// ModeAssembly shows disassembled instructions.
	ModeAssembly
)

// AsmLine is one disassembled instruction.
type AsmLine struct {
	Address uint64
	Text    string
}

// SourceView shows the file around the current stop position, with
// breakpoint markers in the gutter and the stop line highlighted. It can be
// flipped to an assembly view of the same location.
type SourceView struct {
	mu   sync.Mutex
	mode ViewMode

	path  string
	lines []string

	asm []AsmLine

	// stopLine is 1-based, 0 when the debuggee is not stopped here.
	stopLine int
	stopAddr uint64

	breakpoints map[int]bool

	scroll int
}

// NewSourceView creates an empty source view.
func NewSourceView() *SourceView {
	return &SourceView{breakpoints: make(map[int]bool)}
}

// Load reads a source file and resets the view to its top. Loading the
// already shown path keeps the scroll position.
func (v *SourceView) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("srcview: %w", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	v.mu.Lock()
	defer v.mu.Unlock()
	if path != v.path {
		v.scroll = 0
	}
	v.path = path
	v.lines = lines
	v.stopLine = 0
	return nil
}

// Path returns the shown file path, "" when nothing is loaded.
func (v *SourceView) Path() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.path
}

// Mode returns the current view mode.
func (v *SourceView) Mode() ViewMode {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mode
}

// ToggleMode flips between source and assembly.
func (v *SourceView) ToggleMode() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mode == ModeSource {
		v.mode = ModeAssembly
	} else {
		v.mode = ModeSource
	}
}

// SetAssembly replaces the assembly listing.
func (v *SourceView) SetAssembly(lines []AsmLine) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.asm = lines
}

// SetStop marks the stop position and scrolls it into view. line is
// 1-based; addr selects the instruction in assembly mode.
func (v *SourceView) SetStop(line int, addr uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stopLine = line
	v.stopAddr = addr
	v.centerLocked(line - 1)
}

// ClearStop removes the stop marker, e.g. when the debuggee resumes.
func (v *SourceView) ClearStop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stopLine = 0
	v.stopAddr = 0
}

// SetBreakpoints replaces the set of 1-based lines carrying a breakpoint
// marker.
func (v *SourceView) SetBreakpoints(lines map[int]bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.breakpoints = lines
}

// Scroll moves the view by delta lines; negative is up.
func (v *SourceView) Scroll(delta int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scroll += delta
	v.clampLocked()
}

// LineAt translates a screen row inside the last drawn rectangle into a
// 1-based source line, for mouse breakpoint toggling. Returns 0 when the
// row is past the end of the file.
func (v *SourceView) LineAt(r Rect, y int) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	line := v.scroll + (y - r.Y) + 1
	if line < 1 || line > len(v.lines) {
		return 0
	}
	return line
}

func (v *SourceView) centerLocked(row int) {
	// Half a typical pane above the target; clamped on draw.
	v.scroll = row - 10
	v.clampLocked()
}

func (v *SourceView) clampLocked() {
	max := len(v.lines) - 1
	if v.mode == ModeAssembly {
		max = len(v.asm) - 1
	}
	if v.scroll > max {
		v.scroll = max
	}
	if v.scroll < 0 {
		v.scroll = 0
	}
}

// Draw renders the view into the rectangle.
func (v *SourceView) Draw(screen tcell.Screen, r Rect, focused bool) {
	if r.Empty() {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mode == ModeAssembly {
		v.drawAssembly(screen, r)
		return
	}
	v.drawSource(screen, r)
}

func (v *SourceView) drawSource(screen tcell.Screen, r Rect) {
	style := tcell.StyleDefault
	gutterWidth := len(fmt.Sprintf("%d", len(v.lines))) + 3
	for row := 0; row < r.Height; row++ {
		y := r.Y + row
		idx := v.scroll + row
		fillLine(screen, r, y, style, ' ')
		if idx >= len(v.lines) {
			drawText(screen, r, r.X, y, style.Dim(true), "~")
			continue
		}
		lineNo := idx + 1
		lineStyle := style
		if lineNo == v.stopLine {
			lineStyle = style.Reverse(true)
			fillLine(screen, r, y, lineStyle, ' ')
		}
		marker := ' '
		if v.breakpoints[lineNo] {
			marker = '*'
		}
		gutter := fmt.Sprintf("%c%*d ", marker, gutterWidth-2, lineNo)
		gutterStyle := lineStyle.Dim(true)
		if marker == '*' {
			gutterStyle = lineStyle.Foreground(tcell.ColorRed)
		}
		x := drawText(screen, r, r.X, y, gutterStyle, gutter)
		drawText(screen, r, x, y, lineStyle, expandTabs(v.lines[idx]))
	}
}

func (v *SourceView) drawAssembly(screen tcell.Screen, r Rect) {
	style := tcell.StyleDefault
	for row := 0; row < r.Height; row++ {
		y := r.Y + row
		idx := v.scroll + row
		fillLine(screen, r, y, style, ' ')
		if idx >= len(v.asm) {
			drawText(screen, r, r.X, y, style.Dim(true), "~")
			continue
		}
		line := v.asm[idx]
		lineStyle := style
		if v.stopAddr != 0 && line.Address == v.stopAddr {
			lineStyle = style.Reverse(true)
			fillLine(screen, r, y, lineStyle, ' ')
		}
		x := drawText(screen, r, r.X, y, lineStyle.Dim(true), fmt.Sprintf("0x%08x  ", line.Address))
		drawText(screen, r, x, y, lineStyle, line.Text)
	}
}

func expandTabs(line string) string {
	if !strings.ContainsRune(line, '\t') {
		return line
	}
	return strings.ReplaceAll(line, "\t", "    ")
}
