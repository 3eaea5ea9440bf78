package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyRune(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func typeString(t *testing.T, handle func(*tcell.EventKey) (string, bool), s string) {
	t.Helper()
	for _, r := range s {
		_, submitted := handle(keyRune(r))
		require.False(t, submitted)
	}
}

// simScreen creates an initialized simulation screen of the given size.
func simScreen(t *testing.T, width, height int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(width, height)
	t.Cleanup(screen.Fini)
	return screen
}

// rowText extracts one row of the simulation screen as a trimmed string.
func rowText(screen tcell.SimulationScreen, y int) string {
	cells, width, _ := screen.GetContents()
	var sb strings.Builder
	for x := 0; x < width; x++ {
		cell := cells[y*width+x]
		if len(cell.Runes) > 0 {
			sb.WriteRune(cell.Runes[0])
		} else {
			sb.WriteRune(' ')
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

func TestConsoleInputEditing(t *testing.T) {
	c := NewConsole()
	typeString(t, c.HandleKey, "break main")
	assert.Equal(t, "break main", c.InputLine())

	// Cursor movement and deletion.
	c.HandleKey(key(tcell.KeyLeft))
	c.HandleKey(key(tcell.KeyBackspace2))
	assert.Equal(t, "break man", c.InputLine())

	line, submitted := c.HandleKey(key(tcell.KeyEnter))
	assert.True(t, submitted)
	assert.Equal(t, "break man", line)
	assert.Equal(t, "", c.InputLine())

	// The submitted command is echoed into the scrollback.
	lines := c.Lines()
	require.NotEmpty(t, lines)
	assert.Equal(t, "(gdb) break man", lines[len(lines)-1])
}

func TestConsoleHistory(t *testing.T) {
	c := NewConsole()
	typeString(t, c.HandleKey, "run")
	c.HandleKey(key(tcell.KeyEnter))
	typeString(t, c.HandleKey, "next")
	c.HandleKey(key(tcell.KeyEnter))

	c.HandleKey(key(tcell.KeyUp))
	assert.Equal(t, "next", c.InputLine())
	c.HandleKey(key(tcell.KeyUp))
	assert.Equal(t, "run", c.InputLine())
	c.HandleKey(key(tcell.KeyDown))
	assert.Equal(t, "next", c.InputLine())
	c.HandleKey(key(tcell.KeyDown))
	assert.Equal(t, "", c.InputLine())
}

func TestConsoleAppendBuffersPartialLines(t *testing.T) {
	c := NewConsole()
	c.Append("Reading symbols")
	assert.Empty(t, c.Lines())
	c.Append(" from ./a.out...\ndone\n")
	assert.Equal(t, []string{"Reading symbols from ./a.out...", "done"}, c.Lines())
}

func TestConsoleDraw(t *testing.T) {
	screen := simScreen(t, 30, 5)
	c := NewConsole()
	c.AppendLine("hello from gdb")
	typeString(t, c.HandleKey, "info br")

	c.Draw(screen, Rect{X: 0, Y: 0, Width: 30, Height: 5}, true)
	screen.Show()

	assert.Equal(t, "hello from gdb", rowText(screen, 0))
	assert.Equal(t, "(gdb) info br", rowText(screen, 4))
}

func TestTerminalPaneSplitsOutput(t *testing.T) {
	p := NewTerminalPane()
	_, err := p.Write([]byte("hello\r\nworld\npartial"))
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "world"}, p.Lines())

	_, err = p.Write([]byte(" done\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "world", "partial done"}, p.Lines())
}

type recordingWriter struct{ data []byte }

func (w *recordingWriter) Write(p []byte) (int, error) {
	w.data = append(w.data, p...)
	return len(p), nil
}

func TestTerminalPaneForwardsKeys(t *testing.T) {
	p := NewTerminalPane()
	w := &recordingWriter{}
	p.Attach(w)

	p.HandleKey(keyRune('l'))
	p.HandleKey(keyRune('s'))
	p.HandleKey(key(tcell.KeyEnter))
	p.HandleKey(key(tcell.KeyCtrlC))
	assert.Equal(t, []byte{'l', 's', '\n', 0x03}, w.data)
}

func TestExpressionTableAddRefreshRemove(t *testing.T) {
	table := NewExpressionTable()
	typeString(t, table.HandleKey, "argc")
	expr, submitted := table.HandleKey(key(tcell.KeyEnter))
	require.True(t, submitted)
	assert.Equal(t, "argc", expr)
	table.Add("bogus")

	table.Refresh(func(expr string) (string, error) {
		if expr == "bogus" {
			return "", fmt.Errorf(`No symbol "bogus" in current context.`)
		}
		return "1", nil
	})

	entries := table.Expressions()
	require.Len(t, entries, 2)
	assert.Equal(t, "1", entries[0].Value)
	assert.Empty(t, entries[0].Err)
	assert.Contains(t, entries[1].Err, "No symbol")

	// Delete removes the selected entry when the input row is empty.
	table.HandleKey(key(tcell.KeyDelete))
	entries = table.Expressions()
	require.Len(t, entries, 1)
	assert.Equal(t, "bogus", entries[0].Expr)
}

func TestSourceViewLoadAndStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.c")
	var content strings.Builder
	for i := 1; i <= 50; i++ {
		fmt.Fprintf(&content, "line %d\n", i)
	}
	require.NoError(t, os.WriteFile(path, []byte(content.String()), 0o644))

	v := NewSourceView()
	require.NoError(t, v.Load(path))
	assert.Equal(t, path, v.Path())

	v.SetStop(30, 0x1149)
	r := Rect{X: 0, Y: 0, Width: 40, Height: 20}
	// The stop line is visible after centering.
	found := false
	for y := 0; y < r.Height; y++ {
		if v.LineAt(r, y) == 30 {
			found = true
		}
	}
	assert.True(t, found)

	// Scrolling clamps at both ends.
	v.Scroll(-1000)
	assert.Equal(t, 1, v.LineAt(r, 0))
	v.Scroll(1000)
	assert.Equal(t, 50, v.LineAt(r, 0))
	assert.Equal(t, 0, v.LineAt(r, 5))
}

func TestSourceViewDrawMarksBreakpoints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.c")
	require.NoError(t, os.WriteFile(path, []byte("int main() {\n\treturn 0;\n}\n"), 0o644))

	v := NewSourceView()
	require.NoError(t, v.Load(path))
	v.SetBreakpoints(map[int]bool{2: true})

	screen := simScreen(t, 40, 4)
	v.Draw(screen, Rect{X: 0, Y: 0, Width: 40, Height: 4}, false)
	screen.Show()

	assert.Equal(t, "  1 int main() {", rowText(screen, 0))
	assert.Equal(t, "* 2     return 0;", rowText(screen, 1))
	assert.Equal(t, "  3 }", rowText(screen, 2))
	assert.Equal(t, "~", rowText(screen, 3))
}

func TestSourceViewModeToggle(t *testing.T) {
	v := NewSourceView()
	assert.Equal(t, ModeSource, v.Mode())
	v.ToggleMode()
	assert.Equal(t, ModeAssembly, v.Mode())
	v.SetAssembly([]AsmLine{{Address: 0x1149, Text: "push %rbp"}})
	v.ToggleMode()
	assert.Equal(t, ModeSource, v.Mode())
}
