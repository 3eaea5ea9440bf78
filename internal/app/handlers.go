package app

import (
	"errors"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/burrbull/ugdb/internal/gdb"
	"github.com/burrbull/ugdb/internal/gdbmi"
	"github.com/burrbull/ugdb/internal/layout"
	"github.com/burrbull/ugdb/internal/tui"
)

// focusOrder is the Tab cycling order; panes absent from the layout are
// skipped.
var focusOrder = []layout.Pane{
	layout.PaneConsole,
	layout.PaneSource,
	layout.PaneExpressions,
	layout.PaneTerminal,
}

// handleEvent processes one terminal event. Returns errQuit to exit.
func (app *Application) handleEvent(ev tcell.Event) error {
	switch e := ev.(type) {
	case *tcell.EventResize:
		app.screen.Clear()
		return nil
	case *tcell.EventMouse:
		app.handleMouse(e)
		return nil
	case *tcell.EventKey:
		return app.handleKey(e)
	default:
		return nil
	}
}

// handleKey routes global shortcuts first, then the focused pane.
func (app *Application) handleKey(ev *tcell.EventKey) error {
	switch ev.Key() {
	case tcell.KeyCtrlQ:
		return errQuit
	case tcell.KeyTab:
		if app.focus != layout.PaneTerminal {
			app.cycleFocus()
			return nil
		}
	case tcell.KeyEscape:
		// Escape always escapes the terminal pane.
		if app.focus == layout.PaneTerminal {
			app.cycleFocus()
			return nil
		}
	case tcell.KeyF5:
		app.runOrContinue()
		return nil
	case tcell.KeyF6:
		app.reportCommand(app.session.Interrupt())
		return nil
	case tcell.KeyF10:
		app.reportCommand(app.session.Next())
		return nil
	case tcell.KeyF11:
		app.reportCommand(app.session.Step())
		return nil
	case tcell.KeyF12:
		app.reportCommand(app.session.Finish())
		return nil
	case tcell.KeyCtrlT:
		app.toggleAssembly()
		return nil
	}

	switch app.focus {
	case layout.PaneConsole:
		if line, submitted := app.console.HandleKey(ev); submitted {
			return app.dispatchConsole(line)
		}
	case layout.PaneExpressions:
		if _, submitted := app.exprs.HandleKey(ev); submitted {
			app.refreshExpressions()
		}
	case layout.PaneTerminal:
		app.terminal.HandleKey(ev)
	case layout.PaneSource:
		app.handleSourceKey(ev)
	}
	return nil
}

func (app *Application) handleSourceKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyUp:
		app.srcview.Scroll(-1)
	case tcell.KeyDown:
		app.srcview.Scroll(1)
	case tcell.KeyPgUp:
		app.srcview.Scroll(-20)
	case tcell.KeyPgDn:
		app.srcview.Scroll(20)
	}
}

// handleMouse toggles breakpoints on source line clicks.
func (app *Application) handleMouse(ev *tcell.EventMouse) {
	if ev.Buttons()&tcell.Button1 == 0 {
		return
	}
	x, y := ev.Position()
	rect, ok := app.panes[layout.PaneSource]
	if !ok || !rect.Contains(x, y) {
		return
	}
	app.focus = layout.PaneSource
	line := app.srcview.LineAt(rect, y)
	if line == 0 || app.srcview.Path() == "" {
		return
	}
	app.reportCommand(app.session.ToggleBreakpoint(app.srcview.Path(), line))
}

func (app *Application) cycleFocus() {
	idx := 0
	for i, pane := range focusOrder {
		if pane == app.focus {
			idx = i
			break
		}
	}
	for range focusOrder {
		idx = (idx + 1) % len(focusOrder)
		if _, ok := app.panes[focusOrder[idx]]; ok {
			app.focus = focusOrder[idx]
			return
		}
	}
}

func (app *Application) runOrContinue() {
	if app.session.State() == gdb.StateStopped {
		app.reportCommand(app.session.Continue())
		return
	}
	app.reportCommand(app.session.Run())
}

// dispatchConsole routes a submitted console line: built-ins first, then
// Lua commands, then gdb.
func (app *Application) dispatchConsole(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	words := strings.Fields(line)
	switch words[0] {
	case "quit", "q":
		return errQuit
	case "lua":
		source := strings.TrimSpace(strings.TrimPrefix(line, "lua"))
		if err := app.scripts.LoadString(source); err != nil {
			app.console.AppendLine(err.Error())
		}
		return nil
	}
	if app.scripts.HasCommand(words[0]) {
		if err := app.scripts.RunCommand(words[0], words[1:]); err != nil {
			app.console.AppendLine(err.Error())
		}
		return nil
	}
	app.reportCommand(app.session.ConsoleCommand(line))
	return nil
}

// reportCommand surfaces a command failure in the console. Busy errors are
// common (typing while the debuggee runs) and reported tersely.
func (app *Application) reportCommand(err error) {
	switch {
	case err == nil:
	case errors.Is(err, gdbmi.ErrBusy):
		app.console.AppendLine("target is running, interrupt first (F6)")
	case errors.Is(err, gdbmi.ErrQuit):
		app.console.AppendLine("gdb is gone")
	default:
		app.console.AppendLine(err.Error())
	}
}

// toggleAssembly flips the source view; entering assembly mode fetches the
// disassembly of the function around the last stop.
func (app *Application) toggleAssembly() {
	app.srcview.ToggleMode()
	if app.srcview.Mode() != tui.ModeAssembly {
		return
	}
	frame := app.lastStop
	if frame == nil || frame.SourcePath() == "" {
		return
	}
	instructions, err := app.session.DisassembleFile(frame.SourcePath(), frame.Line)
	if err != nil {
		app.reportCommand(err)
		return
	}
	lines := make([]tui.AsmLine, len(instructions))
	for i, inst := range instructions {
		lines[i] = tui.AsmLine{Address: inst.Address, Text: inst.Text}
	}
	app.srcview.SetAssembly(lines)
	app.srcview.SetStop(frame.Line, frame.Address)
}

func (app *Application) refreshExpressions() {
	app.exprs.Refresh(app.session.Evaluate)
}

// --- gdb session callbacks; all run on the engine's reader goroutine ---

func (app *Application) onStateChanged(old, next gdb.State) {
	app.logger.Debug("state %s -> %s", old, next)
	if next == gdb.StateRunning {
		app.post(app.srcview.ClearStop)
	}
}

func (app *Application) onStopped(event gdb.StopEvent) {
	app.post(func() {
		app.lastStop = event.Frame
		if event.Frame != nil {
			if path := event.Frame.SourcePath(); path != "" {
				if err := app.srcview.Load(path); err != nil {
					app.console.AppendLine(err.Error())
				}
				app.srcview.SetBreakpoints(app.session.BreakpointLines(path))
			}
			app.srcview.SetStop(event.Frame.Line, event.Frame.Address)
		}
		app.refreshExpressions()
	})
}

func (app *Application) onBreakpointsChanged() {
	app.post(func() {
		if path := app.srcview.Path(); path != "" {
			app.srcview.SetBreakpoints(app.session.BreakpointLines(path))
		}
	})
}

func (app *Application) onTerminated() {
	app.post(func() {
		app.lastStop = nil
		app.srcview.ClearStop()
		app.console.AppendLine("Debuggee terminated.")
	})
}

// --- script.Host ---

// ConsoleCommand implements script.Host.
func (app *Application) ConsoleCommand(command string) error {
	return app.session.ConsoleCommand(command)
}

// Evaluate implements script.Host.
func (app *Application) Evaluate(expression string) (string, error) {
	return app.session.Evaluate(expression)
}

// ToggleBreakpoint implements script.Host.
func (app *Application) ToggleBreakpoint(file string, line int) error {
	return app.session.ToggleBreakpoint(file, line)
}

// MI implements script.Host.
func (app *Application) MI(operation string, params ...string) (*gdbmi.Map, error) {
	return app.session.Raw(operation, params...)
}

// Print implements script.Host.
func (app *Application) Print(text string) {
	app.console.AppendLine(text)
}
