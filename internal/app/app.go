// Package app provides the main application structure and coordination
// for the ugdb debugger. It wires together the configuration, the MI
// protocol engine, the session layer, the Lua runtime and the TUI, and
// manages the application lifecycle.
package app

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	"github.com/burrbull/ugdb/internal/config"
	"github.com/burrbull/ugdb/internal/gdb"
	"github.com/burrbull/ugdb/internal/gdbmi"
	"github.com/burrbull/ugdb/internal/layout"
	"github.com/burrbull/ugdb/internal/script"
	"github.com/burrbull/ugdb/internal/tui"
)

// Options configures the application.
type Options struct {
	// Config is the merged configuration.
	Config *config.Config

	// Executable is the debuggee binary to load on startup, "" for none.
	Executable string

	// ExecutableArgs are forwarded to gdb after the executable.
	ExecutableArgs []string

	// Logger receives application logs. Defaults to NullLogger.
	Logger *Logger
}

// Application is the central coordinator for all ugdb components.
type Application struct {
	opts   Options
	cfg    *config.Config
	logger *Logger

	screen     *tui.Screen
	layoutTree layout.Node
	panes      map[layout.Pane]tui.Rect

	console  *tui.Console
	srcview  *tui.SourceView
	exprs    *tui.ExpressionTable
	terminal *tui.TerminalPane
	focus    layout.Pane

	// lastStop is the most recent stop frame; event-loop goroutine only.
	lastStop *gdb.Frame

	engine  *gdbmi.Session
	session *gdb.Session
	scripts *script.Runtime
	pty     *tui.PTY

	// updates carries closures posted from the engine's reader goroutine
	// into the event loop.
	updates  *updateQueue
	running  atomic.Bool
	done     chan struct{}
	quitOnce sync.Once
}

// New creates an application from the given options. The terminal is not
// touched and gdb is not spawned until Run.
func New(opts Options) (*Application, error) {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = NullLogger
	}

	tree, err := layout.Parse(opts.Config.Layout())
	if err != nil {
		return nil, &InitError{Component: "layout", Err: err}
	}

	app := &Application{
		opts:       opts,
		cfg:        opts.Config,
		logger:     opts.Logger,
		layoutTree: tree,
		console:    tui.NewConsole(),
		srcview:    tui.NewSourceView(),
		exprs:      tui.NewExpressionTable(),
		terminal:   tui.NewTerminalPane(),
		focus:      layout.PaneConsole,
		updates:    newUpdateQueue(),
		done:       make(chan struct{}),
	}

	app.session = gdb.NewSession(gdb.Handlers{
		OnStateChanged:       app.onStateChanged,
		OnStopped:            app.onStopped,
		OnBreakpointsChanged: app.onBreakpointsChanged,
		OnTerminated:         app.onTerminated,
	})
	app.scripts = script.New(app)

	return app, nil
}

// Run starts gdb and the main loop. Blocks until quit.
func (app *Application) Run() error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)
	// Stops the event-polling goroutine on any exit path.
	defer app.Quit()

	screen, err := tui.NewScreen()
	if err != nil {
		return &InitError{Component: "terminal", Err: err}
	}
	app.screen = screen
	if err := app.screen.Init(); err != nil {
		return &InitError{Component: "terminal", Err: err}
	}
	defer app.screen.Fini()

	if err := app.startDebugger(); err != nil {
		return err
	}
	defer app.stopDebugger()

	if path := app.cfg.ScriptPath(); path != "" {
		if err := app.scripts.LoadFile(path); err != nil {
			app.logger.Warn("init script: %v", err)
			app.console.AppendLine(err.Error())
		}
	}
	defer app.scripts.Close()

	if app.opts.Executable != "" && len(app.opts.ExecutableArgs) == 0 {
		if err := app.session.LoadExecutable(app.opts.Executable); err != nil {
			app.console.AppendLine(err.Error())
		} else {
			app.console.AppendLine("Loaded " + app.opts.Executable)
		}
	}

	return app.eventLoop()
}

// Quit requests shutdown from outside the event loop.
func (app *Application) Quit() {
	app.quitOnce.Do(func() { close(app.done) })
}

// startDebugger allocates the debuggee pty and spawns gdb.
func (app *Application) startDebugger() error {
	gdbCfg := app.cfg.GDB()
	args := append([]string(nil), gdbCfg.Args...)
	// A debuggee with arguments must go on gdb's command line; MI's
	// file-exec-and-symbols cannot carry them.
	if app.opts.Executable != "" && len(app.opts.ExecutableArgs) > 0 {
		args = append(args, "--args", app.opts.Executable)
		args = append(args, app.opts.ExecutableArgs...)
	}

	spawn := gdbmi.Config{
		Path:   gdbCfg.Path,
		Args:   args,
		Stream: app,
		OnParseError: func(err error) {
			app.logger.Warn("mi parse: %v", err)
		},
	}

	if pty, err := tui.OpenPTY(); err == nil {
		app.pty = pty
		spawn.TTY = pty.SlavePath
		app.terminal.Attach(pty.Master)
		go app.forwardDebuggeeOutput(pty.Master)
	} else {
		// Without a pty the inferior's output lands in the console.
		app.logger.Warn("pty: %v", err)
	}

	engine, err := gdbmi.Spawn(spawn, app.session)
	if err != nil {
		return &InitError{Component: "gdb", Err: err}
	}
	app.engine = engine
	app.session.Bind(engine)
	app.logger.Info("spawned %s", gdbCfg.Path)

	// Observe gdb's exit so the UI can report the disconnect.
	go func() {
		<-engine.Done()
		app.post(func() {
			app.session.MarkDisconnected()
			app.console.AppendLine("gdb exited")
		})
	}()
	return nil
}

func (app *Application) stopDebugger() {
	if app.engine != nil {
		if err := app.engine.Close(); err != nil {
			app.logger.Warn("close gdb: %v", err)
		}
	}
	if app.pty != nil {
		_ = app.pty.Close()
	}
}

// forwardDebuggeeOutput pumps debuggee pty output into the terminal pane,
// nudging the event loop after each chunk so the pane repaints even while
// no key or notification arrives. Nudges coalesce, so a chatty debuggee
// costs at most one redraw per loop iteration.
func (app *Application) forwardDebuggeeOutput(r io.Reader) {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			_, _ = app.terminal.Write(buf[:n])
			app.updates.nudge()
		}
		if err != nil {
			return
		}
	}
}

// Stream implements gdbmi.StreamSink. Called on the reader goroutine.
func (app *Application) Stream(record gdbmi.StreamRecord) {
	switch record.Channel {
	case gdbmi.StreamConsole, gdbmi.StreamTarget:
		app.post(func() { app.console.Append(record.Text) })
	case gdbmi.StreamLog:
		app.logger.Debug("gdb: %s", record.Text)
	}
}

// post hands a closure to the event loop. Must not block: the caller is
// usually the engine's reader goroutine, and the event loop may be waiting
// inside Execute for the very result that follows the posted records.
func (app *Application) post(fn func()) {
	app.updates.push(fn)
}

// eventLoop multiplexes terminal events and posted updates, redrawing
// after each.
func (app *Application) eventLoop() error {
	events := app.startEventPolling()
	app.draw()

	for {
		select {
		case <-app.done:
			return nil
		case <-app.updates.notify:
			for _, fn := range app.updates.drain() {
				fn()
			}
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := app.handleEvent(ev); err != nil {
				if err == errQuit {
					return nil
				}
				return err
			}
		}
		app.draw()
	}
}

// startEventPolling polls terminal events on a dedicated goroutine.
// PollEvent blocks; Screen.PostQuit unblocks it during shutdown.
func (app *Application) startEventPolling() <-chan tcell.Event {
	events := make(chan tcell.Event, 16)
	go func() {
		defer close(events)
		for {
			ev := app.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-app.done:
				return
			}
		}
	}()
	return events
}

// draw renders all panes.
func (app *Application) draw() {
	width, height := app.screen.Size()
	app.panes = tui.Arrange(app.layoutTree, tui.Rect{Width: width, Height: height})
	raw := app.screen.Raw()
	raw.HideCursor()

	for pane, rect := range app.panes {
		focused := pane == app.focus
		switch pane {
		case layout.PaneConsole:
			app.console.Draw(raw, rect, focused)
		case layout.PaneSource:
			app.srcview.Draw(raw, rect, focused)
		case layout.PaneExpressions:
			app.exprs.Draw(raw, rect, focused)
		case layout.PaneTerminal:
			app.terminal.Draw(raw, rect, focused)
		}
	}
	app.screen.Show()
}
