// Package gdb tracks debugging session state on top of the MI protocol
// engine: execution state, breakpoints, stack frames and expression
// evaluation. It consumes the engine's out-of-band notifications and exposes
// typed operations to the UI layer.
package gdb

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/burrbull/ugdb/internal/gdbmi"
)

// State represents the session's view of the debuggee.
type State int

const (
	// StateIdle is before the debuggee has been started.
	StateIdle State = iota
	// StateRunning is while the debuggee executes.
	StateRunning
	// StateStopped is while the debuggee is stopped (breakpoint, signal...).
	StateStopped
	// StateTerminated is after the debuggee exited.
	StateTerminated
	// StateDisconnected is after gdb itself is gone.
	StateDisconnected
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateTerminated:
		return "terminated"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Engine is the protocol engine surface the session consumes.
// *gdbmi.Session satisfies it.
type Engine interface {
	Execute(command gdbmi.Command) (gdbmi.ResultRecord, error)
	ExecuteLater(command gdbmi.Command) error
	Interrupt() error
	IsRunning() bool
}

// StopEvent describes why and where the debuggee stopped.
type StopEvent struct {
	// Reason is gdb's stop reason, e.g. "breakpoint-hit" or "end-stepping-range".
	Reason string
	// Breakpoint is the breakpoint number for breakpoint stops, else 0.
	Breakpoint int
	// Frame is the stop position, when gdb reported one.
	Frame *Frame
}

// Handlers contains callbacks for session events. They are invoked from the
// engine's reader goroutine; implementations must hand off to their own
// thread before touching UI state.
type Handlers struct {
	// OnStateChanged is called whenever the session state changes.
	OnStateChanged func(old, new State)

	// OnStopped is called when the debuggee stops.
	OnStopped func(event StopEvent)

	// OnBreakpointsChanged is called after the breakpoint set changed.
	OnBreakpointsChanged func()

	// OnTerminated is called when the debuggee exits.
	OnTerminated func()
}

// Session tracks one debugging session. It implements gdbmi.OutOfBandSink;
// notification handling and the typed operations may run on different
// goroutines, so all mutable state is guarded.
type Session struct {
	mu       sync.Mutex
	engine   Engine
	state    State
	handlers Handlers

	breakpoints map[int]Breakpoint
}

// NewSession creates a session. Bind must be called with the protocol engine
// before any operation is used; notifications arriving before Bind only
// update internal state.
func NewSession(handlers Handlers) *Session {
	return &Session{
		handlers:    handlers,
		state:       StateIdle,
		breakpoints: make(map[int]Breakpoint),
	}
}

// Bind attaches the protocol engine.
func (s *Session) Bind(engine Engine) {
	s.mu.Lock()
	s.engine = engine
	s.mu.Unlock()
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Send implements gdbmi.OutOfBandSink. It is invoked from the engine's
// reader goroutine.
func (s *Session) Send(record gdbmi.OutOfBandRecord) {
	switch record.Channel {
	case gdbmi.ChannelExec:
		s.handleExec(record)
	case gdbmi.ChannelNotify:
		s.handleNotify(record)
	case gdbmi.ChannelStatus:
		// Progress records carry nothing the session tracks.
	}
}

// MarkDisconnected records that gdb itself is gone. Called by the owner when
// the engine reports EOF.
func (s *Session) MarkDisconnected() {
	s.setState(StateDisconnected)
}

func (s *Session) handleExec(record gdbmi.OutOfBandRecord) {
	switch record.Class {
	case "running":
		s.setState(StateRunning)
	case "stopped":
		reason := record.Payload.GetText("reason")
		if strings.HasPrefix(reason, "exited") {
			s.setState(StateTerminated)
			if s.handlers.OnTerminated != nil {
				s.handlers.OnTerminated()
			}
			return
		}
		s.setState(StateStopped)
		if s.handlers.OnStopped != nil {
			event := StopEvent{Reason: reason}
			if n, err := strconv.Atoi(record.Payload.GetText("bkptno")); err == nil {
				event.Breakpoint = n
			}
			if frameValue, ok := record.Payload.Get("frame"); ok {
				if frame, err := frameFromMap(frameValue.Map()); err == nil {
					event.Frame = &frame
				}
			}
			s.handlers.OnStopped(event)
		}
	}
}

func (s *Session) handleNotify(record gdbmi.OutOfBandRecord) {
	switch record.Class {
	case "breakpoint-created", "breakpoint-modified":
		bkptValue, ok := record.Payload.Get("bkpt")
		if !ok {
			return
		}
		bp, err := breakpointFromMap(bkptValue.Map())
		if err != nil {
			return
		}
		s.mu.Lock()
		s.breakpoints[bp.Number] = bp
		s.mu.Unlock()
		s.notifyBreakpointsChanged()
	case "breakpoint-deleted":
		id, err := strconv.Atoi(record.Payload.GetText("id"))
		if err != nil {
			return
		}
		s.mu.Lock()
		delete(s.breakpoints, id)
		s.mu.Unlock()
		s.notifyBreakpointsChanged()
	}
}

func (s *Session) setState(next State) {
	s.mu.Lock()
	old := s.state
	s.state = next
	s.mu.Unlock()
	if old != next && s.handlers.OnStateChanged != nil {
		s.handlers.OnStateChanged(old, next)
	}
}

func (s *Session) notifyBreakpointsChanged() {
	if s.handlers.OnBreakpointsChanged != nil {
		s.handlers.OnBreakpointsChanged()
	}
}

// --- Execution control ---

// Run starts the debuggee from the beginning.
func (s *Session) Run() error { return s.execControl(gdbmi.ExecRun()) }

// Continue resumes the debuggee.
func (s *Session) Continue() error { return s.execControl(gdbmi.ExecContinue()) }

// Next steps over the next source line.
func (s *Session) Next() error { return s.execControl(gdbmi.ExecNext()) }

// Step steps into the next source line.
func (s *Session) Step() error { return s.execControl(gdbmi.ExecStep()) }

// Finish runs until the current function returns.
func (s *Session) Finish() error { return s.execControl(gdbmi.ExecFinish()) }

// StepInstruction steps one machine instruction.
func (s *Session) StepInstruction() error {
	return s.execControl(gdbmi.ExecStepInstruction())
}

// NextInstruction steps over one machine instruction.
func (s *Session) NextInstruction() error {
	return s.execControl(gdbmi.ExecNextInstruction())
}

// Interrupt breaks a running execution.
func (s *Session) Interrupt() error {
	engine, err := s.currentEngine()
	if err != nil {
		return err
	}
	return engine.Interrupt()
}

// IsRunning reports whether the debuggee is executing right now.
func (s *Session) IsRunning() bool {
	engine, err := s.currentEngine()
	if err != nil {
		return false
	}
	return engine.IsRunning()
}

// LoadExecutable loads a binary and its symbols.
func (s *Session) LoadExecutable(path string) error {
	_, err := s.execute(gdbmi.FileExecAndSymbols(path))
	return err
}

// Evaluate evaluates an expression in the current frame and returns gdb's
// rendering of the value.
func (s *Session) Evaluate(expression string) (string, error) {
	record, err := s.execute(gdbmi.DataEvaluateExpression(expression))
	if err != nil {
		return "", err
	}
	return record.Payload.GetText("value"), nil
}

// Raw executes an arbitrary MI operation with string parameters and returns
// the decoded reply payload. The scripting layer builds on this.
func (s *Session) Raw(operation string, params ...string) (*gdbmi.Map, error) {
	command := gdbmi.NewCommand(operation)
	for _, param := range params {
		command = command.WithStringParam(param)
	}
	record, err := s.execute(command)
	if err != nil {
		return nil, err
	}
	return record.Payload, nil
}

// ConsoleCommand runs a verbatim console command through the MI interpreter
// bridge. The textual output arrives on the console stream channel, not in
// the result record.
func (s *Session) ConsoleCommand(command string) error {
	_, err := s.execute(gdbmi.InterpreterExec("console", command))
	return err
}

func (s *Session) execControl(command gdbmi.Command) error {
	_, err := s.execute(command)
	return err
}

func (s *Session) currentEngine() (Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return nil, fmt.Errorf("gdb: session not bound to an engine")
	}
	return s.engine, nil
}

// execute runs a command and converts an error-class reply into a
// *CommandError. ErrBusy and ErrQuit from the engine pass through unchanged.
func (s *Session) execute(command gdbmi.Command) (gdbmi.ResultRecord, error) {
	engine, err := s.currentEngine()
	if err != nil {
		return gdbmi.ResultRecord{}, err
	}
	record, err := engine.Execute(command)
	if err != nil {
		return gdbmi.ResultRecord{}, err
	}
	if record.Class == gdbmi.ResultError {
		return record, &CommandError{
			Operation: command.Operation,
			Msg:       record.Payload.GetText("msg"),
		}
	}
	return record, nil
}

// CommandError is gdb's error reply to a command.
type CommandError struct {
	Operation string
	Msg       string
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("gdb: %s failed", e.Operation)
	}
	return fmt.Sprintf("gdb: %s: %s", e.Operation, e.Msg)
}
