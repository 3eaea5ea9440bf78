package gdbmi

import "fmt"

// Location identifies where a breakpoint is placed.
type Location struct {
	spec string
}

// LocationAddress places a breakpoint at a machine address.
func LocationAddress(address uint64) Location {
	return Location{spec: fmt.Sprintf("*0x%x", address)}
}

// LocationFunction places a breakpoint at the entry of a function.
func LocationFunction(name string) Location {
	return Location{spec: name}
}

// LocationLine places a breakpoint at a file:line position.
func LocationLine(file string, line int) Location {
	return Location{spec: fmt.Sprintf("%s:%d", file, line)}
}

// String returns the gdb linespec.
func (l Location) String() string { return l.spec }

// DisassembleMode selects the form of -data-disassemble output.
type DisassembleMode int

const (
	// DisassembleModeOnly yields plain disassembly.
	DisassembleModeOnly DisassembleMode = 0
	// DisassembleModeOpcodes yields disassembly with raw opcodes.
	DisassembleModeOpcodes DisassembleMode = 2
	// DisassembleModeMixed yields disassembly interleaved with source lines.
	DisassembleModeMixed DisassembleMode = 4
)

// ExecRun starts the debuggee from the beginning.
func ExecRun() Command { return NewCommand("exec-run") }

// ExecContinue resumes the debuggee.
func ExecContinue() Command { return NewCommand("exec-continue") }

// ExecNext steps over the next source line.
func ExecNext() Command { return NewCommand("exec-next") }

// ExecStep steps into the next source line.
func ExecStep() Command { return NewCommand("exec-step") }

// ExecFinish runs until the current function returns.
func ExecFinish() Command { return NewCommand("exec-finish") }

// ExecNextInstruction steps over one machine instruction.
func ExecNextInstruction() Command { return NewCommand("exec-next-instruction") }

// ExecStepInstruction steps one machine instruction.
func ExecStepInstruction() Command { return NewCommand("exec-step-instruction") }

// ExecInterrupt asks gdb to interrupt the debuggee. Session.Interrupt, which
// delivers SIGINT instead, is the reliable way to break a running execution;
// this command only works in async mode.
func ExecInterrupt() Command { return NewCommand("exec-interrupt") }

// BreakInsert places a breakpoint at the given location.
func BreakInsert(location Location) Command {
	return NewCommand("break-insert").WithStringParam(location.spec)
}

// BreakInsertConditional places a breakpoint that only triggers when the
// condition expression evaluates true.
func BreakInsertConditional(location Location, condition string) Command {
	return NewCommand("break-insert").
		WithOptionValue("-c", NewString(condition)).
		WithStringParam(location.spec)
}

// BreakDelete removes the numbered breakpoints.
func BreakDelete(numbers ...int) Command {
	c := NewCommand("break-delete")
	for _, n := range numbers {
		c = c.WithParam(NewInt(n))
	}
	return c
}

// BreakEnable enables the numbered breakpoints.
func BreakEnable(numbers ...int) Command {
	c := NewCommand("break-enable")
	for _, n := range numbers {
		c = c.WithParam(NewInt(n))
	}
	return c
}

// BreakDisable disables the numbered breakpoints.
func BreakDisable(numbers ...int) Command {
	c := NewCommand("break-disable")
	for _, n := range numbers {
		c = c.WithParam(NewInt(n))
	}
	return c
}

// StackListFrames lists the frames of the current thread's stack.
func StackListFrames() Command { return NewCommand("stack-list-frames") }

// StackInfoFrame describes the currently selected frame.
func StackInfoFrame() Command { return NewCommand("stack-info-frame") }

// StackSelectFrame selects the frame at the given level.
func StackSelectFrame(level int) Command {
	return NewCommand("stack-select-frame").WithParam(NewInt(level))
}

// DataEvaluateExpression evaluates an expression in the current frame.
func DataEvaluateExpression(expression string) Command {
	return NewCommand("data-evaluate-expression").WithStringParam(expression)
}

// DataDisassembleFile disassembles the function around file:line. The
// -f/-l flags and the "--" separator are positional for this operation;
// gdb rejects the flag=value option form here.
func DataDisassembleFile(file string, line int, mode DisassembleMode) Command {
	return NewCommand("data-disassemble").
		WithRawParam("-f").
		WithStringParam(file).
		WithRawParam("-l").
		WithParam(NewInt(line)).
		WithRawParam("--").
		WithParam(NewInt(int(mode)))
}

// DataDisassembleAddress disassembles the half-open address range
// [start, end).
func DataDisassembleAddress(start, end uint64, mode DisassembleMode) Command {
	return NewCommand("data-disassemble").
		WithRawParam("-s").
		WithRawParam(fmt.Sprintf("0x%x", start)).
		WithRawParam("-e").
		WithRawParam(fmt.Sprintf("0x%x", end)).
		WithRawParam("--").
		WithParam(NewInt(int(mode)))
}

// FileExecAndSymbols loads an executable and its symbols.
func FileExecAndSymbols(path string) Command {
	return NewCommand("file-exec-and-symbols").WithStringParam(path)
}

// InterpreterExec runs a command under another gdb interpreter, typically
// "console" for verbatim user input from the console widget.
func InterpreterExec(interpreter, command string) Command {
	return NewCommand("interpreter-exec").
		WithStringParam(interpreter).
		WithStringParam(command)
}

// GDBSet changes a gdb setting.
func GDBSet(name, value string) Command {
	return NewCommand("gdb-set").
		WithStringParam(name).
		WithStringParam(value)
}

// GDBExit asks gdb to terminate.
func GDBExit() Command { return NewCommand("gdb-exit") }
