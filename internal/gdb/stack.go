package gdb

import (
	"fmt"

	"github.com/burrbull/ugdb/internal/gdbmi"
)

// Frame is one stack frame position.
type Frame struct {
	// Level is the frame's depth; 0 is the innermost frame.
	Level int
	// Address is the program counter within the frame.
	Address uint64
	// Function is the function name, "" when unknown.
	Function string
	// File is the source file as reported by gdb, "" when unknown.
	File string
	// FullName is the absolute source path, "" when unknown.
	FullName string
	// Line is the 1-based source line, 0 when unknown.
	Line int
}

// SourcePath returns the best available source path for the frame.
func (f Frame) SourcePath() string {
	if f.FullName != "" {
		return f.FullName
	}
	return f.File
}

// StackFrames lists the current thread's frames, innermost first.
func (s *Session) StackFrames() ([]Frame, error) {
	record, err := s.execute(gdbmi.StackListFrames())
	if err != nil {
		return nil, err
	}
	stackValue, ok := record.Payload.Get("stack")
	if !ok {
		return nil, fmt.Errorf("gdb: stack reply without stack field")
	}
	frames := make([]Frame, 0, len(stackValue.List()))
	for _, item := range stackValue.List() {
		frame, err := frameFromMap(item.Map())
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

// CurrentFrame describes the currently selected frame.
func (s *Session) CurrentFrame() (Frame, error) {
	record, err := s.execute(gdbmi.StackInfoFrame())
	if err != nil {
		return Frame{}, err
	}
	frameValue, ok := record.Payload.Get("frame")
	if !ok {
		return Frame{}, fmt.Errorf("gdb: frame reply without frame field")
	}
	return frameFromMap(frameValue.Map())
}

// SelectFrame switches the selected frame to the given level.
func (s *Session) SelectFrame(level int) error {
	_, err := s.execute(gdbmi.StackSelectFrame(level))
	return err
}

// frameFromMap decodes a frame tuple. All numeric fields arrive as text in
// the value model and are coerced here.
func frameFromMap(m *gdbmi.Map) (Frame, error) {
	if m == nil {
		return Frame{}, fmt.Errorf("gdb: frame is not a tuple")
	}
	frame := Frame{
		Function: m.GetText("func"),
		File:     m.GetText("file"),
		FullName: m.GetText("fullname"),
	}
	if v, ok := m.Get("level"); ok {
		level, err := v.Int()
		if err != nil {
			return Frame{}, fmt.Errorf("gdb: bad frame level: %w", err)
		}
		frame.Level = level
	}
	if v, ok := m.Get("addr"); ok {
		addr, err := v.Uint()
		if err != nil {
			return Frame{}, fmt.Errorf("gdb: bad frame address: %w", err)
		}
		frame.Address = addr
	}
	if v, ok := m.Get("line"); ok {
		line, err := v.Int()
		if err != nil {
			return Frame{}, fmt.Errorf("gdb: bad frame line: %w", err)
		}
		frame.Line = line
	}
	return frame, nil
}
