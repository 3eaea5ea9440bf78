package gdb

import (
	"fmt"
	"sort"

	"github.com/burrbull/ugdb/internal/gdbmi"
)

// Breakpoint is one breakpoint as last reported by gdb. The session cache is
// kept current from both command replies and asynchronous
// breakpoint-created/-modified/-deleted notifications.
type Breakpoint struct {
	// Number is gdb's breakpoint number.
	Number int
	// Enabled reports whether the breakpoint currently triggers.
	Enabled bool
	// Address is the resolved machine address, 0 while pending.
	Address uint64
	// Function is the containing function, "" when unknown.
	Function string
	// File is the source file as reported by gdb.
	File string
	// FullName is the absolute source path.
	FullName string
	// Line is the 1-based source line, 0 when unknown.
	Line int
	// Condition is the trigger condition, "" for unconditional breakpoints.
	Condition string
	// HitCount is how often the breakpoint has triggered.
	HitCount int
}

// SourcePath returns the best available source path for the breakpoint.
func (b Breakpoint) SourcePath() string {
	if b.FullName != "" {
		return b.FullName
	}
	return b.File
}

// InsertBreakpoint places a breakpoint and returns gdb's view of it.
func (s *Session) InsertBreakpoint(location gdbmi.Location) (Breakpoint, error) {
	return s.insertBreakpoint(gdbmi.BreakInsert(location))
}

// InsertConditionalBreakpoint places a breakpoint with a trigger condition.
func (s *Session) InsertConditionalBreakpoint(location gdbmi.Location, condition string) (Breakpoint, error) {
	return s.insertBreakpoint(gdbmi.BreakInsertConditional(location, condition))
}

func (s *Session) insertBreakpoint(command gdbmi.Command) (Breakpoint, error) {
	record, err := s.execute(command)
	if err != nil {
		return Breakpoint{}, err
	}
	bkptValue, ok := record.Payload.Get("bkpt")
	if !ok {
		return Breakpoint{}, fmt.Errorf("gdb: break-insert reply without bkpt field")
	}
	bp, err := breakpointFromMap(bkptValue.Map())
	if err != nil {
		return Breakpoint{}, err
	}
	s.mu.Lock()
	s.breakpoints[bp.Number] = bp
	s.mu.Unlock()
	s.notifyBreakpointsChanged()
	return bp, nil
}

// DeleteBreakpoint removes a breakpoint.
func (s *Session) DeleteBreakpoint(number int) error {
	if _, err := s.execute(gdbmi.BreakDelete(number)); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.breakpoints, number)
	s.mu.Unlock()
	s.notifyBreakpointsChanged()
	return nil
}

// SetBreakpointEnabled enables or disables a breakpoint.
func (s *Session) SetBreakpointEnabled(number int, enabled bool) error {
	command := gdbmi.BreakDisable(number)
	if enabled {
		command = gdbmi.BreakEnable(number)
	}
	if _, err := s.execute(command); err != nil {
		return err
	}
	s.mu.Lock()
	if bp, ok := s.breakpoints[number]; ok {
		bp.Enabled = enabled
		s.breakpoints[number] = bp
	}
	s.mu.Unlock()
	s.notifyBreakpointsChanged()
	return nil
}

// ToggleBreakpoint inserts a line breakpoint if none exists there, and
// deletes the existing ones otherwise.
func (s *Session) ToggleBreakpoint(file string, line int) error {
	var existing []int
	s.mu.Lock()
	for _, bp := range s.breakpoints {
		if bp.Line == line && (bp.File == file || bp.FullName == file) {
			existing = append(existing, bp.Number)
		}
	}
	s.mu.Unlock()

	if len(existing) == 0 {
		_, err := s.InsertBreakpoint(gdbmi.LocationLine(file, line))
		return err
	}
	for _, number := range existing {
		if err := s.DeleteBreakpoint(number); err != nil {
			return err
		}
	}
	return nil
}

// Breakpoints returns the cached breakpoints ordered by number.
func (s *Session) Breakpoints() []Breakpoint {
	s.mu.Lock()
	list := make([]Breakpoint, 0, len(s.breakpoints))
	for _, bp := range s.breakpoints {
		list = append(list, bp)
	}
	s.mu.Unlock()
	sort.Slice(list, func(i, j int) bool { return list[i].Number < list[j].Number })
	return list
}

// BreakpointLines returns the lines of enabled breakpoints in the given file.
func (s *Session) BreakpointLines(file string) map[int]bool {
	lines := make(map[int]bool)
	s.mu.Lock()
	for _, bp := range s.breakpoints {
		if bp.Enabled && bp.Line > 0 && (bp.File == file || bp.FullName == file) {
			lines[bp.Line] = true
		}
	}
	s.mu.Unlock()
	return lines
}

// breakpointFromMap decodes a bkpt tuple from a reply or notification.
func breakpointFromMap(m *gdbmi.Map) (Breakpoint, error) {
	if m == nil {
		return Breakpoint{}, fmt.Errorf("gdb: bkpt is not a tuple")
	}
	number, err := mustGet(m, "number").Int()
	if err != nil {
		return Breakpoint{}, fmt.Errorf("gdb: bad breakpoint number: %w", err)
	}
	bp := Breakpoint{
		Number:    number,
		Enabled:   m.GetText("enabled") == "y",
		Function:  m.GetText("func"),
		File:      m.GetText("file"),
		FullName:  m.GetText("fullname"),
		Condition: m.GetText("cond"),
	}
	// Pending breakpoints report addr="<PENDING>"; ignore unparsable values.
	if v, ok := m.Get("addr"); ok {
		if addr, err := v.Uint(); err == nil {
			bp.Address = addr
		}
	}
	if v, ok := m.Get("line"); ok {
		if line, err := v.Int(); err == nil {
			bp.Line = line
		}
	}
	if v, ok := m.Get("times"); ok {
		if times, err := v.Int(); err == nil {
			bp.HitCount = times
		}
	}
	return bp, nil
}

func mustGet(m *gdbmi.Map, key string) gdbmi.Value {
	v, _ := m.Get(key)
	return v
}
