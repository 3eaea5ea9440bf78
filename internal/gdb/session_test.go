package gdb

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burrbull/ugdb/internal/gdbmi"
)

// fakeEngine replays scripted result records and logs every command line.
type fakeEngine struct {
	mu         sync.Mutex
	commands   []string
	replies    []gdbmi.ResultRecord
	running    bool
	interrupts int
}

func (e *fakeEngine) Execute(command gdbmi.Command) (gdbmi.ResultRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.commands = append(e.commands, command.String())
	if len(e.replies) == 0 {
		return gdbmi.ResultRecord{Class: gdbmi.ResultDone, Payload: gdbmi.NewMap()}, nil
	}
	reply := e.replies[0]
	e.replies = e.replies[1:]
	return reply, nil
}

func (e *fakeEngine) ExecuteLater(command gdbmi.Command) error {
	_, err := e.Execute(command)
	return err
}

func (e *fakeEngine) Interrupt() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.interrupts++
	return nil
}

func (e *fakeEngine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *fakeEngine) commandLines() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.commands...)
}

func resultFromLine(t *testing.T, line string) gdbmi.ResultRecord {
	t.Helper()
	record, err := gdbmi.ParseLine(line)
	require.NoError(t, err)
	result, ok := record.(gdbmi.ResultRecord)
	require.True(t, ok)
	return result
}

func oobFromLine(t *testing.T, line string) gdbmi.OutOfBandRecord {
	t.Helper()
	record, err := gdbmi.ParseLine(line)
	require.NoError(t, err)
	oob, ok := record.(gdbmi.OutOfBandRecord)
	require.True(t, ok)
	return oob
}

func TestSessionStateTransitions(t *testing.T) {
	var transitions [][2]State
	var stops []StopEvent
	terminated := false
	session := NewSession(Handlers{
		OnStateChanged: func(old, new State) { transitions = append(transitions, [2]State{old, new}) },
		OnStopped:      func(event StopEvent) { stops = append(stops, event) },
		OnTerminated:   func() { terminated = true },
	})

	assert.Equal(t, StateIdle, session.State())

	session.Send(oobFromLine(t, `*running,thread-id="all"`))
	assert.Equal(t, StateRunning, session.State())

	session.Send(oobFromLine(t, `*stopped,reason="breakpoint-hit",bkptno="2",frame={addr="0x1149",func="main",file="main.c",fullname="/src/main.c",line="7"}`))
	assert.Equal(t, StateStopped, session.State())

	require.Len(t, stops, 1)
	assert.Equal(t, "breakpoint-hit", stops[0].Reason)
	assert.Equal(t, 2, stops[0].Breakpoint)
	require.NotNil(t, stops[0].Frame)
	assert.Equal(t, "main", stops[0].Frame.Function)
	assert.Equal(t, "/src/main.c", stops[0].Frame.SourcePath())
	assert.Equal(t, 7, stops[0].Frame.Line)
	assert.Equal(t, uint64(0x1149), stops[0].Frame.Address)

	session.Send(oobFromLine(t, `*running,thread-id="all"`))
	session.Send(oobFromLine(t, `*stopped,reason="exited-normally"`))
	assert.Equal(t, StateTerminated, session.State())
	assert.True(t, terminated)

	session.MarkDisconnected()
	assert.Equal(t, StateDisconnected, session.State())

	assert.Equal(t, [][2]State{
		{StateIdle, StateRunning},
		{StateRunning, StateStopped},
		{StateStopped, StateRunning},
		{StateRunning, StateTerminated},
		{StateTerminated, StateDisconnected},
	}, transitions)
}

func TestInsertBreakpointDecodesReply(t *testing.T) {
	engine := &fakeEngine{replies: []gdbmi.ResultRecord{
		resultFromLine(t, `^done,bkpt={number="1",type="breakpoint",enabled="y",addr="0x1149",func="main",file="main.c",fullname="/src/main.c",line="7",times="0"}`),
	}}
	changed := 0
	session := NewSession(Handlers{OnBreakpointsChanged: func() { changed++ }})
	session.Bind(engine)

	bp, err := session.InsertBreakpoint(gdbmi.LocationLine("main.c", 7))
	require.NoError(t, err)
	assert.Equal(t, 1, bp.Number)
	assert.True(t, bp.Enabled)
	assert.Equal(t, uint64(0x1149), bp.Address)
	assert.Equal(t, 7, bp.Line)
	assert.Equal(t, "/src/main.c", bp.SourcePath())
	assert.Equal(t, 1, changed)
	assert.Equal(t, []string{`-break-insert "main.c:7"`}, engine.commandLines())

	lines := session.BreakpointLines("/src/main.c")
	assert.True(t, lines[7])
}

func TestBreakpointNotificationsUpdateCache(t *testing.T) {
	session := NewSession(Handlers{})

	session.Send(oobFromLine(t, `=breakpoint-created,bkpt={number="3",enabled="y",addr="0x2000",file="util.c",line="12"}`))
	require.Len(t, session.Breakpoints(), 1)

	session.Send(oobFromLine(t, `=breakpoint-modified,bkpt={number="3",enabled="n",addr="0x2000",file="util.c",line="12",times="4"}`))
	bps := session.Breakpoints()
	require.Len(t, bps, 1)
	assert.False(t, bps[0].Enabled)
	assert.Equal(t, 4, bps[0].HitCount)

	session.Send(oobFromLine(t, `=breakpoint-deleted,id="3"`))
	assert.Empty(t, session.Breakpoints())
}

func TestPendingBreakpointAddressIgnored(t *testing.T) {
	engine := &fakeEngine{replies: []gdbmi.ResultRecord{
		resultFromLine(t, `^done,bkpt={number="2",enabled="y",addr="<PENDING>",file="later.c",line="3"}`),
	}}
	session := NewSession(Handlers{})
	session.Bind(engine)

	bp, err := session.InsertBreakpoint(gdbmi.LocationLine("later.c", 3))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), bp.Address)
}

func TestToggleBreakpoint(t *testing.T) {
	engine := &fakeEngine{replies: []gdbmi.ResultRecord{
		resultFromLine(t, `^done,bkpt={number="1",enabled="y",addr="0x1149",file="main.c",line="7"}`),
		resultFromLine(t, `^done`),
	}}
	session := NewSession(Handlers{})
	session.Bind(engine)

	require.NoError(t, session.ToggleBreakpoint("main.c", 7))
	require.Len(t, session.Breakpoints(), 1)

	require.NoError(t, session.ToggleBreakpoint("main.c", 7))
	assert.Empty(t, session.Breakpoints())
	assert.Equal(t, []string{`-break-insert "main.c:7"`, "-break-delete 1"}, engine.commandLines())
}

func TestStackFrames(t *testing.T) {
	engine := &fakeEngine{replies: []gdbmi.ResultRecord{
		resultFromLine(t, `^done,stack=[frame={level="0",addr="0x1149",func="worker",file="w.c",line="4"},frame={level="1",addr="0x117a",func="main",file="main.c",line="22"}]`),
	}}
	session := NewSession(Handlers{})
	session.Bind(engine)

	frames, err := session.StackFrames()
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, 0, frames[0].Level)
	assert.Equal(t, "worker", frames[0].Function)
	assert.Equal(t, 1, frames[1].Level)
	assert.Equal(t, uint64(0x117a), frames[1].Address)
	assert.Equal(t, 22, frames[1].Line)
}

func TestEvaluate(t *testing.T) {
	engine := &fakeEngine{replies: []gdbmi.ResultRecord{
		resultFromLine(t, `^done,value="42"`),
	}}
	session := NewSession(Handlers{})
	session.Bind(engine)

	value, err := session.Evaluate("x + 1")
	require.NoError(t, err)
	assert.Equal(t, "42", value)
	assert.Equal(t, []string{`-data-evaluate-expression "x + 1"`}, engine.commandLines())
}

func TestDisassembleFile(t *testing.T) {
	engine := &fakeEngine{replies: []gdbmi.ResultRecord{
		resultFromLine(t, `^done,asm_insns=[{address="0x00001149",func-name="main",offset="0",inst="push   %rbp"},{address="0x0000114a",func-name="main",offset="1",inst="mov    %rsp,%rbp"}]`),
	}}
	session := NewSession(Handlers{})
	session.Bind(engine)

	instructions, err := session.DisassembleFile("main.c", 7)
	require.NoError(t, err)
	require.Len(t, instructions, 2)
	assert.Equal(t, uint64(0x1149), instructions[0].Address)
	assert.Equal(t, "main", instructions[0].Function)
	assert.Equal(t, 0, instructions[0].Offset)
	assert.Equal(t, "push   %rbp", instructions[0].Text)
	assert.Equal(t, 1, instructions[1].Offset)
	assert.Equal(t, []string{`-data-disassemble -f "main.c" -l 7 -- 0`}, engine.commandLines())
}

func TestErrorReplyBecomesCommandError(t *testing.T) {
	engine := &fakeEngine{replies: []gdbmi.ResultRecord{
		resultFromLine(t, `^error,msg="No symbol \"bogus\" in current context."`),
	}}
	session := NewSession(Handlers{})
	session.Bind(engine)

	_, err := session.Evaluate("bogus")
	require.Error(t, err)
	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "data-evaluate-expression", cmdErr.Operation)
	assert.Contains(t, cmdErr.Msg, "No symbol")
}

func TestUnboundSessionRejectsOperations(t *testing.T) {
	session := NewSession(Handlers{})
	err := session.Continue()
	assert.Error(t, err)
	assert.False(t, session.IsRunning())
}
