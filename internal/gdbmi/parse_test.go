package gdbmi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResultRecords(t *testing.T) {
	tests := []struct {
		line  string
		class ResultClass
		token string
	}{
		{line: "^done", class: ResultDone},
		{line: "^running", class: ResultRunning},
		{line: "^connected", class: ResultConnected},
		{line: `^error,msg="No symbol table is loaded."`, class: ResultError},
		{line: "^exit", class: ResultExit},
		{line: "42^done", class: ResultDone, token: "42"},
	}
	for _, tt := range tests {
		record, err := ParseLine(tt.line)
		require.NoError(t, err, "line %q", tt.line)
		result, ok := record.(ResultRecord)
		require.True(t, ok, "line %q", tt.line)
		assert.Equal(t, tt.class, result.Class, "line %q", tt.line)
		assert.Equal(t, tt.token, result.Token, "line %q", tt.line)
		assert.NotNil(t, result.Payload)
	}
}

func TestParseResultPayload(t *testing.T) {
	record, err := ParseLine(`^done,bkpt={number="1",type="breakpoint",addr="0x1149",func="main"}`)
	require.NoError(t, err)
	result := record.(ResultRecord)

	bkpt, ok := result.Payload.Get("bkpt")
	require.True(t, ok)
	require.Equal(t, KindMap, bkpt.Kind())
	assert.Equal(t, "1", bkpt.Map().GetText("number"))
	assert.Equal(t, "main", bkpt.Map().GetText("func"))
	assert.Equal(t, []string{"number", "type", "addr", "func"}, bkpt.Map().Keys())
}

func TestParseOutOfBandRecords(t *testing.T) {
	tests := []struct {
		line    string
		channel OutOfBandChannel
		class   string
	}{
		{line: `*running,thread-id="all"`, channel: ChannelExec, class: "running"},
		{line: `*stopped,reason="breakpoint-hit",bkptno="1"`, channel: ChannelExec, class: "stopped"},
		{line: `=breakpoint-created,bkpt={number="2"}`, channel: ChannelNotify, class: "breakpoint-created"},
		{line: `=thread-group-added,id="i1"`, channel: ChannelNotify, class: "thread-group-added"},
		{line: `+download,section=".text",section-size="6668"`, channel: ChannelStatus, class: "download"},
	}
	for _, tt := range tests {
		record, err := ParseLine(tt.line)
		require.NoError(t, err, "line %q", tt.line)
		oob, ok := record.(OutOfBandRecord)
		require.True(t, ok, "line %q", tt.line)
		assert.Equal(t, tt.channel, oob.Channel, "line %q", tt.line)
		assert.Equal(t, tt.class, oob.Class, "line %q", tt.line)
	}
}

func TestParseStreamRecords(t *testing.T) {
	tests := []struct {
		line    string
		channel StreamChannel
		text    string
	}{
		{line: `~"Reading symbols from /bin/true...\n"`, channel: StreamConsole, text: "Reading symbols from /bin/true...\n"},
		{line: `@"target output"`, channel: StreamTarget, text: "target output"},
		{line: `&"warning: \"quoted\"\tstuff\\done\n"`, channel: StreamLog, text: "warning: \"quoted\"\tstuff\\done\n"},
	}
	for _, tt := range tests {
		record, err := ParseLine(tt.line)
		require.NoError(t, err, "line %q", tt.line)
		stream, ok := record.(StreamRecord)
		require.True(t, ok, "line %q", tt.line)
		assert.Equal(t, tt.channel, stream.Channel, "line %q", tt.line)
		assert.Equal(t, tt.text, stream.Text, "line %q", tt.line)
	}
}

// Numeric literals inside payloads stay text; coercion belongs to the reader.
func TestParseMixedTupleAndList(t *testing.T) {
	record, err := ParseLine(`^done,value={a="1",b=[1,2,3]}`)
	require.NoError(t, err)
	result := record.(ResultRecord)

	value, ok := result.Payload.Get("value")
	require.True(t, ok)
	require.Equal(t, KindMap, value.Kind())

	a, ok := value.Map().Get("a")
	require.True(t, ok)
	assert.Equal(t, KindString, a.Kind())
	assert.Equal(t, "1", a.Text())

	b, ok := value.Map().Get("b")
	require.True(t, ok)
	require.Equal(t, KindList, b.Kind())
	require.Len(t, b.List(), 3)
	for i, want := range []string{"1", "2", "3"} {
		item := b.List()[i]
		assert.Equal(t, KindNumber, item.Kind())
		assert.Equal(t, want, item.Text())
	}
}

func TestParseListForms(t *testing.T) {
	record, err := ParseLine(`^done,stack=[frame={level="0"},frame={level="1"}],empty=[],keyed=[a="1",b="2"]`)
	require.NoError(t, err)
	result := record.(ResultRecord)

	stack, _ := result.Payload.Get("stack")
	require.Len(t, stack.List(), 2)
	assert.Equal(t, "0", stack.List()[0].Map().GetText("level"))
	assert.Equal(t, "1", stack.List()[1].Map().GetText("level"))

	empty, _ := result.Payload.Get("empty")
	require.Equal(t, KindList, empty.Kind())
	assert.Len(t, empty.List(), 0)

	// Keyed list entries contribute their values as elements.
	keyed, _ := result.Payload.Get("keyed")
	require.Len(t, keyed.List(), 2)
	assert.Equal(t, "1", keyed.List()[0].Text())
	assert.Equal(t, "2", keyed.List()[1].Text())
}

func TestParseEmptyTuple(t *testing.T) {
	record, err := ParseLine(`=library-loaded,ranges={}`)
	require.NoError(t, err)
	oob := record.(OutOfBandRecord)
	ranges, ok := oob.Payload.Get("ranges")
	require.True(t, ok)
	assert.Equal(t, 0, ranges.Map().Len())
}

func TestParseErrors(t *testing.T) {
	lines := []string{
		"",
		"123",
		"!nonsense",
		"^bogus-class",
		"^done,",
		"^done,key",
		"^done,key=",
		`^done,key="unterminated`,
		`^done,key={a="1"`,
		`^done,key=[1,2`,
		`~unquoted stream`,
		`5~"token on stream"`,
		`^done,trailing="x"garbage`,
	}
	for _, line := range lines {
		record, err := ParseLine(line)
		require.Error(t, err, "line %q", line)
		assert.Nil(t, record, "line %q", line)

		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr, "line %q", line)
		assert.Equal(t, line, parseErr.Line, "line %q", line)
	}
}

func TestParseErrorCarriesFragment(t *testing.T) {
	_, err := ParseLine(`^done,key={broken`)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.NotEmpty(t, parseErr.Reason)
	assert.LessOrEqual(t, parseErr.Pos, len(parseErr.Line))
	assert.Equal(t, parseErr.Line[parseErr.Pos:], parseErr.Fragment)
}
