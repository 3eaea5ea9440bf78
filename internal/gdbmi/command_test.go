package gdbmi

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandSerialization(t *testing.T) {
	tests := []struct {
		command Command
		want    string
	}{
		{command: ExecRun(), want: "-exec-run"},
		{command: ExecContinue(), want: "-exec-continue"},
		{command: BreakInsert(LocationLine("main.c", 10)), want: `-break-insert "main.c:10"`},
		{command: BreakInsert(LocationAddress(0x1149)), want: `-break-insert "*0x1149"`},
		{command: BreakInsert(LocationFunction("main")), want: `-break-insert "main"`},
		{
			command: BreakInsertConditional(LocationLine("main.c", 10), `x > 0`),
			want:    `-break-insert "main.c:10" -c="x > 0"`,
		},
		{command: BreakDelete(1, 3), want: "-break-delete 1 3"},
		{command: StackSelectFrame(2), want: "-stack-select-frame 2"},
		{
			command: DataEvaluateExpression("1 + 2"),
			want:    `-data-evaluate-expression "1 + 2"`,
		},
		{
			command: DataDisassembleFile("main.c", 12, DisassembleModeMixed),
			want:    `-data-disassemble -f "main.c" -l 12 -- 4`,
		},
		{
			command: DataDisassembleAddress(0x1000, 0x1040, DisassembleModeOnly),
			want:    `-data-disassemble -s 0x1000 -e 0x1040 -- 0`,
		},
		{
			command: InterpreterExec("console", "info registers"),
			want:    `-interpreter-exec "console" "info registers"`,
		},
		{command: GDBExit(), want: "-gdb-exit"},
	}
	for _, tt := range tests {
		var b strings.Builder
		require.NoError(t, tt.command.Serialize(&b))
		assert.Equal(t, tt.want+"\n", b.String())
		assert.Equal(t, tt.want, tt.command.String())
	}
}

func TestCommandParameterEscaping(t *testing.T) {
	c := DataEvaluateExpression("s == \"a\\b\"\n\tdone")
	assert.Equal(t, `-data-evaluate-expression "s == \"a\\b\"\n\tdone"`, c.String())
}

func TestCommandCarriesNoToken(t *testing.T) {
	line := ExecNext().String()
	assert.True(t, strings.HasPrefix(line, "-"), "line %q must start with the operation dash", line)
}

// Serializing a payload and re-reading it through the result grammar must
// reconstruct an equivalent structure.
func TestValueRoundTrip(t *testing.T) {
	inner := NewMap()
	inner.Set("file", NewString("src/main.c"))
	inner.Set("line", NewNumber("42"))

	payload := NewMap()
	payload.Set("a", NewString("1"))
	payload.Set("b", NewList(NewNumber("1"), NewNumber("2"), NewNumber("3")))
	payload.Set("frame", inner.Value())
	payload.Set("empty-list", NewList())
	payload.Set("empty-tuple", NewMap().Value())
	payload.Set("escaped", NewString("a\"b\\c\nd\te"))

	line := "^done"
	for _, key := range payload.Keys() {
		v, _ := payload.Get(key)
		line += "," + key + "=" + v.String()
	}

	record, err := ParseLine(line)
	require.NoError(t, err)
	result, ok := record.(ResultRecord)
	require.True(t, ok)

	assert.Equal(t, payload.Keys(), result.Payload.Keys())
	// Canonical rendering is injective over the value model, so comparing
	// rendered forms compares structures.
	assert.Equal(t, payload.String(), result.Payload.String())
}
