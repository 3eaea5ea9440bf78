package gdbmi

import (
	"io"
	"strings"
)

// Option is one command option: a flag name with an optional value.
type Option struct {
	Name  string
	Value *Value
}

// Command is one MI operation with its ordered parameters and options.
// A command carries no identity or correlation token: the engine's
// single-command-in-flight discipline is what matches replies to commands.
type Command struct {
	Operation  string
	Parameters []Value
	Options    []Option
}

// NewCommand returns a command for the given MI operation name
// (without the leading dash).
func NewCommand(operation string) Command {
	return Command{Operation: operation}
}

// WithParam appends a positional parameter.
func (c Command) WithParam(v Value) Command {
	c.Parameters = append(c.Parameters[:len(c.Parameters):len(c.Parameters)], v)
	return c
}

// WithStringParam appends a string parameter.
func (c Command) WithStringParam(s string) Command {
	return c.WithParam(NewString(s))
}

// WithRawParam appends a parameter emitted verbatim. Operations like
// -data-disassemble take their flags and the "--" separator in positional
// order on the wire, where the flag[=value] option form is rejected.
func (c Command) WithRawParam(text string) Command {
	return c.WithParam(NewNumber(text))
}

// WithOption appends a bare option flag.
func (c Command) WithOption(name string) Command {
	c.Options = append(c.Options[:len(c.Options):len(c.Options)], Option{Name: name})
	return c
}

// WithOptionValue appends an option flag carrying a value.
func (c Command) WithOptionValue(name string, v Value) Command {
	c.Options = append(c.Options[:len(c.Options):len(c.Options)], Option{Name: name, Value: &v})
	return c
}

// Serialize writes the newline-terminated interpreter line for the command.
func (c Command) Serialize(w io.Writer) error {
	_, err := io.WriteString(w, c.interpreterLine())
	return err
}

// String returns the interpreter line without the trailing newline.
func (c Command) String() string {
	line := c.interpreterLine()
	return strings.TrimSuffix(line, "\n")
}

func (c Command) interpreterLine() string {
	var b strings.Builder
	b.WriteByte('-')
	b.WriteString(c.Operation)
	for _, p := range c.Parameters {
		b.WriteByte(' ')
		if p.Kind() == KindString {
			appendQuoted(&b, p.Text())
		} else {
			appendValue(&b, p)
		}
	}
	for _, o := range c.Options {
		b.WriteByte(' ')
		b.WriteString(o.Name)
		if o.Value != nil {
			b.WriteByte('=')
			appendValue(&b, *o.Value)
		}
	}
	b.WriteByte('\n')
	return b.String()
}
