package gdbmi

import (
	"fmt"
)

// ParseError reports a structurally invalid protocol line. The offending
// line is dropped and parsing resumes at the next line; nothing is consumed
// from subsequent lines.
type ParseError struct {
	// Line is the complete offending line.
	Line string
	// Pos is the byte offset at which parsing failed.
	Pos int
	// Fragment is the unconsumed input at the failure point.
	Fragment string
	// Reason describes the failure.
	Reason string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("gdbmi: %s at offset %d in %q", e.Reason, e.Pos, e.Line)
}

// ParseLine parses one line of gdb output into a typed record.
// The line must not include the trailing newline. Parsing is total: invalid
// input yields a *ParseError, never a panic.
func ParseLine(line string) (Record, error) {
	p := &lineParser{line: line}
	token := p.takeDigits()
	if p.eof() {
		return nil, p.errorf("truncated record")
	}
	switch c := p.next(); c {
	case '^':
		return p.parseResult(token)
	case '*':
		return p.parseOutOfBand(token, ChannelExec)
	case '=':
		return p.parseOutOfBand(token, ChannelNotify)
	case '+':
		return p.parseOutOfBand(token, ChannelStatus)
	case '~':
		return p.parseStream(token, StreamConsole)
	case '@':
		return p.parseStream(token, StreamTarget)
	case '&':
		return p.parseStream(token, StreamLog)
	default:
		p.pos--
		return nil, p.errorf("unrecognized record prefix %q", c)
	}
}

type lineParser struct {
	line string
	pos  int
}

func (p *lineParser) errorf(format string, args ...any) *ParseError {
	return &ParseError{
		Line:     p.line,
		Pos:      p.pos,
		Fragment: p.line[p.pos:],
		Reason:   fmt.Sprintf(format, args...),
	}
}

func (p *lineParser) eof() bool { return p.pos >= len(p.line) }

func (p *lineParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.line[p.pos]
}

func (p *lineParser) next() byte {
	c := p.line[p.pos]
	p.pos++
	return c
}

func (p *lineParser) takeDigits() string {
	start := p.pos
	for !p.eof() && p.peek() >= '0' && p.peek() <= '9' {
		p.pos++
	}
	return p.line[start:p.pos]
}

// takeIdentifier consumes a class or key name: letters, digits, '-' and '_'.
func (p *lineParser) takeIdentifier() string {
	start := p.pos
	for !p.eof() {
		c := p.peek()
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
			c >= '0' && c <= '9' || c == '-' || c == '_' {
			p.pos++
			continue
		}
		break
	}
	return p.line[start:p.pos]
}

func (p *lineParser) parseResult(token string) (Record, error) {
	keyword := p.takeIdentifier()
	class, ok := resultClassFromKeyword(keyword)
	if !ok {
		return nil, p.errorf("unknown result class %q", keyword)
	}
	payload, err := p.parsePairs()
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, p.errorf("trailing input after result record")
	}
	return ResultRecord{Token: token, Class: class, Payload: payload}, nil
}

func (p *lineParser) parseOutOfBand(token string, channel OutOfBandChannel) (Record, error) {
	class := p.takeIdentifier()
	if class == "" {
		return nil, p.errorf("missing async record class")
	}
	payload, err := p.parsePairs()
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, p.errorf("trailing input after async record")
	}
	return OutOfBandRecord{Token: token, Channel: channel, Class: class, Payload: payload}, nil
}

func (p *lineParser) parseStream(token string, channel StreamChannel) (Record, error) {
	if token != "" {
		return nil, p.errorf("token prefix on stream record")
	}
	text, err := p.parseQuoted()
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, p.errorf("trailing input after stream record")
	}
	return StreamRecord{Channel: channel, Text: text}, nil
}

// parsePairs consumes zero or more ",key=value" pairs.
func (p *lineParser) parsePairs() (*Map, error) {
	payload := NewMap()
	for p.peek() == ',' {
		p.pos++
		key := p.takeIdentifier()
		if key == "" {
			return nil, p.errorf("missing key in field list")
		}
		if p.peek() != '=' {
			return nil, p.errorf("expected '=' after key %q", key)
		}
		p.pos++
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		payload.Set(key, value)
	}
	return payload, nil
}

func (p *lineParser) parseValue() (Value, error) {
	switch p.peek() {
	case '"':
		text, err := p.parseQuoted()
		if err != nil {
			return Value{}, err
		}
		return NewString(text), nil
	case '{':
		return p.parseMap()
	case '[':
		return p.parseList()
	default:
		text := p.takeBare()
		if text == "" {
			return Value{}, p.errorf("expected value")
		}
		return NewNumber(text), nil
	}
}

// takeBare consumes an unquoted token: everything up to a structural
// delimiter. The token is retained as text, never coerced to a numeric type.
func (p *lineParser) takeBare() string {
	start := p.pos
	for !p.eof() {
		switch p.peek() {
		case ',', ']', '}', '=':
			return p.line[start:p.pos]
		}
		p.pos++
	}
	return p.line[start:p.pos]
}

func (p *lineParser) parseMap() (Value, error) {
	p.pos++ // consume '{'
	object := NewMap()
	if p.peek() == '}' {
		p.pos++
		return object.Value(), nil
	}
	for {
		key := p.takeIdentifier()
		if key == "" {
			return Value{}, p.errorf("missing key in tuple")
		}
		if p.peek() != '=' {
			return Value{}, p.errorf("expected '=' after key %q", key)
		}
		p.pos++
		value, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}
		object.Set(key, value)
		if p.peek() == ',' {
			p.pos++
			continue
		}
		break
	}
	if p.peek() != '}' {
		return Value{}, p.errorf("expected '}' closing tuple")
	}
	p.pos++
	return object.Value(), nil
}

// parseList consumes "[...]". Entries may be bare values or "key=value"
// pairs; both forms contribute list elements, keyed entries dropping the key.
func (p *lineParser) parseList() (Value, error) {
	p.pos++ // consume '['
	var items []Value
	if p.peek() == ']' {
		p.pos++
		return NewList(), nil
	}
	for {
		value, err := p.parseListEntry()
		if err != nil {
			return Value{}, err
		}
		items = append(items, value)
		if p.peek() == ',' {
			p.pos++
			continue
		}
		break
	}
	if p.peek() != ']' {
		return Value{}, p.errorf("expected ']' closing list")
	}
	p.pos++
	return NewList(items...), nil
}

func (p *lineParser) parseListEntry() (Value, error) {
	switch p.peek() {
	case '"', '{', '[':
		return p.parseValue()
	}
	bare := p.takeBare()
	if p.peek() == '=' {
		if bare == "" {
			return Value{}, p.errorf("missing key in list entry")
		}
		p.pos++
		return p.parseValue()
	}
	if bare == "" {
		return Value{}, p.errorf("expected value in list")
	}
	return NewNumber(bare), nil
}

// parseQuoted consumes a quoted string literal with backslash escapes for
// quote, backslash, newline and tab.
func (p *lineParser) parseQuoted() (string, error) {
	if p.peek() != '"' {
		return "", p.errorf("expected quoted string")
	}
	p.pos++
	var b []byte
	for {
		if p.eof() {
			return "", p.errorf("unterminated string literal")
		}
		c := p.next()
		switch c {
		case '"':
			return string(b), nil
		case '\\':
			if p.eof() {
				return "", p.errorf("unterminated escape sequence")
			}
			e := p.next()
			switch e {
			case 'n':
				b = append(b, '\n')
			case 't':
				b = append(b, '\t')
			case '"', '\\':
				b = append(b, e)
			default:
				// Unknown escape: keep the character, drop the backslash.
				b = append(b, e)
			}
		default:
			b = append(b, c)
		}
	}
}

func resultClassFromKeyword(keyword string) (ResultClass, bool) {
	switch keyword {
	case "done":
		return ResultDone, true
	case "running":
		return ResultRunning, true
	case "connected":
		return ResultConnected, true
	case "error":
		return ResultError, true
	case "exit":
		return ResultExit, true
	default:
		return 0, false
	}
}
