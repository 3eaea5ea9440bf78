// Package layout parses the pane layout description language.
//
// A layout string arranges the console (c), debuggee terminal (t), source
// view (s) and expression table (e) into nested splits: "|" splits
// left/right, "-" splits top/bottom, parentheses group, and an optional
// leading integer weights a pane relative to its siblings. The default
// layout "(1s-1c)|(1e-1t)" puts source above console on the left and
// expressions above the terminal on the right.
package layout

import (
	"fmt"
	"strings"
)

// Pane identifies a leaf widget.
type Pane int

const (
	// PaneConsole is the gdb console ("c").
	PaneConsole Pane = iota
	// PaneTerminal is the debuggee terminal ("t").
	PaneTerminal
	// PaneSource is the source/assembly view ("s").
	PaneSource
	// PaneExpressions is the expression table ("e").
	PaneExpressions
)

// String returns the layout character for the pane.
func (p Pane) String() string {
	switch p {
	case PaneConsole:
		return "c"
	case PaneTerminal:
		return "t"
	case PaneSource:
		return "s"
	case PaneExpressions:
		return "e"
	default:
		return "?"
	}
}

// Node is one node of the parsed layout tree: a *Leaf or a *Split.
type Node interface {
	fmt.Stringer
	node()
}

// Leaf is a single pane.
type Leaf struct {
	Pane Pane
}

func (*Leaf) node() {}

// String returns the pane's layout character.
func (l *Leaf) String() string { return l.Pane.String() }

// Split arranges weighted children along one axis.
type Split struct {
	// Horizontal lays children out left to right; otherwise top to bottom.
	Horizontal bool
	Children   []Child
}

func (*Split) node() {}

// String renders the split in layout syntax.
func (s *Split) String() string {
	sep := "-"
	if s.Horizontal {
		sep = "|"
	}
	parts := make([]string, len(s.Children))
	for i, c := range s.Children {
		inner := c.Node.String()
		if _, nested := c.Node.(*Split); nested {
			inner = "(" + inner + ")"
		}
		parts[i] = fmt.Sprintf("%d%s", c.Weight, inner)
	}
	return strings.Join(parts, sep)
}

// Child is a layout node with its relative size weight.
type Child struct {
	Weight int
	Node   Node
}

// ErrorKind classifies a layout parse failure.
type ErrorKind int

const (
	// ErrUnexpectedEnd means the input ended where a token was required.
	ErrUnexpectedEnd ErrorKind = iota
	// ErrUnexpectedChar means an invalid character was found.
	ErrUnexpectedChar
	// ErrSplitMismatch means "|" and "-" were mixed at one nesting level.
	ErrSplitMismatch
)

// ParseError describes why a layout string was rejected.
type ParseError struct {
	Kind ErrorKind
	// Pos is the byte offset of the failure; for ErrUnexpectedEnd it is the
	// input length.
	Pos int
	// Expected names the acceptable characters at Pos.
	Expected string
	// Got is the offending character, if any.
	Got byte
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	switch e.Kind {
	case ErrUnexpectedEnd:
		return fmt.Sprintf("layout: unexpected end of input, expected one of %q", e.Expected)
	case ErrSplitMismatch:
		return fmt.Sprintf("layout: cannot mix %q with %q at offset %d", e.Got, e.Expected, e.Pos)
	default:
		return fmt.Sprintf("layout: unexpected %q at offset %d, expected one of %q", e.Got, e.Pos, e.Expected)
	}
}

// Parse parses a layout description into its tree form.
func Parse(s string) (Node, error) {
	p := &parser{input: s}
	if p.eof() {
		return nil, &ParseError{Kind: ErrUnexpectedEnd, Pos: 0, Expected: "ctse("}
	}
	node, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	if c, ok := p.peek(); ok {
		return nil, &ParseError{Kind: ErrUnexpectedChar, Pos: p.pos, Expected: "|-", Got: c}
	}
	return node, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) eof() bool { return p.pos >= len(p.input) }

func (p *parser) peek() (byte, bool) {
	if p.eof() {
		return 0, false
	}
	return p.input[p.pos], true
}

// parseWeight consumes an optional leading integer; absent weights are 1.
func (p *parser) parseWeight() int {
	c, ok := p.peek()
	if !ok || c < '0' || c > '9' {
		return 1
	}
	w := 0
	for {
		c, ok := p.peek()
		if !ok || c < '0' || c > '9' {
			return w
		}
		w = w*10 + int(c-'0')
		p.pos++
	}
}

func (p *parser) parseLeaf() (Node, bool) {
	c, ok := p.peek()
	if !ok {
		return nil, false
	}
	var pane Pane
	switch c {
	case 'c':
		pane = PaneConsole
	case 't':
		pane = PaneTerminal
	case 's':
		pane = PaneSource
	case 'e':
		pane = PaneExpressions
	default:
		return nil, false
	}
	p.pos++
	return &Leaf{Pane: pane}, true
}

type splitKind int

const (
	splitNone splitKind = iota
	splitHorizontal
	splitVertical
)

func (p *parser) parseNode() (Node, error) {
	var children []Child
	kind := splitNone
	for {
		weight := p.parseWeight()
		if leaf, ok := p.parseLeaf(); ok {
			children = append(children, Child{Weight: weight, Node: leaf})
		} else {
			c, ok := p.peek()
			switch {
			case !ok:
				return nil, &ParseError{Kind: ErrUnexpectedEnd, Pos: p.pos, Expected: "ctse("}
			case c == '(':
				p.pos++
				inner, err := p.parseNode()
				if err != nil {
					return nil, err
				}
				children = append(children, Child{Weight: weight, Node: inner})
				closing, ok := p.peek()
				if !ok {
					return nil, &ParseError{Kind: ErrUnexpectedEnd, Pos: p.pos, Expected: ")"}
				}
				if closing != ')' {
					return nil, &ParseError{Kind: ErrUnexpectedChar, Pos: p.pos, Expected: ")", Got: closing}
				}
				p.pos++
			default:
				return nil, &ParseError{Kind: ErrUnexpectedChar, Pos: p.pos, Expected: "ctse(", Got: c}
			}
		}

		sep, ok := p.peek()
		if !ok {
			break
		}
		switch {
		case sep == '|' && (kind == splitNone || kind == splitHorizontal):
			kind = splitHorizontal
		case sep == '-' && (kind == splitNone || kind == splitVertical):
			kind = splitVertical
		case sep == '|':
			return nil, &ParseError{Kind: ErrSplitMismatch, Pos: p.pos, Expected: "-", Got: '|'}
		case sep == '-':
			return nil, &ParseError{Kind: ErrSplitMismatch, Pos: p.pos, Expected: "|", Got: '-'}
		default:
			// Not a separator; the caller decides whether it is valid here.
			return finishNode(kind, children), nil
		}
		p.pos++
	}
	return finishNode(kind, children), nil
}

func finishNode(kind splitKind, children []Child) Node {
	if kind == splitNone {
		return children[0].Node
	}
	return &Split{Horizontal: kind == splitHorizontal, Children: children}
}
