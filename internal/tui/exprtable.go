package tui

import (
	"sync"

	"github.com/gdamore/tcell/v2"
)

// Expression is one watched expression and its last evaluation.
type Expression struct {
	Expr  string
	Value string
	Err   string
}

// ExpressionTable is the watch pane: a list of expressions re-evaluated on
// every stop, with an input row for adding new ones.
type ExpressionTable struct {
	mu      sync.Mutex
	entries []Expression

	input    []rune
	cursor   int
	selected int
}

// NewExpressionTable creates an empty table.
func NewExpressionTable() *ExpressionTable {
	return &ExpressionTable{}
}

// Add appends an expression with no value yet.
func (t *ExpressionTable) Add(expr string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, Expression{Expr: expr})
}

// Remove deletes the selected expression.
func (t *ExpressionTable) Remove() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.selected >= len(t.entries) {
		return
	}
	t.entries = append(t.entries[:t.selected], t.entries[t.selected+1:]...)
	if t.selected > 0 && t.selected >= len(t.entries) {
		t.selected--
	}
}

// Expressions returns a snapshot of the watched expressions.
func (t *ExpressionTable) Expressions() []Expression {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Expression(nil), t.entries...)
}

// Refresh re-evaluates every expression with the given evaluator.
// Evaluation errors are shown in place of a value.
func (t *ExpressionTable) Refresh(evaluate func(expr string) (string, error)) {
	t.mu.Lock()
	exprs := make([]string, len(t.entries))
	for i, e := range t.entries {
		exprs[i] = e.Expr
	}
	t.mu.Unlock()

	results := make([]Expression, len(exprs))
	for i, expr := range exprs {
		results[i] = Expression{Expr: expr}
		value, err := evaluate(expr)
		if err != nil {
			results[i].Err = err.Error()
		} else {
			results[i].Value = value
		}
	}

	t.mu.Lock()
	// The entry list may have changed during evaluation; match by position
	// only while the expressions still line up.
	for i, res := range results {
		if i < len(t.entries) && t.entries[i].Expr == res.Expr {
			t.entries[i] = res
		}
	}
	t.mu.Unlock()
}

// HandleKey processes a key event while the table is focused. It returns
// the added expression and true when Enter committed the input row.
func (t *ExpressionTable) HandleKey(ev *tcell.EventKey) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch ev.Key() {
	case tcell.KeyEnter:
		expr := string(t.input)
		if expr == "" {
			return "", false
		}
		t.input = t.input[:0]
		t.cursor = 0
		t.entries = append(t.entries, Expression{Expr: expr})
		return expr, true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if t.cursor > 0 {
			t.input = append(t.input[:t.cursor-1], t.input[t.cursor:]...)
			t.cursor--
		}
	case tcell.KeyDelete:
		if len(t.input) == 0 && t.selected < len(t.entries) {
			t.entries = append(t.entries[:t.selected], t.entries[t.selected+1:]...)
			if t.selected > 0 && t.selected >= len(t.entries) {
				t.selected--
			}
		} else if t.cursor < len(t.input) {
			t.input = append(t.input[:t.cursor], t.input[t.cursor+1:]...)
		}
	case tcell.KeyLeft:
		if t.cursor > 0 {
			t.cursor--
		}
	case tcell.KeyRight:
		if t.cursor < len(t.input) {
			t.cursor++
		}
	case tcell.KeyUp:
		if t.selected > 0 {
			t.selected--
		}
	case tcell.KeyDown:
		if t.selected < len(t.entries)-1 {
			t.selected++
		}
	case tcell.KeyRune:
		t.input = append(t.input[:t.cursor], append([]rune{ev.Rune()}, t.input[t.cursor:]...)...)
		t.cursor++
	}
	return "", false
}

// Draw renders the table into the rectangle. The bottom row is the input
// line for new expressions.
func (t *ExpressionTable) Draw(screen tcell.Screen, r Rect, focused bool) {
	if r.Empty() {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	style := tcell.StyleDefault
	rows := r.Height - 1
	for row := 0; row < rows; row++ {
		y := r.Y + row
		fillLine(screen, r, y, style, ' ')
		if row >= len(t.entries) {
			continue
		}
		entry := t.entries[row]
		lineStyle := style
		if focused && row == t.selected {
			lineStyle = style.Reverse(true)
			fillLine(screen, r, y, lineStyle, ' ')
		}
		x := drawText(screen, r, r.X, y, lineStyle.Bold(true), entry.Expr)
		x = drawText(screen, r, x, y, lineStyle, " = ")
		if entry.Err != "" {
			drawText(screen, r, x, y, lineStyle.Foreground(tcell.ColorRed), entry.Err)
		} else {
			drawText(screen, r, x, y, lineStyle, entry.Value)
		}
	}

	inputY := r.Y + r.Height - 1
	fillLine(screen, r, inputY, style, ' ')
	x := drawText(screen, r, r.X, inputY, style.Bold(true), "watch: ")
	drawText(screen, r, x, inputY, style, string(t.input))
	if focused {
		screen.ShowCursor(x+t.cursor, inputY)
	}
}
