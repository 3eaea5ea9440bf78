package tui

import "github.com/burrbull/ugdb/internal/layout"

// Rect is a screen rectangle in cell coordinates.
type Rect struct {
	X, Y, Width, Height int
}

// Empty reports whether the rectangle has no visible area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Arrange maps the pane tree onto the given rectangle. Splits divide space
// proportionally to the children's weights; rounding leftovers go to the
// last child. When the same pane occurs more than once, the last placement
// wins.
func Arrange(node layout.Node, area Rect) map[layout.Pane]Rect {
	rects := make(map[layout.Pane]Rect)
	arrange(node, area, rects)
	return rects
}

func arrange(node layout.Node, area Rect, rects map[layout.Pane]Rect) {
	switch n := node.(type) {
	case *layout.Leaf:
		rects[n.Pane] = area
	case *layout.Split:
		total := 0
		for _, child := range n.Children {
			total += child.Weight
		}
		if total == 0 {
			return
		}
		extent := area.Height
		if n.Horizontal {
			extent = area.Width
		}
		offset := 0
		for i, child := range n.Children {
			size := extent * child.Weight / total
			if i == len(n.Children)-1 {
				size = extent - offset
			}
			sub := area
			if n.Horizontal {
				sub.X = area.X + offset
				sub.Width = size
			} else {
				sub.Y = area.Y + offset
				sub.Height = size
			}
			arrange(child.Node, sub, rects)
			offset += size
		}
	}
}
