package render

// HalfBlock picks the glyph that shows two vertically stacked pixels in one
// terminal cell, assuming the foreground is the lit colour.
func HalfBlock(top, bottom bool) rune {
	switch {
	case top && bottom:
		return '█'
	case top:
		return '▀'
	case bottom:
		return '▄'
	default:
		return ' '
	}
}

// Truncate shortens s to width runes, marking the cut with an ellipsis.
func Truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		if width < 0 {
			width = 0
		}
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
