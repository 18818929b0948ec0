package utils

import "github.com/mattn/go-runewidth"

// TruncateString cuts s to at most width terminal cells.
func TruncateString(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "")
}

// Ellipsize cuts s to width cells, ending in "..." when anything was cut.
func Ellipsize(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return TruncateString("...", width)
	}
	return runewidth.Truncate(s, width, "...")
}
