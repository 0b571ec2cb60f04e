// Package textutil lays out fixed-width text columns for terminal tables.
package textutil

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Ellipsis marks truncated cells.
const Ellipsis = "…"

// Width returns the number of terminal columns s occupies.
func Width(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate shortens s to at most width columns, ending in Ellipsis when cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if Width(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, Ellipsis)
}

// Fit pads or truncates s to exactly width columns.
func Fit(s string, width int) string {
	return runewidth.FillRight(Truncate(s, width), width)
}

// Row joins cells with a single space, fitting each to its width. A
// non-positive width leaves the cell as is, which suits a trailing column.
func Row(widths []int, cells ...string) string {
	out := make([]string, len(cells))
	for i, c := range cells {
		if i < len(widths) && widths[i] > 0 {
			out[i] = Fit(c, widths[i])
		} else {
			out[i] = c
		}
	}
	return strings.Join(out, " ")
}
