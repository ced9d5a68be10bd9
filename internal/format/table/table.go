package table

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

const defaultGap = 2

// Format returns the rows padded according to the widest entry in each
// column, measured in terminal cells. Rows may have different lengths; the
// last cell of a row is never padded on the right.
func Format(rows [][]string, alignments []Alignment) []string {
	return FormatGap(rows, alignments, defaultGap)
}

// FormatGap is Format with a custom number of spaces between columns.
func FormatGap(rows [][]string, alignments []Alignment, gap int) []string {
	if len(rows) == 0 {
		return nil
	}
	if gap < 0 {
		gap = 0
	}
	var widths []int
	for _, row := range rows {
		for c, cell := range row {
			if c >= len(widths) {
				widths = append(widths, 0)
			}
			if w := runewidth.StringWidth(cell); w > widths[c] {
				widths[c] = w
			}
		}
	}
	sep := strings.Repeat(" ", gap)
	out := make([]string, len(rows))
	for i, row := range rows {
		var b strings.Builder
		for c, cell := range row {
			if c > 0 {
				b.WriteString(sep)
			}
			pad := widths[c] - runewidth.StringWidth(cell)
			if pad < 0 {
				pad = 0
			}
			last := c == len(row)-1
			if c < len(alignments) && alignments[c] == AlignRight {
				b.WriteString(strings.Repeat(" ", pad))
				b.WriteString(cell)
			} else {
				b.WriteString(cell)
				if !last {
					b.WriteString(strings.Repeat(" ", pad))
				}
			}
		}
		out[i] = b.String()
	}
	return out
}

// PadRight pads text with spaces to width terminal cells.
func PadRight(text string, width int) string {
	if pad := width - runewidth.StringWidth(text); pad > 0 {
		return text + strings.Repeat(" ", pad)
	}
	return text
}
