package preview

import (
	"bufio"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/ukaji3/ivasins-go/pkg/ivasins/models"
)

// Render writes grid as an aligned text table. Cells wider than maxWidth
// display columns are cut with an ellipsis; maxWidth <= 0 disables cutting.
func Render(w io.Writer, grid *models.PreviewGrid, maxWidth int) error {
	if grid.Empty() {
		_, err := io.WriteString(w, "(empty)\n")
		return err
	}

	cell := func(s string) string {
		if maxWidth > 0 {
			return runewidth.Truncate(s, maxWidth, "…")
		}
		return s
	}

	widths := make([]int, len(grid.Columns))
	for i, c := range grid.Columns {
		widths[i] = runewidth.StringWidth(cell(c))
	}
	for _, row := range grid.Rows {
		for i, v := range row {
			if cw := runewidth.StringWidth(cell(v)); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	bw := bufio.NewWriter(w)
	writeRow := func(values []string) {
		for i, v := range values {
			if i > 0 {
				bw.WriteString(" | ")
			}
			padded := runewidth.FillRight(cell(v), widths[i])
			if i == len(values)-1 {
				padded = strings.TrimRight(padded, " ")
			}
			bw.WriteString(padded)
		}
		bw.WriteString("\n")
	}

	writeRow(grid.Columns)
	rule := make([]string, len(widths))
	for i, n := range widths {
		rule[i] = strings.Repeat("-", n)
	}
	bw.WriteString(strings.Join(rule, "-+-"))
	bw.WriteString("\n")
	for _, row := range grid.Rows {
		writeRow(row)
	}
	if grid.Truncated {
		bw.WriteString("…\n")
	}
	return bw.Flush()
}
