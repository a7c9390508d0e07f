package models

// PreviewGrid represents a bounded, rectangular rendering of a tabular file.
// Every row has exactly len(Columns) cells. Consumers treat it as read-only.
type PreviewGrid struct {
	// Columns is the ordered list of column names.
	Columns []string `json:"columns"`
	// Rows contains the data rows in file order.
	Rows [][]string `json:"rows"`
	// Delimiter is the detected field delimiter (zero for workbook sheets and empty files).
	Delimiter rune `json:"delimiter,omitempty"`
	// Truncated reports whether data rows beyond the cap were left out.
	Truncated bool `json:"truncated,omitempty"`
}

// Empty reports whether the grid has no columns.
func (g *PreviewGrid) Empty() bool {
	return len(g.Columns) == 0
}

// Cell returns the value at row r, column c, or "" when out of range.
func (g *PreviewGrid) Cell(r, c int) string {
	if r < 0 || r >= len(g.Rows) || c < 0 || c >= len(g.Rows[r]) {
		return ""
	}
	return g.Rows[r][c]
}
