package preview

import (
	"fmt"

	"github.com/ukaji3/ivasins-go/pkg/ivasins/models"
	"github.com/xuri/excelize/v2"
)

// LoadSheet reads one workbook sheet into a grid, first row as header.
// An empty sheet name selects the first sheet.
func LoadSheet(path, sheetName string, maxRows int) (*models.PreviewGrid, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if sheetName == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return &models.PreviewGrid{}, nil
		}
		sheetName = sheets[0]
	}

	rows, err := f.Rows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheetName, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return &models.PreviewGrid{}, rows.Error()
	}
	header, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	grid := &models.PreviewGrid{Columns: headerFields(header)}

	for rows.Next() {
		if len(grid.Rows) >= maxRows {
			grid.Truncated = true
			break
		}
		cells, err := rows.Columns()
		if err != nil {
			return nil, err
		}
		grid.Rows = append(grid.Rows, normalizeRow(cells, len(grid.Columns)))
	}
	return grid, rows.Error()
}
