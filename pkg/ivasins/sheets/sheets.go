// Package sheets lists the sheet names of a workbook base file.
package sheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/ukaji3/ivasins-go/pkg/ivasins/invoker"
	"github.com/ukaji3/ivasins-go/pkg/ivasins/models"
	"github.com/xuri/excelize/v2"
)

// ListSheets asks the engine for the sheets of base. Every non-blank output
// line, in emitted order, is one sheet name. A non-zero exit yields an
// *invoker.ProcessError.
func ListSheets(ctx context.Context, inv invoker.Invoker, desc models.EngineDescriptor, base string) ([]string, error) {
	outcome, err := inv.Invoke(ctx, desc, models.InvocationRequest{
		Operation: models.OperationListSheets,
		Base:      base,
	})
	if err != nil {
		return nil, err
	}
	if err := invoker.Check(outcome); err != nil {
		return nil, err
	}
	return FromLines(outcome.Lines), nil
}

// FromLines returns the non-blank lines in order.
func FromLines(lines []string) []string {
	names := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		names = append(names, line)
	}
	return names
}

// WorkbookSheets lists the sheets of an xlsx/xlsm workbook without the engine.
func WorkbookSheets(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

// HasSheet reports whether the workbook at path contains sheet.
// Names compare case-insensitively, as the spreadsheet applications do.
func HasSheet(path, sheet string) (bool, error) {
	names, err := WorkbookSheets(path)
	if err != nil {
		return false, err
	}
	for _, name := range names {
		if strings.EqualFold(name, sheet) {
			return true, nil
		}
	}
	return false, nil
}

// CheckSheet returns an error when a named sheet is absent from a readable workbook.
// Workbooks excelize cannot open (legacy .xls) are left for the engine to judge.
func CheckSheet(path, sheet string) error {
	if sheet == "" || !models.IsWorkbook(path) {
		return nil
	}
	ok, err := HasSheet(path, sheet)
	if err != nil {
		return nil
	}
	if !ok {
		return fmt.Errorf("%w: sheet %q not found in %s", invoker.ErrInvalidRequest, sheet, path)
	}
	return nil
}
