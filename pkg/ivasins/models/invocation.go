package models

import (
	"path/filepath"
	"strings"
)

// Operation represents the engine operation mode.
type Operation string

const (
	// OperationExport transforms the report against the base into an export file.
	OperationExport Operation = "export"
	// OperationMerge merges the report into the base and writes an updated report.
	OperationMerge Operation = "merge"
	// OperationListSheets asks the engine for the sheet names of a workbook base.
	OperationListSheets Operation = "list-sheets"
)

// InvocationRequest represents one call into the engine.
// It is built per user action and not modified afterwards.
type InvocationRequest struct {
	// Operation selects the engine mode.
	Operation Operation `json:"operation" validate:"required,oneof=export merge list-sheets"`
	// Base is the base data file.
	Base string `json:"base" validate:"required"`
	// Report is the report text file (export and merge).
	Report string `json:"report,omitempty"`
	// Output is the transformed output file (export and merge).
	Output string `json:"output,omitempty"`
	// Summary is the summary file the engine writes (export and merge).
	Summary string `json:"summary,omitempty"`
	// ReportOut is the updated report file (merge only).
	ReportOut string `json:"report_out,omitempty"`
	// Rejected is the rejected-rows file (export only, optional).
	Rejected string `json:"rejected,omitempty"`
	// Sheet names the workbook sheet to read (workbook base only).
	Sheet string `json:"sheet,omitempty"`
}

// WorkbookInput reports whether the base file is a spreadsheet workbook.
func (r InvocationRequest) WorkbookInput() bool {
	return IsWorkbook(r.Base)
}

// IsWorkbook reports whether path has a spreadsheet workbook extension.
func IsWorkbook(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xls":
		return true
	}
	return false
}

// InvocationOutcome represents the raw result of running the engine.
type InvocationOutcome struct {
	// ExitCode is the process exit status.
	ExitCode int `json:"exit_code"`
	// Output is the combined stdout/stderr text, trimmed.
	Output string `json:"output"`
	// Lines is the combined output split into lines, in emitted order.
	Lines []string `json:"lines,omitempty"`
}

// Succeeded reports whether the process exited with status 0.
func (o InvocationOutcome) Succeeded() bool {
	return o.ExitCode == 0
}
