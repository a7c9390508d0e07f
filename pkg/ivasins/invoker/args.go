package invoker

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ukaji3/ivasins-go/pkg/ivasins/models"
)

const (
	// EnvPython overrides the interpreter command used to run the script.
	EnvPython = "IVASINS_PYTHON"
	// DefaultInterpreter runs the script when no binary is available.
	DefaultInterpreter = "python"
)

// Engine command-line flags.
const (
	FlagBase       = "--base"
	FlagReport     = "--reporte"
	FlagOutput     = "--salida"
	FlagSummary    = "--resumen"
	FlagReportOut  = "--reporte-out"
	FlagRejected   = "--rechazados"
	FlagSheet      = "--sheet"
	FlagListSheets = "--list-sheets"
)

// ErrInvalidRequest indicates a request that cannot be turned into a command line.
var ErrInvalidRequest = errors.New("invalid engine request")

var validate = validator.New()

// ParseInterpreter splits an interpreter command on whitespace.
// An empty command yields the default interpreter.
func ParseInterpreter(cmd string) []string {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return []string{DefaultInterpreter}
	}
	return parts
}

// ResolveInterpreter picks the interpreter command: environment first, then
// the configured value, then the default.
func ResolveInterpreter(getenv func(string) string, configured string) []string {
	if getenv != nil {
		if cmd := strings.TrimSpace(getenv(EnvPython)); cmd != "" {
			return ParseInterpreter(cmd)
		}
	}
	return ParseInterpreter(configured)
}

// Validate checks the request fields required by its operation.
func Validate(req models.InvocationRequest) error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field()+":"+fe.Tag())
			}
			return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	switch req.Operation {
	case models.OperationExport, models.OperationMerge:
		var missing []string
		for _, f := range []struct{ name, value string }{
			{"report", req.Report},
			{"output", req.Output},
			{"summary", req.Summary},
		} {
			if f.value == "" {
				missing = append(missing, f.name)
			}
		}
		if req.Operation == models.OperationMerge && req.ReportOut == "" {
			missing = append(missing, "report_out")
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: %s requires %s", ErrInvalidRequest, req.Operation, strings.Join(missing, ", "))
		}
		if req.Operation == models.OperationMerge && req.Rejected != "" {
			return fmt.Errorf("%w: rejected output is only produced by export", ErrInvalidRequest)
		}
		if req.Operation == models.OperationExport && req.ReportOut != "" {
			return fmt.Errorf("%w: report output is only produced by merge", ErrInvalidRequest)
		}
	case models.OperationListSheets:
		if req.Output != "" || req.Summary != "" || req.ReportOut != "" || req.Rejected != "" {
			return fmt.Errorf("%w: list-sheets takes no output files", ErrInvalidRequest)
		}
	}
	return nil
}

// BuildArgs returns the full argument vector for req against desc.
// argv[0] is the binary when usable, otherwise the interpreter followed by the script.
func BuildArgs(desc models.EngineDescriptor, req models.InvocationRequest, interpreter []string) ([]string, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	var argv []string
	switch {
	case desc.UseBinary && desc.Binary != "":
		argv = append(argv, desc.Binary)
	case desc.Script != "":
		if len(interpreter) == 0 {
			interpreter = []string{DefaultInterpreter}
		}
		argv = append(argv, interpreter...)
		argv = append(argv, desc.Script)
	default:
		return nil, fmt.Errorf("%w: descriptor has no entry point", ErrInvalidRequest)
	}

	base, err := filepath.Abs(req.Base)
	if err != nil {
		return nil, err
	}
	argv = append(argv, FlagBase, base)

	if req.Operation == models.OperationListSheets {
		return append(argv, FlagListSheets), nil
	}

	for _, f := range []struct {
		flag string
		path string
	}{
		{FlagReport, req.Report},
		{FlagOutput, req.Output},
		{FlagSummary, req.Summary},
		{FlagReportOut, req.ReportOut},
		{FlagRejected, req.Rejected},
	} {
		if f.path == "" {
			continue
		}
		abs, err := filepath.Abs(f.path)
		if err != nil {
			return nil, err
		}
		argv = append(argv, f.flag, abs)
	}

	if req.Sheet != "" && req.WorkbookInput() {
		argv = append(argv, FlagSheet, req.Sheet)
	}
	return argv, nil
}
