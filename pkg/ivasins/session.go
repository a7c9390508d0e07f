package ivasins

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ukaji3/ivasins-go/pkg/ivasins/models"
)

// Scratch file names inside the session directory. Each run overwrites them.
const (
	OutputFileName    = "Asins_Taxes.csv"
	SummaryFileName   = "Asins_Taxes.resumen"
	RejectedFileName  = "Asins_Taxes.rechazados.csv"
	ReportOutFileName = "Reporte_Actualizado.txt"
)

// Session is the state carried between operations of one interactive session:
// where scratch files live and which inputs produced the current output.
// It is not safe for concurrent use.
type Session struct {
	Dir string

	lastMode     models.Operation
	lastBase     string
	lastReport   string
	lastSheet    string
	lastRejected bool
}

// NewSession returns a session using dir for scratch files.
func NewSession(dir string) *Session {
	return &Session{Dir: dir}
}

func (s *Session) OutputPath() string    { return filepath.Join(s.Dir, OutputFileName) }
func (s *Session) SummaryPath() string   { return filepath.Join(s.Dir, SummaryFileName) }
func (s *Session) RejectedPath() string  { return filepath.Join(s.Dir, RejectedFileName) }
func (s *Session) ReportOutPath() string { return filepath.Join(s.Dir, ReportOutFileName) }

// prepare creates the scratch dir and removes every file a previous run left
// there, so whatever exists afterwards was written by the next run.
func (s *Session) prepare() error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return &IOError{Op: "create", Path: s.Dir, Err: err}
	}
	for _, path := range s.scratchFiles() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return &IOError{Op: "remove", Path: path, Err: err}
		}
	}
	return nil
}

func (s *Session) scratchFiles() []string {
	return []string{s.SummaryPath(), s.OutputPath(), s.RejectedPath(), s.ReportOutPath()}
}

// remember records the inputs of a successful run.
func (s *Session) remember(req Request) {
	s.lastMode = req.Mode
	s.lastBase = req.Base
	s.lastReport = req.Report
	s.lastSheet = req.Sheet
	s.lastRejected = req.ShouldIncludeRejected()
}

// Fresh reports whether the current output was produced from req's inputs,
// with the same rejected-rows request, and still exists. Paths compare
// case-insensitively.
func (s *Session) Fresh(req Request) bool {
	if s.lastBase == "" || req.Mode != s.lastMode || req.Sheet != s.lastSheet ||
		req.ShouldIncludeRejected() != s.lastRejected {
		return false
	}
	if !samePath(req.Base, s.lastBase) || !samePath(req.Report, s.lastReport) {
		return false
	}
	_, err := os.Stat(s.OutputPath())
	return err == nil
}

// Reset forgets the last run.
func (s *Session) Reset() {
	s.lastMode, s.lastBase, s.lastReport, s.lastSheet = "", "", "", ""
	s.lastRejected = false
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return false
	}
	return strings.EqualFold(absA, absB)
}
