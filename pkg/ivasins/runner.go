package ivasins

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/ukaji3/ivasins-go/pkg/ivasins/invoker"
	"github.com/ukaji3/ivasins-go/pkg/ivasins/locator"
	"github.com/ukaji3/ivasins-go/pkg/ivasins/models"
	"github.com/ukaji3/ivasins-go/pkg/ivasins/preview"
	"github.com/ukaji3/ivasins-go/pkg/ivasins/sheets"
	"github.com/ukaji3/ivasins-go/pkg/ivasins/summary"
)

// Result is the uniform outcome of an operation. OK is false exactly when
// Err is set; Message is always fit to show the user.
type Result struct {
	OK      bool
	Message string
	Kind    ErrorKind
	Err     error

	Engine  models.EngineDescriptor
	Outcome *models.InvocationOutcome
	Summary *models.SummaryRecord

	// Output, ReportOut and Rejected are scratch files written by the run.
	Output    string
	ReportOut string
	Rejected  string
	// Reused reports that a previous run's output was used without invoking the engine.
	Reused bool
	// Exported is the destination the output was copied to.
	Exported string
}

func (res *Result) fail(err error) *Result {
	res.OK = false
	res.Err = err
	res.Kind, res.Message = Classify(err)
	return res
}

// Runner runs engine operations for one session.
//
// Operations touch fixed scratch files; callers must not run two at once.
// Runner does not arbitrate concurrent use.
type Runner struct {
	cfg     Config
	log     *logrus.Logger
	locator Locator
	invoker invoker.Invoker
	session *Session

	getenv     func(string) string
	workDir    string
	programDir string
}

// New returns a Runner for cfg.
func New(cfg Config, opts ...Option) *Runner {
	r := &Runner{cfg: cfg, getenv: os.Getenv}
	if wd, err := os.Getwd(); err == nil {
		r.workDir = wd
	}
	r.programDir = programDir()
	for _, opt := range opts {
		opt(r)
	}

	if r.log == nil {
		r.log = NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	}
	if r.locator == nil {
		r.locator = locator.New(r.log,
			locator.DefaultStrategies(cfg.overrideStrategy(r.getenv), r.workDir, r.programDir)...)
	}
	if r.invoker == nil {
		r.invoker = invoker.NewProcess(cfg.interpreter(r.getenv), r.log)
	}
	dir := cfg.ScratchDir
	if dir == "" {
		dir = DefaultConfig().ScratchDir
	}
	r.session = NewSession(dir)
	return r
}

// Session returns the runner's session state.
func (r *Runner) Session() *Session {
	return r.session
}

// Locate resolves the engine without running it.
func (r *Runner) Locate() (models.EngineDescriptor, error) {
	desc, err := r.locator.Resolve()
	if err != nil {
		logError(r.log, "Locate", "resolve engine", nil, err)
	}
	return desc, err
}

// Run executes an export or merge and interprets its summary.
// A clean exit whose summary says ok=false is a failed result.
func (r *Runner) Run(ctx context.Context, req Request) *Result {
	res := &Result{}
	if req.Mode != ModeExport && req.Mode != ModeMerge {
		return res.fail(fmt.Errorf("%w: unsupported mode %q", ErrInvalidRequest, req.Mode))
	}
	if err := sheets.CheckSheet(req.Base, req.Sheet); err != nil {
		return res.fail(err)
	}

	if err := r.session.prepare(); err != nil {
		logError(r.log, "Run", "prepare scratch dir", r.session.Dir, err)
		return res.fail(err)
	}
	// Whatever happens next, the scratch output no longer matches the last inputs.
	r.session.Reset()

	desc, err := r.Locate()
	if err != nil {
		return res.fail(err)
	}
	res.Engine = desc

	ireq := models.InvocationRequest{
		Operation: req.Mode,
		Base:      req.Base,
		Report:    req.Report,
		Output:    r.session.OutputPath(),
		Summary:   r.session.SummaryPath(),
		Sheet:     req.Sheet,
	}
	if req.Mode == ModeMerge {
		ireq.ReportOut = r.session.ReportOutPath()
	}
	if req.ShouldIncludeRejected() {
		ireq.Rejected = r.session.RejectedPath()
	}

	log := r.log.WithFields(logrus.Fields{"mode": req.Mode, "base": req.Base, "report": req.Report})
	log.Info("running engine")

	outcome, err := r.invoker.Invoke(ctx, desc, ireq)
	if err != nil {
		logError(r.log, "Run", "invoke engine", ireq, err)
		return res.fail(err)
	}
	res.Outcome = &outcome
	if err := invoker.Check(outcome); err != nil {
		logError(r.log, "Run", "engine exit", outcome.ExitCode, err)
		return res.fail(err)
	}

	rec, err := summary.Parse(ireq.Summary, req.Mode)
	if err != nil {
		logError(r.log, "Run", "parse summary", ireq.Summary, err)
		return res.fail(err)
	}
	res.Summary = rec
	if !rec.OK {
		msg := rec.Message
		if msg == "" {
			msg = outcome.Output
		}
		err := ErrEngineReportedFailure
		if msg != "" {
			err = fmt.Errorf("%w: %s", ErrEngineReportedFailure, msg)
		}
		logError(r.log, "Run", "summary ok=false", ireq.Summary, err)
		return res.fail(err)
	}

	r.session.remember(req)
	res.OK = true
	res.Kind, res.Message = Classify(nil)
	// prepare cleared the scratch dir, so only files this run wrote exist.
	if fileExists(ireq.Output) {
		res.Output = ireq.Output
	}
	if ireq.ReportOut != "" && fileExists(ireq.ReportOut) {
		res.ReportOut = ireq.ReportOut
	}
	if ireq.Rejected != "" && rec.Export != nil && rec.Export.Rejected > 0 && fileExists(ireq.Rejected) {
		res.Rejected = ireq.Rejected
	}
	log.WithField("processed", rec.Processed()).Info("engine run complete")
	return res
}

// Start runs req on a background goroutine and delivers the result on the
// returned channel, which receives exactly one value.
func (r *Runner) Start(ctx context.Context, req Request) <-chan *Result {
	ch := make(chan *Result, 1)
	go func() {
		ch <- r.Run(ctx, req)
	}()
	return ch
}

// Export copies the output for req to dest, replacing it. When the session
// output already came from req's inputs the engine is not run again.
func (r *Runner) Export(ctx context.Context, req Request, dest string) *Result {
	var res *Result
	if r.session.Fresh(req) {
		res = &Result{OK: true, Reused: true, Output: r.session.OutputPath()}
		res.Kind, res.Message = Classify(nil)
		if req.Mode == ModeMerge {
			res.ReportOut = r.session.ReportOutPath()
		}
	} else {
		res = r.Run(ctx, req)
		if !res.OK {
			return res
		}
	}

	if res.Output == "" {
		return res.fail(ErrNoOutput)
	}
	if err := copyFile(res.Output, dest); err != nil {
		logError(r.log, "Export", "copy output", dest, err)
		return res.fail(err)
	}
	res.Exported = dest
	return res
}

// ExportRejected copies the last run's rejected-rows file to dest.
func (r *Runner) ExportRejected(dest string) error {
	return r.exportScratch(r.session.RejectedPath(), dest)
}

// ExportReport copies the last merge's updated report to dest.
func (r *Runner) ExportReport(dest string) error {
	return r.exportScratch(r.session.ReportOutPath(), dest)
}

func (r *Runner) exportScratch(src, dest string) error {
	if r.session.lastBase == "" || !fileExists(src) {
		return fmt.Errorf("%w: %s", ErrNoOutput, filepath.Base(src))
	}
	if err := copyFile(src, dest); err != nil {
		logError(r.log, "exportScratch", "copy", dest, err)
		return err
	}
	return nil
}

// ListSheets asks the engine for the sheet names of a workbook base.
func (r *Runner) ListSheets(ctx context.Context, base string) ([]string, error) {
	desc, err := r.Locate()
	if err != nil {
		return nil, err
	}
	names, err := sheets.ListSheets(ctx, r.invoker, desc, base)
	if err != nil {
		logError(r.log, "ListSheets", "list sheets", base, err)
		return nil, err
	}
	return names, nil
}

// Preview renders path as a grid. Workbooks are read sheet by sheet; other
// files as delimited text. maxRows <= 0 uses the configured cap.
func (r *Runner) Preview(path, sheet string, maxRows int) (*models.PreviewGrid, error) {
	if maxRows <= 0 {
		maxRows = r.cfg.PreviewRows
	}
	if maxRows <= 0 {
		maxRows = preview.DefaultMaxRows
	}
	var (
		grid *models.PreviewGrid
		err  error
	)
	if models.IsWorkbook(path) {
		grid, err = preview.LoadSheet(path, sheet, maxRows)
	} else {
		grid, err = preview.Load(path, maxRows)
	}
	if err != nil {
		err = &IOError{Op: "preview", Path: path, Err: err}
		logError(r.log, "Preview", "load preview", path, err)
		return nil, err
	}
	return grid, nil
}

// PreviewOutput renders the current session output.
func (r *Runner) PreviewOutput(maxRows int) (*models.PreviewGrid, error) {
	if r.session.lastBase == "" {
		return nil, ErrNoOutput
	}
	return r.Preview(r.session.OutputPath(), "", maxRows)
}

// Reset forgets the last run.
func (r *Runner) Reset() {
	r.session.Reset()
}

// copyFile replaces dest with the contents of src. Copying a file onto
// itself is a no-op.
func copyFile(src, dest string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return &IOError{Op: "open", Path: src, Err: err}
	}
	defer in.Close()

	if sameFile(in, dest) {
		return nil
	}

	out, err := os.Create(dest)
	if err != nil {
		return &IOError{Op: "create", Path: dest, Err: err}
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = &IOError{Op: "close", Path: dest, Err: cerr}
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return &IOError{Op: "copy", Path: dest, Err: err}
	}
	return nil
}

func sameFile(src *os.File, dest string) bool {
	srcInfo, err := src.Stat()
	if err != nil {
		return false
	}
	destInfo, err := os.Stat(dest)
	if err != nil {
		return false
	}
	return os.SameFile(srcInfo, destInfo)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// programDir is the directory holding the running executable.
func programDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}
