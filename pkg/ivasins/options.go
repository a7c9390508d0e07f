// Package ivasins orchestrates the FormatearIva engine: it locates it, runs it
// against a base and a report, interprets its summary and previews its output.
package ivasins

import (
	"github.com/sirupsen/logrus"
	"github.com/ukaji3/ivasins-go/pkg/ivasins/invoker"
	"github.com/ukaji3/ivasins-go/pkg/ivasins/models"
)

const (
	// ModeExport produces the taxes export from base and report.
	ModeExport = models.OperationExport
	// ModeMerge merges the report into the base and rewrites the report.
	ModeMerge = models.OperationMerge
)

// Request describes one user-triggered engine run.
type Request struct {
	// Mode is ModeExport or ModeMerge.
	Mode models.Operation
	// Base is the base data file (csv or workbook).
	Base string
	// Report is the report text file.
	Report string
	// Sheet selects a workbook sheet; ignored for csv bases.
	Sheet string
	// IncludeRejected asks the engine for a rejected-rows file.
	// If nil, defaults to false: older engines reject the extra flag.
	IncludeRejected *bool
}

// ShouldIncludeRejected returns whether to request the rejected-rows file.
func (r Request) ShouldIncludeRejected() bool {
	if r.IncludeRejected != nil {
		return *r.IncludeRejected && r.Mode == ModeExport
	}
	return false
}

// Locator resolves the engine; *locator.Locator implements it.
type Locator interface {
	Resolve() (models.EngineDescriptor, error)
}

// Option configures a Runner.
type Option func(*Runner)

// WithInvoker replaces the subprocess invoker, typically with a fake.
func WithInvoker(inv invoker.Invoker) Option {
	return func(r *Runner) { r.invoker = inv }
}

// WithLocator replaces the default strategy chain.
func WithLocator(l Locator) Option {
	return func(r *Runner) { r.locator = l }
}

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithGetenv replaces os.Getenv for the override lookups.
func WithGetenv(getenv func(string) string) Option {
	return func(r *Runner) { r.getenv = getenv }
}

// WithRoots sets the working and program directories searched for motores.
func WithRoots(workDir, programDir string) Option {
	return func(r *Runner) { r.workDir, r.programDir = workDir, programDir }
}
