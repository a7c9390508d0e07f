// Package invoker runs the engine as a subprocess under its command-line contract.
package invoker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/ukaji3/ivasins-go/pkg/ivasins/models"
)

// GenericFailureMessage is reported when a failed engine printed nothing.
const GenericFailureMessage = "engine execution failed"

// Invoker runs one engine request.
// The returned error covers spawn and read failures only; a non-zero exit is
// reported through the outcome.
type Invoker interface {
	Invoke(ctx context.Context, desc models.EngineDescriptor, req models.InvocationRequest) (models.InvocationOutcome, error)
}

// ProcessError reports a non-zero engine exit.
type ProcessError struct {
	ExitCode int
	Output   string
}

func (e *ProcessError) Error() string {
	if e.Output == "" {
		return GenericFailureMessage
	}
	return e.Output
}

// Check returns a *ProcessError for a non-zero exit and nil otherwise.
func Check(outcome models.InvocationOutcome) error {
	if outcome.Succeeded() {
		return nil
	}
	return &ProcessError{ExitCode: outcome.ExitCode, Output: outcome.Output}
}

// Process invokes the real engine.
type Process struct {
	// Interpreter runs the script when the descriptor has no usable binary.
	Interpreter []string
	// Dir is the working directory of the child (empty: inherit).
	Dir string
	Log logrus.FieldLogger
}

// NewProcess returns a Process using the given interpreter command.
func NewProcess(interpreter []string, log logrus.FieldLogger) *Process {
	return &Process{Interpreter: interpreter, Log: log}
}

// Invoke builds the command line, runs it and collects its combined output.
//
// Stdout and stderr share one pipe which is drained to EOF before Wait, so a
// child filling the pipe buffer cannot deadlock against the parent.
// There is no timeout; only ctx cancellation stops a hung engine.
func (p *Process) Invoke(ctx context.Context, desc models.EngineDescriptor, req models.InvocationRequest) (models.InvocationOutcome, error) {
	argv, err := BuildArgs(desc, req, p.Interpreter)
	if err != nil {
		return models.InvocationOutcome{}, err
	}
	log := p.logger().WithFields(logrus.Fields{"operation": req.Operation, "entry": desc.Entry()})
	log.WithField("argv", argv).Debug("starting engine")

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = p.Dir

	pr, pw, err := os.Pipe()
	if err != nil {
		return models.InvocationOutcome{}, fmt.Errorf("create output pipe: %w", err)
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return models.InvocationOutcome{}, fmt.Errorf("start engine %s: %w", argv[0], err)
	}
	// The child holds its own copy; ours must go so the reader sees EOF.
	pw.Close()

	lines, readErr := readLines(pr, log)
	pr.Close()

	waitErr := cmd.Wait()
	outcome := models.InvocationOutcome{
		Lines:  lines,
		Output: strings.TrimSpace(strings.Join(lines, "\n")),
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return outcome, fmt.Errorf("wait for engine: %w", waitErr)
		}
		// -1 when the engine was killed by a signal.
		outcome.ExitCode = exitErr.ExitCode()
	}
	if readErr != nil {
		return outcome, fmt.Errorf("read engine output: %w", readErr)
	}

	log.WithFields(logrus.Fields{"exit_code": outcome.ExitCode, "lines": len(lines)}).Debug("engine finished")
	return outcome, nil
}

// readLines reads r to EOF, returning its lines in order without line terminators.
func readLines(r io.Reader, log logrus.FieldLogger) ([]string, error) {
	br := bufio.NewReader(r)
	var lines []string
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			line = strings.TrimRight(line, "\r\n")
			log.Debug(line)
			lines = append(lines, line)
		}
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return lines, err
		}
	}
}

func (p *Process) logger() logrus.FieldLogger {
	if p.Log == nil {
		return logrus.StandardLogger()
	}
	return p.Log
}
