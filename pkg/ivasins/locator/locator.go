// Package locator resolves the on-disk location of the FormatearIva engine.
package locator

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/ukaji3/ivasins-go/pkg/ivasins/models"
)

const (
	// EngineName is the engine subdirectory and file stem inside motores.
	EngineName = "FormatearIva"
	// NestedProductDir is the product directory searched below each root.
	NestedProductDir = "IvaAsins"
	// EnvMotores overrides the motores directory.
	EnvMotores = "IVASINS_MOTORES"

	rootSearchDepth   = 8
	nestedSearchDepth = 6
	downSearchDepth   = 3
)

// ErrEngineNotFound indicates every strategy was exhausted without finding motores.
var ErrEngineNotFound = errors.New("engine directory 'motores' not found")

// ErrEngineMissing indicates motores was found but holds no usable binary or script.
var ErrEngineMissing = errors.New("engine binary or script not found")

// Locator tries its strategies in order; the first success wins.
type Locator struct {
	Strategies []Strategy
	Log        logrus.FieldLogger
}

// New returns a Locator over the given strategies.
func New(log logrus.FieldLogger, strategies ...Strategy) *Locator {
	return &Locator{Strategies: strategies, Log: log}
}

// DefaultStrategies returns the resolution order used by the application:
// override, upward from each root (plain then nested product dir), then a
// bounded downward search from workDir. Empty roots are omitted.
func DefaultStrategies(override OverrideStrategy, workDir, programDir string) []Strategy {
	strategies := []Strategy{override}
	for _, root := range []string{workDir, programDir} {
		if root == "" {
			continue
		}
		strategies = append(strategies,
			UpwardStrategy{Root: root, Depth: rootSearchDepth},
			UpwardStrategy{Root: filepath.Join(root, NestedProductDir), Depth: nestedSearchDepth},
		)
	}
	if workDir != "" {
		strategies = append(strategies, DownwardStrategy{Root: workDir, Depth: downSearchDepth})
	}
	return strategies
}

// FindMotores returns the first motores directory found by the strategies.
func (l *Locator) FindMotores() (string, error) {
	for _, s := range l.Strategies {
		dir, ok := s.Find()
		l.logger().WithFields(logrus.Fields{"strategy": s.Name(), "found": ok}).Debug("engine search")
		if ok {
			return dir, nil
		}
	}
	return "", fmt.Errorf("%w: set %s or the 'motores' config value, or run from the project directory",
		ErrEngineNotFound, EnvMotores)
}

// Resolve finds motores and describes the engine inside it.
func (l *Locator) Resolve() (models.EngineDescriptor, error) {
	dir, err := l.FindMotores()
	if err != nil {
		return models.EngineDescriptor{}, err
	}
	return Describe(dir)
}

// Describe inspects motoresDir/FormatearIva, preferring the compiled binary over the script.
func Describe(motoresDir string) (models.EngineDescriptor, error) {
	engineDir := filepath.Join(motoresDir, EngineName)
	desc := models.EngineDescriptor{MotoresDir: motoresDir, Dir: engineDir}

	binary := filepath.Join(engineDir, EngineName+binarySuffix())
	script := filepath.Join(engineDir, EngineName+".py")
	if isFile(binary) {
		desc.Binary = binary
		desc.UseBinary = true
	}
	if isFile(script) {
		desc.Script = script
	}
	if !desc.UseBinary && desc.Script == "" {
		return desc, fmt.Errorf("%w in %s", ErrEngineMissing, engineDir)
	}
	return desc, nil
}

func binarySuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}

func (l *Locator) logger() logrus.FieldLogger {
	if l.Log == nil {
		return logrus.StandardLogger()
	}
	return l.Log
}
