package ivasins

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/ukaji3/ivasins-go/pkg/ivasins/invoker"
	"github.com/ukaji3/ivasins-go/pkg/ivasins/locator"
	"github.com/ukaji3/ivasins-go/pkg/ivasins/preview"
)

// EnvConfig names a TOML configuration file.
const EnvConfig = "IVASINS_CONFIG"

// Config holds the settings file values. Environment variables
// IVASINS_MOTORES and IVASINS_PYTHON take precedence over MotoresDir and Python.
type Config struct {
	// MotoresDir is the secondary override for the engine directory.
	MotoresDir string `toml:"motores"`
	// Python is the secondary override for the interpreter command.
	Python string `toml:"python"`
	// ScratchDir holds the per-session output and summary files.
	ScratchDir string `toml:"scratch_dir"`
	// PreviewRows caps preview grids.
	PreviewRows int `toml:"preview_rows" validate:"gte=0"`
	LogLevel    string `toml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogFormat   string `toml:"log_format" validate:"omitempty,oneof=text json"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		ScratchDir:  filepath.Join(os.TempDir(), locator.NestedProductDir),
		PreviewRows: preview.DefaultMaxRows,
		LogLevel:    "warn",
		LogFormat:   "text",
	}
}

// LoadConfig reads the TOML file at path over the defaults.
// An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return cfg, fmt.Errorf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := processValidationErrors(verrs)
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + " (" + fields[name] + ")"
	}
	return fmt.Errorf("invalid config: %s", strings.Join(parts, ", "))
}

func processValidationErrors(verrs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(verrs))
	for _, ve := range verrs {
		out[ve.Field()] = ve.Tag()
	}
	return out
}

// overrideStrategy is the locator override fed by IVASINS_MOTORES then MotoresDir.
func (c Config) overrideStrategy(getenv func(string) string) locator.OverrideStrategy {
	return locator.OverrideStrategy{Env: locator.EnvMotores, Fallback: c.MotoresDir, Getenv: getenv}
}

// interpreter resolves IVASINS_PYTHON, then Python, then the default.
func (c Config) interpreter(getenv func(string) string) []string {
	return invoker.ResolveInterpreter(getenv, c.Python)
}
