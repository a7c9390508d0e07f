package invoker

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/ivasins-go/pkg/ivasins/models"
)

func TestParseInterpreter(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", []string{"python"}},
		{"   ", []string{"python"}},
		{"python3", []string{"python3"}},
		{"  py   -3 ", []string{"py", "-3"}},
		{"uv run\tpython", []string{"uv", "run", "python"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseInterpreter(tt.input), "input %q", tt.input)
	}
}

func TestResolveInterpreter(t *testing.T) {
	env := func(v string) func(string) string {
		return func(key string) string {
			if key == EnvPython {
				return v
			}
			return ""
		}
	}
	assert.Equal(t, []string{"py", "-3"}, ResolveInterpreter(env("py -3"), "python3"))
	assert.Equal(t, []string{"python3"}, ResolveInterpreter(env("  "), "python3"))
	assert.Equal(t, []string{"python"}, ResolveInterpreter(env(""), ""))
	assert.Equal(t, []string{"python3"}, ResolveInterpreter(nil, "python3"))
}

func TestBuildArgs(t *testing.T) {
	dir := t.TempDir()
	abs := func(name string) string { return filepath.Join(dir, name) }

	binary := models.EngineDescriptor{Binary: "/engines/FormatearIva", Script: "/engines/FormatearIva.py", UseBinary: true}
	script := models.EngineDescriptor{Script: "/engines/FormatearIva.py"}

	tests := []struct {
		name        string
		desc        models.EngineDescriptor
		req         models.InvocationRequest
		interpreter []string
		expected    []string
	}{
		{
			name: "export with binary",
			desc: binary,
			req: models.InvocationRequest{
				Operation: models.OperationExport,
				Base:      abs("base.csv"),
				Report:    abs("report.txt"),
				Output:    abs("out.csv"),
				Summary:   abs("out.resumen"),
			},
			expected: []string{"/engines/FormatearIva",
				"--base", abs("base.csv"), "--reporte", abs("report.txt"),
				"--salida", abs("out.csv"), "--resumen", abs("out.resumen")},
		},
		{
			name: "export with script and split interpreter",
			desc: script,
			req: models.InvocationRequest{
				Operation: models.OperationExport,
				Base:      abs("base.csv"),
				Report:    abs("report.txt"),
				Output:    abs("out.csv"),
				Summary:   abs("out.resumen"),
				Rejected:  abs("rejected.csv"),
			},
			interpreter: []string{"py", "-3"},
			expected: []string{"py", "-3", "/engines/FormatearIva.py",
				"--base", abs("base.csv"), "--reporte", abs("report.txt"),
				"--salida", abs("out.csv"), "--resumen", abs("out.resumen"),
				"--rechazados", abs("rejected.csv")},
		},
		{
			name: "merge with workbook sheet",
			desc: binary,
			req: models.InvocationRequest{
				Operation: models.OperationMerge,
				Base:      abs("base.xlsx"),
				Report:    abs("report.txt"),
				Output:    abs("out.csv"),
				Summary:   abs("out.resumen"),
				ReportOut: abs("report-updated.txt"),
				Sheet:     "Hoja 1",
			},
			expected: []string{"/engines/FormatearIva",
				"--base", abs("base.xlsx"), "--reporte", abs("report.txt"),
				"--salida", abs("out.csv"), "--resumen", abs("out.resumen"),
				"--reporte-out", abs("report-updated.txt"), "--sheet", "Hoja 1"},
		},
		{
			name: "sheet ignored for csv base",
			desc: binary,
			req: models.InvocationRequest{
				Operation: models.OperationExport,
				Base:      abs("base.csv"),
				Report:    abs("report.txt"),
				Output:    abs("out.csv"),
				Summary:   abs("out.resumen"),
				Sheet:     "Hoja 1",
			},
			expected: []string{"/engines/FormatearIva",
				"--base", abs("base.csv"), "--reporte", abs("report.txt"),
				"--salida", abs("out.csv"), "--resumen", abs("out.resumen")},
		},
		{
			name:        "list sheets defaults interpreter",
			desc:        script,
			req:         models.InvocationRequest{Operation: models.OperationListSheets, Base: abs("base.xlsx")},
			expected:    []string{"python", "/engines/FormatearIva.py", "--base", abs("base.xlsx"), "--list-sheets"},
			interpreter: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			argv, err := BuildArgs(tt.desc, tt.req, tt.interpreter)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, argv)
		})
	}
}

func TestBuildArgsRelativePathsBecomeAbsolute(t *testing.T) {
	argv, err := BuildArgs(models.EngineDescriptor{Binary: "engine", UseBinary: true}, models.InvocationRequest{
		Operation: models.OperationExport,
		Base:      "base.csv",
		Report:    "report.txt",
		Output:    "out.csv",
		Summary:   "out.resumen",
	}, nil)
	require.NoError(t, err)
	for i := 1; i < len(argv); i += 2 {
		assert.True(t, filepath.IsAbs(argv[i+1]), "%s %s", argv[i], argv[i+1])
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		req  models.InvocationRequest
	}{
		{"missing operation", models.InvocationRequest{Base: "b"}},
		{"unknown operation", models.InvocationRequest{Operation: "delete", Base: "b"}},
		{"missing base", models.InvocationRequest{Operation: models.OperationListSheets}},
		{"export without summary", models.InvocationRequest{Operation: models.OperationExport, Base: "b", Report: "r", Output: "o"}},
		{"merge without report out", models.InvocationRequest{Operation: models.OperationMerge, Base: "b", Report: "r", Output: "o", Summary: "s"}},
		{"merge with rejected", models.InvocationRequest{Operation: models.OperationMerge, Base: "b", Report: "r", Output: "o", Summary: "s", ReportOut: "ro", Rejected: "x"}},
		{"export with report out", models.InvocationRequest{Operation: models.OperationExport, Base: "b", Report: "r", Output: "o", Summary: "s", ReportOut: "ro"}},
		{"list sheets with output", models.InvocationRequest{Operation: models.OperationListSheets, Base: "b", Output: "o"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, Validate(tt.req), ErrInvalidRequest)
		})
	}
}

func TestBuildArgsWithoutEntryPoint(t *testing.T) {
	_, err := BuildArgs(models.EngineDescriptor{}, models.InvocationRequest{Operation: models.OperationListSheets, Base: "b.xlsx"}, nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
