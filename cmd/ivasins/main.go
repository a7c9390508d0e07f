// Package main provides the CLI entry point for ivasins.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/ukaji3/ivasins-go/pkg/ivasins"
	"github.com/ukaji3/ivasins-go/pkg/ivasins/models"
	"github.com/ukaji3/ivasins-go/pkg/ivasins/preview"
	"github.com/ukaji3/ivasins-go/pkg/ivasins/sheets"
	"github.com/ukaji3/ivasins-go/pkg/ivasins/summary"
)

var (
	configPath string
	logLevel   string
	logFormat  string
	motoresDir string
	python     string
	scratchDir string

	outputPath    string
	reportOutPath string
	rejectedPath  string
	sheetName     string
	previewRows   int
	cellWidth     int
	asJSON        bool
	pretty        bool
	localSheets   bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ivasins",
		Short: "Run the FormatearIva engine over a base and a report",
		Long: `ivasins locates the FormatearIva engine, runs its export and merge
operations, prints the process summary and previews the produced files.`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", os.Getenv(ivasins.EnvConfig), "TOML settings file")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&logFormat, "log-format", "", "Log format: text, json")
	pf.StringVar(&motoresDir, "motores", "", "Engine directory (overridden by IVASINS_MOTORES)")
	pf.StringVar(&python, "python", "", "Interpreter command (overridden by IVASINS_PYTHON)")
	pf.StringVar(&scratchDir, "scratch-dir", "", "Directory for session output files")

	rootCmd.AddCommand(newLocateCmd(), newExportCmd(), newMergeCmd(), newSheetsCmd(), newPreviewCmd())
	return rootCmd
}

func newLocateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locate",
		Short: "Show which engine would run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner()
			if err != nil {
				return err
			}
			desc, err := r.Locate()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "motores: %s\n", desc.MotoresDir)
			fmt.Fprintf(out, "engine:  %s\n", desc.Entry())
			if desc.UseBinary {
				fmt.Fprintln(out, "mode:    binary")
			} else {
				fmt.Fprintln(out, "mode:    script")
			}
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export BASE REPORT",
		Short: "Produce the taxes export",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ivasins.Request{Mode: ivasins.ModeExport, Base: args[0], Report: args[1], Sheet: sheetName}
			if rejectedPath != "" {
				yes := true
				req.IncludeRejected = &yes
			}
			return runEngine(cmd, req)
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination for the export (replaced if present)")
	cmd.Flags().StringVar(&rejectedPath, "rejected", "", "Destination for the rejected-rows file")
	addRunFlags(cmd)
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func newMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge BASE REPORT",
		Short: "Merge the report into the base",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngine(cmd, ivasins.Request{Mode: ivasins.ModeMerge, Base: args[0], Report: args[1], Sheet: sheetName})
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination for the merged base (replaced if present)")
	cmd.Flags().StringVar(&reportOutPath, "report-out", "", "Destination for the updated report")
	addRunFlags(cmd)
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sheetName, "sheet", "", "Workbook sheet to read from the base")
	cmd.Flags().IntVar(&previewRows, "preview", 0, "Preview this many output rows after the run")
	cmd.Flags().IntVar(&cellWidth, "width", 24, "Maximum preview cell width")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
}

func newSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets BASE",
		Short: "List the sheets of a workbook base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				names []string
				err   error
			)
			if localSheets {
				names, err = sheets.WorkbookSheets(args[0])
			} else {
				var r *ivasins.Runner
				if r, err = newRunner(); err == nil {
					names, err = r.ListSheets(cmd.Context(), args[0])
				}
			}
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&localSheets, "local", false, "Read sheet names directly instead of asking the engine")
	return cmd
}

func newPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Show the first rows of a delimited file or workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner()
			if err != nil {
				return err
			}
			grid, err := r.Preview(args[0], sheetName, previewRows)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), grid)
			}
			return preview.Render(cmd.OutOrStdout(), grid, cellWidth)
		},
	}
	cmd.Flags().IntVar(&previewRows, "rows", 0, "Maximum data rows (default from config)")
	cmd.Flags().StringVar(&sheetName, "sheet", "", "Workbook sheet (default: first)")
	cmd.Flags().IntVar(&cellWidth, "width", 24, "Maximum cell width")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the grid as JSON")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

// runResult is the JSON shape of an export or merge.
type runResult struct {
	OK        bool                  `json:"ok"`
	Kind      ivasins.ErrorKind     `json:"kind,omitempty"`
	Message   string                `json:"message"`
	Reused    bool                  `json:"reused,omitempty"`
	Exported  string                `json:"exported,omitempty"`
	ReportOut string                `json:"report_out,omitempty"`
	Rejected  string                `json:"rejected,omitempty"`
	Summary   *models.SummaryRecord `json:"summary,omitempty"`
}

func runEngine(cmd *cobra.Command, req ivasins.Request) error {
	r, err := newRunner()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	// Cancelling ctx kills the engine, so the result always arrives.
	res := <-r.Start(ctx, req)
	if err := ctx.Err(); err != nil {
		return err
	}
	if res.OK {
		res = r.Export(ctx, req, outputPath)
	}

	out := runResult{OK: res.OK, Kind: res.Kind, Message: res.Message, Reused: res.Reused, Exported: res.Exported, Summary: res.Summary}
	if res.OK && reportOutPath != "" && req.Mode == ivasins.ModeMerge {
		if err := r.ExportReport(reportOutPath); err != nil {
			return err
		}
		out.ReportOut = reportOutPath
	}
	if res.OK && rejectedPath != "" && req.Mode == ivasins.ModeExport {
		if err := r.ExportRejected(rejectedPath); err != nil {
			return err
		}
		out.Rejected = rejectedPath
	}

	w := cmd.OutOrStdout()
	if asJSON {
		if err := writeJSON(w, out); err != nil {
			return err
		}
	} else if res.Summary != nil {
		if err := summary.WriteReport(w, res.Summary); err != nil {
			return err
		}
	}
	if !res.OK {
		return res.Err
	}

	if previewRows > 0 && !asJSON {
		grid, err := r.PreviewOutput(previewRows)
		if err != nil {
			return err
		}
		fmt.Fprintln(w)
		return preview.Render(w, grid, cellWidth)
	}
	return nil
}

func newRunner() (*ivasins.Runner, error) {
	cfg, err := ivasins.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	if motoresDir != "" {
		cfg.MotoresDir = motoresDir
	}
	if python != "" {
		cfg.Python = python
	}
	if scratchDir != "" {
		cfg.ScratchDir = scratchDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return ivasins.New(cfg), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
