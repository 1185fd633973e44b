package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/licensetower/pkg/analysis"
	"github.com/matzehuels/licensetower/pkg/compat"
	"github.com/matzehuels/licensetower/pkg/errors"
	"github.com/matzehuels/licensetower/pkg/export"
	"github.com/matzehuels/licensetower/pkg/manifest"
)

// scanOptions holds the flags of the scan command.
type scanOptions struct {
	format      string
	output      string
	noCache     bool
	interactive bool
	failOn      string
}

// Thresholds accepted by --fail-on.
const (
	failNever        = "none"
	failIncompatible = "incompatible"
	failMedium       = "medium"
	failHigh         = "high"
)

// scanCommand creates the scan command.
func (c *CLI) scanCommand() *cobra.Command {
	var opts scanOptions

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Report the licenses of every dependency under a directory",
		Long: `Scan walks path (default: the working directory) for package.json,
Cargo.toml, go.mod, requirements.txt and *.csproj manifests, resolves each
dependency's license from its registry and prints a report.

Use --format or an --output extension to export json, yaml, csv, md, html,
dot or svg instead.`,
		Example: `  licensetower scan
  licensetower scan ./services/api --output licenses.html
  licensetower scan --format csv --no-cache > licenses.csv
  licensetower scan --fail-on incompatible`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			return c.runScan(cmd.Context(), root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "export format: "+formatList())
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the export to a file")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "ignore and do not update the metadata cache")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "browse the results interactively")
	cmd.Flags().StringVar(&opts.failOn, "fail-on", failNever, "exit non-zero at: none, incompatible, medium, high")

	return cmd
}

func (c *CLI) runScan(ctx context.Context, root string, opts scanOptions) (err error) {
	format, err := resolveFormat(opts.format, opts.output)
	if err != nil {
		return err
	}
	if err := validateFailOn(opts.failOn); err != nil {
		return err
	}

	deps, err := manifest.Scan(root, manifest.Options{Logger: c.Logger})
	if err != nil {
		return err
	}
	if len(deps) == 0 {
		printWarning("No dependencies found in %s", root)
		return nil
	}
	c.Logger.Debug("scanned manifests", "root", root, "deps", len(deps))

	var spinner *Spinner
	var progress analysis.ProgressFunc
	if c.Logger.GetLevel() > log.DebugLevel && !opts.interactive {
		spinner = newSpinnerWithContext(ctx, fmt.Sprintf("Resolving %d dependencies...", len(deps)))
		progress = func(done, total int, _ analysis.Result) {
			spinner.SetMessage(fmt.Sprintf("Resolving dependencies %d/%d...", done, total))
		}
		spinner.Start()
	}

	timer := newProgress(c.Logger)
	e, err := c.openEnv(ctx, envOptions{noCache: opts.noCache, progress: progress})
	if err != nil {
		if spinner != nil {
			spinner.Stop()
		}
		return err
	}
	defer closeEnv(e, &err)

	report, err := e.analyzer.Analyze(ctx, deps)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}

	switch {
	case opts.interactive:
		if err := runBrowser(report, e.analyzer); err != nil {
			return err
		}
	case opts.output != "":
		if err := export.ExportFile(ctx, report, opts.output, format); err != nil {
			return err
		}
		printSuccess("Analyzed %d dependencies", report.Summary.Total)
		printFile(opts.output)
	case format != "":
		if err := export.Write(ctx, os.Stdout, report, format); err != nil {
			return err
		}
		timer.done("Analyzed dependencies", "total", report.Summary.Total, "unresolved", report.Summary.Failed)
	default:
		printReport(report, e.analyzer.Engine())
	}

	return checkThreshold(report, opts.failOn)
}

// resolveFormat picks the export format from --format, falling back to the
// --output extension. An empty result means terminal output.
func resolveFormat(format, output string) (export.Format, error) {
	if format != "" {
		return export.ParseFormat(format)
	}
	if output == "" {
		return "", nil
	}
	ext := filepath.Ext(output)
	if ext == "" {
		return export.FormatJSON, nil
	}
	return export.ParseFormat(ext)
}

func formatList() string {
	names := make([]string, len(export.Formats))
	for i, f := range export.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

func validateFailOn(s string) error {
	switch s {
	case failNever, failIncompatible, failMedium, failHigh:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidInput, "--fail-on must be one of none, incompatible, medium, high (got %q)", s)
}

// checkThreshold fails the command when the report reaches the --fail-on
// level.
func checkThreshold(report *analysis.Report, failOn string) error {
	switch failOn {
	case failIncompatible:
		if !report.Compatibility.OverallCompatible {
			return errors.New(errors.ErrCodeInvalidLicense, "%d incompatible license pairs", len(report.Compatibility.Issues))
		}
	case failMedium:
		if report.Risk != compat.RiskLow {
			return errors.New(errors.ErrCodeInvalidLicense, "license risk is %s", report.Risk)
		}
	case failHigh:
		if report.Risk == compat.RiskHigh {
			return errors.New(errors.ErrCodeInvalidLicense, "license risk is %s", report.Risk)
		}
	}
	return nil
}
