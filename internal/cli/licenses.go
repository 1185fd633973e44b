package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/licensetower/pkg/compat"
	"github.com/matzehuels/licensetower/pkg/errors"
)

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "check <license> <license>",
		Short:   "Check whether two licenses can be combined",
		Example: "  licensetower check MIT GPL-3.0\n  licensetower check apache-2.0 gpl-2.0",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateLicenses(args); err != nil {
				return err
			}
			p := compat.Check(args[0], args[1])
			label := p.LicenseA + " × " + p.LicenseB
			if p.Compatible {
				printSuccess("%s are compatible", StyleValue.Render(label))
				if p.Reason != "" {
					printDetail("%s", p.Reason)
				}
				return nil
			}
			printError("%s are incompatible", StyleValue.Render(label))
			printDetail("%s", p.Reason)
			return nil
		},
	}
}

// licensesCommand creates the licenses command group.
func (c *CLI) licensesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "licenses",
		Short: "Inspect licenses and the compatibility knowledge base",
	}

	cmd.AddCommand(c.licensesAnalyzeCommand())
	cmd.AddCommand(c.licensesNormalizeCommand())
	cmd.AddCommand(c.licensesKBCommand())
	cmd.AddCommand(c.licensesTextCommand())

	return cmd
}

// licensesAnalyzeCommand creates the "licenses analyze" subcommand.
func (c *CLI) licensesAnalyzeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "analyze <license>...",
		Short:   "Show the compatibility matrix, risk and recommendations for a license set",
		Example: "  licensetower licenses analyze MIT Apache-2.0 GPL-2.0",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateLicenses(args); err != nil {
				return err
			}
			fmt.Print(renderAnalysis(compat.Analyze(args), compat.RiskLevel(args), compat.Recommendations(args)))
			return nil
		},
	}
}

// licensesNormalizeCommand creates the "licenses normalize" subcommand.
func (c *CLI) licensesNormalizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <license>...",
		Short: "Print the canonical name of each license",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateLicenses(args); err != nil {
				return err
			}
			kb := compat.Default().KnowledgeBase()
			for _, a := range args {
				n := compat.Normalize(a)
				mark := ""
				if _, ok := kb.CompatibleWith(n); !ok {
					mark = " " + StyleWarning.Render("(not in knowledge base)")
				}
				fmt.Printf("%s %s %s%s\n", a, StyleDim.Render(iconArrow), StyleValue.Render(n), mark)
			}
			return nil
		},
	}
}

// licensesKBCommand creates the "licenses kb" subcommand.
func (c *CLI) licensesKBCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "kb",
		Short: "List the compatibility knowledge base",
		Long: `List every license in the knowledge base with the number of licenses it
combines with. Entries listed by only one side are reported as asymmetries;
such pairs are treated as incompatible.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(knowledgeBaseTable(compat.Default()))
			asym := compat.Default().KnowledgeBase().Asymmetries()
			if len(asym) == 0 {
				printSuccess("Knowledge base is symmetric")
				return nil
			}
			printWarning("%d asymmetric entries", len(asym))
			for _, a := range asym {
				printDetail("%s lists %s, but not the other way round", a.From, a.To)
			}
			return nil
		},
	}
}

func knowledgeBaseTable(engine *compat.Engine) string {
	kb := engine.KnowledgeBase()
	names := kb.Licenses()
	rows := make([][]string, 0, len(names))
	for _, n := range names {
		list, _ := kb.CompatibleWith(n)
		risky := ""
		if engine.CommerciallyRisky(n) {
			risky = iconWarning
		}
		rows = append(rows, []string{n, strconv.Itoa(len(list)), risky})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers("License", "Compatible with", "Copyleft risk").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeaderStyle.Padding(0, 1)
			case col == 2:
				return StyleWarning.Padding(0, 1).Align(lipgloss.Center)
			case col == 1:
				return StyleNumber.Padding(0, 1).Align(lipgloss.Right)
			}
			return tableCellStyle
		}).
		Render()
}

// licensesTextCommand creates the "licenses text" subcommand.
func (c *CLI) licensesTextCommand() *cobra.Command {
	var noCache bool
	cmd := &cobra.Command{
		Use:     "text <license>",
		Short:   "Print the full text of a license",
		Long:    "Print the full text of a license from the cache, fetching it from GitHub's license catalogue on a miss.",
		Example: "  licensetower licenses text Apache-2.0",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLicenseText(cmd.Context(), args[0], noCache)
		},
	}
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "always fetch the text")
	return cmd
}

func (c *CLI) runLicenseText(ctx context.Context, name string, noCache bool) (err error) {
	e, err := c.openEnv(ctx, envOptions{noCache: noCache})
	if err != nil {
		return err
	}
	defer closeEnv(e, &err)

	text, source, err := e.analyzer.LicenseText(ctx, name)
	if err != nil {
		return err
	}
	c.Logger.Debug("license text", "license", name, "source", source)
	fmt.Println(strings.TrimRight(text, "\n"))
	return nil
}

func validateLicenses(names []string) error {
	for _, n := range names {
		if err := errors.ValidateLicenseName(n); err != nil {
			return err
		}
	}
	return nil
}
