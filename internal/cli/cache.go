package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/licensetower/pkg/cache"
	"github.com/matzehuels/licensetower/pkg/config"
	"github.com/matzehuels/licensetower/pkg/errors"
	"github.com/matzehuels/licensetower/pkg/storage"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the license metadata cache",
	}

	cmd.AddCommand(c.cacheStatsCommand())
	cmd.AddCommand(c.cacheExportCommand())
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePruneCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// withCache runs fn against the configured cache without registry clients.
func (c *CLI) withCache(ctx context.Context, fn func(*env) error) (err error) {
	e, err := c.openEnv(ctx, envOptions{offline: true})
	if err != nil {
		return err
	}
	defer closeEnv(e, &err)
	return fn(e)
}

// cacheStatsCommand creates the "cache stats" subcommand.
func (c *CLI) cacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show entry counts, size and age range",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withCache(cmd.Context(), func(e *env) error {
				printStats(e.cache.Stats(), e.cfg)
				return nil
			})
		},
	}
}

func printStats(s cache.Stats, cfg *config.Config) {
	printKeyValue("Licenses", StyleNumber.Render(fmt.Sprint(s.InfoCount)))
	printKeyValue("Texts", StyleNumber.Render(fmt.Sprint(s.TextCount)))
	printKeyValue("Size", formatBytes(s.ApproxBytes))
	if s.Oldest != nil {
		printKeyValue("Oldest", formatAge(*s.Oldest))
	}
	if s.Newest != nil {
		printKeyValue("Newest", formatAge(*s.Newest))
	}
	printKeyValue("Max age", cfg.CacheMaxAge().String())
	printKeyValue("Max size", fmt.Sprint(cfg.CacheMaxSize()))
	if !cfg.CacheEnabled() {
		printWarning("Cache is disabled")
	}
}

// cacheExportCommand creates the "cache export" subcommand.
func (c *CLI) cacheExportCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump every cache entry with its age as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withCache(cmd.Context(), func(e *env) error {
				snap := e.cache.Export()
				if output == "" {
					return writeSnapshot(os.Stdout, snap)
				}
				f, err := os.Create(output)
				if err != nil {
					return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", output)
				}
				if err := writeSnapshot(f, snap); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				printSuccess("Exported %d licenses and %d texts", len(snap.Info), len(snap.Text))
				printFile(output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

func writeSnapshot(w io.Writer, snap cache.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withCache(cmd.Context(), func(e *env) error {
				before := e.cache.Stats()
				if err := e.cache.ClearAll(cmd.Context()); err != nil {
					return err
				}
				printSuccess("Cleared %d licenses and %d texts", before.InfoCount, before.TextCount)
				return nil
			})
		},
	}
}

// cachePruneCommand creates the "cache prune" subcommand.
func (c *CLI) cachePruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove expired entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withCache(cmd.Context(), func(e *env) error {
				n := e.cache.ClearExpired()
				if n == 0 {
					printInfo("No expired entries")
					return nil
				}
				if err := e.cache.Flush(cmd.Context()); err != nil {
					return err
				}
				printSuccess("Removed %d expired entries", n)
				return nil
			})
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache is stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, cacheLocation(cfg.StorageDriver(), cfg.StorageDSN()))
			return nil
		},
	}
}

// cacheLocation describes a storage target. Connection strings are printed
// without credentials.
func cacheLocation(driver, dsn string) string {
	switch driver {
	case "", storage.DriverFile:
		if dsn != "" {
			return dsn
		}
		dir, err := storage.DefaultDir()
		if err != nil {
			return "(unavailable: " + err.Error() + ")"
		}
		return dir
	case storage.DriverMemory, storage.DriverNull:
		return driver
	}
	return driver + ": " + storage.Redact(dsn)
}

func formatBytes(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := unit, 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func formatAge(t time.Time) string {
	return fmt.Sprintf("%s (%s ago)", t.Local().Format("2006-01-02 15:04"), time.Since(t).Round(time.Second))
}
