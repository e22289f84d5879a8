// Package cmd is the hitched-scraper command line.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"hitched-scraper/config"
)

var (
	dataDir  string
	logDir   string
	headless bool
	noCache  bool
)

var rootCmd = &cobra.Command{
	Use:   "hitched-scraper",
	Short: "hitched-scraper crawls hitched.co.uk wedding venues and normalizes them into CSV/JSON.",
	Long: `hitched-scraper runs the venue pipeline one stage at a time or end to end:

  regions -> venues -> clean -> details -> clean-details -> reviews

Raw snapshots are written under <data-dir>/raw, cleaned tables under
<data-dir>/processed and dated copies under <data-dir>/backups.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory for raw, processed and backup files (overrides DATA_DIR).")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Directory for per-stage log files (overrides LOG_DIR).")
	rootCmd.PersistentFlags().BoolVar(&headless, "headless", true, "Run the browser headless (overrides HEADLESS).")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "Do not use the memcache page cache even if MEMCACHE_ADDR is set.")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// loadConfig reads the environment, applies flags that were set and validates.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Load()

	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-dir") {
		cfg.LogDir = logDir
	}
	if flags.Changed("headless") {
		cfg.Headless = headless
	}
	if noCache {
		cfg.MemcacheAddr = ""
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
