package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"hitched-scraper/scraper/hitched"
	"hitched-scraper/utils"
)

var (
	unregioned bool
	cleanInput string
	workers    int
)

func init() {
	venuesCmd.Flags().BoolVar(&unregioned, "unregioned", false, "Crawl the flat search listing instead of regions.json.")
	cleanCmd.Flags().StringVar(&cleanInput, "input", hitched.RegionedVenuesFile, "Raw venues file under <data-dir>/raw to normalize.")
	reviewsCmd.Flags().IntVar(&workers, "workers", 0, "Number of review workers, each with its own browser (overrides REVIEW_WORKERS).")
	pipelineCmd.Flags().BoolVar(&unregioned, "unregioned", false, "Crawl the flat search listing instead of discovering regions.")
	pipelineCmd.Flags().IntVar(&workers, "workers", 0, "Number of review workers (overrides REVIEW_WORKERS).")

	rootCmd.AddCommand(regionsCmd, venuesCmd, cleanCmd, detailsCmd, cleanDetailsCmd, reviewsCmd, insightsCmd, pipelineCmd)
}

// runWith loads config, builds the app and runs fn, closing everything after.
func runWith(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.logger.Warn("closing resources: %v", err)
		}
	}()

	if err := fn(cmd.Context(), a); err != nil {
		if !utils.IsRunError(err) {
			err = utils.RunError(cmd.Name(), "", err)
		}
		return err
	}
	return nil
}

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Collects region links from the venues landing page into raw/regions.json.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWith(cmd, func(ctx context.Context, a *app) error {
			return a.withStage(regionsLog, func(log *utils.Logger) error {
				return a.runRegions(ctx, log)
			})
		})
	},
}

var venuesCmd = &cobra.Command{
	Use:   "venues [--unregioned]",
	Short: "Crawls every listing page and writes the venue cards to raw/.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWith(cmd, func(ctx context.Context, a *app) error {
			return a.withStage(venuesLog, func(log *utils.Logger) error {
				_, err := a.runVenues(ctx, log, unregioned)
				return err
			})
		})
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean [--input all_venues.json]",
	Short: "Normalizes raw venues into processed/cleaned_venues.csv.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWith(cmd, func(ctx context.Context, a *app) error {
			return a.withStage(cleanerLog, func(log *utils.Logger) error {
				return a.runClean(ctx, log, cleanInput)
			})
		})
	},
}

var detailsCmd = &cobra.Command{
	Use:   "details",
	Short: "Visits every cleaned venue's page and writes raw/venue_all_details.json.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWith(cmd, func(ctx context.Context, a *app) error {
			return a.withStage(detailsLog, func(log *utils.Logger) error {
				return a.runDetails(ctx, log)
			})
		})
	},
}

var cleanDetailsCmd = &cobra.Command{
	Use:   "clean-details",
	Short: "Splits venue details into venue, supplier and deal tables.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWith(cmd, func(ctx context.Context, a *app) error {
			return a.withStage(cleanerLog, func(log *utils.Logger) error {
				return a.runCleanDetails(ctx, log)
			})
		})
	},
}

var reviewsCmd = &cobra.Command{
	Use:   "reviews [--workers N]",
	Short: "Collects review texts for every cleaned venue into processed/venue_reviews.csv.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWith(cmd, func(ctx context.Context, a *app) error {
			return a.withStage(reviewsLog, func(log *utils.Logger) error {
				return a.runReviews(ctx, log, workers)
			})
		})
	},
}

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Prints summary tables over the cleaned venues.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWith(cmd, func(ctx context.Context, a *app) error {
			return a.runInsights(ctx)
		})
	},
}

var pipelineCmd = &cobra.Command{
	Use:   "pipeline [--unregioned] [--workers N]",
	Short: "Runs every stage in order, sharing one browser for the sequential stages.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWith(cmd, func(ctx context.Context, a *app) error {
			a.logger.Info("=== Hitched scraping pipeline starting ===")
			a.logger.Info("Config: data %s | logs %s | workers %d | rate %dms | headless %v",
				a.cfg.DataDir, a.cfg.LogDir, a.cfg.ReviewWorkers, a.cfg.RateLimitMs, a.cfg.Headless)

			input := hitched.RegionedVenuesFile
			if !unregioned {
				if err := a.withStage(regionsLog, func(log *utils.Logger) error {
					return a.runRegions(ctx, log)
				}); err != nil {
					return err
				}
			}
			if err := a.withStage(venuesLog, func(log *utils.Logger) error {
				var err error
				input, err = a.runVenues(ctx, log, unregioned)
				return err
			}); err != nil {
				return err
			}

			steps := []struct {
				logFile string
				run     func(log *utils.Logger) error
			}{
				{cleanerLog, func(log *utils.Logger) error { return a.runClean(ctx, log, input) }},
				{detailsLog, func(log *utils.Logger) error { return a.runDetails(ctx, log) }},
				{cleanerLog, func(log *utils.Logger) error { return a.runCleanDetails(ctx, log) }},
				{reviewsLog, func(log *utils.Logger) error { return a.runReviews(ctx, log, workers) }},
			}
			for _, step := range steps {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := a.withStage(step.logFile, step.run); err != nil {
					return err
				}
			}

			a.logger.Info("=== Pipeline complete: tables in %s ===", a.layout.ProcessedDir())
			return a.runInsights(ctx)
		})
	},
}
