package cmd

import (
	"context"
	"errors"
	"os"

	"hitched-scraper/models"
	"hitched-scraper/scraper/hitched"
	"hitched-scraper/services"
	"hitched-scraper/storage"
	"hitched-scraper/utils"
)

var errNoRegions = errors.New("no regions found; run the regions command first")

// withStage runs fn with the stage's own log file.
func (a *app) withStage(file string, fn func(log *utils.Logger) error) error {
	log, err := a.stageLogger(file)
	if err != nil {
		return err
	}
	defer log.Close()

	if err := fn(log); err != nil {
		log.Error("%v", err)
		return err
	}
	return nil
}

func (a *app) runRegions(_ context.Context, log *utils.Logger) error {
	session, err := a.browser()
	if err != nil {
		return err
	}
	regions, err := hitched.New(a.cfg, session, log).CollectRegions()
	if err != nil {
		return err
	}

	path, err := a.layout.SaveJSON(hitched.RegionsFile, regions, a.now(), storage.DatedName)
	if err != nil {
		return utils.RunError("save regions", path, err)
	}
	log.Info("[regions] Saved %d regions → %s", len(regions), path)
	return nil
}

// runVenues crawls every region from regions.json, or the unregioned search.
// It returns the raw file name the cleaner should read.
func (a *app) runVenues(_ context.Context, log *utils.Logger, unregioned bool) (string, error) {
	var (
		targets []hitched.ListingTarget
		output  string
	)
	if unregioned {
		targets = []hitched.ListingTarget{hitched.TemplateTarget(a.cfg.ListingURLTemplate)}
		output = hitched.UnregionedVenuesFile
	} else {
		var regions []models.Region
		if err := storage.ReadJSON(a.layout.Raw(hitched.RegionsFile), &regions); err != nil {
			return "", utils.RunError("load regions", a.layout.Raw(hitched.RegionsFile), err)
		}
		if len(regions) == 0 {
			return "", utils.RunError("load regions", a.layout.Raw(hitched.RegionsFile), errNoRegions)
		}
		for _, r := range regions {
			targets = append(targets, hitched.RegionTarget(r))
		}
		output = hitched.RegionedVenuesFile
	}

	session, err := a.browser()
	if err != nil {
		return "", err
	}
	res := hitched.New(a.cfg, session, log).CrawlListings(targets)
	if len(res.Venues) == 0 {
		log.Warn("[listing] No venues were scraped")
	}

	path, err := a.layout.SaveJSON(output, res.Venues, a.now(), storage.DatedName)
	if err != nil {
		return "", utils.RunError("save venues", path, err)
	}
	log.Info("[listing] Saved %d venues → %s", len(res.Venues), path)

	printSummary(os.Stdout, "Listing crawl", []summaryRow{
		{"Targets", len(targets)},
		{"Targets failed", len(res.FailedTargets)},
		{"Pages visited", res.PagesVisited},
		{"Pages failed", res.PagesFailed},
		{"Venues", len(res.Venues)},
		{"Unique URLs", res.UniqueURLs},
		{"Duplicate URLs", res.DuplicateURLs},
	})
	return output, nil
}

func (a *app) runClean(ctx context.Context, log *utils.Logger, input string) error {
	records, _, err := services.NewCleaner(log).CleanFile(a.layout, input)
	if err != nil {
		return utils.RunError("clean venues", a.layout.Raw(input), err)
	}

	sink, err := a.sink(ctx)
	if err != nil {
		return err
	}
	if err := sink.WriteVenues(ctx, records); err != nil {
		log.Error("[cleaner] Downstream write failed: %v", err)
	}
	return nil
}

func (a *app) runDetails(_ context.Context, log *utils.Logger) error {
	venues, err := services.LoadCleanedVenues(a.layout)
	if err != nil {
		return utils.RunError("load cleaned venues", a.layout.Processed(services.CleanedVenuesFile), err)
	}

	session, err := a.cachedBrowser()
	if err != nil {
		return err
	}
	res := hitched.New(a.cfg, session, log).CrawlDetails(venues)

	path, err := a.layout.SaveJSON(services.DetailsFile, res.Details, a.now(), storage.StampedName)
	if err != nil {
		return utils.RunError("save details", path, err)
	}
	log.Info("[details] Saved %d venues → %s", len(res.Details), path)

	printSummary(os.Stdout, "Detail crawl", []summaryRow{
		{"Venues", len(venues)},
		{"Scraped", len(res.Details)},
		{"Skipped", len(res.Skipped)},
	})
	return nil
}

func (a *app) runCleanDetails(ctx context.Context, log *utils.Logger) error {
	tables, err := services.NewDetailsCleaner(log).CleanFile(a.layout)
	if err != nil {
		return utils.RunError("clean details", a.layout.Raw(services.DetailsFile), err)
	}

	sink, err := a.sink(ctx)
	if err != nil {
		return err
	}
	if len(sink) == 0 {
		return nil
	}
	var details []*models.VenueDetail
	if err := storage.ReadJSON(a.layout.Raw(services.DetailsFile), &details); err != nil {
		return utils.RunError("load details", a.layout.Raw(services.DetailsFile), err)
	}
	if err := sink.WriteDetails(ctx, details); err != nil {
		log.Error("[details-cleaner] Downstream write failed: %v", err)
	}
	log.Debug("[details-cleaner] %d venue rows sent downstream", len(tables.Venues.Rows))
	return nil
}

func (a *app) runReviews(ctx context.Context, log *utils.Logger, workers int) error {
	venues, err := services.LoadCleanedVenues(a.layout)
	if err != nil {
		return utils.RunError("load cleaned venues", a.layout.Processed(services.CleanedVenuesFile), err)
	}

	cfg := *a.cfg
	if workers > 0 {
		cfg.ReviewWorkers = workers
	}
	crawler := hitched.NewReviewCrawler(&cfg, a.sessionFactory(), log)
	reviews, err := crawler.Crawl(ctx, venues, services.ReviewCheckpoint(a.layout, a.now))
	if err != nil {
		return err
	}

	sink, err := a.sink(ctx)
	if err != nil {
		return err
	}
	if err := sink.WriteReviews(ctx, reviews); err != nil {
		log.Error("[reviews] Downstream write failed: %v", err)
	}

	sentinels := 0
	for _, r := range reviews {
		if models.IsReviewSentinel(r.ReviewText) {
			sentinels++
		}
	}
	printSummary(os.Stdout, "Review crawl", []summaryRow{
		{"Venues", len(venues)},
		{"Workers", cfg.ReviewWorkers},
		{"Rows", len(reviews)},
		{"Review texts", len(reviews) - sentinels},
		{"Placeholder rows", sentinels},
	})
	return nil
}

// runInsights reads venues back from PostgreSQL when it is enabled, falling
// back to the cleaned CSV.
func (a *app) runInsights(ctx context.Context) error {
	var venues []*models.VenueRecord

	if a.cfg.PostgresEnabled {
		if _, err := a.sink(ctx); err != nil {
			return err
		}
		fetched, err := a.pg.FetchVenues(ctx)
		if err != nil {
			a.logger.Error("Failed to fetch venues from DB for insights: %v", err)
		} else {
			venues = fetched
		}
	}
	if len(venues) == 0 {
		loaded, err := services.LoadCleanedVenues(a.layout)
		if err != nil {
			return utils.RunError("load cleaned venues", a.layout.Processed(services.CleanedVenuesFile), err)
		}
		venues = loaded
	}

	svc := services.NewInsightService(a.logger)
	svc.Print(os.Stdout, svc.Generate(venues))
	return nil
}
