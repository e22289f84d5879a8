package hitched

import (
	"context"
	"errors"
	"strings"

	"hitched-scraper/browser"
	"hitched-scraper/config"
	"hitched-scraper/models"
	"hitched-scraper/scraper/extract"
	"hitched-scraper/utils"
)

// Checkpoint persists the reviews collected so far, in venue input order.
type Checkpoint func(reviews []models.Review) error

// ReviewCrawler collects review texts with a pool of workers, each owning a
// browser session from the factory for its whole lifetime.
type ReviewCrawler struct {
	cfg     *config.Config
	sel     config.Selectors
	factory browser.Factory
	logger  *utils.Logger
	workers int
	every   int
}

// NewReviewCrawler creates a ReviewCrawler. With one worker it behaves like
// the sequential crawl.
func NewReviewCrawler(cfg *config.Config, factory browser.Factory, logger *utils.Logger) *ReviewCrawler {
	every := cfg.CheckpointEvery
	if every < 1 {
		every = 1
	}
	return &ReviewCrawler{
		cfg:     cfg,
		sel:     cfg.Selectors,
		factory: factory,
		logger:  logger,
		workers: cfg.ReviewWorkers,
		every:   every,
	}
}

// ReviewURL maps a venue URL to its reviews page by replacing the first
// occurrence of from with to.
func ReviewURL(venueURL, from, to string) string {
	return strings.Replace(venueURL, from, to, 1)
}

// Crawl scrapes reviews for every venue. checkpoint runs every CheckpointEvery
// finished venues and once at the end; only the final call's error is returned.
// When no venue finished at all, the final checkpoint is skipped.
func (rc *ReviewCrawler) Crawl(ctx context.Context, venues []*models.VenueRecord, checkpoint Checkpoint) ([]models.Review, error) {
	pool := utils.NewWorkerPool[*models.VenueRecord, []models.Review](rc.workers, rc.workers*2)
	rc.logger.Info("[reviews] Scraping %d venues with %d workers", len(venues), pool.Workers())

	done := make(map[int][]models.Review, len(venues))
	ordered := func() []models.Review {
		var out []models.Review
		for i := range venues {
			out = append(out, done[i]...)
		}
		return out
	}

	start := func(workerID int) (utils.WorkerFunc[*models.VenueRecord, []models.Review], func(), error) {
		session, err := rc.factory()
		if err != nil {
			rc.logger.Error("[reviews] worker %d could not open a browser: %v", workerID, err)
			return nil, nil, err
		}
		log := rc.logger.WithField("worker", workerID)
		handle := func(_ context.Context, task utils.Task[*models.VenueRecord]) []models.Review {
			return rc.ScrapeVenue(session, task.Item, log)
		}
		cleanup := func() {
			if err := session.Close(); err != nil {
				log.Warn("[reviews] closing browser: %v", err)
			}
		}
		return handle, cleanup, nil
	}

	finished := 0
	runErr := pool.Run(ctx, venues, start, func(r utils.Result[[]models.Review]) {
		done[r.Index] = r.Value
		finished++
		if finished%rc.every == 0 && checkpoint != nil {
			if err := checkpoint(ordered()); err != nil {
				rc.logger.Warn("[reviews] checkpoint after %d venues failed: %v", finished, err)
			} else {
				rc.logger.Info("[reviews] Checkpoint: %d/%d venues", finished, len(venues))
			}
		}
	})

	reviews := ordered()
	if finished == 0 && len(venues) > 0 {
		// nothing collected; keep the previous run's table
		if runErr == nil {
			runErr = errors.New("no venue was processed")
		}
		return reviews, utils.RunError("review pool", "", runErr)
	}
	if checkpoint != nil {
		if err := checkpoint(reviews); err != nil {
			return reviews, utils.RunError("save reviews", "", err)
		}
	}
	if runErr != nil {
		return reviews, utils.RunError("review pool", "", runErr)
	}

	rc.logger.Info("[reviews] Done: %d rows for %d venues", len(reviews), finished)
	return reviews, nil
}

// ScrapeVenue collects the reviews of one venue. It always returns at least
// one row; a venue without review text gets a single sentinel row.
func (rc *ReviewCrawler) ScrapeVenue(session browser.Session, v *models.VenueRecord, log *utils.Logger) []models.Review {
	name := models.Deref(v.Name)
	sentinel := func(text string) []models.Review {
		return []models.Review{{VenueNo: v.VenueNo, VenueName: name, ReviewText: text}}
	}

	venueURL := models.Deref(v.URL)
	if venueURL == "" {
		return sentinel(models.NotAvailable)
	}
	url := ReviewURL(venueURL, rc.sel.ReviewPathFrom, rc.sel.ReviewPathTo)

	if err := session.Navigate(url); err != nil {
		log.Error("[reviews] %v", utils.ItemError("reviews "+v.VenueNo, url, err))
		return sentinel(models.ReviewScrapeFailure)
	}

	doc, err := browser.Snapshot(session, url)
	if err != nil {
		log.Error("[reviews] %v", utils.ItemError("reviews "+v.VenueNo, url, err))
		return sentinel(models.ReviewScrapeFailure)
	}
	for _, title := range extract.All(doc.Selection, rc.sel.NoReviewsTitle) {
		if extract.CollapseSpace(title.Text()) == rc.sel.NoReviewsText {
			log.Info("[reviews] %s has no reviews yet", v.VenueNo)
			return sentinel(models.ReviewNone)
		}
	}

	if err := session.WaitFor(rc.sel.ReviewBlock, rc.cfg.ReviewWaitTimeout); err != nil {
		if errors.Is(err, browser.ErrWaitTimeout) {
			log.Warn("[reviews] %s: no review section on %s", v.VenueNo, url)
			return sentinel(models.ReviewNoSection)
		}
		log.Error("[reviews] %v", utils.ItemError("reviews "+v.VenueNo, url, err))
		return sentinel(models.ReviewScrapeFailure)
	}

	if _, err := session.ClickAll(rc.sel.ReviewReadMore); err != nil {
		log.Debug("[reviews] read more on %s: %v", url, err)
	}

	doc, err = browser.Snapshot(session, url)
	if err != nil {
		log.Error("[reviews] %v", utils.ItemError("reviews "+v.VenueNo, url, err))
		return sentinel(models.ReviewScrapeFailure)
	}

	var reviews []models.Review
	for _, block := range extract.All(doc.Selection, rc.sel.ReviewBlock) {
		if text := extract.Text(block, rc.sel.ReviewText); text != nil {
			reviews = append(reviews, models.Review{VenueNo: v.VenueNo, VenueName: name, ReviewText: *text})
		}
	}
	if len(reviews) == 0 {
		return sentinel(models.ReviewNotFound)
	}

	log.Info("[reviews] %s: %d reviews", v.VenueNo, len(reviews))
	return reviews
}
