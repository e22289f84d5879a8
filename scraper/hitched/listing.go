package hitched

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"hitched-scraper/models"
	"hitched-scraper/scraper/extract"
	"hitched-scraper/utils"
)

// Raw listing snapshots, one per crawl mode.
const (
	RegionedVenuesFile   = "all_venues.json"
	UnregionedVenuesFile = "hitched_venues.json"
)

// reviewCountRegexp captures "(1,234)" in the card's rating block
var reviewCountRegexp = regexp.MustCompile(`\(([\d,]+)\)`)

// ListingTarget is one paginated listing: a region, or the unregioned search.
type ListingTarget struct {
	Label  string
	Region *string
	// PageURL returns the URL of 1-based page n.
	PageURL func(n int) string
}

// RegionTarget pages a region as "<url>?page=N" and tags records with its name.
func RegionTarget(r models.Region) ListingTarget {
	name := r.Name
	return ListingTarget{
		Label:  r.Name,
		Region: &name,
		PageURL: func(n int) string {
			return fmt.Sprintf("%s?page=%d", r.URL, n)
		},
	}
}

// TemplateTarget pages a URL template holding one %d for the page number.
// Records carry no region.
func TemplateTarget(template string) ListingTarget {
	return ListingTarget{
		Label: "all venues",
		PageURL: func(n int) string {
			return fmt.Sprintf(template, n)
		},
	}
}

// ListingResult is the outcome of a listing crawl.
type ListingResult struct {
	Venues        []*models.VenueSummary
	PagesVisited  int
	PagesFailed   int
	FailedTargets []string
	// UniqueURLs counts distinct venue URLs; DuplicateURLs counts records whose
	// URL was already seen. Duplicates are kept.
	UniqueURLs    int
	DuplicateURLs int
}

// CrawlListings crawls every target in order. A target whose first page never
// shows venue cards is skipped; later pages that fail are skipped on their own.
func (s *Scraper) CrawlListings(targets []ListingTarget) *ListingResult {
	res := &ListingResult{Venues: []*models.VenueSummary{}}
	seen := utils.NewURLSet()

	for i, t := range targets {
		s.logger.Info("[listing] (%d/%d) Scraping %s", i+1, len(targets), t.Label)
		before := len(res.Venues)

		if err := s.crawlTarget(t, res, seen); err != nil {
			res.FailedTargets = append(res.FailedTargets, t.Label)
			s.logger.Error("[listing] %v", err)
			continue
		}
		s.logger.Info("[listing] %s done: %d venues", t.Label, len(res.Venues)-before)
	}

	res.UniqueURLs = seen.Size()
	res.DuplicateURLs = seen.Duplicates()
	s.logger.Info("[listing] Scrape complete: %d venues (%d unique URLs, %d duplicates), %d pages visited, %d pages failed, %d targets failed",
		len(res.Venues), res.UniqueURLs, res.DuplicateURLs, res.PagesVisited, res.PagesFailed, len(res.FailedTargets))
	return res
}

func (s *Scraper) crawlTarget(t ListingTarget, res *ListingResult, seen *utils.URLSet) error {
	first := t.PageURL(1)
	doc, err := s.load(first, s.sel.VenueCard, s.cfg.ListingWaitTimeout)
	if err != nil {
		return utils.ItemError("listing "+t.Label, first, err)
	}
	res.PagesVisited++

	maxPage := s.maxPage(doc)
	s.logger.Debug("[listing] %s has %d pages", t.Label, maxPage)
	s.collectCards(doc, t.Region, res, seen)

	for page := 2; page <= maxPage; page++ {
		url := t.PageURL(page)
		s.logger.Info("[listing] Page %d of %s", page, t.Label)

		doc, err := s.load(url, s.sel.VenueCard, s.cfg.ListingWaitTimeout)
		res.PagesVisited++
		if err != nil {
			res.PagesFailed++
			s.logger.Warn("[listing] %v", utils.ItemError(fmt.Sprintf("page %d of %s", page, t.Label), url, err))
			continue
		}
		s.collectCards(doc, t.Region, res, seen)
	}
	return nil
}

func (s *Scraper) collectCards(doc *goquery.Document, region *string, res *ListingResult, seen *utils.URLSet) {
	for _, card := range extract.All(doc.Selection, s.sel.VenueCard) {
		v := s.ParseCard(card, region)
		if v.URL != nil {
			seen.Add(*v.URL)
		}
		res.Venues = append(res.Venues, v)
	}
}

// maxPage is the largest numeric pagination label, or 1 without pagination.
func (s *Scraper) maxPage(doc *goquery.Document) int {
	last := 1
	for _, btn := range extract.All(doc.Selection, s.sel.PaginationButton) {
		n, err := strconv.Atoi(strings.TrimSpace(btn.Text()))
		if err == nil && n > last {
			last = n
		}
	}
	return last
}

// ParseCard reads one venue card. Each field is looked up on its own, so a
// missing element only nils that field.
func (s *Scraper) ParseCard(card *goquery.Selection, region *string) *models.VenueSummary {
	v := &models.VenueSummary{
		Region:   region,
		Name:     extract.Text(card, s.sel.VenueName),
		Rating:   extract.Text(card, s.sel.VenueRating),
		Location: extract.Text(card, s.sel.VenueLocation),
		Capacity: extract.Text(card, s.sel.VenueCapacity),
	}

	if ratingText := extract.Text(card, s.sel.VenueRatingText); ratingText != nil {
		v.NoOfReviews = parseReviewCount(*ratingText)
	}

	if href := extract.Attr(card, s.sel.VenueLink, "href"); href != nil {
		url := extract.ResolveURL(s.cfg.BaseURL, *href)
		v.URL = &url
	}

	if block := card.Find(s.sel.VenuePriceBlock).First(); block.Length() > 0 {
		v.PriceText = extract.Text(block, "")
		if icon := block.Find(s.sel.VenuePriceIcon).First(); icon.Length() > 0 {
			class, _ := icon.Attr("class")
			pt := ClassifyPriceIcon(class)
			v.PriceType = &pt
		}
	}

	return v
}

// ClassifyPriceIcon maps the price icon's class list to a price type.
func ClassifyPriceIcon(class string) models.PriceType {
	switch {
	case strings.Contains(class, "menus-price"):
		return models.PriceMeal
	case strings.Contains(class, "pricing"):
		return models.PriceVenue
	default:
		return models.PriceOther
	}
}

func parseReviewCount(text string) *int {
	m := reviewCountRegexp.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return nil
	}
	return &n
}

