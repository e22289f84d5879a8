package hitched

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"hitched-scraper/browser"
	"hitched-scraper/models"
	"hitched-scraper/scraper/extract"
	"hitched-scraper/utils"
)

// DetailResult is the outcome of a detail crawl.
type DetailResult struct {
	Details []*models.VenueDetail
	// Skipped lists venue_no values that were not crawled or failed to load.
	Skipped []string
}

// CrawlDetails visits each venue's page and merges what it finds into the record.
// Venues without an absolute URL, or whose heading never renders, are skipped.
func (s *Scraper) CrawlDetails(venues []*models.VenueRecord) *DetailResult {
	res := &DetailResult{Details: []*models.VenueDetail{}}

	for i, v := range venues {
		url := models.Deref(v.URL)
		if !strings.HasPrefix(url, "http") {
			s.logger.Warn("[details] Skipping %s: malformed URL %q", v.VenueNo, url)
			res.Skipped = append(res.Skipped, v.VenueNo)
			continue
		}

		s.logger.Info("[details] (%d/%d) Visiting %s", i+1, len(venues), url)
		detail, err := s.crawlDetail(v, url)
		if err != nil {
			s.logger.Error("[details] %v", err)
			res.Skipped = append(res.Skipped, v.VenueNo)
			continue
		}
		res.Details = append(res.Details, detail)
	}

	s.logger.Info("[details] Done: %d venues scraped, %d skipped", len(res.Details), len(res.Skipped))
	return res
}

func (s *Scraper) crawlDetail(v *models.VenueRecord, url string) (*models.VenueDetail, error) {
	if err := s.session.Navigate(url); err != nil {
		return nil, utils.ItemError("detail "+v.VenueNo, url, err)
	}
	if err := s.session.WaitFor(s.sel.DetailReady, s.cfg.DetailWaitTimeout); err != nil {
		return nil, utils.ItemError("detail "+v.VenueNo, url, err)
	}

	if n, err := s.session.ClickAll(s.sel.DescriptionMore); err != nil {
		s.logger.Debug("[details] read more on %s: %v", url, err)
	} else if n > 0 {
		s.logger.Debug("[details] Expanded description on %s", url)
	}

	doc, err := browser.Snapshot(s.session, url)
	if err != nil {
		return nil, utils.ItemError("detail "+v.VenueNo, url, err)
	}
	return s.ParseDetail(doc, v), nil
}

// ParseDetail extracts every detail section from a rendered venue page.
func (s *Scraper) ParseDetail(doc *goquery.Document, v *models.VenueRecord) *models.VenueDetail {
	page := doc.Selection
	pageURL := ""
	if doc.Url != nil {
		pageURL = doc.Url.String()
	}

	d := &models.VenueDetail{
		VenueRecord:        *v,
		Description:        extract.Text(page, s.sel.Description),
		AddressFull:        extract.Text(page, s.sel.Address),
		VenueURL:           extract.Attr(page, s.sel.VisitWebsite, s.sel.VisitWebsiteAttr),
		MapURL:             extract.Attr(page, s.sel.MapLink, "href"),
		SocialLinks:        []string{},
		Deals:              s.parseDeals(page, v.VenueNo),
		PreferredSuppliers: s.parseSuppliers(page, v.VenueNo, pageURL),
	}

	tags := make(map[string][]string, 4)
	for _, c := range s.sel.FAQCategories() {
		tags[c.Key] = s.FAQTags(page, c.Label)
	}
	d.VenueTypeTags = tags["venue_type_tags"]
	d.DiningOptions = tags["dining_options"]
	d.CeremonyOptions = tags["ceremony_options"]
	d.EntertainmentOptions = tags["entertainment_options"]

	for _, a := range extract.All(page, s.sel.SocialLinks) {
		if href := extract.Attr(a, "", "href"); href != nil {
			d.SocialLinks = append(d.SocialLinks, extract.ResolveURL(pageURL, *href))
		}
	}
	return d
}

// parseDeals keeps only tiles that have a type, a title and an expiry.
func (s *Scraper) parseDeals(page *goquery.Selection, venueNo string) []models.Deal {
	deals := []models.Deal{}
	for i, tile := range extract.All(page, s.sel.DealTile) {
		dealType := extract.Text(tile, s.sel.DealType)
		title := extract.Text(tile, s.sel.DealTitle)
		expires := extract.Text(tile, s.sel.DealExpiresOn)
		if dealType == nil || title == nil || expires == nil {
			s.logger.Debug("[details] Dropping deal %d of %s: missing type, title or expiry", i+1, venueNo)
			continue
		}
		deals = append(deals, models.Deal{
			Type:      *dealType,
			Title:     *title,
			ExpiresOn: *expires,
			VenueNo:   venueNo,
		})
	}
	return deals
}

// parseSuppliers keeps every tile; each field is nil when its element is missing.
func (s *Scraper) parseSuppliers(page *goquery.Selection, venueNo, pageURL string) []models.Supplier {
	suppliers := []models.Supplier{}
	for _, tile := range extract.All(page, s.sel.SupplierTile) {
		sup := models.Supplier{
			VendorImage: extract.Attr(tile, s.sel.SupplierImage, "src"),
			RatingText:  extract.Text(tile, s.sel.SupplierRating),
			Category:    s.supplierCategory(extract.Text(tile, s.sel.SupplierInfo)),
			VenueNo:     venueNo,
		}
		if link := tile.Find(s.sel.SupplierLink).First(); link.Length() > 0 {
			sup.VendorName = extract.Text(link, "")
			if href := extract.Attr(link, "", "href"); href != nil {
				url := extract.ResolveURL(pageURL, *href)
				sup.VendorURL = &url
			}
		}
		suppliers = append(suppliers, sup)
	}
	return suppliers
}

// supplierCategory is the last separator-delimited segment of the info text,
// e.g. "4.9 (120) · Surrey · Florist" → "Florist".
func (s *Scraper) supplierCategory(info *string) *string {
	if info == nil || !strings.Contains(*info, s.sel.SupplierInfoSep) {
		return nil
	}
	parts := strings.Split(*info, s.sel.SupplierInfoSep)
	category := extract.CollapseSpace(parts[len(parts)-1])
	if category == "" {
		return nil
	}
	return &category
}

// FAQTags finds the heading reading "<label>:" and returns the non-empty tag
// texts of the first div that follows it.
func (s *Scraper) FAQTags(page *goquery.Selection, label string) []string {
	tags := []string{}
	want := label + ":"

	heading := page.Find(s.sel.FAQHeading).FilterFunction(func(_ int, h *goquery.Selection) bool {
		return extract.CollapseSpace(h.Text()) == want
	}).First()
	if heading.Length() == 0 {
		return tags
	}

	section := heading.NextAllFiltered("div").First()
	return append(tags, extract.Texts(section, s.sel.FAQItem)...)
}
