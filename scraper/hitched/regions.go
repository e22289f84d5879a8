package hitched

import (
	"hitched-scraper/models"
	"hitched-scraper/scraper/extract"
	"hitched-scraper/utils"
)

// RegionsFile is the raw snapshot of discovered regions.
const RegionsFile = "regions.json"

// CollectRegions reads every region link from the landing page in DOM order.
// Without the region list there is nothing to crawl, so a timeout fails the run.
func (s *Scraper) CollectRegions() ([]models.Region, error) {
	landing := s.cfg.LandingURL
	s.logger.Info("[regions] Loading %s", landing)

	doc, err := s.load(landing, s.sel.RegionList, s.cfg.RegionWaitTimeout)
	if err != nil {
		return nil, utils.RunError("collect regions", landing, err)
	}

	regions := []models.Region{}
	skipped := 0
	for _, link := range extract.All(doc.Selection, s.sel.RegionLink) {
		href := extract.Attr(link, "", "href")
		if href == nil {
			skipped++
			continue
		}
		regions = append(regions, models.Region{
			Name: extract.CollapseSpace(extract.TextOf(link)),
			URL:  extract.ResolveURL(landing, *href),
		})
	}

	s.logger.Info("[regions] Found %d regions (%d links without a URL skipped)", len(regions), skipped)
	return regions, nil
}
