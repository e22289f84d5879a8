package services

import (
	"fmt"
	"strings"
	"time"

	"hitched-scraper/models"
	"hitched-scraper/storage"
	"hitched-scraper/utils"
)

// Detail artifact names.
const (
	DetailsFile        = "venue_all_details.json"
	VenueCleanedFile   = "venue_cleaned.csv"
	VenueSuppliersFile = "venue_suppliers.csv"
	VenueDealsFile     = "venue_deals.csv"
)

var (
	detailVenueColumns = []string{
		"venue_no", "venue_name", "region", "location", "rating", "no_of_reviews",
		"price_text", "price_type", "price_numeric", "min_capacity", "max_capacity", "url",
		"description", "venue_type_tags", "dining_options", "ceremony_options",
		"entertainment_options", "social_links",
	}
	supplierColumns = []string{
		"venue_no", "venue_name", "supplier_name", "supplier_url", "supplier_image",
		"supplier_rating", "supplier_category",
	}
	dealColumns = []string{"venue_no", "venue_name", "deal_type", "deal_title", "expires_on"}
)

// DetailTables is the denormalized view of the merged detail records,
// joined on venue_no.
type DetailTables struct {
	Venues    storage.Table
	Suppliers storage.Table
	Deals     storage.Table
}

// DetailsCleaner flattens venue_all_details.json into three CSV tables.
type DetailsCleaner struct {
	logger *utils.Logger
	now    func() time.Time
}

// NewDetailsCleaner creates a DetailsCleaner with the given logger.
func NewDetailsCleaner(logger *utils.Logger) *DetailsCleaner {
	return &DetailsCleaner{logger: logger, now: time.Now}
}

// Tables renders all three tables in memory.
func (c *DetailsCleaner) Tables(details []*models.VenueDetail) (DetailTables, error) {
	out := DetailTables{
		Venues:    storage.Table{Header: detailVenueColumns},
		Suppliers: storage.Table{Header: supplierColumns},
		Deals:     storage.Table{Header: dealColumns},
	}

	for i, d := range details {
		if d == nil {
			return DetailTables{}, fmt.Errorf("details: record %d is null", i+1)
		}
		name := textCell(d.Name)

		out.Venues.Rows = append(out.Venues.Rows, []string{
			textCell(&d.VenueNo), name, textCell(d.Region), textCell(d.Location),
			textCell(d.Rating), intCell(d.NoOfReviews), textCell(d.PriceText),
			priceTypeCell(d.PriceType), floatCell(d.PriceNumeric), intCell(d.MinCapacity),
			intCell(d.MaxCapacity), textCell(d.URL), textCell(d.Description),
			listCell(d.VenueTypeTags), listCell(d.DiningOptions), listCell(d.CeremonyOptions),
			listCell(d.EntertainmentOptions), listCell(d.SocialLinks),
		})

		for _, s := range d.PreferredSuppliers {
			out.Suppliers.Rows = append(out.Suppliers.Rows, []string{
				textCell(&d.VenueNo), name, textCell(s.VendorName), textCell(s.VendorURL),
				textCell(s.VendorImage), textCell(s.RatingText), textCell(s.Category),
			})
		}
		for _, deal := range d.Deals {
			out.Deals.Rows = append(out.Deals.Rows, []string{
				textCell(&d.VenueNo), name, textCell(&deal.Type), textCell(&deal.Title),
				textCell(&deal.ExpiresOn),
			})
		}
	}
	return out, nil
}

// CleanFile reads raw/venue_all_details.json and writes the three tables.
// All tables are rendered before any file is touched.
func (c *DetailsCleaner) CleanFile(layout storage.Layout) (DetailTables, error) {
	var details []*models.VenueDetail
	if err := storage.ReadJSON(layout.Raw(DetailsFile), &details); err != nil {
		return DetailTables{}, err
	}

	tables, err := c.Tables(details)
	if err != nil {
		return DetailTables{}, err
	}

	now := c.now()
	outputs := []struct {
		name  string
		table storage.Table
	}{
		{VenueCleanedFile, tables.Venues},
		{VenueSuppliersFile, tables.Suppliers},
		{VenueDealsFile, tables.Deals},
	}
	for _, out := range outputs {
		if _, err := out.table.Encode(); err != nil {
			return DetailTables{}, fmt.Errorf("details: render %s: %w", out.name, err)
		}
	}
	for _, out := range outputs {
		if _, err := layout.SaveCSV(out.name, out.table, now); err != nil {
			return DetailTables{}, err
		}
	}

	c.logger.Info("[details-cleaner] %d venues, %d suppliers, %d deals",
		len(tables.Venues.Rows), len(tables.Suppliers.Rows), len(tables.Deals.Rows))
	return tables, nil
}

// listCell joins a tag list with ", "; an empty list is "N/A".
func listCell(items []string) string {
	var kept []string
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			kept = append(kept, it)
		}
	}
	if len(kept) == 0 {
		return models.NotAvailable
	}
	return strings.Join(kept, ", ")
}
