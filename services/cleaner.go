package services

import (
	"errors"
	"fmt"
	"regexp"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"hitched-scraper/models"
	"hitched-scraper/storage"
	"hitched-scraper/utils"
)

const (
	hitchedOrigin     = "https://www.hitched.co.uk"
	doubledOrigin     = hitchedOrigin + hitchedOrigin
	locationSeparator = "·"

	// CleanedVenuesFile is the normalized venue table the detail and review crawlers read.
	CleanedVenuesFile = "cleaned_venues.csv"
)

var (
	// capacityRegexp captures "50 to 120", "50 120" or a lone "80"; only the first match counts
	capacityRegexp = regexp.MustCompile(`(\d+)\s*(?:to)?\s*(\d+)?`)
	// priceRegexp captures the first run of digits, commas and periods holding at least one digit
	priceRegexp = regexp.MustCompile(`[\d,.]*\d[\d,.]*`)
)

// VenueColumns is the fixed column order of cleaned_venues.csv.
var VenueColumns = []string{
	"venue_no", "name", "region", "location", "rating", "no_of_reviews", "price_text",
	"price_type", "price_numeric", "capacity", "min_capacity", "max_capacity", "url",
}

// Cleaner normalizes raw venue summaries into VenueRecords and the cleaned CSV.
type Cleaner struct {
	logger *utils.Logger
	now    func() time.Time
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger, now: time.Now}
}

// StepError names the normalization step that failed and carries the stack
// captured where it was raised.
type StepError struct {
	Step  int
	Name  string
	Row   int
	Err   error
	Stack []byte
}

func stepError(step int, name string, row int, err error) *StepError {
	return &StepError{Step: step, Name: name, Row: row, Err: err, Stack: debug.Stack()}
}

func (e *StepError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("normalize step %d (%s) row %d: %v", e.Step, e.Name, e.Row, e.Err)
	}
	return fmt.Sprintf("normalize step %d (%s): %v", e.Step, e.Name, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

var errNilRecord = errors.New("nil record")

// Normalize applies numbering, URL repair, location cleanup and the capacity
// and price parses to every summary, in input order.
func (c *Cleaner) Normalize(raw []*models.VenueSummary) ([]*models.VenueRecord, error) {
	records := make([]*models.VenueRecord, 0, len(raw))

	for i, r := range raw {
		if r == nil {
			return nil, stepError(1, "venue_no", i+1, errNilRecord)
		}
		rec := &models.VenueRecord{
			VenueNo:      fmt.Sprintf("V%d", i+1),
			VenueSummary: *r,
		}

		rec.URL = fixDoubledOrigin(rec.URL)
		rec.Location = cleanLocation(rec.Location)
		rec.MinCapacity, rec.MaxCapacity = ParseCapacity(models.Deref(rec.Capacity))
		rec.PriceNumeric = ParsePrice(models.Deref(rec.PriceText))

		records = append(records, rec)
	}

	return records, nil
}

// fixDoubledOrigin repairs URLs that had the site origin prepended twice.
func fixDoubledOrigin(url *string) *string {
	if url == nil {
		return nil
	}
	fixed := strings.ReplaceAll(*url, doubledOrigin, hitchedOrigin)
	return &fixed
}

// cleanLocation deletes the "·" glyph, without inserting a space, and
// collapses whitespace.
func cleanLocation(loc *string) *string {
	if loc == nil {
		return nil
	}
	cleaned := normaliseText(strings.ReplaceAll(*loc, locationSeparator, ""))
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

// ParseCapacity reads "<min> to <max>" or "<n>" from free text.
//
//	"50 to 120 guests" → 50, 120
//	"up to 80"         → 80, nil
//	"ask us"           → nil, nil
func ParseCapacity(text string) (minCap, maxCap *int) {
	m := capacityRegexp.FindStringSubmatch(text)
	if m == nil {
		return nil, nil
	}
	if n, err := strconv.Atoi(m[1]); err == nil {
		minCap = &n
	}
	if m[2] != "" {
		if n, err := strconv.Atoi(m[2]); err == nil {
			maxCap = &n
		}
	}
	return minCap, maxCap
}

// ParsePrice converts the first numeric run of a price text to a float.
// Thousands separators are dropped; anything that still fails to parse is nil.
//
//	"From £1,250 per day" → 1250
//	"£95.50 pp"           → 95.5
func ParsePrice(text string) *float64 {
	match := priceRegexp.FindString(text)
	if match == "" {
		return nil
	}
	cleaned := strings.TrimRight(strings.ReplaceAll(match, ",", ""), ".")
	val, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &val
}

// VenueTable lays records out in the fixed column order with every missing
// value rendered as "N/A". The region column is dropped when no record has one.
func VenueTable(records []*models.VenueRecord) storage.Table {
	regioned := false
	for _, r := range records {
		if r.Region != nil {
			regioned = true
			break
		}
	}

	header := make([]string, 0, len(VenueColumns))
	for _, col := range VenueColumns {
		if col == "region" && !regioned {
			continue
		}
		header = append(header, col)
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		cells := map[string]string{
			"venue_no":      textCell(&r.VenueNo),
			"name":          textCell(r.Name),
			"region":        textCell(r.Region),
			"location":      textCell(r.Location),
			"rating":        textCell(r.Rating),
			"no_of_reviews": intCell(r.NoOfReviews),
			"price_text":    textCell(r.PriceText),
			"price_type":    priceTypeCell(r.PriceType),
			"price_numeric": floatCell(r.PriceNumeric),
			"capacity":      textCell(r.Capacity),
			"min_capacity":  intCell(r.MinCapacity),
			"max_capacity":  intCell(r.MaxCapacity),
			"url":           textCell(r.URL),
		}
		row := make([]string, len(header))
		for i, col := range header {
			row[i] = cells[col]
		}
		rows = append(rows, row)
	}

	return storage.Table{Header: header, Rows: rows}
}

// ParseVenueTable reads a cleaned venue table back; "N/A" cells become nil.
// Unknown columns are ignored and missing ones stay nil.
func ParseVenueTable(t storage.Table) ([]*models.VenueRecord, error) {
	if t.Column("venue_no") < 0 {
		return nil, fmt.Errorf("cleaned venues: missing venue_no column")
	}

	records := make([]*models.VenueRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		if len(row) != len(t.Header) {
			return nil, fmt.Errorf("cleaned venues: row %d has %d cells, header has %d", i+1, len(row), len(t.Header))
		}
		get := func(col string) *string {
			idx := t.Column(col)
			if idx < 0 {
				return nil
			}
			return parseTextCell(row[idx])
		}

		rec := &models.VenueRecord{VenueNo: models.Deref(get("venue_no"))}
		rec.Name = get("name")
		rec.Region = get("region")
		rec.Location = get("location")
		rec.Rating = get("rating")
		rec.PriceText = get("price_text")
		rec.Capacity = get("capacity")
		rec.URL = get("url")
		if pt := get("price_type"); pt != nil {
			p := models.PriceType(*pt)
			rec.PriceType = &p
		}

		var err error
		if rec.NoOfReviews, err = parseIntCell(get("no_of_reviews")); err != nil {
			return nil, fmt.Errorf("cleaned venues: row %d no_of_reviews: %w", i+1, err)
		}
		if rec.MinCapacity, err = parseIntCell(get("min_capacity")); err != nil {
			return nil, fmt.Errorf("cleaned venues: row %d min_capacity: %w", i+1, err)
		}
		if rec.MaxCapacity, err = parseIntCell(get("max_capacity")); err != nil {
			return nil, fmt.Errorf("cleaned venues: row %d max_capacity: %w", i+1, err)
		}
		if p := get("price_numeric"); p != nil {
			val, err := strconv.ParseFloat(*p, 64)
			if err != nil {
				return nil, fmt.Errorf("cleaned venues: row %d price_numeric: %w", i+1, err)
			}
			rec.PriceNumeric = &val
		}

		records = append(records, rec)
	}
	return records, nil
}

// LoadCleanedVenues reads processed/cleaned_venues.csv.
func LoadCleanedVenues(layout storage.Layout) ([]*models.VenueRecord, error) {
	table, err := storage.ReadCSV(layout.Processed(CleanedVenuesFile))
	if err != nil {
		return nil, err
	}
	return ParseVenueTable(table)
}

// CleanFile normalizes raw/<input> into processed/cleaned_venues.csv plus a
// dated backup. On any failure nothing is written and the error is returned.
func (c *Cleaner) CleanFile(layout storage.Layout, input string) (records []*models.VenueRecord, path string, err error) {
	defer func() {
		if p := recover(); p != nil {
			c.logger.Error("[cleaner] panic while cleaning %s: %v\n%s", input, p, debug.Stack())
			records, path, err = nil, "", fmt.Errorf("cleaner: panic: %v", p)
			return
		}
		var stepErr *StepError
		if errors.As(err, &stepErr) {
			c.logger.Error("[cleaner] failed while cleaning %s: %v\n%s", input, err, stepErr.Stack)
		} else if err != nil {
			c.logger.Error("[cleaner] failed while cleaning %s: %v\n%s", input, err, debug.Stack())
		}
	}()

	var raw []*models.VenueSummary
	if err := storage.ReadJSON(layout.Raw(input), &raw); err != nil {
		return nil, "", stepError(0, "load", 0, err)
	}
	c.logger.Info("[cleaner] Loaded %d raw venues from %s", len(raw), input)

	records, err = c.Normalize(raw)
	if err != nil {
		return nil, "", err
	}

	table := VenueTable(records)
	path, err = layout.SaveCSV(CleanedVenuesFile, table, c.now())
	if err != nil {
		return nil, "", stepError(8, "persist", 0, err)
	}

	withPrice, withCapacity := 0, 0
	for _, r := range records {
		if r.PriceNumeric != nil {
			withPrice++
		}
		if r.MinCapacity != nil {
			withCapacity++
		}
	}
	c.logger.Info("[cleaner] Cleaned %d venues (%d priced, %d with capacity) → %s",
		len(records), withPrice, withCapacity, path)
	return records, path, nil
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func textCell(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return models.NotAvailable
	}
	return *s
}

func intCell(n *int) string {
	if n == nil {
		return models.NotAvailable
	}
	return strconv.Itoa(*n)
}

// floatCell renders 1250 as "1250" and 95.5 as "95.5".
func floatCell(f *float64) string {
	if f == nil {
		return models.NotAvailable
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func priceTypeCell(p *models.PriceType) string {
	if p == nil {
		return models.NotAvailable
	}
	return string(*p)
}

func parseTextCell(cell string) *string {
	if cell == "" || cell == models.NotAvailable {
		return nil
	}
	return &cell
}

func parseIntCell(cell *string) (*int, error) {
	if cell == nil {
		return nil, nil
	}
	n, err := strconv.Atoi(*cell)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
