package services

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"hitched-scraper/models"
	"hitched-scraper/utils"
)

const (
	topRatedCount     = 5
	topLocationsCount = 10
	noRegion          = "(none)"
)

// InsightService summarizes the cleaned venue table.
type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(venues []*models.VenueRecord) *models.InsightReport {
	report := &models.InsightReport{
		VenuesByRegion: make(map[string]int),
	}

	if len(venues) == 0 {
		return report
	}

	report.TotalVenues = len(venues)

	var rated []*models.VenueRecord
	prices := make(map[string][]float64)
	locations := make(map[string]int)
	var maxCapTotal int

	for _, v := range venues {
		region := noRegion
		if v.Region != nil {
			region = *v.Region
		}
		report.VenuesByRegion[region]++

		if v.PriceNumeric != nil {
			report.VenuesWithPrice++
			key := models.NotAvailable
			if v.PriceType != nil {
				key = string(*v.PriceType)
			}
			prices[key] = append(prices[key], *v.PriceNumeric)
		}
		if _, ok := ratingValue(v); ok {
			report.VenuesWithRating++
			rated = append(rated, v)
		}
		if v.Location != nil {
			locations[*v.Location]++
		}
		if v.MaxCapacity != nil {
			report.CapacityKnown++
			maxCapTotal += *v.MaxCapacity
		}
	}

	for priceType, values := range prices {
		stats := models.PriceStats{PriceType: priceType, Count: len(values), Min: values[0], Max: values[0]}
		var total float64
		for _, p := range values {
			total += p
			if p < stats.Min {
				stats.Min = p
			}
			if p > stats.Max {
				stats.Max = p
			}
		}
		stats.Average = round2(total / float64(len(values)))
		report.PriceByType = append(report.PriceByType, stats)
	}
	sort.Slice(report.PriceByType, func(i, j int) bool {
		return report.PriceByType[i].PriceType < report.PriceByType[j].PriceType
	})

	// Top rated: rating first, then review count as the tie-breaker
	sort.SliceStable(rated, func(i, j int) bool {
		ri, _ := ratingValue(rated[i])
		rj, _ := ratingValue(rated[j])
		if ri != rj {
			return ri > rj
		}
		return deref(rated[i].NoOfReviews) > deref(rated[j].NoOfReviews)
	})
	if len(rated) > topRatedCount {
		rated = rated[:topRatedCount]
	}
	report.TopRated = rated

	for loc, n := range locations {
		report.TopLocations = append(report.TopLocations, models.LocationCount{Location: loc, Count: n})
	}
	sort.Slice(report.TopLocations, func(i, j int) bool {
		a, b := report.TopLocations[i], report.TopLocations[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Location < b.Location
	})
	if len(report.TopLocations) > topLocationsCount {
		report.TopLocations = report.TopLocations[:topLocationsCount]
	}

	if report.CapacityKnown > 0 {
		report.AverageMaxCapacity = round2(float64(maxCapTotal) / float64(report.CapacityKnown))
	}

	s.logger.Debug("[insights] %d venues, %d priced, %d rated",
		report.TotalVenues, report.VenuesWithPrice, report.VenuesWithRating)
	return report
}

// Print renders the report as tables on w.
func (s *InsightService) Print(w io.Writer, r *models.InsightReport) {
	overview := newTable(w, "Hitched venue insights")
	overview.AppendRows([]table.Row{
		{"Total venues", r.TotalVenues},
		{"Venues with a price", r.VenuesWithPrice},
		{"Venues with a rating", r.VenuesWithRating},
		{"Venues with a max capacity", r.CapacityKnown},
		{"Average max capacity", formatFloat(r.AverageMaxCapacity)},
	})
	overview.Render()

	regions := newTable(w, "Venues by region")
	regions.AppendHeader(table.Row{"Region", "Venues"})
	names := make([]string, 0, len(r.VenuesByRegion))
	for name := range r.VenuesByRegion {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		regions.AppendRow(table.Row{name, r.VenuesByRegion[name]})
	}
	regions.Render()

	prices := newTable(w, "Price by type (£)")
	prices.AppendHeader(table.Row{"Type", "Venues", "Average", "Min", "Max"})
	for _, p := range r.PriceByType {
		prices.AppendRow(table.Row{p.PriceType, p.Count, formatFloat(p.Average), formatFloat(p.Min), formatFloat(p.Max)})
	}
	if len(r.PriceByType) == 0 {
		prices.AppendRow(table.Row{"No price data available"})
	}
	prices.Render()

	top := newTable(w, fmt.Sprintf("Top %d highest rated", topRatedCount))
	top.AppendHeader(table.Row{"#", "Venue", "Location", "Rating", "Reviews"})
	for i, v := range r.TopRated {
		top.AppendRow(table.Row{i + 1, truncate(textCell(v.Name), 40), textCell(v.Location), textCell(v.Rating), intCell(v.NoOfReviews)})
	}
	top.Render()

	locs := newTable(w, "Top locations")
	locs.AppendHeader(table.Row{"Location", "Venues"})
	for _, lc := range r.TopLocations {
		locs.AppendRow(table.Row{truncate(lc.Location, 40), lc.Count})
	}
	locs.Render()
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)
	t.Style().Title.Align = text.AlignCenter
	return t
}

// ratingValue parses the card's rating text ("4.9", "5.0").
func ratingValue(v *models.VenueRecord) (float64, bool) {
	if v.Rating == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(*v.Rating, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func deref(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
