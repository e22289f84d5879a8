package models

// PriceStats summarises price_numeric for one price type.
type PriceStats struct {
	PriceType string
	Count     int
	Average   float64
	Min       float64
	Max       float64
}

// LocationCount is the number of venues listed under one location.
type LocationCount struct {
	Location string
	Count    int
}

// InsightReport holds the computed analytics over the cleaned venue table.
type InsightReport struct {
	TotalVenues        int
	VenuesWithPrice    int
	VenuesWithRating   int
	VenuesByRegion     map[string]int
	PriceByType        []PriceStats
	TopRated           []*VenueRecord
	TopLocations       []LocationCount
	CapacityKnown      int
	AverageMaxCapacity float64
}
