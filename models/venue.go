package models

// Region is a geographic listing root discovered on the landing page.
type Region struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// PriceType classifies the price shown on a venue card.
type PriceType string

const (
	PriceMeal  PriceType = "meal"
	PriceVenue PriceType = "venue"
	PriceOther PriceType = "other"
)

// VenueSummary holds the raw fields scraped from one venue card.
// Every field is nullable: a card that is missing a field still yields a record.
type VenueSummary struct {
	Region      *string    `json:"region,omitempty"`
	Name        *string    `json:"name"`
	Rating      *string    `json:"rating"`
	NoOfReviews *int       `json:"no_of_reviews"`
	Location    *string    `json:"location"`
	PriceText   *string    `json:"price_text"`
	PriceType   *PriceType `json:"price_type"`
	Capacity    *string    `json:"capacity"`
	URL         *string    `json:"url"`
}

// VenueRecord is a VenueSummary after normalization.
// VenueNo follows input order and is not stable across re-scrapes.
type VenueRecord struct {
	VenueNo string `json:"venue_no"`
	VenueSummary
	PriceNumeric *float64 `json:"price_numeric"`
	MinCapacity  *int     `json:"min_capacity"`
	MaxCapacity  *int     `json:"max_capacity"`
}

// Deal is a promotional offer tile on a venue page.
type Deal struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	ExpiresOn string `json:"expires_on"`
	VenueNo   string `json:"venue_no"`
}

// Supplier is a preferred-vendor tile on a venue page.
type Supplier struct {
	VendorName  *string `json:"vendor_name"`
	VendorURL   *string `json:"vendor_url"`
	VendorImage *string `json:"vendor_image"`
	RatingText  *string `json:"rating_text"`
	Category    *string `json:"category"`
	VenueNo     string  `json:"venue_no"`
}

// VenueDetail merges a normalized venue with everything found on its detail page.
type VenueDetail struct {
	VenueRecord
	Description          *string    `json:"description"`
	AddressFull          *string    `json:"address_full"`
	VenueURL             *string    `json:"venue_url"`
	MapURL               *string    `json:"map_url"`
	SocialLinks          []string   `json:"social_links"`
	Deals                []Deal     `json:"deals"`
	PreferredSuppliers   []Supplier `json:"preferred_suppliers"`
	VenueTypeTags        []string   `json:"venue_type_tags"`
	DiningOptions        []string   `json:"dining_options"`
	CeremonyOptions      []string   `json:"ceremony_options"`
	EntertainmentOptions []string   `json:"entertainment_options"`
}

// Review is one review text, or a sentinel when no text could be collected.
type Review struct {
	VenueNo    string `json:"venue_no"`
	VenueName  string `json:"venue_name"`
	ReviewText string `json:"review_text"`
}

// Sentinel values. NotAvailable marks missing data; the Review* values are
// outcomes of a review crawl that produced no review text.
const (
	NotAvailable        = "N/A"
	ReviewNone          = "No reviews"
	ReviewNoSection     = "No reviews section"
	ReviewNotFound      = "No reviews found"
	ReviewScrapeFailure = "Error scraping"
)

// IsReviewSentinel reports whether text is one of the review sentinels.
func IsReviewSentinel(text string) bool {
	switch text {
	case NotAvailable, ReviewNone, ReviewNoSection, ReviewNotFound, ReviewScrapeFailure:
		return true
	}
	return false
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// Deref returns the pointed-to string or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
