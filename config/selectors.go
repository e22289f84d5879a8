package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/andybalholm/cascadia"
)

// Selectors contains the CSS selectors for every element the crawlers read.
// The site's markup is an external contract, so all of them live here.
type Selectors struct {
	// Landing page
	RegionList string
	RegionLink string

	// Listing pages
	VenueCard        string
	VenueName        string
	VenueRating      string
	VenueRatingText  string
	VenueLocation    string
	VenueLink        string
	VenuePriceBlock  string
	VenuePriceIcon   string
	VenueCapacity    string
	PaginationButton string

	// Detail page
	DetailReady        string
	DescriptionMore    string
	Description        string
	Address            string
	VisitWebsite       string
	VisitWebsiteAttr   string
	MapLink            string
	SocialLinks        string
	DealTile           string
	DealType           string
	DealTitle          string
	DealExpiresOn      string
	SupplierTile       string
	SupplierLink       string
	SupplierImage      string
	SupplierRating     string
	SupplierInfo       string
	SupplierInfoSep    string
	FAQHeading         string
	FAQItem            string
	FAQVenueType       string
	FAQDiningOptions   string
	FAQCeremonyOptions string
	FAQEntertainment   string

	// Reviews page
	NoReviewsTitle string
	NoReviewsText  string
	ReviewBlock    string
	ReviewReadMore string
	ReviewText     string
	ReviewPathFrom string
	ReviewPathTo   string
}

// DefaultSelectors returns the selectors matching the current hitched.co.uk markup.
func DefaultSelectors() Selectors {
	return Selectors{
		RegionList: ".venuesCitiesList",
		RegionLink: ".venuesCitiesList__link",

		VenueCard:        "li.vendorTile",
		VenueName:        "div.vendorTile__content h2",
		VenueRating:      "span.vendorTile__rating",
		VenueRatingText:  "div.vendorTile__contentRating",
		VenueLocation:    "span.vendorTile__location",
		VenueLink:        "a",
		VenuePriceBlock:  "div.vendorTileFooter__price",
		VenuePriceIcon:   "i",
		VenueCapacity:    "div.vendorTileFooter__capacity",
		PaginationButton: "button.pagination__itemButton",

		DetailReady:        "h1",
		DescriptionMore:    "button.storefrontDescription__link",
		Description:        "div.storefrontDescription__content.app-storefront-description-readMore",
		Address:            "div.storefrontAddresses__header",
		VisitWebsite:       "span.storefrontHeadingWebsite__label.app-storefront-visit-website",
		VisitWebsiteAttr:   "data-href",
		MapLink:            "a.storefrontAddresses__openMap",
		SocialLinks:        "div.storefrontSummarySocial__list a",
		DealTile:           "div.storefrontDealsTile",
		DealType:           ".storefrontDealsTile__category",
		DealTitle:          ".storefrontDealsTile__text",
		DealExpiresOn:      ".storefrontDealsTile__time",
		SupplierTile:       "div.storefrontEndorsedVendor__tile",
		SupplierLink:       "a.storefrontEndorsedVendor__tileTitle",
		SupplierImage:      "picture img",
		SupplierRating:     "span.storefrontEndorsedVendor__rating",
		SupplierInfo:       "div.storefrontEndorsedVendor__info",
		SupplierInfoSep:    "·",
		FAQHeading:         "h3",
		FAQItem:            "div.storefrontFaqs__itemList",
		FAQVenueType:       "Venue type",
		FAQDiningOptions:   "Dining options",
		FAQCeremonyOptions: "Ceremony options",
		FAQEntertainment:   "Evening entertainment",

		NoReviewsTitle: "div.sectionCardBig__title",
		NoReviewsText:  "Be the first to share your experience!",
		ReviewBlock:    "div.storefrontReviewsTileContent",
		ReviewReadMore: "button.app-read-more-link",
		ReviewText:     "div.storefrontReviewsTileContent__description.app-reviews-tile-read-more",
		ReviewPathFrom: "wedding-venues",
		ReviewPathTo:   "wedding-venues/reviews",
	}
}

// Validate checks that every CSS selector is present and parses, and that the
// plain-text fields are set.
func (s Selectors) Validate() error {
	css := map[string]string{
		"RegionList":       s.RegionList,
		"RegionLink":       s.RegionLink,
		"VenueCard":        s.VenueCard,
		"VenueName":        s.VenueName,
		"VenueRating":      s.VenueRating,
		"VenueRatingText":  s.VenueRatingText,
		"VenueLocation":    s.VenueLocation,
		"VenueLink":        s.VenueLink,
		"VenuePriceBlock":  s.VenuePriceBlock,
		"VenuePriceIcon":   s.VenuePriceIcon,
		"VenueCapacity":    s.VenueCapacity,
		"PaginationButton": s.PaginationButton,
		"DetailReady":      s.DetailReady,
		"DescriptionMore":  s.DescriptionMore,
		"Description":      s.Description,
		"Address":          s.Address,
		"VisitWebsite":     s.VisitWebsite,
		"MapLink":          s.MapLink,
		"SocialLinks":      s.SocialLinks,
		"DealTile":         s.DealTile,
		"DealType":         s.DealType,
		"DealTitle":        s.DealTitle,
		"DealExpiresOn":    s.DealExpiresOn,
		"SupplierTile":     s.SupplierTile,
		"SupplierLink":     s.SupplierLink,
		"SupplierImage":    s.SupplierImage,
		"SupplierRating":   s.SupplierRating,
		"SupplierInfo":     s.SupplierInfo,
		"FAQHeading":       s.FAQHeading,
		"FAQItem":          s.FAQItem,
		"NoReviewsTitle":   s.NoReviewsTitle,
		"ReviewBlock":      s.ReviewBlock,
		"ReviewReadMore":   s.ReviewReadMore,
		"ReviewText":       s.ReviewText,
	}
	text := map[string]string{
		"VisitWebsiteAttr":   s.VisitWebsiteAttr,
		"SupplierInfoSep":    s.SupplierInfoSep,
		"FAQVenueType":       s.FAQVenueType,
		"FAQDiningOptions":   s.FAQDiningOptions,
		"FAQCeremonyOptions": s.FAQCeremonyOptions,
		"FAQEntertainment":   s.FAQEntertainment,
		"NoReviewsText":      s.NoReviewsText,
		"ReviewPathFrom":     s.ReviewPathFrom,
		"ReviewPathTo":       s.ReviewPathTo,
	}

	var problems []string
	for name, sel := range css {
		if strings.TrimSpace(sel) == "" {
			problems = append(problems, name+" is empty")
			continue
		}
		if _, err := cascadia.ParseGroup(sel); err != nil {
			problems = append(problems, fmt.Sprintf("%s %q: %v", name, sel, err))
		}
	}
	for name, val := range text {
		if strings.TrimSpace(val) == "" {
			problems = append(problems, name+" is empty")
		}
	}

	sort.Strings(problems)
	if len(problems) > 0 {
		return fmt.Errorf("selectors: %s", strings.Join(problems, "; "))
	}
	return nil
}

// FAQCategory pairs an output column with the heading label it is read from.
type FAQCategory struct {
	Key   string
	Label string
}

// FAQCategories returns the four fixed FAQ tag categories in output order.
func (s Selectors) FAQCategories() []FAQCategory {
	return []FAQCategory{
		{Key: "venue_type_tags", Label: s.FAQVenueType},
		{Key: "dining_options", Label: s.FAQDiningOptions},
		{Key: "ceremony_options", Label: s.FAQCeremonyOptions},
		{Key: "entertainment_options", Label: s.FAQEntertainment},
	}
}
