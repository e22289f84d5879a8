package hitched

import (
	"fmt"
	"io"
	"strings"
	"time"

	"hitched-scraper/config"
	"hitched-scraper/utils"
)

func testConfig() *config.Config {
	return &config.Config{
		BaseURL:            "https://www.hitched.co.uk",
		LandingURL:         "https://www.hitched.co.uk/wedding-venues/",
		ListingURLTemplate: "https://www.hitched.co.uk/busc.php?id_grupo=1&NumPage=%d",
		RegionWaitTimeout:  30 * time.Second,
		ListingWaitTimeout: 15 * time.Second,
		DetailWaitTimeout:  15 * time.Second,
		ReviewWaitTimeout:  5 * time.Second,
		ReviewWorkers:      1,
		CheckpointEvery:    10,
		Selectors:          config.DefaultSelectors(),
	}
}

func quietLogger() *utils.Logger { return utils.NewLoggerTo(io.Discard) }

func page(body string) string {
	return "<html><head><title>hitched</title></head><body>" + body + "</body></html>"
}

func card(i int) string {
	return fmt.Sprintf(`<li class="vendorTile">
  <div class="vendorTile__content"><h2>Venue %d</h2></div>
  <div class="vendorTile__contentRating"><span class="vendorTile__rating">4.8</span> (%d)</div>
  <span class="vendorTile__location">Camden · London</span>
  <a href="/wedding-venues/venue-%d_%d.htm">View</a>
  <div class="vendorTileFooter__price"><i class="svgIcon svgIcon__pricing"></i> From £%d</div>
  <div class="vendorTileFooter__capacity">50 to 120 guests</div>
</li>`, i, i*10, i, 1000+i, 1000+i)
}

func listingPage(from, to int, buttons ...int) string {
	var b strings.Builder
	b.WriteString(`<ul class="vendorTiles">`)
	for i := from; i <= to; i++ {
		b.WriteString(card(i))
	}
	b.WriteString(`</ul><nav class="pagination">`)
	for _, n := range buttons {
		fmt.Fprintf(&b, `<button class="pagination__itemButton">%d</button>`, n)
	}
	b.WriteString(`<button class="pagination__itemButton">Next</button></nav>`)
	return page(b.String())
}

const detailBody = `
<h1>The Old Barn</h1>
<div class="storefrontDescription__content app-storefront-description-readMore">
  A rustic barn
  set in ten acres.
</div>
<button class="storefrontDescription__link">Read more</button>
<div class="storefrontAddresses__header">Old Lane, Guildford, Surrey</div>
<a class="storefrontAddresses__openMap" href="https://maps.example/?q=barn">Map</a>
<span class="storefrontHeadingWebsite__label app-storefront-visit-website" data-href="https://oldbarn.example">Visit website</span>
<div class="storefrontSummarySocial__list">
  <a href="https://facebook.com/oldbarn">fb</a>
  <a href="">empty</a>
  <a href="https://instagram.com/oldbarn">ig</a>
</div>
<div class="storefrontDealsTile">
  <span class="storefrontDealsTile__category">Discount</span>
  <p class="storefrontDealsTile__text">10% off Friday weddings</p>
  <span class="storefrontDealsTile__time">Expires 31/12/2025</span>
</div>
<div class="storefrontDealsTile">
  <span class="storefrontDealsTile__category">Gift</span>
  <p class="storefrontDealsTile__text">Free prosecco</p>
</div>
<div class="storefrontEndorsedVendor__tile">
  <a class="storefrontEndorsedVendor__tileTitle" href="/wedding-florists/bloom_1.htm">Bloom &amp; Co</a>
  <picture><img src="https://cdn.example/bloom.jpg"></picture>
  <span class="storefrontEndorsedVendor__rating">5.0 (42)</span>
  <div class="storefrontEndorsedVendor__info">5.0 (42) · Surrey · Florists</div>
</div>
<div class="storefrontEndorsedVendor__tile">
  <div class="storefrontEndorsedVendor__info">No separator here</div>
</div>
<section class="storefrontFaqs">
  <h3>Venue type:</h3>
  <div><div class="storefrontFaqs__itemList">Barn</div><div class="storefrontFaqs__itemList"> </div><div class="storefrontFaqs__itemList">Countryside</div></div>
  <div><div class="storefrontFaqs__itemList">Not this one</div></div>
  <h3>  Dining   options: </h3>
  <div><div class="storefrontFaqs__itemList">In-house catering</div></div>
  <h3>Venue type</h3>
  <div><div class="storefrontFaqs__itemList">Wrong heading</div></div>
</section>`

func reviewsPage(texts ...string) string {
	var b strings.Builder
	for _, t := range texts {
		fmt.Fprintf(&b, `<div class="storefrontReviewsTileContent">
  <div class="storefrontReviewsTileContent__description app-reviews-tile-read-more">%s</div>
  <button class="app-read-more-link">Read more</button>
</div>`, t)
	}
	return page(b.String())
}

const noReviewsPage = `<html><body><div class="sectionCardBig__title">
  Be the first to share your experience!
</div></body></html>`
