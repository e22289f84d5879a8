package hitched

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hitched-scraper/browser/browsertest"
	"hitched-scraper/models"
	"hitched-scraper/utils"
)

func TestCollectRegions(t *testing.T) {
	cfg := testConfig()
	site := browsertest.NewSite(map[string]string{
		cfg.LandingURL: page(`<div class="venuesCitiesList">
  <a class="venuesCitiesList__link" href="/wedding-venues/london">
     London </a>
  <a class="venuesCitiesList__link" href="">Nowhere</a>
  <a class="venuesCitiesList__link" href="https://www.hitched.co.uk/wedding-venues/kent">Kent</a>
</div>`),
	})

	regions, err := New(cfg, site.Session(), quietLogger()).CollectRegions()
	require.NoError(t, err)
	assert.Equal(t, []models.Region{
		{Name: "London", URL: "https://www.hitched.co.uk/wedding-venues/london"},
		{Name: "Kent", URL: "https://www.hitched.co.uk/wedding-venues/kent"},
	}, regions)
}

func TestCollectRegionsTimeoutFailsRun(t *testing.T) {
	cfg := testConfig()
	site := browsertest.NewSite(map[string]string{cfg.LandingURL: page(`<p>maintenance</p>`)})

	_, err := New(cfg, site.Session(), quietLogger()).CollectRegions()
	require.Error(t, err)
	assert.True(t, utils.IsRunError(err))
}

func TestCrawlRegionFollowsPaginationBound(t *testing.T) {
	cfg := testConfig()
	london := models.Region{Name: "London", URL: "https://example/venues/london"}
	site := browsertest.NewSite(map[string]string{
		london.URL + "?page=1": listingPage(1, 20, 1, 2, 3),
		london.URL + "?page=2": listingPage(21, 25, 1, 2, 3),
		london.URL + "?page=3": page(`<p>No venues found</p>`),
	})

	res := New(cfg, site.Session(), quietLogger()).CrawlListings([]ListingTarget{RegionTarget(london)})

	require.Len(t, res.Venues, 25)
	for _, v := range res.Venues {
		require.NotNil(t, v.Region)
		assert.Equal(t, "London", *v.Region)
	}
	assert.Equal(t, 3, res.PagesVisited)
	assert.Equal(t, 1, res.PagesFailed)
	assert.Empty(t, res.FailedTargets)
	assert.Equal(t, []string{
		london.URL + "?page=1", london.URL + "?page=2", london.URL + "?page=3",
	}, site.Visits())
}

func TestCrawlSkipsRegionWhoseFirstPageFails(t *testing.T) {
	cfg := testConfig()
	broken := models.Region{Name: "Broken", URL: "https://example/venues/broken"}
	kent := models.Region{Name: "Kent", URL: "https://example/venues/kent"}
	site := browsertest.NewSite(map[string]string{
		broken.URL + "?page=1": page(`<p>error</p>`),
		kent.URL + "?page=1":   listingPage(1, 2),
	})

	res := New(cfg, site.Session(), quietLogger()).CrawlListings([]ListingTarget{RegionTarget(broken), RegionTarget(kent)})

	assert.Equal(t, []string{"Broken"}, res.FailedTargets)
	assert.Len(t, res.Venues, 2)
	assert.Equal(t, "Kent", *res.Venues[0].Region)
}

func TestCrawlUnregionedAndDuplicateCount(t *testing.T) {
	cfg := testConfig()
	target := TemplateTarget(cfg.ListingURLTemplate)
	site := browsertest.NewSite(map[string]string{
		target.PageURL(1): listingPage(1, 3, 1, 2),
		target.PageURL(2): listingPage(3, 4, 1, 2),
	})

	res := New(cfg, site.Session(), quietLogger()).CrawlListings([]ListingTarget{target})

	assert.Len(t, res.Venues, 5, "duplicates are kept")
	assert.Equal(t, 1, res.DuplicateURLs)
	assert.Equal(t, 4, res.UniqueURLs)
	assert.Nil(t, res.Venues[0].Region)
	assert.True(t, strings.HasSuffix(target.PageURL(2), "NumPage=2"))
}

func TestParseCard(t *testing.T) {
	s := New(testConfig(), nil, quietLogger())

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(listingPage(7, 7)))
	require.NoError(t, err)
	region := "London"
	v := s.ParseCard(doc.Find("li.vendorTile").First(), &region)

	assert.Equal(t, "Venue 7", *v.Name)
	assert.Equal(t, "4.8", *v.Rating)
	assert.Equal(t, 70, *v.NoOfReviews)
	assert.Equal(t, "Camden · London", *v.Location)
	assert.Equal(t, "https://www.hitched.co.uk/wedding-venues/venue-7_1007.htm", *v.URL)
	assert.Equal(t, "From £1007", *v.PriceText)
	assert.Equal(t, models.PriceVenue, *v.PriceType)
	assert.Equal(t, "50 to 120 guests", *v.Capacity)
}

func TestParseCardFieldsAreIndependent(t *testing.T) {
	s := New(testConfig(), nil, quietLogger())
	html := `<ul>
<li class="vendorTile"><div class="vendorTile__content"><h2>Bare</h2></div></li>
<li class="vendorTile"><div class="vendorTileFooter__price">Price on request</div>
  <div class="vendorTile__contentRating">(1,234)</div></li>
</ul>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	bare := s.ParseCard(doc.Find("li.vendorTile").Eq(0), nil)
	assert.Equal(t, "Bare", *bare.Name)
	assert.Nil(t, bare.Rating)
	assert.Nil(t, bare.NoOfReviews)
	assert.Nil(t, bare.URL)
	assert.Nil(t, bare.PriceText)
	assert.Nil(t, bare.PriceType)
	assert.Nil(t, bare.Region)

	noIcon := s.ParseCard(doc.Find("li.vendorTile").Eq(1), nil)
	assert.Nil(t, noIcon.Name)
	assert.Equal(t, "Price on request", *noIcon.PriceText)
	assert.Nil(t, noIcon.PriceType, "price block without icon has no type")
	assert.Equal(t, 1234, *noIcon.NoOfReviews)
}

func TestClassifyPriceIcon(t *testing.T) {
	tests := []struct {
		class string
		want  models.PriceType
	}{
		{"svgIcon svgIcon__menus-price", models.PriceMeal},
		{"svgIcon svgIcon__pricing", models.PriceVenue},
		{"menus-price pricing", models.PriceMeal},
		{"svgIcon svgIcon__euro", models.PriceOther},
		{"", models.PriceOther},
	}
	for _, tt := range tests {
		if got := ClassifyPriceIcon(tt.class); got != tt.want {
			t.Errorf("ClassifyPriceIcon(%q) = %q; want %q", tt.class, got, tt.want)
		}
	}
}

func TestEmptyCrawlsReturnEmptySlices(t *testing.T) {
	cfg := testConfig()
	site := browsertest.NewSite(map[string]string{
		cfg.LandingURL: page(`<div class="venuesCitiesList"></div>`),
	})
	s := New(cfg, site.Session(), quietLogger())

	regions, err := s.CollectRegions()
	require.NoError(t, err)
	assert.NotNil(t, regions)
	assert.Empty(t, regions)

	res := s.CrawlListings([]ListingTarget{TemplateTarget(cfg.ListingURLTemplate)})
	assert.NotNil(t, res.Venues)
	assert.Empty(t, res.Venues)
	assert.Zero(t, res.UniqueURLs)

	details := s.CrawlDetails(nil)
	assert.NotNil(t, details.Details)
}
