package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hitched-scraper/config"
	"hitched-scraper/models"
	"hitched-scraper/scraper/hitched"
	"hitched-scraper/services"
	"hitched-scraper/storage"
	"hitched-scraper/utils"
)

func testApp(t *testing.T) *app {
	t.Helper()
	root := t.TempDir()
	a, err := newApp(&config.Config{
		DataDir:   filepath.Join(root, "data"),
		LogDir:    filepath.Join(root, "logs"),
		Selectors: config.DefaultSelectors(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestCleanStageWritesTableAndLog(t *testing.T) {
	a := testApp(t)
	raw := []*models.VenueSummary{
		{Name: models.StringPtr("The Barn"), Location: models.StringPtr("Guildford · Surrey"),
			Capacity: models.StringPtr("50 to 120"), PriceText: models.StringPtr("£1,250")},
		{Name: models.StringPtr("Castle"), URL: models.StringPtr("https://www.hitched.co.ukhttps://www.hitched.co.uk/wedding-venues/castle_2.htm")},
	}
	require.NoError(t, storage.WriteJSON(a.layout.Raw(hitched.UnregionedVenuesFile), raw))

	err := a.withStage(cleanerLog, func(log *utils.Logger) error {
		return a.runClean(context.Background(), log, hitched.UnregionedVenuesFile)
	})
	require.NoError(t, err)

	venues, err := services.LoadCleanedVenues(a.layout)
	require.NoError(t, err)
	require.Len(t, venues, 2)
	assert.Equal(t, "V1", venues[0].VenueNo)
	assert.Equal(t, 1250.0, *venues[0].PriceNumeric)
	assert.Equal(t, "https://www.hitched.co.uk/wedding-venues/castle_2.htm", *venues[1].URL)

	logged, err := os.ReadFile(filepath.Join(a.cfg.LogDir, cleanerLog))
	require.NoError(t, err)
	assert.Contains(t, string(logged), "Cleaned 2 venues")
}

func TestCleanStageFailureIsRunError(t *testing.T) {
	a := testApp(t)

	err := a.withStage(cleanerLog, func(log *utils.Logger) error {
		return a.runClean(context.Background(), log, "missing.json")
	})
	require.Error(t, err)
	assert.True(t, utils.IsRunError(err))

	logged, readErr := os.ReadFile(filepath.Join(a.cfg.LogDir, cleanerLog))
	require.NoError(t, readErr)
	assert.Contains(t, string(logged), "missing.json")
}

func TestVenuesStageNeedsRegions(t *testing.T) {
	a := testApp(t)

	_, err := a.runVenues(context.Background(), utils.NewLoggerTo(&bytes.Buffer{}), false)
	require.Error(t, err)
	assert.True(t, utils.IsRunError(err))
	assert.Nil(t, a.session, "browser must not start without regions")
}

func TestSinkWithoutBackendsIsEmpty(t *testing.T) {
	a := testApp(t)

	sink, err := a.sink(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sink)
	assert.NoError(t, sink.WriteReviews(context.Background(), []models.Review{{VenueNo: "V1"}}))
	assert.Nil(t, a.store())
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, "Listing crawl", []summaryRow{{"Venues", 25}, {"Pages failed", 1}})

	out := buf.String()
	assert.Contains(t, out, "Listing crawl")
	assert.Contains(t, out, "Venues")
	assert.Contains(t, out, "25")
}
