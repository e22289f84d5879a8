package services

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hitched-scraper/models"
	"hitched-scraper/storage"
)

func sampleDetails() []*models.VenueDetail {
	return []*models.VenueDetail{
		{
			VenueRecord: models.VenueRecord{
				VenueNo:      "V1",
				VenueSummary: models.VenueSummary{Name: sp("The Barn"), Region: sp("Surrey")},
				MinCapacity:  ip(50),
			},
			Description:     sp("A rustic barn."),
			SocialLinks:     []string{"https://facebook.com/barn", "https://instagram.com/barn"},
			VenueTypeTags:   []string{"Barn", "Countryside"},
			CeremonyOptions: []string{},
			Deals: []models.Deal{
				{Type: "Discount", Title: "10% off Fridays", ExpiresOn: "31/12/2025", VenueNo: "V1"},
			},
			PreferredSuppliers: []models.Supplier{
				{VendorName: sp("Bloom"), Category: sp("Florist"), VenueNo: "V1"},
				{VenueNo: "V1"},
			},
		},
		{VenueRecord: models.VenueRecord{VenueNo: "V2", VenueSummary: models.VenueSummary{Name: sp("Hall")}}},
	}
}

func TestDetailTables(t *testing.T) {
	c := NewDetailsCleaner(newTestLogger())
	tables, err := c.Tables(sampleDetails())
	require.NoError(t, err)

	require.Len(t, tables.Venues.Rows, 2)
	venue := tables.Venues.Rows[0]
	assert.Equal(t, "V1", venue[0])
	assert.Equal(t, "The Barn", venue[tables.Venues.Column("venue_name")])
	assert.Equal(t, "Barn, Countryside", venue[tables.Venues.Column("venue_type_tags")])
	assert.Equal(t, models.NotAvailable, venue[tables.Venues.Column("ceremony_options")])
	assert.Equal(t, "https://facebook.com/barn, https://instagram.com/barn", venue[tables.Venues.Column("social_links")])
	assert.Equal(t, "50", venue[tables.Venues.Column("min_capacity")])

	require.Len(t, tables.Suppliers.Rows, 2)
	assert.Equal(t, []string{"V1", "The Barn", "Bloom", "N/A", "N/A", "N/A", "Florist"}, tables.Suppliers.Rows[0])
	assert.Equal(t, []string{"V1", "The Barn", "N/A", "N/A", "N/A", "N/A", "N/A"}, tables.Suppliers.Rows[1])

	require.Len(t, tables.Deals.Rows, 1)
	assert.Equal(t, []string{"V1", "The Barn", "Discount", "10% off Fridays", "31/12/2025"}, tables.Deals.Rows[0])

	for _, tbl := range []storage.Table{tables.Venues, tables.Suppliers, tables.Deals} {
		for _, row := range tbl.Rows {
			for _, cell := range row {
				assert.NotEmpty(t, cell)
			}
		}
	}
}

func TestDetailsCleanFile(t *testing.T) {
	layout, err := storage.NewLayout(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, storage.WriteJSON(layout.Raw(DetailsFile), sampleDetails()))

	c := NewDetailsCleaner(newTestLogger())
	c.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }

	_, err = c.CleanFile(layout)
	require.NoError(t, err)

	for _, name := range []string{VenueCleanedFile, VenueSuppliersFile, VenueDealsFile} {
		_, err := os.Stat(layout.Processed(name))
		assert.NoError(t, err, name)
		_, err = os.Stat(layout.Backup(storage.DatedName(name, c.now())))
		assert.NoError(t, err, name)
	}
}

func TestDetailsCleanFileRejectsNullRecord(t *testing.T) {
	layout, err := storage.NewLayout(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(layout.Raw(DetailsFile), []byte(`[null]`), 0644))

	_, err = NewDetailsCleaner(newTestLogger()).CleanFile(layout)
	require.Error(t, err)
	_, statErr := os.Stat(layout.Processed(VenueCleanedFile))
	assert.True(t, os.IsNotExist(statErr))
}
