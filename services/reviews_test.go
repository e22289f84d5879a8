package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hitched-scraper/models"
	"hitched-scraper/storage"
)

func TestReviewTable(t *testing.T) {
	table := ReviewTable([]models.Review{
		{VenueNo: "V1", VenueName: "The Barn", ReviewText: "Lovely, \"rustic\" day"},
		{VenueNo: "V2", VenueName: "", ReviewText: models.ReviewNone},
	})

	assert.Equal(t, []string{"venue_no", "venue_name", "review_text"}, table.Header)
	assert.Equal(t, [][]string{
		{"V1", "The Barn", "Lovely, \"rustic\" day"},
		{"V2", "N/A", "No reviews"},
	}, table.Rows)
}

func TestReviewCheckpointRewritesLatest(t *testing.T) {
	layout, err := storage.NewLayout(t.TempDir())
	require.NoError(t, err)
	now := func() time.Time { return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC) }
	save := ReviewCheckpoint(layout, now)

	require.NoError(t, save([]models.Review{{VenueNo: "V1", VenueName: "A", ReviewText: "first"}}))
	require.NoError(t, save([]models.Review{
		{VenueNo: "V1", VenueName: "A", ReviewText: "first"},
		{VenueNo: "V2", VenueName: "B", ReviewText: models.ReviewNoSection},
	}))

	latest, err := storage.ReadCSV(layout.Processed(ReviewsFile))
	require.NoError(t, err)
	assert.Len(t, latest.Rows, 2)

	backup, err := storage.ReadCSV(layout.Backup(storage.DatedName(ReviewsFile, now())))
	require.NoError(t, err)
	assert.Equal(t, latest.Rows, backup.Rows)
}
