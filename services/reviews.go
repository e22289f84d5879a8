package services

import (
	"time"

	"hitched-scraper/models"
	"hitched-scraper/storage"
)

// ReviewsFile is the review table, rewritten at every checkpoint.
const ReviewsFile = "venue_reviews.csv"

var reviewColumns = []string{"venue_no", "venue_name", "review_text"}

// ReviewTable renders review rows; an empty venue name becomes "N/A".
func ReviewTable(reviews []models.Review) storage.Table {
	t := storage.Table{Header: reviewColumns, Rows: make([][]string, 0, len(reviews))}
	for _, r := range reviews {
		t.Rows = append(t.Rows, []string{
			textCell(&r.VenueNo), textCell(&r.VenueName), textCell(&r.ReviewText),
		})
	}
	return t
}

// ReviewCheckpoint returns a function that rewrites processed/venue_reviews.csv
// and its dated backup with whatever it is given.
func ReviewCheckpoint(layout storage.Layout, now func() time.Time) func([]models.Review) error {
	return func(reviews []models.Review) error {
		_, err := layout.SaveCSV(ReviewsFile, ReviewTable(reviews), now())
		return err
	}
}
