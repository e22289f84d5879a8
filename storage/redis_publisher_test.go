package storage

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hitched-scraper/models"
)

func TestRedisPublisherWritesReviewsSkippingSentinels(t *testing.T) {
	ctx := context.Background()
	const stream = "hitched_test_reviews"

	publisher, err := NewRedisPublisher(ctx, "localhost:6379", 0, stream, 100)
	if err != nil {
		t.Skip("Redis is not available, skipping test")
	}
	defer publisher.Close()

	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()
	require.NoError(t, client.Del(ctx, stream).Err())

	err = publisher.WriteReviews(ctx, []models.Review{
		{VenueNo: "V1", VenueName: "Barn", ReviewText: "Wonderful day"},
		{VenueNo: "V2", VenueName: "Hall", ReviewText: models.ReviewNone},
	})
	require.NoError(t, err)

	entries, err := client.XRange(ctx, stream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, KindReview, entries[0].Values["kind"])
	assert.Equal(t, "V1", entries[0].Values["venue_no"])
	assert.Contains(t, entries[0].Values["payload"], "Wonderful day")
}

func TestStreamEntryValues(t *testing.T) {
	name := "The Barn"
	values, err := streamEntry{
		kind:    KindVenue,
		venueNo: "V7",
		payload: &models.VenueRecord{VenueNo: "V7", VenueSummary: models.VenueSummary{Name: &name}},
	}.values()
	require.NoError(t, err)

	assert.Equal(t, "venue", values["kind"])
	assert.Equal(t, "V7", values["venue_no"])
	assert.Contains(t, values["payload"], `"name":"The Barn"`)
}
