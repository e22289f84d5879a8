package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"hitched-scraper/models"
)

// Message kinds written to the stream's "kind" field.
const (
	KindVenue  = "venue"
	KindDetail = "detail"
	KindReview = "review"
)

// RedisPublisher hands cleaned artifacts to downstream consumers through a
// Redis stream. Each entry carries kind, venue_no and a JSON payload.
type RedisPublisher struct {
	client    *redis.Client
	stream    string
	maxLength int64
}

// NewRedisPublisher connects to addr and verifies the connection.
func NewRedisPublisher(ctx context.Context, addr string, db int, stream string, maxLength int) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", addr, err)
	}
	return &RedisPublisher{client: client, stream: stream, maxLength: int64(maxLength)}, nil
}

// Stream returns the stream key entries are appended to.
func (p *RedisPublisher) Stream() string {
	return p.stream
}

func (p *RedisPublisher) WriteVenues(ctx context.Context, venues []*models.VenueRecord) error {
	entries := make([]streamEntry, 0, len(venues))
	for _, v := range venues {
		entries = append(entries, streamEntry{kind: KindVenue, venueNo: v.VenueNo, payload: v})
	}
	return p.publish(ctx, entries)
}

func (p *RedisPublisher) WriteDetails(ctx context.Context, details []*models.VenueDetail) error {
	entries := make([]streamEntry, 0, len(details))
	for _, d := range details {
		entries = append(entries, streamEntry{kind: KindDetail, venueNo: d.VenueNo, payload: d})
	}
	return p.publish(ctx, entries)
}

// WriteReviews publishes only real review texts; sentinel rows stay in the CSV.
func (p *RedisPublisher) WriteReviews(ctx context.Context, reviews []models.Review) error {
	entries := make([]streamEntry, 0, len(reviews))
	for _, r := range reviews {
		if models.IsReviewSentinel(r.ReviewText) {
			continue
		}
		entries = append(entries, streamEntry{kind: KindReview, venueNo: r.VenueNo, payload: r})
	}
	return p.publish(ctx, entries)
}

type streamEntry struct {
	kind    string
	venueNo string
	payload any
}

func (e streamEntry) values() (map[string]any, error) {
	data, err := json.Marshal(e.payload)
	if err != nil {
		return nil, fmt.Errorf("redis: encode %s %s: %w", e.kind, e.venueNo, err)
	}
	return map[string]any{
		"kind":     e.kind,
		"venue_no": e.venueNo,
		"payload":  string(data),
	}, nil
}

func (p *RedisPublisher) publish(ctx context.Context, entries []streamEntry) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := p.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, e := range entries {
			values, err := e.values()
			if err != nil {
				return err
			}
			pipe.XAdd(ctx, &redis.XAddArgs{
				Stream: p.stream,
				MaxLen: p.maxLength,
				Approx: true,
				Values: values,
			})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: publish to %s: %w", p.stream, err)
	}
	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
