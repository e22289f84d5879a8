package storage

import (
	"context"
	"errors"

	"hitched-scraper/models"
)

// VenueWriter is the interface any downstream backend for cleaned venues must satisfy.
type VenueWriter interface {
	WriteVenues(ctx context.Context, venues []*models.VenueRecord) error
	Close() error
}

// DetailWriter persists merged detail records.
type DetailWriter interface {
	WriteDetails(ctx context.Context, details []*models.VenueDetail) error
	Close() error
}

// ReviewWriter persists review rows, sentinels included.
type ReviewWriter interface {
	WriteReviews(ctx context.Context, reviews []models.Review) error
	Close() error
}

// Sink is a backend that accepts every artifact kind.
type Sink interface {
	VenueWriter
	DetailWriter
	ReviewWriter
}

// Fanout forwards each write to every sink and joins the errors.
// A failing sink does not stop the others.
type Fanout []Sink

func (f Fanout) WriteVenues(ctx context.Context, venues []*models.VenueRecord) error {
	var errs []error
	for _, s := range f {
		errs = append(errs, s.WriteVenues(ctx, venues))
	}
	return errors.Join(errs...)
}

func (f Fanout) WriteDetails(ctx context.Context, details []*models.VenueDetail) error {
	var errs []error
	for _, s := range f {
		errs = append(errs, s.WriteDetails(ctx, details))
	}
	return errors.Join(errs...)
}

func (f Fanout) WriteReviews(ctx context.Context, reviews []models.Review) error {
	var errs []error
	for _, s := range f {
		errs = append(errs, s.WriteReviews(ctx, reviews))
	}
	return errors.Join(errs...)
}

func (f Fanout) Close() error {
	var errs []error
	for _, s := range f {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}
