package utils

import (
	"errors"
	"fmt"
)

// ErrorKind says how far a failure propagates.
type ErrorKind string

const (
	// KindField is a single missing or malformed value; the record is kept.
	KindField ErrorKind = "field"
	// KindItem loses one page, venue or region; the run continues.
	KindItem ErrorKind = "item"
	// KindRun aborts the whole stage.
	KindRun ErrorKind = "run"
)

// ScrapeError carries the scope of a failure alongside the cause.
type ScrapeError struct {
	Kind ErrorKind
	Op   string
	URL  string
	Err  error
}

func (e *ScrapeError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Op)
	if e.URL != "" {
		msg += " " + e.URL
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// ItemError marks err as losing a single item.
func ItemError(op, url string, err error) *ScrapeError {
	return &ScrapeError{Kind: KindItem, Op: op, URL: url, Err: err}
}

// RunError marks err as fatal for the stage.
func RunError(op, url string, err error) *ScrapeError {
	return &ScrapeError{Kind: KindRun, Op: op, URL: url, Err: err}
}

// IsRunError reports whether err, or anything it wraps, is a run-level ScrapeError.
func IsRunError(err error) bool {
	var se *ScrapeError
	return errors.As(err, &se) && se.Kind == KindRun
}
