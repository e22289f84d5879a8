package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScrapeErrorMessage(t *testing.T) {
	cause := errors.New("timeout")

	err := ItemError("listing page 2", "https://www.hitched.co.uk/x?page=2", cause)
	assert.Equal(t, "[item] listing page 2 https://www.hitched.co.uk/x?page=2: timeout", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := &ScrapeError{Kind: KindField, Op: "price"}
	assert.Equal(t, "[field] price", bare.Error())
}

func TestIsRunError(t *testing.T) {
	run := RunError("regions", "https://www.hitched.co.uk/wedding-venues/", errors.New("no list"))
	wrapped := fmt.Errorf("stage regions: %w", run)

	assert.True(t, IsRunError(wrapped))
	assert.False(t, IsRunError(ItemError("venue", "", errors.New("x"))))
	assert.False(t, IsRunError(errors.New("plain")))
}
