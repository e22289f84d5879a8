package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaultsAreValid(t *testing.T) {
	t.Setenv("REVIEW_WORKERS", "")
	cfg := Load()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.RegionWaitTimeout != 30*time.Second {
		t.Errorf("RegionWaitTimeout = %v; want 30s", cfg.RegionWaitTimeout)
	}
	if cfg.ReviewWaitTimeout != 5*time.Second {
		t.Errorf("ReviewWaitTimeout = %v; want 5s", cfg.ReviewWaitTimeout)
	}
	if cfg.ReviewWorkers < 1 {
		t.Errorf("ReviewWorkers = %d; want at least 1", cfg.ReviewWorkers)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DATA_DIR", "/tmp/hitched")
	t.Setenv("LISTING_WAIT_SECONDS", "7")
	t.Setenv("REVIEW_WORKERS", "3")
	t.Setenv("HEADLESS", "false")
	t.Setenv("CHECKPOINT_EVERY", "not-a-number")

	cfg := Load()

	if cfg.DataDir != "/tmp/hitched" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.ListingWaitTimeout != 7*time.Second {
		t.Errorf("ListingWaitTimeout = %v; want 7s", cfg.ListingWaitTimeout)
	}
	if cfg.ReviewWorkers != 3 {
		t.Errorf("ReviewWorkers = %d; want 3", cfg.ReviewWorkers)
	}
	if cfg.Headless {
		t.Error("Headless = true; want false")
	}
	if cfg.CheckpointEvery != 10 {
		t.Errorf("CheckpointEvery = %d; want fallback 10", cfg.CheckpointEvery)
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Load()
	cfg.ListingURLTemplate = "https://www.hitched.co.uk/busc.php"
	cfg.ReviewWorkers = 0
	cfg.Selectors.VenueCard = "li[class="
	cfg.Selectors.NoReviewsText = " "

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil; want error")
	}
	for _, want := range []string{"%d", "REVIEW_WORKERS", "VenueCard", "NoReviewsText is empty"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestFAQCategoriesOrder(t *testing.T) {
	cats := DefaultSelectors().FAQCategories()
	want := []string{"Venue type", "Dining options", "Ceremony options", "Evening entertainment"}
	if len(cats) != len(want) {
		t.Fatalf("got %d categories; want %d", len(cats), len(want))
	}
	for i, c := range cats {
		if c.Label != want[i] {
			t.Errorf("category %d label = %q; want %q", i, c.Label, want[i])
		}
	}
}

func TestValidateErrorIsStable(t *testing.T) {
	cfg := Load()
	cfg.Selectors.VenueCard = ""
	cfg.Selectors.RegionList = ""
	cfg.Selectors.ReviewBlock = ""
	cfg.RegionWaitTimeout = 0
	cfg.ReviewWaitTimeout = 0

	first := cfg.Validate()
	if first == nil {
		t.Fatal("Validate() = nil; want error")
	}
	for i := 0; i < 20; i++ {
		if err := cfg.Validate(); err.Error() != first.Error() {
			t.Fatalf("Validate() message changed between calls:\n%s\n%s", first, err)
		}
	}

	msg := first.Error()
	if strings.Index(msg, "RegionList") > strings.Index(msg, "ReviewBlock") ||
		strings.Index(msg, "ReviewBlock") > strings.Index(msg, "VenueCard") {
		t.Errorf("selector problems not sorted: %s", msg)
	}
	if strings.Index(msg, "REGION_WAIT_SECONDS") > strings.Index(msg, "REVIEW_WAIT_SECONDS") {
		t.Errorf("config problems not sorted: %s", msg)
	}
}
