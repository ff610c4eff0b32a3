package dashboard

import (
	"testing"
	"time"
)

func TestMonthBounds(t *testing.T) {
	loc := time.FixedZone("PST", -8*3600)

	start, end, err := monthBounds("2026-02", loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !start.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, loc)) {
		t.Errorf("start = %v", start)
	}
	if !end.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, loc)) {
		t.Errorf("end = %v", end)
	}

	// December rolls into January of the next year.
	start, end, err = monthBounds("2025-12", loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !start.Equal(time.Date(2025, 12, 1, 0, 0, 0, 0, loc)) {
		t.Errorf("December start = %v", start)
	}
	if !end.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, loc)) {
		t.Errorf("December end = %v", end)
	}

	for _, bad := range []string{"", "2026", "2026-13", "Feb 2026"} {
		if _, _, err := monthBounds(bad, loc); err == nil {
			t.Errorf("monthBounds(%q) expected error", bad)
		}
	}
}
