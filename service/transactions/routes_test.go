package transactions

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseTransactionFilter(t *testing.T) {
	r := httptest.NewRequest("GET",
		"/transactions?type=sale&vehicle_id=7&customer_id=3&min_amount=1000&max_amount=25000&start_date=2026-01-01&end_date=2026-01-31", nil)

	filter := ParseTransactionFilter(r)

	if filter.Type != "sale" {
		t.Errorf("Type = %q", filter.Type)
	}
	if filter.VehicleID != 7 || filter.CustomerID != 3 {
		t.Errorf("VehicleID=%d CustomerID=%d, want 7/3", filter.VehicleID, filter.CustomerID)
	}
	if filter.MinAmount != 1000 || filter.MaxAmount != 25000 {
		t.Errorf("MinAmount=%v MaxAmount=%v, want 1000/25000", filter.MinAmount, filter.MaxAmount)
	}
	if !filter.StartDate.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("StartDate = %v", filter.StartDate)
	}
	if !filter.EndDate.Equal(time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("EndDate = %v", filter.EndDate)
	}
}

func TestParseTransactionFilterIgnoresBadValues(t *testing.T) {
	r := httptest.NewRequest("GET",
		"/transactions?vehicle_id=abc&min_amount=lots&start_date=yesterday", nil)

	filter := ParseTransactionFilter(r)

	if filter.VehicleID != 0 || filter.MinAmount != 0 || !filter.StartDate.IsZero() {
		t.Errorf("unparseable values should be treated as absent, got %+v", filter)
	}
	if filter.Type != "" {
		t.Errorf("missing type should stay empty, got %q", filter.Type)
	}
}

func TestParsePaginationParams(t *testing.T) {
	r := httptest.NewRequest("GET", "/transactions?page=3&per_page=500", nil)
	page, perPage := ParsePaginationParams(r)
	if page != 3 {
		t.Errorf("page = %d, want 3", page)
	}
	if perPage != 100 {
		t.Errorf("per_page should cap at 100, got %d", perPage)
	}

	r = httptest.NewRequest("GET", "/transactions?page=-1", nil)
	page, perPage = ParsePaginationParams(r)
	if page != 1 || perPage != 25 {
		t.Errorf("defaults = %d/%d, want 1/25", page, perPage)
	}
}
