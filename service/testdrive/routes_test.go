package testdrive

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/premierauto/dealership-server/cmd/models"
	"gorm.io/gorm"
)

func TestSlotDecision(t *testing.T) {
	blocks := []models.BlockedTimeSlot{{StartTime: "12:00", EndTime: "13:00"}}

	available, reason := slotDecision(blocks, "12:00", 0)
	if available || reason != ReasonBlocked {
		t.Errorf("blocked slot: available=%v reason=%q", available, reason)
	}

	available, reason = slotDecision(nil, "10:00", 1)
	if available || reason != ReasonBooked {
		t.Errorf("booked slot: available=%v reason=%q", available, reason)
	}

	// Blocked wins when the slot is also booked.
	available, reason = slotDecision(blocks, "12:00", 1)
	if available || reason != ReasonBlocked {
		t.Errorf("blocked+booked slot: available=%v reason=%q", available, reason)
	}

	available, reason = slotDecision(nil, "10:00", 0)
	if !available || reason != "" {
		t.Errorf("free slot: available=%v reason=%q", available, reason)
	}
}

func TestWriteSlotUnavailable(t *testing.T) {
	for _, reason := range []string{ReasonBlocked, ReasonBooked} {
		rec := httptest.NewRecorder()
		writeSlotUnavailable(rec, reason)

		if rec.Code != http.StatusConflict {
			t.Errorf("reason %q: status = %d, want %d", reason, rec.Code, http.StatusConflict)
		}

		var body map[string]string
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("reason %q: invalid body: %v", reason, err)
		}
		if body["error"] != "Slot unavailable" || body["reason"] != reason {
			t.Errorf("reason %q: body = %v", reason, body)
		}
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(gorm.ErrDuplicatedKey) {
		t.Error("gorm.ErrDuplicatedKey should count as a unique violation")
	}
	if !isUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Error("pg error 23505 should count as a unique violation")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("foreign key violation must not be treated as a slot conflict")
	}
	if isUniqueViolation(errors.New("connection refused")) {
		t.Error("arbitrary errors must not be treated as a slot conflict")
	}
}
