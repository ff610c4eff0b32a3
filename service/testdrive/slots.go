package testdrive

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/premierauto/dealership-server/cmd/models"
)

const (
	ReasonBlocked = "blocked"
	ReasonBooked  = "booked"

	slotLayout = "15:04"
)

// SlotStatus describes one bookable time label for a given date.
type SlotStatus struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// NormalizeTime converts a client-supplied time label to the canonical
// 24-hour "HH:MM" form. 12-hour labels ("2:00 PM") are accepted so that
// display formats never leak into storage or comparisons.
func NormalizeTime(s string) (string, error) {
	s = strings.TrimSpace(s)
	layouts := []string{"15:04", "15:04:05", "3:04 PM", "3:04PM", "3 PM", "3PM"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, strings.ToUpper(s)); err == nil {
			return t.Format(slotLayout), nil
		}
	}
	return "", fmt.Errorf("unrecognized time format: %q", s)
}

// SlotBlocked reports whether a normalized time label falls inside any of the
// given blocked ranges. Range bounds are inclusive as authored; comparison is
// lexical, which is correct for zero-padded 24-hour labels.
func SlotBlocked(blocks []models.BlockedTimeSlot, slot string) bool {
	for _, b := range blocks {
		if b.FullDay {
			return true
		}
		if b.StartTime <= slot && slot <= b.EndTime {
			return true
		}
	}
	return false
}

// BuildSlotStatuses resolves each business-hour slot against the day's blocked
// ranges and the set of actively booked times. Cancelled bookings must not be
// present in booked: cancellation frees the slot.
func BuildSlotStatuses(slots []string, blocks []models.BlockedTimeSlot, booked map[string]bool) []SlotStatus {
	statuses := make([]SlotStatus, 0, len(slots))
	for _, slot := range slots {
		status := SlotStatus{Time: slot, Available: true}
		if SlotBlocked(blocks, slot) {
			status.Available = false
			status.Reason = ReasonBlocked
		} else if booked[slot] {
			status.Available = false
			status.Reason = ReasonBooked
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// HourlySlots enumerates hourly labels from open (inclusive) to close
// (exclusive), e.g. 09:00..18:00 for a 09:00-19:00 business day.
func HourlySlots(open, close string) []string {
	start, err := time.Parse(slotLayout, open)
	if err != nil {
		return nil
	}
	end, err := time.Parse(slotLayout, close)
	if err != nil {
		return nil
	}

	var slots []string
	for t := start; t.Before(end); t = t.Add(time.Hour) {
		slots = append(slots, t.Format(slotLayout))
	}
	return slots
}

// dayWindow returns the half-open [midnight, midnight+24h) window for the day
// offset days after now, in now's location.
func dayWindow(now time.Time, offset int) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start = start.AddDate(0, 0, offset)
	return start, start.AddDate(0, 0, 1)
}

// DefaultLocation resolves the dealership's civil calendar. All today/tomorrow
// and slot-blocking comparisons use this one timezone regardless of where the
// server runs.
func DefaultLocation() *time.Location {
	name := os.Getenv("DEALER_TIMEZONE")
	if name == "" {
		name = "America/Los_Angeles"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("Invalid DEALER_TIMEZONE %q, falling back to UTC: %v", name, err)
		return time.UTC
	}
	return loc
}

func businessHours() (string, string) {
	open := os.Getenv("BUSINESS_OPEN")
	if open == "" {
		open = "09:00"
	}
	close := os.Getenv("BUSINESS_CLOSE")
	if close == "" {
		close = "19:00"
	}
	return open, close
}
