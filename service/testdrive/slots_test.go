package testdrive

import (
	"testing"
	"time"

	"github.com/premierauto/dealership-server/cmd/models"
)

func TestNormalizeTime(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "14:00", want: "14:00"},
		{in: "9:00", want: "09:00"},
		{in: "14:00:00", want: "14:00"},
		{in: "2:00 PM", want: "14:00"},
		{in: "2:00pm", want: "14:00"},
		{in: "2 PM", want: "14:00"},
		{in: "  10:00 ", want: "10:00"},
		{in: "noon", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, c := range cases {
		got, err := NormalizeTime(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("NormalizeTime(%q) expected error, got %q", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeTime(%q) unexpected error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("NormalizeTime(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSlotBlocked(t *testing.T) {
	ranged := []models.BlockedTimeSlot{{StartTime: "12:00", EndTime: "14:00"}}

	if SlotBlocked(ranged, "11:00") {
		t.Error("11:00 should not be blocked by 12:00-14:00")
	}
	if !SlotBlocked(ranged, "12:00") {
		t.Error("start bound should be blocked")
	}
	if !SlotBlocked(ranged, "13:00") {
		t.Error("13:00 should be blocked by 12:00-14:00")
	}
	if !SlotBlocked(ranged, "14:00") {
		t.Error("end bound should be blocked")
	}
	if SlotBlocked(ranged, "15:00") {
		t.Error("15:00 should not be blocked by 12:00-14:00")
	}

	fullDay := []models.BlockedTimeSlot{{FullDay: true, Reason: "Holiday"}}
	for _, slot := range []string{"09:00", "12:00", "18:00"} {
		if !SlotBlocked(fullDay, slot) {
			t.Errorf("%s should be blocked on a full-day block", slot)
		}
	}

	if SlotBlocked(nil, "10:00") {
		t.Error("no blocks should mean no slot is blocked")
	}
}

func TestBuildSlotStatuses(t *testing.T) {
	slots := []string{"09:00", "10:00", "11:00", "12:00"}
	blocks := []models.BlockedTimeSlot{{StartTime: "11:00", EndTime: "11:00"}}
	booked := map[string]bool{"10:00": true}

	statuses := BuildSlotStatuses(slots, blocks, booked)
	if len(statuses) != len(slots) {
		t.Fatalf("expected %d statuses, got %d", len(slots), len(statuses))
	}

	byTime := map[string]SlotStatus{}
	for _, s := range statuses {
		byTime[s.Time] = s
	}

	if !byTime["09:00"].Available || byTime["09:00"].Reason != "" {
		t.Errorf("09:00 should be available, got %+v", byTime["09:00"])
	}
	if byTime["10:00"].Available || byTime["10:00"].Reason != ReasonBooked {
		t.Errorf("10:00 should be booked, got %+v", byTime["10:00"])
	}
	if byTime["11:00"].Available || byTime["11:00"].Reason != ReasonBlocked {
		t.Errorf("11:00 should be blocked, got %+v", byTime["11:00"])
	}
	if !byTime["12:00"].Available {
		t.Errorf("12:00 should be available, got %+v", byTime["12:00"])
	}
}

func TestBuildSlotStatusesBlockedWinsOverBooked(t *testing.T) {
	blocks := []models.BlockedTimeSlot{{StartTime: "10:00", EndTime: "10:00"}}
	booked := map[string]bool{"10:00": true}

	statuses := BuildSlotStatuses([]string{"10:00"}, blocks, booked)
	if statuses[0].Reason != ReasonBlocked {
		t.Errorf("a slot both blocked and booked should report blocked, got %q", statuses[0].Reason)
	}
}

func TestBuildSlotStatusesCancellationFreesSlot(t *testing.T) {
	// A cancelled booking is excluded from the booked set by the caller, so
	// its slot shows as available again.
	statuses := BuildSlotStatuses([]string{"15:00"}, nil, map[string]bool{})
	if !statuses[0].Available {
		t.Errorf("slot with no active booking should be available, got %+v", statuses[0])
	}
}

func TestHourlySlots(t *testing.T) {
	slots := HourlySlots("09:00", "19:00")
	if len(slots) != 10 {
		t.Fatalf("expected 10 slots for 09:00-19:00, got %d: %v", len(slots), slots)
	}
	if slots[0] != "09:00" {
		t.Errorf("first slot should be 09:00, got %s", slots[0])
	}
	if slots[len(slots)-1] != "18:00" {
		t.Errorf("last slot should be 18:00 (close is exclusive), got %s", slots[len(slots)-1])
	}

	if got := HourlySlots("10:00", "10:00"); len(got) != 0 {
		t.Errorf("zero-width business day should yield no slots, got %v", got)
	}
	if got := HourlySlots("bad", "19:00"); got != nil {
		t.Errorf("invalid open time should yield nil, got %v", got)
	}
}

func TestDayWindow(t *testing.T) {
	loc := time.FixedZone("PST", -8*3600)
	now := time.Date(2026, 3, 15, 14, 30, 0, 0, loc)

	start, end := dayWindow(now, 0)
	if !start.Equal(time.Date(2026, 3, 15, 0, 0, 0, 0, loc)) {
		t.Errorf("day-of window start = %v", start)
	}
	if !end.Equal(time.Date(2026, 3, 16, 0, 0, 0, 0, loc)) {
		t.Errorf("day-of window end = %v", end)
	}

	start, end = dayWindow(now, 1)
	if !start.Equal(time.Date(2026, 3, 16, 0, 0, 0, 0, loc)) {
		t.Errorf("next-day window start = %v", start)
	}
	if !end.Equal(time.Date(2026, 3, 17, 0, 0, 0, 0, loc)) {
		t.Errorf("next-day window end = %v", end)
	}

	// An appointment two days out sits outside both windows.
	twoOut := time.Date(2026, 3, 17, 10, 0, 0, 0, loc)
	if (twoOut.After(start) || twoOut.Equal(start)) && twoOut.Before(end) {
		t.Error("appointment two days out should fall outside the next-day window")
	}
}

func TestNextRunAt(t *testing.T) {
	loc := time.FixedZone("PST", -8*3600)

	before := time.Date(2026, 3, 15, 5, 0, 0, 0, loc)
	if got := nextRunAt(before, 7); !got.Equal(time.Date(2026, 3, 15, 7, 0, 0, 0, loc)) {
		t.Errorf("before the hour should run same day, got %v", got)
	}

	after := time.Date(2026, 3, 15, 9, 0, 0, 0, loc)
	if got := nextRunAt(after, 7); !got.Equal(time.Date(2026, 3, 16, 7, 0, 0, 0, loc)) {
		t.Errorf("after the hour should run next day, got %v", got)
	}

	exact := time.Date(2026, 3, 15, 7, 0, 0, 0, loc)
	if got := nextRunAt(exact, 7); !got.Equal(time.Date(2026, 3, 16, 7, 0, 0, 0, loc)) {
		t.Errorf("exactly at the hour should run next day, got %v", got)
	}
}
