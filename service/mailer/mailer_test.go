package mailer

import (
	"strings"
	"testing"
	"time"

	"github.com/premierauto/dealership-server/cmd/models"
)

func TestDisplayTime(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"09:00", "9:00 AM"},
		{"12:00", "12:00 PM"},
		{"14:30", "2:30 PM"},
		{"00:00", "12:00 AM"},
		{"not-a-time", "not-a-time"},
	}

	for _, c := range cases {
		if got := DisplayTime(c.in); got != c.want {
			t.Errorf("DisplayTime(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestVehicleLabel(t *testing.T) {
	v := &models.Vehicle{Year: 2022, Make: "Toyota", ModelName: "Camry"}
	if got := vehicleLabel(v); got != "2022 Toyota Camry" {
		t.Errorf("vehicleLabel = %q", got)
	}
	if got := vehicleLabel(nil); got != "your selected vehicle" {
		t.Errorf("vehicleLabel(nil) = %q", got)
	}
}

func TestBookingConfirmationBody(t *testing.T) {
	td := &models.TestDrive{
		CustomerName:  "Jordan Lee",
		CustomerEmail: "jordan@example.com",
		Date:          time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
		TimeSlot:      "14:00",
	}
	v := &models.Vehicle{Year: 2021, Make: "Honda", ModelName: "Civic"}

	body := bookingConfirmationBody("Premier Auto Sales", td, v)

	for _, want := range []string{
		"Jordan Lee",
		"2021 Honda Civic",
		"Friday, April 10, 2026",
		"2:00 PM",
		"pending confirmation",
		"Premier Auto Sales",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("booking confirmation missing %q:\n%s", want, body)
		}
	}
}

func TestReminderBody(t *testing.T) {
	td := &models.TestDrive{
		CustomerName: "Sam Ortiz",
		Date:         time.Date(2026, 4, 11, 0, 0, 0, 0, time.UTC),
		TimeSlot:     "10:00",
	}
	v := &models.Vehicle{Year: 2023, Make: "Ford", ModelName: "Bronco"}

	today := reminderBody("Premier Auto Sales", "today", td, v)
	if !strings.Contains(today, "is today") {
		t.Errorf("day-of reminder missing phrasing:\n%s", today)
	}
	tomorrow := reminderBody("Premier Auto Sales", "tomorrow", td, v)
	if !strings.Contains(tomorrow, "is tomorrow") {
		t.Errorf("next-day reminder missing phrasing:\n%s", tomorrow)
	}
	for _, body := range []string{today, tomorrow} {
		if !strings.Contains(body, "Sam Ortiz") || !strings.Contains(body, "10:00 AM") {
			t.Errorf("reminder missing customer or time:\n%s", body)
		}
	}
}

func TestSubmissionBody(t *testing.T) {
	sub := &models.VehicleSubmission{
		Type:        "trade",
		Year:        2018,
		Make:        "Subaru",
		ModelName:   "Outback",
		VIN:         "4S4BSANC5J3203294",
		Mileage:     64000,
		Condition:   "good",
		AskingPrice: 18500,
		OwnerName:   "Alex Kim",
		OwnerEmail:  "alex@example.com",
		OwnerPhone:  "555-0142",
	}

	body := submissionBody(sub)
	for _, want := range []string{
		"trade submission",
		"2018 Subaru Outback",
		"4S4BSANC5J3203294",
		"64000",
		"18500.00",
		"Alex Kim",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("submission body missing %q:\n%s", want, body)
		}
	}
}
