package testdrive

import (
	"errors"
	"testing"
	"time"

	"github.com/premierauto/dealership-server/cmd/models"
)

// fakeReminderStore keeps appointments in memory with the same selection and
// compare-and-set semantics as the database store.
type fakeReminderStore struct {
	rows []*models.TestDrive
}

func (f *fakeReminderStore) flagSet(td *models.TestDrive, flagColumn string) bool {
	if flagColumn == "day_of_reminder_sent" {
		return td.DayOfReminderSent
	}
	return td.NextDayReminderSent
}

func (f *fakeReminderStore) dueReminders(flagColumn string, start, end time.Time) ([]models.TestDrive, error) {
	var due []models.TestDrive
	for _, td := range f.rows {
		if td.Status != models.TestDriveConfirmed || f.flagSet(td, flagColumn) {
			continue
		}
		if td.Date.Before(start) || !td.Date.Before(end) {
			continue
		}
		due = append(due, *td)
	}
	return due, nil
}

func (f *fakeReminderStore) markReminderSent(id uint, flagColumn string) (bool, error) {
	for _, td := range f.rows {
		if td.ID != id {
			continue
		}
		if f.flagSet(td, flagColumn) {
			return false, nil
		}
		if flagColumn == "day_of_reminder_sent" {
			td.DayOfReminderSent = true
		} else {
			td.NextDayReminderSent = true
		}
		return true, nil
	}
	return false, nil
}

func testAppointment(id uint, date time.Time, status string) *models.TestDrive {
	td := &models.TestDrive{
		CustomerName:  "Pat Doe",
		CustomerEmail: "pat@example.com",
		Date:          date,
		TimeSlot:      "10:00",
		Status:        status,
	}
	td.ID = id
	return td
}

func todayMidnight(loc *time.Location) time.Time {
	now := time.Now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
}

func TestRunPassSecondSweepSendsNothing(t *testing.T) {
	loc := time.UTC
	store := &fakeReminderStore{
		rows: []*models.TestDrive{
			testAppointment(1, todayMidnight(loc), models.TestDriveConfirmed),
		},
	}
	svc := &ReminderService{store: store, loc: loc, hour: 7}

	sends := 0
	send := func(td *models.TestDrive, v *models.Vehicle) error {
		sends++
		return nil
	}

	sent, failures, err := svc.runPass(0, "day_of_reminder_sent", send)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	if sent != 1 || failures != 0 {
		t.Fatalf("first pass sent=%d failures=%d, want 1/0", sent, failures)
	}

	sent, failures, err = svc.runPass(0, "day_of_reminder_sent", send)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if sent != 0 || failures != 0 {
		t.Errorf("second pass sent=%d failures=%d, want 0/0", sent, failures)
	}
	if sends != 1 {
		t.Errorf("total sends = %d, want exactly 1 across repeated sweeps", sends)
	}
}

func TestRunPassSendFailureLeavesFlagForRetry(t *testing.T) {
	loc := time.UTC
	store := &fakeReminderStore{
		rows: []*models.TestDrive{
			testAppointment(1, todayMidnight(loc), models.TestDriveConfirmed),
			testAppointment(2, todayMidnight(loc), models.TestDriveConfirmed),
		},
	}
	svc := &ReminderService{store: store, loc: loc, hour: 7}

	failing := func(td *models.TestDrive, v *models.Vehicle) error {
		if td.ID == 1 {
			return errors.New("smtp unavailable")
		}
		return nil
	}

	sent, failures, err := svc.runPass(0, "day_of_reminder_sent", failing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sent != 1 || failures != 1 {
		t.Fatalf("sent=%d failures=%d, want 1/1", sent, failures)
	}
	if store.rows[0].DayOfReminderSent {
		t.Error("failed send must leave the flag unset for the next sweep")
	}
	if !store.rows[1].DayOfReminderSent {
		t.Error("successful send must set the flag")
	}

	// The next sweep picks up only the row that failed.
	sent, failures, err = svc.runPass(0, "day_of_reminder_sent", func(td *models.TestDrive, v *models.Vehicle) error {
		return nil
	})
	if err != nil {
		t.Fatalf("retry pass: %v", err)
	}
	if sent != 1 || failures != 0 {
		t.Errorf("retry pass sent=%d failures=%d, want 1/0", sent, failures)
	}
}

func TestRunPassSelectsOnlyConfirmedRowsInWindow(t *testing.T) {
	loc := time.UTC
	today := todayMidnight(loc)
	store := &fakeReminderStore{
		rows: []*models.TestDrive{
			testAppointment(1, today, models.TestDriveConfirmed),
			testAppointment(2, today, models.TestDrivePending),
			testAppointment(3, today, models.TestDriveCancelled),
			testAppointment(4, today.AddDate(0, 0, 1), models.TestDriveConfirmed),
			testAppointment(5, today.AddDate(0, 0, 2), models.TestDriveConfirmed),
		},
	}
	svc := &ReminderService{store: store, loc: loc, hour: 7}

	var sentIDs []uint
	send := func(td *models.TestDrive, v *models.Vehicle) error {
		sentIDs = append(sentIDs, td.ID)
		return nil
	}

	if _, _, err := svc.runPass(0, "day_of_reminder_sent", send); err != nil {
		t.Fatalf("day-of pass: %v", err)
	}
	if len(sentIDs) != 1 || sentIDs[0] != 1 {
		t.Errorf("day-of pass sent to %v, want only appointment 1", sentIDs)
	}

	sentIDs = nil
	if _, _, err := svc.runPass(1, "next_day_reminder_sent", send); err != nil {
		t.Fatalf("next-day pass: %v", err)
	}
	if len(sentIDs) != 1 || sentIDs[0] != 4 {
		t.Errorf("next-day pass sent to %v, want only appointment 4", sentIDs)
	}
}
