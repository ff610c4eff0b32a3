package testdrive

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/premierauto/dealership-server/cmd/models"
	"github.com/premierauto/dealership-server/service/mailer"
	"gorm.io/gorm"
)

// ReminderService runs the daily reminder sweep: one pass for appointments
// happening today, one for tomorrow. All coordination with concurrent sweeps
// goes through the persisted reminder flags.
type ReminderService struct {
	store  reminderStore
	mailer *mailer.Mailer
	loc    *time.Location
	hour   int
}

// reminderStore is the sweep's view of the database: select due rows, flip a
// flag with compare-and-set semantics.
type reminderStore interface {
	dueReminders(flagColumn string, start, end time.Time) ([]models.TestDrive, error)
	markReminderSent(id uint, flagColumn string) (bool, error)
}

type gormReminderStore struct {
	db *gorm.DB
}

func (s gormReminderStore) dueReminders(flagColumn string, start, end time.Time) ([]models.TestDrive, error) {
	var due []models.TestDrive
	err := s.db.Preload("Vehicle").
		Where("status = ? AND "+flagColumn+" = ? AND date >= ? AND date < ?",
			models.TestDriveConfirmed, false, start, end).
		Find(&due).Error
	return due, err
}

func (s gormReminderStore) markReminderSent(id uint, flagColumn string) (bool, error) {
	res := s.db.Model(&models.TestDrive{}).
		Where("id = ? AND "+flagColumn+" = ?", id, false).
		Update(flagColumn, true)
	return res.RowsAffected > 0, res.Error
}

// SweepResult reports what a single sweep tick did. Individual email failures
// are counted, not propagated; only a store failure fails the tick.
type SweepResult struct {
	DayOfSent   int `json:"day_of_sent"`
	NextDaySent int `json:"next_day_sent"`
	Failures    int `json:"failures"`
}

func NewReminderService(db *gorm.DB, m *mailer.Mailer) *ReminderService {
	hour, err := strconv.Atoi(os.Getenv("REMINDER_HOUR"))
	if err != nil || hour < 0 || hour > 23 {
		hour = 7
	}
	return &ReminderService{
		store:  gormReminderStore{db: db},
		mailer: m,
		loc:    DefaultLocation(),
		hour:   hour,
	}
}

// Run fires the sweep once a day at the configured local hour until the
// context is cancelled.
func (s *ReminderService) Run(ctx context.Context) {
	for {
		next := nextRunAt(time.Now().In(s.loc), s.hour)
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			result, err := s.Sweep()
			if err != nil {
				log.Printf("Reminder sweep failed: %v", err)
				continue
			}
			log.Printf("Reminder sweep: %d day-of, %d next-day, %d failures",
				result.DayOfSent, result.NextDaySent, result.Failures)
		}
	}
}

// nextRunAt returns the next occurrence of hour:00 strictly after now.
func nextRunAt(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Sweep executes both reminder passes. The passes are independent; their
// order carries no meaning.
func (s *ReminderService) Sweep() (SweepResult, error) {
	var result SweepResult

	sent, failures, err := s.runPass(0, "day_of_reminder_sent", s.mailer.SendDayOfReminder)
	if err != nil {
		return result, err
	}
	result.DayOfSent = sent
	result.Failures = failures

	sent, failures, err = s.runPass(1, "next_day_reminder_sent", s.mailer.SendNextDayReminder)
	if err != nil {
		return result, err
	}
	result.NextDaySent = sent
	result.Failures += failures

	return result, nil
}

// runPass selects confirmed appointments inside the day window whose flag is
// still unset, sends each reminder, and flips the flag with a compare-and-set
// so an overlapping sweep can never double-send. A failed send leaves the flag
// unset for the next tick and does not stop the pass.
func (s *ReminderService) runPass(offset int, flagColumn string, send func(*models.TestDrive, *models.Vehicle) error) (int, int, error) {
	start, end := dayWindow(time.Now().In(s.loc), offset)

	due, err := s.store.dueReminders(flagColumn, start, end)
	if err != nil {
		return 0, 0, err
	}

	sent := 0
	failures := 0
	for i := range due {
		td := &due[i]

		if err := send(td, td.Vehicle); err != nil {
			log.Printf("Error sending %s reminder for test drive %d: %v", flagColumn, td.ID, err)
			failures++
			continue
		}

		marked, err := s.store.markReminderSent(td.ID, flagColumn)
		if err != nil {
			return sent, failures, err
		}
		if marked {
			sent++
		}
	}

	return sent, failures, nil
}
