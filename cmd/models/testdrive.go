package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	TestDrivePending   = "pending"
	TestDriveConfirmed = "confirmed"
	TestDriveCancelled = "cancelled"

	SourceWebsite = "website"
	SourceAdmin   = "admin"
)

// TestDrive is a booked appointment slot. The customer name/email/phone are a
// snapshot taken at booking time and are never reconciled against the live
// Customer row.
type TestDrive struct {
	gorm.Model
	VehicleID     uint   `gorm:"column:vehicle_id;not null" json:"vehicle_id"`
	CustomerID    *uint  `gorm:"column:customer_id" json:"customer_id,omitempty"`
	CustomerName  string `gorm:"column:customer_name;size:255;not null" json:"customer_name"`
	CustomerEmail string `gorm:"column:customer_email;size:255;not null" json:"customer_email"`
	CustomerPhone string `gorm:"column:customer_phone;size:20" json:"customer_phone"`

	Date     time.Time `gorm:"column:date;not null;index" json:"date"`
	TimeSlot string    `gorm:"column:time_slot;size:5;not null" json:"time_slot"`

	Status             string `gorm:"column:status;size:20;not null;default:pending" json:"status"`
	Source             string `gorm:"column:source;size:20;not null;default:website" json:"source"`
	Notes              string `gorm:"column:notes;type:text" json:"notes"`
	CancellationReason string `gorm:"column:cancellation_reason;size:500" json:"cancellation_reason,omitempty"`

	// Reminder flags only ever transition false -> true.
	NextDayReminderSent bool `gorm:"column:next_day_reminder_sent;default:false" json:"next_day_reminder_sent"`
	DayOfReminderSent   bool `gorm:"column:day_of_reminder_sent;default:false" json:"day_of_reminder_sent"`

	Vehicle  *Vehicle  `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

func (TestDrive) TableName() string {
	return "test_drives"
}
