package models

import (
	"time"

	"gorm.io/gorm"
)

// BlockedTimeSlot marks a date/time range as unbookable. Edits are done as
// delete + recreate; rows are never updated in place.
type BlockedTimeSlot struct {
	gorm.Model
	Date      time.Time `gorm:"column:date;not null;index" json:"date"`
	StartTime string    `gorm:"column:start_time;size:5;not null" json:"start_time"`
	EndTime   string    `gorm:"column:end_time;size:5;not null" json:"end_time"`
	FullDay   bool      `gorm:"column:full_day;default:false" json:"full_day"`
	Reason    string    `gorm:"column:reason;size:500" json:"reason"`
}

func (BlockedTimeSlot) TableName() string {
	return "blocked_time_slots"
}
