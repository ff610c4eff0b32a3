package models

import (
	"gorm.io/gorm"
)

// MonthlyMetric holds one recomputed aggregate row per calendar month ("2024-02").
type MonthlyMetric struct {
	gorm.Model
	Month               string  `gorm:"column:month;size:7;not null;uniqueIndex" json:"month"`
	VehiclesSold        int     `gorm:"column:vehicles_sold;default:0" json:"vehicles_sold"`
	Revenue             float64 `gorm:"column:revenue;default:0" json:"revenue"`
	TestDrivesBooked    int     `gorm:"column:test_drives_booked;default:0" json:"test_drives_booked"`
	SubmissionsReceived int     `gorm:"column:submissions_received;default:0" json:"submissions_received"`
	NewCustomers        int     `gorm:"column:new_customers;default:0" json:"new_customers"`
}

func (MonthlyMetric) TableName() string {
	return "monthly_metrics"
}
