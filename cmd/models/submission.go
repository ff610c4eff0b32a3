package models

import (
	"gorm.io/gorm"
)

const (
	SubmissionNew       = "new"
	SubmissionReviewing = "reviewing"
	SubmissionOfferMade = "offer_made"
	SubmissionAccepted  = "accepted"
	SubmissionRejected  = "rejected"
)

// VehicleSubmission is a sell or trade-in intake from the public site.
type VehicleSubmission struct {
	gorm.Model
	Type        string  `gorm:"column:type;size:20;not null" json:"type"` // sell or trade
	VIN         string  `gorm:"column:vin;size:17" json:"vin"`
	Make        string  `gorm:"column:make;size:100;not null" json:"make"`
	ModelName   string  `gorm:"column:model;size:100;not null" json:"model"`
	Year        int     `gorm:"column:year;not null" json:"year"`
	Mileage     int     `gorm:"column:mileage" json:"mileage"`
	Condition   string  `gorm:"column:condition;size:50" json:"condition"`
	AskingPrice float64 `gorm:"column:asking_price" json:"asking_price"`

	OwnerName  string `gorm:"column:owner_name;size:255;not null" json:"owner_name"`
	OwnerEmail string `gorm:"column:owner_email;size:255;not null" json:"owner_email"`
	OwnerPhone string `gorm:"column:owner_phone;size:20" json:"owner_phone"`

	Status string `gorm:"column:status;size:20;not null;default:new" json:"status"`
	Notes  string `gorm:"column:notes;type:text" json:"notes"`
}

func (VehicleSubmission) TableName() string {
	return "vehicle_submissions"
}
