package models

import (
	"gorm.io/gorm"
)

const (
	VehicleAvailable = "available"
	VehicleReserved  = "reserved"
	VehicleSold      = "sold"
)

type Vehicle struct {
	gorm.Model
	VIN           string  `gorm:"column:vin;size:17;uniqueIndex" json:"vin"`
	Make          string  `gorm:"column:make;size:100;not null" json:"make"`
	ModelName     string  `gorm:"column:model;size:100;not null" json:"model"`
	Year          int     `gorm:"column:year;not null" json:"year"`
	Trim          string  `gorm:"column:trim;size:100" json:"trim"`
	BodyStyle     string  `gorm:"column:body_style;size:50" json:"body_style"`
	ExteriorColor string  `gorm:"column:exterior_color;size:50" json:"exterior_color"`
	InteriorColor string  `gorm:"column:interior_color;size:50" json:"interior_color"`
	Mileage       int     `gorm:"column:mileage" json:"mileage"`
	Price         float64 `gorm:"column:price;not null" json:"price"`
	Description   string  `gorm:"column:description;type:text" json:"description"`
	Status        string  `gorm:"column:status;size:20;not null;default:available" json:"status"`
	Featured      bool    `gorm:"column:featured;default:false" json:"featured"`

	Photos []VehiclePhoto `gorm:"foreignKey:VehicleID;constraint:OnDelete:CASCADE" json:"photos,omitempty"`
}

type VehiclePhoto struct {
	gorm.Model
	VehicleID uint   `gorm:"column:vehicle_id;not null" json:"vehicle_id"`
	FilePath  string `gorm:"column:file_path;size:500;not null" json:"file_path"`
	Position  int    `gorm:"column:position;default:0" json:"position"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}
