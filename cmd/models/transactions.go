package models

import (
	"gorm.io/gorm"
)

const (
	TransactionSale    = "sale"
	TransactionTradeIn = "trade_in"
)

type Transaction struct {
	gorm.Model
	VehicleID  uint    `gorm:"column:vehicle_id;not null" json:"vehicle_id"`
	CustomerID *uint   `gorm:"column:customer_id" json:"customer_id,omitempty"`
	Amount     float64 `gorm:"column:amount;type:float;not null" json:"amount"`
	Type       string  `gorm:"column:type;size:20;not null" json:"type"`
	Method     string  `gorm:"column:method;type:text" json:"method"`
	Notes      string  `gorm:"column:notes;type:text" json:"notes"`

	Vehicle  *Vehicle  `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}
