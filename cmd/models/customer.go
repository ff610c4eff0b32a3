package models

import (
	"gorm.io/gorm"
)

type Customer struct {
	gorm.Model
	FullName       string  `gorm:"column:full_name;size:255;not null" json:"full_name"`
	Email          string  `gorm:"column:email;size:255;not null" json:"email"`
	Phone          string  `gorm:"column:phone;size:20" json:"phone"`
	Address        string  `gorm:"column:address;size:500" json:"address"`
	Notes          string  `gorm:"column:notes;type:text" json:"notes"`
	TotalPurchases int     `gorm:"column:total_purchases;default:0" json:"total_purchases"`
	TotalSpent     float64 `gorm:"column:total_spent;default:0" json:"total_spent"`
}
