package models

import (
	"time"
)

type Commodity struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null" json:"commodity"`
	Price       float64   `gorm:"not null" json:"price"`
	Change      float64   `gorm:"default:0" json:"change"`
	LastUpdated time.Time `json:"last_updated"`
}

func (Commodity) TableName() string {
	return "commodities"
}

type MandiPrice struct {
	ID             uint    `gorm:"primarykey" json:"id"`
	State          string  `gorm:"index;not null" json:"state"`
	District       string  `gorm:"not null" json:"district"`
	Crop           string  `gorm:"not null" json:"crop"`
	TodayPrice     float64 `gorm:"not null" json:"today_price"`
	YesterdayPrice float64 `gorm:"not null" json:"yesterday_price"`
}

func (MandiPrice) TableName() string {
	return "mandi_prices"
}
