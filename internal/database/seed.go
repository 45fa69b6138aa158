package database

import (
	"log"
	"time"

	"agrimandi/internal/models"
)

// Seed inserts starter market data when the tables are empty. Idempotent and
// non-fatal: a seeding failure is logged and the server still starts.
func Seed() {
	var mandiCount int64
	if err := DB.Model(&models.MandiPrice{}).Count(&mandiCount).Error; err == nil && mandiCount == 0 {
		prices := []models.MandiPrice{
			{State: "Maharashtra", District: "Pune", Crop: "Wheat", TodayPrice: 2150, YesterdayPrice: 2120},
			{State: "Maharashtra", District: "Pune", Crop: "Rice", TodayPrice: 1800, YesterdayPrice: 1820},
			{State: "Maharashtra", District: "Nashik", Crop: "Onion", TodayPrice: 1500, YesterdayPrice: 1480},
			{State: "Karnataka", District: "Bengaluru", Crop: "Potato", TodayPrice: 2500, YesterdayPrice: 2550},
		}
		if err := DB.Create(&prices).Error; err != nil {
			log.Printf("Seeding mandi_prices failed (non-fatal): %v", err)
		} else {
			log.Println("Seeded mandi_prices")
		}
	}

	var commodityCount int64
	if err := DB.Model(&models.Commodity{}).Count(&commodityCount).Error; err == nil && commodityCount == 0 {
		now := time.Now()
		commodities := []models.Commodity{
			{Name: "Wheat", Price: 2150, Change: 0, LastUpdated: now},
			{Name: "Rice", Price: 1800, Change: 0, LastUpdated: now},
			{Name: "Onion", Price: 1500, Change: 0, LastUpdated: now},
			{Name: "Potato", Price: 2500, Change: 0, LastUpdated: now},
		}
		if err := DB.Create(&commodities).Error; err != nil {
			log.Printf("Seeding commodities failed (non-fatal): %v", err)
		} else {
			log.Println("Seeded commodities")
		}
	}
}
