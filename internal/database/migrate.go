package database

import (
	"fmt"
	"log"

	"agrimandi/internal/models"
)

func Migrate() error {
	log.Println("Running database migrations...")

	err := DB.AutoMigrate(
		&models.User{},
		&models.AuthToken{},
		&models.ConnectionRequest{},
		&models.Commodity{},
		&models.MandiPrice{},
		&models.Notification{},
	)

	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Println("Database migration completed successfully")
	return nil
}
