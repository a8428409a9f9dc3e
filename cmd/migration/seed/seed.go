package seed

import (
	"labstock/config"
	. "labstock/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data")

	users := []User{
		{
			Username:   "admin",
			Name:       "Administrator",
			Email:      "admin@example.com",
			Password:   HashPassword("admin123"),
			Role:       RoleAdmin,
			Department: "Lab Operations",
		},
		{
			Username:   "jdoe",
			Name:       "Jane Doe",
			Email:      "jdoe@example.com",
			Password:   HashPassword("password"),
			Role:       RoleUser,
			Department: "Chemistry",
		},
		{
			Username:   "viewer",
			Name:       "Front Desk",
			Email:      "frontdesk@example.com",
			Password:   HashPassword("password"),
			Role:       RoleReadonly,
			Department: "Reception",
		},
	}

	for _, user := range users {
		var existing User
		if err := db.First(&existing, "username = ?", user.Username).Error; err == nil {
			log.Info("User already exists", "username", user.Username)
			continue
		}
		log.Info("Seeding user", "username", user.Username)
		if err := db.Create(&user).Error; err != nil {
			log.Er("failed to create user", err, "username", user.Username)
		}
	}

	equipment := []Equipment{
		{
			SKU:          "LAB-00001",
			Name:         "Digital Microscope",
			Category:     "Optics",
			Manufacturer: "Olympus",
			Model:        "CX23",
			Status:       StatusInStock,
			Location:     "Shelf A1",
		},
		{
			SKU:          "LAB-00002",
			Name:         "Analytical Balance",
			Category:     "Measurement",
			Manufacturer: "Sartorius",
			Model:        "BCE224",
			Status:       StatusInStock,
			Location:     "Bench 3",
		},
		{
			SKU:      "LAB-00003",
			Name:     "Centrifuge",
			Category: "Sample Prep",
			Status:   StatusMaintenance,
			Location: "Service Room",
		},
	}

	for _, item := range equipment {
		var existing Equipment
		if err := db.First(&existing, "sku = ?", item.SKU).Error; err == nil {
			log.Info("Equipment already exists", "sku", item.SKU)
			continue
		}
		log.Info("Seeding equipment", "sku", item.SKU)
		if err := db.Create(&item).Error; err != nil {
			log.Er("failed to create equipment", err, "sku", item.SKU)
		}
	}

	return nil
}
