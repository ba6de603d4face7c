package database

import (
	"procurement/internal/model"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func seedCategory(description string, unitCost string) model.Category {
	c := model.Category{Description: description}
	if unitCost != "" {
		c.UnitCost = decimal.NewNullDecimal(decimal.RequireFromString(unitCost))
	}
	return c
}

// Seed fills an empty catalog with a starter set of categories.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	categories := []model.Category{
		seedCategory("Laptop", "1000"),
		seedCategory("Monitor", "250"),
		seedCategory("Licenza software", "120"),
		seedCategory("Cancelleria", "15.50"),
		seedCategory("Formazione", ""),
	}
	if err := db.Create(&categories).Error; err != nil {
		return err
	}
	log.WithField("count", len(categories)).Info("seeded category catalog")
	return nil
}
