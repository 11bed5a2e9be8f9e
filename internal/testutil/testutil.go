// Package testutil holds shared test fixtures: an in-memory database
// with the full schema, and seed helpers for the common entities.
package testutil

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/okoshkin/storefront/internal/config"
	"github.com/okoshkin/storefront/internal/models"
)

func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

func SeedUser(t *testing.T, db *gorm.DB, username string, staff, employee bool) models.User {
	t.Helper()
	user := models.User{
		Username:     username,
		PasswordHash: "x",
		IsStaff:      staff,
		IsEmployee:   employee,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}
	return user
}

func SeedCategory(t *testing.T, db *gorm.DB, name string) models.ProductCategory {
	t.Helper()
	category := models.ProductCategory{Name: name}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("failed to seed category %s: %v", name, err)
	}
	return category
}

func SeedProduct(t *testing.T, db *gorm.DB, categoryID uint, name string, price string, stock int) models.Product {
	t.Helper()
	product := models.Product{
		Name:          name,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		CategoryID:    categoryID,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("failed to seed product %s: %v", name, err)
	}
	return product
}
