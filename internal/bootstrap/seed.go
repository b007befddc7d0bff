package bootstrap

import (
	"log"

	"github.com/pagebound/bookchat/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedDevData creates a couple of users and books so the API is usable
// against an empty development database. Only called when APP_ENV is
// development.
func SeedDevData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := []model.User{
		{Username: "ada", Email: "ada@example.com", PasswordHash: string(hash)},
		{Username: "basil", Email: "basil@example.com", PasswordHash: string(hash)},
	}
	if err := db.Create(&users).Error; err != nil {
		return err
	}

	books := []model.Book{
		{Title: "The Left Hand of Darkness", Author: "Ursula K. Le Guin"},
		{Title: "Piranesi", Author: "Susanna Clarke"},
	}
	if err := db.Create(&books).Error; err != nil {
		return err
	}

	log.Println("seeded dev users and books")
	return nil
}
