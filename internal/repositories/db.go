package repositories

import (
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/caohoangphucs/giadungtinthanh/internal/config"
	"github.com/caohoangphucs/giadungtinthanh/internal/models"
)

var DB *gorm.DB

func ConnectDatabase() {
	dsn := config.Envs.DB_URL
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true, // map driver errors to gorm.ErrDuplicatedKey etc.
	})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	// Run migrations
	err = db.AutoMigrate(
		&models.File{},
		&models.Category{},
		&models.Product{},
		&models.ProductMedia{},
		&models.ProductVariant{},
		&models.VariantAttribute{},
	)
	if err != nil {
		log.Fatal("Migration failed: ", err)
	}
	DB = db
	log.Println("Successfully connected to database")
}
