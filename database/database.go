package database

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"expensetracker/config"
	"expensetracker/logger"
	"expensetracker/models"
)

var DB *gorm.DB

// Init opens the MySQL connection, migrates the schema and seeds the
// category catalog.
func Init(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
		cfg.Database.Charset,
	)

	logMode := gormlogger.Warn
	if cfg.Server.Mode != "release" {
		logMode = gormlogger.Info
	}

	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logMode),
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	if err := DB.AutoMigrate(
		&models.User{},
		&models.Expense{},
		&models.ExpenseCategory{},
		&models.PasswordReset{},
	); err != nil {
		return err
	}

	// Seed the default category catalog when the table is empty.
	var catCount int64
	DB.Model(&models.ExpenseCategory{}).Count(&catCount)
	if catCount == 0 {
		var cats []models.ExpenseCategory
		for i, name := range models.DefaultCategories() {
			cats = append(cats, models.ExpenseCategory{
				Name: name,
				Sort: (i + 1) * 10,
			})
		}
		if len(cats) > 0 {
			_ = DB.Create(&cats).Error
		}
	}

	logger.Info("database initialized")
	return nil
}

// GetDB returns the shared connection.
func GetDB() *gorm.DB {
	return DB
}
