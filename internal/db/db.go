package db

import (
	"errors"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/membercircle/compliments/internal/config"
)

// SchemaVersion is recorded in the options table after a successful
// install. Migration is skipped while the recorded version matches.
const SchemaVersion = "1.0.0"

const versionOption = "compliments_db_version"

// NewDB initializes the database connection using DSN from config and
// runs the idempotent install.
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DB.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info), // log SQL queries
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates the schema once per SchemaVersion. A recorded current
// version makes this a no-op, so repeated startups never touch the schema.
func Migrate(db *gorm.DB) error {
	// options table must exist before the version check itself
	if err := db.AutoMigrate(&Option{}); err != nil {
		return fmt.Errorf("failed to migrate options: %w", err)
	}

	var opt Option
	err := db.Where("name = ?", versionOption).First(&opt).Error
	if err == nil && opt.Value == SchemaVersion {
		return nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if err := db.AutoMigrate(
		&User{}, &ComplimentTerm{}, &Compliment{},
		&ActivityEntry{}, &Notification{}, &UserMeta{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	if err := seedDefaultTerms(db); err != nil {
		return err
	}

	record := Option{Name: versionOption, Value: SchemaVersion}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	return nil
}

// seedDefaultTerms inserts the starter taxonomy so a fresh install can
// tag compliments immediately. Existing ids are left untouched.
func seedDefaultTerms(db *gorm.DB) error {
	terms := []ComplimentTerm{
		{ID: 1, Name: "Great Content", IconURL: "/static/icons/great-content.png"},
		{ID: 2, Name: "Very Helpful", IconURL: "/static/icons/very-helpful.png"},
		{ID: 3, Name: "Good Friend", IconURL: "/static/icons/good-friend.png"},
	}
	for _, term := range terms {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&term).Error; err != nil {
			return fmt.Errorf("failed to seed term %q: %w", term.Name, err)
		}
	}
	return nil
}
