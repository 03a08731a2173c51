package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedMessages = []string{
	"Your last post made my week!",
	"Thanks for always being around.",
	"You give the best advice here.",
	"Loved your event recap.",
	"",
}

// SeedTestData resets the database and populates it with demo users,
// taxonomy terms and compliments.
//
// Behavior:
//  1. Clears existing rows in users, compliments, activity and notifications.
//  2. Creates 20 users with hashed passwords.
//  3. Generates ~100 compliments across random pairs and terms.
//
// Compatible with both MySQL and SQLite (AUTO_INCREMENT reset skipped for SQLite).
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	for _, table := range []string{"compliments", "activity_entries", "notifications", "user_metas", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	// Reset auto-increment sequences (only for MySQL)
	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE compliments AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'compliments'")
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'users'")
	}

	log.Println("Cleared existing data")

	if err := seedDefaultTerms(db); err != nil {
		return err
	}

	// --- Seed Users ---
	for i := 1; i <= 20; i++ {
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		user := User{
			Username:     fmt.Sprintf("user%d", i),
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: string(hash),
			DisplayName:  fmt.Sprintf("User %d", i),
			Active:       true,
			LastLoginAt:  time.Now().Add(-time.Duration(r.Intn(500)) * time.Hour),
		}

		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
	}
	log.Println("Seeded 20 users.")

	// --- Seed Compliments (~100) ---
	for i := 0; i < 100; i++ {
		senderID := uint64(r.Intn(20) + 1)
		receiverID := uint64(r.Intn(20) + 1)
		if senderID == receiverID {
			continue
		}

		compliment := Compliment{
			TermID:     uint64(r.Intn(3) + 1),
			ReceiverID: receiverID,
			SenderID:   senderID,
			Message:    seedMessages[r.Intn(len(seedMessages))],
		}
		if err := db.Create(&compliment).Error; err != nil {
			return fmt.Errorf("failed to seed compliment: %w", err)
		}
	}

	return nil
}
