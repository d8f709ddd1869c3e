// Command seed loads a handful of development accounts with credits so the
// tracking flow can be exercised locally.
package main

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/quickgeo/fullgeo-backend/environments"
	"github.com/quickgeo/fullgeo-backend/pkg/database"
	"github.com/quickgeo/fullgeo-backend/pkg/logger"
)

func main() {
	logger.Init()

	cfg := environments.Load()

	db, err := database.NewMySQLDB(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM accounts"); err != nil {
		logger.Fatalf("Failed to count accounts: %v", err)
	}
	if count > 0 {
		logger.Infof("Database already has %d accounts, skipping seed", count)
		return
	}

	seedAccounts := []struct {
		name     string
		email    string
		password string
		credits  int
	}{
		{"Dev Account", "dev@fullgeo.local", "devpassword", 25},
		{"Empty Account", "empty@fullgeo.local", "devpassword", 0},
	}

	for _, acct := range seedAccounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(acct.password), bcrypt.DefaultCost)
		if err != nil {
			logger.Fatalf("Failed to hash seed password: %v", err)
		}

		_, err = db.Exec(
			"INSERT INTO accounts (name, email, password_hash, credits) VALUES (?, ?, ?, ?)",
			acct.name, acct.email, string(hash), acct.credits,
		)
		if err != nil {
			logger.Fatalf("Failed to seed account %s: %v", acct.email, err)
		}
	}

	logger.Infof("Seeded %d dev accounts", len(seedAccounts))
}
