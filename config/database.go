package config

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// ConnectDatabase opens the local store used for the persisted session and
// message history. SESSION_DB is a sqlite file path by default; a
// postgres:// URL selects the postgres driver instead, for setups that
// share one session store across machines.
func ConnectDatabase(c *Config) error {
	dialector, err := dialectorFor(c.SessionDB)
	if err != nil {
		return err
	}

	DB, err = gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to session store: %w", err)
	}

	log.Println("Session store connection established successfully")
	return nil
}

func dialectorFor(dsn string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.Open(dsn), nil
	case dsn != "":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("SESSION_DB is empty")
	}
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// SetDB sets the database instance (primarily for testing)
func SetDB(db *gorm.DB) {
	DB = db
}
