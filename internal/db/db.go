package db

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenDB opens the store behind databaseUrl. Postgres URLs open a postgres
// connection, anything else is treated as a sqlite path.
func OpenDB(databaseUrl string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(databaseUrl, "postgres://") || strings.HasPrefix(databaseUrl, "postgresql://") {
		dialector = postgres.Open(databaseUrl)
	} else {
		dialector = sqlite.Open(databaseUrl)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return db, nil
}

func CloseDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrapf(err, "failed to get db")
	}
	if err := sqlDB.Close(); err != nil {
		return errors.Wrapf(err, "failed to close db")
	}

	return nil
}
