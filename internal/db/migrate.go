package db

import (
	"context"

	"github.com/lumora-ai/chatcore/entity"
	"github.com/lumora-ai/chatcore/errors"
	"gorm.io/gorm"
)

func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	_, tx := OpenSession(ctx, db)

	return errors.WithStack(tx.AutoMigrate(
		&entity.Thread{},
		&entity.Message{},
	))
}

func DropAll(ctx context.Context, db *gorm.DB) error {
	_, tx := OpenSession(ctx, db)
	return errors.WithStack(tx.Migrator().DropTable(
		&entity.Message{},
		&entity.Thread{},
	))
}
