package setup

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"debate-arena/internal/domain"
)

// MigrateDB creates or updates the engine tables. The rooms table belongs to
// the room CRUD collaborator; migrating it here only adds the lifecycle and
// settings columns the engine writes.
func MigrateDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("cannot migrate database with nil DB connection")
	}

	err := db.AutoMigrate(
		&domain.Room{},
		&domain.Stance{},
		&domain.Message{},
		&domain.Evaluation{},
		&domain.DebateResult{},
	)
	if err != nil {
		logrus.Errorf("Failed to auto-migrate tables: %v", err)
		return fmt.Errorf("failed to auto-migrate tables: %w", err)
	}

	logrus.Info("Database migration completed successfully")
	return nil
}
