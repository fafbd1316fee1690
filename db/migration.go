package db

import (
	dbmodels "expense-tools-backend/models/db"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func AutoMigrateDB() error {
	log.Info("Запуск миграций")
	if err := Migrate(DB); err != nil {
		return err
	}
	log.Info("Миграция прошла успешно")
	return nil
}

// Migrate общая для сервиса и тестов на sqlite
func Migrate(tx *gorm.DB) error {
	if err := tx.AutoMigrate(&dbmodels.User{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры User")
	}
	if err := tx.AutoMigrate(&dbmodels.ExpenseClaim{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры ExpenseClaim")
	}
	if err := tx.AutoMigrate(&dbmodels.ExpenseHistory{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры ExpenseHistory")
	}
	return nil
}
