package expensehistorystore

import (
	"context"
	apperrors "expense-tools-backend/lib/utils/app-errors"
	dbmodels "expense-tools-backend/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Provider interface {
	Create(ctx context.Context, rec dbmodels.ExpenseHistory) (id string, err error)
	List(ctx context.Context, claimID string) (list []dbmodels.ExpenseHistory, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(ctx context.Context, rec dbmodels.ExpenseHistory) (id string, err error) {
	err = i.db.WithContext(ctx).
		Omit("Actor").
		Create(&rec).
		Error
	if err != nil {
		return "", apperrors.Persistence(errors.Wrap(err, "ошибка сохранения истории заявки"))
	}
	return rec.ID, nil
}

func (i impl) List(ctx context.Context, claimID string) (list []dbmodels.ExpenseHistory, err error) {
	list = []dbmodels.ExpenseHistory{}
	err = i.db.WithContext(ctx).
		Where("claim_id = ?", claimID).
		Order("created_at ASC").
		Preload("Actor").
		Find(&list).
		Error
	if err != nil {
		return nil, apperrors.Persistence(errors.Wrap(err, "ошибка получения истории заявки"))
	}
	return list, nil
}
