package usersstore

import (
	"context"
	apperrors "expense-tools-backend/lib/utils/app-errors"
	"expense-tools-backend/models"
	apimodels "expense-tools-backend/models/api"
	dbmodels "expense-tools-backend/models/db"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type UserFilter struct {
	Role      models.UserRole
	ManagerID string
	Search    string
}

type Provider interface {
	Create(ctx context.Context, rec dbmodels.User) (string, error)
	Update(ctx context.Context, userID string, updMap map[string]interface{}) error
	GetList(ctx context.Context, filter UserFilter, page, limit int) (userList []dbmodels.User, err error)
	Count(ctx context.Context, filter UserFilter) (int64, error)
	ExistByEmail(ctx context.Context, email string) (bool, error)
	FindByEmail(ctx context.Context, email string) (rec *dbmodels.User, err error)
	GetByID(ctx context.Context, userID string) (rec *dbmodels.User, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(ctx context.Context, rec dbmodels.User) (string, error) {
	rec.Email = NormalizeEmail(rec.Email)
	err := i.db.WithContext(ctx).
		Omit("Manager").
		Create(&rec).
		Error
	if err != nil {
		return "", apperrors.Persistence(errors.Wrap(err, "ошибка создания пользователя"))
	}
	return rec.ID, nil
}

func (i impl) Update(ctx context.Context, userID string, updMap map[string]interface{}) error {
	err := i.db.WithContext(ctx).
		Model(&dbmodels.User{}).
		Where("id = ?", userID).
		Updates(updMap).
		Error
	if err != nil {
		return apperrors.Persistence(errors.Wrap(err, "ошибка обновления пользователя"))
	}
	return nil
}

func (i impl) GetList(ctx context.Context, filter UserFilter, page, limit int) (userList []dbmodels.User, err error) {
	userList = []dbmodels.User{}
	tx := i.applyFilter(i.db.WithContext(ctx).Model(&dbmodels.User{}), filter)
	i.setPage(tx, page, limit)
	err = tx.
		Order("last_name ASC").
		Order("first_name ASC").
		Order("id ASC").
		Preload("Manager").
		Find(&userList).
		Error
	if err != nil {
		return nil, apperrors.Persistence(errors.Wrap(err, "ошибка получения списка пользователей"))
	}
	return userList, nil
}

func (i impl) Count(ctx context.Context, filter UserFilter) (int64, error) {
	var rowCount int64
	err := i.applyFilter(i.db.WithContext(ctx).Model(&dbmodels.User{}), filter).
		Count(&rowCount).
		Error
	if err != nil {
		return 0, apperrors.Persistence(errors.Wrap(err, "ошибка подсчета пользователей"))
	}
	return rowCount, nil
}

func (i impl) ExistByEmail(ctx context.Context, email string) (bool, error) {
	rec, err := i.FindByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return rec != nil, nil
}

func (i impl) FindByEmail(ctx context.Context, email string) (rec *dbmodels.User, err error) {
	err = i.db.WithContext(ctx).
		Model(&dbmodels.User{}).
		Where("email = ?", NormalizeEmail(email)).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Persistence(errors.Wrap(err, "ошибка поиска пользователя по почте"))
	}
	return rec, nil
}

func (i impl) GetByID(ctx context.Context, userID string) (rec *dbmodels.User, err error) {
	err = i.db.WithContext(ctx).
		Model(&dbmodels.User{}).
		Where("id = ?", userID).
		Preload("Manager").
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Persistence(errors.Wrap(err, "ошибка получения пользователя"))
	}
	return rec, nil
}

func (i impl) applyFilter(tx *gorm.DB, filter UserFilter) *gorm.DB {
	if filter.Role != "" {
		tx = tx.Where("role = ?", filter.Role)
	}
	if filter.ManagerID != "" {
		tx = tx.Where("manager_id = ?", filter.ManagerID)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		tx = tx.Where("(LOWER(first_name || ' ' || last_name) LIKE ? OR LOWER(email) LIKE ?)", search, search)
	}
	return tx
}

func (i impl) setPage(tx *gorm.DB, pageValue, limitValue int) {
	page, limit := apimodels.Pagination{Page: pageValue, Limit: limitValue}.GetPage()
	tx.Limit(limit).Offset((page - 1) * limit)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
