package expensestore

import (
	"context"
	apperrors "expense-tools-backend/lib/utils/app-errors"
	"expense-tools-backend/models"
	dbmodels "expense-tools-backend/models/db"
	"iter"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ErrStatusConflict статус заявки изменился между чтением и записью
var ErrStatusConflict = errors.New("статус заявки изменился")

const defaultBatchSize = 50

type ClaimFilter struct {
	EmployeeID        string
	ExcludeEmployeeID string
	ManagerID         string // только заявки прямых подчиненных руководителя
	Status            models.ClaimStatus
	Category          models.ExpenseCategory
	DateFrom          *time.Time
	DateTo            *time.Time
	BatchSize         int
}

// Mutator меняет копию заявки; записываются только изменившиеся изменяемые поля
type Mutator func(rec *dbmodels.ExpenseClaim) error

type Provider interface {
	Create(ctx context.Context, rec dbmodels.ExpenseClaim) (dbmodels.ExpenseClaim, error)
	GetByID(ctx context.Context, id string) (dbmodels.ExpenseClaim, error)
	CompareAndSet(ctx context.Context, id string, expected models.ClaimStatus, mutator Mutator) (dbmodels.ExpenseClaim, error)
	Query(ctx context.Context, filter ClaimFilter) iter.Seq2[dbmodels.ExpenseClaim, error]
	Count(ctx context.Context, filter ClaimFilter) (int64, error)
	CountByStatus(ctx context.Context, filter ClaimFilter) (map[models.ClaimStatus]int64, error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(ctx context.Context, rec dbmodels.ExpenseClaim) (dbmodels.ExpenseClaim, error) {
	err := i.db.WithContext(ctx).
		Omit("Employee", "DecidedByUser").
		Create(&rec).
		Error
	if err != nil {
		return dbmodels.ExpenseClaim{}, apperrors.Persistence(errors.Wrap(err, "ошибка создания заявки"))
	}
	return rec, nil
}

func (i impl) GetByID(ctx context.Context, id string) (dbmodels.ExpenseClaim, error) {
	rec := dbmodels.ExpenseClaim{}
	err := i.db.WithContext(ctx).
		Where("id = ?", id).
		Preload("Employee").
		Preload("DecidedByUser").
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dbmodels.ExpenseClaim{}, apperrors.NotFound("заявка %v не найдена", id)
		}
		return dbmodels.ExpenseClaim{}, apperrors.Persistence(errors.Wrap(err, "ошибка получения заявки"))
	}
	return rec, nil
}

func (i impl) CompareAndSet(ctx context.Context, id string, expected models.ClaimStatus, mutator Mutator) (dbmodels.ExpenseClaim, error) {
	current, err := i.GetByID(ctx, id)
	if err != nil {
		return dbmodels.ExpenseClaim{}, err
	}
	if current.Status != expected {
		return current, errors.Wrapf(ErrStatusConflict, "ожидался статус %v, текущий %v", expected, current.Status)
	}
	updated := current
	if err = mutator(&updated); err != nil {
		return current, err
	}
	updMap := changedColumns(current, updated)
	if len(updMap) == 0 {
		return current, nil
	}
	updMap["updated_at"] = time.Now().UTC()

	tx := i.db.WithContext(ctx).
		Model(&dbmodels.ExpenseClaim{}).
		Where("id = ?", id).
		Where("status = ?", expected).
		Updates(updMap)
	if tx.Error != nil {
		return current, apperrors.Persistence(errors.Wrap(tx.Error, "ошибка обновления заявки"))
	}
	if tx.RowsAffected == 0 {
		// запись удалена или статус успели поменять
		latest, err := i.GetByID(ctx, id)
		if err != nil {
			return current, err
		}
		return latest, errors.Wrapf(ErrStatusConflict, "ожидался статус %v, текущий %v", expected, latest.Status)
	}
	return updated, nil
}

// changedColumns id, владелец, сумма, даты подачи и расхода не меняются никогда
func changedColumns(before, after dbmodels.ExpenseClaim) map[string]interface{} {
	updMap := map[string]interface{}{}
	if before.Status != after.Status {
		updMap["status"] = after.Status
	}
	if !equalStringPtr(before.DecidedBy, after.DecidedBy) {
		updMap["decided_by"] = after.DecidedBy
	}
	if !equalTimePtr(before.DecidedAt, after.DecidedAt) {
		updMap["decided_at"] = after.DecidedAt
	}
	if before.DecisionComment != after.DecisionComment {
		updMap["decision_comment"] = after.DecisionComment
	}
	if before.ReceiptKey != after.ReceiptKey {
		updMap["receipt_key"] = after.ReceiptKey
	}
	if before.ReceiptName != after.ReceiptName {
		updMap["receipt_name"] = after.ReceiptName
	}
	if before.ReceiptContentType != after.ReceiptContentType {
		updMap["receipt_content_type"] = after.ReceiptContentType
	}
	return updMap
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// Query постраничное чтение по ключу (submitted_at, id), от новых к старым.
// Каждый проход по последовательности заново выполняет запрос.
func (i impl) Query(ctx context.Context, filter ClaimFilter) iter.Seq2[dbmodels.ExpenseClaim, error] {
	batchSize := filter.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return func(yield func(dbmodels.ExpenseClaim, error) bool) {
		var last *dbmodels.ExpenseClaim
		for {
			batch := make([]dbmodels.ExpenseClaim, 0, batchSize)
			tx := i.applyFilter(i.db.WithContext(ctx).Model(&dbmodels.ExpenseClaim{}), filter)
			if last != nil {
				tx = tx.Where("(submitted_at < ?) OR (submitted_at = ? AND id < ?)", last.SubmittedAt, last.SubmittedAt, last.ID)
			}
			err := tx.
				Order("submitted_at DESC").
				Order("id DESC").
				Limit(batchSize).
				Preload("Employee").
				Preload("DecidedByUser").
				Find(&batch).
				Error
			if err != nil {
				yield(dbmodels.ExpenseClaim{}, apperrors.Persistence(errors.Wrap(err, "ошибка получения списка заявок")))
				return
			}
			for idx := range batch {
				if !yield(batch[idx], nil) {
					return
				}
			}
			if len(batch) < batchSize {
				return
			}
			last = &batch[len(batch)-1]
		}
	}
}

func (i impl) Count(ctx context.Context, filter ClaimFilter) (int64, error) {
	var rowCount int64
	err := i.applyFilter(i.db.WithContext(ctx).Model(&dbmodels.ExpenseClaim{}), filter).
		Count(&rowCount).
		Error
	if err != nil {
		return 0, apperrors.Persistence(errors.Wrap(err, "ошибка подсчета заявок"))
	}
	return rowCount, nil
}

type statusCount struct {
	Status models.ClaimStatus
	Total  int64
}

func (i impl) CountByStatus(ctx context.Context, filter ClaimFilter) (map[models.ClaimStatus]int64, error) {
	rows := []statusCount{}
	err := i.applyFilter(i.db.WithContext(ctx).Model(&dbmodels.ExpenseClaim{}), filter).
		Select("status, count(*) as total").
		Group("status").
		Scan(&rows).
		Error
	if err != nil {
		return nil, apperrors.Persistence(errors.Wrap(err, "ошибка подсчета заявок по статусам"))
	}
	result := map[models.ClaimStatus]int64{
		models.ClaimStatusPending:  0,
		models.ClaimStatusApproved: 0,
		models.ClaimStatusRejected: 0,
	}
	for _, row := range rows {
		result[row.Status] = row.Total
	}
	return result, nil
}

func (i impl) applyFilter(tx *gorm.DB, filter ClaimFilter) *gorm.DB {
	if filter.EmployeeID != "" {
		tx = tx.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.ExcludeEmployeeID != "" {
		tx = tx.Where("employee_id <> ?", filter.ExcludeEmployeeID)
	}
	if filter.ManagerID != "" {
		tx = tx.Where("employee_id IN (SELECT id FROM users WHERE manager_id = ?)", filter.ManagerID)
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		tx = tx.Where("category = ?", filter.Category)
	}
	if filter.DateFrom != nil {
		tx = tx.Where("expense_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		tx = tx.Where("expense_date <= ?", *filter.DateTo)
	}
	return tx
}
