package expensehandler

import (
	"context"
	"expense-tools-backend/config"
	"expense-tools-backend/db"
	accessgate "expense-tools-backend/lib/access-gate"
	expensenotify "expense-tools-backend/lib/expense-notify"
	expensehistorystore "expense-tools-backend/lib/expense/history-store"
	expensestore "expense-tools-backend/lib/expense/store"
	filestorage "expense-tools-backend/lib/file-storage"
	apperrors "expense-tools-backend/lib/utils/app-errors"
	initchecker "expense-tools-backend/lib/utils/init-checker"
	"expense-tools-backend/models"
	expenseapimodels "expense-tools-backend/models/api/expense"
	dbmodels "expense-tools-backend/models/db"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const vendorNameMaxLen = 200

type Provider interface {
	Submit(ctx context.Context, actor models.Actor, form expenseapimodels.ClaimForm) (id string, err error)
	Decide(ctx context.Context, actor models.Actor, claimID string, outcome models.DecisionOutcome, comment string) (expenseapimodels.ClaimView, error)
	Get(ctx context.Context, actor models.Actor, claimID string) (expenseapimodels.ClaimView, error)
	AttachReceipt(ctx context.Context, actor models.Actor, claimID string, file models.File) error
	GetReceipt(ctx context.Context, actor models.Actor, claimID string) (models.File, error)
}

var Instance Provider

type ReceiptRules struct {
	MaxSize           int64
	AllowedExtensions []string
}

func NewHandler() {
	initchecker.CheckInit(
		"db", db.DB,
		"expensenotify", expensenotify.Instance,
	)
	location, err := time.LoadLocation(config.Conf.App.TimeZone)
	if err != nil {
		log.WithError(err).Warnf("неизвестный часовой пояс %v, используется UTC", config.Conf.App.TimeZone)
		location = time.UTC
	}
	Instance = NewInstance(db.DB, expensenotify.Instance, filestorage.Instance, location, ReceiptRules{
		MaxSize:           int64(config.Conf.Receipt.MaxSizeMb) * 1024 * 1024,
		AllowedExtensions: strings.Split(config.Conf.Receipt.AllowedExtensions, ","),
	})
}

func NewInstance(DB *gorm.DB, notifier expensenotify.Provider, fileStorage filestorage.Provider, location *time.Location, receiptRules ReceiptRules) Provider {
	return &impl{
		db:           DB,
		store:        expensestore.NewInstance(DB),
		historyStore: expensehistorystore.NewInstance(DB),
		notifier:     notifier,
		fileStorage:  fileStorage,
		location:     location,
		receiptRules: receiptRules,
		now:          time.Now,
	}
}

type impl struct {
	db           *gorm.DB
	store        expensestore.Provider
	historyStore expensehistorystore.Provider
	notifier     expensenotify.Provider
	fileStorage  filestorage.Provider
	location     *time.Location
	receiptRules ReceiptRules
	now          func() time.Time
}

func (i impl) Submit(ctx context.Context, actor models.Actor, form expenseapimodels.ClaimForm) (id string, err error) {
	if actor.IsEmpty() {
		return "", apperrors.Unauthenticated("пользователь не определен")
	}
	logger := log.WithField("employee_id", actor.ID)
	rec, err := i.parseForm(form)
	if err != nil {
		return "", err
	}
	rec.EmployeeID = actor.ID
	rec.SubmittedAt = i.now().UTC()
	rec.Status = models.ClaimStatusPending

	err = i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := expensestore.NewInstance(tx).Create(ctx, rec)
		if err != nil {
			return err
		}
		rec = created
		_, err = expensehistorystore.NewInstance(tx).Create(ctx, dbmodels.ExpenseHistory{
			ClaimID: created.ID,
			ActorID: actor.ID,
			Action:  models.HistorySubmitted,
			Changes: dbmodels.EntityChanges{
				Description: models.HistorySubmitted.ToHuman(),
				Data: []dbmodels.FieldChanges{
					{Field: "status", NewValue: models.ClaimStatusPending},
				},
			},
		})
		return err
	})
	if err != nil {
		err = apperrors.Classify(err)
		logger.WithError(err).Error("ошибка подачи заявки")
		return "", err
	}
	logger = logger.WithField("claim_id", rec.ID)
	logger.Info("заявка подана")

	if i.notifier != nil {
		if err := i.notifier.ClaimSubmitted(ctx, rec); err != nil {
			logger.WithError(err).Error("ошибка отправки уведомления о новой заявке")
		}
	}
	return rec.ID, nil
}

func (i impl) Decide(ctx context.Context, actor models.Actor, claimID string, outcome models.DecisionOutcome, comment string) (expenseapimodels.ClaimView, error) {
	if actor.IsEmpty() {
		return expenseapimodels.ClaimView{}, apperrors.Unauthenticated("пользователь не определен")
	}
	logger := log.WithField("claim_id", claimID).
		WithField("actor_id", actor.ID).
		WithField("outcome", outcome)
	newStatus, ok := outcome.Status()
	if !ok {
		vErr := &apperrors.ValidationError{}
		vErr.Add("outcome", "неизвестное решение")
		return expenseapimodels.ClaimView{}, vErr
	}
	claim, err := i.store.GetByID(ctx, claimID)
	if err != nil {
		return expenseapimodels.ClaimView{}, err
	}
	if err = accessgate.CheckDecide(actor, claim); err != nil {
		logger.WithError(err).Info("решение по заявке отклонено")
		return expenseapimodels.ClaimView{}, err
	}

	decidedBy := actor.ID
	decidedAt := i.now().UTC()
	comment = strings.TrimSpace(comment)
	var updated dbmodels.ExpenseClaim
	err = i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updated, err = expensestore.NewInstance(tx).CompareAndSet(ctx, claimID, models.ClaimStatusPending, func(rec *dbmodels.ExpenseClaim) error {
			rec.Status = newStatus
			rec.DecidedBy = &decidedBy
			rec.DecidedAt = &decidedAt
			rec.DecisionComment = comment
			return nil
		})
		if err != nil {
			if errors.Is(err, expensestore.ErrStatusConflict) {
				return apperrors.AlreadyDecided("по заявке %v уже принято решение", claimID)
			}
			return err
		}
		_, err = expensehistorystore.NewInstance(tx).Create(ctx, dbmodels.ExpenseHistory{
			ClaimID: claimID,
			ActorID: actor.ID,
			Action:  models.HistoryActionByStatus(newStatus),
			Comment: comment,
			Changes: dbmodels.EntityChanges{
				Description: models.HistoryActionByStatus(newStatus).ToHuman(),
				Data: []dbmodels.FieldChanges{
					{Field: "status", OldValue: models.ClaimStatusPending, NewValue: newStatus},
				},
			},
		})
		return err
	})
	if err != nil {
		err = apperrors.Classify(err)
		if !errors.Is(err, apperrors.ErrAlreadyDecided) {
			logger.WithError(err).Error("ошибка сохранения решения по заявке")
		}
		return expenseapimodels.ClaimView{}, err
	}
	logger.Info("по заявке принято решение")

	if i.notifier != nil {
		if err := i.notifier.ClaimDecided(ctx, updated); err != nil {
			logger.WithError(err).Error("ошибка отправки уведомления о решении по заявке")
		}
	}
	// решение уже сохранено, перечитываем только ради имен в ответе
	latest, err := i.store.GetByID(ctx, claimID)
	if err != nil {
		logger.WithError(err).Warn("не удалось перечитать заявку после решения")
		return expenseapimodels.Convert(updated), nil
	}
	return expenseapimodels.Convert(latest), nil
}

func (i impl) Get(ctx context.Context, actor models.Actor, claimID string) (expenseapimodels.ClaimView, error) {
	claim, err := i.getVisible(ctx, actor, claimID)
	if err != nil {
		return expenseapimodels.ClaimView{}, err
	}
	return expenseapimodels.Convert(claim), nil
}

func (i impl) AttachReceipt(ctx context.Context, actor models.Actor, claimID string, file models.File) error {
	if actor.IsEmpty() {
		return apperrors.Unauthenticated("пользователь не определен")
	}
	logger := log.WithField("claim_id", claimID).
		WithField("actor_id", actor.ID).
		WithField("file_name", file.FileName)
	ext, err := i.validateReceipt(file)
	if err != nil {
		return err
	}
	claim, err := i.store.GetByID(ctx, claimID)
	if err != nil {
		return err
	}
	if err = accessgate.CanEdit(actor, claim); err != nil {
		return err
	}
	if i.fileStorage == nil {
		return apperrors.Persistence(errors.New("хранилище файлов не инициализировано"))
	}

	file.ContentType = contentTypeByExt(ext)
	key := fmt.Sprintf("receipts/%s/%s.%s", claim.ID, uuid.NewString(), ext)
	if err = i.fileStorage.UploadReceipt(ctx, key, file); err != nil {
		logger.WithError(err).Error("ошибка загрузки чека")
		return apperrors.Persistence(err)
	}

	err = i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := expensestore.NewInstance(tx).CompareAndSet(ctx, claimID, models.ClaimStatusPending, func(rec *dbmodels.ExpenseClaim) error {
			rec.ReceiptKey = key
			rec.ReceiptName = file.FileName
			rec.ReceiptContentType = file.ContentType
			return nil
		})
		if err != nil {
			if errors.Is(err, expensestore.ErrStatusConflict) {
				return apperrors.AlreadyDecided("по заявке %v уже принято решение", claimID)
			}
			return err
		}
		_, err = expensehistorystore.NewInstance(tx).Create(ctx, dbmodels.ExpenseHistory{
			ClaimID: claimID,
			ActorID: actor.ID,
			Action:  models.HistoryReceiptAttached,
			Changes: dbmodels.EntityChanges{
				Description: models.HistoryReceiptAttached.ToHuman(),
				Data: []dbmodels.FieldChanges{
					{Field: "receipt_name", OldValue: claim.ReceiptName, NewValue: file.FileName},
				},
			},
		})
		return err
	})
	if err != nil {
		err = apperrors.Classify(err)
		logger.WithError(err).Error("ошибка сохранения чека по заявке")
		return err
	}
	logger.Info("чек приложен к заявке")
	return nil
}

func (i impl) GetReceipt(ctx context.Context, actor models.Actor, claimID string) (models.File, error) {
	claim, err := i.getVisible(ctx, actor, claimID)
	if err != nil {
		return models.File{}, err
	}
	if !claim.HasReceipt() {
		return models.File{}, apperrors.NotFound("к заявке %v не приложен чек", claimID)
	}
	if i.fileStorage == nil {
		return models.File{}, apperrors.Persistence(errors.New("хранилище файлов не инициализировано"))
	}
	body, err := i.fileStorage.GetReceipt(ctx, claim.ReceiptKey)
	if err != nil {
		log.WithField("claim_id", claimID).WithError(err).Error("ошибка получения чека")
		return models.File{}, apperrors.Persistence(err)
	}
	return models.File{
		FileName:    claim.ReceiptName,
		ContentType: claim.ReceiptContentType,
		Body:        body,
	}, nil
}

func (i impl) getVisible(ctx context.Context, actor models.Actor, claimID string) (dbmodels.ExpenseClaim, error) {
	if actor.IsEmpty() {
		return dbmodels.ExpenseClaim{}, apperrors.Unauthenticated("пользователь не определен")
	}
	claim, err := i.store.GetByID(ctx, claimID)
	if err != nil {
		return dbmodels.ExpenseClaim{}, err
	}
	if !accessgate.CanView(actor, claim) {
		return dbmodels.ExpenseClaim{}, apperrors.Forbidden("нет доступа к заявке %v", claimID)
	}
	return claim, nil
}

// parseForm собирает все ошибки формы, а не только первую
func (i impl) parseForm(form expenseapimodels.ClaimForm) (dbmodels.ExpenseClaim, error) {
	vErr := &apperrors.ValidationError{}
	rec := dbmodels.ExpenseClaim{
		Description: form.Description,
		VendorName:  strings.TrimSpace(form.VendorName),
	}

	amountValue := strings.TrimSpace(form.Amount)
	if amountValue == "" {
		vErr.Add("amount", "не указана сумма")
	} else if amount, err := decimal.NewFromString(amountValue); err != nil {
		vErr.Add("amount", "сумма должна быть числом")
	} else if !amount.IsPositive() {
		vErr.Add("amount", "сумма должна быть больше нуля")
	} else {
		rec.Amount = amount
	}

	currency := strings.ToUpper(strings.TrimSpace(form.Currency))
	if currency == "" {
		vErr.Add("currency", "не указана валюта")
	} else if !isCurrencyCode(currency) {
		vErr.Add("currency", "код валюты должен состоять из 3 букв")
	} else {
		rec.Currency = currency
	}

	if category, ok := models.ParseExpenseCategory(form.Category); ok {
		rec.Category = category
	} else {
		vErr.Add("category", "неизвестная категория расходов")
	}

	dateValue := strings.TrimSpace(form.ExpenseDate)
	if dateValue == "" {
		vErr.Add("expense_date", "не указана дата расхода")
	} else if expenseDate, err := time.ParseInLocation(expenseapimodels.DateLayout, dateValue, time.UTC); err != nil {
		vErr.Add("expense_date", "дата расхода должна быть в формате ГГГГ-ММ-ДД")
	} else if expenseDate.Format(expenseapimodels.DateLayout) > i.today() {
		vErr.Add("expense_date", "дата расхода не может быть позже текущей даты")
	} else {
		rec.ExpenseDate = expenseDate
	}

	if utf8.RuneCountInString(rec.VendorName) > vendorNameMaxLen {
		vErr.Add("vendor_name", fmt.Sprintf("название поставщика длиннее %d символов", vendorNameMaxLen))
	}

	if err := vErr.Err(); err != nil {
		return dbmodels.ExpenseClaim{}, err
	}
	return rec, nil
}

func (i impl) today() string {
	location := i.location
	if location == nil {
		location = time.UTC
	}
	return i.now().In(location).Format(expenseapimodels.DateLayout)
}

func (i impl) validateReceipt(file models.File) (ext string, err error) {
	vErr := &apperrors.ValidationError{}
	ext = strings.ToLower(strings.TrimPrefix(filepath.Ext(file.FileName), "."))
	switch {
	case len(file.Body) == 0:
		vErr.Add("file", "файл пустой")
	case i.receiptRules.MaxSize > 0 && int64(len(file.Body)) > i.receiptRules.MaxSize:
		vErr.Add("file", "размер файла превышает допустимый")
	case !i.isAllowedExt(ext):
		vErr.Add("file", "недопустимый тип файла")
	}
	return ext, vErr.Err()
}

func (i impl) isAllowedExt(ext string) bool {
	if ext == "" {
		return false
	}
	for _, allowed := range i.receiptRules.AllowedExtensions {
		if strings.EqualFold(strings.TrimSpace(allowed), ext) {
			return true
		}
	}
	return false
}

func isCurrencyCode(value string) bool {
	if utf8.RuneCountInString(value) != 3 {
		return false
	}
	for _, r := range value {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

var contentTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"pdf":  "application/pdf",
}

func contentTypeByExt(ext string) string {
	if contentType, ok := contentTypes[ext]; ok {
		return contentType
	}
	return "application/octet-stream"
}
