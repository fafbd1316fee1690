package expensereport

import (
	"bytes"
	"context"
	"expense-tools-backend/config"
	"expense-tools-backend/db"
	accessgate "expense-tools-backend/lib/access-gate"
	expensehistorystore "expense-tools-backend/lib/expense/history-store"
	expensestore "expense-tools-backend/lib/expense/store"
	pdfexport "expense-tools-backend/lib/export/pdf"
	xlsexport "expense-tools-backend/lib/export/xls"
	filestorage "expense-tools-backend/lib/file-storage"
	apperrors "expense-tools-backend/lib/utils/app-errors"
	initchecker "expense-tools-backend/lib/utils/init-checker"
	"expense-tools-backend/models"
	apimodels "expense-tools-backend/models/api"
	expenseapimodels "expense-tools-backend/models/api/expense"
	dbmodels "expense-tools-backend/models/db"
	"iter"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Provider interface {
	ListMine(ctx context.Context, actor models.Actor) ([]expenseapimodels.ClaimView, error)
	ListPendingForReview(ctx context.Context, actor models.Actor) ([]expenseapimodels.ClaimView, error)
	ListAll(ctx context.Context, actor models.Actor, filter expenseapimodels.ClaimFilter) ([]expenseapimodels.ClaimView, int64, error)
	ListTeam(ctx context.Context, actor models.Actor, filter expenseapimodels.ClaimFilter) ([]expenseapimodels.ClaimView, int64, error)
	Summary(ctx context.Context, actor models.Actor) (expenseapimodels.Summary, error)
	History(ctx context.Context, actor models.Actor, claimID string) ([]expenseapimodels.HistoryView, error)
	ExportXLS(ctx context.Context, actor models.Actor, filter expenseapimodels.ClaimFilter) (*bytes.Buffer, error)
	ExportClaimPDF(ctx context.Context, actor models.Actor, claimID string) ([]byte, error)
}

var Instance Provider

func NewHandler() {
	initchecker.CheckInit(
		"db", db.DB,
		"xlsexport", xlsexport.Instance,
	)
	Instance = NewInstance(db.DB, xlsexport.Instance, filestorage.Instance, config.Conf.Export.FontDir)
}

func NewInstance(DB *gorm.DB, xlsExport xlsexport.Provider, fileStorage filestorage.Provider, fontDir string) Provider {
	return impl{
		store:        expensestore.NewInstance(DB),
		historyStore: expensehistorystore.NewInstance(DB),
		xlsExport:    xlsExport,
		fileStorage:  fileStorage,
		fontDir:      fontDir,
	}
}

type impl struct {
	store        expensestore.Provider
	historyStore expensehistorystore.Provider
	xlsExport    xlsexport.Provider
	fileStorage  filestorage.Provider
	fontDir      string
}

func (i impl) ListMine(ctx context.Context, actor models.Actor) ([]expenseapimodels.ClaimView, error) {
	if actor.IsEmpty() {
		return nil, apperrors.Unauthenticated("пользователь не определен")
	}
	seq := i.store.Query(ctx, expensestore.ClaimFilter{EmployeeID: actor.ID})
	return collectVisible(actor, seq, 0, 0)
}

func (i impl) ListPendingForReview(ctx context.Context, actor models.Actor) ([]expenseapimodels.ClaimView, error) {
	if err := checkReviewer(actor); err != nil {
		return nil, err
	}
	seq := i.store.Query(ctx, expensestore.ClaimFilter{
		Status:            models.ClaimStatusPending,
		ExcludeEmployeeID: actor.ID,
	})
	return collectVisible(actor, seq, 0, 0)
}

func (i impl) ListAll(ctx context.Context, actor models.Actor, filter expenseapimodels.ClaimFilter) ([]expenseapimodels.ClaimView, int64, error) {
	if err := checkReviewer(actor); err != nil {
		return nil, 0, err
	}
	storeFilter, err := toStoreFilter(filter)
	if err != nil {
		return nil, 0, err
	}
	return i.listPage(ctx, actor, storeFilter, filter.Pagination)
}

// ListTeam заявки прямых подчиненных согласующего, руководитель определяется по users.manager_id
func (i impl) ListTeam(ctx context.Context, actor models.Actor, filter expenseapimodels.ClaimFilter) ([]expenseapimodels.ClaimView, int64, error) {
	if err := checkReviewer(actor); err != nil {
		return nil, 0, err
	}
	storeFilter, err := toStoreFilter(filter)
	if err != nil {
		return nil, 0, err
	}
	storeFilter.ManagerID = actor.ID
	return i.listPage(ctx, actor, storeFilter, filter.Pagination)
}

func (i impl) listPage(ctx context.Context, actor models.Actor, storeFilter expensestore.ClaimFilter, pagination apimodels.Pagination) ([]expenseapimodels.ClaimView, int64, error) {
	rowCount, err := i.store.Count(ctx, storeFilter)
	if err != nil {
		return nil, 0, err
	}
	page, limit := pagination.GetPage()
	offset := (page - 1) * limit
	if int64(offset) >= rowCount {
		return []expenseapimodels.ClaimView{}, rowCount, nil
	}
	storeFilter.BatchSize = limit
	list, err := collectVisible(actor, i.store.Query(ctx, storeFilter), offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return list, rowCount, nil
}

func (i impl) Summary(ctx context.Context, actor models.Actor) (expenseapimodels.Summary, error) {
	if actor.IsEmpty() {
		return expenseapimodels.Summary{}, apperrors.Unauthenticated("пользователь не определен")
	}
	counts, err := i.store.CountByStatus(ctx, expensestore.ClaimFilter{EmployeeID: actor.ID})
	if err != nil {
		return expenseapimodels.Summary{}, err
	}
	result := expenseapimodels.Summary{
		Pending:  counts[models.ClaimStatusPending],
		Approved: counts[models.ClaimStatusApproved],
		Rejected: counts[models.ClaimStatusRejected],
	}
	result.Total = result.Pending + result.Approved + result.Rejected
	return result, nil
}

func (i impl) History(ctx context.Context, actor models.Actor, claimID string) ([]expenseapimodels.HistoryView, error) {
	if _, err := i.getVisible(ctx, actor, claimID); err != nil {
		return nil, err
	}
	return i.history(ctx, claimID)
}

func (i impl) ExportXLS(ctx context.Context, actor models.Actor, filter expenseapimodels.ClaimFilter) (*bytes.Buffer, error) {
	if err := checkReviewer(actor); err != nil {
		return nil, err
	}
	storeFilter, err := toStoreFilter(filter)
	if err != nil {
		return nil, err
	}
	list, err := collectVisible(actor, i.store.Query(ctx, storeFilter), 0, 0)
	if err != nil {
		return nil, err
	}
	if i.xlsExport == nil {
		return nil, errors.New("выгрузка в xlsx не инициализирована")
	}
	return i.xlsExport.ExportClaimList(list)
}

func (i impl) ExportClaimPDF(ctx context.Context, actor models.Actor, claimID string) ([]byte, error) {
	claim, err := i.getVisible(ctx, actor, claimID)
	if err != nil {
		return nil, err
	}
	history, err := i.history(ctx, claimID)
	if err != nil {
		return nil, err
	}
	data := pdfexport.ClaimReportData{
		Claim:   expenseapimodels.Convert(claim),
		History: history,
	}
	if claim.HasReceipt() && i.fileStorage != nil {
		body, err := i.fileStorage.GetReceipt(ctx, claim.ReceiptKey)
		if err != nil {
			log.WithField("claim_id", claimID).WithError(err).Warn("не удалось получить чек для pdf")
		} else {
			data.Receipt = &models.File{
				FileName:    claim.ReceiptName,
				ContentType: claim.ReceiptContentType,
				Body:        body,
			}
		}
	}
	return pdfexport.GenerateClaimReport(i.fontDir, data)
}

func (i impl) history(ctx context.Context, claimID string) ([]expenseapimodels.HistoryView, error) {
	list, err := i.historyStore.List(ctx, claimID)
	if err != nil {
		return nil, err
	}
	result := make([]expenseapimodels.HistoryView, 0, len(list))
	for _, rec := range list {
		result = append(result, expenseapimodels.ConvertHistory(rec))
	}
	return result, nil
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

func checkReviewer(actor models.Actor) error {
	if actor.IsEmpty() {
		return apperrors.Unauthenticated("пользователь не определен")
	}
	if !accessgate.CanReview(actor) {
		return apperrors.Forbidden("список заявок на согласование доступен только руководителю или администратору")
	}
	return nil
}

// collectVisible пропускает offset видимых записей и берет не больше limit, limit 0 без ограничения
func collectVisible(actor models.Actor, seq iter.Seq2[dbmodels.ExpenseClaim, error], offset, limit int) ([]expenseapimodels.ClaimView, error) {
	result := []expenseapimodels.ClaimView{}
	skipped := 0
	for rec, err := range seq {
		if err != nil {
			return nil, err
		}
		if !accessgate.CanView(actor, rec) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		result = append(result, expenseapimodels.Convert(rec))
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func toStoreFilter(filter expenseapimodels.ClaimFilter) (expensestore.ClaimFilter, error) {
	vErr := &apperrors.ValidationError{}
	result := expensestore.ClaimFilter{
		EmployeeID: strings.TrimSpace(filter.EmployeeID),
	}
	if filter.Status != "" {
		status := models.ClaimStatus(strings.ToUpper(string(filter.Status)))
		if status.IsValid() {
			result.Status = status
		} else {
			vErr.Add("status", "неизвестный статус заявки")
		}
	}
	if filter.Category != "" {
		if category, ok := models.ParseExpenseCategory(string(filter.Category)); ok {
			result.Category = category
		} else {
			vErr.Add("category", "неизвестная категория расходов")
		}
	}
	if filter.DateFrom != "" {
		dateFrom, err := time.ParseInLocation(expenseapimodels.DateLayout, filter.DateFrom, time.UTC)
		if err != nil {
			vErr.Add("date_from", "дата должна быть в формате ГГГГ-ММ-ДД")
		} else {
			result.DateFrom = &dateFrom
		}
	}
	if filter.DateTo != "" {
		dateTo, err := time.ParseInLocation(expenseapimodels.DateLayout, filter.DateTo, time.UTC)
		if err != nil {
			vErr.Add("date_to", "дата должна быть в формате ГГГГ-ММ-ДД")
		} else {
			result.DateTo = &dateTo
		}
	}
	if result.DateFrom != nil && result.DateTo != nil && result.DateTo.Before(*result.DateFrom) {
		vErr.Add("date_to", "дата окончания периода раньше даты начала")
	}
	return result, vErr.Err()
}
