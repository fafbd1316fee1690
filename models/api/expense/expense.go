package expenseapimodels

import (
	"expense-tools-backend/models"
	apimodels "expense-tools-backend/models/api"
	dbmodels "expense-tools-backend/models/db"
	"time"
)

const DateLayout = "2006-01-02"

// ClaimForm поля формы подачи заявки в исходном строковом виде
type ClaimForm struct {
	Amount      string `json:"amount" form:"amount"`             // сумма, например 12.50
	Currency    string `json:"currency" form:"currency"`         // код валюты из 3 букв
	Category    string `json:"category" form:"category"`         // Travel/Food/Accommodation/Other
	Description string `json:"description" form:"description"`   // описание
	ExpenseDate string `json:"expense_date" form:"expense_date"` // дата расхода YYYY-MM-DD
	VendorName  string `json:"vendor_name" form:"vendor_name"`   // поставщик
}

type DecisionRequest struct {
	Comment string `json:"comment" form:"comment"` // комментарий к решению
}

type ClaimView struct {
	ID              string                 `json:"id"`
	EmployeeID      string                 `json:"employee_id"`
	EmployeeName    string                 `json:"employee_name"`
	Amount          string                 `json:"amount"`
	Currency        string                 `json:"currency"`
	Category        models.ExpenseCategory `json:"category"`
	CategoryName    string                 `json:"category_name"`
	Description     string                 `json:"description"`
	VendorName      string                 `json:"vendor_name"`
	ExpenseDate     string                 `json:"expense_date"`
	SubmittedAt     time.Time              `json:"submitted_at"`
	Status          models.ClaimStatus     `json:"status"`
	StatusName      string                 `json:"status_name"`
	DecidedBy       *string                `json:"decided_by"`
	DecidedByName   string                 `json:"decided_by_name,omitempty"`
	DecidedAt       *time.Time             `json:"decided_at"`
	DecisionComment string                 `json:"decision_comment,omitempty"`
	HasReceipt      bool                   `json:"has_receipt"`
	ReceiptName     string                 `json:"receipt_name,omitempty"`
}

func Convert(rec dbmodels.ExpenseClaim) ClaimView {
	result := ClaimView{
		ID:              rec.ID,
		EmployeeID:      rec.EmployeeID,
		Amount:          rec.Amount.StringFixed(2),
		Currency:        rec.Currency,
		Category:        rec.Category,
		CategoryName:    rec.Category.ToHuman(),
		Description:     rec.Description,
		VendorName:      rec.VendorName,
		ExpenseDate:     rec.ExpenseDate.Format(DateLayout),
		SubmittedAt:     rec.SubmittedAt,
		Status:          rec.Status,
		StatusName:      rec.Status.ToHuman(),
		DecidedBy:       rec.DecidedBy,
		DecidedAt:       rec.DecidedAt,
		DecisionComment: rec.DecisionComment,
		HasReceipt:      rec.HasReceipt(),
		ReceiptName:     rec.ReceiptName,
	}
	if rec.Employee != nil {
		result.EmployeeName = rec.Employee.GetFullName()
	}
	if rec.DecidedByUser != nil {
		result.DecidedByName = rec.DecidedByUser.GetFullName()
	}
	return result
}

type ClaimFilter struct {
	apimodels.Pagination
	Status     models.ClaimStatus     `json:"status"`      // фильтр по статусу
	Category   models.ExpenseCategory `json:"category"`    // фильтр по категории
	EmployeeID string                 `json:"employee_id"` // фильтр по сотруднику
	DateFrom   string                 `json:"date_from"`   // дата расхода с, YYYY-MM-DD
	DateTo     string                 `json:"date_to"`     // дата расхода по, YYYY-MM-DD
}

type Summary struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

type HistoryView struct {
	ID         string                 `json:"id"`
	Action     models.HistoryAction   `json:"action"`
	ActionName string                 `json:"action_name"`
	ActorID    string                 `json:"actor_id"`
	ActorName  string                 `json:"actor_name"`
	Comment    string                 `json:"comment,omitempty"`
	Changes    dbmodels.EntityChanges `json:"changes"`
	CreatedAt  time.Time              `json:"created_at"`
}

func ConvertHistory(rec dbmodels.ExpenseHistory) HistoryView {
	result := HistoryView{
		ID:         rec.ID,
		Action:     rec.Action,
		ActionName: rec.Action.ToHuman(),
		ActorID:    rec.ActorID,
		Comment:    rec.Comment,
		Changes:    rec.Changes,
		CreatedAt:  rec.CreatedAt,
	}
	if rec.Actor != nil {
		result.ActorName = rec.Actor.GetFullName()
	}
	return result
}
