package dbmodels

import (
	"expense-tools-backend/models"
	"time"

	"github.com/shopspring/decimal"
)

type ExpenseClaim struct {
	BaseModel
	EmployeeID         string                 `gorm:"type:varchar(36);index;not null"`
	Employee           *User                  `gorm:"foreignKey:EmployeeID"`
	Amount             decimal.Decimal        `gorm:"type:numeric;not null"`
	Currency           string                 `gorm:"type:varchar(3);not null"`
	Category           models.ExpenseCategory `gorm:"type:varchar(50);not null"`
	Description        string                 `gorm:"type:text;not null"`
	VendorName         string                 `gorm:"type:varchar(200)"`
	ExpenseDate        time.Time              `gorm:"type:date;not null"`
	SubmittedAt        time.Time              `gorm:"index;not null"`
	Status             models.ClaimStatus     `gorm:"type:varchar(20);index;not null;check:(status = 'PENDING') = (decided_by IS NULL AND decided_at IS NULL)"`
	DecidedBy          *string                `gorm:"type:varchar(36)"`
	DecidedByUser      *User                  `gorm:"foreignKey:DecidedBy"`
	DecidedAt          *time.Time
	DecisionComment    string `gorm:"type:text"`
	ReceiptKey         string `gorm:"type:varchar(255)"`
	ReceiptName        string `gorm:"type:varchar(255)"`
	ReceiptContentType string `gorm:"type:varchar(100)"`
}

func (r ExpenseClaim) IsOwner(userID string) bool {
	return r.EmployeeID == userID
}

func (r ExpenseClaim) HasReceipt() bool {
	return r.ReceiptKey != ""
}
