package dbmodels

import "expense-tools-backend/models"

type ExpenseHistory struct {
	BaseModel
	ClaimID string               `gorm:"type:varchar(36);index"`
	ActorID string               `gorm:"type:varchar(36)"`
	Actor   *User                `gorm:"foreignKey:ActorID"`
	Action  models.HistoryAction `gorm:"type:varchar(50)"`
	Comment string
	Changes EntityChanges `gorm:"type:jsonb"`
}
