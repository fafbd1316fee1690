package dbmodels

import (
	"expense-tools-backend/models"
	"fmt"
	"strings"
	"time"
)

type User struct {
	BaseModel
	Email        string          `gorm:"type:varchar(255);uniqueIndex"`
	PasswordHash string          `gorm:"type:varchar(128)"`
	FirstName    string          `gorm:"type:varchar(150)"`
	LastName     string          `gorm:"type:varchar(150)"`
	Role         models.UserRole `gorm:"type:varchar(50)"`
	ManagerID    *string         `gorm:"type:varchar(36);index"`
	Manager      *User           `gorm:"foreignKey:ManagerID"`
	IsActive     bool
	LastLogin    *time.Time
}

func (r User) GetFullName() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s", r.FirstName, r.LastName))
}

func (r User) ToActor() models.Actor {
	return models.Actor{
		ID:   r.ID,
		Role: r.Role,
	}
}
