package userapimodels

import (
	"expense-tools-backend/models"
	apimodels "expense-tools-backend/models/api"
	dbmodels "expense-tools-backend/models/db"
	"net/mail"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const passwordMinLen = 6

type CreateUser struct {
	Email     string          `json:"email"`      // Email пользователя, он же логин
	Password  string          `json:"password"`   // Пароль
	FirstName string          `json:"first_name"` // Имя
	LastName  string          `json:"last_name"`  // Фамилия
	Role      models.UserRole `json:"role"`       // EMPLOYEE/MANAGER/ADMIN
	ManagerID string          `json:"manager_id"` // Руководитель, согласующий заявки
}

func (r CreateUser) Validate() error {
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return errors.New("почта имеет неправильный формат")
	}
	if len(r.Password) < passwordMinLen {
		return errors.Errorf("пароль должен быть не короче %d символов", passwordMinLen)
	}
	if strings.TrimSpace(r.FirstName) == "" && strings.TrimSpace(r.LastName) == "" {
		return errors.New("не указаны имя и фамилия")
	}
	if !r.Role.IsValid() {
		return errors.New("неизвестная роль пользователя")
	}
	return nil
}

type UpdateUser struct {
	FirstName *string          `json:"first_name"` // Имя
	LastName  *string          `json:"last_name"`  // Фамилия
	Role      *models.UserRole `json:"role"`       // Роль
	ManagerID *string          `json:"manager_id"` // Руководитель, пустая строка снимает руководителя
	IsActive  *bool            `json:"is_active"`  // Активен
	Password  string           `json:"password"`   // Новый пароль, если нужно сменить
}

func (r UpdateUser) Validate() error {
	if r.Role != nil && !r.Role.IsValid() {
		return errors.New("неизвестная роль пользователя")
	}
	if r.Password != "" && len(r.Password) < passwordMinLen {
		return errors.Errorf("пароль должен быть не короче %d символов", passwordMinLen)
	}
	return nil
}

type UserView struct {
	ID          string          `json:"id"`
	Email       string          `json:"email"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	Role        models.UserRole `json:"role"`
	RoleName    string          `json:"role_name"`
	ManagerID   *string         `json:"manager_id"`
	ManagerName string          `json:"manager_name,omitempty"`
	IsActive    bool            `json:"is_active"`
	LastLogin   *time.Time      `json:"last_login"`
	CreatedAt   time.Time       `json:"created_at"`
}

func Convert(rec dbmodels.User) UserView {
	result := UserView{
		ID:        rec.ID,
		Email:     rec.Email,
		FirstName: rec.FirstName,
		LastName:  rec.LastName,
		Role:      rec.Role,
		RoleName:  rec.Role.ToHuman(),
		ManagerID: rec.ManagerID,
		IsActive:  rec.IsActive,
		LastLogin: rec.LastLogin,
		CreatedAt: rec.CreatedAt,
	}
	if rec.Manager != nil {
		result.ManagerName = rec.Manager.GetFullName()
	}
	return result
}

type UserFilter struct {
	apimodels.Pagination
	Role   models.UserRole `json:"role"`   // фильтр по роли
	Search string          `json:"search"` // поиск по имени и почте
}
