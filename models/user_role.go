package models

type UserRole string

const (
	EmployeeRole UserRole = "EMPLOYEE"
	ManagerRole  UserRole = "MANAGER"
	AdminRole    UserRole = "ADMIN"
)

var roleHumanName = map[UserRole]string{
	EmployeeRole: "Сотрудник",
	ManagerRole:  "Руководитель",
	AdminRole:    "Администратор",
}

func (r UserRole) ToHuman() string {
	if human, exist := roleHumanName[r]; exist {
		return human
	}
	return string(r)
}

func (r UserRole) IsValid() bool {
	_, ok := roleHumanName[r]
	return ok
}

// IsReviewer роли, которые могут согласовывать чужие заявки
func (r UserRole) IsReviewer() bool {
	return r == ManagerRole || r == AdminRole
}

func (r UserRole) IsAdmin() bool {
	return r == AdminRole
}

const SystemUser = "Система"
