package models

// Actor аутентифицированный пользователь, от имени которого выполняется операция
type Actor struct {
	ID   string
	Role UserRole
}

func (a Actor) IsEmpty() bool {
	return a.ID == "" || a.Role == ""
}
