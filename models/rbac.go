package models

// RbacFunc проверка доступа к маршруту; тонкие правила по заявке проверяются в access-gate
type RbacFunc func(userID string, role UserRole, path string) bool

type Module string

const (
	UsersModule         Module = "USERS"
	ExpenseModule       Module = "EXPENSE"
	ExpenseReviewModule Module = "EXPENSE_REVIEW"
	ProfileModule       Module = "PROFILE"
)

type Permission string

const (
	CreatePermission Permission = "CREATE"
	ViewPermission   Permission = "VIEW"
	ManagePermission Permission = "MANAGE"
	FlowPermission   Permission = "FLOW"
	FilesPermission  Permission = "FILES"
	ExportPermission Permission = "EXPORT"
)
