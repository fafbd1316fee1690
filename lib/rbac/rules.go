package rbac

import (
	"expense-tools-backend/models"

	log "github.com/sirupsen/logrus"
)

var (
	AdminRoleSet    = []models.UserRole{models.AdminRole}
	ReviewerRoleSet = []models.UserRole{models.AdminRole, models.ManagerRole}
	AllRoles        = []models.UserRole{models.AdminRole, models.ManagerRole, models.EmployeeRole}
)

func (i *impl) initRules() {
	i.addUsersRbac()
	i.addExpenseRbac()
	i.addExpenseReviewRbac()
	i.addProfileRbac()
}

func (i *impl) register(module models.Module, permission models.Permission, roles []models.UserRole, swaggerPattern string, handler models.RbacFunc) {
	if err := i.RegisterRule(module, permission, roles, swaggerPattern, handler); err != nil {
		log.WithError(err).WithField("pattern", swaggerPattern).Fatal("ошибка регистрации правила доступа")
	}
}

func (i *impl) addUsersRbac() {
	//VIEW
	i.register(models.UsersModule, models.ViewPermission, AdminRoleSet, "/api/v1/users/list [post]", nil)
	i.register(models.UsersModule, models.ViewPermission, AdminRoleSet, "/api/v1/users/{id} [get]", AllowSelfOrRoleFunc(AdminRoleSet))
	//MANAGE
	i.register(models.UsersModule, models.ManagePermission, AdminRoleSet, "/api/v1/users [post]", nil)
	i.register(models.UsersModule, models.ManagePermission, AdminRoleSet, "/api/v1/users/{id} [put]", nil)
}

// addExpenseRbac доступ к конкретной заявке дополнительно проверяется в access-gate
func (i *impl) addExpenseRbac() {
	// CREATE
	i.register(models.ExpenseModule, models.CreatePermission, AllRoles, "/api/v1/expense [post]", nil)
	// VIEW
	i.register(models.ExpenseModule, models.ViewPermission, AllRoles, "/api/v1/expense/my [get]", nil)
	i.register(models.ExpenseModule, models.ViewPermission, AllRoles, "/api/v1/expense/summary [get]", nil)
	i.register(models.ExpenseModule, models.ViewPermission, AllRoles, "/api/v1/expense/{id} [get]", nil)
	i.register(models.ExpenseModule, models.ViewPermission, AllRoles, "/api/v1/expense/{id}/history [get]", nil)
	// FILES
	i.register(models.ExpenseModule, models.FilesPermission, AllRoles, "/api/v1/expense/{id}/receipt [post]", nil)
	i.register(models.ExpenseModule, models.FilesPermission, AllRoles, "/api/v1/expense/{id}/receipt [get]", nil)
	i.register(models.ExpenseModule, models.ExportPermission, AllRoles, "/api/v1/expense/{id}/pdf [get]", nil)
}

func (i *impl) addExpenseReviewRbac() {
	// VIEW
	i.register(models.ExpenseReviewModule, models.ViewPermission, ReviewerRoleSet, "/api/v1/expense/review/pending [get]", nil)
	i.register(models.ExpenseReviewModule, models.ViewPermission, ReviewerRoleSet, "/api/v1/expense/review/list [post]", nil)
	i.register(models.ExpenseReviewModule, models.ViewPermission, ReviewerRoleSet, "/api/v1/expense/review/team [post]", nil)
	// FLOW
	i.register(models.ExpenseReviewModule, models.FlowPermission, ReviewerRoleSet, "/api/v1/expense/{id}/approve [put]", nil)
	i.register(models.ExpenseReviewModule, models.FlowPermission, ReviewerRoleSet, "/api/v1/expense/{id}/reject [put]", nil)
	// EXPORT
	i.register(models.ExpenseReviewModule, models.ExportPermission, ReviewerRoleSet, "/api/v1/expense/review/export [post]", nil)
}

func (i *impl) addProfileRbac() {
	i.register(models.ProfileModule, models.ViewPermission, AllRoles, "/api/v1/auth/me [get]", nil)
	i.register(models.ProfileModule, models.ViewPermission, AllRoles, "/api/v1/auth/permissions [get]", nil)
}
