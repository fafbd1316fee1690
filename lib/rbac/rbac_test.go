package rbac

import (
	"expense-tools-backend/models"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRbac(t *testing.T) {
	t.Run(`pathToRegex check`, func(t *testing.T) {
		path, method, err := parseSwaggerPattern("/api/v1/expense/{id}/approve [put]")
		require.Nil(t, err)
		require.Equal(t, PUT, method)
		r1 := pathToRegex(path)

		require.True(t, r1.MatchString("/api/v1/expense/123-321/approve"))
		require.False(t, r1.MatchString("/api/v1/expense/approve"))
		require.False(t, r1.MatchString("/api/v1/expense/123/approve/extra"))

		path, method, err = parseSwaggerPattern("/api/v1/users/{id}/claims/{claimID} [get]")
		require.Nil(t, err)
		require.Equal(t, GET, method)
		r2 := pathToRegex(path)
		require.True(t, r2.MatchString("/api/v1/users/123-321/claims/qwe-ewr123-wr-12"))
		require.False(t, r2.MatchString("/api/v1/users/we-ewr123-wr-12/claims"))

		_, _, err = parseSwaggerPattern("/api/v1/expense")
		require.Error(t, err)
	})

	NewHandler()

	t.Run(`review routes are closed for employee`, func(t *testing.T) {
		handler, found := Instance.GetRuleFunc("PUT", "/api/v1/expense/abc/approve")
		require.True(t, found)
		require.False(t, handler("emp-1", models.EmployeeRole, "/api/v1/expense/abc/approve"))
		require.True(t, handler("mgr-1", models.ManagerRole, "/api/v1/expense/abc/approve"))
		require.True(t, handler("adm-1", models.AdminRole, "/api/v1/expense/abc/approve"))

		handler, found = Instance.GetRuleFunc("get", "/api/v1/expense/review/pending/")
		require.True(t, found)
		require.False(t, handler("emp-1", models.EmployeeRole, "/api/v1/expense/review/pending"))
	})

	t.Run(`exact paths win over patterns`, func(t *testing.T) {
		handler, found := Instance.GetRuleFunc("GET", "/api/v1/expense/my")
		require.True(t, found)
		require.True(t, handler("emp-1", models.EmployeeRole, "/api/v1/expense/my"))
	})

	t.Run(`user card for self or admin`, func(t *testing.T) {
		handler, found := Instance.GetRuleFunc("GET", "/api/v1/users/emp-1")
		require.True(t, found)
		require.True(t, handler("emp-1", models.EmployeeRole, "/api/v1/users/emp-1"))
		require.False(t, handler("emp-2", models.EmployeeRole, "/api/v1/users/emp-1"))
		require.True(t, handler("adm-1", models.AdminRole, "/api/v1/users/emp-1"))
	})

	t.Run(`unknown route`, func(t *testing.T) {
		_, found := Instance.GetRuleFunc("DELETE", "/api/v1/expense/abc")
		require.False(t, found)
	})

	t.Run(`permissions for front`, func(t *testing.T) {
		employee := Instance.GetPermissions(models.EmployeeRole)
		require.NotContains(t, employee, models.ExpenseReviewModule)
		require.NotContains(t, employee, models.UsersModule)
		require.Contains(t, employee[models.ExpenseModule], models.CreatePermission)

		manager := Instance.GetPermissions(models.ManagerRole)
		require.Contains(t, manager[models.ExpenseReviewModule], models.FlowPermission)
		require.Contains(t, Instance.GetPermissions(models.AdminRole)[models.UsersModule], models.ManagePermission)
	})
}
