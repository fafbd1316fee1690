package usershandler

import (
	"context"
	usersstore "expense-tools-backend/lib/users/store"
	apperrors "expense-tools-backend/lib/utils/app-errors"
	authutils "expense-tools-backend/lib/utils/auth-utils"
	"expense-tools-backend/lib/utils/testdb"
	"expense-tools-backend/models"
	apimodels "expense-tools-backend/models/api"
	userapimodels "expense-tools-backend/models/api/user"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func ptr[T any](value T) *T {
	return &value
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	gormDB := testdb.New(t)
	require.NoError(t, EnsureAdmin(ctx, gormDB, "Admin@Example.com", "admin-pass", "Главный", "Админ"))
	// повторный вызов не создает дубль
	require.NoError(t, EnsureAdmin(ctx, gormDB, "admin@example.com", "admin-pass", "Главный", "Админ"))

	store := usersstore.NewInstance(gormDB)
	adminRec, err := store.FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	require.NotNil(t, adminRec)
	require.True(t, authutils.CheckPassword(adminRec.PasswordHash, "admin-pass"))
	admin := adminRec.ToActor()
	handler := NewInstance(gormDB)

	managerID, err := handler.Create(ctx, admin, userapimodels.CreateUser{
		Email:     "boss@example.com",
		Password:  "secret1",
		FirstName: "Иван",
		LastName:  "Петров",
		Role:      models.ManagerRole,
	})
	require.NoError(t, err)

	var employeeID string
	t.Run(`create employee with manager`, func(t *testing.T) {
		employeeID, err = handler.Create(ctx, admin, userapimodels.CreateUser{
			Email:     "anna@example.com",
			Password:  "secret1",
			FirstName: "Анна",
			Role:      models.EmployeeRole,
			ManagerID: managerID,
		})
		require.NoError(t, err)

		view, err := handler.GetByID(ctx, admin, employeeID)
		require.NoError(t, err)
		require.Equal(t, models.EmployeeRole, view.Role)
		require.NotNil(t, view.ManagerID)
		require.Equal(t, managerID, *view.ManagerID)
		require.Equal(t, "Иван Петров", view.ManagerName)
		require.True(t, view.IsActive)
	})

	t.Run(`create checks`, func(t *testing.T) {
		_, err := handler.Create(ctx, admin, userapimodels.CreateUser{
			Email: "ANNA@example.com", Password: "secret1", FirstName: "Анна", Role: models.EmployeeRole,
		})
		require.True(t, errors.Is(err, apperrors.ErrValidation))

		_, err = handler.Create(ctx, admin, userapimodels.CreateUser{
			Email: "new@example.com", Password: "secret1", FirstName: "Новый", Role: models.EmployeeRole, ManagerID: employeeID,
		})
		vErr, ok := apperrors.AsValidation(err)
		require.True(t, ok)
		require.Equal(t, []string{"manager_id"}, vErr.FieldNames())

		_, err = handler.Create(ctx, admin, userapimodels.CreateUser{
			Email: "new@example.com", Password: "1", FirstName: "Новый", Role: models.EmployeeRole,
		})
		require.True(t, errors.Is(err, apperrors.ErrValidation))
	})

	t.Run(`only admin manages users`, func(t *testing.T) {
		manager := models.Actor{ID: managerID, Role: models.ManagerRole}
		_, err := handler.Create(ctx, manager, userapimodels.CreateUser{
			Email: "x@example.com", Password: "secret1", FirstName: "X", Role: models.EmployeeRole,
		})
		require.True(t, errors.Is(err, apperrors.ErrForbidden))
		_, _, err = handler.List(ctx, manager, userapimodels.UserFilter{})
		require.True(t, errors.Is(err, apperrors.ErrForbidden))
		_, err = handler.GetByID(ctx, manager, employeeID)
		require.True(t, errors.Is(err, apperrors.ErrForbidden))

		self, err := handler.GetByID(ctx, manager, managerID)
		require.NoError(t, err)
		require.Equal(t, "boss@example.com", self.Email)
	})

	t.Run(`update`, func(t *testing.T) {
		err := handler.Update(ctx, admin, employeeID, userapimodels.UpdateUser{
			Role:      ptr(models.ManagerRole),
			ManagerID: ptr(""),
			IsActive:  ptr(false),
			Password:  "new-secret",
		})
		require.NoError(t, err)

		view, err := handler.GetByID(ctx, admin, employeeID)
		require.NoError(t, err)
		require.Equal(t, models.ManagerRole, view.Role)
		require.Nil(t, view.ManagerID)
		require.False(t, view.IsActive)

		rec, err := store.GetByID(ctx, employeeID)
		require.NoError(t, err)
		require.True(t, authutils.CheckPassword(rec.PasswordHash, "new-secret"))
	})

	t.Run(`update checks`, func(t *testing.T) {
		err := handler.Update(ctx, admin, admin.ID, userapimodels.UpdateUser{Role: ptr(models.EmployeeRole)})
		require.True(t, errors.Is(err, apperrors.ErrValidation))

		err = handler.Update(ctx, admin, managerID, userapimodels.UpdateUser{ManagerID: ptr(managerID)})
		require.True(t, errors.Is(err, apperrors.ErrValidation))

		err = handler.Update(ctx, admin, "missing", userapimodels.UpdateUser{FirstName: ptr("X")})
		require.True(t, errors.Is(err, apperrors.ErrNotFound))
	})

	t.Run(`list`, func(t *testing.T) {
		list, rowCount, err := handler.List(ctx, admin, userapimodels.UserFilter{})
		require.NoError(t, err)
		require.Equal(t, int64(3), rowCount)
		require.Len(t, list, 3)

		list, rowCount, err = handler.List(ctx, admin, userapimodels.UserFilter{Search: "BOSS"})
		require.NoError(t, err)
		require.Equal(t, int64(1), rowCount)
		require.Equal(t, managerID, list[0].ID)

		list, _, err = handler.List(ctx, admin, userapimodels.UserFilter{
			Pagination: apimodels.Pagination{Page: 5, Limit: 10},
		})
		require.NoError(t, err)
		require.Empty(t, list)
	})
}
