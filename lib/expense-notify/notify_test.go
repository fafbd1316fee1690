package expensenotify

import (
	"context"
	usersstore "expense-tools-backend/lib/users/store"
	"expense-tools-backend/lib/utils/testdb"
	"expense-tools-backend/models"
	dbmodels "expense-tools-backend/models/db"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	to      string
	subject string
	message string
}

type fakeSender struct {
	sent []sentMail
}

func (f *fakeSender) SendEMail(to, subject, message string) error {
	f.sent = append(f.sent, sentMail{to: to, subject: subject, message: message})
	return nil
}

func TestNotify(t *testing.T) {
	ctx := context.Background()
	userStore := usersstore.NewInstance(testdb.New(t))

	managerID, err := userStore.Create(ctx, dbmodels.User{
		Email:     "boss@example.com",
		FirstName: "Иван",
		LastName:  "Петров",
		Role:      models.ManagerRole,
		IsActive:  true,
	})
	require.NoError(t, err)
	employeeID, err := userStore.Create(ctx, dbmodels.User{
		Email:     "Anna@Example.com",
		FirstName: "Анна",
		LastName:  "Смирнова",
		Role:      models.EmployeeRole,
		ManagerID: &managerID,
		IsActive:  true,
	})
	require.NoError(t, err)
	loneID, err := userStore.Create(ctx, dbmodels.User{
		Email:    "lone@example.com",
		Role:     models.EmployeeRole,
		IsActive: true,
	})
	require.NoError(t, err)

	claim := dbmodels.ExpenseClaim{
		BaseModel:  dbmodels.BaseModel{ID: "claim-1"},
		EmployeeID: employeeID,
		Amount:     decimal.RequireFromString("150"),
		Currency:   "USD",
		Category:   models.CategoryTravel,
		Status:     models.ClaimStatusPending,
	}

	t.Run(`manager gets new claim`, func(t *testing.T) {
		sender := &fakeSender{}
		err := NewInstance(userStore, sender).ClaimSubmitted(ctx, claim)
		require.NoError(t, err)
		require.Len(t, sender.sent, 1)
		require.Equal(t, "boss@example.com", sender.sent[0].to)
		require.Contains(t, sender.sent[0].message, "Анна Смирнова")
		require.Contains(t, sender.sent[0].message, "150.00 USD")
	})

	t.Run(`no manager no mail`, func(t *testing.T) {
		sender := &fakeSender{}
		lonely := claim
		lonely.EmployeeID = loneID
		require.NoError(t, NewInstance(userStore, sender).ClaimSubmitted(ctx, lonely))
		require.Empty(t, sender.sent)
	})

	t.Run(`owner gets decision`, func(t *testing.T) {
		sender := &fakeSender{}
		decided := claim
		decided.Status = models.ClaimStatusRejected
		decided.DecisionComment = "нет чека"
		require.NoError(t, NewInstance(userStore, sender).ClaimDecided(ctx, decided))
		require.Len(t, sender.sent, 1)
		require.Equal(t, "anna@example.com", sender.sent[0].to)
		require.Contains(t, sender.sent[0].message, models.ClaimStatusRejected.ToHuman())
		require.Contains(t, sender.sent[0].message, "нет чека")
	})

	t.Run(`unknown owner`, func(t *testing.T) {
		sender := &fakeSender{}
		missing := claim
		missing.EmployeeID = "missing"
		require.Error(t, NewInstance(userStore, sender).ClaimDecided(ctx, missing))
		require.Empty(t, sender.sent)
	})
}
