package xlsexport

import (
	"expense-tools-backend/models"
	expenseapimodels "expense-tools-backend/models/api/expense"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportClaimList(t *testing.T) {
	list := []expenseapimodels.ClaimView{
		{
			ID:           "claim-1",
			EmployeeName: "Анна Смирнова",
			Amount:       "150.00",
			Currency:     "USD",
			CategoryName: models.CategoryTravel.ToHuman(),
			Description:  "Taxi",
			ExpenseDate:  "2024-03-01",
			SubmittedAt:  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
			StatusName:   models.ClaimStatusPending.ToHuman(),
		},
		{
			ID:           "claim-2",
			EmployeeName: "Иван Петров",
			Amount:       "12.5",
			Currency:     "EUR",
			CategoryName: models.CategoryFood.ToHuman(),
			ExpenseDate:  "2024-02-28",
			SubmittedAt:  time.Date(2024, 2, 29, 9, 30, 0, 0, time.UTC),
			StatusName:   models.ClaimStatusApproved.ToHuman(),
		},
	}

	t.Run(`rows follow header`, func(t *testing.T) {
		buf, err := impl{}.ExportClaimList(list)
		require.NoError(t, err)

		f, err := excelize.OpenReader(buf)
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows("Заявки")
		require.NoError(t, err)
		require.Len(t, rows, 3)
		require.Equal(t, claimHeaders[0], rows[0][0])
		require.Equal(t, "claim-1", rows[1][0])
		require.Equal(t, "Иван Петров", rows[2][1])
		require.Equal(t, "EUR", rows[2][4])
	})

	t.Run(`empty list has header only`, func(t *testing.T) {
		buf, err := impl{}.ExportClaimList(nil)
		require.NoError(t, err)

		f, err := excelize.OpenReader(buf)
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows("Заявки")
		require.NoError(t, err)
		require.Len(t, rows, 1)
	})
}
