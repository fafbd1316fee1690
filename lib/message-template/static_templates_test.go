package messagetemplate

import (
	"expense-tools-backend/models"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStaticTemplates(t *testing.T) {
	data := models.NotifyTemplateData{
		RecipientName: "Иван Петров",
		EmployeeName:  "Анна Смирнова",
		ClaimID:       "claim-1",
		Amount:        "12.50",
		Currency:      "USD",
		Category:      "Проезд",
		Status:        "Отклонена",
	}

	t.Run(`claim submitted`, func(t *testing.T) {
		msg, err := BuildClaimSubmittedMsg(data)
		require.NoError(t, err)
		require.Contains(t, msg, "Иван Петров")
		require.Contains(t, msg, "Анна Смирнова")
		require.Contains(t, msg, "12.50 USD")
	})

	t.Run(`claim decided without comment`, func(t *testing.T) {
		msg, err := BuildClaimDecidedMsg(data)
		require.NoError(t, err)
		require.Contains(t, msg, "claim-1")
		require.Contains(t, msg, "Отклонена")
		require.NotContains(t, msg, "Комментарий")
	})

	t.Run(`claim decided with comment`, func(t *testing.T) {
		data.Comment = "нет чека"
		msg, err := BuildClaimDecidedMsg(data)
		require.NoError(t, err)
		require.Contains(t, msg, "Комментарий: нет чека")
	})
}
