package xlsexport

import (
	"bytes"
	expenseapimodels "expense-tools-backend/models/api/expense"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

type Provider interface {
	ExportClaimList(list []expenseapimodels.ClaimView) (*bytes.Buffer, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{}
}

type impl struct{}

const amountCol = 4

var claimHeaders = []string{"Номер", "Сотрудник", "Дата расхода", "Сумма", "Валюта", "Категория", "Поставщик", "Описание", "Подана", "Статус", "Решение принял", "Комментарий"}

func (i impl) ExportClaimList(list []expenseapimodels.ClaimView) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Error("ошибка закрытия файла")
		}
	}()
	sheet := "Sheet1"
	row := 0
	row, err := writeHeader(f, sheet, row, claimHeaders)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка формирования заголовка в xlsx")
	}
	if len(list) != 0 {
		row, err = writeClaimData(f, sheet, list, row)
		if err != nil {
			return nil, errors.Wrap(err, "ошибка формирования таблицы с данными в xlsx")
		}
	}
	if err = f.SetSheetName(sheet, "Заявки"); err != nil {
		return nil, errors.Wrap(err, "ошибка переименования листа в xlsx")
	}
	return f.WriteToBuffer()
}

func writeClaimData(f *excelize.File, sheet string, list []expenseapimodels.ClaimView, row int) (int, error) {
	firstRow := row + 1
	lastRow := row + len(list)
	if err := applyDataStyle(f, sheet, 1, firstRow, len(claimHeaders), lastRow); err != nil {
		return row, err
	}
	if err := applyAmountStyle(f, sheet, amountCol, firstRow, lastRow); err != nil {
		return row, err
	}
	for _, item := range list {
		row++
		values := []interface{}{
			item.ID,
			item.EmployeeName,
			item.ExpenseDate,
			amountValue(item.Amount),
			item.Currency,
			item.CategoryName,
			item.VendorName,
			item.Description,
			item.SubmittedAt.Format("02.01.2006 15:04"),
			item.StatusName,
			item.DecidedByName,
			item.DecisionComment,
		}
		for idx, value := range values {
			if err := writeCell(f, sheet, idx+1, row, value); err != nil {
				return row, err
			}
		}
	}
	return row, nil
}

// amountValue число для ячейки, чтобы работали формулы; при ошибке остается строка
func amountValue(amount string) interface{} {
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return amount
	}
	result, _ := value.Float64()
	return result
}
