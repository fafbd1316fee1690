package xlsexport

import "github.com/xuri/excelize/v2"

const fontFamily = "Arial"

func writeCell(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}

func setRangeStyle(f *excelize.File, sheet string, colFrom, rowFrom, colTo, rowTo int, style *excelize.Style) error {
	styleID, err := f.NewStyle(style)
	if err != nil {
		return err
	}
	cellFirst, err := excelize.CoordinatesToCellName(colFrom, rowFrom)
	if err != nil {
		return err
	}
	cellLast, err := excelize.CoordinatesToCellName(colTo, rowTo)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, cellFirst, cellLast, styleID)
}

// writeHeader пишет заголовок в следующую строку и возвращает ее номер
func writeHeader(f *excelize.File, sheet string, row int, headers []string) (int, error) {
	row++
	err := setRangeStyle(f, sheet, 1, row, len(headers), row, &excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Font:      &excelize.Font{Bold: true, Family: fontFamily, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return row, err
	}
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return row, err
	}
	if err = f.SetColWidth(sheet, "A", lastCol, 22); err != nil {
		return row, err
	}
	for idx, value := range headers {
		if err = writeCell(f, sheet, idx+1, row, value); err != nil {
			return row, err
		}
	}
	topLeft, err := excelize.CoordinatesToCellName(1, row+1)
	if err != nil {
		return row, err
	}
	return row, f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      row,
		TopLeftCell: topLeft,
		ActivePane:  "bottomLeft",
	})
}

func applyDataStyle(f *excelize.File, sheet string, colFrom, rowFrom, colTo, rowTo int) error {
	return setRangeStyle(f, sheet, colFrom, rowFrom, colTo, rowTo, &excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center", WrapText: true},
		Font:      &excelize.Font{Family: fontFamily, Size: 11},
	})
}

// applyAmountStyle числовой формат с двумя знаками для колонки сумм
func applyAmountStyle(f *excelize.File, sheet string, col, rowFrom, rowTo int) error {
	numFmt := "#,##0.00"
	return setRangeStyle(f, sheet, col, rowFrom, col, rowTo, &excelize.Style{
		Alignment:    &excelize.Alignment{Horizontal: "right", Vertical: "center"},
		Font:         &excelize.Font{Family: fontFamily, Size: 11},
		CustomNumFmt: &numFmt,
	})
}
