package pdfexport

import (
	"bytes"
	"expense-tools-backend/models"
	expenseapimodels "expense-tools-backend/models/api/expense"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
)

const (
	fontFamily  = "Arial"
	fontRegular = "Arial.ttf"
	fontBold    = "Arial Bold.ttf"
)

type ClaimReportData struct {
	Claim   expenseapimodels.ClaimView
	History []expenseapimodels.HistoryView
	Receipt *models.File
}

// GenerateClaimReport карточка заявки с историей и изображением чека.
// Без ttf шрифтов в fontDir используется встроенный Helvetica (только латиница).
func GenerateClaimReport(fontDir string, data ClaimReportData) (pdfFile []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("GenerateClaimReport panic recover: %v", r)
		}
	}()
	pdf := fpdf.New("P", "mm", "A4", fontDir)
	family, tr := setupFont(pdf, fontDir)
	pdf.AddPage()
	if pdf.Error() != nil {
		return nil, pdf.Error()
	}

	pdf.SetFont(family, "B", 16)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("Expense claim %s", data.Claim.ID)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont(family, "", 11)
	claim := data.Claim
	rows := [][2]string{
		{"Employee", claim.EmployeeName},
		{"Amount", fmt.Sprintf("%s %s", claim.Amount, claim.Currency)},
		{"Category", string(claim.Category)},
		{"Expense date", claim.ExpenseDate},
		{"Vendor", claim.VendorName},
		{"Description", claim.Description},
		{"Submitted at", claim.SubmittedAt.Format("2006-01-02 15:04")},
		{"Status", string(claim.Status)},
	}
	if claim.DecidedAt != nil {
		rows = append(rows,
			[2]string{"Decided by", claim.DecidedByName},
			[2]string{"Decided at", claim.DecidedAt.Format("2006-01-02 15:04")},
			[2]string{"Comment", claim.DecisionComment},
		)
	}
	for _, row := range rows {
		pdf.SetFont(family, "B", 11)
		pdf.CellFormat(45, 7, tr(row[0]), "", 0, "L", false, 0, "")
		pdf.SetFont(family, "", 11)
		pdf.MultiCell(0, 7, tr(row[1]), "", "L", false)
	}

	if len(data.History) != 0 {
		pdf.Ln(4)
		pdf.SetFont(family, "B", 13)
		pdf.CellFormat(0, 9, tr("History"), "", 1, "L", false, 0, "")
		pdf.SetFont(family, "", 10)
		for _, item := range data.History {
			line := fmt.Sprintf("%s  %s  %s", item.CreatedAt.Format("2006-01-02 15:04"), item.Action, item.ActorName)
			if item.Comment != "" {
				line += "  " + item.Comment
			}
			pdf.MultiCell(0, 6, tr(line), "", "L", false)
		}
	}

	if data.Receipt != nil && isImage(data.Receipt.FileName) {
		if err = putImg(pdf, data.Receipt); err != nil {
			return nil, err
		}
		pdf.Ln(4)
		pdf.Image(data.Receipt.FileName, pdf.GetX(), pdf.GetY(), 80, 0, false, "", 0, "")
	}

	buf := new(bytes.Buffer)
	err = pdf.Output(buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setupFont(pdf *fpdf.Fpdf, fontDir string) (family string, tr func(string) string) {
	if fontDir != "" && fileExists(filepath.Join(fontDir, fontRegular)) && fileExists(filepath.Join(fontDir, fontBold)) {
		pdf.AddUTF8Font(fontFamily, "", fontRegular)
		pdf.AddUTF8Font(fontFamily, "B", fontBold)
		return fontFamily, func(s string) string { return s }
	}
	return "Helvetica", pdf.UnicodeTranslatorFromDescriptor("")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func putImg(pdf *fpdf.Fpdf, fileData *models.File) (err error) {
	options := fpdf.ImageOptions{
		ReadDpi: false,
	}
	options.ImageType, err = GetImgType(fileData.FileName)
	if err != nil {
		return err
	}
	reader := bytes.NewReader(fileData.Body)
	pdf.RegisterImageOptionsReader(fileData.FileName, options, reader)
	return pdf.Error()
}

func isImage(fileName string) bool {
	imgType, err := GetImgType(fileName)
	if err != nil {
		return false
	}
	switch imgType {
	case "png", "jpg", "jpeg", "gif":
		return true
	}
	return false
}

func GetImgType(fileName string) (string, error) {
	pos := strings.LastIndex(fileName, ".")
	if pos < 0 {
		return "", errors.Errorf("не удалось получить расширение файла: %s", fileName)
	}
	return strings.ToLower(fileName[pos+1:]), nil
}
