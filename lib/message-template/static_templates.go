package messagetemplate

import (
	"bytes"
	"embed"
	"expense-tools-backend/models"
	"text/template"

	"github.com/pkg/errors"
)

const (
	claimSubmittedTitle = "Новая заявка на возмещение расходов"
	claimDecidedTitle   = "Решение по заявке на возмещение расходов"
)

//go:embed static/*.txt
var staticFS embed.FS

func BuildClaimSubmittedMsg(data models.NotifyTemplateData) (string, error) {
	return execute("static/claim_submitted.txt", data)
}

func GetClaimSubmittedTitle() string {
	return claimSubmittedTitle
}

func BuildClaimDecidedMsg(data models.NotifyTemplateData) (string, error) {
	return execute("static/claim_decided.txt", data)
}

func GetClaimDecidedTitle() string {
	return claimDecidedTitle
}

func execute(filePath string, data models.NotifyTemplateData) (string, error) {
	tpl, err := getTemplate(filePath)
	if err != nil {
		return "", err
	}
	buf := new(bytes.Buffer)
	err = tpl.Execute(buf, data)
	if err != nil {
		return "", errors.Wrapf(err, "ошибка заполнения шаблона %v", filePath)
	}
	return buf.String(), nil
}

func getTemplate(filePath string) (*template.Template, error) {
	tmplBody, err := staticFS.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка чтения файла шаблона %v", filePath)
	}
	tpl, err := template.New("msg_body").Parse(string(tmplBody))
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка разбора шаблона %v", filePath)
	}
	return tpl, nil
}
