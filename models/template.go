package models

// NotifyTemplateData данные для писем по заявкам
type NotifyTemplateData struct {
	RecipientName string
	EmployeeName  string
	ClaimID       string
	Amount        string
	Currency      string
	Category      string
	Status        string
	Comment       string
}

type File struct {
	FileName    string
	ContentType string
	Body        []byte
}
