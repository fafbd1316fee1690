package models

import "strings"

type ClaimStatus string

const (
	ClaimStatusPending  ClaimStatus = "PENDING"
	ClaimStatusApproved ClaimStatus = "APPROVED"
	ClaimStatusRejected ClaimStatus = "REJECTED"
)

var claimStatusHumanName = map[ClaimStatus]string{
	ClaimStatusPending:  "На согласовании",
	ClaimStatusApproved: "Согласована",
	ClaimStatusRejected: "Отклонена",
}

func (s ClaimStatus) ToHuman() string {
	if human, exist := claimStatusHumanName[s]; exist {
		return human
	}
	return string(s)
}

func (s ClaimStatus) IsValid() bool {
	_, ok := claimStatusHumanName[s]
	return ok
}

// AllowDecision решение принимается только по заявке на согласовании, APPROVED и REJECTED конечные
func (s ClaimStatus) AllowDecision() bool {
	return s == ClaimStatusPending
}

type ExpenseCategory string

const (
	CategoryTravel        ExpenseCategory = "Travel"
	CategoryFood          ExpenseCategory = "Food"
	CategoryAccommodation ExpenseCategory = "Accommodation"
	CategoryOther         ExpenseCategory = "Other"
)

var ExpenseCategories = []ExpenseCategory{CategoryTravel, CategoryFood, CategoryAccommodation, CategoryOther}

var categoryHumanName = map[ExpenseCategory]string{
	CategoryTravel:        "Проезд",
	CategoryFood:          "Питание",
	CategoryAccommodation: "Проживание",
	CategoryOther:         "Прочее",
}

func (c ExpenseCategory) ToHuman() string {
	if human, exist := categoryHumanName[c]; exist {
		return human
	}
	return string(c)
}

func (c ExpenseCategory) IsValid() bool {
	_, ok := categoryHumanName[c]
	return ok
}

// ParseExpenseCategory без учета регистра, возвращает каноническое значение
func ParseExpenseCategory(value string) (ExpenseCategory, bool) {
	value = strings.TrimSpace(value)
	for _, category := range ExpenseCategories {
		if strings.EqualFold(string(category), value) {
			return category, true
		}
	}
	return "", false
}

type DecisionOutcome string

const (
	OutcomeApprove DecisionOutcome = "APPROVE"
	OutcomeReject  DecisionOutcome = "REJECT"
)

// Status статус заявки после решения
func (o DecisionOutcome) Status() (ClaimStatus, bool) {
	switch o {
	case OutcomeApprove:
		return ClaimStatusApproved, true
	case OutcomeReject:
		return ClaimStatusRejected, true
	}
	return "", false
}

type HistoryAction string

const (
	HistorySubmitted       HistoryAction = "SUBMITTED"
	HistoryReceiptAttached HistoryAction = "RECEIPT_ATTACHED"
	HistoryApproved        HistoryAction = "APPROVED"
	HistoryRejected        HistoryAction = "REJECTED"
)

var historyActionHumanName = map[HistoryAction]string{
	HistorySubmitted:       "Заявка подана",
	HistoryReceiptAttached: "Приложен чек",
	HistoryApproved:        "Согласовано",
	HistoryRejected:        "Отклонено",
}

func (a HistoryAction) ToHuman() string {
	if human, exist := historyActionHumanName[a]; exist {
		return human
	}
	return string(a)
}

func HistoryActionByStatus(status ClaimStatus) HistoryAction {
	if status == ClaimStatusRejected {
		return HistoryRejected
	}
	return HistoryApproved
}
