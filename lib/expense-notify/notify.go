package expensenotify

import (
	"context"
	"expense-tools-backend/db"
	"expense-tools-backend/lib/smtp"
	messagetemplate "expense-tools-backend/lib/message-template"
	usersstore "expense-tools-backend/lib/users/store"
	"expense-tools-backend/models"
	dbmodels "expense-tools-backend/models/db"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Provider interface {
	// ClaimSubmitted письмо руководителю сотрудника о новой заявке
	ClaimSubmitted(ctx context.Context, claim dbmodels.ExpenseClaim) error
	// ClaimDecided письмо владельцу заявки о принятом решении
	ClaimDecided(ctx context.Context, claim dbmodels.ExpenseClaim) error
}

var Instance Provider

func NewHandler() {
	Instance = NewInstance(usersstore.NewInstance(db.DB), smtp.Instance)
}

func NewInstance(userStore usersstore.Provider, sender smtp.Provider) Provider {
	return impl{
		userStore: userStore,
		sender:    sender,
	}
}

type impl struct {
	userStore usersstore.Provider
	sender    smtp.Provider
}

func (i impl) ClaimSubmitted(ctx context.Context, claim dbmodels.ExpenseClaim) error {
	logger := log.WithField("claim_id", claim.ID).
		WithField("employee_id", claim.EmployeeID)
	owner, err := i.getUser(ctx, claim.EmployeeID)
	if err != nil {
		return err
	}
	if owner.ManagerID == nil || *owner.ManagerID == "" {
		logger.Info("руководитель сотрудника не указан, уведомление о заявке не отправлено")
		return nil
	}
	manager, err := i.getUser(ctx, *owner.ManagerID)
	if err != nil {
		return err
	}
	if !manager.IsActive || manager.Email == "" {
		logger.WithField("manager_id", manager.ID).Info("руководитель неактивен, уведомление о заявке не отправлено")
		return nil
	}
	data := templateData(claim)
	data.RecipientName = manager.GetFullName()
	data.EmployeeName = owner.GetFullName()
	msg, err := messagetemplate.BuildClaimSubmittedMsg(data)
	if err != nil {
		return err
	}
	return i.send(manager.Email, messagetemplate.GetClaimSubmittedTitle(), msg)
}

func (i impl) ClaimDecided(ctx context.Context, claim dbmodels.ExpenseClaim) error {
	owner, err := i.getUser(ctx, claim.EmployeeID)
	if err != nil {
		return err
	}
	if !owner.IsActive || owner.Email == "" {
		log.WithField("claim_id", claim.ID).Info("сотрудник неактивен, уведомление о решении не отправлено")
		return nil
	}
	data := templateData(claim)
	data.RecipientName = owner.GetFullName()
	data.EmployeeName = owner.GetFullName()
	msg, err := messagetemplate.BuildClaimDecidedMsg(data)
	if err != nil {
		return err
	}
	return i.send(owner.Email, messagetemplate.GetClaimDecidedTitle(), msg)
}

func (i impl) getUser(ctx context.Context, userID string) (*dbmodels.User, error) {
	rec, err := i.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errors.Errorf("пользователь %v не найден", userID)
	}
	return rec, nil
}

func (i impl) send(to, subject, msg string) error {
	if i.sender == nil {
		return errors.New("smtp клиент не инициализирован")
	}
	return i.sender.SendEMail(to, subject, msg)
}

func templateData(claim dbmodels.ExpenseClaim) models.NotifyTemplateData {
	return models.NotifyTemplateData{
		ClaimID:  claim.ID,
		Amount:   claim.Amount.StringFixed(2),
		Currency: claim.Currency,
		Category: claim.Category.ToHuman(),
		Status:   claim.Status.ToHuman(),
		Comment:  claim.DecisionComment,
	}
}
