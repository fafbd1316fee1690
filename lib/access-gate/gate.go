package accessgate

import (
	apperrors "expense-tools-backend/lib/utils/app-errors"
	"expense-tools-backend/models"
	dbmodels "expense-tools-backend/models/db"
)

// CanView владелец видит свою заявку, руководитель и администратор видят все
func CanView(actor models.Actor, claim dbmodels.ExpenseClaim) bool {
	if actor.IsEmpty() {
		return false
	}
	return claim.IsOwner(actor.ID) || actor.Role.IsReviewer()
}

// CanReview доступ к спискам на согласование
func CanReview(actor models.Actor) bool {
	return !actor.IsEmpty() && actor.Role.IsReviewer()
}

func CanDecide(actor models.Actor, claim dbmodels.ExpenseClaim) bool {
	return CheckDecide(actor, claim) == nil
}

// CheckDecide запрет по роли и по авторству важнее, чем уже принятое решение
func CheckDecide(actor models.Actor, claim dbmodels.ExpenseClaim) error {
	if !CanReview(actor) {
		return apperrors.Forbidden("роль %v не может согласовывать заявки", actor.Role)
	}
	if claim.IsOwner(actor.ID) {
		return apperrors.Forbidden("нельзя согласовать собственную заявку")
	}
	if !claim.Status.AllowDecision() {
		return apperrors.AlreadyDecided("заявка в статусе %v", claim.Status.ToHuman())
	}
	return nil
}

// CanEdit изменять заявку (прикладывать чек) может только владелец, пока заявка на согласовании
func CanEdit(actor models.Actor, claim dbmodels.ExpenseClaim) error {
	if actor.IsEmpty() || !claim.IsOwner(actor.ID) {
		return apperrors.Forbidden("изменять заявку может только ее автор")
	}
	if !claim.Status.AllowDecision() {
		return apperrors.AlreadyDecided("заявка в статусе %v", claim.Status.ToHuman())
	}
	return nil
}
