package authhandler

import (
	"context"
	"expense-tools-backend/config"
	"expense-tools-backend/db"
	usersstore "expense-tools-backend/lib/users/store"
	apperrors "expense-tools-backend/lib/utils/app-errors"
	authutils "expense-tools-backend/lib/utils/auth-utils"
	"expense-tools-backend/models"
	authapimodels "expense-tools-backend/models/api/auth"
	userapimodels "expense-tools-backend/models/api/user"
	dbmodels "expense-tools-backend/models/db"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Provider interface {
	Login(ctx context.Context, email, password string) (authapimodels.JWTResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (authapimodels.JWTResponse, error)
	Me(ctx context.Context, actor models.Actor) (userapimodels.UserView, error)
}

var Instance Provider

func NewHandler() {
	Instance = NewInstance(db.DB)
}

func NewInstance(DB *gorm.DB) Provider {
	return impl{
		userStore: usersstore.NewInstance(DB),
	}
}

type impl struct {
	userStore usersstore.Provider
}

func (i impl) Login(ctx context.Context, email, password string) (authapimodels.JWTResponse, error) {
	logger := log.WithField("email", email)
	rec, err := i.userStore.FindByEmail(ctx, email)
	if err != nil {
		logger.WithError(err).Error("ошибка поиска пользователя")
		return authapimodels.JWTResponse{}, err
	}
	if rec == nil || !rec.IsActive || !authutils.CheckPassword(rec.PasswordHash, password) {
		logger.Info("неудачная попытка входа")
		return authapimodels.JWTResponse{}, apperrors.Unauthenticated("неверная почта или пароль")
	}
	err = i.userStore.Update(ctx, rec.ID, map[string]interface{}{"last_login": time.Now().UTC()})
	if err != nil {
		logger.WithError(err).Warn("не удалось сохранить дату входа")
	}
	return issueTokens(*rec)
}

func (i impl) RefreshToken(ctx context.Context, refreshToken string) (authapimodels.JWTResponse, error) {
	userID, err := authutils.ParseRefreshToken(refreshToken)
	if err != nil {
		return authapimodels.JWTResponse{}, err
	}
	rec, err := i.userStore.GetByID(ctx, userID)
	if err != nil {
		return authapimodels.JWTResponse{}, err
	}
	if rec == nil || !rec.IsActive {
		return authapimodels.JWTResponse{}, apperrors.Unauthenticated("пользователь %v не найден или отключен", userID)
	}
	return issueTokens(*rec)
}

func (i impl) Me(ctx context.Context, actor models.Actor) (userapimodels.UserView, error) {
	if actor.IsEmpty() {
		return userapimodels.UserView{}, apperrors.Unauthenticated("пользователь не определен")
	}
	rec, err := i.userStore.GetByID(ctx, actor.ID)
	if err != nil {
		return userapimodels.UserView{}, err
	}
	if rec == nil || !rec.IsActive {
		return userapimodels.UserView{}, apperrors.Unauthenticated("пользователь %v не найден или отключен", actor.ID)
	}
	return userapimodels.Convert(*rec), nil
}

func issueTokens(rec dbmodels.User) (authapimodels.JWTResponse, error) {
	token, err := authutils.GetToken(rec.ID, rec.GetFullName(), rec.Role)
	if err != nil {
		return authapimodels.JWTResponse{}, err
	}
	refreshToken, err := authutils.GetRefreshToken(rec.ID, rec.GetFullName())
	if err != nil {
		return authapimodels.JWTResponse{}, err
	}
	return authapimodels.JWTResponse{
		Token:        token,
		RefreshToken: refreshToken,
		ExpiresIn:    config.Conf.Auth.JWTExpireInSec,
	}, nil
}
