package usershandler

import (
	"context"
	"expense-tools-backend/db"
	usersstore "expense-tools-backend/lib/users/store"
	apperrors "expense-tools-backend/lib/utils/app-errors"
	authutils "expense-tools-backend/lib/utils/auth-utils"
	"expense-tools-backend/models"
	userapimodels "expense-tools-backend/models/api/user"
	dbmodels "expense-tools-backend/models/db"
	"strings"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Provider interface {
	Create(ctx context.Context, actor models.Actor, request userapimodels.CreateUser) (id string, err error)
	Update(ctx context.Context, actor models.Actor, userID string, request userapimodels.UpdateUser) error
	GetByID(ctx context.Context, actor models.Actor, userID string) (userapimodels.UserView, error)
	List(ctx context.Context, actor models.Actor, filter userapimodels.UserFilter) ([]userapimodels.UserView, int64, error)
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

func (i impl) Create(ctx context.Context, actor models.Actor, request userapimodels.CreateUser) (id string, err error) {
	if err = checkAdmin(actor); err != nil {
		return "", err
	}
	logger := log.WithField("email", request.Email).
		WithField("role", request.Role).
		WithField("actor_id", actor.ID)
	if err = request.Validate(); err != nil {
		return "", validationErr("user", err.Error())
	}
	exist, err := i.userStore.ExistByEmail(ctx, request.Email)
	if err != nil {
		logger.WithError(err).Error("ошибка проверки уже существующего пользователя")
		return "", err
	}
	if exist {
		return "", validationErr("email", "пользователь с такой почтой уже существует")
	}
	rec := dbmodels.User{
		Email:     request.Email,
		FirstName: strings.TrimSpace(request.FirstName),
		LastName:  strings.TrimSpace(request.LastName),
		Role:      request.Role,
		IsActive:  true,
	}
	if managerID := strings.TrimSpace(request.ManagerID); managerID != "" {
		if err = i.checkManager(ctx, "", managerID); err != nil {
			return "", err
		}
		rec.ManagerID = &managerID
	}
	rec.PasswordHash, err = authutils.HashPassword(request.Password)
	if err != nil {
		return "", err
	}
	id, err = i.userStore.Create(ctx, rec)
	if err != nil {
		logger.WithError(err).Error("ошибка создания пользователя")
		return "", err
	}
	logger.WithField("user_id", id).Info("пользователь создан")
	return id, nil
}

func (i impl) Update(ctx context.Context, actor models.Actor, userID string, request userapimodels.UpdateUser) error {
	if err := checkAdmin(actor); err != nil {
		return err
	}
	logger := log.WithField("user_id", userID).
		WithField("actor_id", actor.ID)
	if err := request.Validate(); err != nil {
		return validationErr("user", err.Error())
	}
	rec, err := i.getUser(ctx, userID)
	if err != nil {
		return err
	}
	updMap := map[string]interface{}{}
	if request.FirstName != nil {
		updMap["first_name"] = strings.TrimSpace(*request.FirstName)
	}
	if request.LastName != nil {
		updMap["last_name"] = strings.TrimSpace(*request.LastName)
	}
	if request.Role != nil && *request.Role != rec.Role {
		if userID == actor.ID {
			return validationErr("role", "нельзя изменить собственную роль")
		}
		updMap["role"] = *request.Role
	}
	if request.IsActive != nil && *request.IsActive != rec.IsActive {
		if userID == actor.ID {
			return validationErr("is_active", "нельзя отключить собственную учетную запись")
		}
		updMap["is_active"] = *request.IsActive
	}
	if request.ManagerID != nil {
		managerID := strings.TrimSpace(*request.ManagerID)
		if managerID == "" {
			updMap["manager_id"] = nil
		} else {
			if err = i.checkManager(ctx, userID, managerID); err != nil {
				return err
			}
			updMap["manager_id"] = managerID
		}
	}
	if request.Password != "" {
		updMap["password_hash"], err = authutils.HashPassword(request.Password)
		if err != nil {
			return err
		}
	}
	if len(updMap) == 0 {
		return nil
	}
	err = i.userStore.Update(ctx, userID, updMap)
	if err != nil {
		logger.WithError(err).Error("ошибка обновления пользователя")
		return err
	}
	logger.Info("пользователь обновлен")
	return nil
}

func (i impl) GetByID(ctx context.Context, actor models.Actor, userID string) (userapimodels.UserView, error) {
	if actor.ID != userID {
		if err := checkAdmin(actor); err != nil {
			return userapimodels.UserView{}, err
		}
	}
	rec, err := i.getUser(ctx, userID)
	if err != nil {
		return userapimodels.UserView{}, err
	}
	return userapimodels.Convert(*rec), nil
}

func (i impl) List(ctx context.Context, actor models.Actor, filter userapimodels.UserFilter) ([]userapimodels.UserView, int64, error) {
	if err := checkAdmin(actor); err != nil {
		return nil, 0, err
	}
	storeFilter := usersstore.UserFilter{
		Role:   filter.Role,
		Search: strings.TrimSpace(filter.Search),
	}
	rowCount, err := i.userStore.Count(ctx, storeFilter)
	if err != nil {
		return nil, 0, err
	}
	page, limit := filter.GetPage()
	if int64((page-1)*limit) >= rowCount {
		return []userapimodels.UserView{}, rowCount, nil
	}
	list, err := i.userStore.GetList(ctx, storeFilter, page, limit)
	if err != nil {
		log.WithError(err).Error("ошибка получения списка пользователей")
		return nil, 0, err
	}
	result := make([]userapimodels.UserView, 0, len(list))
	for _, rec := range list {
		result = append(result, userapimodels.Convert(rec))
	}
	return result, rowCount, nil
}

func (i impl) getUser(ctx context.Context, userID string) (*dbmodels.User, error) {
	rec, err := i.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperrors.NotFound("пользователь %v не найден", userID)
	}
	return rec, nil
}

// checkManager руководителем может быть только активный MANAGER или ADMIN, не сам пользователь
func (i impl) checkManager(ctx context.Context, userID, managerID string) error {
	if managerID == userID {
		return validationErr("manager_id", "пользователь не может быть руководителем сам себе")
	}
	manager, err := i.userStore.GetByID(ctx, managerID)
	if err != nil {
		return err
	}
	if manager == nil || !manager.IsActive || !manager.Role.IsReviewer() {
		return validationErr("manager_id", "руководитель не найден")
	}
	return nil
}

func checkAdmin(actor models.Actor) error {
	if actor.IsEmpty() {
		return apperrors.Unauthenticated("пользователь не определен")
	}
	if !actor.Role.IsAdmin() {
		return apperrors.Forbidden("управление пользователями доступно только администратору")
	}
	return nil
}

func validationErr(field, message string) error {
	vErr := &apperrors.ValidationError{}
	vErr.Add(field, message)
	return vErr
}

// EnsureAdmin создает администратора из настроек, если пользователя с такой почтой еще нет
func EnsureAdmin(ctx context.Context, DB *gorm.DB, email, password, firstName, lastName string) error {
	if email == "" {
		log.Warn("администратор не добавлен, отсутствует настройка ADMIN_EMAIL")
		return nil
	}
	userStore := usersstore.NewInstance(DB)
	existedRec, err := userStore.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existedRec != nil {
		return nil
	}
	passwordHash, err := authutils.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = userStore.Create(ctx, dbmodels.User{
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         models.AdminRole,
		IsActive:     true,
	})
	if err != nil {
		return err
	}
	log.WithField("email", email).Info("администратор добавлен")
	return nil
}
