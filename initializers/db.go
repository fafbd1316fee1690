package initializers

import (
	"context"
	"expense-tools-backend/config"
	"expense-tools-backend/db"
	usershandler "expense-tools-backend/lib/users"
)

func InitDBConnection(ctx context.Context) {
	err := db.Connect(config.Conf.Database.Host, config.Conf.Database.Port, config.Conf.Database.Name,
		config.Conf.Database.User, config.Conf.Database.Password, *config.Conf.Database.DebugMode, *config.Conf.Database.MigrateOnStart)
	if err != nil {
		panic(err.Error())
	}

	err = usershandler.EnsureAdmin(ctx, db.DB, config.Conf.Admin.Email, config.Conf.Admin.Password,
		config.Conf.Admin.FirstName, config.Conf.Admin.LastName)
	if err != nil {
		panic(err.Error())
	}
}
