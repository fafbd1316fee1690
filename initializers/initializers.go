package initializers

import (
	"context"
	"expense-tools-backend/config"
	"expense-tools-backend/fiberlog"
	authhandler "expense-tools-backend/lib/auth"
	expensehandler "expense-tools-backend/lib/expense"
	expensenotify "expense-tools-backend/lib/expense-notify"
	expensereport "expense-tools-backend/lib/expense-report"
	xlsexport "expense-tools-backend/lib/export/xls"
	"expense-tools-backend/lib/rbac"
	usershandler "expense-tools-backend/lib/users"
)

var LoggerConfig *fiberlog.Config

func InitAllServices(ctx context.Context) {
	LoggerConfig = InitLogger()
	config.InitConfig()
	InitDBConnection(ctx)
	InitS3()
	InitSmtp()
	rbac.NewHandler()
	xlsexport.NewHandler()
	expensenotify.NewHandler()
	expensehandler.NewHandler()
	expensereport.NewHandler()
	usershandler.NewHandler()
	authhandler.NewHandler()
}
