package expensehandler

import (
	"context"
	expensereport "expense-tools-backend/lib/expense-report"
	expensehistorystore "expense-tools-backend/lib/expense/history-store"
	expensestore "expense-tools-backend/lib/expense/store"
	apperrors "expense-tools-backend/lib/utils/app-errors"
	"expense-tools-backend/lib/utils/testdb"
	"expense-tools-backend/models"
	expenseapimodels "expense-tools-backend/models/api/expense"
	dbmodels "expense-tools-backend/models/db"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	employee      = models.Actor{ID: "emp-1", Role: models.EmployeeRole}
	otherEmployee = models.Actor{ID: "emp-2", Role: models.EmployeeRole}
	manager       = models.Actor{ID: "mgr-1", Role: models.ManagerRole}
	admin         = models.Actor{ID: "adm-1", Role: models.AdminRole}

	fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
)

type fakeNotifier struct {
	mu        sync.Mutex
	submitted []string
	decided   []string
	err       error
}

func (f *fakeNotifier) ClaimSubmitted(ctx context.Context, claim dbmodels.ExpenseClaim) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, claim.ID)
	return f.err
}

func (f *fakeNotifier) ClaimDecided(ctx context.Context, claim dbmodels.ExpenseClaim) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decided = append(f.decided, claim.ID)
	return f.err
}

type fakeStorage struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (f *fakeStorage) UploadReceipt(ctx context.Context, key string, file models.File) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[key] = file.Body
	return nil
}

func (f *fakeStorage) GetReceipt(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.files[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return body, nil
}

type testEnv struct {
	handler  *impl
	db       *gorm.DB
	notifier *fakeNotifier
	storage  *fakeStorage
}

func newTestEnv(t *testing.T) testEnv {
	gormDB := testdb.New(t)
	notifier := &fakeNotifier{}
	storage := &fakeStorage{files: map[string][]byte{}}
	handler := NewInstance(gormDB, notifier, storage, time.UTC, ReceiptRules{
		MaxSize:           1024,
		AllowedExtensions: []string{"png", "jpg", "jpeg", "gif", "pdf"},
	}).(*impl)
	handler.now = func() time.Time { return fixedNow }
	return testEnv{
		handler:  handler,
		db:       gormDB,
		notifier: notifier,
		storage:  storage,
	}
}

func validForm() expenseapimodels.ClaimForm {
	return expenseapimodels.ClaimForm{
		Amount:      "150.00",
		Currency:    "USD",
		Category:    "Travel",
		Description: "Taxi",
		ExpenseDate: fixedNow.Format(expenseapimodels.DateLayout),
	}
}

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	require.True(t, errors.Is(err, apperrors.ErrValidation))
	vErr, ok := apperrors.AsValidation(err)
	require.True(t, ok)
	return vErr.FieldNames()
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run(`valid claim is pending`, func(t *testing.T) {
		env := newTestEnv(t)
		form := validForm()
		form.VendorName = "  City Cabs "
		id, err := env.handler.Submit(ctx, employee, form)
		require.NoError(t, err)
		require.NotEmpty(t, id)

		view, err := env.handler.Get(ctx, employee, id)
		require.NoError(t, err)
		require.Equal(t, models.ClaimStatusPending, view.Status)
		require.Equal(t, employee.ID, view.EmployeeID)
		require.Equal(t, "150.00", view.Amount)
		require.Equal(t, "City Cabs", view.VendorName)
		require.Nil(t, view.DecidedBy)
		require.Nil(t, view.DecidedAt)
		require.True(t, fixedNow.Equal(view.SubmittedAt))

		history, err := expensehistorystore.NewInstance(env.db).List(ctx, id)
		require.NoError(t, err)
		require.Len(t, history, 1)
		require.Equal(t, models.HistorySubmitted, history[0].Action)
		require.Equal(t, []string{id}, env.notifier.submitted)
	})

	t.Run(`normalizes category and currency`, func(t *testing.T) {
		env := newTestEnv(t)
		form := validForm()
		form.Category = " accommodation"
		form.Currency = "eur"
		id, err := env.handler.Submit(ctx, employee, form)
		require.NoError(t, err)

		view, err := env.handler.Get(ctx, employee, id)
		require.NoError(t, err)
		require.Equal(t, models.CategoryAccommodation, view.Category)
		require.Equal(t, "EUR", view.Currency)
	})

	t.Run(`negative amount persists nothing`, func(t *testing.T) {
		env := newTestEnv(t)
		form := validForm()
		form.Amount = "-5"
		_, err := env.handler.Submit(ctx, employee, form)
		require.Equal(t, []string{"amount"}, fieldsOf(t, err))

		report := expensereport.NewInstance(env.db, nil, env.storage, "")
		list, err := report.ListMine(ctx, employee)
		require.NoError(t, err)
		require.Empty(t, list)
		require.Empty(t, env.notifier.submitted)
	})

	t.Run(`every failing field is listed`, func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.handler.Submit(ctx, employee, expenseapimodels.ClaimForm{
			Amount:      "abc",
			Currency:    "US",
			Category:    "Fuel",
			ExpenseDate: "10.03.2024",
		})
		require.Equal(t, []string{"amount", "currency", "category", "expense_date"}, fieldsOf(t, err))

		_, err = env.handler.Submit(ctx, employee, expenseapimodels.ClaimForm{})
		require.Equal(t, []string{"amount", "currency", "category", "expense_date"}, fieldsOf(t, err))
	})

	t.Run(`zero amount`, func(t *testing.T) {
		env := newTestEnv(t)
		form := validForm()
		form.Amount = "0.00"
		_, err := env.handler.Submit(ctx, employee, form)
		require.Equal(t, []string{"amount"}, fieldsOf(t, err))
	})

	t.Run(`currency must be letters`, func(t *testing.T) {
		env := newTestEnv(t)
		form := validForm()
		form.Currency = "U5D"
		_, err := env.handler.Submit(ctx, employee, form)
		require.Equal(t, []string{"currency"}, fieldsOf(t, err))
	})

	t.Run(`expense date in the future`, func(t *testing.T) {
		env := newTestEnv(t)
		form := validForm()
		form.ExpenseDate = fixedNow.AddDate(0, 0, 1).Format(expenseapimodels.DateLayout)
		_, err := env.handler.Submit(ctx, employee, form)
		require.Equal(t, []string{"expense_date"}, fieldsOf(t, err))

		form.ExpenseDate = fixedNow.AddDate(0, 0, -30).Format(expenseapimodels.DateLayout)
		_, err = env.handler.Submit(ctx, employee, form)
		require.NoError(t, err)
	})

	t.Run(`today follows configured time zone`, func(t *testing.T) {
		env := newTestEnv(t)
		env.handler.location = time.FixedZone("UTC+10", 10*60*60)
		env.handler.now = func() time.Time { return time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC) }
		form := validForm()
		form.ExpenseDate = "2024-03-11"
		_, err := env.handler.Submit(ctx, employee, form)
		require.NoError(t, err)
	})

	t.Run(`vendor name too long`, func(t *testing.T) {
		env := newTestEnv(t)
		form := validForm()
		for i := 0; i <= vendorNameMaxLen; i++ {
			form.VendorName += "я"
		}
		_, err := env.handler.Submit(ctx, employee, form)
		require.Equal(t, []string{"vendor_name"}, fieldsOf(t, err))
	})

	t.Run(`notification failure does not fail submit`, func(t *testing.T) {
		env := newTestEnv(t)
		env.notifier.err = errors.New("smtp down")
		id, err := env.handler.Submit(ctx, employee, validForm())
		require.NoError(t, err)
		require.NotEmpty(t, id)
	})

	t.Run(`anonymous actor`, func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.handler.Submit(ctx, models.Actor{}, validForm())
		require.True(t, errors.Is(err, apperrors.ErrUnauthenticated))
	})
}

func TestDecide(t *testing.T) {
	ctx := context.Background()

	t.Run(`taxi scenario`, func(t *testing.T) {
		env := newTestEnv(t)
		id, err := env.handler.Submit(ctx, employee, validForm())
		require.NoError(t, err)

		view, err := env.handler.Decide(ctx, manager, id, models.OutcomeApprove, "")
		require.NoError(t, err)
		require.Equal(t, models.ClaimStatusApproved, view.Status)
		require.NotNil(t, view.DecidedBy)
		require.Equal(t, manager.ID, *view.DecidedBy)
		require.NotNil(t, view.DecidedAt)

		_, err = env.handler.Decide(ctx, employee, id, models.OutcomeApprove, "")
		require.True(t, errors.Is(err, apperrors.ErrForbidden))

		_, err = env.handler.Decide(ctx, manager, id, models.OutcomeApprove, "")
		require.True(t, errors.Is(err, apperrors.ErrAlreadyDecided))

		stored, err := env.handler.Get(ctx, employee, id)
		require.NoError(t, err)
		require.Equal(t, models.ClaimStatusApproved, stored.Status)
		require.Equal(t, []string{id}, env.notifier.decided)
	})

	t.Run(`reject keeps comment and history`, func(t *testing.T) {
		env := newTestEnv(t)
		id, err := env.handler.Submit(ctx, employee, validForm())
		require.NoError(t, err)

		view, err := env.handler.Decide(ctx, admin, id, models.OutcomeReject, " нет чека ")
		require.NoError(t, err)
		require.Equal(t, models.ClaimStatusRejected, view.Status)
		require.Equal(t, "нет чека", view.DecisionComment)

		_, err = env.handler.Decide(ctx, manager, id, models.OutcomeApprove, "")
		require.True(t, errors.Is(err, apperrors.ErrAlreadyDecided))

		history, err := expensehistorystore.NewInstance(env.db).List(ctx, id)
		require.NoError(t, err)
		require.Len(t, history, 2)
		require.Equal(t, models.HistoryRejected, history[1].Action)
		require.Equal(t, "нет чека", history[1].Comment)
	})

	t.Run(`no self approval`, func(t *testing.T) {
		env := newTestEnv(t)
		id, err := env.handler.Submit(ctx, manager, validForm())
		require.NoError(t, err)

		_, err = env.handler.Decide(ctx, manager, id, models.OutcomeApprove, "")
		require.True(t, errors.Is(err, apperrors.ErrForbidden))

		view, err := env.handler.Decide(ctx, admin, id, models.OutcomeApprove, "")
		require.NoError(t, err)
		require.Equal(t, models.ClaimStatusApproved, view.Status)
	})

	t.Run(`forbidden wins over already decided`, func(t *testing.T) {
		env := newTestEnv(t)
		id, err := env.handler.Submit(ctx, employee, validForm())
		require.NoError(t, err)
		_, err = env.handler.Decide(ctx, manager, id, models.OutcomeReject, "")
		require.NoError(t, err)

		_, err = env.handler.Decide(ctx, otherEmployee, id, models.OutcomeApprove, "")
		require.True(t, errors.Is(err, apperrors.ErrForbidden))
	})

	t.Run(`unknown claim`, func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.handler.Decide(ctx, manager, "missing", models.OutcomeApprove, "")
		require.True(t, errors.Is(err, apperrors.ErrNotFound))
	})

	t.Run(`unknown outcome`, func(t *testing.T) {
		env := newTestEnv(t)
		id, err := env.handler.Submit(ctx, employee, validForm())
		require.NoError(t, err)
		_, err = env.handler.Decide(ctx, manager, id, models.DecisionOutcome("MAYBE"), "")
		require.Equal(t, []string{"outcome"}, fieldsOf(t, err))
	})

	t.Run(`parallel decisions have one winner`, func(t *testing.T) {
		env := newTestEnv(t)
		id, err := env.handler.Submit(ctx, employee, validForm())
		require.NoError(t, err)

		const workers = 8
		results := make([]error, workers)
		wg := sync.WaitGroup{}
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				reviewer := manager
				outcome := models.OutcomeApprove
				if w%2 == 1 {
					reviewer = admin
					outcome = models.OutcomeReject
				}
				_, results[w] = env.handler.Decide(ctx, reviewer, id, outcome, "")
			}(w)
		}
		wg.Wait()

		winners, winner := 0, -1
		for w, err := range results {
			if err == nil {
				winners++
				winner = w
				continue
			}
			require.True(t, errors.Is(err, apperrors.ErrAlreadyDecided), err.Error())
		}
		require.Equal(t, 1, winners)

		rec, err := expensestore.NewInstance(env.db).GetByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, rec.DecidedBy)
		if winner%2 == 0 {
			require.Equal(t, models.ClaimStatusApproved, rec.Status)
			require.Equal(t, manager.ID, *rec.DecidedBy)
		} else {
			require.Equal(t, models.ClaimStatusRejected, rec.Status)
			require.Equal(t, admin.ID, *rec.DecidedBy)
		}

		history, err := expensehistorystore.NewInstance(env.db).List(ctx, id)
		require.NoError(t, err)
		require.Len(t, history, 2)
	})
}

// noTxPool соединение без поддержки транзакций, Transaction падает еще до первого запроса
type noTxPool struct {
	gorm.ConnPool
}

func TestTransactionFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	id, err := env.handler.Submit(ctx, employee, validForm())
	require.NoError(t, err)

	sqlDB, err := env.db.DB()
	require.NoError(t, err)
	failing := env.db.Session(&gorm.Session{NewDB: true, Context: ctx})
	failing.Statement.ConnPool = noTxPool{ConnPool: sqlDB}
	env.handler.db = failing

	t.Run(`submit`, func(t *testing.T) {
		_, err := env.handler.Submit(ctx, employee, validForm())
		require.True(t, errors.Is(err, apperrors.ErrPersistence), err.Error())
	})

	t.Run(`attach receipt`, func(t *testing.T) {
		err := env.handler.AttachReceipt(ctx, employee, id, models.File{FileName: "taxi.png", Body: []byte("png-body")})
		require.True(t, errors.Is(err, apperrors.ErrPersistence), err.Error())
	})

	t.Run(`decide`, func(t *testing.T) {
		_, err := env.handler.Decide(ctx, manager, id, models.OutcomeApprove, "")
		require.True(t, errors.Is(err, apperrors.ErrPersistence), err.Error())

		rec, err := expensestore.NewInstance(env.db).GetByID(ctx, id)
		require.NoError(t, err)
		require.Equal(t, models.ClaimStatusPending, rec.Status)
	})
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	id, err := env.handler.Submit(ctx, employee, validForm())
	require.NoError(t, err)

	t.Run(`visibility`, func(t *testing.T) {
		_, err := env.handler.Get(ctx, employee, id)
		require.NoError(t, err)
		_, err = env.handler.Get(ctx, manager, id)
		require.NoError(t, err)
		_, err = env.handler.Get(ctx, admin, id)
		require.NoError(t, err)
		_, err = env.handler.Get(ctx, otherEmployee, id)
		require.True(t, errors.Is(err, apperrors.ErrForbidden))
	})

	t.Run(`unknown claim`, func(t *testing.T) {
		_, err := env.handler.Get(ctx, employee, "missing")
		require.True(t, errors.Is(err, apperrors.ErrNotFound))
	})
}

func TestReceipt(t *testing.T) {
	ctx := context.Background()
	receipt := models.File{FileName: "taxi.PNG", Body: []byte("png-body")}

	t.Run(`owner attaches while pending`, func(t *testing.T) {
		env := newTestEnv(t)
		id, err := env.handler.Submit(ctx, employee, validForm())
		require.NoError(t, err)

		require.NoError(t, env.handler.AttachReceipt(ctx, employee, id, receipt))
		require.Len(t, env.storage.files, 1)

		view, err := env.handler.Get(ctx, employee, id)
		require.NoError(t, err)
		require.True(t, view.HasReceipt)
		require.Equal(t, "taxi.PNG", view.ReceiptName)

		file, err := env.handler.GetReceipt(ctx, manager, id)
		require.NoError(t, err)
		require.Equal(t, receipt.Body, file.Body)
		require.Equal(t, "image/png", file.ContentType)

		_, err = env.handler.GetReceipt(ctx, otherEmployee, id)
		require.True(t, errors.Is(err, apperrors.ErrForbidden))

		history, err := expensehistorystore.NewInstance(env.db).List(ctx, id)
		require.NoError(t, err)
		require.Len(t, history, 2)
		require.Equal(t, models.HistoryReceiptAttached, history[1].Action)
	})

	t.Run(`only owner can attach`, func(t *testing.T) {
		env := newTestEnv(t)
		id, err := env.handler.Submit(ctx, employee, validForm())
		require.NoError(t, err)
		err = env.handler.AttachReceipt(ctx, manager, id, receipt)
		require.True(t, errors.Is(err, apperrors.ErrForbidden))
		require.Empty(t, env.storage.files)
	})

	t.Run(`decided claim is closed`, func(t *testing.T) {
		env := newTestEnv(t)
		id, err := env.handler.Submit(ctx, employee, validForm())
		require.NoError(t, err)
		_, err = env.handler.Decide(ctx, manager, id, models.OutcomeApprove, "")
		require.NoError(t, err)

		err = env.handler.AttachReceipt(ctx, employee, id, receipt)
		require.True(t, errors.Is(err, apperrors.ErrAlreadyDecided))
	})

	t.Run(`file checks`, func(t *testing.T) {
		env := newTestEnv(t)
		id, err := env.handler.Submit(ctx, employee, validForm())
		require.NoError(t, err)

		err = env.handler.AttachReceipt(ctx, employee, id, models.File{FileName: "taxi.exe", Body: []byte("x")})
		require.Equal(t, []string{"file"}, fieldsOf(t, err))

		err = env.handler.AttachReceipt(ctx, employee, id, models.File{FileName: "taxi.png", Body: make([]byte, 2048)})
		require.Equal(t, []string{"file"}, fieldsOf(t, err))

		err = env.handler.AttachReceipt(ctx, employee, id, models.File{FileName: "taxi.png"})
		require.Equal(t, []string{"file"}, fieldsOf(t, err))
	})

	t.Run(`no receipt yet`, func(t *testing.T) {
		env := newTestEnv(t)
		id, err := env.handler.Submit(ctx, employee, validForm())
		require.NoError(t, err)
		_, err = env.handler.GetReceipt(ctx, employee, id)
		require.True(t, errors.Is(err, apperrors.ErrNotFound))
	})
}
