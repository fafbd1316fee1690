package apperrors

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestAppErrors(t *testing.T) {
	t.Run(`kinds survive wrapping`, func(t *testing.T) {
		err := errors.Wrap(NotFound("заявка %v", "id-1"), "получение заявки")
		require.True(t, errors.Is(err, ErrNotFound))
		require.False(t, errors.Is(err, ErrForbidden))

		err = errors.Wrap(AlreadyDecided("заявка %v", "id-1"), "согласование")
		require.True(t, errors.Is(err, ErrAlreadyDecided))
	})

	t.Run(`validation error lists fields`, func(t *testing.T) {
		vErr := &ValidationError{}
		require.Nil(t, vErr.Err())
		vErr.Add("amount", "должна быть больше нуля")
		vErr.Add("category", "неизвестная категория")

		err := errors.Wrap(vErr.Err(), "подача заявки")
		require.True(t, errors.Is(err, ErrValidation))
		extracted, ok := AsValidation(err)
		require.True(t, ok)
		require.Equal(t, []string{"amount", "category"}, extracted.FieldNames())
		require.Contains(t, err.Error(), "amount")
	})

	t.Run(`persistence keeps cause`, func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Persistence(cause)
		require.True(t, errors.Is(err, ErrPersistence))
		require.True(t, errors.Is(err, cause))
		require.Nil(t, Persistence(nil))
		require.Equal(t, err, Persistence(err))
	})

	t.Run(`unkinded errors become persistence`, func(t *testing.T) {
		require.Nil(t, Classify(nil))

		raw := errors.New("sql: database is closed")
		require.False(t, HasKind(raw))
		err := Classify(raw)
		require.True(t, errors.Is(err, ErrPersistence))
		require.True(t, errors.Is(err, raw))

		decided := AlreadyDecided("заявка %v", "id-1")
		require.True(t, HasKind(decided))
		require.Equal(t, decided, Classify(decided))
		require.False(t, errors.Is(Classify(decided), ErrPersistence))

		vErr := &ValidationError{}
		vErr.Add("amount", "должна быть больше нуля")
		require.True(t, errors.Is(Classify(vErr), ErrValidation))
	})
}
