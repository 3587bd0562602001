package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFakeBusy = errors.New("database is locked")

func TestWithinTx_RetriesRetryableErrors(t *testing.T) {
	database, err := OpenDB(Config{Path: MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	uow := NewSQLiteUnitOfWork(database)
	uow.Backoff = 0
	uow.retryable = func(err error) bool { return errors.Is(err, errFakeBusy) }

	attempts := 0
	err = uow.WithinTx(context.Background(), func(ctx context.Context, tx DBTX) error {
		attempts++
		if _, err := tx.ExecContext(ctx, `INSERT INTO settings (key, value) VALUES (?, ?)`, "k", "v"); err != nil {
			return err
		}
		if attempts < 3 {
			return errFakeBusy
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts, "earlier attempts were rolled back, so the insert never conflicts")
}

func TestWithinTx_GivesUpAfterRetries(t *testing.T) {
	database, err := OpenDB(Config{Path: MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	uow := NewSQLiteUnitOfWork(database)
	uow.Backoff = 0
	uow.Retries = 2
	uow.retryable = func(err error) bool { return errors.Is(err, errFakeBusy) }

	attempts := 0
	err = uow.WithinTx(context.Background(), func(ctx context.Context, tx DBTX) error {
		attempts++
		return errFakeBusy
	})
	assert.ErrorIs(t, err, errFakeBusy)
	assert.Equal(t, 3, attempts)
}

func TestIsBusy_IgnoresOtherErrors(t *testing.T) {
	assert.False(t, IsBusy(nil))
	assert.False(t, IsBusy(errFakeBusy))
}
