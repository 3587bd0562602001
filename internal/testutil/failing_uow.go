package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/alexanderramin/derby/internal/db"
)

// FailingUoW runs transactions against DB and injects Err on the FailOn-th
// write whose SQL contains Match (every write when Match is empty). Writes
// are counted from 1 per transaction. Reads pass through.
type FailingUoW struct {
	DB     *sql.DB
	Match  string
	FailOn int
	Err    error

	mu     sync.Mutex
	writes []string
}

func (u *FailingUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	wrapped := &failingTx{DBTX: tx, uow: u}
	if fnErr := fn(ctx, wrapped); fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	return tx.Commit()
}

// Writes returns the first keyword of every write attempted so far, e.g.
// "INSERT" or "UPDATE", including the one that failed.
func (u *FailingUoW) Writes() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.writes...)
}

type failingTx struct {
	db.DBTX
	uow     *FailingUoW
	matched int
}

func (f *failingTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.uow.mu.Lock()
	f.uow.writes = append(f.uow.writes, firstWord(query))
	f.uow.mu.Unlock()

	if f.uow.Match == "" || strings.Contains(query, f.uow.Match) {
		f.matched++
		if f.matched == f.uow.FailOn {
			return nil, f.uow.Err
		}
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}

func firstWord(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}
