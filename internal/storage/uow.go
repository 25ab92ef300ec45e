package storage

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
)

// ErrTxDone is returned when a finished transaction is committed again.
var ErrTxDone = errors.New("transaction has already been committed or rolled back")

// UnitOfWork hands out database scopes to services. A Tx groups several
// reads and writes so they commit or roll back as one; SingleExec is for
// standalone statements that need no grouping.
type UnitOfWork interface {
	Begin(ctx context.Context) (Tx, error)
	SingleExec(ctx context.Context) *gorm.DB
}

// Tx is one open transaction. Exec returns the handle every statement of the
// transaction must be issued through. Rollback after Commit is a no-op, so
// callers may always defer it.
type Tx interface {
	Exec() *gorm.DB
	Commit() error
	Rollback() error
}

type gormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a UnitOfWork backed by the given connection pool.
func NewGormUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) Begin(ctx context.Context) (Tx, error) {
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin transaction: %w", tx.Error)
	}
	return &gormTx{db: tx}, nil
}

func (u *gormUnitOfWork) SingleExec(ctx context.Context) *gorm.DB {
	return u.db.WithContext(ctx)
}

type gormTx struct {
	db   *gorm.DB
	done bool
}

func (t *gormTx) Exec() *gorm.DB {
	return t.db
}

func (t *gormTx) Commit() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	if err := t.db.Commit().Error; err != nil {
		return fmt.Errorf("commit transaction: %w", translateError(err))
	}
	return nil
}

func (t *gormTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	if err := t.db.Rollback().Error; err != nil {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}

// RunInTx runs fn inside a new transaction. The transaction commits only when
// fn returns nil; on an error or a panic it is rolled back and nothing fn
// wrote becomes visible.
func RunInTx(ctx context.Context, uow UnitOfWork, fn func(tx Tx) error) (err error) {
	tx, err := uow.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Printf("Error rolling back transaction after panic: %v", rbErr)
			}
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Printf("Error rolling back transaction: %v (original error: %v)", rbErr, err)
		}
		return err
	}

	return tx.Commit()
}
