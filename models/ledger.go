package models

import (
	"context"
	"strings"

	"github.com/daftarhq/daftar_backend/config"
	"github.com/daftarhq/daftar_backend/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Ledger is the handle to the bookkeeping store. Invoices, party balances,
// stock quantities and cash entries form one consistency domain: every
// mutating operation on Ledger runs inside a single transaction covering all
// tables it touches. The handle is injected by the caller; there is no
// package-level database.
type Ledger struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewLedger(db *gorm.DB, logger *logrus.Logger) *Ledger {
	return &Ledger{db: db, logger: logger}
}

// DB exposes the underlying handle for read-only callers (reports, tests).
func (l *Ledger) DB() *gorm.DB {
	return l.db
}

// transact runs fn inside one transaction. Any error aborts the whole
// transaction and leaves every table unchanged.
func (l *Ledger) transact(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	tx := l.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return translateDBError(op, tx.Error)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		if l.logger != nil {
			cid, _ := utils.GetCorrelationIdFromContext(ctx)
			config.LogError(l.logger, "models", op, cid, nil, err)
		}
		return translateDBError(op, err)
	}
	if err := tx.Commit().Error; err != nil {
		return translateDBError(op, err)
	}
	return nil
}

// translateDBError maps driver-level busy/locked errors onto the typed
// ConcurrencyConflict so callers never match on sqlite message strings.
func translateDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked") {
		return &utils.ConcurrencyConflict{Op: op, Err: err}
	}
	return err
}
