package models

import (
	"context"
	"errors"
	"time"

	"github.com/daftarhq/daftar_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CashEntry is one cash movement. Entries generated by a payment carry the
// party and invoice references; entries with no references are free-standing
// manual transactions and are the only ones a user may delete directly.
// An entry is immutable once created.
type CashEntry struct {
	ID          int             `gorm:"primary_key" json:"id"`
	Date        time.Time       `gorm:"index;not null" json:"date"`
	Direction   CashDirection   `gorm:"size:3;not null" json:"direction"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Description string          `gorm:"size:255" json:"description"`
	PartyType   *PartyType      `gorm:"size:10" json:"party_type,omitempty"`
	PartyId     *int            `gorm:"index" json:"party_id,omitempty"`
	InvoiceKind *InvoiceKind    `gorm:"size:10" json:"invoice_kind,omitempty"`
	InvoiceId   *int            `gorm:"index" json:"invoice_id,omitempty"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (CashEntry) TableName() string {
	return "cash_entries"
}

type NewCashEntry struct {
	Date        time.Time       `json:"date" binding:"required"`
	Direction   CashDirection   `json:"direction" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description"`
	PartyType   *PartyType      `json:"party_type"`
	PartyId     *int            `json:"party_id"`
}

func (input *NewCashEntry) validate() error {
	if input.Date.IsZero() {
		return utils.NewValidationError("date", "must be set")
	}
	if input.Direction != CashDirectionIn && input.Direction != CashDirectionOut {
		return utils.NewValidationError("direction", "must be in or out")
	}
	if !input.Amount.IsPositive() {
		return utils.NewValidationError("amount", "must be positive")
	}
	if (input.PartyType == nil) != (input.PartyId == nil) {
		return utils.NewValidationError("party", "party_type and party_id must be set together")
	}
	if input.PartyType != nil && *input.PartyType != PartyTypeCustomer && *input.PartyType != PartyTypeSupplier {
		return utils.NewValidationError("party_type", "must be customer or supplier")
	}
	return nil
}

// AddCashEntry appends a manual cash transaction. When a party reference is
// given, the party's balance moves with the entry in the same transaction:
// settling cash (in from a customer, out to a supplier) reduces the open
// balance, the opposite direction increases it.
func (l *Ledger) AddCashEntry(ctx context.Context, input *NewCashEntry) (*CashEntry, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	entry := CashEntry{
		Date:        input.Date,
		Direction:   input.Direction,
		Amount:      input.Amount,
		Description: input.Description,
		PartyType:   input.PartyType,
		PartyId:     input.PartyId,
	}
	err := l.transact(ctx, "AddCashEntry", func(tx *gorm.DB) error {
		if input.PartyType != nil {
			delta := cashEntryBalanceDelta(*input.PartyType, input.Direction, input.Amount)
			if err := adjustPartyBalance(tx, *input.PartyType, *input.PartyId, delta); err != nil {
				return err
			}
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteCashEntry removes a free-standing manual entry. Entries carrying a
// party or invoice reference were produced by (or reconciled against) the
// ledger and are rejected, not silently ignored; they disappear only when
// their invoice is reversed.
func (l *Ledger) DeleteCashEntry(ctx context.Context, id int) error {
	return l.transact(ctx, "DeleteCashEntry", func(tx *gorm.DB) error {
		var entry CashEntry
		if err := tx.First(&entry, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("cash entry", id)
			}
			return err
		}
		if entry.PartyType != nil || entry.InvoiceId != nil {
			return utils.NewValidationError("id", "cash entry is linked and cannot be deleted directly")
		}
		return tx.Delete(&CashEntry{}, id).Error
	})
}

func (l *Ledger) GetCashEntry(ctx context.Context, id int) (*CashEntry, error) {
	var entry CashEntry
	if err := l.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("cash entry", id)
		}
		return nil, err
	}
	return &entry, nil
}

func (l *Ledger) GetCashEntries(ctx context.Context) ([]*CashEntry, error) {
	var entries []*CashEntry
	if err := l.db.WithContext(ctx).Order("date DESC, id DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// CashOnHand is the sum of all inbound amounts minus all outbound amounts.
// Always recomputed from the entries, never cached.
func (l *Ledger) CashOnHand(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := l.db.WithContext(ctx).Model(&CashEntry{}).
		Select("COALESCE(SUM(CASE WHEN direction = 'in' THEN amount ELSE -amount END), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
