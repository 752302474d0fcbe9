package models

import (
	"context"
	"fmt"

	"github.com/daftarhq/daftar_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var balanceTolerance = decimal.RequireFromString("0.001")

// CheckBalanceInvariant recomputes every party's balance from first
// principles — the sum of its invoices' outstanding amounts plus the effect
// of its manual cash entries — and compares it with the cached running
// balance. A correct sequence of engine operations can never make this
// fail; it exists so corruption is detectable.
func (l *Ledger) CheckBalanceInvariant(ctx context.Context) error {
	db := l.db.WithContext(ctx)
	for kind, role := range invoiceRoles {
		var parties []struct {
			Id      int
			Balance decimal.Decimal
		}
		if err := db.Table(partyTable(role.partyType)).Select("id, balance").Scan(&parties).Error; err != nil {
			return err
		}
		for _, party := range parties {
			expected, err := expectedPartyBalance(db, kind, role, party.Id)
			if err != nil {
				return err
			}
			if party.Balance.Sub(expected).Abs().GreaterThan(balanceTolerance) {
				return &utils.InvariantViolation{
					Detail: fmt.Sprintf("%s %d cached balance %s, recomputed %s",
						role.partyType, party.Id, party.Balance.String(), expected.String()),
				}
			}
		}
	}
	return nil
}

func expectedPartyBalance(db *gorm.DB, kind InvoiceKind, role invoiceRole, partyId int) (decimal.Decimal, error) {
	var outstanding decimal.Decimal
	err := db.Table(role.invoiceTable).
		Where("party_id = ?", partyId).
		Select("COALESCE(SUM(total - paid_amount), 0)").
		Scan(&outstanding).Error
	if err != nil {
		return decimal.Zero, err
	}

	// Manual party-linked entries shift the balance directly; invoice-linked
	// entries are already reflected in paid_amount above.
	var entries []*CashEntry
	err = db.Where("party_type = ? AND party_id = ? AND invoice_id IS NULL", role.partyType, partyId).
		Find(&entries).Error
	if err != nil {
		return decimal.Zero, err
	}
	for _, entry := range entries {
		outstanding = outstanding.Add(cashEntryBalanceDelta(role.partyType, entry.Direction, entry.Amount))
	}
	return outstanding, nil
}
