package models

import (
	"context"
	"fmt"
	"time"

	"github.com/daftarhq/daftar_backend/utils"
	"gorm.io/gorm"

	"github.com/shopspring/decimal"
)

type NewPayment struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate time.Time       `json:"payment_date" binding:"required"`
}

// RecordPayment applies a partial or full payment against an invoice: the
// paid amount grows, the status is rederived, the party's balance drops by
// the amount and a linked cash entry is appended, all in one transaction.
// The overpayment check reads the stored paid amount inside that same
// transaction, so two racing payments cannot both pass it against a stale
// value.
func (l *Ledger) RecordPayment(ctx context.Context, kind InvoiceKind, invoiceId int, input *NewPayment) (*CashEntry, error) {
	role, err := roleFor(kind)
	if err != nil {
		return nil, err
	}
	if !input.Amount.IsPositive() {
		return nil, utils.NewValidationError("amount", "must be positive")
	}
	if input.PaymentDate.IsZero() {
		return nil, utils.NewValidationError("payment_date", "must be set")
	}

	var entry CashEntry
	err = l.transact(ctx, "RecordPayment", func(tx *gorm.DB) error {
		var invoice Invoice
		if err := fetchInvoice(tx, role, invoiceId, &invoice); err != nil {
			return err
		}

		outstanding := Outstanding(invoice.Total, invoice.PaidAmount)
		if input.Amount.GreaterThan(outstanding.Add(OverpaymentTolerance)) {
			return &utils.OverpaymentError{Requested: input.Amount, Outstanding: outstanding}
		}

		newPaidAmount := invoice.PaidAmount.Add(input.Amount)
		newStatus := DeriveStatus(newPaidAmount, invoice.Total)
		if err := tx.Table(role.invoiceTable).Where("id = ?", invoiceId).
			Updates(map[string]interface{}{
				"paid_amount": newPaidAmount,
				"status":      newStatus,
			}).Error; err != nil {
			return err
		}

		if err := adjustPartyBalance(tx, role.partyType, invoice.PartyId, input.Amount.Neg()); err != nil {
			return err
		}

		entry = CashEntry{
			Date:        input.PaymentDate,
			Direction:   role.paymentDirection,
			Amount:      input.Amount,
			Description: fmt.Sprintf("payment for %s #%d", role.name, invoiceId),
			PartyType:   &role.partyType,
			PartyId:     &invoice.PartyId,
			InvoiceKind: &kind,
			InvoiceId:   &invoiceId,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
