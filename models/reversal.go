package models

import (
	"context"

	"gorm.io/gorm"
)

// DeleteInvoice undoes everything the invoice's creation and payments did
// and removes its rows, in one transaction:
//
//   - item quantities get back the exact stock delta the lines applied
//   - the party's balance drops by the outstanding amount only, since
//     recorded payments already reduced it when they happened
//   - cash entries whose invoice reference matches are removed
//   - the lines and the invoice row are deleted
//
// Deleting a missing invoice fails with NotFoundError; a concurrent double
// delete is a reported failure, not a silent no-op.
func (l *Ledger) DeleteInvoice(ctx context.Context, kind InvoiceKind, id int) error {
	role, err := roleFor(kind)
	if err != nil {
		return err
	}

	return l.transact(ctx, "DeleteInvoice", func(tx *gorm.DB) error {
		var invoice Invoice
		if err := fetchInvoice(tx, role, id, &invoice); err != nil {
			return err
		}
		lines, err := fetchInvoiceLines(tx, role, id)
		if err != nil {
			return err
		}

		if err := reverseStockEffectsOfLines(tx, role, lines); err != nil {
			return err
		}

		outstanding := Outstanding(invoice.Total, invoice.PaidAmount)
		if err := adjustPartyBalance(tx, role.partyType, invoice.PartyId, outstanding.Neg()); err != nil {
			return err
		}

		// Exact foreign-key match on the invoice reference; entries merely
		// mentioning the party stay.
		if err := tx.Where("invoice_kind = ? AND invoice_id = ?", kind, id).
			Delete(&CashEntry{}).Error; err != nil {
			return err
		}

		if err := tx.Table(role.lineTable).Where("invoice_id = ?", id).Delete(&InvoiceLine{}).Error; err != nil {
			return err
		}
		return tx.Table(role.invoiceTable).Where("id = ?", id).Delete(&Invoice{}).Error
	})
}
