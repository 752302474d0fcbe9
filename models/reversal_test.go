package models_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/daftarhq/daftar_backend/models"
	"github.com/daftarhq/daftar_backend/utils"
)

// Deleting an invoice undoes exactly what is still open on it: the
// outstanding amount leaves the party's balance, the stock effects are
// reversed and the invoice's own cash entries disappear. Balances the
// payments already settled stay settled.
func TestDeleteInvoiceReversesOutstandingOnly(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()
	customer := seedCustomer(t, ledger, "Reversal Co")

	invoice, err := ledger.CreateInvoice(ctx, models.InvoiceKindSale, &models.NewInvoice{
		PartyId:     customer.ID,
		InvoiceDate: date(2026, time.July, 1),
		Lines:       []*models.NewInvoiceLine{{Description: "a", Quantity: dec("1"), UnitPrice: dec("100")}},
	})
	require.NoError(t, err)

	_, err = ledger.RecordPayment(ctx, models.InvoiceKindSale, invoice.ID, &models.NewPayment{
		Amount: dec("40"), PaymentDate: date(2026, time.July, 2),
	})
	require.NoError(t, err)

	require.NoError(t, ledger.DeleteInvoice(ctx, models.InvoiceKindSale, invoice.ID))

	// 100 owed, 40 paid: deleting removes the open 60, not the full 100.
	customer, err = ledger.GetCustomer(ctx, customer.ID)
	require.NoError(t, err)
	require.True(t, customer.Balance.IsZero(), "balance = %s", customer.Balance)

	_, err = ledger.GetInvoice(ctx, models.InvoiceKindSale, invoice.ID)
	require.Error(t, err)
	require.True(t, utils.IsNotFound(err))

	entries, err := ledger.GetCashEntries(ctx)
	require.NoError(t, err)
	require.Empty(t, entries, "the invoice's payment entries must be removed")
	require.NoError(t, ledger.CheckBalanceInvariant(ctx))
}

func TestDeleteInvoiceRestoresStock(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()
	customer := seedCustomer(t, ledger, "Stock Reversal Co")

	item, err := ledger.CreateItem(ctx, &models.NewItem{Name: "nuts", Quantity: dec("20")})
	require.NoError(t, err)

	invoice, err := ledger.CreateInvoice(ctx, models.InvoiceKindSale, &models.NewInvoice{
		PartyId:     customer.ID,
		InvoiceDate: date(2026, time.July, 1),
		Lines:       []*models.NewInvoiceLine{{Description: "nuts", Quantity: dec("6"), UnitPrice: dec("2"), ItemId: item.ID}},
	})
	require.NoError(t, err)

	item, err = ledger.GetItem(ctx, item.ID)
	require.NoError(t, err)
	require.True(t, item.Quantity.Equal(dec("14")))

	require.NoError(t, ledger.DeleteInvoice(ctx, models.InvoiceKindSale, invoice.ID))

	item, err = ledger.GetItem(ctx, item.ID)
	require.NoError(t, err)
	require.True(t, item.Quantity.Equal(dec("20")), "quantity = %s", item.Quantity)
}

// Only the deleted invoice's cash entries go away. Other entries for the
// same party, manual or from other invoices, must survive.
func TestDeleteInvoiceKeepsUnrelatedCashEntries(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()
	customer := seedCustomer(t, ledger, "Busy Co")

	first, err := ledger.CreateInvoice(ctx, models.InvoiceKindSale, &models.NewInvoice{
		PartyId:     customer.ID,
		InvoiceDate: date(2026, time.July, 1),
		Lines:       []*models.NewInvoiceLine{{Description: "a", Quantity: dec("1"), UnitPrice: dec("100")}},
	})
	require.NoError(t, err)
	second, err := ledger.CreateInvoice(ctx, models.InvoiceKindSale, &models.NewInvoice{
		PartyId:     customer.ID,
		InvoiceDate: date(2026, time.July, 2),
		Lines:       []*models.NewInvoiceLine{{Description: "b", Quantity: dec("1"), UnitPrice: dec("50")}},
	})
	require.NoError(t, err)

	_, err = ledger.RecordPayment(ctx, models.InvoiceKindSale, first.ID, &models.NewPayment{
		Amount: dec("100"), PaymentDate: date(2026, time.July, 3),
	})
	require.NoError(t, err)
	_, err = ledger.RecordPayment(ctx, models.InvoiceKindSale, second.ID, &models.NewPayment{
		Amount: dec("20"), PaymentDate: date(2026, time.July, 4),
	})
	require.NoError(t, err)

	_, err = ledger.AddCashEntry(ctx, &models.NewCashEntry{
		Date:        date(2026, time.July, 5),
		Direction:   models.CashDirectionOut,
		Amount:      dec("15"),
		Description: "office supplies",
	})
	require.NoError(t, err)

	require.NoError(t, ledger.DeleteInvoice(ctx, models.InvoiceKindSale, second.ID))

	entries, err := ledger.GetCashEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2, "first invoice's payment and the manual entry survive")
	for _, entry := range entries {
		if entry.InvoiceId != nil {
			require.Equal(t, first.ID, *entry.InvoiceId)
		}
	}
	require.NoError(t, ledger.CheckBalanceInvariant(ctx))
}

func TestDeleteInvoiceTwice(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()
	supplier := seedSupplier(t, ledger, "Twice Supp")

	invoice, err := ledger.CreateInvoice(ctx, models.InvoiceKindPurchase, &models.NewInvoice{
		PartyId:     supplier.ID,
		InvoiceDate: date(2026, time.July, 1),
		Lines:       []*models.NewInvoiceLine{{Description: "a", Quantity: dec("1"), UnitPrice: dec("30")}},
	})
	require.NoError(t, err)

	require.NoError(t, ledger.DeleteInvoice(ctx, models.InvoiceKindPurchase, invoice.ID))

	err = ledger.DeleteInvoice(ctx, models.InvoiceKindPurchase, invoice.ID)
	require.Error(t, err)
	require.True(t, utils.IsNotFound(err), "second delete must report NotFoundError, got %v", err)

	supplier, err = ledger.GetSupplier(ctx, supplier.ID)
	require.NoError(t, err)
	require.True(t, supplier.Balance.IsZero(), "balance may only be reversed once, got %s", supplier.Balance)
}
