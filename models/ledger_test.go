package models_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/daftarhq/daftar_backend/config"
	"github.com/daftarhq/daftar_backend/models"
)

func newTestLedger(t *testing.T) *models.Ledger {
	t.Helper()
	db, err := config.OpenDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, derr := db.DB(); derr == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, models.MigrateTable(db))
	return models.NewLedger(db, nil)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func seedCustomer(t *testing.T, ledger *models.Ledger, name string) *models.Customer {
	t.Helper()
	customer, err := ledger.CreateCustomer(context.Background(), &models.NewCustomer{Name: name})
	require.NoError(t, err)
	require.True(t, customer.Balance.IsZero())
	return customer
}

func seedSupplier(t *testing.T, ledger *models.Ledger, name string) *models.Supplier {
	t.Helper()
	supplier, err := ledger.CreateSupplier(context.Background(), &models.NewSupplier{Name: name})
	require.NoError(t, err)
	require.True(t, supplier.Balance.IsZero())
	return supplier
}

// The full documented flow: a sale invoice for 2 x 100 at 15% tax, a partial
// payment of 100, then deletion of the invoice. Every intermediate balance,
// status and cash entry is pinned.
func TestSaleInvoiceLifecycleScenario(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	customer := seedCustomer(t, ledger, "Scenario Customer")

	invoice, err := ledger.CreateInvoice(ctx, models.InvoiceKindSale, &models.NewInvoice{
		PartyId:     customer.ID,
		InvoiceDate: date(2026, time.March, 1),
		TaxRate:     dec("0.15"),
		Lines: []*models.NewInvoiceLine{
			{Description: "widgets", Quantity: dec("2"), UnitPrice: dec("100")},
		},
	})
	require.NoError(t, err)
	require.True(t, invoice.Total.Equal(dec("230")), "total = %s", invoice.Total)
	require.Equal(t, models.InvoiceStatusUnpaid, invoice.Status)
	require.True(t, invoice.PaidAmount.IsZero())

	customer, err = ledger.GetCustomer(ctx, customer.ID)
	require.NoError(t, err)
	require.True(t, customer.Balance.Equal(dec("230")), "balance = %s", customer.Balance)

	entry, err := ledger.RecordPayment(ctx, models.InvoiceKindSale, invoice.ID, &models.NewPayment{
		Amount:      dec("100"),
		PaymentDate: date(2026, time.March, 5),
	})
	require.NoError(t, err)
	require.Equal(t, models.CashDirectionIn, entry.Direction)
	require.True(t, entry.Amount.Equal(dec("100")))

	invoice, err = ledger.GetInvoice(ctx, models.InvoiceKindSale, invoice.ID)
	require.NoError(t, err)
	require.True(t, invoice.PaidAmount.Equal(dec("100")))
	require.Equal(t, models.InvoiceStatusPartiallyPaid, invoice.Status)

	customer, err = ledger.GetCustomer(ctx, customer.ID)
	require.NoError(t, err)
	require.True(t, customer.Balance.Equal(dec("130")), "balance = %s", customer.Balance)

	entries, err := ledger.GetCashEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, ledger.DeleteInvoice(ctx, models.InvoiceKindSale, invoice.ID))

	customer, err = ledger.GetCustomer(ctx, customer.ID)
	require.NoError(t, err)
	require.True(t, customer.Balance.IsZero(), "balance = %s", customer.Balance)

	entries, err = ledger.GetCashEntries(ctx)
	require.NoError(t, err)
	require.Empty(t, entries, "linked cash entry must be removed with the invoice")

	_, err = ledger.GetInvoice(ctx, models.InvoiceKindSale, invoice.ID)
	require.Error(t, err)

	require.NoError(t, ledger.CheckBalanceInvariant(ctx))
}
