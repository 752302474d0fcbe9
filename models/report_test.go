package models_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/daftarhq/daftar_backend/models"
)

func TestProfitLoss(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()
	customer := seedCustomer(t, ledger, "PL Cust")
	supplier := seedSupplier(t, ledger, "PL Supp")

	mustInvoice := func(kind models.InvoiceKind, partyId int, day int, price string) {
		t.Helper()
		_, err := ledger.CreateInvoice(ctx, kind, &models.NewInvoice{
			PartyId:     partyId,
			InvoiceDate: date(2026, time.March, day),
			Lines:       []*models.NewInvoiceLine{{Description: "x", Quantity: dec("1"), UnitPrice: dec(price)}},
		})
		require.NoError(t, err)
	}
	mustInvoice(models.InvoiceKindSale, customer.ID, 5, "300")
	mustInvoice(models.InvoiceKindSale, customer.ID, 10, "200")
	mustInvoice(models.InvoiceKindPurchase, supplier.ID, 8, "150")
	// Outside the window.
	mustInvoice(models.InvoiceKindSale, customer.ID, 31, "999")

	report, err := ledger.ProfitLoss(ctx, date(2026, time.March, 1), date(2026, time.March, 31))
	require.NoError(t, err)
	require.True(t, report.TotalSales.Equal(dec("500")), "sales = %s", report.TotalSales)
	require.True(t, report.TotalPurchases.Equal(dec("150")), "purchases = %s", report.TotalPurchases)
	require.True(t, report.NetProfit.Equal(dec("350")), "net = %s", report.NetProfit)
}

func TestDailySales(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()
	customer := seedCustomer(t, ledger, "Daily Cust")

	for _, e := range []struct {
		day   int
		price string
	}{
		{3, "100"}, {3, "40"}, {7, "60"},
	} {
		_, err := ledger.CreateInvoice(ctx, models.InvoiceKindSale, &models.NewInvoice{
			PartyId:     customer.ID,
			InvoiceDate: date(2026, time.March, e.day),
			Lines:       []*models.NewInvoiceLine{{Description: "x", Quantity: dec("1"), UnitPrice: dec(e.price)}},
		})
		require.NoError(t, err)
	}

	rows, err := ledger.DailySales(ctx, date(2026, time.March, 1), date(2026, time.April, 1))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, 2, rows[0].InvoiceCount)
	require.True(t, rows[0].Total.Equal(dec("140")), "day 1 total = %s", rows[0].Total)
	require.Equal(t, 1, rows[1].InvoiceCount)
	require.True(t, rows[1].Total.Equal(dec("60")), "day 2 total = %s", rows[1].Total)
}

func TestPartyStatement(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()
	customer := seedCustomer(t, ledger, "Statement Co")

	// Before the window: one invoice and one payment carry into the opening.
	before, err := ledger.CreateInvoice(ctx, models.InvoiceKindSale, &models.NewInvoice{
		PartyId:     customer.ID,
		InvoiceDate: date(2026, time.February, 10),
		Lines:       []*models.NewInvoiceLine{{Description: "x", Quantity: dec("1"), UnitPrice: dec("100")}},
	})
	require.NoError(t, err)
	_, err = ledger.RecordPayment(ctx, models.InvoiceKindSale, before.ID, &models.NewPayment{
		Amount: dec("40"), PaymentDate: date(2026, time.February, 15),
	})
	require.NoError(t, err)

	// Inside the window: an invoice, then its payment.
	inside, err := ledger.CreateInvoice(ctx, models.InvoiceKindSale, &models.NewInvoice{
		PartyId:     customer.ID,
		InvoiceDate: date(2026, time.March, 2),
		Lines:       []*models.NewInvoiceLine{{Description: "x", Quantity: dec("1"), UnitPrice: dec("80")}},
	})
	require.NoError(t, err)
	_, err = ledger.RecordPayment(ctx, models.InvoiceKindSale, inside.ID, &models.NewPayment{
		Amount: dec("80"), PaymentDate: date(2026, time.March, 5),
	})
	require.NoError(t, err)

	statement, err := ledger.PartyStatementFor(ctx, models.PartyTypeCustomer, customer.ID,
		date(2026, time.March, 1), date(2026, time.April, 1))
	require.NoError(t, err)

	require.True(t, statement.OpeningBalance.Equal(dec("60")), "opening = %s", statement.OpeningBalance)
	require.Len(t, statement.Rows, 2)
	require.True(t, statement.Rows[0].Debit.Equal(dec("80")))
	require.True(t, statement.Rows[0].Balance.Equal(dec("140")))
	require.True(t, statement.Rows[1].Credit.Equal(dec("80")))
	require.True(t, statement.Rows[1].Balance.Equal(dec("60")), "closing = %s", statement.Rows[1].Balance)
	require.True(t, statement.TotalDebit.Equal(dec("80")))
	require.True(t, statement.TotalCredit.Equal(dec("80")))

	// The closing line agrees with the cached running balance.
	customer, err = ledger.GetCustomer(ctx, customer.ID)
	require.NoError(t, err)
	require.True(t, customer.Balance.Equal(statement.Rows[1].Balance))
}
