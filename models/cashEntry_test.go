package models_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/daftarhq/daftar_backend/models"
	"github.com/daftarhq/daftar_backend/utils"
)

func TestCashOnHand(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	total, err := ledger.CashOnHand(ctx)
	require.NoError(t, err)
	require.True(t, total.IsZero())

	for _, e := range []struct {
		direction models.CashDirection
		amount    string
	}{
		{models.CashDirectionIn, "500"},
		{models.CashDirectionOut, "120.50"},
		{models.CashDirectionIn, "30"},
	} {
		_, err = ledger.AddCashEntry(ctx, &models.NewCashEntry{
			Date:      date(2026, time.August, 1),
			Direction: e.direction,
			Amount:    dec(e.amount),
		})
		require.NoError(t, err)
	}

	total, err = ledger.CashOnHand(ctx)
	require.NoError(t, err)
	require.True(t, total.Equal(dec("409.50")), "cash on hand = %s", total)
}

func TestAddCashEntryValidation(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()
	partyType := models.PartyTypeCustomer

	cases := []struct {
		name  string
		input *models.NewCashEntry
	}{
		{"zero amount", &models.NewCashEntry{
			Date: date(2026, time.August, 1), Direction: models.CashDirectionIn, Amount: dec("0"),
		}},
		{"negative amount", &models.NewCashEntry{
			Date: date(2026, time.August, 1), Direction: models.CashDirectionIn, Amount: dec("-5"),
		}},
		{"bad direction", &models.NewCashEntry{
			Date: date(2026, time.August, 1), Direction: models.CashDirection("sideways"), Amount: dec("5"),
		}},
		{"party type without id", &models.NewCashEntry{
			Date: date(2026, time.August, 1), Direction: models.CashDirectionIn, Amount: dec("5"),
			PartyType: &partyType,
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ledger.AddCashEntry(ctx, tc.input)
			require.Error(t, err)
			require.True(t, utils.IsValidation(err), "want ValidationError, got %v", err)
		})
	}
}

// A manual entry tied to a party moves that party's balance: money flowing
// in the settling direction (in from customers, out to suppliers) shrinks
// what is open, the opposite direction grows it.
func TestPartyLinkedCashEntryAdjustsBalance(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()
	customer := seedCustomer(t, ledger, "Linked Cust")
	supplier := seedSupplier(t, ledger, "Linked Supp")
	customerType := models.PartyTypeCustomer
	supplierType := models.PartyTypeSupplier

	// Cash in from a customer settles: balance drops below zero (credit).
	_, err := ledger.AddCashEntry(ctx, &models.NewCashEntry{
		Date:      date(2026, time.August, 1),
		Direction: models.CashDirectionIn,
		Amount:    dec("50"),
		PartyType: &customerType,
		PartyId:   &customer.ID,
	})
	require.NoError(t, err)

	customer, err = ledger.GetCustomer(ctx, customer.ID)
	require.NoError(t, err)
	require.True(t, customer.Balance.Equal(dec("-50")), "balance = %s", customer.Balance)

	// Cash out to a customer (a refund) grows what they owe back.
	_, err = ledger.AddCashEntry(ctx, &models.NewCashEntry{
		Date:      date(2026, time.August, 2),
		Direction: models.CashDirectionOut,
		Amount:    dec("20"),
		PartyType: &customerType,
		PartyId:   &customer.ID,
	})
	require.NoError(t, err)

	customer, err = ledger.GetCustomer(ctx, customer.ID)
	require.NoError(t, err)
	require.True(t, customer.Balance.Equal(dec("-30")), "balance = %s", customer.Balance)

	// Cash out to a supplier settles their side.
	_, err = ledger.AddCashEntry(ctx, &models.NewCashEntry{
		Date:      date(2026, time.August, 3),
		Direction: models.CashDirectionOut,
		Amount:    dec("70"),
		PartyType: &supplierType,
		PartyId:   &supplier.ID,
	})
	require.NoError(t, err)

	supplier, err = ledger.GetSupplier(ctx, supplier.ID)
	require.NoError(t, err)
	require.True(t, supplier.Balance.Equal(dec("-70")), "balance = %s", supplier.Balance)

	require.NoError(t, ledger.CheckBalanceInvariant(ctx))
}

func TestAddCashEntryUnknownParty(t *testing.T) {
	ledger := newTestLedger(t)
	partyType := models.PartyTypeCustomer
	partyId := 999

	_, err := ledger.AddCashEntry(context.Background(), &models.NewCashEntry{
		Date:      date(2026, time.August, 1),
		Direction: models.CashDirectionIn,
		Amount:    dec("10"),
		PartyType: &partyType,
		PartyId:   &partyId,
	})
	require.Error(t, err)
	require.True(t, utils.IsNotFound(err), "want NotFoundError, got %v", err)
}

func TestDeleteCashEntryRules(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()
	customer := seedCustomer(t, ledger, "Delete Rules Co")
	customerType := models.PartyTypeCustomer

	free, err := ledger.AddCashEntry(ctx, &models.NewCashEntry{
		Date:      date(2026, time.August, 1),
		Direction: models.CashDirectionOut,
		Amount:    dec("12"),
	})
	require.NoError(t, err)

	linked, err := ledger.AddCashEntry(ctx, &models.NewCashEntry{
		Date:      date(2026, time.August, 2),
		Direction: models.CashDirectionIn,
		Amount:    dec("25"),
		PartyType: &customerType,
		PartyId:   &customer.ID,
	})
	require.NoError(t, err)

	invoice, err := ledger.CreateInvoice(ctx, models.InvoiceKindSale, &models.NewInvoice{
		PartyId:     customer.ID,
		InvoiceDate: date(2026, time.August, 3),
		Lines:       []*models.NewInvoiceLine{{Description: "a", Quantity: dec("1"), UnitPrice: dec("10")}},
	})
	require.NoError(t, err)
	payment, err := ledger.RecordPayment(ctx, models.InvoiceKindSale, invoice.ID, &models.NewPayment{
		Amount: dec("10"), PaymentDate: date(2026, time.August, 4),
	})
	require.NoError(t, err)

	// Free-standing entries can go.
	require.NoError(t, ledger.DeleteCashEntry(ctx, free.ID))

	// Linked ones cannot.
	for _, id := range []int{linked.ID, payment.ID} {
		err = ledger.DeleteCashEntry(ctx, id)
		require.Error(t, err)
		require.True(t, utils.IsValidation(err), "entry %d: want ValidationError, got %v", id, err)
	}

	err = ledger.DeleteCashEntry(ctx, free.ID)
	require.Error(t, err)
	require.True(t, utils.IsNotFound(err))
}
