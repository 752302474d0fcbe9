package models

import (
	"github.com/shopspring/decimal"
	"github.com/daftarhq/daftar_backend/utils"
)

// OverpaymentTolerance absorbs floating rounding in amounts entered by the
// UI. A payment may exceed the outstanding amount by at most this much.
var OverpaymentTolerance = decimal.RequireFromString("0.001")

// invoiceRole fixes, per invoice kind, which party role the invoice
// references, which tables its rows live in, the cash direction of its
// payments and the sign its stock lines apply to item quantities. All
// kind-dependent behavior in the engine reads from this table.
type invoiceRole struct {
	name             string
	partyType        PartyType
	invoiceTable     string
	lineTable        string
	paymentDirection CashDirection
	stockSign        int64
}

var invoiceRoles = map[InvoiceKind]invoiceRole{
	// A sale increases what the customer owes; paying it brings cash in;
	// its lines draw stock down.
	InvoiceKindSale: {
		name:             "sale invoice",
		partyType:        PartyTypeCustomer,
		invoiceTable:     "sale_invoices",
		lineTable:        "sale_invoice_items",
		paymentDirection: CashDirectionIn,
		stockSign:        -1,
	},
	// A purchase increases what is owed to the supplier; paying it sends
	// cash out; its lines receive stock.
	InvoiceKindPurchase: {
		name:             "purchase invoice",
		partyType:        PartyTypeSupplier,
		invoiceTable:     "purchase_invoices",
		lineTable:        "purchase_invoice_items",
		paymentDirection: CashDirectionOut,
		stockSign:        1,
	},
}

func roleFor(kind InvoiceKind) (invoiceRole, error) {
	role, ok := invoiceRoles[kind]
	if !ok {
		return invoiceRole{}, utils.NewValidationError("kind", "invalid invoice kind")
	}
	return role, nil
}

// ComputeTotals derives subtotal, tax and total from the invoice lines.
func ComputeTotals(lines []*NewInvoiceLine, taxRate decimal.Decimal) (subtotal, tax, total decimal.Decimal) {
	subtotal = decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Quantity.Mul(line.UnitPrice))
	}
	tax = subtotal.Mul(taxRate)
	total = subtotal.Add(tax)
	return subtotal, tax, total
}

// DeriveStatus is the only way an invoice status is ever produced:
// paid when paidAmount >= total, partially_paid when 0 < paidAmount < total,
// unpaid otherwise.
func DeriveStatus(paidAmount, total decimal.Decimal) InvoiceStatus {
	switch {
	case paidAmount.GreaterThanOrEqual(total):
		return InvoiceStatusPaid
	case paidAmount.IsPositive():
		return InvoiceStatusPartiallyPaid
	default:
		return InvoiceStatusUnpaid
	}
}

// Outstanding is the unpaid remainder of an invoice.
func Outstanding(total, paidAmount decimal.Decimal) decimal.Decimal {
	return total.Sub(paidAmount)
}

// settleDirection is the cash direction that settles a party's open
// balance: money coming in from a customer, money going out to a supplier.
func settleDirection(partyType PartyType) CashDirection {
	if partyType == PartyTypeSupplier {
		return CashDirectionOut
	}
	return CashDirectionIn
}

// cashEntryBalanceDelta is the change a party-linked cash entry applies to
// that party's running balance: settling cash reduces the open balance,
// cash in the opposite direction (a refund) increases it.
func cashEntryBalanceDelta(partyType PartyType, direction CashDirection, amount decimal.Decimal) decimal.Decimal {
	if direction == settleDirection(partyType) {
		return amount.Neg()
	}
	return amount
}
