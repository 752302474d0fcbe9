package models

import "errors"

// InvoiceKind tags the two invoice variants. Every engine operation that
// touches an invoice takes the kind explicitly; nothing branches on loose
// strings outside the role table in balance.go.
type InvoiceKind string

const (
	InvoiceKindSale     InvoiceKind = "sale"
	InvoiceKindPurchase InvoiceKind = "purchase"
)

func ParseInvoiceKind(s string) (InvoiceKind, error) {
	switch s {
	case "sale", "sales":
		return InvoiceKindSale, nil
	case "purchase", "purchases":
		return InvoiceKindPurchase, nil
	default:
		return "", errors.New("invalid invoice kind")
	}
}

type InvoiceStatus string

const (
	InvoiceStatusUnpaid        InvoiceStatus = "unpaid"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusPaid          InvoiceStatus = "paid"
)

type CashDirection string

const (
	CashDirectionIn  CashDirection = "in"
	CashDirectionOut CashDirection = "out"
)

func ParseCashDirection(s string) (CashDirection, error) {
	switch s {
	case "in":
		return CashDirectionIn, nil
	case "out":
		return CashDirectionOut, nil
	default:
		return "", errors.New("invalid cash direction")
	}
}

type PartyType string

const (
	PartyTypeCustomer PartyType = "customer"
	PartyTypeSupplier PartyType = "supplier"
)

func ParsePartyType(s string) (PartyType, error) {
	switch s {
	case "customer":
		return PartyTypeCustomer, nil
	case "supplier":
		return PartyTypeSupplier, nil
	default:
		return "", errors.New("invalid party type")
	}
}
