package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/daftarhq/daftar_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice is the row shape shared by sale_invoices and purchase_invoices.
// Kind is carried in memory only; the table an invoice lives in is decided
// by the role table in balance.go.
type Invoice struct {
	ID          int             `gorm:"primary_key" json:"id"`
	PartyId     int             `gorm:"index;not null" json:"party_id"`
	InvoiceDate time.Time       `gorm:"index;not null" json:"invoice_date"`
	Total       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total"`
	PaidAmount  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"paid_amount"`
	Status      InvoiceStatus   `gorm:"size:20;not null;default:'unpaid'" json:"status"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Kind  InvoiceKind    `gorm:"-" json:"kind"`
	Lines []*InvoiceLine `gorm:"-" json:"lines,omitempty"`
}

// InvoiceLine is the row shape shared by sale_invoice_items and
// purchase_invoice_items. Lines are owned by their invoice and replaced
// wholesale on edit. A non-zero ItemId ties the line to stock.
type InvoiceLine struct {
	ID          int             `gorm:"primary_key" json:"id"`
	InvoiceId   int             `gorm:"index;not null" json:"invoice_id"`
	Description string          `gorm:"size:255;not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	ItemId      int             `gorm:"index;default:0" json:"item_id"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewInvoiceLine struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ItemId      int             `json:"item_id"`
}

type NewInvoice struct {
	PartyId     int               `json:"party_id" binding:"required"`
	InvoiceDate time.Time         `json:"invoice_date" binding:"required"`
	TaxRate     decimal.Decimal   `json:"tax_rate"`
	Lines       []*NewInvoiceLine `json:"lines" binding:"required,dive"`
}

func (input *NewInvoice) validate() error {
	if input.PartyId <= 0 {
		return utils.NewValidationError("party_id", "must be set")
	}
	if input.InvoiceDate.IsZero() {
		return utils.NewValidationError("invoice_date", "must be set")
	}
	if input.TaxRate.IsNegative() {
		return utils.NewValidationError("tax_rate", "must not be negative")
	}
	if len(input.Lines) == 0 {
		return utils.NewValidationError("lines", "invoice must have at least one line")
	}
	for _, line := range input.Lines {
		if strings.TrimSpace(line.Description) == "" {
			return utils.NewValidationError("lines", "line description must not be empty")
		}
		if !line.Quantity.IsPositive() {
			return utils.NewValidationError("lines", "line quantity must be positive")
		}
		if line.UnitPrice.IsNegative() {
			return utils.NewValidationError("lines", "line unit price must not be negative")
		}
	}
	return nil
}

// CreateInvoice inserts the invoice and its lines, adds the full total to
// the party's running balance and applies the lines' stock effects, all in
// one transaction. A new invoice is always unpaid.
func (l *Ledger) CreateInvoice(ctx context.Context, kind InvoiceKind, input *NewInvoice) (*Invoice, error) {
	role, err := roleFor(kind)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	_, _, total := ComputeTotals(input.Lines, input.TaxRate)
	invoice := Invoice{
		PartyId:     input.PartyId,
		InvoiceDate: input.InvoiceDate,
		Total:       total,
		PaidAmount:  decimal.Zero,
		Status:      InvoiceStatusUnpaid,
		Kind:        kind,
	}

	err = l.transact(ctx, "CreateInvoice", func(tx *gorm.DB) error {
		if err := validatePartyExists(tx, role.partyType, input.PartyId); err != nil {
			return err
		}
		if err := tx.Table(role.invoiceTable).Create(&invoice).Error; err != nil {
			return err
		}
		lines, err := insertInvoiceLines(tx, role, invoice.ID, input.Lines)
		if err != nil {
			return err
		}
		invoice.Lines = lines
		if err := adjustPartyBalance(tx, role.partyType, input.PartyId, total); err != nil {
			return err
		}
		return applyStockEffects(tx, role, input.Lines, 1)
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// UpdateInvoice replaces the invoice's party, date and lines. The paid
// amount is untouched and the status is recomputed against the new total;
// the party balance moves by the difference between the new and old totals
// so nothing is counted twice. Old lines' stock effects are reversed before
// the new lines' effects apply.
func (l *Ledger) UpdateInvoice(ctx context.Context, kind InvoiceKind, id int, input *NewInvoice) (*Invoice, error) {
	role, err := roleFor(kind)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	_, _, newTotal := ComputeTotals(input.Lines, input.TaxRate)
	var invoice Invoice

	err = l.transact(ctx, "UpdateInvoice", func(tx *gorm.DB) error {
		if err := fetchInvoice(tx, role, id, &invoice); err != nil {
			return err
		}

		oldLines, err := fetchInvoiceLines(tx, role, id)
		if err != nil {
			return err
		}
		if err := reverseStockEffectsOfLines(tx, role, oldLines); err != nil {
			return err
		}

		if input.PartyId == invoice.PartyId {
			delta := newTotal.Sub(invoice.Total)
			if err := adjustPartyBalance(tx, role.partyType, invoice.PartyId, delta); err != nil {
				return err
			}
		} else {
			// Reassigning the invoice moves its outstanding amount from the
			// old party to the new one; paid amounts already left both
			// balances when they were recorded.
			if err := validatePartyExists(tx, role.partyType, input.PartyId); err != nil {
				return err
			}
			oldOutstanding := Outstanding(invoice.Total, invoice.PaidAmount)
			if err := adjustPartyBalance(tx, role.partyType, invoice.PartyId, oldOutstanding.Neg()); err != nil {
				return err
			}
			newOutstanding := Outstanding(newTotal, invoice.PaidAmount)
			if err := adjustPartyBalance(tx, role.partyType, input.PartyId, newOutstanding); err != nil {
				return err
			}
		}

		if err := tx.Table(role.lineTable).Where("invoice_id = ?", id).Delete(&InvoiceLine{}).Error; err != nil {
			return err
		}
		lines, err := insertInvoiceLines(tx, role, id, input.Lines)
		if err != nil {
			return err
		}
		if err := applyStockEffects(tx, role, input.Lines, 1); err != nil {
			return err
		}

		invoice.PartyId = input.PartyId
		invoice.InvoiceDate = input.InvoiceDate
		invoice.Total = newTotal
		invoice.Status = DeriveStatus(invoice.PaidAmount, newTotal)
		invoice.Lines = lines
		return tx.Table(role.invoiceTable).Where("id = ?", id).
			Select("party_id", "invoice_date", "total", "status").
			Updates(map[string]interface{}{
				"party_id":     invoice.PartyId,
				"invoice_date": invoice.InvoiceDate,
				"total":        invoice.Total,
				"status":       invoice.Status,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	invoice.Kind = kind
	return &invoice, nil
}

func (l *Ledger) GetInvoice(ctx context.Context, kind InvoiceKind, id int) (*Invoice, error) {
	role, err := roleFor(kind)
	if err != nil {
		return nil, err
	}
	var invoice Invoice
	db := l.db.WithContext(ctx)
	if err := fetchInvoice(db, role, id, &invoice); err != nil {
		return nil, err
	}
	lines, err := fetchInvoiceLines(db, role, id)
	if err != nil {
		return nil, err
	}
	invoice.Kind = kind
	invoice.Lines = lines
	return &invoice, nil
}

func (l *Ledger) GetInvoices(ctx context.Context, kind InvoiceKind, partyId *int) ([]*Invoice, error) {
	role, err := roleFor(kind)
	if err != nil {
		return nil, err
	}
	dbCtx := l.db.WithContext(ctx).Table(role.invoiceTable)
	if partyId != nil && *partyId > 0 {
		dbCtx = dbCtx.Where("party_id = ?", *partyId)
	}
	var invoices []*Invoice
	if err := dbCtx.Order("invoice_date DESC").Find(&invoices).Error; err != nil {
		return nil, err
	}
	for _, invoice := range invoices {
		invoice.Kind = kind
	}
	return invoices, nil
}

func fetchInvoice(tx *gorm.DB, role invoiceRole, id int, out *Invoice) error {
	err := tx.Table(role.invoiceTable).Where("id = ?", id).Take(out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewNotFoundError(role.name, id)
		}
		return err
	}
	return nil
}

func fetchInvoiceLines(tx *gorm.DB, role invoiceRole, invoiceId int) ([]*InvoiceLine, error) {
	var lines []*InvoiceLine
	err := tx.Table(role.lineTable).Where("invoice_id = ?", invoiceId).Order("id").Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func insertInvoiceLines(tx *gorm.DB, role invoiceRole, invoiceId int, inputs []*NewInvoiceLine) ([]*InvoiceLine, error) {
	lines := make([]*InvoiceLine, 0, len(inputs))
	for _, input := range inputs {
		line := &InvoiceLine{
			InvoiceId:   invoiceId,
			Description: input.Description,
			Quantity:    input.Quantity,
			UnitPrice:   input.UnitPrice,
			ItemId:      input.ItemId,
		}
		if err := tx.Table(role.lineTable).Create(line).Error; err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// applyStockEffects adjusts item quantities for every stock-linked line.
// sign is 1 when the invoice's effect is applied and -1 when reversed.
func applyStockEffects(tx *gorm.DB, role invoiceRole, inputs []*NewInvoiceLine, sign int64) error {
	for _, input := range inputs {
		if input.ItemId == 0 {
			continue
		}
		delta := input.Quantity.Mul(decimal.NewFromInt(role.stockSign * sign))
		if err := adjustItemQuantity(tx, input.ItemId, delta); err != nil {
			return err
		}
	}
	return nil
}

func reverseStockEffectsOfLines(tx *gorm.DB, role invoiceRole, lines []*InvoiceLine) error {
	for _, line := range lines {
		if line.ItemId == 0 {
			continue
		}
		delta := line.Quantity.Mul(decimal.NewFromInt(-role.stockSign))
		if err := adjustItemQuantity(tx, line.ItemId, delta); err != nil {
			return err
		}
	}
	return nil
}
