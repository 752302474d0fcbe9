package models

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Read-only aggregations for the report screens. Nothing here writes, so
// the queries run outside a transaction and always against live rows.

type ProfitLossReport struct {
	From           time.Time       `json:"from"`
	To             time.Time       `json:"to"`
	TotalSales     decimal.Decimal `json:"total_sales"`
	TotalPurchases decimal.Decimal `json:"total_purchases"`
	NetProfit      decimal.Decimal `json:"net_profit"`
}

func (l *Ledger) ProfitLoss(ctx context.Context, from, to time.Time) (*ProfitLossReport, error) {
	db := l.db.WithContext(ctx)
	totalSales, err := invoiceTotalInRange(db, invoiceRoles[InvoiceKindSale], from, to)
	if err != nil {
		return nil, err
	}
	totalPurchases, err := invoiceTotalInRange(db, invoiceRoles[InvoiceKindPurchase], from, to)
	if err != nil {
		return nil, err
	}
	return &ProfitLossReport{
		From:           from,
		To:             to,
		TotalSales:     totalSales,
		TotalPurchases: totalPurchases,
		NetProfit:      totalSales.Sub(totalPurchases),
	}, nil
}

func invoiceTotalInRange(db *gorm.DB, role invoiceRole, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := db.Table(role.invoiceTable).
		Where("invoice_date >= ? AND invoice_date < ?", from, to).
		Select("COALESCE(SUM(total), 0)").
		Scan(&total).Error
	return total, err
}

type DailySalesRow struct {
	Day          string          `json:"day"`
	InvoiceCount int             `json:"invoice_count"`
	Total        decimal.Decimal `json:"total"`
}

func (l *Ledger) DailySales(ctx context.Context, from, to time.Time) ([]*DailySalesRow, error) {
	var rows []*DailySalesRow
	err := l.db.WithContext(ctx).Table(invoiceRoles[InvoiceKindSale].invoiceTable).
		Where("invoice_date >= ? AND invoice_date < ?", from, to).
		Select("date(invoice_date) AS day, COUNT(*) AS invoice_count, COALESCE(SUM(total), 0) AS total").
		Group("date(invoice_date)").
		Order("day").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type StatementRow struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

type PartyStatement struct {
	PartyType      PartyType       `json:"party_type"`
	PartyId        int             `json:"party_id"`
	From           time.Time       `json:"from"`
	To             time.Time       `json:"to"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Rows           []*StatementRow `json:"rows"`
	TotalDebit     decimal.Decimal `json:"total_debit"`
	TotalCredit    decimal.Decimal `json:"total_credit"`
}

// PartyStatementFor builds the dated account statement for one party:
// the balance carried into the period, then each invoice (debit) and each
// cash movement (credit) with a running balance.
func (l *Ledger) PartyStatementFor(ctx context.Context, partyType PartyType, partyId int, from, to time.Time) (*PartyStatement, error) {
	db := l.db.WithContext(ctx)
	if err := validatePartyExists(db, partyType, partyId); err != nil {
		return nil, err
	}

	kind := InvoiceKindSale
	if partyType == PartyTypeSupplier {
		kind = InvoiceKindPurchase
	}
	role := invoiceRoles[kind]

	var invoicedBefore decimal.Decimal
	err := db.Table(role.invoiceTable).
		Where("party_id = ? AND invoice_date < ?", partyId, from).
		Select("COALESCE(SUM(total), 0)").
		Scan(&invoicedBefore).Error
	if err != nil {
		return nil, err
	}
	var paidBefore decimal.Decimal
	err = db.Model(&CashEntry{}).
		Where("party_type = ? AND party_id = ? AND date < ?", partyType, partyId, from).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&paidBefore).Error
	if err != nil {
		return nil, err
	}
	opening := invoicedBefore.Sub(paidBefore)

	var invoices []*Invoice
	err = db.Table(role.invoiceTable).
		Where("party_id = ? AND invoice_date >= ? AND invoice_date < ?", partyId, from, to).
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	var entries []*CashEntry
	err = db.Where("party_type = ? AND party_id = ? AND date >= ? AND date < ?", partyType, partyId, from, to).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	rows := make([]*StatementRow, 0, len(invoices)+len(entries))
	for _, invoice := range invoices {
		rows = append(rows, &StatementRow{
			Date:        invoice.InvoiceDate,
			Description: role.name,
			Debit:       invoice.Total,
		})
	}
	for _, entry := range entries {
		rows = append(rows, &StatementRow{
			Date:        entry.Date,
			Description: entry.Description,
			Credit:      entry.Amount,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})

	statement := &PartyStatement{
		PartyType:      partyType,
		PartyId:        partyId,
		From:           from,
		To:             to,
		OpeningBalance: opening,
	}
	running := opening
	for _, row := range rows {
		running = running.Add(row.Debit).Sub(row.Credit)
		row.Balance = running
		statement.TotalDebit = statement.TotalDebit.Add(row.Debit)
		statement.TotalCredit = statement.TotalCredit.Add(row.Credit)
	}
	statement.Rows = rows
	return statement, nil
}
