package models

import (
	"gorm.io/gorm"
)

func MigrateTable(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Customer{}, &Supplier{}, &Item{}, &CashEntry{},
	); err != nil {
		return err
	}
	// Sale and purchase invoices share one row shape across two tables.
	for _, role := range invoiceRoles {
		if err := db.Table(role.invoiceTable).AutoMigrate(&Invoice{}); err != nil {
			return err
		}
		if err := db.Table(role.lineTable).AutoMigrate(&InvoiceLine{}); err != nil {
			return err
		}
	}
	return nil
}
