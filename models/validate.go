package models

import (
	"github.com/daftarhq/daftar_backend/utils"
	"gorm.io/gorm"
)

// validateUnique rejects a value already present in the column, excluding
// the row being edited.
func validateUnique(db *gorm.DB, table string, column string, value interface{}, exceptId int) error {
	var count int64
	dbCtx := db.Table(table).Where(column+" = ?", value)
	if exceptId > 0 {
		dbCtx = dbCtx.Where("NOT id = ?", exceptId)
	}
	if err := dbCtx.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return utils.NewValidationError(column, "duplicate "+column)
	}
	return nil
}
