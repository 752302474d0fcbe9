package models

import (
	"github.com/daftarhq/daftar_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func partyTable(partyType PartyType) string {
	if partyType == PartyTypeSupplier {
		return "suppliers"
	}
	return "customers"
}

// adjustPartyBalance applies delta to the party's cached running balance
// with a single additive UPDATE, so the read and the write of the stored
// balance happen inside the caller's transaction.
func adjustPartyBalance(tx *gorm.DB, partyType PartyType, partyId int, delta decimal.Decimal) error {
	if delta.IsZero() {
		return validatePartyExists(tx, partyType, partyId)
	}
	res := tx.Table(partyTable(partyType)).
		Where("id = ?", partyId).
		UpdateColumn("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.NewNotFoundError(string(partyType), partyId)
	}
	return nil
}

func validatePartyExists(tx *gorm.DB, partyType PartyType, partyId int) error {
	var count int64
	if err := tx.Table(partyTable(partyType)).Where("id = ?", partyId).Count(&count).Error; err != nil {
		return err
	}
	if count <= 0 {
		return utils.NewNotFoundError(string(partyType), partyId)
	}
	return nil
}
