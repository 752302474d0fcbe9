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

// Item is a stock item. Its quantity is mutated only by invoice lines that
// reference it (sales draw down, purchases receive) and restored when the
// invoice is reversed.
type Item struct {
	ID        int             `gorm:"primary_key" json:"id"`
	Name      string          `gorm:"size:100;not null" json:"name" binding:"required"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	Quantity  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewItem struct {
	Name      string          `json:"name" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  decimal.Decimal `json:"quantity"`
}

func (input *NewItem) validate(db *gorm.DB, id int) error {
	if strings.TrimSpace(input.Name) == "" {
		return utils.NewValidationError("name", "must not be empty")
	}
	if input.UnitPrice.IsNegative() {
		return utils.NewValidationError("unit_price", "must not be negative")
	}
	if input.Quantity.IsNegative() {
		return utils.NewValidationError("quantity", "must not be negative")
	}
	return validateUnique(db, "items", "name", input.Name, id)
}

func (l *Ledger) CreateItem(ctx context.Context, input *NewItem) (*Item, error) {
	db := l.db.WithContext(ctx)
	if err := input.validate(db, 0); err != nil {
		return nil, err
	}
	item := Item{
		Name:      input.Name,
		UnitPrice: input.UnitPrice,
		Quantity:  input.Quantity,
	}
	if err := db.Create(&item).Error; err != nil {
		return nil, translateDBError("CreateItem", err)
	}
	return &item, nil
}

func (l *Ledger) UpdateItem(ctx context.Context, id int, input *NewItem) (*Item, error) {
	db := l.db.WithContext(ctx)
	if err := input.validate(db, id); err != nil {
		return nil, err
	}

	var item Item
	err := l.transact(ctx, "UpdateItem", func(tx *gorm.DB) error {
		if err := tx.First(&item, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("item", id)
			}
			return err
		}
		// Quantity is owned by invoice effects; edits touch name and price.
		item.Name = input.Name
		item.UnitPrice = input.UnitPrice
		return tx.Model(&item).Select("name", "unit_price").Updates(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteItem removes a stock item; rejected while any stock remains.
func (l *Ledger) DeleteItem(ctx context.Context, id int) error {
	return l.transact(ctx, "DeleteItem", func(tx *gorm.DB) error {
		var item Item
		if err := tx.First(&item, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("item", id)
			}
			return err
		}
		if !item.Quantity.IsZero() {
			return utils.NewValidationError("quantity", "item quantity must be zero before deletion")
		}
		return tx.Delete(&Item{}, id).Error
	})
}

func (l *Ledger) GetItem(ctx context.Context, id int) (*Item, error) {
	var item Item
	if err := l.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("item", id)
		}
		return nil, err
	}
	return &item, nil
}

func (l *Ledger) GetItems(ctx context.Context) ([]*Item, error) {
	var items []*Item
	if err := l.db.WithContext(ctx).Order("name").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// adjustItemQuantity applies delta to an item's stock with one additive
// UPDATE inside the caller's transaction.
func adjustItemQuantity(tx *gorm.DB, itemId int, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	res := tx.Model(&Item{}).
		Where("id = ?", itemId).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.NewNotFoundError("item", itemId)
	}
	return nil
}
