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

type Supplier struct {
	ID        int             `gorm:"primary_key" json:"id"`
	Name      string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Email     string          `gorm:"size:100" json:"email"`
	Phone     string          `gorm:"size:20" json:"phone"`
	Balance   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"balance"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSupplier struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (input *NewSupplier) validate(db *gorm.DB, id int) error {
	if strings.TrimSpace(input.Name) == "" {
		return utils.NewValidationError("name", "must not be empty")
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return utils.NewValidationError("email", "invalid email address")
	}
	if err := validateUnique(db, "suppliers", "name", input.Name, id); err != nil {
		return err
	}
	return nil
}

func (l *Ledger) CreateSupplier(ctx context.Context, input *NewSupplier) (*Supplier, error) {
	db := l.db.WithContext(ctx)
	if err := input.validate(db, 0); err != nil {
		return nil, err
	}

	supplier := Supplier{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Balance: decimal.Zero,
	}
	if err := db.Create(&supplier).Error; err != nil {
		return nil, translateDBError("CreateSupplier", err)
	}
	return &supplier, nil
}

func (l *Ledger) UpdateSupplier(ctx context.Context, id int, input *NewSupplier) (*Supplier, error) {
	db := l.db.WithContext(ctx)
	if err := input.validate(db, id); err != nil {
		return nil, err
	}

	var supplier Supplier
	err := l.transact(ctx, "UpdateSupplier", func(tx *gorm.DB) error {
		if err := tx.First(&supplier, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("supplier", id)
			}
			return err
		}
		supplier.Name = input.Name
		supplier.Email = input.Email
		supplier.Phone = input.Phone
		return tx.Model(&supplier).Select("name", "email", "phone").Updates(&supplier).Error
	})
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

// DeleteSupplier removes a supplier; rejected while the balance is non-zero.
func (l *Ledger) DeleteSupplier(ctx context.Context, id int) error {
	return l.transact(ctx, "DeleteSupplier", func(tx *gorm.DB) error {
		var supplier Supplier
		if err := tx.First(&supplier, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("supplier", id)
			}
			return err
		}
		if !supplier.Balance.IsZero() {
			return utils.NewValidationError("balance", "supplier balance must be zero before deletion")
		}
		return tx.Delete(&Supplier{}, id).Error
	})
}

func (l *Ledger) GetSupplier(ctx context.Context, id int) (*Supplier, error) {
	var supplier Supplier
	if err := l.db.WithContext(ctx).First(&supplier, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("supplier", id)
		}
		return nil, err
	}
	return &supplier, nil
}

func (l *Ledger) GetSuppliers(ctx context.Context, name *string) ([]*Supplier, error) {
	var suppliers []*Supplier
	dbCtx := l.db.WithContext(ctx).Model(&Supplier{})
	if name != nil && *name != "" {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if err := dbCtx.Order("name").Find(&suppliers).Error; err != nil {
		return nil, err
	}
	return suppliers, nil
}
