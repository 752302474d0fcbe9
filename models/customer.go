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

type Customer struct {
	ID        int             `gorm:"primary_key" json:"id"`
	Name      string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Email     string          `gorm:"size:100" json:"email"`
	Phone     string          `gorm:"size:20" json:"phone"`
	Balance   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"balance"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCustomer struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (input *NewCustomer) validate(db *gorm.DB, id int) error {
	if strings.TrimSpace(input.Name) == "" {
		return utils.NewValidationError("name", "must not be empty")
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return utils.NewValidationError("email", "invalid email address")
	}
	// validate unique name
	if err := validateUnique(db, "customers", "name", input.Name, id); err != nil {
		return err
	}
	return nil
}

func (l *Ledger) CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {
	db := l.db.WithContext(ctx)
	if err := input.validate(db, 0); err != nil {
		return nil, err
	}

	// A party always starts with a zero balance; only ledger operations
	// may move it afterwards.
	customer := Customer{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Balance: decimal.Zero,
	}
	if err := db.Create(&customer).Error; err != nil {
		return nil, translateDBError("CreateCustomer", err)
	}
	return &customer, nil
}

func (l *Ledger) UpdateCustomer(ctx context.Context, id int, input *NewCustomer) (*Customer, error) {
	db := l.db.WithContext(ctx)
	if err := input.validate(db, id); err != nil {
		return nil, err
	}

	var customer Customer
	err := l.transact(ctx, "UpdateCustomer", func(tx *gorm.DB) error {
		if err := tx.First(&customer, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("customer", id)
			}
			return err
		}
		// Contact fields only; the balance is owned by the engine.
		customer.Name = input.Name
		customer.Email = input.Email
		customer.Phone = input.Phone
		return tx.Model(&customer).Select("name", "email", "phone").Updates(&customer).Error
	})
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// DeleteCustomer removes a customer. A party holding a non-zero balance
// still has open invoices or unreconciled cash entries and cannot be
// deleted.
func (l *Ledger) DeleteCustomer(ctx context.Context, id int) error {
	return l.transact(ctx, "DeleteCustomer", func(tx *gorm.DB) error {
		var customer Customer
		if err := tx.First(&customer, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("customer", id)
			}
			return err
		}
		if !customer.Balance.IsZero() {
			return utils.NewValidationError("balance", "customer balance must be zero before deletion")
		}
		return tx.Delete(&Customer{}, id).Error
	})
}

func (l *Ledger) GetCustomer(ctx context.Context, id int) (*Customer, error) {
	var customer Customer
	if err := l.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("customer", id)
		}
		return nil, err
	}
	return &customer, nil
}

func (l *Ledger) GetCustomers(ctx context.Context, name *string) ([]*Customer, error) {
	var customers []*Customer
	dbCtx := l.db.WithContext(ctx).Model(&Customer{})
	if name != nil && *name != "" {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if err := dbCtx.Order("name").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}
