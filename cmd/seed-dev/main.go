// seed-dev migrates the ledger database and inserts the starter rows the
// app expects on first open: a walk-in cash customer and supplier plus one
// demo party of each type. Existing rows (matched by name) are left alone.
//
// Usage:
//
//	DB_PATH=daftar.db go run ./cmd/seed-dev
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/daftarhq/daftar_backend/config"
	"github.com/daftarhq/daftar_backend/models"
	"github.com/daftarhq/daftar_backend/utils"
)

func main() {
	ctx := context.Background()

	db, err := config.OpenDatabase("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		os.Exit(1)
	}
	if err := models.MigrateTable(db); err != nil {
		fmt.Fprintf(os.Stderr, "failed to migrate: %v\n", err)
		os.Exit(1)
	}

	ledger := models.NewLedger(db, config.GetLogger())

	customers := []*models.NewCustomer{
		{Name: "عميل نقدي"},
		{Name: "أحمد محمد", Email: "ahmed@example.com", Phone: "0501234567"},
	}
	for _, input := range customers {
		if _, err := ledger.CreateCustomer(ctx, input); err != nil {
			if utils.IsValidation(err) {
				continue // already seeded
			}
			fmt.Fprintf(os.Stderr, "failed to seed customer %q: %v\n", input.Name, err)
			os.Exit(1)
		}
		fmt.Println("seeded customer:", input.Name)
	}

	suppliers := []*models.NewSupplier{
		{Name: "مورد نقدي"},
		{Name: "شركة التوريدات الحديثة", Email: "supply@example.com", Phone: "0557654321"},
	}
	for _, input := range suppliers {
		if _, err := ledger.CreateSupplier(ctx, input); err != nil {
			if utils.IsValidation(err) {
				continue
			}
			fmt.Fprintf(os.Stderr, "failed to seed supplier %q: %v\n", input.Name, err)
			os.Exit(1)
		}
		fmt.Println("seeded supplier:", input.Name)
	}
}
