package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/daftarhq/daftar_backend/config"
	"github.com/daftarhq/daftar_backend/models"
	"github.com/daftarhq/daftar_backend/utils"
)

const defaultPort = "8080"

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	db, err := config.OpenDatabase("")
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "database"}).Fatal(err.Error())
	}
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()

	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		if err := models.MigrateTable(db); err != nil {
			logger.WithFields(logrus.Fields{"field": "migrations"}).Fatal(err.Error())
		}
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	ledger := models.NewLedger(db, logger)

	r := gin.New()
	r.Use(gin.Recovery())
	// Correlation IDs: generate once per request and attach to context.
	r.Use(func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	})

	corsConfig := cors.DefaultConfig()
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length")
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	api := r.Group("/api")
	{
		api.GET("/customers", listCustomersHandler(ledger))
		api.POST("/customers", createCustomerHandler(ledger))
		api.GET("/customers/:id", getCustomerHandler(ledger))
		api.PUT("/customers/:id", updateCustomerHandler(ledger))
		api.DELETE("/customers/:id", deleteCustomerHandler(ledger))

		api.GET("/suppliers", listSuppliersHandler(ledger))
		api.POST("/suppliers", createSupplierHandler(ledger))
		api.GET("/suppliers/:id", getSupplierHandler(ledger))
		api.PUT("/suppliers/:id", updateSupplierHandler(ledger))
		api.DELETE("/suppliers/:id", deleteSupplierHandler(ledger))

		api.GET("/items", listItemsHandler(ledger))
		api.POST("/items", createItemHandler(ledger))
		api.GET("/items/:id", getItemHandler(ledger))
		api.PUT("/items/:id", updateItemHandler(ledger))
		api.DELETE("/items/:id", deleteItemHandler(ledger))

		api.GET("/invoices/:kind", listInvoicesHandler(ledger))
		api.POST("/invoices/:kind", createInvoiceHandler(ledger))
		api.GET("/invoices/:kind/:id", getInvoiceHandler(ledger))
		api.PUT("/invoices/:kind/:id", updateInvoiceHandler(ledger))
		api.DELETE("/invoices/:kind/:id", deleteInvoiceHandler(ledger))
		api.POST("/invoices/:kind/:id/payments", recordPaymentHandler(ledger))

		api.GET("/cash-entries", listCashEntriesHandler(ledger))
		api.POST("/cash-entries", addCashEntryHandler(ledger))
		api.GET("/cash-entries/:id", getCashEntryHandler(ledger))
		api.DELETE("/cash-entries/:id", deleteCashEntryHandler(ledger))
		api.GET("/cash-on-hand", cashOnHandHandler(ledger))

		api.GET("/reports/profit-loss", profitLossHandler(ledger))
		api.GET("/reports/daily-sales", dailySalesHandler(ledger))
		api.GET("/reports/party-statement", partyStatementHandler(ledger))
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()

	logger.WithFields(logrus.Fields{"info": "Connection Established"}).
		Info("listening on http://localhost:", port)

	select {
	case <-sigCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithFields(logrus.Fields{"field": "shutdown"}).Error(err.Error())
		}
	case err := <-serverErrCh:
		if err != nil && err != http.ErrServerClosed {
			logger.WithFields(logrus.Fields{"field": "server"}).Fatal(err.Error())
		}
	}
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// writeError maps the engine's typed failures onto HTTP statuses. The
// ledger is guaranteed unchanged whenever one of these is returned.
func writeError(c *gin.Context, err error) {
	switch {
	case utils.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case utils.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case utils.IsOverpayment(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		var conflict *utils.ConcurrencyConflict
		if errors.As(err, &conflict) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func kindParam(c *gin.Context) (models.InvoiceKind, bool) {
	kind, err := models.ParseInvoiceKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return kind, true
}

func dateQuery(c *gin.Context, name string, fallback time.Time) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " date; want YYYY-MM-DD"})
		return time.Time{}, false
	}
	return t, true
}

func createCustomerHandler(ledger *models.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewCustomer
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "fields": utils.ProcessValidationErrors(err)})
			return
		}
		customer, err := ledger.CreateCustomer(c.Request.Context(), &input)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, customer)
	}
}

func getCustomerHandler(ledger *models.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		customer, err := ledger.GetCustomer(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, customer)
	}
}

func listCustomersHandler(ledger *models.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := utils.NilIfEmpty(strings.TrimSpace(c.Query("name")))
		customers, err := ledger.GetCustomers(c.Request.Context(), name)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, customers)
	}
}

func updateCustomerHandler(ledger *models.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewCustomer
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "fields": utils.ProcessValidationErrors(err)})
			return
		}
		customer, err := ledger.UpdateCustomer(c.Request.Context(), id, &input)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, customer)
	}
}

func deleteCustomerHandler(ledger *models.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		if err := ledger.DeleteCustomer(c.Request.Context(), id); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func createSupplierHandler(ledger *models.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewSupplier
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "fields": utils.ProcessValidationErrors(err)})
			return
		}
		supplier, err := ledger.CreateSupplier(c.Request.Context(), &input)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, supplier)
	}
}

func getSupplierHandler(ledger *models.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		supplier, err := ledger.GetSupplier(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, supplier)
	}
}

func listSuppliersHandler(ledger *models.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := utils.NilIfEmpty(strings.TrimSpace(c.Query("name")))
		suppliers, err := ledger.GetSuppliers(c.Request.Context(), name)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, suppliers)
	}
}

func updateSupplierHandler(ledger *models.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewSupplier
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "fields": utils.ProcessValidationErrors(err)})
			return
		}
		supplier, err := ledger.UpdateSupplier(c.Request.Context(), id, &input)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, supplier)
	}
}

func deleteSupplierHandler(ledger *models.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		if err := ledger.DeleteSupplier(c.Request.Context(), id); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func createItemHandler(ledger *models.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewItem
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "fields": utils.ProcessValidationErrors(err)})
			return
		}
		item, err := ledger.CreateItem(c.Request.Context(), &input)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

func getItemHandler(ledger *models.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		item, err := ledger.GetItem(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func listItemsHandler(ledger *models.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := ledger.GetItems(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

func updateItemHandler(ledger *models.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewItem
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "fields": utils.ProcessValidationErrors(err)})
			return
		}
		item, err := ledger.UpdateItem(c.Request.Context(), id, &input)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func deleteItemHandler(ledger *models.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		if err := ledger.DeleteItem(c.Request.Context(), id); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func createInvoiceHandler(ledger *models.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, ok := kindParam(c)
		if !ok {
			return
		}
		var input models.NewInvoice
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "fields": utils.ProcessValidationErrors(err)})
			return
		}
		invoice, err := ledger.CreateInvoice(c.Request.Context(), kind, &input)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, invoice)
	}
}

func getInvoiceHandler(ledger *models.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, ok := kindParam(c)
		if !ok {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		invoice, err := ledger.GetInvoice(c.Request.Context(), kind, id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, invoice)
	}
}

func listInvoicesHandler(ledger *models.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, ok := kindParam(c)
		if !ok {
			return
		}
		var partyId *int
		if raw := c.Query("party_id"); raw != "" {
			id, err := strconv.Atoi(raw)
			if err != nil || id <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid party_id"})
				return
			}
			partyId = &id
		}
		invoices, err := ledger.GetInvoices(c.Request.Context(), kind, partyId)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, invoices)
	}
}

func updateInvoiceHandler(ledger *models.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, ok := kindParam(c)
		if !ok {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewInvoice
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "fields": utils.ProcessValidationErrors(err)})
			return
		}
		invoice, err := ledger.UpdateInvoice(c.Request.Context(), kind, id, &input)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, invoice)
	}
}

func deleteInvoiceHandler(ledger *models.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, ok := kindParam(c)
		if !ok {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		if err := ledger.DeleteInvoice(c.Request.Context(), kind, id); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func recordPaymentHandler(ledger *models.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, ok := kindParam(c)
		if !ok {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewPayment
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "fields": utils.ProcessValidationErrors(err)})
			return
		}
		entry, err := ledger.RecordPayment(c.Request.Context(), kind, id, &input)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, entry)
	}
}

func addCashEntryHandler(ledger *models.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewCashEntry
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "fields": utils.ProcessValidationErrors(err)})
			return
		}
		entry, err := ledger.AddCashEntry(c.Request.Context(), &input)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, entry)
	}
}

func listCashEntriesHandler(ledger *models.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := ledger.GetCashEntries(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}

func getCashEntryHandler(ledger *models.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		entry, err := ledger.GetCashEntry(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, entry)
	}
}

func deleteCashEntryHandler(ledger *models.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		if err := ledger.DeleteCashEntry(c.Request.Context(), id); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func cashOnHandHandler(ledger *models.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		total, err := ledger.CashOnHand(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"cash_on_hand": total})
	}
}

func profitLossHandler(ledger *models.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, ok := dateQuery(c, "from", time.Time{})
		if !ok {
			return
		}
		to, ok := dateQuery(c, "to", time.Now().AddDate(0, 0, 1))
		if !ok {
			return
		}
		report, err := ledger.ProfitLoss(c.Request.Context(), from, to)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func dailySalesHandler(ledger *models.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, ok := dateQuery(c, "from", time.Time{})
		if !ok {
			return
		}
		to, ok := dateQuery(c, "to", time.Now().AddDate(0, 0, 1))
		if !ok {
			return
		}
		rows, err := ledger.DailySales(c.Request.Context(), from, to)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

func partyStatementHandler(ledger *models.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		partyType, err := models.ParsePartyType(c.Query("party_type"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		partyId, err := strconv.Atoi(c.Query("party_id"))
		if err != nil || partyId <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid party_id"})
			return
		}
		from, ok := dateQuery(c, "from", time.Time{})
		if !ok {
			return
		}
		to, ok := dateQuery(c, "to", time.Now().AddDate(0, 0, 1))
		if !ok {
			return
		}
		statement, err := ledger.PartyStatementFor(c.Request.Context(), partyType, partyId, from, to)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, statement)
	}
}
