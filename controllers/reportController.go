package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mmdatafocus/retail_backend/config"
	"github.com/mmdatafocus/retail_backend/models"
	"github.com/mmdatafocus/retail_backend/models/reports"
	"github.com/mmdatafocus/retail_backend/utils"
)

func expiryStatusFilter(c *gin.Context) (*models.ExpiryStatus, bool) {
	raw := c.Query("status")
	if raw == "" {
		return nil, true
	}
	status := models.ExpiryStatus(raw)
	switch status {
	case models.ExpiryStatusSafe, models.ExpiryStatusWarning, models.ExpiryStatusDanger, models.ExpiryStatusExpired:
		return &status, true
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
	return nil, false
}

func GetExpiryReport(c *gin.Context) {
	status, ok := expiryStatusFilter(c)
	if !ok {
		return
	}

	rows, err := reports.GetExpiryReport(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func ExportExpiryReport(c *gin.Context) {
	status, ok := expiryStatusFilter(c)
	if !ok {
		return
	}

	if err := reports.ExportExpiryExcel(c.Request.Context(), c.Writer, status); err != nil {
		respondError(c, err)
	}
}

func GetStockSummary(c *gin.Context) {
	rows, err := reports.GetStockSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func GetAccountStatement(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}

	fromDate, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date, use YYYY-MM-DD"})
		return
	}
	toDate, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date, use YYYY-MM-DD"})
		return
	}
	// inclusive end of day
	toDate = toDate.Add(24*time.Hour - time.Nanosecond)

	statement, err := reports.GetAccountStatement(c.Request.Context(), id, fromDate, toDate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, statement)
}

// GetDocumentLedger returns the posting set one document produced, in
// posting order.
func GetDocumentLedger(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	docType := models.DocumentType(c.Param("type"))
	switch docType {
	case models.DocumentTypePurchase, models.DocumentTypePurchaseReturn,
		models.DocumentTypeSalesInvoice, models.DocumentTypeSalesReturn:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document type"})
		return
	}

	ctx := c.Request.Context()
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	db := config.GetDB()
	entries, err := models.GetLedgerTransactionsForDocument(db.WithContext(ctx), companyId, docType, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
