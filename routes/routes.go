package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/mmdatafocus/retail_backend/controllers"
)

func RegisterRoutes(router *gin.Engine) {
	router.POST("/login", controllers.Login)

	api := router.Group("/api")
	{
		// Master data
		api.POST("/items", controllers.CreateItem)
		api.GET("/items", controllers.ListItems)
		api.GET("/items/:id", controllers.GetItem)
		api.POST("/accounts", controllers.CreateAccount)
		api.GET("/accounts", controllers.ListAccounts)
		api.GET("/accounts/:id", controllers.GetAccount)

		// Documents: create posts atomically, update reverses then reapplies.
		api.POST("/purchases", controllers.CreatePurchase)
		api.PUT("/purchases/:id", controllers.UpdatePurchase)
		api.GET("/purchases", controllers.ListPurchases)
		api.GET("/purchases/:id", controllers.GetPurchase)

		api.POST("/purchase-returns", controllers.CreatePurchaseReturn)
		api.PUT("/purchase-returns/:id", controllers.UpdatePurchaseReturn)
		api.GET("/purchase-returns", controllers.ListPurchaseReturns)
		api.GET("/purchase-returns/:id", controllers.GetPurchaseReturn)

		api.POST("/sales-invoices", controllers.CreateSalesInvoice)
		api.PUT("/sales-invoices/:id", controllers.UpdateSalesInvoice)
		api.GET("/sales-invoices", controllers.ListSalesInvoices)
		api.GET("/sales-invoices/:id", controllers.GetSalesInvoice)

		api.POST("/sales-returns", controllers.CreateSalesReturn)
		api.PUT("/sales-returns/:id", controllers.UpdateSalesReturn)
		api.GET("/sales-returns", controllers.ListSalesReturns)
		api.GET("/sales-returns/:id", controllers.GetSalesReturn)

		// Preferences
		api.PUT("/preferences/round-off", controllers.SaveRoundOffPreference)

		// Reports
		api.GET("/reports/expiry", controllers.GetExpiryReport)
		api.GET("/reports/expiry/export", controllers.ExportExpiryReport)
		api.GET("/reports/stock-summary", controllers.GetStockSummary)
		api.GET("/reports/accounts/:id/statement", controllers.GetAccountStatement)
		api.GET("/reports/documents/:type/:id/ledger", controllers.GetDocumentLedger)
	}
}
