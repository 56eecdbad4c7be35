package models

import (
	"log"

	"github.com/mmdatafocus/retail_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Company{}, &FiscalYear{}, &User{},
		&Account{},
		&Item{}, &Batch{},
		&DocumentNumberSeries{}, &RoundOffPreference{},
		&Purchase{}, &PurchaseDetail{},
		&PurchaseReturn{}, &PurchaseReturnDetail{},
		&SalesInvoice{}, &SalesInvoiceDetail{},
		&SalesReturn{}, &SalesReturnDetail{},
		&LedgerTransaction{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
