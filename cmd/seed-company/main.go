package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mmdatafocus/retail_backend/config"
	"github.com/mmdatafocus/retail_backend/models"
	"github.com/mmdatafocus/retail_backend/utils"
)

// Seeds a company with its active fiscal year, the five fixed ledger
// accounts the posting protocol resolves by name, and an admin user.
func main() {
	companyName := flag.String("company-name", "", "Required: company name")
	timezone := flag.String("timezone", "Asia/Kathmandu", "Company timezone")
	fiscalYearName := flag.String("fiscal-year", "", "Required: fiscal year name, e.g. 2082/83")
	adminUsername := flag.String("admin-username", "admin", "Admin username")
	adminPassword := flag.String("admin-password", "", "Required: admin password")
	flag.Parse()

	if strings.TrimSpace(*companyName) == "" {
		fmt.Fprintln(os.Stderr, "--company-name is required")
		os.Exit(1)
	}
	if strings.TrimSpace(*fiscalYearName) == "" {
		fmt.Fprintln(os.Stderr, "--fiscal-year is required")
		os.Exit(1)
	}
	if strings.TrimSpace(*adminPassword) == "" {
		fmt.Fprintln(os.Stderr, "--admin-password is required")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}
	models.MigrateTable()

	companyId := uuid.NewString()
	err := db.Transaction(func(tx *gorm.DB) error {
		company := models.Company{
			ID:       companyId,
			Name:     *companyName,
			Timezone: *timezone,
		}
		if err := tx.Create(&company).Error; err != nil {
			return err
		}

		start := time.Now()
		fiscalYear := models.FiscalYear{
			CompanyId: companyId,
			Name:      *fiscalYearName,
			StartDate: start,
			EndDate:   start.AddDate(1, 0, 0),
			IsActive:  utils.NewTrue(),
		}
		if err := tx.Create(&fiscalYear).Error; err != nil {
			return err
		}

		systemAccounts := []string{
			models.AccountNamePurchase,
			models.AccountNameSales,
			models.AccountNameVat,
			models.AccountNameRoundedOff,
			models.AccountNameCashInHand,
		}
		for _, name := range systemAccounts {
			account := models.Account{
				CompanyId:   companyId,
				Name:        name,
				AccountType: models.AccountTypeSystem,
			}
			if err := tx.Create(&account).Error; err != nil {
				return err
			}
		}

		hashed, err := utils.HashPassword(*adminPassword)
		if err != nil {
			return err
		}
		admin := models.User{
			CompanyId: companyId,
			Name:      "Administrator",
			Username:  *adminUsername,
			Password:  string(hashed),
			IsAdmin:   utils.NewTrue(),
		}
		return tx.Create(&admin).Error
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("seeded company", companyId)
}
