package models

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mmdatafocus/retail_backend/config"
	"github.com/mmdatafocus/retail_backend/utils"
)

type Account struct {
	ID             int             `gorm:"primary_key" json:"id"`
	CompanyId      string          `gorm:"index;not null" json:"company_id" binding:"required"`
	Name           string          `gorm:"size:255;not null;index" json:"name" binding:"required"`
	AccountType    AccountType     `gorm:"type:enum('party','system');default:party" json:"account_type"`
	Address        string          `gorm:"size:255" json:"address"`
	PanNumber      string          `gorm:"size:100" json:"pan_number"`
	OpeningBalance decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"opening_balance"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewAccount struct {
	Name           string          `json:"name" binding:"required"`
	AccountType    AccountType     `json:"account_type"`
	Address        string          `json:"address"`
	PanNumber      string          `json:"pan_number"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// LedgerAccountSet is the typed resolution of the fixed semantic account
// names the posting protocol needs. Resolving once per company (fail fast
// at configuration time) replaces free-text name lookups mid-transaction.
type LedgerAccountSet struct {
	Purchase   int `json:"purchase"`
	Sales      int `json:"sales"`
	Vat        int `json:"vat"`
	RoundedOff int `json:"rounded_off"`
	CashInHand int `json:"cash_in_hand"`
}

func FindAccountById(tx *gorm.DB, companyId string, id int) (*Account, error) {
	var account Account
	err := tx.Where("company_id = ? AND id = ?", companyId, id).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewValidationError("account %d not found", id)
		}
		return nil, err
	}
	return &account, nil
}

func FindAccountByName(tx *gorm.DB, companyId string, name string) (*Account, error) {
	var account Account
	err := tx.Where("company_id = ? AND name = ?", companyId, name).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewAccountNotFoundError(name)
		}
		return nil, err
	}
	return &account, nil
}

// GetLedgerAccountSet resolves the fixed-name accounts for a company.
// The resolved set is cached in redis; InvalidateLedgerAccountSet must be
// called whenever a system account is renamed or recreated.
func GetLedgerAccountSet(tx *gorm.DB, companyId string) (*LedgerAccountSet, error) {
	var set LedgerAccountSet
	exists, err := config.GetRedisObject("LedgerAccountSet:"+companyId, &set)
	if err != nil {
		return nil, err
	}
	if exists {
		return &set, nil
	}

	names := map[string]*int{
		AccountNamePurchase:   &set.Purchase,
		AccountNameSales:      &set.Sales,
		AccountNameVat:        &set.Vat,
		AccountNameRoundedOff: &set.RoundedOff,
		AccountNameCashInHand: &set.CashInHand,
	}
	for name, target := range names {
		account, err := FindAccountByName(tx, companyId, name)
		if err != nil {
			return nil, err
		}
		*target = account.ID
	}
	if err := config.SetRedisObject("LedgerAccountSet:"+companyId, &set, 0); err != nil {
		return nil, err
	}
	return &set, nil
}

func InvalidateLedgerAccountSet(companyId string) error {
	return config.DeleteRedisKey("LedgerAccountSet:" + companyId)
}

func CreateAccount(ctx context.Context, input *NewAccount) (*Account, error) {
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, utils.NewValidationError("company id is required")
	}
	if err := utils.ValidateUnique[Account](ctx, companyId, "name", input.Name, 0); err != nil {
		return nil, err
	}

	accountType := input.AccountType
	if accountType == "" {
		accountType = AccountTypeParty
	}
	account := Account{
		CompanyId:      companyId,
		Name:           input.Name,
		AccountType:    accountType,
		Address:        input.Address,
		PanNumber:      input.PanNumber,
		OpeningBalance: input.OpeningBalance,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&account).Error; err != nil {
		return nil, err
	}
	if accountType == AccountTypeSystem {
		if err := InvalidateLedgerAccountSet(companyId); err != nil {
			return nil, err
		}
	}
	return &account, nil
}
