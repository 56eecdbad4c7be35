package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/retail_backend/utils"
)

type Company struct {
	ID        string    `gorm:"primary_key;size:64" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name" binding:"required"`
	Address   string    `gorm:"size:255" json:"address"`
	VatNumber string    `gorm:"size:100" json:"vat_number"`
	Timezone  string    `gorm:"size:100;default:'Asia/Kathmandu'" json:"timezone"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type FiscalYear struct {
	ID        int       `gorm:"primary_key" json:"id"`
	CompanyId string    `gorm:"index;not null" json:"company_id" binding:"required"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	StartDate time.Time `gorm:"not null" json:"start_date" binding:"required"`
	EndDate   time.Time `gorm:"not null" json:"end_date" binding:"required"`
	IsActive  *bool     `gorm:"not null;default:false" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetCompanyById(ctx context.Context, companyId string) (*Company, error) {
	return utils.FetchSingleModelByKey[Company](ctx, "id", companyId)
}

func GetFiscalYear(ctx context.Context, companyId string, fiscalYearId int) (*FiscalYear, error) {
	return utils.FetchModel[FiscalYear](ctx, companyId, fiscalYearId)
}
