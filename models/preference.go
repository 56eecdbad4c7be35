package models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mmdatafocus/retail_backend/config"
)

// RoundOffPreference is the external round-off policy source: whether a
// document's total is automatically rounded to the nearest whole figure.
// Scope narrows from company-wide down to (user, fiscal year, type); the
// most specific matching row wins. Absent rows mean "manual round-off".
type RoundOffPreference struct {
	ID           int          `gorm:"primary_key" json:"id"`
	CompanyId    string       `gorm:"index;not null" json:"company_id" binding:"required"`
	UserId       *int         `gorm:"index" json:"user_id"`
	FiscalYearId *int         `gorm:"index" json:"fiscal_year_id"`
	DocumentType DocumentType `gorm:"size:10;not null" json:"document_type"`
	Enabled      *bool        `gorm:"not null;default:false" json:"enabled"`
	CreatedAt    time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

type RoundOffPolicy struct {
	Enabled bool `json:"enabled"`
}

// GetRoundOffPolicy resolves the automatic round-off setting for one
// posting. Cached per scope key; SaveRoundOffPreference invalidates.
func GetRoundOffPolicy(tx *gorm.DB, companyId string, userId int, fiscalYearId int, documentType DocumentType) (*RoundOffPolicy, error) {
	cacheKey := roundOffCacheKey(companyId, userId, fiscalYearId, documentType)
	var policy RoundOffPolicy
	exists, err := config.GetRedisObject(cacheKey, &policy)
	if err != nil {
		return nil, err
	}
	if exists {
		return &policy, nil
	}

	var pref RoundOffPreference
	err = tx.Where("company_id = ? AND document_type = ?", companyId, documentType).
		Where("user_id = ? OR user_id IS NULL", userId).
		Where("fiscal_year_id = ? OR fiscal_year_id IS NULL", fiscalYearId).
		Order("user_id IS NULL, fiscal_year_id IS NULL").
		First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		policy = RoundOffPolicy{Enabled: false}
	} else if err != nil {
		return nil, err
	} else {
		policy = RoundOffPolicy{Enabled: pref.Enabled != nil && *pref.Enabled}
	}

	if err := config.SetRedisObject(cacheKey, &policy, 10*time.Minute); err != nil {
		return nil, err
	}
	return &policy, nil
}

func SaveRoundOffPreference(tx *gorm.DB, pref *RoundOffPreference) error {
	if err := tx.Save(pref).Error; err != nil {
		return err
	}
	userId := 0
	if pref.UserId != nil {
		userId = *pref.UserId
	}
	fiscalYearId := 0
	if pref.FiscalYearId != nil {
		fiscalYearId = *pref.FiscalYearId
	}
	return config.DeleteRedisKey(roundOffCacheKey(pref.CompanyId, userId, fiscalYearId, pref.DocumentType))
}

func roundOffCacheKey(companyId string, userId int, fiscalYearId int, documentType DocumentType) string {
	return fmt.Sprintf("RoundOffPolicy:%s:%d:%d:%s", companyId, userId, fiscalYearId, documentType)
}
