package models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DocumentNumberSeries hands out unique, monotonic document numbers per
// (company, fiscal year, document type). The row is locked for the duration
// of the posting transaction, so two concurrent postings can never read the
// same next number.
type DocumentNumberSeries struct {
	ID           int          `gorm:"primary_key" json:"id"`
	CompanyId    string       `gorm:"index;not null;uniqueIndex:idx_series_scope,priority:1" json:"company_id"`
	FiscalYearId int          `gorm:"not null;uniqueIndex:idx_series_scope,priority:2" json:"fiscal_year_id"`
	DocumentType DocumentType `gorm:"size:10;not null;uniqueIndex:idx_series_scope,priority:3" json:"document_type"`
	Prefix       string       `gorm:"size:20" json:"prefix"`
	NextNumber   int          `gorm:"not null;default:1" json:"next_number"`
	CreatedAt    time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

// NextDocumentNumber reserves and formats the next number inside tx.
// A missing series row is created lazily with a default prefix.
func NextDocumentNumber(tx *gorm.DB, companyId string, fiscalYearId int, documentType DocumentType) (string, int, error) {
	var series DocumentNumberSeries
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("company_id = ? AND fiscal_year_id = ? AND document_type = ?", companyId, fiscalYearId, documentType).
		First(&series).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		series = DocumentNumberSeries{
			CompanyId:    companyId,
			FiscalYearId: fiscalYearId,
			DocumentType: documentType,
			Prefix:       string(documentType),
			NextNumber:   1,
		}
		if err := tx.Create(&series).Error; err != nil {
			return "", 0, err
		}
	} else if err != nil {
		return "", 0, err
	}

	sequenceNo := series.NextNumber
	if err := tx.Model(&DocumentNumberSeries{}).
		Where("id = ?", series.ID).
		Update("next_number", gorm.Expr("next_number + 1")).Error; err != nil {
		return "", 0, err
	}

	return fmt.Sprintf("%s-%04d", series.Prefix, sequenceNo), sequenceNo, nil
}
