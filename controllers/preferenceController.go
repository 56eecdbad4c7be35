package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmdatafocus/retail_backend/config"
	"github.com/mmdatafocus/retail_backend/models"
	"github.com/mmdatafocus/retail_backend/utils"
)

type roundOffPreferenceInput struct {
	DocumentType     models.DocumentType `json:"document_type" binding:"required"`
	Enabled          *bool               `json:"enabled" binding:"required"`
	UserScoped       bool                `json:"user_scoped"`
	FiscalYearScoped bool                `json:"fiscal_year_scoped"`
}

// SaveRoundOffPreference upserts the automatic round-off setting. The row's
// scope narrows with the two flags: company-wide by default, pinned to the
// caller's user and/or active fiscal year when set.
func SaveRoundOffPreference(c *gin.Context) {
	var input roundOffPreferenceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err)
		return
	}

	ctx := c.Request.Context()
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	pref := &models.RoundOffPreference{
		CompanyId:    companyId,
		DocumentType: input.DocumentType,
		Enabled:      input.Enabled,
	}
	if input.UserScoped {
		if userId, ok := utils.GetUserIdFromContext(ctx); ok {
			pref.UserId = &userId
		}
	}
	if input.FiscalYearScoped {
		if fiscalYearId, ok := utils.GetFiscalYearIdFromContext(ctx); ok {
			pref.FiscalYearId = &fiscalYearId
		}
	}

	db := config.GetDB()
	if err := models.SaveRoundOffPreference(db.WithContext(ctx), pref); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pref)
}
