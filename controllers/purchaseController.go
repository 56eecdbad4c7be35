package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmdatafocus/retail_backend/models"
	"github.com/mmdatafocus/retail_backend/utils"
	"github.com/mmdatafocus/retail_backend/workflow"
)

func CreatePurchase(c *gin.Context) {
	var input models.NewPurchase
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err)
		return
	}

	doc, err := workflow.CreatePurchase(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func UpdatePurchase(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewPurchase
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err)
		return
	}

	doc, err := workflow.UpdatePurchase(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func GetPurchase(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	companyId, ok := utils.GetCompanyIdFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	doc, err := utils.FetchModel[models.Purchase](c.Request.Context(), companyId, id, "Details")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func ListPurchases(c *gin.Context) {
	companyId, ok := utils.GetCompanyIdFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	docs, err := utils.FetchAllModels[models.Purchase](c.Request.Context(), companyId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}
