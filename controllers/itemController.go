package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmdatafocus/retail_backend/models"
	"github.com/mmdatafocus/retail_backend/utils"
)

func CreateItem(c *gin.Context) {
	var input models.NewItem
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err)
		return
	}

	item, err := models.CreateItem(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func ListItems(c *gin.Context) {
	companyId, ok := utils.GetCompanyIdFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	items, err := utils.FetchAllModels[models.Item](c.Request.Context(), companyId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetItem returns the item with its batches sorted by expiry urgency;
// statuses are recomputed on read.
func GetItem(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}

	item, err := models.GetItemWithBatches(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}
