package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/mmdatafocus/retail_backend/utils"
)

// respondError maps domain errors to HTTP statuses. Posting errors carry a
// stable code the frontend switches on; everything else is opaque.
func respondError(c *gin.Context, err error) {
	var postingErr *utils.PostingError
	if errors.As(err, &postingErr) {
		status := http.StatusBadRequest
		switch postingErr.Code {
		case utils.ErrCodeBatchNotFound, utils.ErrCodeAccountNotFound:
			status = http.StatusNotFound
		case utils.ErrCodeInsufficientStock:
			status = http.StatusUnprocessableEntity
		case utils.ErrCodeConcurrencyConflict:
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"code": postingErr.Code, "error": postingErr.Detail})
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, utils.ErrorRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func respondBindingError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": utils.ProcessValidationErrors(err)})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func pathId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
