package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/retail_backend/config"
	"github.com/mmdatafocus/retail_backend/utils"
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	CompanyId string    `gorm:"index;not null" json:"company_id" binding:"required"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Username  string    `gorm:"size:100;not null;uniqueIndex" json:"username" binding:"required"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	IsAdmin   *bool     `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Login(ctx context.Context, input *LoginInput) (*User, string, error) {
	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).Where("username = ?", input.Username).First(&user).Error; err != nil {
		return nil, "", utils.NewValidationError("invalid username or password")
	}
	if err := utils.ComparePassword(user.Password, input.Password); err != nil {
		return nil, "", utils.NewValidationError("invalid username or password")
	}

	var fiscalYear FiscalYear
	if err := db.WithContext(ctx).Where("company_id = ? AND is_active = ?", user.CompanyId, true).First(&fiscalYear).Error; err != nil {
		return nil, "", utils.NewValidationError("no active fiscal year for company")
	}

	token, err := utils.JwtGenerate(user.ID, user.CompanyId, fiscalYear.ID)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}
