package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fpadjusters/claims_backend/config"
	"github.com/fpadjusters/claims_backend/utils"
)

// Insurer is an insurance carrier the tenant files claims against.
type Insurer struct {
	ID        int       `gorm:"primary_key" json:"id"`
	TenantId  string    `gorm:"index;size:36;not null" json:"tenant_id"`
	Name      string    `gorm:"size:150;not null" json:"name" binding:"required"`
	Phone     string    `gorm:"size:30" json:"phone"`
	Email     string    `gorm:"size:100" json:"email"`
	Address   string    `gorm:"size:255" json:"address"`
	NaicCode  string    `gorm:"size:20" json:"naic_code"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewInsurer struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	NaicCode string `json:"naic_code"`
}

func CreateInsurer(ctx context.Context, input *NewInsurer) (*Insurer, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, errors.New("tenant id is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.New("insurer name is required")
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return nil, errors.New("invalid email address")
	}

	result := Insurer{
		TenantId: tenantId,
		Name:     strings.TrimSpace(input.Name),
		Phone:    utils.FormatPhoneNumber(input.Phone, utils.CountryCode),
		Email:    strings.ToLower(input.Email),
		Address:  input.Address,
		NaicCode: input.NaicCode,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&result).Error; err != nil {
		return nil, wrapDB(err)
	}
	return &result, nil
}

func GetInsurer(ctx context.Context, id int) (*Insurer, error) {
	return getScoped[Insurer](ctx, id)
}

func ListInsurers(ctx context.Context) ([]*Insurer, error) {
	return listScoped[Insurer](ctx, "", nil)
}

func UpdateInsurer(ctx context.Context, id int, input *NewInsurer) (*Insurer, error) {
	result, err := getScoped[Insurer](ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if strings.TrimSpace(input.Name) != "" {
		updates["name"] = strings.TrimSpace(input.Name)
	}
	if input.Phone != "" {
		updates["phone"] = utils.FormatPhoneNumber(input.Phone, utils.CountryCode)
	}
	if input.Email != "" {
		if !utils.IsValidEmail(input.Email) {
			return nil, errors.New("invalid email address")
		}
		updates["email"] = strings.ToLower(input.Email)
	}
	if input.Address != "" {
		updates["address"] = input.Address
	}
	if input.NaicCode != "" {
		updates["naic_code"] = input.NaicCode
	}
	if len(updates) == 0 {
		return result, nil
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(result).Updates(updates).Error; err != nil {
		return nil, wrapDB(err)
	}
	return result, nil
}

func DeleteInsurer(ctx context.Context, id int) (*Insurer, error) {
	return deleteScoped[Insurer](ctx, id)
}
