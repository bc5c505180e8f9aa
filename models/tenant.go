package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fpadjusters/claims_backend/config"
	"github.com/fpadjusters/claims_backend/utils"
	"github.com/google/uuid"
)

// Tenant is the root of every other record; all tenant-scoped tables carry its
// id. Created once at signup, effectively never deleted.
type Tenant struct {
	ID        string    `gorm:"primary_key;size:36" json:"id"`
	Name      string    `gorm:"size:150;not null" json:"name" binding:"required"`
	Address   string    `gorm:"size:255" json:"address"`
	Phone     string    `gorm:"size:30" json:"phone"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewTenant struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

func CreateTenant(ctx context.Context, input *NewTenant) (*Tenant, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.New("tenant name is required")
	}
	tenant := Tenant{
		ID:      uuid.NewString(),
		Name:    strings.TrimSpace(input.Name),
		Address: input.Address,
		Phone:   utils.FormatPhoneNumber(input.Phone, utils.CountryCode),
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&tenant).Error; err != nil {
		return nil, wrapDB(err)
	}
	return &tenant, nil
}

// GetCurrentTenant returns the caller's own tenant row.
func GetCurrentTenant(ctx context.Context) (*Tenant, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, errors.New("tenant id is required")
	}
	db := config.GetDB()
	var result Tenant
	if err := db.WithContext(ctx).Where("id = ?", tenantId).First(&result).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &result, nil
}

func UpdateTenant(ctx context.Context, input *NewTenant) (*Tenant, error) {
	tenant, err := GetCurrentTenant(ctx)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if strings.TrimSpace(input.Name) != "" {
		updates["name"] = strings.TrimSpace(input.Name)
	}
	if input.Address != "" {
		updates["address"] = input.Address
	}
	if input.Phone != "" {
		updates["phone"] = utils.FormatPhoneNumber(input.Phone, utils.CountryCode)
	}
	if len(updates) == 0 {
		return tenant, nil
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(tenant).Updates(updates).Error; err != nil {
		return nil, wrapDB(err)
	}
	return tenant, nil
}
