package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fpadjusters/claims_backend/config"
	"github.com/fpadjusters/claims_backend/utils"
)

// Contact is a person attached to the tenant's book of business: insureds,
// referral sources, opposing adjusters. Referenced by Claim rows from the
// insurance-sync schema.
type Contact struct {
	ID        int       `gorm:"primary_key" json:"id"`
	TenantId  string    `gorm:"index;size:36;not null" json:"tenant_id"`
	Name      string    `gorm:"size:150;not null" json:"name" binding:"required"`
	Email     string    `gorm:"size:100" json:"email"`
	Phone     string    `gorm:"size:30" json:"phone"`
	Address   string    `gorm:"size:255" json:"address"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewContact struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

func CreateContact(ctx context.Context, input *NewContact) (*Contact, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, errors.New("tenant id is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.New("contact name is required")
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return nil, errors.New("invalid email address")
	}

	result := Contact{
		TenantId: tenantId,
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.ToLower(input.Email),
		Phone:    utils.FormatPhoneNumber(input.Phone, utils.CountryCode),
		Address:  input.Address,
		Notes:    input.Notes,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&result).Error; err != nil {
		return nil, wrapDB(err)
	}
	return &result, nil
}

func GetContact(ctx context.Context, id int) (*Contact, error) {
	return getScoped[Contact](ctx, id)
}

func ListContacts(ctx context.Context) ([]*Contact, error) {
	return listScoped[Contact](ctx, "", nil)
}

func UpdateContact(ctx context.Context, id int, input *NewContact) (*Contact, error) {
	result, err := getScoped[Contact](ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if strings.TrimSpace(input.Name) != "" {
		updates["name"] = strings.TrimSpace(input.Name)
	}
	if input.Email != "" {
		if !utils.IsValidEmail(input.Email) {
			return nil, errors.New("invalid email address")
		}
		updates["email"] = strings.ToLower(input.Email)
	}
	if input.Phone != "" {
		updates["phone"] = utils.FormatPhoneNumber(input.Phone, utils.CountryCode)
	}
	if input.Address != "" {
		updates["address"] = input.Address
	}
	if input.Notes != "" {
		updates["notes"] = input.Notes
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

func DeleteContact(ctx context.Context, id int) (*Contact, error) {
	return deleteScoped[Contact](ctx, id)
}
