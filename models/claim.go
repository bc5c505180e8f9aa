package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fpadjusters/claims_backend/config"
	"github.com/fpadjusters/claims_backend/utils"
)

// Claim mirrors the carrier-side claim record synced from insurer systems or
// imported from spreadsheets. It is looser than Case: claim_number ties it to
// the carrier, contact/insurer links are optional.
type Claim struct {
	ID           int             `gorm:"primary_key" json:"id"`
	TenantId     string          `gorm:"index;size:36;not null" json:"tenant_id"`
	Name         string          `gorm:"size:150;not null" json:"name"`
	ClaimNumber  string          `gorm:"size:60;index" json:"claim_number"`
	PolicyNumber string          `gorm:"size:60" json:"policy_number"`
	Insured      string          `gorm:"size:150" json:"insured"`
	Amount       decimal.Decimal `gorm:"type:decimal(13,2)" json:"amount"`
	Status       string          `gorm:"size:30;default:OPEN" json:"status"`
	ContactId    *int            `gorm:"index" json:"contact_id"`
	InsurerId    *int            `gorm:"index" json:"insurer_id"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewClaim struct {
	Name         string          `json:"name" binding:"required"`
	ClaimNumber  string          `json:"claim_number"`
	PolicyNumber string          `json:"policy_number"`
	Insured      string          `json:"insured"`
	Amount       decimal.Decimal `json:"amount"`
	Status       string          `json:"status"`
	ContactId    *int            `json:"contact_id"`
	InsurerId    *int            `json:"insurer_id"`
}

func CreateClaim(ctx context.Context, input *NewClaim) (*Claim, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, errors.New("tenant id is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.New("claim name is required")
	}
	if input.ContactId != nil {
		if _, err := GetContact(ctx, *input.ContactId); err != nil {
			return nil, err
		}
	}
	if input.InsurerId != nil {
		if _, err := GetInsurer(ctx, *input.InsurerId); err != nil {
			return nil, err
		}
	}

	status := strings.ToUpper(strings.TrimSpace(input.Status))
	if status == "" {
		status = CaseStatusOpen
	}
	result := Claim{
		TenantId:     tenantId,
		Name:         strings.TrimSpace(input.Name),
		ClaimNumber:  strings.TrimSpace(input.ClaimNumber),
		PolicyNumber: strings.TrimSpace(input.PolicyNumber),
		Insured:      strings.TrimSpace(input.Insured),
		Amount:       input.Amount,
		Status:       status,
		ContactId:    input.ContactId,
		InsurerId:    input.InsurerId,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&result).Error; err != nil {
		return nil, wrapDB(err)
	}
	return &result, nil
}

func GetClaim(ctx context.Context, id int) (*Claim, error) {
	return getScoped[Claim](ctx, id)
}

// ListClaims returns the tenant's claims, optionally narrowed by status.
func ListClaims(ctx context.Context, status string) ([]*Claim, error) {
	if status != "" {
		return listScoped[Claim](ctx, "status", strings.ToUpper(status))
	}
	return listScoped[Claim](ctx, "", nil)
}

func UpdateClaim(ctx context.Context, id int, input *NewClaim) (*Claim, error) {
	result, err := getScoped[Claim](ctx, id)
	if err != nil {
		return nil, err
	}
	if input.ContactId != nil {
		if _, err := GetContact(ctx, *input.ContactId); err != nil {
			return nil, err
		}
	}
	if input.InsurerId != nil {
		if _, err := GetInsurer(ctx, *input.InsurerId); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{}
	if strings.TrimSpace(input.Name) != "" {
		updates["name"] = strings.TrimSpace(input.Name)
	}
	if input.ClaimNumber != "" {
		updates["claim_number"] = strings.TrimSpace(input.ClaimNumber)
	}
	if input.PolicyNumber != "" {
		updates["policy_number"] = strings.TrimSpace(input.PolicyNumber)
	}
	if input.Insured != "" {
		updates["insured"] = strings.TrimSpace(input.Insured)
	}
	if !input.Amount.IsZero() {
		updates["amount"] = input.Amount
	}
	if input.Status != "" {
		updates["status"] = strings.ToUpper(strings.TrimSpace(input.Status))
	}
	if input.ContactId != nil {
		updates["contact_id"] = *input.ContactId
	}
	if input.InsurerId != nil {
		updates["insurer_id"] = *input.InsurerId
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

func DeleteClaim(ctx context.Context, id int) (*Claim, error) {
	return deleteScoped[Claim](ctx, id)
}
