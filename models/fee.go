package models

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fpadjusters/claims_backend/config"
	"github.com/fpadjusters/claims_backend/utils"
)

// Fee is a charge billed against a case: the adjuster's contingency fee, a
// flat filing fee, an expense pass-through. Amounts are decimal; commissions
// derive from the amount at creation time and are never recomputed when the
// fee changes afterwards.
type Fee struct {
	ID          int             `gorm:"primary_key" json:"id"`
	TenantId    string          `gorm:"index;size:36;not null" json:"tenant_id"`
	CaseId      int             `gorm:"index;not null" json:"case_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(13,2);not null" json:"amount"`
	Description string          `gorm:"size:255;not null" json:"description"`
	Type        string          `gorm:"size:50;not null" json:"type"`
	Status      FeeStatus       `gorm:"size:20;default:PENDING" json:"status"`
	DueDate     *time.Time      `json:"due_date"`
	PaidDate    *time.Time      `json:"paid_date"`
	CreatedBy   int             `json:"created_by"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewFee struct {
	CaseId      int             `json:"case_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Type        string          `json:"type" binding:"required"`
	DueDate     *time.Time      `json:"due_date" binding:"required"`
}

type UpdateFeeInput struct {
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description"`
	Type        *string          `json:"type"`
	DueDate     *time.Time       `json:"due_date"`
}

func CreateFee(ctx context.Context, input *NewFee) (*Fee, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, errors.New("tenant id is required")
	}
	if input.CaseId == 0 {
		return nil, errors.New("case id is required")
	}
	if input.Amount.IsZero() {
		return nil, errors.New("fee amount is required")
	}
	if input.Amount.IsNegative() {
		return nil, errors.New("fee amount must be positive")
	}
	if input.Description == "" {
		return nil, errors.New("fee description is required")
	}
	if input.Type == "" {
		return nil, errors.New("fee type is required")
	}
	if input.DueDate == nil {
		return nil, errors.New("fee due date is required")
	}

	// The case must exist inside the caller's tenant before a fee can hang
	// off it. A cross-tenant case id surfaces as record-not-found here.
	if _, err := GetCase(ctx, input.CaseId); err != nil {
		return nil, err
	}

	userId, _ := utils.GetUserIdFromContext(ctx)
	result := Fee{
		TenantId:    tenantId,
		CaseId:      input.CaseId,
		Amount:      input.Amount,
		Description: input.Description,
		Type:        input.Type,
		Status:      FeeStatusPending,
		DueDate:     input.DueDate,
		CreatedBy:   userId,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&result).Error; err != nil {
		return nil, wrapDB(err)
	}
	return &result, nil
}

func GetFee(ctx context.Context, id int) (*Fee, error) {
	return getScoped[Fee](ctx, id)
}

// ListFees returns the tenant's fees, optionally narrowed to one case.
func ListFees(ctx context.Context, caseId *int) ([]*Fee, error) {
	if caseId != nil {
		return listScoped[Fee](ctx, "case_id", *caseId)
	}
	return listScoped[Fee](ctx, "", nil)
}

func UpdateFee(ctx context.Context, id int, input *UpdateFeeInput) (*Fee, error) {
	result, err := getScoped[Fee](ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Amount != nil {
		if input.Amount.IsNegative() {
			return nil, errors.New("fee amount must be positive")
		}
		updates["amount"] = *input.Amount
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Type != nil {
		updates["type"] = *input.Type
	}
	if input.DueDate != nil {
		updates["due_date"] = *input.DueDate
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

// UpdateFeeStatus moves a fee through its lifecycle. Marking a fee PAID
// stamps paid_date with the current time.
func UpdateFeeStatus(ctx context.Context, id int, status FeeStatus) (*Fee, error) {
	if !IsAllowedFeeStatus(string(status)) {
		return nil, errors.New("invalid fee status")
	}
	result, err := getScoped[Fee](ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"status": status}
	if status == FeeStatusPaid && result.PaidDate == nil {
		now := time.Now().UTC()
		updates["paid_date"] = &now
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(result).Updates(updates).Error; err != nil {
		return nil, wrapDB(err)
	}
	return result, nil
}

func DeleteFee(ctx context.Context, id int) (*Fee, error) {
	// Commissions reference the fee by id; refuse to orphan them.
	attached, err := countScoped[Commission](ctx, "fee_id = ?", id)
	if err != nil {
		return nil, err
	}
	if attached > 0 {
		return nil, errors.New("cannot delete fee with commissions attached")
	}
	return deleteScoped[Fee](ctx, id)
}
