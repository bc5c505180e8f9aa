package models

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fpadjusters/claims_backend/config"
	"github.com/fpadjusters/claims_backend/utils"
)

var oneHundred = decimal.NewFromInt(100)

// Commission is an adjuster's cut of a fee. The amount is derived from the
// fee amount once, at creation; later fee edits do not cascade into it.
type Commission struct {
	ID         int              `gorm:"primary_key" json:"id"`
	TenantId   string           `gorm:"index;size:36;not null" json:"tenant_id"`
	FeeId      int              `gorm:"index;not null" json:"fee_id"`
	UserId     int              `gorm:"index;not null" json:"user_id"`
	Percentage decimal.Decimal  `gorm:"type:decimal(6,3);not null" json:"percentage"`
	Amount     decimal.Decimal  `gorm:"type:decimal(13,2);not null" json:"amount"`
	Status     CommissionStatus `gorm:"size:20;default:PENDING" json:"status"`
	PaidDate   *time.Time       `json:"paid_date"`
	CreatedAt  time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCommission struct {
	FeeId      int             `json:"fee_id"`
	UserId     int             `json:"user_id" binding:"required"`
	Percentage decimal.Decimal `json:"percentage" binding:"required"`
}

// CommissionAmount computes the payout on a fee: amount * percentage / 100.
func CommissionAmount(feeAmount, percentage decimal.Decimal) decimal.Decimal {
	return feeAmount.Mul(percentage).Div(oneHundred).Round(2)
}

func CreateCommission(ctx context.Context, input *NewCommission) (*Commission, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, errors.New("tenant id is required")
	}
	if input.Percentage.IsNegative() || input.Percentage.GreaterThan(oneHundred) {
		return nil, errors.New("percentage must be between 0 and 100")
	}

	fee, err := GetFee(ctx, input.FeeId)
	if err != nil {
		return nil, err
	}
	if _, err := getScoped[User](ctx, input.UserId); err != nil {
		return nil, err
	}

	result := Commission{
		TenantId:   tenantId,
		FeeId:      fee.ID,
		UserId:     input.UserId,
		Percentage: input.Percentage,
		Amount:     CommissionAmount(fee.Amount, input.Percentage),
		Status:     CommissionStatusPending,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&result).Error; err != nil {
		return nil, wrapDB(err)
	}
	return &result, nil
}

func GetCommission(ctx context.Context, id int) (*Commission, error) {
	return getScoped[Commission](ctx, id)
}

// ListCommissions returns the tenant's commissions, filtered to one fee or
// one payee when the caller asks.
func ListCommissions(ctx context.Context, feeId, userId *int) ([]*Commission, error) {
	if feeId != nil {
		return listScoped[Commission](ctx, "fee_id", *feeId)
	}
	if userId != nil {
		return listScoped[Commission](ctx, "user_id", *userId)
	}
	return listScoped[Commission](ctx, "", nil)
}

// UpdateCommissionStatus moves a commission through its lifecycle. Marking it
// PAID stamps paid_date.
func UpdateCommissionStatus(ctx context.Context, id int, status CommissionStatus) (*Commission, error) {
	if !IsAllowedCommissionStatus(string(status)) {
		return nil, errors.New("invalid commission status")
	}
	result, err := getScoped[Commission](ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"status": status}
	if status == CommissionStatusPaid && result.PaidDate == nil {
		now := time.Now().UTC()
		updates["paid_date"] = &now
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(result).Updates(updates).Error; err != nil {
		return nil, wrapDB(err)
	}
	return result, nil
}

func DeleteCommission(ctx context.Context, id int) (*Commission, error) {
	return deleteScoped[Commission](ctx, id)
}
