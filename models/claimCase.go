package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fpadjusters/claims_backend/config"
	"github.com/fpadjusters/claims_backend/utils"
)

// Case is a claim file being worked by the tenant: the anchor for fees and
// documents.
type Case struct {
	ID          int       `gorm:"primary_key" json:"id"`
	TenantId    string    `gorm:"index;size:36;not null" json:"tenant_id"`
	Name        string    `gorm:"size:150;not null" json:"name" binding:"required"`
	Status      string    `gorm:"size:50;default:OPEN" json:"status"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedBy   int       `json:"created_by"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCase struct {
	Name        string `json:"name" binding:"required"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

func CreateCase(ctx context.Context, input *NewCase) (*Case, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, errors.New("tenant id is required")
	}
	userId, _ := utils.GetUserIdFromContext(ctx)

	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.New("case name is required")
	}
	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = CaseStatusOpen
	}

	result := Case{
		TenantId:    tenantId,
		Name:        strings.TrimSpace(input.Name),
		Status:      status,
		Description: input.Description,
		CreatedBy:   userId,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&result).Error; err != nil {
		return nil, wrapDB(err)
	}
	return &result, nil
}

func GetCase(ctx context.Context, id int) (*Case, error) {
	return getScoped[Case](ctx, id)
}

func ListCases(ctx context.Context, status string) ([]*Case, error) {
	if status != "" {
		return listScoped[Case](ctx, "status", status)
	}
	return listScoped[Case](ctx, "", nil)
}

func UpdateCase(ctx context.Context, id int, input *NewCase) (*Case, error) {
	result, err := getScoped[Case](ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if strings.TrimSpace(input.Name) != "" {
		updates["name"] = strings.TrimSpace(input.Name)
	}
	if strings.TrimSpace(input.Status) != "" {
		updates["status"] = strings.TrimSpace(input.Status)
	}
	if input.Description != "" {
		updates["description"] = input.Description
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

// DeleteCase refuses while fees still reference the case; documents merely
// lose their case link.
func DeleteCase(ctx context.Context, id int) (*Case, error) {
	feeCount, err := countScoped[Fee](ctx, "case_id = ?", id)
	if err != nil {
		return nil, err
	}
	if feeCount > 0 {
		return nil, errors.New("cannot delete case with fees attached")
	}

	result, err := getScoped[Case](ctx, id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&Document{}).
		Where("tenant_id = ? AND case_id = ?", result.TenantId, id).
		Update("case_id", nil).Error; err != nil {
		return nil, wrapDB(err)
	}
	if err := db.WithContext(ctx).Delete(result).Error; err != nil {
		return nil, wrapDB(err)
	}
	return result, nil
}
