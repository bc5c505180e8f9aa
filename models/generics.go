package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/fpadjusters/claims_backend/config"
	"github.com/fpadjusters/claims_backend/utils"
	"gorm.io/gorm"
)

// wrapDB masks unexpected database failures behind ErrorInternal so the HTTP
// layer answers with a generic 500 instead of leaking driver detail.
func wrapDB(err error) error {
	if err == nil || errors.Is(err, utils.ErrorInternal) {
		return err
	}
	return fmt.Errorf("%w: %v", utils.ErrorInternal, err)
}

// getScoped fetches a row by primary key under the caller's tenant. When the
// scoped lookup misses, an unscoped existence probe decides between
// ErrorRecordNotFound and ErrorTenantMismatch; both collapse to the same
// not-found response at the HTTP boundary, but audit logging keeps them apart.
func getScoped[T any](ctx context.Context, id int) (*T, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, errors.New("tenant id is required")
	}

	db := config.GetDB()
	var result T
	err := db.WithContext(ctx).Where("tenant_id = ?", tenantId).First(&result, id).Error
	if err == nil {
		return &result, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, wrapDB(err)
	}

	var count int64
	probeCtx := utils.SetSkipTenantScopeInContext(ctx, true)
	var model T
	if perr := db.WithContext(probeCtx).Model(&model).Where("id = ?", id).Count(&count).Error; perr == nil && count > 0 {
		return nil, utils.ErrorTenantMismatch
	}
	return nil, utils.ErrorRecordNotFound
}

// listScoped returns the tenant's rows newest-first, optionally narrowed by a
// single equality filter.
func listScoped[T any](ctx context.Context, filterColumn string, filterValue interface{}) ([]*T, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, errors.New("tenant id is required")
	}

	db := config.GetDB()
	var model T
	dbCtx := db.WithContext(ctx).Model(&model).Where("tenant_id = ?", tenantId)
	if filterColumn != "" {
		dbCtx = dbCtx.Where(filterColumn+" = ?", filterValue)
	}

	var results []*T
	if err := dbCtx.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, wrapDB(err)
	}
	return results, nil
}

// deleteScoped removes a tenant's row by primary key.
func deleteScoped[T any](ctx context.Context, id int) (*T, error) {
	result, err := getScoped[T](ctx, id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(result).Error; err != nil {
		return nil, wrapDB(err)
	}
	return result, nil
}

// countScoped counts rows matching a condition inside the tenant.
func countScoped[T any](ctx context.Context, condition string, values ...interface{}) (int64, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return 0, errors.New("tenant id is required")
	}

	db := config.GetDB()
	var model T
	var count int64
	dbCtx := db.WithContext(ctx).Model(&model).Where("tenant_id = ?", tenantId)
	if condition != "" {
		dbCtx = dbCtx.Where(condition, values...)
	}
	if err := dbCtx.Count(&count).Error; err != nil {
		return 0, wrapDB(err)
	}
	return count, nil
}
