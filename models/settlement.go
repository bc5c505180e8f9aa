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

// DamageEntry is one line of a damage estimate. DepreciationRate is a
// fraction (0.25 = 25%) applied to the line total when computing ACV.
type DamageEntry struct {
	Category         string          `json:"category"`
	Item             string          `json:"item"`
	Amount           decimal.Decimal `json:"amount"`
	Quantity         decimal.Decimal `json:"quantity"`
	DepreciationRate decimal.Decimal `json:"depreciation_rate"`
}

// SettlementInput is everything the calculator needs: the damage lines plus
// the policy and adjustment figures.
type SettlementInput struct {
	CaseId          *int            `json:"case_id"`
	PolicyLimits    decimal.Decimal `json:"policy_limits"`
	Deductible      decimal.Decimal `json:"deductible"`
	ReplacementCost bool            `json:"replacement_cost"`
	OverheadProfit  decimal.Decimal `json:"overhead_profit_rate"`
	SalesTaxRate    decimal.Decimal `json:"sales_tax_rate"`
	Negotiation     decimal.Decimal `json:"negotiation_adjustment"`
	Entries         []DamageEntry   `json:"entries"`
}

// SettlementBreakdown is the computed result.
type SettlementBreakdown struct {
	TotalDamage           decimal.Decimal `json:"total_damage"`
	Depreciation          decimal.Decimal `json:"depreciation"`
	ActualCashValue       decimal.Decimal `json:"actual_cash_value"`
	ReplacementCostVal    decimal.Decimal `json:"replacement_cost_value"`
	OverheadProfit        decimal.Decimal `json:"overhead_profit"`
	SalesTax              decimal.Decimal `json:"sales_tax"`
	NetClaim              decimal.Decimal `json:"net_claim"`
	NegotiationAdjustment decimal.Decimal `json:"negotiation_adjustment"`
	EstimatedSettlement   decimal.Decimal `json:"estimated_settlement"`
}

// Settlement persists a calculation run so adjusters can compare scenarios
// over the life of a case. Inputs and breakdown are stored as JSON.
type Settlement struct {
	ID        int       `gorm:"primary_key" json:"id"`
	TenantId  string    `gorm:"index;size:36;not null" json:"tenant_id"`
	CaseId    *int      `gorm:"index" json:"case_id"`
	Name      string    `gorm:"size:150" json:"name"`
	Input     string    `gorm:"type:text" json:"input"`
	Breakdown string    `gorm:"type:text" json:"breakdown"`
	CreatedBy int       `json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// CalculateSettlement runs the estimate.
//
// total = Σ amount×quantity, depreciation = Σ line_total×line_rate,
// ACV = total − depreciation, RCV = total, O&P = total×op_rate,
// tax = total×tax_rate, net = basis + O&P + tax − deductible.
// Negotiation is a rate on the net claim: estimate = net + net×rate. The basis
// is RCV under a replacement-cost policy and ACV otherwise; under ACV the
// estimate is additionally capped at limits − deductible.
func CalculateSettlement(input *SettlementInput) (*SettlementBreakdown, error) {
	if len(input.Entries) == 0 {
		return nil, errors.New("at least one damage entry is required")
	}
	if input.Deductible.IsNegative() {
		return nil, errors.New("deductible cannot be negative")
	}

	total := decimal.Zero
	depreciation := decimal.Zero
	for _, e := range input.Entries {
		if e.Amount.IsNegative() || e.Quantity.IsNegative() {
			return nil, errors.New("damage amounts and quantities cannot be negative")
		}
		qty := e.Quantity
		if qty.IsZero() {
			qty = decimal.NewFromInt(1)
		}
		lineTotal := e.Amount.Mul(qty)
		total = total.Add(lineTotal)
		depreciation = depreciation.Add(lineTotal.Mul(e.DepreciationRate))
	}

	acv := total.Sub(depreciation)
	op := total.Mul(input.OverheadProfit)
	tax := total.Mul(input.SalesTaxRate)

	basis := total
	if !input.ReplacementCost {
		basis = acv
	}
	net := basis.Add(op).Add(tax).Sub(input.Deductible)
	adjustment := net.Mul(input.Negotiation)

	estimate := net.Add(adjustment)
	if !input.ReplacementCost && input.PolicyLimits.IsPositive() {
		limit := input.PolicyLimits.Sub(input.Deductible)
		if estimate.GreaterThan(limit) {
			estimate = limit
		}
	}

	return &SettlementBreakdown{
		TotalDamage:           total.Round(2),
		Depreciation:          depreciation.Round(2),
		ActualCashValue:       acv.Round(2),
		ReplacementCostVal:    total.Round(2),
		OverheadProfit:        op.Round(2),
		SalesTax:              tax.Round(2),
		NetClaim:              net.Round(2),
		NegotiationAdjustment: adjustment.Round(2),
		EstimatedSettlement:   estimate.Round(2),
	}, nil
}

// CreateSettlement calculates and persists a settlement scenario.
func CreateSettlement(ctx context.Context, name string, input *SettlementInput) (*Settlement, *SettlementBreakdown, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, nil, errors.New("tenant id is required")
	}
	if input.CaseId != nil {
		if _, err := GetCase(ctx, *input.CaseId); err != nil {
			return nil, nil, err
		}
	}

	breakdown, err := CalculateSettlement(input)
	if err != nil {
		return nil, nil, err
	}

	inputJSON, err := utils.MarshalToJSON(input)
	if err != nil {
		return nil, nil, err
	}
	breakdownJSON, err := utils.MarshalToJSON(breakdown)
	if err != nil {
		return nil, nil, err
	}

	userId, _ := utils.GetUserIdFromContext(ctx)
	result := Settlement{
		TenantId:  tenantId,
		CaseId:    input.CaseId,
		Name:      strings.TrimSpace(name),
		Input:     inputJSON,
		Breakdown: breakdownJSON,
		CreatedBy: userId,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&result).Error; err != nil {
		return nil, nil, wrapDB(err)
	}
	return &result, breakdown, nil
}

func GetSettlement(ctx context.Context, id int) (*Settlement, error) {
	return getScoped[Settlement](ctx, id)
}

// ListSettlements returns the tenant's saved scenarios, optionally for one
// case.
func ListSettlements(ctx context.Context, caseId *int) ([]*Settlement, error) {
	if caseId != nil {
		return listScoped[Settlement](ctx, "case_id", *caseId)
	}
	return listScoped[Settlement](ctx, "", nil)
}

func DeleteSettlement(ctx context.Context, id int) (*Settlement, error) {
	return deleteScoped[Settlement](ctx, id)
}
