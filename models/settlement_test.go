package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCalculateSettlement_ReplacementCostPolicy(t *testing.T) {
	input := &SettlementInput{
		PolicyLimits:    dec("100000"),
		Deductible:      dec("1000"),
		ReplacementCost: true,
		OverheadProfit:  dec("0.10"),
		SalesTaxRate:    dec("0.07"),
		Entries: []DamageEntry{
			{Category: "Roof", Item: "Shingles", Amount: dec("100"), Quantity: dec("50"), DepreciationRate: dec("0.20")},
			{Category: "Interior", Item: "Drywall", Amount: dec("2500"), Quantity: dec("2"), DepreciationRate: dec("0.10")},
		},
	}

	b, err := CalculateSettlement(input)
	if err != nil {
		t.Fatalf("CalculateSettlement: %v", err)
	}

	// total = 100*50 + 2500*2 = 10000
	if b.TotalDamage.Cmp(dec("10000")) != 0 {
		t.Fatalf("total damage expected 10000, got %s", b.TotalDamage)
	}
	// depreciation = 5000*0.20 + 5000*0.10 = 1500
	if b.Depreciation.Cmp(dec("1500")) != 0 {
		t.Fatalf("depreciation expected 1500, got %s", b.Depreciation)
	}
	if b.ActualCashValue.Cmp(dec("8500")) != 0 {
		t.Fatalf("ACV expected 8500, got %s", b.ActualCashValue)
	}
	if b.ReplacementCostVal.Cmp(dec("10000")) != 0 {
		t.Fatalf("RCV expected 10000, got %s", b.ReplacementCostVal)
	}
	// O&P = 1000, tax = 700, net = 10000 + 1000 + 700 - 1000 = 10700
	if b.OverheadProfit.Cmp(dec("1000")) != 0 {
		t.Fatalf("O&P expected 1000, got %s", b.OverheadProfit)
	}
	if b.SalesTax.Cmp(dec("700")) != 0 {
		t.Fatalf("tax expected 700, got %s", b.SalesTax)
	}
	if b.NetClaim.Cmp(dec("10700")) != 0 {
		t.Fatalf("net expected 10700, got %s", b.NetClaim)
	}
	// RCV policy: estimate is the net, no limits cap.
	if b.EstimatedSettlement.Cmp(dec("10700")) != 0 {
		t.Fatalf("estimate expected 10700, got %s", b.EstimatedSettlement)
	}
}

func TestCalculateSettlement_ACVPolicyCapsAtLimits(t *testing.T) {
	input := &SettlementInput{
		PolicyLimits: dec("5000"),
		Deductible:   dec("500"),
		Entries: []DamageEntry{
			{Item: "Flooring", Amount: dec("8000"), Quantity: dec("1"), DepreciationRate: dec("0.25")},
		},
	}

	b, err := CalculateSettlement(input)
	if err != nil {
		t.Fatalf("CalculateSettlement: %v", err)
	}

	// ACV basis: 8000 - 2000 = 6000; net = 6000 - 500 = 5500, capped at 5000-500.
	if b.NetClaim.Cmp(dec("5500")) != 0 {
		t.Fatalf("net expected 5500, got %s", b.NetClaim)
	}
	if b.EstimatedSettlement.Cmp(dec("4500")) != 0 {
		t.Fatalf("estimate expected 4500 (limits-deductible), got %s", b.EstimatedSettlement)
	}
}

func TestCalculateSettlement_NegotiationAndDefaultQuantity(t *testing.T) {
	input := &SettlementInput{
		ReplacementCost: true,
		Negotiation:     dec("0.10"),
		Entries: []DamageEntry{
			// Quantity omitted defaults to 1.
			{Item: "Fence", Amount: dec("1200")},
		},
	}

	b, err := CalculateSettlement(input)
	if err != nil {
		t.Fatalf("CalculateSettlement: %v", err)
	}
	if b.TotalDamage.Cmp(dec("1200")) != 0 {
		t.Fatalf("total expected 1200, got %s", b.TotalDamage)
	}
	if b.NegotiationAdjustment.Cmp(dec("120")) != 0 {
		t.Fatalf("adjustment expected 120, got %s", b.NegotiationAdjustment)
	}
	if b.EstimatedSettlement.Cmp(dec("1320")) != 0 {
		t.Fatalf("estimate expected 1320, got %s", b.EstimatedSettlement)
	}
}

// Negotiation is a rate applied to the net claim, not a dollar amount added
// into it.
func TestCalculateSettlement_NegotiationIsRateOnNetClaim(t *testing.T) {
	input := &SettlementInput{
		PolicyLimits:    dec("100000"),
		Deductible:      dec("1270"),
		ReplacementCost: true,
		OverheadProfit:  dec("0.10"),
		SalesTaxRate:    dec("0.07"),
		Negotiation:     dec("0.10"),
		Entries: []DamageEntry{
			{Category: "Roof", Item: "Shingles", Amount: dec("100"), Quantity: dec("100"), DepreciationRate: dec("0.20")},
		},
	}

	b, err := CalculateSettlement(input)
	if err != nil {
		t.Fatalf("CalculateSettlement: %v", err)
	}
	// total 10000, O&P 1000, tax 700, net = 10000+1000+700-1270 = 10430.
	if b.NetClaim.Cmp(dec("10430")) != 0 {
		t.Fatalf("net expected 10430, got %s", b.NetClaim)
	}
	if b.NegotiationAdjustment.Cmp(dec("1043")) != 0 {
		t.Fatalf("adjustment expected 1043, got %s", b.NegotiationAdjustment)
	}
	if b.EstimatedSettlement.Cmp(dec("11473")) != 0 {
		t.Fatalf("estimate expected 11473, got %s", b.EstimatedSettlement)
	}
}

func TestCalculateSettlement_Rejections(t *testing.T) {
	if _, err := CalculateSettlement(&SettlementInput{}); err == nil {
		t.Fatal("expected error for empty entries")
	}
	if _, err := CalculateSettlement(&SettlementInput{
		Deductible: dec("-1"),
		Entries:    []DamageEntry{{Amount: dec("10")}},
	}); err == nil {
		t.Fatal("expected error for negative deductible")
	}
	if _, err := CalculateSettlement(&SettlementInput{
		Entries: []DamageEntry{{Amount: dec("-10")}},
	}); err == nil {
		t.Fatal("expected error for negative amount")
	}
}
