package models

import (
	"strings"
	"testing"
)

func TestParseClaimSheet(t *testing.T) {
	rows := [][]string{
		{"Claim Name", "Status", "Claim Number", "Insured", "Amount"},
		{"Smith Hurricane Loss", "open", "CLM-1001", "John Smith", "$12,500.00"},
		{"Jones Water Damage", "", "CLM-1002", "Mary Jones", "8000"},
		{"", "OPEN", "CLM-1003", "Nobody", "10"},
		{"Bad Amount Row", "OPEN", "CLM-1004", "Someone", "twelve"},
	}

	parsed, skipped, err := ParseClaimSheet(rows)
	if err != nil {
		t.Fatalf("ParseClaimSheet: %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("expected 2 parsed rows, got %d", len(parsed))
	}
	if len(skipped) != 2 {
		t.Fatalf("expected 2 skipped rows, got %d: %v", len(skipped), skipped)
	}

	first := parsed[0]
	if first.Name != "Smith Hurricane Loss" || first.ClaimNumber != "CLM-1001" {
		t.Fatalf("unexpected first row: %+v", first)
	}
	if first.Status != "OPEN" {
		t.Fatalf("status expected OPEN (uppercased), got %q", first.Status)
	}
	if first.Amount.Cmp(dec("12500")) != 0 {
		t.Fatalf("amount expected 12500, got %s", first.Amount)
	}

	// Skip reasons name the 1-based sheet row.
	if !strings.Contains(skipped[0], "row 4") || !strings.Contains(skipped[1], "row 5") {
		t.Fatalf("unexpected skip reasons: %v", skipped)
	}
}

func TestParseClaimSheet_ColumnOrderIsFree(t *testing.T) {
	rows := [][]string{
		{"Amount", "Insured", "Claim Name"},
		{"100", "A. Person", "Reordered Claim"},
	}
	parsed, skipped, err := ParseClaimSheet(rows)
	if err != nil {
		t.Fatalf("ParseClaimSheet: %v", err)
	}
	if len(skipped) != 0 || len(parsed) != 1 {
		t.Fatalf("expected 1 parsed / 0 skipped, got %d / %d", len(parsed), len(skipped))
	}
	if parsed[0].Name != "Reordered Claim" || parsed[0].Insured != "A. Person" {
		t.Fatalf("unexpected row: %+v", parsed[0])
	}
}

func TestParseClaimSheet_MissingNameColumn(t *testing.T) {
	rows := [][]string{
		{"Status", "Amount"},
		{"OPEN", "100"},
	}
	if _, _, err := ParseClaimSheet(rows); err == nil {
		t.Fatal("expected error for missing Claim Name column")
	}
}

func TestParseClaimSheet_ShortRows(t *testing.T) {
	rows := [][]string{
		{"Claim Name", "Status", "Claim Number", "Insured", "Amount"},
		{"Short Row Claim"}, // trailing empty cells omitted by excelize
	}
	parsed, skipped, err := ParseClaimSheet(rows)
	if err != nil {
		t.Fatalf("ParseClaimSheet: %v", err)
	}
	if len(skipped) != 0 || len(parsed) != 1 {
		t.Fatalf("expected 1 parsed / 0 skipped, got %d / %d", len(parsed), len(skipped))
	}
	if !parsed[0].Amount.IsZero() {
		t.Fatalf("amount expected 0 for missing cell, got %s", parsed[0].Amount)
	}
}
