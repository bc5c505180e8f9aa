package models

import "testing"

func TestCommissionAmount(t *testing.T) {
	cases := []struct {
		fee        string
		percentage string
		expected   string
	}{
		{"1000", "10", "100"},
		{"1500.50", "10", "150.05"},
		{"333.33", "33.333", "111.11"},
		{"1000", "0", "0"},
		{"1000", "100", "1000"},
		{"0.01", "50", "0.01"}, // rounds half up
	}
	for _, tc := range cases {
		got := CommissionAmount(dec(tc.fee), dec(tc.percentage))
		if got.Cmp(dec(tc.expected)) != 0 {
			t.Fatalf("CommissionAmount(%s, %s) expected %s, got %s", tc.fee, tc.percentage, tc.expected, got)
		}
	}
}
