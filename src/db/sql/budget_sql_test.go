package db

import (
	"testing"

	"ledgerly-server/src/models"

	"github.com/shopspring/decimal"
)

func TestSetUsage(t *testing.T) {
	tests := []struct {
		limit, spent, remaining string
	}{
		{"100", "40", "60"},
		{"100", "100", "0"},
		{"100", "150.25", "0"},
		{"0", "0", "0"},
	}
	for _, tt := range tests {
		b := &models.Budget{Limit: models.NewMoney(decimal.RequireFromString(tt.limit))}
		setUsage(b, decimal.RequireFromString(tt.spent))
		if !b.Spent.Equal(decimal.RequireFromString(tt.spent)) {
			t.Errorf("limit %s spent %s: Spent = %s", tt.limit, tt.spent, b.Spent)
		}
		if !b.Remaining.Equal(decimal.RequireFromString(tt.remaining)) {
			t.Errorf("limit %s spent %s: Remaining = %s, want %s", tt.limit, tt.spent, b.Remaining, tt.remaining)
		}
	}
}

func TestMustAffect(t *testing.T) {
	if err := mustAffect(0); err != ErrNotFound {
		t.Errorf("mustAffect(0) = %v, want ErrNotFound", err)
	}
	if err := mustAffect(1); err != nil {
		t.Errorf("mustAffect(1) = %v", err)
	}
}

func TestCategoryCacheKey(t *testing.T) {
	if got := categoryCacheKey(42); got != "categories:42" {
		t.Errorf("categoryCacheKey(42) = %q", got)
	}
}
