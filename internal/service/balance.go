package service

import (
	"context"
	"sort"
	"strings"

	domainErrors "github.com/opentill/cashdesk/internal/domain/errors"
	"github.com/opentill/cashdesk/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// RecentLimitMax caps how many entries a single listing may return.
const (
	RecentLimitMax     = 100
	recentLimitDefault = 20
)

// BalanceService computes derived balances from ledger history. A customer
// has no stored balance anywhere; the sum over matching entries is the only
// authoritative value.
type BalanceService struct {
	store ledger.Store
}

func NewBalanceService(store ledger.Store) *BalanceService {
	return &BalanceService{store: store}
}

// Balance returns the signed sum of all entries matching the customer.
// Zero matching entries is a valid answer of zero, not an error.
func (s *BalanceService) Balance(ctx context.Context, customer string) (decimal.Decimal, error) {
	if strings.TrimSpace(customer) == "" {
		return decimal.Zero, domainErrors.NewValidationError("customer", "cannot be empty")
	}
	snapshot, err := s.store.ScanAll(ctx)
	if err != nil {
		return decimal.Zero, domainErrors.NewStoreError("scan ledger", err)
	}
	return ledger.BalanceOf(customer, snapshot), nil
}

// BatchBalances computes balances for many customers against one shared
// ledger snapshot. Per-name results are identical to calling Balance
// individually; the batch form only avoids re-reading the store per name.
func (s *BalanceService) BatchBalances(ctx context.Context, customers []string) (map[string]decimal.Decimal, error) {
	if len(customers) == 0 {
		return nil, domainErrors.NewValidationError("customers", "cannot be empty")
	}
	for _, name := range customers {
		if strings.TrimSpace(name) == "" {
			return nil, domainErrors.NewValidationError("customers", "cannot contain empty names")
		}
	}
	snapshot, err := s.store.ScanAll(ctx)
	if err != nil {
		return nil, domainErrors.NewStoreError("scan ledger", err)
	}
	return ledger.BatchBalances(customers, snapshot), nil
}

// Recent returns committed entries newest first. The limit is clamped to
// [1, RecentLimitMax]; zero or negative limits fall back to a default.
func (s *BalanceService) Recent(ctx context.Context, limit int) ([]ledger.Entry, error) {
	if limit <= 0 {
		limit = recentLimitDefault
	}
	if limit > RecentLimitMax {
		limit = RecentLimitMax
	}

	snapshot, err := s.store.ScanAll(ctx)
	if err != nil {
		return nil, domainErrors.NewStoreError("scan ledger", err)
	}

	sort.SliceStable(snapshot, func(i, j int) bool {
		return snapshot[i].Timestamp.After(snapshot[j].Timestamp)
	})
	if len(snapshot) > limit {
		snapshot = snapshot[:limit]
	}
	return snapshot, nil
}
