package budget

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// ApprovedExpenseSummer reports the sum of totalAmount over all expenses the
// placement officer has approved. Implemented by the expense repository; the
// usage report is gated on the officer flag, not on the ledger column.
type ApprovedExpenseSummer interface {
	SumOfficerApproved(ctx context.Context) (decimal.Decimal, error)
}

type BudgetService interface {
	// Current returns the singleton ledger, creating it with the default
	// total on first access.
	Current(ctx context.Context) (Budget, error)
	// SetTotal creates or overwrites the ceiling. No validation is applied;
	// the principal may set any decimal, including zero or negative.
	SetTotal(ctx context.Context, total decimal.Decimal) (Budget, error)
	// UsageReport computes the officer-approved usage view.
	UsageReport(ctx context.Context) (UsageReport, error)
	// Grant debits the ledger, Revoke and Adjust are expressed through the
	// same delta application.
	ApplyDelta(ctx context.Context, delta decimal.Decimal) (Budget, error)
}

type BudgetServiceImpl struct {
	repo   BudgetRepo
	summer ApprovedExpenseSummer
}

func NewBudgetService(repo BudgetRepo, summer ApprovedExpenseSummer) *BudgetServiceImpl {
	return &BudgetServiceImpl{repo: repo, summer: summer}
}

func (s *BudgetServiceImpl) Current(ctx context.Context) (Budget, error) {
	budget, found, err := s.repo.Find(ctx)
	if err != nil {
		return Budget{}, err
	}
	if !found {
		budget = NewDefault()
		if err := s.repo.Save(ctx, budget); err != nil {
			return Budget{}, fmt.Errorf("failed to create default budget: %w", err)
		}
	}
	return budget, nil
}

func (s *BudgetServiceImpl) SetTotal(ctx context.Context, total decimal.Decimal) (Budget, error) {
	budget, found, err := s.repo.Find(ctx)
	if err != nil {
		return Budget{}, err
	}
	if !found {
		budget = NewDefault()
	}
	budget = budget.SetTotal(total)
	if err := s.repo.Save(ctx, budget); err != nil {
		return Budget{}, err
	}
	return budget, nil
}

func (s *BudgetServiceImpl) ApplyDelta(ctx context.Context, delta decimal.Decimal) (Budget, error) {
	budget, err := s.Current(ctx)
	if err != nil {
		return Budget{}, err
	}
	budget = budget.ApplyDelta(delta)
	if err := s.repo.Save(ctx, budget); err != nil {
		return Budget{}, err
	}
	return budget, nil
}

func (s *BudgetServiceImpl) UsageReport(ctx context.Context) (UsageReport, error) {
	budget, found, err := s.repo.Find(ctx)
	if err != nil {
		return UsageReport{}, err
	}
	totalBudget := DefaultTotalBudget
	if found {
		totalBudget = budget.TotalBudget
	}

	used, err := s.summer.SumOfficerApproved(ctx)
	if err != nil {
		return UsageReport{}, err
	}

	return UsageReport{
		TotalBudget: totalBudget,
		TotalUsed:   used,
		Remaining:   totalBudget.Sub(used),
	}, nil
}
