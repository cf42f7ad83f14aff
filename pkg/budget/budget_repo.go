package budget

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/placementcell/placementcell/internal/database"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type BudgetRepo interface {
	// Find returns the singleton ledger row. The bool reports whether it
	// exists yet.
	Find(ctx context.Context) (Budget, bool, error)
	// Save creates or overwrites the singleton ledger row.
	Save(ctx context.Context, budget Budget) error
}

// singletonId is the fixed primary key of the one ledger row per deployment.
const singletonId = 1

type BudgetRepoImpl struct {
	db *sql.DB
}

func NewBudgetRepo(db *sql.DB) *BudgetRepoImpl {
	return &BudgetRepoImpl{db: db}
}

func (r *BudgetRepoImpl) Find(ctx context.Context) (Budget, bool, error) {
	query := `SELECT total_budget, total_used, remaining FROM budget WHERE id = $1`

	var totalBudget, totalUsed, remaining string
	err := database.Querier(ctx, r.db).QueryRowContext(ctx, query, singletonId).
		Scan(&totalBudget, &totalUsed, &remaining)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Budget{}, false, nil
		}
		err := fmt.Errorf("could not query budget: %w", err)
		log.Error(err)
		return Budget{}, false, err
	}

	budget, err := scanAmounts(totalBudget, totalUsed, remaining)
	if err != nil {
		log.Error(err)
		return Budget{}, false, err
	}
	return budget, true, nil
}

func (r *BudgetRepoImpl) Save(ctx context.Context, budget Budget) error {
	query := `INSERT INTO budget (id, total_budget, total_used, remaining)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (id) DO UPDATE SET
					total_budget = EXCLUDED.total_budget,
					total_used = EXCLUDED.total_used,
					remaining = EXCLUDED.remaining`

	_, err := database.Querier(ctx, r.db).ExecContext(ctx, query,
		singletonId,
		budget.TotalBudget.String(),
		budget.TotalUsed.String(),
		budget.Remaining.String(),
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func scanAmounts(totalBudget, totalUsed, remaining string) (Budget, error) {
	var budget Budget
	var err error
	if budget.TotalBudget, err = decimal.NewFromString(totalBudget); err != nil {
		return Budget{}, fmt.Errorf("could not parse total budget: %w", err)
	}
	if budget.TotalUsed, err = decimal.NewFromString(totalUsed); err != nil {
		return Budget{}, fmt.Errorf("could not parse total used: %w", err)
	}
	if budget.Remaining, err = decimal.NewFromString(remaining); err != nil {
		return Budget{}, fmt.Errorf("could not parse remaining: %w", err)
	}
	return budget, nil
}
