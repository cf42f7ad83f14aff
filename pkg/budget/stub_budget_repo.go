package budget

import (
	"context"
)

type StubBudgetRepo struct {
	stored Budget
	exists bool
}

func NewStubBudgetRepo() *StubBudgetRepo {
	return &StubBudgetRepo{}
}

func (s *StubBudgetRepo) Find(ctx context.Context) (Budget, bool, error) {
	return s.stored, s.exists, nil
}

func (s *StubBudgetRepo) Save(ctx context.Context, budget Budget) error {
	s.stored = budget
	s.exists = true
	return nil
}

func (s *StubBudgetRepo) Cleanup() {
	s.stored = Budget{}
	s.exists = false
}
