package expense

import (
	"context"

	"github.com/shopspring/decimal"
)

type StubRepository struct {
	data  map[string]Expense
	order []string
}

func NewStubRepository() *StubRepository {
	return &StubRepository{data: map[string]Expense{}}
}

func (s *StubRepository) Store(ctx context.Context, expense Expense) error {
	s.data[expense.ID] = expense
	s.order = append(s.order, expense.ID)
	return nil
}

func (s *StubRepository) FindById(ctx context.Context, id string) (Expense, error) {
	expense, ok := s.data[id]
	if !ok {
		return Expense{}, ErrExpenseNotFound
	}
	return expense, nil
}

func (s *StubRepository) List(ctx context.Context, filter Filter) ([]Expense, error) {
	var expenses []Expense
	for _, id := range s.order {
		expense, ok := s.data[id]
		if !ok {
			continue
		}
		if filter.SubmittedBy != "" && expense.SubmittedBy != filter.SubmittedBy {
			continue
		}
		if filter.ApprovedByOfficer != nil && expense.ApprovedByOfficer != *filter.ApprovedByOfficer {
			continue
		}
		if filter.ApprovedBySWOfficer != nil && expense.ApprovedBySWOfficer != *filter.ApprovedBySWOfficer {
			continue
		}
		if filter.ApprovedByPrincipal != nil && expense.ApprovedByPrincipal != *filter.ApprovedByPrincipal {
			continue
		}
		expenses = append(expenses, expense)
	}
	return expenses, nil
}

func (s *StubRepository) Update(ctx context.Context, expense Expense) (bool, error) {
	existing, ok := s.data[expense.ID]
	if !ok {
		return false, nil
	}
	expense.LedgerApplied = existing.LedgerApplied
	s.data[expense.ID] = expense
	return true, nil
}

func (s *StubRepository) SetLedgerApplied(ctx context.Context, id string, applied bool) error {
	expense, ok := s.data[id]
	if !ok {
		return ErrExpenseNotFound
	}
	expense.LedgerApplied = applied
	s.data[id] = expense
	return nil
}

func (s *StubRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := s.data[id]; !ok {
		return false, nil
	}
	delete(s.data, id)
	return true, nil
}

func (s *StubRepository) SumOfficerApproved(ctx context.Context) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, expense := range s.data {
		if expense.ApprovedByOfficer {
			sum = sum.Add(expense.TotalAmount)
		}
	}
	return sum, nil
}

func (s *StubRepository) Cleanup() {
	s.data = map[string]Expense{}
	s.order = nil
}
