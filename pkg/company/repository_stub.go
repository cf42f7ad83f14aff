package company

import (
	"context"
)

type StubRepository struct {
	data  map[string]Company
	order []string
}

func NewStubRepository() *StubRepository {
	return &StubRepository{data: map[string]Company{}}
}

func (s *StubRepository) Store(ctx context.Context, company Company) error {
	s.data[company.ID] = company
	s.order = append(s.order, company.ID)
	return nil
}

func (s *StubRepository) FindAll(ctx context.Context) ([]Company, error) {
	companies := make([]Company, 0, len(s.data))
	for _, id := range s.order {
		if company, ok := s.data[id]; ok {
			companies = append(companies, company)
		}
	}
	return companies, nil
}

func (s *StubRepository) FindById(ctx context.Context, id string) (Company, error) {
	company, ok := s.data[id]
	if !ok {
		return Company{}, ErrCompanyNotFound
	}
	return company, nil
}

func (s *StubRepository) Update(ctx context.Context, company Company) (bool, error) {
	existing, ok := s.data[company.ID]
	if !ok {
		return false, nil
	}
	company.Expenses = existing.Expenses
	s.data[company.ID] = company
	return true, nil
}

func (s *StubRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := s.data[id]; !ok {
		return false, nil
	}
	delete(s.data, id)
	return true, nil
}

func (s *StubRepository) AttachExpense(ctx context.Context, companyId string, expenseId string) error {
	company, ok := s.data[companyId]
	if !ok {
		return ErrCompanyNotFound
	}
	expenses := make([]string, 0, len(company.Expenses)+1)
	for _, id := range company.Expenses {
		if id != expenseId {
			expenses = append(expenses, id)
		}
	}
	company.Expenses = append(expenses, expenseId)
	s.data[companyId] = company
	return nil
}

func (s *StubRepository) DetachExpense(ctx context.Context, companyId string, expenseId string) error {
	company, ok := s.data[companyId]
	if !ok {
		return ErrCompanyNotFound
	}
	expenses := make([]string, 0, len(company.Expenses))
	for _, id := range company.Expenses {
		if id != expenseId {
			expenses = append(expenses, id)
		}
	}
	company.Expenses = expenses
	s.data[companyId] = company
	return nil
}

func (s *StubRepository) Cleanup() {
	s.data = map[string]Company{}
	s.order = nil
}
