package company

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	Create(ctx context.Context, company Company) (Company, error)
	GetAll(ctx context.Context) ([]Company, error)
	Get(ctx context.Context, id string) (Company, error)
	Update(ctx context.Context, company Company) (Company, error)
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	AttachExpense(ctx context.Context, companyId string, expenseId string) error
	DetachExpense(ctx context.Context, companyId string, expenseId string) error
}

type ServiceImpl struct {
	repo Repository
}

func NewService(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) Create(ctx context.Context, company Company) (Company, error) {
	company.ID = uuid.NewString()
	if err := s.repo.Store(ctx, company); err != nil {
		return Company{}, err
	}
	return company, nil
}

func (s *ServiceImpl) GetAll(ctx context.Context) ([]Company, error) {
	return s.repo.FindAll(ctx)
}

func (s *ServiceImpl) Get(ctx context.Context, id string) (Company, error) {
	return s.repo.FindById(ctx, id)
}

func (s *ServiceImpl) Update(ctx context.Context, company Company) (Company, error) {
	updated, err := s.repo.Update(ctx, company)
	if err != nil {
		return Company{}, err
	}
	if !updated {
		log.Warnf("company not updated, probably because it does not exist (%s)", company.ID)
		return Company{}, ErrCompanyNotFound
	}
	return s.repo.FindById(ctx, company.ID)
}

func (s *ServiceImpl) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		log.Warnf("company not deleted, probably because it does not exist (%s)", id)
		return ErrCompanyNotFound
	}
	return nil
}

func (s *ServiceImpl) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.repo.FindById(ctx, id)
	if err == ErrCompanyNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up company: %w", err)
	}
	return true, nil
}

func (s *ServiceImpl) AttachExpense(ctx context.Context, companyId string, expenseId string) error {
	return s.repo.AttachExpense(ctx, companyId, expenseId)
}

func (s *ServiceImpl) DetachExpense(ctx context.Context, companyId string, expenseId string) error {
	return s.repo.DetachExpense(ctx, companyId, expenseId)
}
