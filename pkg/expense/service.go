package expense

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/placementcell/placementcell/internal/auth"
	"github.com/placementcell/placementcell/internal/database"
	"github.com/placementcell/placementcell/internal/utils"
	"github.com/placementcell/placementcell/pkg/budget"
	"github.com/placementcell/placementcell/pkg/company"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Ledger is the slice of the budget service the workflow engine drives.
// Positive deltas debit the ledger, negative ones refund it; clamping at
// zero happens inside the ledger.
type Ledger interface {
	ApplyDelta(ctx context.Context, delta decimal.Decimal) (budget.Budget, error)
}

// CompanyDirectory is the slice of the company service the engine uses to
// validate references and maintain each company's ordered expense list.
type CompanyDirectory interface {
	Exists(ctx context.Context, id string) (bool, error)
	AttachExpense(ctx context.Context, companyId string, expenseId string) error
	DetachExpense(ctx context.Context, companyId string, expenseId string) error
}

// NewExpense is a coordinator's submission.
type NewExpense struct {
	CompanyID     string
	SubmittedBy   string
	Items         []Item
	InitialAmount decimal.Decimal
}

// UpdateRequest carries a partial update; nil fields are left untouched.
// A non-nil CompanyID counts as "the company field is present", which drives
// the relink step even when the value is unchanged.
type UpdateRequest struct {
	CompanyID           *string
	SubmittedBy         *string
	Items               *[]Item
	InitialAmount       *decimal.Decimal
	ApprovedByOfficer   *bool
	ApprovedBySWOfficer *bool
	ApprovedByPrincipal *bool
}

type Service interface {
	Create(ctx context.Context, submission NewExpense) (Expense, error)
	Get(ctx context.Context, id string) (Expense, error)
	// ListForRole returns the expenses pending (or, for the SW officer,
	// already past) the given role's attention.
	ListForRole(ctx context.Context, role auth.Role, user string, swApproved *bool) ([]Expense, error)
	Update(ctx context.Context, id string, req UpdateRequest) (Expense, error)
	Delete(ctx context.Context, id string) error
}

type ServiceImpl struct {
	repo      Repository
	companies CompanyDirectory
	ledger    Ledger
	tx        database.Transactor
	clock     utils.Clock
}

func NewService(repo Repository, companies CompanyDirectory, ledger Ledger, tx database.Transactor, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, companies: companies, ledger: ledger, tx: tx, clock: clock}
}

func (s *ServiceImpl) Create(ctx context.Context, submission NewExpense) (Expense, error) {
	if submission.SubmittedBy == "" {
		if actor, err := auth.CurrentActor(ctx); err == nil {
			submission.SubmittedBy = actor.Name
		}
	}

	expense := Expense{
		ID:            uuid.NewString(),
		CompanyID:     submission.CompanyID,
		SubmittedBy:   submission.SubmittedBy,
		Items:         submission.Items,
		InitialAmount: submission.InitialAmount,
		CreatedAt:     s.clock.Now(),
	}
	if expense.InitialAmount.IsZero() {
		expense.InitialAmount = DefaultInitialAmount
	}
	expense.Recompute()

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if expense.CompanyID != "" {
			exists, err := s.companies.Exists(ctx, expense.CompanyID)
			if err != nil {
				return err
			}
			if !exists {
				return company.ErrCompanyNotFound
			}
		}
		if err := s.repo.Store(ctx, expense); err != nil {
			return err
		}
		if expense.CompanyID != "" {
			return s.companies.AttachExpense(ctx, expense.CompanyID, expense.ID)
		}
		return nil
	})
	if err != nil {
		return Expense{}, err
	}
	return s.repo.FindById(ctx, expense.ID)
}

func (s *ServiceImpl) Get(ctx context.Context, id string) (Expense, error) {
	return s.repo.FindById(ctx, id)
}

func (s *ServiceImpl) ListForRole(ctx context.Context, role auth.Role, user string, swApproved *bool) ([]Expense, error) {
	boolPtr := func(v bool) *bool { return &v }

	var filter Filter
	switch role {
	case auth.RoleCoordinator:
		// An empty submitter would widen the filter to every expense.
		if user == "" {
			return nil, ErrSubmitterUnknown
		}
		filter.SubmittedBy = user
	case auth.RoleOfficer:
		filter.ApprovedByOfficer = boolPtr(false)
	case auth.RoleSWOfficer:
		filter.ApprovedByOfficer = boolPtr(true)
		if swApproved != nil {
			filter.ApprovedBySWOfficer = boolPtr(*swApproved)
		} else {
			filter.ApprovedBySWOfficer = boolPtr(false)
		}
	case auth.RolePrincipal:
		filter.ApprovedByOfficer = boolPtr(true)
		filter.ApprovedBySWOfficer = boolPtr(true)
		filter.ApprovedByPrincipal = boolPtr(false)
	default:
		return nil, fmt.Errorf("unknown role: %q", role)
	}

	return s.repo.List(ctx, filter)
}

// Update applies a partial edit and runs the full approval protocol: derived
// fields are recomputed, the ledger is debited exactly once per SW-approval
// stretch and refunded on revocation, item edits on a ledger-applied expense
// adjust the ledger by the signed difference, and company links follow a
// company change. The whole sequence runs in one transaction.
func (s *ServiceImpl) Update(ctx context.Context, id string, req UpdateRequest) (Expense, error) {
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		expense, err := s.repo.FindById(ctx, id)
		if err != nil {
			return err
		}

		prevApprovedBySW := expense.ApprovedBySWOfficer
		prevTotalAmount := expense.TotalAmount
		prevCompanyId := expense.CompanyID

		if req.CompanyID != nil && *req.CompanyID != "" && *req.CompanyID != prevCompanyId {
			exists, err := s.companies.Exists(ctx, *req.CompanyID)
			if err != nil {
				return err
			}
			if !exists {
				return company.ErrCompanyNotFound
			}
		}

		applyRequest(&expense, req)
		expense.Recompute()

		updated, err := s.repo.Update(ctx, expense)
		if err != nil {
			return err
		}
		if !updated {
			return ErrExpenseNotFound
		}
		log.Debugf("expense %s is now %s", expense.ID, expense.ApprovalState())

		grantedNow := false
		switch {
		case expense.ApprovedBySWOfficer && !prevApprovedBySW && !expense.LedgerApplied:
			// Grant: debit the ledger once for this approval stretch.
			log.Debugf("SW approval granted for expense %s, debiting %s", expense.ID, expense.TotalAmount)
			if _, err := s.ledger.ApplyDelta(ctx, expense.TotalAmount); err != nil {
				return err
			}
			if err := s.repo.SetLedgerApplied(ctx, expense.ID, true); err != nil {
				return err
			}
			expense.LedgerApplied = true
			grantedNow = true

		case !expense.ApprovedBySWOfficer && prevApprovedBySW && expense.LedgerApplied:
			// Revoke: refund what was debited.
			log.Debugf("SW approval revoked for expense %s, refunding %s", expense.ID, expense.TotalAmount)
			if _, err := s.ledger.ApplyDelta(ctx, expense.TotalAmount.Neg()); err != nil {
				return err
			}
			if err := s.repo.SetLedgerApplied(ctx, expense.ID, false); err != nil {
				return err
			}
			expense.LedgerApplied = false
		}

		// An item edit on a ledger-applied expense moves the ledger by the
		// signed difference. A grant in this same request already debited
		// the new total, so the correction is skipped then.
		if expense.LedgerApplied && !grantedNow && !prevTotalAmount.Equal(expense.TotalAmount) {
			delta := expense.TotalAmount.Sub(prevTotalAmount)
			log.Debugf("adjusting ledger by %s after item edit on expense %s", delta, expense.ID)
			if _, err := s.ledger.ApplyDelta(ctx, delta); err != nil {
				return err
			}
		}

		// Relink whenever the request carried a company field: pull from the
		// previous company when the reference changed, then (re-)attach.
		if req.CompanyID != nil {
			if prevCompanyId != "" && prevCompanyId != expense.CompanyID {
				if err := s.companies.DetachExpense(ctx, prevCompanyId, expense.ID); err != nil {
					return err
				}
			}
			if expense.CompanyID != "" {
				if err := s.companies.AttachExpense(ctx, expense.CompanyID, expense.ID); err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return Expense{}, err
	}

	return s.repo.FindById(ctx, id)
}

func (s *ServiceImpl) Delete(ctx context.Context, id string) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		expense, err := s.repo.FindById(ctx, id)
		if err != nil {
			return err
		}

		if expense.LedgerApplied {
			log.Debugf("refunding %s to the ledger before deleting expense %s", expense.TotalAmount, expense.ID)
			if _, err := s.ledger.ApplyDelta(ctx, expense.TotalAmount.Neg()); err != nil {
				return err
			}
		}

		if expense.CompanyID != "" {
			if err := s.companies.DetachExpense(ctx, expense.CompanyID, expense.ID); err != nil {
				return err
			}
		}

		deleted, err := s.repo.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			log.Warnf("expense not deleted, probably because it does not exist (%s)", id)
			return ErrExpenseNotFound
		}
		return nil
	})
}

func applyRequest(expense *Expense, req UpdateRequest) {
	if req.CompanyID != nil {
		expense.CompanyID = *req.CompanyID
	}
	if req.SubmittedBy != nil {
		expense.SubmittedBy = *req.SubmittedBy
	}
	if req.Items != nil {
		expense.Items = *req.Items
	}
	if req.InitialAmount != nil {
		expense.InitialAmount = *req.InitialAmount
	}
	if req.ApprovedByOfficer != nil {
		expense.ApprovedByOfficer = *req.ApprovedByOfficer
	}
	if req.ApprovedBySWOfficer != nil {
		expense.ApprovedBySWOfficer = *req.ApprovedBySWOfficer
	}
	if req.ApprovedByPrincipal != nil {
		expense.ApprovedByPrincipal = *req.ApprovedByPrincipal
	}
}
