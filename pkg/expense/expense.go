package expense

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrExpenseNotFound = errors.New("expense not found")

// ErrSubmitterUnknown is returned when a coordinator listing cannot be
// scoped to a submitter (no user parameter and no actor on the request).
var ErrSubmitterUnknown = errors.New("submitter could not be resolved")

// DefaultInitialAmount is the spending ceiling assigned to an expense when
// the submission does not specify one.
var DefaultInitialAmount = decimal.NewFromInt(5000)

// Status is the stored, human-readable summary of the approval flags. It is
// derived from the principal and officer flags only; the student welfare
// officer's flag never changes it.
type Status string

const (
	StatusPending           Status = "Pending"
	StatusOfficerApproved   Status = "Officer Approved"
	StatusPrincipalApproved Status = "Principal Approved"
)

// Item is a single costed line of an expense submission.
type Item struct {
	Description string
	Amount      decimal.Decimal
}

// CompanyInfo is the visited-company summary attached to expenses on reads.
type CompanyInfo struct {
	ID        string
	Name      string
	Location  string
	VisitDate time.Time
}

// Expense is a coordinator's submission of costed line items against a
// company visit (or a general category when CompanyID is empty), subject to
// the three-role approval sequence.
type Expense struct {
	ID          string
	CompanyID   string
	SubmittedBy string
	Items       []Item

	InitialAmount    decimal.Decimal
	TotalAmount      decimal.Decimal
	AvailableBalance decimal.Decimal

	ApprovedByOfficer   bool
	ApprovedBySWOfficer bool
	ApprovedByPrincipal bool
	Status              Status

	// LedgerApplied guards the budget ledger against double debits: it is
	// set when the SW-officer grant debits the ledger and cleared when a
	// revocation refunds it.
	LedgerApplied bool

	CreatedAt time.Time

	// Company is populated on reads when CompanyID resolves.
	Company *CompanyInfo
}

// Recompute refreshes the derived-and-stored fields. It runs before every
// persist so TotalAmount always equals the sum of the current items,
// AvailableBalance always equals InitialAmount - TotalAmount, and Status
// follows the principal > officer > pending priority.
func (e *Expense) Recompute() {
	total := decimal.Zero
	for _, item := range e.Items {
		total = total.Add(item.Amount)
	}
	e.TotalAmount = total
	e.AvailableBalance = e.InitialAmount.Sub(total)

	switch {
	case e.ApprovedByPrincipal:
		e.Status = StatusPrincipalApproved
	case e.ApprovedByOfficer:
		e.Status = StatusOfficerApproved
	default:
		e.Status = StatusPending
	}
}

// ApprovalState is the explicit view of the flag combination. The three
// booleans stay the persisted representation; this type classifies the
// combinations the listing pipeline actually distinguishes.
type ApprovalState int

const (
	StatePending ApprovalState = iota
	StateOfficerApproved
	StateSWOfficerApproved
	StatePrincipalApproved
)

func (s ApprovalState) String() string {
	switch s {
	case StateOfficerApproved:
		return "officer-approved"
	case StateSWOfficerApproved:
		return "sw-officer-approved"
	case StatePrincipalApproved:
		return "principal-approved"
	default:
		return "pending"
	}
}

// ApprovalState classifies the current flag combination. The flags move
// independently, so combinations outside the linear pipeline (such as a
// principal approval without an officer one) collapse onto the furthest
// stage reached.
func (e Expense) ApprovalState() ApprovalState {
	switch {
	case e.ApprovedByPrincipal:
		return StatePrincipalApproved
	case e.ApprovedByOfficer && e.ApprovedBySWOfficer:
		return StateSWOfficerApproved
	case e.ApprovedByOfficer:
		return StateOfficerApproved
	default:
		return StatePending
	}
}
