package budget

import (
	"github.com/shopspring/decimal"
)

// DefaultTotalBudget is the ceiling assigned when the singleton ledger row is
// created lazily on first access.
var DefaultTotalBudget = decimal.NewFromInt(5000)

// Budget is the placement cell's single ledger row: the overall ceiling set
// by the principal plus the running total of amounts granted by the student
// welfare officer.
type Budget struct {
	TotalBudget decimal.Decimal
	TotalUsed   decimal.Decimal
	Remaining   decimal.Decimal
}

// NewDefault returns the ledger as it looks when first created.
func NewDefault() Budget {
	return Budget{
		TotalBudget: DefaultTotalBudget,
		TotalUsed:   decimal.Zero,
		Remaining:   DefaultTotalBudget,
	}
}

// ApplyDelta adds delta to TotalUsed, clamping at zero, and recomputes
// Remaining. Grants pass the expense total, revocations and deletions its
// negation, item edits the signed difference.
func (b Budget) ApplyDelta(delta decimal.Decimal) Budget {
	used := b.TotalUsed.Add(delta)
	if used.IsNegative() {
		used = decimal.Zero
	}
	b.TotalUsed = used
	b.Remaining = b.TotalBudget.Sub(used)
	return b
}

// SetTotal overwrites the ceiling and recomputes Remaining.
func (b Budget) SetTotal(total decimal.Decimal) Budget {
	b.TotalBudget = total
	b.Remaining = total.Sub(b.TotalUsed)
	return b
}

// UsageReport is the aggregate view returned by /api/budget-usage. TotalUsed
// here is computed from officer-approved expenses, not from the stored
// ledger column (the two views are intentionally distinct, see the expense
// workflow).
type UsageReport struct {
	TotalBudget decimal.Decimal
	TotalUsed   decimal.Decimal
	Remaining   decimal.Decimal
}
