package expense

import (
	"context"
	"testing"
	"time"

	"github.com/placementcell/placementcell/internal/auth"
	"github.com/placementcell/placementcell/internal/database"
	"github.com/placementcell/placementcell/internal/utils"
	"github.com/placementcell/placementcell/pkg/budget"
	"github.com/placementcell/placementcell/pkg/company"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = auth.WithActor(context.Background(), auth.Actor{Name: "asha", Role: auth.RoleCoordinator})

var (
	expenseRepoStub = NewStubRepository()
	budgetRepoStub  = budget.NewStubBudgetRepo()
	companyRepoStub = company.NewStubRepository()
)

var (
	ledgerService  *budget.BudgetServiceImpl
	companyService *company.ServiceImpl
	service        Service
)

func setup(t *testing.T) func() {
	ledgerService = budget.NewBudgetService(budgetRepoStub, expenseRepoStub)
	companyService = company.NewService(companyRepoStub)
	clock := &utils.MockClock{FixedNow: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	service = NewService(expenseRepoStub, companyService, ledgerService, database.StubTransactor{}, clock)
	return func() {
		t.Log("Teardown after test")
		expenseRepoStub.Cleanup()
		budgetRepoStub.Cleanup()
		companyRepoStub.Cleanup()
	}
}

func items(amounts ...int64) []Item {
	result := make([]Item, 0, len(amounts))
	for _, amount := range amounts {
		result = append(result, Item{Description: "item", Amount: decimal.NewFromInt(amount)})
	}
	return result
}

func boolPtr(v bool) *bool { return &v }

func usedAmount(t *testing.T) decimal.Decimal {
	t.Helper()
	current, err := ledgerService.Current(ctx)
	require.NoError(t, err)
	return current.TotalUsed
}

func TestServiceImpl_Create(t *testing.T) {
	t.Run("should compute derived fields on creation", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		created, err := service.Create(ctx, NewExpense{SubmittedBy: "asha", Items: items(1200, 800)})

		// then
		require.NoError(t, err)
		assert.Equal(t, "2000", created.TotalAmount.String())
		assert.Equal(t, "3000", created.AvailableBalance.String())
		assert.Equal(t, StatusPending, created.Status)
		assert.True(t, created.InitialAmount.Equal(DefaultInitialAmount))
	})

	t.Run("should take the submitter from the actor when absent", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		created, err := service.Create(ctx, NewExpense{Items: items(100)})

		// then
		require.NoError(t, err)
		assert.Equal(t, "asha", created.SubmittedBy)
	})

	t.Run("should attach the expense to the company's list", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		visited, err := companyService.Create(ctx, company.Company{Name: "Acme"})
		require.NoError(t, err)

		// when
		created, err := service.Create(ctx, NewExpense{CompanyID: visited.ID, SubmittedBy: "asha", Items: items(500)})

		// then
		require.NoError(t, err)
		stored, err := companyService.Get(ctx, visited.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{created.ID}, stored.Expenses)
	})

	t.Run("should reject an unknown company reference", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Create(ctx, NewExpense{CompanyID: "missing", SubmittedBy: "asha", Items: items(500)})

		// then
		assert.ErrorIs(t, err, company.ErrCompanyNotFound)
	})
}

func TestServiceImpl_Update_LedgerProtocol(t *testing.T) {
	t.Run("granting SW approval debits the ledger once", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, NewExpense{SubmittedBy: "asha", Items: items(2000)})
		require.NoError(t, err)

		// when
		updated, err := service.Update(ctx, created.ID, UpdateRequest{ApprovedBySWOfficer: boolPtr(true)})

		// then
		require.NoError(t, err)
		assert.True(t, updated.LedgerApplied)
		assert.Equal(t, "2000", usedAmount(t).String())
	})

	t.Run("granting twice in a row does not double-debit", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, NewExpense{SubmittedBy: "asha", Items: items(2000)})
		require.NoError(t, err)
		_, err = service.Update(ctx, created.ID, UpdateRequest{ApprovedBySWOfficer: boolPtr(true)})
		require.NoError(t, err)

		// when
		_, err = service.Update(ctx, created.ID, UpdateRequest{ApprovedBySWOfficer: boolPtr(true)})

		// then
		require.NoError(t, err)
		assert.Equal(t, "2000", usedAmount(t).String())
	})

	t.Run("grant then revoke restores the ledger exactly", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, NewExpense{SubmittedBy: "asha", Items: items(1234)})
		require.NoError(t, err)
		before := usedAmount(t)

		// when
		_, err = service.Update(ctx, created.ID, UpdateRequest{ApprovedBySWOfficer: boolPtr(true)})
		require.NoError(t, err)
		updated, err := service.Update(ctx, created.ID, UpdateRequest{ApprovedBySWOfficer: boolPtr(false)})

		// then
		require.NoError(t, err)
		assert.False(t, updated.LedgerApplied)
		assert.True(t, usedAmount(t).Equal(before), "totalUsed = %s, want %s", usedAmount(t), before)
	})

	t.Run("editing items on a ledger-applied expense adjusts by the difference", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, NewExpense{SubmittedBy: "asha", Items: items(1000)})
		require.NoError(t, err)
		_, err = service.Update(ctx, created.ID, UpdateRequest{ApprovedBySWOfficer: boolPtr(true)})
		require.NoError(t, err)

		// when
		newItems := items(1500)
		_, err = service.Update(ctx, created.ID, UpdateRequest{Items: &newItems})

		// then
		require.NoError(t, err)
		assert.Equal(t, "1500", usedAmount(t).String())
	})

	t.Run("granting and editing in the same request debits the new total only", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, NewExpense{SubmittedBy: "asha", Items: items(1000)})
		require.NoError(t, err)

		// when
		newItems := items(1500)
		_, err = service.Update(ctx, created.ID, UpdateRequest{ApprovedBySWOfficer: boolPtr(true), Items: &newItems})

		// then
		require.NoError(t, err)
		assert.Equal(t, "1500", usedAmount(t).String())
	})

	t.Run("revoking clamps the ledger at zero", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given an expense whose debit no longer matches the stored usage
		created, err := service.Create(ctx, NewExpense{SubmittedBy: "asha", Items: items(2000)})
		require.NoError(t, err)
		_, err = service.Update(ctx, created.ID, UpdateRequest{ApprovedBySWOfficer: boolPtr(true)})
		require.NoError(t, err)
		seeded := budget.NewDefault().ApplyDelta(decimal.NewFromInt(100))
		require.NoError(t, budgetRepoStub.Save(ctx, seeded))

		// when
		_, err = service.Update(ctx, created.ID, UpdateRequest{ApprovedBySWOfficer: boolPtr(false)})

		// then
		require.NoError(t, err)
		assert.Equal(t, "0", usedAmount(t).String())
	})

	t.Run("update of unknown expense fails with not found", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Update(ctx, "missing", UpdateRequest{ApprovedByOfficer: boolPtr(true)})

		// then
		assert.ErrorIs(t, err, ErrExpenseNotFound)
	})
}

func TestServiceImpl_Update_CompanyRelink(t *testing.T) {
	t.Run("reassigning moves the id between company lists exactly once", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		companyX, err := companyService.Create(ctx, company.Company{Name: "X"})
		require.NoError(t, err)
		companyY, err := companyService.Create(ctx, company.Company{Name: "Y"})
		require.NoError(t, err)
		created, err := service.Create(ctx, NewExpense{CompanyID: companyX.ID, SubmittedBy: "asha", Items: items(100)})
		require.NoError(t, err)

		// when
		_, err = service.Update(ctx, created.ID, UpdateRequest{CompanyID: &companyY.ID})

		// then
		require.NoError(t, err)
		storedX, err := companyService.Get(ctx, companyX.ID)
		require.NoError(t, err)
		storedY, err := companyService.Get(ctx, companyY.ID)
		require.NoError(t, err)
		assert.Empty(t, storedX.Expenses)
		assert.Equal(t, []string{created.ID}, storedY.Expenses)
	})

	t.Run("re-sending the same company does not duplicate the id", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		visited, err := companyService.Create(ctx, company.Company{Name: "Acme"})
		require.NoError(t, err)
		created, err := service.Create(ctx, NewExpense{CompanyID: visited.ID, SubmittedBy: "asha", Items: items(100)})
		require.NoError(t, err)

		// when
		_, err = service.Update(ctx, created.ID, UpdateRequest{CompanyID: &visited.ID})

		// then
		require.NoError(t, err)
		stored, err := companyService.Get(ctx, visited.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{created.ID}, stored.Expenses)
	})
}

func TestServiceImpl_Delete(t *testing.T) {
	t.Run("deleting a ledger-applied expense refunds the ledger", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, NewExpense{SubmittedBy: "asha", Items: items(2500)})
		require.NoError(t, err)
		_, err = service.Update(ctx, created.ID, UpdateRequest{ApprovedBySWOfficer: boolPtr(true)})
		require.NoError(t, err)

		// when
		err = service.Delete(ctx, created.ID)

		// then
		require.NoError(t, err)
		assert.Equal(t, "0", usedAmount(t).String())
		_, err = service.Get(ctx, created.ID)
		assert.ErrorIs(t, err, ErrExpenseNotFound)
	})

	t.Run("deleting detaches the expense from its company", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		visited, err := companyService.Create(ctx, company.Company{Name: "Acme"})
		require.NoError(t, err)
		created, err := service.Create(ctx, NewExpense{CompanyID: visited.ID, SubmittedBy: "asha", Items: items(100)})
		require.NoError(t, err)

		// when
		err = service.Delete(ctx, created.ID)

		// then
		require.NoError(t, err)
		stored, err := companyService.Get(ctx, visited.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.Expenses)
	})

	t.Run("deleting an unknown expense fails with not found", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		err := service.Delete(ctx, "missing")

		// then
		assert.ErrorIs(t, err, ErrExpenseNotFound)
	})
}

func TestServiceImpl_ListForRole(t *testing.T) {
	t.Run("each role sees its slice of the pipeline", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		pending, err := service.Create(ctx, NewExpense{SubmittedBy: "asha", Items: items(100)})
		require.NoError(t, err)
		officerDone, err := service.Create(ctx, NewExpense{SubmittedBy: "ravi", Items: items(200)})
		require.NoError(t, err)
		_, err = service.Update(ctx, officerDone.ID, UpdateRequest{ApprovedByOfficer: boolPtr(true)})
		require.NoError(t, err)
		swDone, err := service.Create(ctx, NewExpense{SubmittedBy: "ravi", Items: items(300)})
		require.NoError(t, err)
		_, err = service.Update(ctx, swDone.ID, UpdateRequest{ApprovedByOfficer: boolPtr(true), ApprovedBySWOfficer: boolPtr(true)})
		require.NoError(t, err)

		// then
		coordinatorView, err := service.ListForRole(ctx, auth.RoleCoordinator, "asha", nil)
		require.NoError(t, err)
		require.Len(t, coordinatorView, 1)
		assert.Equal(t, pending.ID, coordinatorView[0].ID)

		officerView, err := service.ListForRole(ctx, auth.RoleOfficer, "", nil)
		require.NoError(t, err)
		assert.Len(t, officerView, 1)

		swPendingView, err := service.ListForRole(ctx, auth.RoleSWOfficer, "", nil)
		require.NoError(t, err)
		require.Len(t, swPendingView, 1)
		assert.Equal(t, officerDone.ID, swPendingView[0].ID)

		swHistoryView, err := service.ListForRole(ctx, auth.RoleSWOfficer, "", boolPtr(true))
		require.NoError(t, err)
		require.Len(t, swHistoryView, 1)
		assert.Equal(t, swDone.ID, swHistoryView[0].ID)

		principalView, err := service.ListForRole(ctx, auth.RolePrincipal, "", nil)
		require.NoError(t, err)
		require.Len(t, principalView, 1)
		assert.Equal(t, swDone.ID, principalView[0].ID)
	})

	t.Run("coordinator listing without a resolvable submitter is rejected", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given an expense submitted by someone else
		_, err := service.Create(ctx, NewExpense{SubmittedBy: "ravi", Items: items(100)})
		require.NoError(t, err)

		// when no submitter can be resolved
		_, err = service.ListForRole(ctx, auth.RoleCoordinator, "", nil)

		// then the listing must not widen to every expense
		assert.ErrorIs(t, err, ErrSubmitterUnknown)
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.ListForRole(ctx, "clerk", "", nil)

		// then
		assert.Error(t, err)
	})
}

// The end-to-end walk from the workflow description: budget 5000, a 2000
// expense approved by the officer, SW approval, an edit to 2500, deletion.
func TestWorkflow_EndToEnd(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	_, err := ledgerService.SetTotal(ctx, decimal.NewFromInt(5000))
	require.NoError(t, err)

	created, err := service.Create(ctx, NewExpense{SubmittedBy: "asha", Items: items(2000)})
	require.NoError(t, err)

	// Officer approval alone drives the usage report
	_, err = service.Update(ctx, created.ID, UpdateRequest{ApprovedByOfficer: boolPtr(true)})
	require.NoError(t, err)
	report, err := ledgerService.UsageReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2000", report.TotalUsed.String())
	assert.Equal(t, "3000", report.Remaining.String())
	assert.Equal(t, "0", usedAmount(t).String(), "stored ledger must not move on officer approval")

	// SW approval debits the stored ledger
	_, err = service.Update(ctx, created.ID, UpdateRequest{ApprovedBySWOfficer: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, "2000", usedAmount(t).String())

	// Editing the items adjusts the ledger by the difference
	newItems := items(2500)
	_, err = service.Update(ctx, created.ID, UpdateRequest{Items: &newItems})
	require.NoError(t, err)
	assert.Equal(t, "2500", usedAmount(t).String())

	// Deletion refunds the full current total
	require.NoError(t, service.Delete(ctx, created.ID))
	assert.Equal(t, "0", usedAmount(t).String())

	current, err := ledgerService.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "5000", current.Remaining.String())
}
