package expense

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/placementcell/placementcell/internal/database"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	createdAtFormat = time.RFC3339
	visitDateFormat = "2006-01-02"
)

// Filter narrows a listing by the approval flags and the submitter. Nil flag
// pointers mean "any".
type Filter struct {
	SubmittedBy         string
	ApprovedByOfficer   *bool
	ApprovedBySWOfficer *bool
	ApprovedByPrincipal *bool
}

type Repository interface {
	Store(ctx context.Context, expense Expense) error
	FindById(ctx context.Context, id string) (Expense, error)
	List(ctx context.Context, filter Filter) ([]Expense, error)
	Update(ctx context.Context, expense Expense) (bool, error)
	// SetLedgerApplied flips the idempotence guard after a ledger grant or
	// refund.
	SetLedgerApplied(ctx context.Context, id string, applied bool) error
	Delete(ctx context.Context, id string) (bool, error)
	// SumOfficerApproved feeds the budget usage report.
	SumOfficerApproved(ctx context.Context) (decimal.Decimal, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Store(ctx context.Context, expense Expense) error {
	q := database.Querier(ctx, r.db)

	query := `INSERT INTO expense (
					id,
					company_id,
					submitted_by,
					initial_amount,
					total_amount,
					available_balance,
					approved_by_officer,
					approved_by_sw_officer,
					approved_by_principal,
					status,
					sw_used,
					created_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := q.ExecContext(ctx, query,
		expense.ID,
		companyIdParam(expense.CompanyID),
		expense.SubmittedBy,
		expense.InitialAmount.String(),
		expense.TotalAmount.String(),
		expense.AvailableBalance.String(),
		expense.ApprovedByOfficer,
		expense.ApprovedBySWOfficer,
		expense.ApprovedByPrincipal,
		string(expense.Status),
		expense.LedgerApplied,
		expense.CreatedAt.UTC().Format(createdAtFormat),
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return err
	}

	return r.replaceItems(ctx, expense.ID, expense.Items)
}

func (r *RepositoryImpl) FindById(ctx context.Context, id string) (Expense, error) {
	query := selectExpenseQuery + ` WHERE e.id = $1`

	row := database.Querier(ctx, r.db).QueryRowContext(ctx, query, id)
	expense, err := scanExpense(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Expense{}, ErrExpenseNotFound
		}
		log.Error(err)
		return Expense{}, err
	}

	items, err := r.items(ctx, id)
	if err != nil {
		return Expense{}, err
	}
	expense.Items = items
	return expense, nil
}

func (r *RepositoryImpl) List(ctx context.Context, filter Filter) ([]Expense, error) {
	var conditions []string
	var args []any
	next := func() string { return fmt.Sprintf("$%d", len(args)) }

	if filter.SubmittedBy != "" {
		args = append(args, filter.SubmittedBy)
		conditions = append(conditions, "e.submitted_by = "+next())
	}
	if filter.ApprovedByOfficer != nil {
		args = append(args, *filter.ApprovedByOfficer)
		conditions = append(conditions, "e.approved_by_officer = "+next())
	}
	if filter.ApprovedBySWOfficer != nil {
		args = append(args, *filter.ApprovedBySWOfficer)
		conditions = append(conditions, "e.approved_by_sw_officer = "+next())
	}
	if filter.ApprovedByPrincipal != nil {
		args = append(args, *filter.ApprovedByPrincipal)
		conditions = append(conditions, "e.approved_by_principal = "+next())
	}

	query := selectExpenseQuery
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY e.created_at"

	rows, err := database.Querier(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query expenses: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var expenses []Expense
	for rows.Next() {
		expense, err := scanExpense(rows.Scan)
		if err != nil {
			log.Error(err)
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}

	for i := range expenses {
		items, err := r.items(ctx, expenses[i].ID)
		if err != nil {
			return nil, err
		}
		expenses[i].Items = items
	}
	return expenses, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, expense Expense) (bool, error) {
	q := database.Querier(ctx, r.db)

	query := `UPDATE expense SET
					company_id = $1,
					submitted_by = $2,
					initial_amount = $3,
					total_amount = $4,
					available_balance = $5,
					approved_by_officer = $6,
					approved_by_sw_officer = $7,
					approved_by_principal = $8,
					status = $9
				WHERE id = $10`

	result, err := q.ExecContext(ctx, query,
		companyIdParam(expense.CompanyID),
		expense.SubmittedBy,
		expense.InitialAmount.String(),
		expense.TotalAmount.String(),
		expense.AvailableBalance.String(),
		expense.ApprovedByOfficer,
		expense.ApprovedBySWOfficer,
		expense.ApprovedByPrincipal,
		string(expense.Status),
		expense.ID,
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return false, err
	}
	if rowsAffected != 1 {
		return false, nil
	}

	if err := r.replaceItems(ctx, expense.ID, expense.Items); err != nil {
		return false, err
	}
	return true, nil
}

func (r *RepositoryImpl) SetLedgerApplied(ctx context.Context, id string, applied bool) error {
	query := `UPDATE expense SET sw_used = $1 WHERE id = $2`

	_, err := database.Querier(ctx, r.db).ExecContext(ctx, query, applied, id)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, id string) (bool, error) {
	q := database.Querier(ctx, r.db)

	if _, err := q.ExecContext(ctx, `DELETE FROM expense_item WHERE expense_id = $1`, id); err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}

	result, err := q.ExecContext(ctx, `DELETE FROM expense WHERE id = $1`, id)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return false, err
	}
	return rowsAffected == 1, nil
}

func (r *RepositoryImpl) SumOfficerApproved(ctx context.Context) (decimal.Decimal, error) {
	query := `SELECT total_amount FROM expense WHERE approved_by_officer = $1`

	rows, err := database.Querier(ctx, r.db).QueryContext(ctx, query, true)
	if err != nil {
		err := fmt.Errorf("could not query approved expenses: %w", err)
		log.Error(err)
		return decimal.Zero, err
	}
	defer rows.Close()

	// Amounts are stored as text for exactness, so the sum happens here
	// rather than in SQL.
	sum := decimal.Zero
	for rows.Next() {
		var amount string
		if err := rows.Scan(&amount); err != nil {
			err := fmt.Errorf("could not scan total amount: %w", err)
			log.Error(err)
			return decimal.Zero, err
		}
		parsed, err := decimal.NewFromString(amount)
		if err != nil {
			err := fmt.Errorf("could not parse total amount: %w", err)
			log.Error(err)
			return decimal.Zero, err
		}
		sum = sum.Add(parsed)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return decimal.Zero, err
	}
	return sum, nil
}

func (r *RepositoryImpl) replaceItems(ctx context.Context, expenseId string, items []Item) error {
	q := database.Querier(ctx, r.db)

	if _, err := q.ExecContext(ctx, `DELETE FROM expense_item WHERE expense_id = $1`, expenseId); err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return err
	}

	insertQuery := `INSERT INTO expense_item (expense_id, position, description, amount) VALUES ($1, $2, $3, $4)`
	for i, item := range items {
		if _, err := q.ExecContext(ctx, insertQuery, expenseId, i, item.Description, item.Amount.String()); err != nil {
			err := fmt.Errorf("could not execute query: %w", err)
			log.Error(err)
			return err
		}
	}
	return nil
}

func (r *RepositoryImpl) items(ctx context.Context, expenseId string) ([]Item, error) {
	query := `SELECT description, amount FROM expense_item WHERE expense_id = $1 ORDER BY position`

	rows, err := database.Querier(ctx, r.db).QueryContext(ctx, query, expenseId)
	if err != nil {
		err := fmt.Errorf("could not query expense items: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		var amount string
		if err := rows.Scan(&item.Description, &amount); err != nil {
			err := fmt.Errorf("could not scan expense item: %w", err)
			log.Error(err)
			return nil, err
		}
		if item.Amount, err = decimal.NewFromString(amount); err != nil {
			err := fmt.Errorf("could not parse item amount: %w", err)
			log.Error(err)
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return items, nil
}

const selectExpenseQuery = `
	SELECT e.id, e.company_id, e.submitted_by, e.initial_amount, e.total_amount, e.available_balance,
	       e.approved_by_officer, e.approved_by_sw_officer, e.approved_by_principal, e.status, e.sw_used, e.created_at,
	       c.name, c.location, c.visit_date
	FROM expense e
	LEFT JOIN company c ON c.id = e.company_id`

func scanExpense(scan func(dest ...any) error) (Expense, error) {
	var e Expense
	var companyId, companyName, companyLocation, companyVisitDate sql.NullString
	var initialAmount, totalAmount, availableBalance, status, createdAt string

	err := scan(
		&e.ID, &companyId, &e.SubmittedBy, &initialAmount, &totalAmount, &availableBalance,
		&e.ApprovedByOfficer, &e.ApprovedBySWOfficer, &e.ApprovedByPrincipal, &status, &e.LedgerApplied, &createdAt,
		&companyName, &companyLocation, &companyVisitDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Expense{}, err
		}
		return Expense{}, fmt.Errorf("could not scan expense: %w", err)
	}

	e.Status = Status(status)
	if companyId.Valid {
		e.CompanyID = companyId.String
	}
	if e.InitialAmount, err = decimal.NewFromString(initialAmount); err != nil {
		return Expense{}, fmt.Errorf("could not parse initial amount: %w", err)
	}
	if e.TotalAmount, err = decimal.NewFromString(totalAmount); err != nil {
		return Expense{}, fmt.Errorf("could not parse total amount: %w", err)
	}
	if e.AvailableBalance, err = decimal.NewFromString(availableBalance); err != nil {
		return Expense{}, fmt.Errorf("could not parse available balance: %w", err)
	}
	if e.CreatedAt, err = time.Parse(createdAtFormat, createdAt); err != nil {
		return Expense{}, fmt.Errorf("could not parse created at: %w", err)
	}

	if companyId.Valid && companyName.Valid {
		info := &CompanyInfo{ID: companyId.String, Name: companyName.String, Location: companyLocation.String}
		if companyVisitDate.Valid {
			visitDate, err := time.Parse(visitDateFormat, companyVisitDate.String)
			if err != nil {
				return Expense{}, fmt.Errorf("could not parse visit date: %w", err)
			}
			info.VisitDate = visitDate
		}
		e.Company = info
	}

	return e, nil
}

func companyIdParam(companyId string) interface{} {
	if companyId == "" {
		return nil
	}
	return companyId
}
