package company

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/placementcell/placementcell/internal/database"
	log "github.com/sirupsen/logrus"
)

const visitDateFormat = "2006-01-02"

type Repository interface {
	Store(ctx context.Context, company Company) error
	FindAll(ctx context.Context) ([]Company, error)
	FindById(ctx context.Context, id string) (Company, error)
	Update(ctx context.Context, company Company) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	// AttachExpense appends the expense id to the company's ordered list.
	// Re-attaching an already listed id moves it to the end instead of
	// duplicating it.
	AttachExpense(ctx context.Context, companyId string, expenseId string) error
	// DetachExpense removes the expense id from the company's list.
	DetachExpense(ctx context.Context, companyId string, expenseId string) error
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Store(ctx context.Context, company Company) error {
	query := `INSERT INTO company (id, name, location, visit_date) VALUES ($1, $2, $3, $4)`

	_, err := database.Querier(ctx, r.db).ExecContext(ctx, query,
		company.ID, company.Name, company.Location, visitDateParam(company.VisitDate))
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) FindAll(ctx context.Context) ([]Company, error) {
	query := `SELECT id, name, location, visit_date FROM company ORDER BY name`

	rows, err := database.Querier(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query companies: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var companies []Company
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			log.Error(err)
			return nil, err
		}
		companies = append(companies, company)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}

	for i := range companies {
		expenses, err := r.expenseIds(ctx, companies[i].ID)
		if err != nil {
			return nil, err
		}
		companies[i].Expenses = expenses
	}

	return companies, nil
}

func (r *RepositoryImpl) FindById(ctx context.Context, id string) (Company, error) {
	query := `SELECT id, name, location, visit_date FROM company WHERE id = $1`

	row := database.Querier(ctx, r.db).QueryRowContext(ctx, query, id)

	var company Company
	var visitDate sql.NullString
	if err := row.Scan(&company.ID, &company.Name, &company.Location, &visitDate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Company{}, ErrCompanyNotFound
		}
		err := fmt.Errorf("could not scan company: %w", err)
		log.Error(err)
		return Company{}, err
	}
	if err := parseVisitDate(visitDate, &company.VisitDate); err != nil {
		log.Error(err)
		return Company{}, err
	}

	expenses, err := r.expenseIds(ctx, company.ID)
	if err != nil {
		return Company{}, err
	}
	company.Expenses = expenses

	return company, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, company Company) (bool, error) {
	query := `UPDATE company SET name = $1, location = $2, visit_date = $3 WHERE id = $4`

	result, err := database.Querier(ctx, r.db).ExecContext(ctx, query,
		company.Name, company.Location, visitDateParam(company.VisitDate), company.ID)
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

func (r *RepositoryImpl) Delete(ctx context.Context, id string) (bool, error) {
	query := `DELETE FROM company WHERE id = $1`

	result, err := database.Querier(ctx, r.db).ExecContext(ctx, query, id)
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

func (r *RepositoryImpl) AttachExpense(ctx context.Context, companyId string, expenseId string) error {
	q := database.Querier(ctx, r.db)

	// Remove first so a re-attach never duplicates the id.
	deleteQuery := `DELETE FROM company_expense WHERE company_id = $1 AND expense_id = $2`
	if _, err := q.ExecContext(ctx, deleteQuery, companyId, expenseId); err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return err
	}

	maxQuery := `SELECT MAX(position) FROM company_expense WHERE company_id = $1`
	var maxPosition sql.NullInt64
	if err := q.QueryRowContext(ctx, maxQuery, companyId).Scan(&maxPosition); err != nil {
		err := fmt.Errorf("could not find max position: %w", err)
		log.Error(err)
		return err
	}

	insertQuery := `INSERT INTO company_expense (company_id, expense_id, position) VALUES ($1, $2, $3)`
	if _, err := q.ExecContext(ctx, insertQuery, companyId, expenseId, maxPosition.Int64+100); err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) DetachExpense(ctx context.Context, companyId string, expenseId string) error {
	query := `DELETE FROM company_expense WHERE company_id = $1 AND expense_id = $2`

	_, err := database.Querier(ctx, r.db).ExecContext(ctx, query, companyId, expenseId)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) expenseIds(ctx context.Context, companyId string) ([]string, error) {
	query := `SELECT expense_id FROM company_expense WHERE company_id = $1 ORDER BY position`

	rows, err := database.Querier(ctx, r.db).QueryContext(ctx, query, companyId)
	if err != nil {
		err := fmt.Errorf("could not query company expenses: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			err := fmt.Errorf("could not scan expense id: %w", err)
			log.Error(err)
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return ids, nil
}

func scanCompany(rows *sql.Rows) (Company, error) {
	var company Company
	var visitDate sql.NullString
	if err := rows.Scan(&company.ID, &company.Name, &company.Location, &visitDate); err != nil {
		return Company{}, fmt.Errorf("could not scan company: %w", err)
	}
	if err := parseVisitDate(visitDate, &company.VisitDate); err != nil {
		return Company{}, err
	}
	return company, nil
}

func visitDateParam(visitDate time.Time) interface{} {
	if visitDate.IsZero() {
		return nil
	}
	return visitDate.Format(visitDateFormat)
}

func parseVisitDate(value sql.NullString, into *time.Time) error {
	if !value.Valid {
		return nil
	}
	parsed, err := time.Parse(visitDateFormat, value.String)
	if err != nil {
		return fmt.Errorf("could not parse visit date: %w", err)
	}
	*into = parsed
	return nil
}
