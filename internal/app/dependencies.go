package app

import (
	"database/sql"

	"github.com/placementcell/placementcell/internal/auth"
	"github.com/placementcell/placementcell/internal/config"
	"github.com/placementcell/placementcell/internal/database"
	"github.com/placementcell/placementcell/internal/utils"
	"github.com/placementcell/placementcell/pkg/announcement"
	"github.com/placementcell/placementcell/pkg/budget"
	"github.com/placementcell/placementcell/pkg/company"
	"github.com/placementcell/placementcell/pkg/expense"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	AuthTokenValidator auth.TokenValidator

	Transactor database.Transactor

	BudgetRepo    budget.BudgetRepo
	BudgetService *budget.BudgetServiceImpl
	BudgetHandler *budget.BudgetHandler

	CompanyRepo    company.Repository
	CompanyService *company.ServiceImpl
	CompanyHandler *company.Handler

	ExpenseRepo    *expense.RepositoryImpl
	ExpenseService *expense.ServiceImpl
	ExpenseHandler *expense.Handler

	AnnouncementService *announcement.ServiceImpl
	AnnouncementHandler *announcement.Handler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.AuthTokenValidator = auth.TokenValidator{
		Secret:       []byte(cfg.Auth.Secret),
		TrustHeaders: cfg.Auth.TrustHeaders,
	}

	deps.Transactor = database.NewSQLTransactor(db)
	deps.Clock = &utils.SystemClock{}

	// The expense repository doubles as the officer-approved summer feeding
	// the budget usage report.
	deps.ExpenseRepo = expense.NewRepository(db)

	deps.BudgetRepo = budget.NewBudgetRepo(db)
	deps.BudgetService = budget.NewBudgetService(deps.BudgetRepo, deps.ExpenseRepo)
	deps.BudgetHandler = budget.NewBudgetHandler(deps.BudgetService)

	deps.CompanyRepo = company.NewRepository(db)
	deps.CompanyService = company.NewService(deps.CompanyRepo)
	deps.CompanyHandler = company.NewHandler(deps.CompanyService)

	deps.ExpenseService = expense.NewService(deps.ExpenseRepo, deps.CompanyService, deps.BudgetService, deps.Transactor, deps.Clock)
	deps.ExpenseHandler = expense.NewHandler(deps.ExpenseService)

	deps.AnnouncementService = announcement.NewService(announcement.NewRepository(db), deps.Clock)
	deps.AnnouncementHandler = announcement.NewHandler(deps.AnnouncementService)

	return deps
}
