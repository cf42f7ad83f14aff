package app

import (
	"github.com/gorilla/mux"
	"github.com/placementcell/placementcell/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Budget ledger
	r.HandleFunc("/api/budget", deps.BudgetHandler.Get).Methods("GET")
	r.HandleFunc("/api/budget", deps.BudgetHandler.Set).Methods("POST")
	r.HandleFunc("/api/budget-usage", deps.BudgetHandler.Usage).Methods("GET")

	// Company expenses
	r.HandleFunc("/api/company-expenses", deps.ExpenseHandler.Create).Methods("POST")
	r.HandleFunc("/api/company-expenses", deps.ExpenseHandler.List).Methods("GET")
	r.HandleFunc("/api/company-expenses/{id}", deps.ExpenseHandler.Update).Methods("PUT")
	r.HandleFunc("/api/company-expenses/{id}", deps.ExpenseHandler.Delete).Methods("DELETE")

	// Visited companies
	r.HandleFunc("/api/companies", deps.CompanyHandler.Create).Methods("POST")
	r.HandleFunc("/api/companies", deps.CompanyHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/companies/{id}", deps.CompanyHandler.Get).Methods("GET")
	r.HandleFunc("/api/companies/{id}", deps.CompanyHandler.Update).Methods("PUT")
	r.HandleFunc("/api/companies/{id}", deps.CompanyHandler.Delete).Methods("DELETE")

	// Announcements
	r.HandleFunc("/api/announcements", deps.AnnouncementHandler.Create).Methods("POST")
	r.HandleFunc("/api/announcements", deps.AnnouncementHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/announcements/{id}", deps.AnnouncementHandler.Delete).Methods("DELETE")
}
