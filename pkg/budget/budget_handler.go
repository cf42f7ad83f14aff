package budget

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type BudgetDTO struct {
	TotalBudget decimal.Decimal `json:"totalBudget"`
}

type UsageReportDTO struct {
	TotalBudget decimal.Decimal `json:"totalBudget"`
	TotalUsed   decimal.Decimal `json:"totalUsed"`
	Remaining   decimal.Decimal `json:"remaining"`
}

type BudgetHandler struct {
	budgetService BudgetService
}

func NewBudgetHandler(budgetService BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService}
}

// Get returns the budget ceiling, creating the default on first access.
func (handler *BudgetHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	budget, err := handler.budgetService.Current(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(BudgetDTO{TotalBudget: budget.TotalBudget}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// Set creates or overwrites the budget ceiling.
func (handler *BudgetHandler) Set(w http.ResponseWriter, r *http.Request) {
	log.Debug("Updating total budget")
	w.Header().Set("Content-Type", "application/json")

	var budgetDTO BudgetDTO
	if err := json.NewDecoder(r.Body).Decode(&budgetDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	budget, err := handler.budgetService.SetTotal(r.Context(), budgetDTO.TotalBudget)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(BudgetDTO{TotalBudget: budget.TotalBudget}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// Usage returns the officer-approved usage view of the budget.
func (handler *BudgetHandler) Usage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	report, err := handler.budgetService.UsageReport(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dto := UsageReportDTO{
		TotalBudget: report.TotalBudget,
		TotalUsed:   report.TotalUsed,
		Remaining:   report.Remaining,
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
