package expense

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/placementcell/placementcell/internal/auth"
	"github.com/placementcell/placementcell/pkg/company"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type ItemDTO struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

type CompanyInfoDTO struct {
	ID          string     `json:"id"`
	CompanyName string     `json:"companyName"`
	Location    string     `json:"location,omitempty"`
	VisitDate   *time.Time `json:"visitDate,omitempty"`
}

type ExpenseDTO struct {
	ID                  string          `json:"id"`
	Company             *CompanyInfoDTO `json:"company,omitempty"`
	SubmittedBy         string          `json:"submittedBy"`
	Items               []ItemDTO       `json:"items"`
	InitialAmount       decimal.Decimal `json:"initialAmount"`
	TotalAmount         decimal.Decimal `json:"totalAmount"`
	AvailableBalance    decimal.Decimal `json:"availableBalance"`
	ApprovedByOfficer   bool            `json:"approvedByOfficer"`
	ApprovedBySWOfficer bool            `json:"approvedBySWOfficer"`
	ApprovedByPrincipal bool            `json:"approvedByPrincipal"`
	Status              string          `json:"status"`
	CreatedAt           time.Time       `json:"createdAt"`
}

type CreateExpenseDTO struct {
	Company       string          `json:"company"`
	SubmittedBy   string          `json:"submittedBy"`
	Items         []ItemDTO       `json:"items"`
	InitialAmount decimal.Decimal `json:"initialAmount"`
}

// UpdateExpenseDTO accepts any subset of the mutable expense fields.
type UpdateExpenseDTO struct {
	Company             *string          `json:"company"`
	SubmittedBy         *string          `json:"submittedBy"`
	Items               *[]ItemDTO       `json:"items"`
	InitialAmount       *decimal.Decimal `json:"initialAmount"`
	ApprovedByOfficer   *bool            `json:"approvedByOfficer"`
	ApprovedBySWOfficer *bool            `json:"approvedBySWOfficer"`
	ApprovedByPrincipal *bool            `json:"approvedByPrincipal"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Registering new expense submission")
	w.Header().Set("Content-Type", "application/json")

	var dto CreateExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	submission := NewExpense{
		CompanyID:     dto.Company,
		SubmittedBy:   dto.SubmittedBy,
		Items:         dtoToItems(dto.Items),
		InitialAmount: dto.InitialAmount,
	}

	created, err := h.service.Create(r.Context(), submission)
	if err != nil {
		if errors.Is(err, company.ErrCompanyNotFound) {
			http.Error(w, "Company not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(expenseToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	role, err := auth.ParseRole(r.URL.Query().Get("role"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	user := r.URL.Query().Get("user")
	if user == "" {
		if actor, actorErr := auth.CurrentActor(r.Context()); actorErr == nil {
			user = actor.Name
		}
	}

	var swApproved *bool
	if raw := r.URL.Query().Get("approvedBySWOfficer"); raw != "" {
		value := raw == "true"
		swApproved = &value
	}

	expenses, err := h.service.ListForRole(r.Context(), role, user, swApproved)
	if err != nil {
		if errors.Is(err, ErrSubmitterUnknown) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]ExpenseDTO, 0, len(expenses))
	for _, expense := range expenses {
		dtos = append(dtos, expenseToDTO(expense))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["id"]

	var dto UpdateExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// The SW officer's workflow is approve-only; revocation is not exposed
	// to that role.
	if actor, err := auth.CurrentActor(r.Context()); err == nil && actor.Role == auth.RoleSWOfficer {
		if dto.ApprovedBySWOfficer != nil && !*dto.ApprovedBySWOfficer {
			http.Error(w, "SW officer approval cannot be revoked", http.StatusForbidden)
			return
		}
	}

	req := UpdateRequest{
		CompanyID:           dto.Company,
		SubmittedBy:         dto.SubmittedBy,
		InitialAmount:       dto.InitialAmount,
		ApprovedByOfficer:   dto.ApprovedByOfficer,
		ApprovedBySWOfficer: dto.ApprovedBySWOfficer,
		ApprovedByPrincipal: dto.ApprovedByPrincipal,
	}
	if dto.Items != nil {
		items := dtoToItems(*dto.Items)
		req.Items = &items
	}

	updated, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrExpenseNotFound):
			http.Error(w, "Expense not found", http.StatusNotFound)
		case errors.Is(err, company.ErrCompanyNotFound):
			http.Error(w, "Company not found", http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(expenseToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrExpenseNotFound) {
			http.Error(w, "Expense not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func expenseToDTO(expense Expense) ExpenseDTO {
	items := make([]ItemDTO, 0, len(expense.Items))
	for _, item := range expense.Items {
		items = append(items, ItemDTO{Description: item.Description, Amount: item.Amount})
	}

	var companyInfo *CompanyInfoDTO
	if expense.Company != nil {
		companyInfo = &CompanyInfoDTO{
			ID:          expense.Company.ID,
			CompanyName: expense.Company.Name,
			Location:    expense.Company.Location,
		}
		if !expense.Company.VisitDate.IsZero() {
			visitDate := expense.Company.VisitDate
			companyInfo.VisitDate = &visitDate
		}
	}

	return ExpenseDTO{
		ID:                  expense.ID,
		Company:             companyInfo,
		SubmittedBy:         expense.SubmittedBy,
		Items:               items,
		InitialAmount:       expense.InitialAmount,
		TotalAmount:         expense.TotalAmount,
		AvailableBalance:    expense.AvailableBalance,
		ApprovedByOfficer:   expense.ApprovedByOfficer,
		ApprovedBySWOfficer: expense.ApprovedBySWOfficer,
		ApprovedByPrincipal: expense.ApprovedByPrincipal,
		Status:              string(expense.Status),
		CreatedAt:           expense.CreatedAt,
	}
}

func dtoToItems(dtos []ItemDTO) []Item {
	items := make([]Item, 0, len(dtos))
	for _, dto := range dtos {
		items = append(items, Item{Description: dto.Description, Amount: dto.Amount})
	}
	return items
}
