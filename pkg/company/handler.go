package company

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type CompanyDTO struct {
	ID          string     `json:"id"`
	CompanyName string     `json:"companyName"`
	Location    string     `json:"location,omitempty"`
	VisitDate   *time.Time `json:"visitDate,omitempty"`
	Expenses    []string   `json:"expenses"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Registering new visited company")
	w.Header().Set("Content-Type", "application/json")

	var dto CompanyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.CompanyName == "" {
		http.Error(w, "companyName is required", http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), dtoToCompany(dto))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(companyToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	companies, err := h.service.GetAll(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]CompanyDTO, 0, len(companies))
	for _, company := range companies {
		dtos = append(dtos, companyToDTO(company))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["id"]

	company, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrCompanyNotFound) {
			http.Error(w, "Company not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(companyToDTO(company)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["id"]

	var dto CompanyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	company := dtoToCompany(dto)
	company.ID = id

	updated, err := h.service.Update(r.Context(), company)
	if err != nil {
		if errors.Is(err, ErrCompanyNotFound) {
			http.Error(w, "Company not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(companyToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrCompanyNotFound) {
			http.Error(w, "Company not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func companyToDTO(company Company) CompanyDTO {
	var visitDate *time.Time
	if !company.VisitDate.IsZero() {
		visitDate = &company.VisitDate
	}
	expenses := company.Expenses
	if expenses == nil {
		expenses = []string{}
	}
	return CompanyDTO{
		ID:          company.ID,
		CompanyName: company.Name,
		Location:    company.Location,
		VisitDate:   visitDate,
		Expenses:    expenses,
	}
}

func dtoToCompany(dto CompanyDTO) Company {
	var visitDate time.Time
	if dto.VisitDate != nil {
		visitDate = *dto.VisitDate
	}
	return Company{
		ID:        dto.ID,
		Name:      dto.CompanyName,
		Location:  dto.Location,
		VisitDate: visitDate,
	}
}
