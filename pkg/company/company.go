package company

import (
	"errors"
	"time"
)

var ErrCompanyNotFound = errors.New("company not found")

// Company is a recruiting company visited by the placement cell. Expenses
// holds the ordered ids of expense records incurred for this company's visit.
type Company struct {
	ID        string
	Name      string
	Location  string
	VisitDate time.Time
	Expenses  []string
}
