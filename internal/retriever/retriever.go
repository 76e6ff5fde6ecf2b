// Package retriever unifies structured (employee tables) and unstructured
// (policy vector index) lookups behind one component. The two retrieval
// kinds stay separate operations because their result shapes and error
// semantics differ; the pipeline combines them per query.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/helix-agent/backend/internal/llm"
	"github.com/helix-agent/backend/internal/storage/models"
	"github.com/helix-agent/backend/internal/vector"
	"github.com/helix-agent/backend/pkg/logger"
)

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrJoinDateMissing  = errors.New("joining date not available")
)

const (
	// Business rules for tenure-based eligibility.
	sabbaticalMinYears     = 5.0
	seniorBenefitsMinYears = 3.0

	// 365.25 accounts for leap years on average.
	daysPerYear = 365.25

	recentAttendanceLimit = 5
)

// EmployeeInfo is an employee row joined with its leave and attendance data.
type EmployeeInfo struct {
	Employee         models.Employee
	Leaves           []models.LeaveRecord
	AttendanceCount  int
	RecentAttendance []models.AttendanceRecord
}

// Tenure is the derived service length and eligibility for one employee.
type Tenure struct {
	EmpID                  string    `json:"emp_id"`
	JoinDate               time.Time `json:"joining_date"`
	Days                   int       `json:"tenure_days"`
	Years                  float64   `json:"tenure_years"`
	SabbaticalEligible     bool      `json:"sabbatical_eligible"`
	SeniorBenefitsEligible bool      `json:"senior_benefits_eligible"`
}

type Retriever struct {
	employees  map[string]models.Employee
	leaves     map[string][]models.LeaveRecord
	attendance map[string][]models.AttendanceRecord
	index      vector.Index
	embedder   llm.Client
	now        func() time.Time
}

// New builds a retriever over the loaded tables. Rows in the leave or
// attendance tables whose employee ID is absent from the employee table are
// kept but unreachable; structured lookups silently ignore them. A nil clock
// defaults to wall-clock time.
func New(
	employees []models.Employee,
	leaves []models.LeaveRecord,
	attendance []models.AttendanceRecord,
	index vector.Index,
	embedder llm.Client,
	now func() time.Time,
) *Retriever {
	if now == nil {
		now = time.Now
	}

	r := &Retriever{
		employees:  make(map[string]models.Employee, len(employees)),
		leaves:     make(map[string][]models.LeaveRecord),
		attendance: make(map[string][]models.AttendanceRecord),
		index:      index,
		embedder:   embedder,
		now:        now,
	}
	for _, emp := range employees {
		r.employees[emp.ID] = emp
	}
	for _, lv := range leaves {
		r.leaves[lv.EmpID] = append(r.leaves[lv.EmpID], lv)
	}
	for _, at := range attendance {
		r.attendance[at.EmpID] = append(r.attendance[at.EmpID], at)
	}

	logger.Info("Retriever initialized",
		zap.Int("employees", len(r.employees)),
		zap.Int("leave_records", len(leaves)),
		zap.Int("attendance_records", len(attendance)),
	)
	return r
}

// GetEmployeeInfo returns the employee row with its leave records and a
// bounded recent-attendance slice attached.
func (r *Retriever) GetEmployeeInfo(empID string) (*EmployeeInfo, error) {
	emp, ok := r.employees[empID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEmployeeNotFound, empID)
	}

	attendance := r.attendance[empID]
	recent := attendance
	if len(recent) > recentAttendanceLimit {
		recent = recent[len(recent)-recentAttendanceLimit:]
	}

	return &EmployeeInfo{
		Employee:         emp,
		Leaves:           r.leaves[empID],
		AttendanceCount:  len(attendance),
		RecentAttendance: recent,
	}, nil
}

// CalculateTenure derives days and fractional years of service from the
// join date and the retriever's reference clock.
func (r *Retriever) CalculateTenure(empID string) (*Tenure, error) {
	emp, ok := r.employees[empID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEmployeeNotFound, empID)
	}
	if emp.JoinDate == nil {
		return nil, fmt.Errorf("%w for %s", ErrJoinDateMissing, empID)
	}

	days := int(r.now().Sub(*emp.JoinDate).Hours() / 24)
	years := float64(days) / daysPerYear

	return &Tenure{
		EmpID:                  empID,
		JoinDate:               *emp.JoinDate,
		Days:                   days,
		Years:                  math.Round(years*100) / 100,
		SabbaticalEligible:     years >= sabbaticalMinYears,
		SeniorBenefitsEligible: years >= seniorBenefitsMinYears,
	}, nil
}

// SearchPolicies runs semantic search over the policy index.
func (r *Retriever) SearchPolicies(ctx context.Context, query string, k int) ([]vector.Match, error) {
	return r.index.Search(ctx, query, k, r.embedder)
}

// FilterEmployees returns employees matching every given column=value filter.
// Recognized keys: emp_id, name, dept/department, location, plus any extra
// attribute column.
func (r *Retriever) FilterEmployees(filters map[string]string) []models.Employee {
	var out []models.Employee
	for _, emp := range r.employees {
		if matchesFilters(emp, filters) {
			out = append(out, emp)
		}
	}
	return out
}

func matchesFilters(emp models.Employee, filters map[string]string) bool {
	for key, want := range filters {
		var got string
		switch strings.ToLower(key) {
		case "emp_id":
			got = emp.ID
		case "name":
			got = emp.Name
		case "dept", "department":
			got = emp.Department
		case "location":
			got = emp.Location
		default:
			got = emp.Attrs[strings.ToLower(key)]
		}
		if !strings.EqualFold(got, want) {
			return false
		}
	}
	return true
}
