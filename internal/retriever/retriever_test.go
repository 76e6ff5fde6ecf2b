package retriever

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/helix-agent/backend/internal/storage/models"
)

func date(y, m, d int) *time.Time {
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return &t
}

// Reference date used across tenure tests.
var refDate = time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return refDate }

func testRetriever(t *testing.T) *Retriever {
	t.Helper()

	employees := []models.Employee{
		{ID: "EMP1001", Name: "Aarav Sharma", Department: "Engineering", Location: "London", JoinDate: date(2018, 1, 1)},
		{ID: "EMP1002", Name: "Maya Patel", Department: "Human Resources", Location: "Berlin"},
		{ID: "EMP1003", Name: "Liam Chen", Department: "Finance", Location: "London", JoinDate: date(2024, 2, 5)},
	}

	leaves := []models.LeaveRecord{
		{EmpID: "EMP1001", Fields: map[string]string{"leave_type": "Annual"}},
		{EmpID: "EMP1001", Fields: map[string]string{"leave_type": "Sick"}},
		{EmpID: "EMP9999", Fields: map[string]string{"leave_type": "Annual"}},
	}

	var attendance []models.AttendanceRecord
	for i := 0; i < 7; i++ {
		attendance = append(attendance, models.AttendanceRecord{
			EmpID:  "EMP1001",
			Date:   date(2026, 1, i+1),
			Fields: map[string]string{"seq": fmt.Sprint(i)},
		})
	}

	return New(employees, leaves, attendance, nil, nil, fixedClock)
}

func TestGetEmployeeInfo(t *testing.T) {
	r := testRetriever(t)

	info, err := r.GetEmployeeInfo("EMP1001")
	if err != nil {
		t.Fatalf("GetEmployeeInfo() error: %v", err)
	}

	if info.Employee.Name != "Aarav Sharma" {
		t.Errorf("name = %q", info.Employee.Name)
	}
	if len(info.Leaves) != 2 {
		t.Errorf("leaves = %d, want 2", len(info.Leaves))
	}
	if info.AttendanceCount != 7 {
		t.Errorf("attendance count = %d, want 7", info.AttendanceCount)
	}
	if len(info.RecentAttendance) != 5 {
		t.Fatalf("recent attendance = %d, want 5", len(info.RecentAttendance))
	}
	// Recent slice keeps the tail of the log in order.
	if info.RecentAttendance[0].Fields["seq"] != "2" || info.RecentAttendance[4].Fields["seq"] != "6" {
		t.Errorf("recent attendance window wrong: first=%v last=%v",
			info.RecentAttendance[0].Fields, info.RecentAttendance[4].Fields)
	}
}

func TestGetEmployeeInfoNotFound(t *testing.T) {
	r := testRetriever(t)

	_, err := r.GetEmployeeInfo("EMP0000")
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("error = %v, want ErrEmployeeNotFound", err)
	}

	// Orphan leave rows do not make their employee reachable.
	_, err = r.GetEmployeeInfo("EMP9999")
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("orphan lookup error = %v, want ErrEmployeeNotFound", err)
	}
}

func TestCalculateTenure(t *testing.T) {
	r := testRetriever(t)

	tenure, err := r.CalculateTenure("EMP1001")
	if err != nil {
		t.Fatalf("CalculateTenure() error: %v", err)
	}

	if tenure.Days != 2957 {
		t.Errorf("days = %d, want 2957", tenure.Days)
	}
	if tenure.Years != 8.1 {
		t.Errorf("years = %v, want 8.1", tenure.Years)
	}
	if !tenure.SabbaticalEligible {
		t.Error("expected sabbatical eligibility after 8 years")
	}
	if !tenure.SeniorBenefitsEligible {
		t.Error("expected senior benefits eligibility after 8 years")
	}
}

func TestCalculateTenureBelowThresholds(t *testing.T) {
	r := testRetriever(t)

	// Exactly two calendar years of service.
	tenure, err := r.CalculateTenure("EMP1003")
	if err != nil {
		t.Fatalf("CalculateTenure() error: %v", err)
	}
	if tenure.SabbaticalEligible {
		t.Error("two-year employee must not be sabbatical eligible")
	}
	if tenure.SeniorBenefitsEligible {
		t.Error("two-year employee must not be senior-benefits eligible")
	}
}

func TestCalculateTenureErrors(t *testing.T) {
	r := testRetriever(t)

	if _, err := r.CalculateTenure("EMP0000"); !errors.Is(err, ErrEmployeeNotFound) {
		t.Errorf("error = %v, want ErrEmployeeNotFound", err)
	}
	if _, err := r.CalculateTenure("EMP1002"); !errors.Is(err, ErrJoinDateMissing) {
		t.Errorf("error = %v, want ErrJoinDateMissing", err)
	}
}

func TestFilterEmployees(t *testing.T) {
	r := testRetriever(t)

	got := r.FilterEmployees(map[string]string{"location": "london"})
	if len(got) != 2 {
		t.Fatalf("location filter matched %d, want 2", len(got))
	}

	got = r.FilterEmployees(map[string]string{"location": "London", "dept": "Finance"})
	if len(got) != 1 || got[0].ID != "EMP1003" {
		t.Fatalf("combined filter = %v, want only EMP1003", got)
	}

	got = r.FilterEmployees(map[string]string{"dept": "Legal"})
	if len(got) != 0 {
		t.Fatalf("unmatched filter returned %d rows", len(got))
	}
}
