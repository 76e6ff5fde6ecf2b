package loader

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"iso", "2018-01-01", "2018-01-01"},
		{"slash day first", "15/03/2021", "2021-03-15"},
		{"empty", "", ""},
		{"sentinel", "Unknown", ""},
		{"garbage", "not-a-date", ""},
		{"padded", "  2018-01-01  ", "2018-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDate(tt.input)
			if tt.want == "" {
				if got != nil {
					t.Fatalf("ParseDate(%q) = %v, want nil", tt.input, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ParseDate(%q) = nil, want %s", tt.input, tt.want)
			}
			if got.Format("2006-01-02") != tt.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.input, got.Format("2006-01-02"), tt.want)
			}
		})
	}
}

func TestLoadEmployees(t *testing.T) {
	employees, err := LoadEmployees(filepath.Join("testdata", "employees.csv"))
	if err != nil {
		t.Fatalf("LoadEmployees() error: %v", err)
	}

	// The row without an identifier is dropped.
	if len(employees) != 4 {
		t.Fatalf("got %d employees, want 4", len(employees))
	}

	byID := make(map[string]int)
	for i, emp := range employees {
		byID[emp.ID] = i
	}

	emp := employees[byID["EMP1001"]]
	if emp.Name != "Aarav Sharma" || emp.Department != "Engineering" || emp.Location != "London" {
		t.Errorf("unexpected EMP1001 row: %+v", emp)
	}
	if emp.JoinDate == nil || !emp.JoinDate.Equal(time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("EMP1001 join date = %v, want 2018-01-01", emp.JoinDate)
	}

	// Missing join date becomes nil, the text column keeps the sentinel.
	emp = employees[byID["EMP1002"]]
	if emp.JoinDate != nil {
		t.Errorf("EMP1002 join date = %v, want nil", emp.JoinDate)
	}
	if emp.Attrs["joining_date"] != Unknown {
		t.Errorf("EMP1002 raw joining date = %q, want %q", emp.Attrs["joining_date"], Unknown)
	}

	// Unparseable join date also degrades to nil; whitespace is trimmed.
	emp = employees[byID["EMP1004"]]
	if emp.JoinDate != nil {
		t.Errorf("EMP1004 join date = %v, want nil", emp.JoinDate)
	}
	if emp.Name != "Priya Nair" {
		t.Errorf("EMP1004 name = %q, want trimmed value", emp.Name)
	}
}

func TestLoadLeaves(t *testing.T) {
	leaves, err := LoadLeaves(filepath.Join("testdata", "leaves.csv"))
	if err != nil {
		t.Fatalf("LoadLeaves() error: %v", err)
	}

	if len(leaves) != 4 {
		t.Fatalf("got %d leave records, want 4", len(leaves))
	}

	perEmployee := make(map[string]int)
	for _, lv := range leaves {
		perEmployee[lv.EmpID]++
	}
	if perEmployee["EMP1001"] != 2 {
		t.Errorf("EMP1001 leave records = %d, want 2", perEmployee["EMP1001"])
	}

	// Orphan rows survive the load; the retriever decides reachability.
	if perEmployee["EMP9999"] != 1 {
		t.Errorf("EMP9999 leave records = %d, want 1", perEmployee["EMP9999"])
	}

	if leaves[0].Fields["leave_type"] != "Annual" || leaves[0].Fields["status"] != "Approved" {
		t.Errorf("unexpected first leave record fields: %+v", leaves[0].Fields)
	}
}

func TestLoadAttendance(t *testing.T) {
	records, err := LoadAttendance(filepath.Join("testdata", "attendance.json"))
	if err != nil {
		t.Fatalf("LoadAttendance() error: %v", err)
	}

	if len(records) != 4 {
		t.Fatalf("got %d attendance records, want 4", len(records))
	}

	perEmployee := make(map[string]int)
	for _, rec := range records {
		perEmployee[rec.EmpID]++
		if rec.Date == nil {
			t.Errorf("record for %s has nil date", rec.EmpID)
		}
	}
	if perEmployee["EMP1001"] != 3 || perEmployee["EMP1003"] != 1 {
		t.Errorf("per-employee counts = %v", perEmployee)
	}

	// Empty values become the sentinel, not empty strings.
	found := false
	for _, rec := range records {
		if rec.EmpID == "EMP1001" && rec.Fields["check_out"] == Unknown {
			found = true
		}
	}
	if !found {
		t.Error("expected one EMP1001 record with sentinel check_out")
	}
}

func TestLoadPoliciesText(t *testing.T) {
	chunks, err := LoadPolicies(filepath.Join("testdata", "policy.txt"))
	if err != nil {
		t.Fatalf("LoadPolicies() error: %v", err)
	}

	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3 paragraph blocks", len(chunks))
	}

	for i, chunk := range chunks {
		if chunk.Page != i+1 {
			t.Errorf("chunk %d page = %d, want %d", i, chunk.Page, i+1)
		}
		if chunk.Source != "policy.txt" {
			t.Errorf("chunk %d source = %q, want policy.txt", i, chunk.Source)
		}
	}

	if got := chunks[2].Text; !strings.Contains(strings.ToLower(got), "sabbatical") {
		t.Errorf("third chunk missing sabbatical text: %q", got)
	}
}

func TestLoadPoliciesMissingFile(t *testing.T) {
	if _, err := LoadPolicies(filepath.Join("testdata", "nope.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
