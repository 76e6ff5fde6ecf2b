package models

import "time"

// Employee is one row of the employee master table. Unknown columns are kept
// in Attrs so queries can still surface them.
type Employee struct {
	ID         string
	Name       string
	Department string
	Location   string
	// JoinDate is nil when the source value was missing or unparseable.
	JoinDate *time.Time
	Attrs    map[string]string
}

// LeaveRecord is one leave row keyed by employee ID. The foreign key is not
// enforced; orphan rows are ignored by structured lookups.
type LeaveRecord struct {
	EmpID  string
	Fields map[string]string
}

// AttendanceRecord is one flattened per-day attendance entry.
type AttendanceRecord struct {
	EmpID  string
	Date   *time.Time
	Fields map[string]string
}

// PolicyChunk is a page-sized unit of policy text with provenance.
type PolicyChunk struct {
	Text   string
	Source string
	Page   int
}

type PolicyDocument struct {
	ID         string
	Name       string
	SourceType string
	Pages      int
	CreatedAt  time.Time
}

type QueryRecord struct {
	ID              string
	QueryText       string
	Response        string
	Intent          string
	ConfidenceScore float64
	ConfidenceLevel string
	EmployeeFound   bool
	PolicyResults   int
	LatencyMS       int
	CreatedAt       time.Time
}

type QueryCitation struct {
	ID       int
	QueryID  string
	Citation string
}

type Feedback struct {
	ID        int
	QueryID   string
	Helpful   bool
	Comment   string
	CreatedAt time.Time
}
