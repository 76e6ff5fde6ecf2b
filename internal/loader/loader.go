package loader

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/helix-agent/backend/internal/storage/models"
	"github.com/helix-agent/backend/pkg/logger"
)

// Unknown is the sentinel substituted for missing or empty text values.
const Unknown = "Unknown"

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"2006-01-02 15:04:05",
}

// ParseDate normalizes a date string into a time value. It returns nil for
// empty, sentinel or unparseable input instead of failing the load.
func ParseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" || value == Unknown {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

func cleanValue(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return Unknown
	}
	return value
}

// LoadEmployees reads and cleans the employee master table from CSV.
func LoadEmployees(path string) ([]models.Employee, error) {
	rows, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	employees := make([]models.Employee, 0, len(rows))
	for _, row := range rows {
		emp := models.Employee{Attrs: make(map[string]string)}
		for i, col := range header {
			if i >= len(row) {
				continue
			}
			value := cleanValue(row[i])
			switch normalizeHeader(col) {
			case "emp_id":
				emp.ID = value
			case "name":
				emp.Name = value
			case "dept", "department":
				emp.Department = value
			case "location":
				emp.Location = value
			case "joining_date", "join_date":
				emp.JoinDate = ParseDate(value)
				emp.Attrs["joining_date"] = value
			default:
				emp.Attrs[normalizeHeader(col)] = value
			}
		}
		if emp.ID == "" || emp.ID == Unknown {
			logger.Warn("Skipping employee row without an identifier")
			continue
		}
		employees = append(employees, emp)
	}

	logger.Info("Employees loaded", zap.String("path", path), zap.Int("count", len(employees)))
	return employees, nil
}

// LoadLeaves reads the leave table from CSV. Every non-identifier column is
// kept as free-form metadata.
func LoadLeaves(path string) ([]models.LeaveRecord, error) {
	rows, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	leaves := make([]models.LeaveRecord, 0, len(rows))
	for _, row := range rows {
		rec := models.LeaveRecord{Fields: make(map[string]string)}
		for i, col := range header {
			if i >= len(row) {
				continue
			}
			value := cleanValue(row[i])
			if normalizeHeader(col) == "emp_id" {
				rec.EmpID = value
				continue
			}
			rec.Fields[normalizeHeader(col)] = value
		}
		leaves = append(leaves, rec)
	}

	logger.Info("Leaves loaded", zap.String("path", path), zap.Int("count", len(leaves)))
	return leaves, nil
}

// LoadAttendance flattens the nested attendance log. The source maps each
// employee ID to a {"records": [...]} object; every record is stamped with
// its owning employee ID in the output.
func LoadAttendance(path string) ([]models.AttendanceRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read attendance file: %w", err)
	}

	var raw map[string]struct {
		Records []map[string]any `json:"records"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse attendance file: %w", err)
	}

	var records []models.AttendanceRecord
	for empID, content := range raw {
		for _, entry := range content.Records {
			rec := models.AttendanceRecord{
				EmpID:  strings.TrimSpace(empID),
				Fields: make(map[string]string),
			}
			for key, value := range entry {
				rec.Fields[normalizeHeader(key)] = cleanValue(fmt.Sprint(value))
			}
			if dateStr, ok := rec.Fields["date"]; ok {
				rec.Date = ParseDate(dateStr)
			}
			records = append(records, rec)
		}
	}

	logger.Info("Attendance loaded", zap.String("path", path), zap.Int("count", len(records)))
	return records, nil
}

// LoadPolicies extracts policy text as chunks with provenance. PDF sources
// produce one chunk per page in page order; plain-text sources produce one
// chunk per paragraph block.
func LoadPolicies(path string) ([]models.PolicyChunk, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return loadPolicyPDF(path)
	}
	return loadPolicyText(path)
}

func loadPolicyPDF(path string) ([]models.PolicyChunk, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open policy pdf: %w", err)
	}
	defer f.Close()

	source := filepath.Base(path)
	var chunks []models.PolicyChunk

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("Failed to extract page text", zap.String("source", source), zap.Int("page", i), zap.Error(err))
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		chunks = append(chunks, models.PolicyChunk{
			Text:   text,
			Source: source,
			Page:   i,
		})
	}

	logger.Info("Policy document loaded", zap.String("path", path), zap.Int("chunks", len(chunks)))
	return chunks, nil
}

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

func loadPolicyText(path string) ([]models.PolicyChunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	source := filepath.Base(path)
	var blocks []string
	if strings.Contains(string(data), "\f") {
		blocks = strings.Split(string(data), "\f")
	} else {
		blocks = paragraphBreak.Split(string(data), -1)
	}

	var chunks []models.PolicyChunk
	for _, block := range blocks {
		text := strings.TrimSpace(block)
		if text == "" {
			continue
		}
		chunks = append(chunks, models.PolicyChunk{
			Text:   text,
			Source: source,
			Page:   len(chunks) + 1,
		})
	}

	logger.Info("Policy document loaded", zap.String("path", path), zap.Int("chunks", len(chunks)))
	return chunks, nil
}

func readCSV(path string) ([][]string, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("empty table in %s", path)
	}

	return all[1:], all[0], nil
}

func normalizeHeader(col string) string {
	col = strings.ToLower(strings.TrimSpace(col))
	return strings.ReplaceAll(col, " ", "_")
}
