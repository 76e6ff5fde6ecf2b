package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/helix-agent/backend/internal/metrics"
	"github.com/helix-agent/backend/internal/retriever"
	"github.com/helix-agent/backend/pkg/logger"
)

type EmployeeHandler struct {
	retriever *retriever.Retriever
}

func NewEmployeeHandler(r *retriever.Retriever) *EmployeeHandler {
	return &EmployeeHandler{retriever: r}
}

// ListEmployees returns employees matching the query-string filters, e.g.
// /employees?dept=Engineering&location=London. No filters returns everyone.
func (h *EmployeeHandler) ListEmployees(c *fiber.Ctx) error {
	filters := c.Queries()

	matched := h.retriever.FilterEmployees(filters)

	out := make([]fiber.Map, 0, len(matched))
	for _, emp := range matched {
		joinDate := ""
		if emp.JoinDate != nil {
			joinDate = emp.JoinDate.Format("2006-01-02")
		}
		out = append(out, fiber.Map{
			"emp_id":       emp.ID,
			"name":         emp.Name,
			"department":   emp.Department,
			"location":     emp.Location,
			"joining_date": joinDate,
		})
	}

	return c.JSON(fiber.Map{
		"count":     len(out),
		"employees": out,
	})
}

func (h *EmployeeHandler) GetEmployee(c *fiber.Ctx) error {
	empID := c.Params("id")

	info, err := h.retriever.GetEmployeeInfo(empID)
	if err != nil {
		metrics.EmployeeLookups.WithLabelValues("not_found").Inc()
		logger.Debug("Employee lookup failed", zap.String("emp_id", empID), zap.Error(err))
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Employee not found",
		})
	}

	metrics.EmployeeLookups.WithLabelValues("found").Inc()

	joinDate := ""
	if info.Employee.JoinDate != nil {
		joinDate = info.Employee.JoinDate.Format("2006-01-02")
	}

	return c.JSON(fiber.Map{
		"emp_id":            info.Employee.ID,
		"name":              info.Employee.Name,
		"department":        info.Employee.Department,
		"location":          info.Employee.Location,
		"joining_date":      joinDate,
		"leaves":            info.Leaves,
		"attendance_count":  info.AttendanceCount,
		"recent_attendance": info.RecentAttendance,
	})
}

func (h *EmployeeHandler) GetTenure(c *fiber.Ctx) error {
	empID := c.Params("id")

	tenure, err := h.retriever.CalculateTenure(empID)
	if err != nil {
		status := fiber.StatusInternalServerError
		msg := "Failed to calculate tenure"
		switch {
		case errors.Is(err, retriever.ErrEmployeeNotFound):
			status = fiber.StatusNotFound
			msg = "Employee not found"
		case errors.Is(err, retriever.ErrJoinDateMissing):
			status = fiber.StatusUnprocessableEntity
			msg = "Joining date not available"
		}
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}

	return c.JSON(tenure)
}
