package handlers

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/harentsoaR/medicare-api/internal/apperr"
	"github.com/harentsoaR/medicare-api/internal/store"
)

type csvExport struct {
	header []string
	rows   func(ctx context.Context, s store.Store) ([][]string, error)
}

var exports = map[string]csvExport{
	"users": {
		header: []string{"Name", "Email", "Type", "Phone", "Status"},
		rows: func(ctx context.Context, s store.Store) ([][]string, error) {
			users, err := s.ListUsers(ctx)
			if err != nil {
				return nil, err
			}
			rows := make([][]string, 0, len(users))
			for _, u := range users {
				status := "Active"
				if !u.IsActive {
					status = "Inactive"
				}
				rows = append(rows, []string{u.FullName(), u.Email, string(u.UserType), u.Phone, status})
			}
			return rows, nil
		},
	},
	"appointments": {
		header: []string{"Patient", "Doctor", "Date", "Time", "Status", "Reason"},
		rows: func(ctx context.Context, s store.Store) ([][]string, error) {
			appointments, err := s.ListAppointments(ctx, store.AppointmentFilter{})
			if err != nil {
				return nil, err
			}
			rows := make([][]string, 0, len(appointments))
			for _, a := range appointments {
				patient, doctor := "", ""
				if a.Patient != nil && a.Patient.User != nil {
					patient = a.Patient.User.FullName()
				}
				if a.Doctor != nil {
					doctor = a.Doctor.DisplayName()
				}
				rows = append(rows, []string{
					patient,
					doctor,
					a.AppointmentDate.Format("2006-01-02"),
					a.AppointmentTime,
					a.Status.String(),
					a.Reason,
				})
			}
			return rows, nil
		},
	},
	"doctors": {
		header: []string{"Name", "Specialization", "Experience", "Department", "Consultation Fee"},
		rows: func(ctx context.Context, s store.Store) ([][]string, error) {
			doctors, err := s.ListDoctors(ctx, store.DoctorFilter{})
			if err != nil {
				return nil, err
			}
			rows := make([][]string, 0, len(doctors))
			for _, d := range doctors {
				rows = append(rows, []string{
					d.DisplayName(),
					d.Specialization,
					strconv.Itoa(d.Experience),
					d.Department,
					strconv.FormatFloat(d.ConsultationFee, 'f', -1, 64),
				})
			}
			return rows, nil
		},
	},
}

// Export streams one of the admin tables as CSV.
func (h *Handler) Export(c *gin.Context) {
	resource := c.Param("resource")
	exp, ok := exports[resource]
	if !ok {
		fail(c, apperr.NotFound(fmt.Sprintf("unknown export %q", resource)))
		return
	}
	rows, err := exp.rows(c.Request.Context(), h.Store)
	if err != nil {
		fail(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, resource))
	c.Status(http.StatusOK)

	log := logrus.WithField("resource", resource)
	w := csv.NewWriter(c.Writer)
	if err := w.Write(exp.header); err != nil {
		log.WithError(err).Error("csv export interrupted")
		return
	}
	for _, row := range rows {
		for i := range row {
			row[i] = csvSafe(row[i])
		}
	}
	if err := w.WriteAll(rows); err != nil {
		log.WithError(err).Error("csv export interrupted")
	}
}

// csvSafe quotes cells a spreadsheet would evaluate as a formula. Phone
// numbers and signed numbers pass through unchanged.
func csvSafe(cell string) string {
	if cell == "" {
		return cell
	}
	switch cell[0] {
	case '=', '@', '\t', '\r':
		return "'" + cell
	case '+', '-':
		if strings.Trim(cell[1:], "0123456789 ().-") == "" {
			return cell
		}
		return "'" + cell
	}
	return cell
}
