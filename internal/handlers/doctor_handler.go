package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/harentsoaR/medicare-api/internal/middleware"
	"github.com/harentsoaR/medicare-api/internal/models"
	"github.com/harentsoaR/medicare-api/internal/services"
	"github.com/harentsoaR/medicare-api/internal/store"
)

// ListDoctors is public. ?available=true keeps only doctors taking appointments.
func (h *Handler) ListDoctors(c *gin.Context) {
	filter := store.DoctorFilter{AvailableOnly: c.Query("available") == "true"}
	doctors, err := h.Store.ListDoctors(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, doctors)
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	doctor, err := h.Store.DoctorByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, doctor)
}

func (h *Handler) GetDoctorByUser(c *gin.Context) {
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}
	doctor, err := h.Store.DoctorByUserID(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, doctor)
}

func (h *Handler) MyDoctorProfile(c *gin.Context) {
	doctor, err := h.Store.DoctorByUserID(c.Request.Context(), middleware.PrincipalFrom(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, doctor)
}

func (h *Handler) DoctorsWithStats(c *gin.Context) {
	doctors, err := h.Stats.DoctorsWithStats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, doctors)
}

func (h *Handler) DoctorStats(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	stats, err := h.Stats.DoctorStats(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, stats)
}

// loadOwnDoctor fetches the :id doctor for its own account or for staff.
func (h *Handler) loadOwnDoctor(c *gin.Context) (*models.DoctorDetail, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	doctor, err := h.Store.DoctorByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	owners := services.Owners{Doctor: doctor.UserID}
	if err := services.DoctorOwnerOrStaff.Authorize(middleware.PrincipalFrom(c), owners); err != nil {
		fail(c, err)
		return nil, false
	}
	return doctor, true
}

func (h *Handler) DoctorAppointments(c *gin.Context) {
	doctor, ok := h.loadOwnDoctor(c)
	if !ok {
		return
	}
	filter := store.AppointmentFilter{DoctorID: doctor.ID}
	if date := c.Query("date"); date != "" {
		day, err := parseDate(date)
		if err != nil {
			fail(c, err)
			return
		}
		filter.From, filter.To = services.DayBounds(day)
	}
	appointments, err := h.Store.ListAppointments(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, appointments)
}

func (h *Handler) UpdateDoctor(c *gin.Context) {
	doctor, ok := h.loadOwnDoctor(c)
	if !ok {
		return
	}
	body, err := readPatch(c)
	if err != nil {
		fail(c, err)
		return
	}
	p := middleware.PrincipalFrom(c)
	if err := services.CheckProtectedKeys(p, body.keys(), "licenseNumber", "rating", "totalRatings", "totalPatients"); err != nil {
		fail(c, err)
		return
	}
	if err := body.applyTo(&doctor.Doctor); err != nil {
		fail(c, err)
		return
	}
	if err := models.Validate(&doctor.Doctor); err != nil {
		fail(c, err)
		return
	}
	if err := h.Store.UpdateDoctor(c.Request.Context(), &doctor.Doctor); err != nil {
		fail(c, err)
		return
	}
	logrus.WithFields(logrus.Fields{"doctor_id": doctor.ID.Hex(), "by": p.UserID.Hex()}).Info("doctor profile updated")
	respondMessage(c, "doctor updated successfully", doctor)
}

func (h *Handler) DeleteDoctor(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	doctor, err := h.Store.DoctorByID(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.Store.DeleteDoctor(ctx, id); err != nil {
		fail(c, err)
		return
	}
	if err := h.Store.SetUserActive(ctx, doctor.UserID, false); err != nil {
		fail(c, err)
		return
	}
	respondMessage(c, "doctor deleted successfully", nil)
}
