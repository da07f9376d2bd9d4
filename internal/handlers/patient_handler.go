package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/medicare-api/internal/middleware"
	"github.com/harentsoaR/medicare-api/internal/models"
	"github.com/harentsoaR/medicare-api/internal/services"
	"github.com/harentsoaR/medicare-api/internal/store"
)

func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.Store.ListPatients(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, patients)
}

func (h *Handler) MyPatientProfile(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	patient, err := h.Store.PatientByUserID(c.Request.Context(), p.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, patient)
}

// loadPatient fetches the :id patient and checks the caller may see it.
func (h *Handler) loadPatient(c *gin.Context) (*models.PatientDetail, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	patient, err := h.Store.PatientByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	owners := services.Owners{Patient: patient.UserID}
	if err := services.PatientProfileAccess.Authorize(middleware.PrincipalFrom(c), owners); err != nil {
		fail(c, err)
		return nil, false
	}
	return patient, true
}

func (h *Handler) GetPatient(c *gin.Context) {
	patient, ok := h.loadPatient(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, patient)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	patient, ok := h.loadPatient(c)
	if !ok {
		return
	}
	body, err := readPatch(c)
	if err != nil {
		fail(c, err)
		return
	}
	if err := body.normalizeDate("dateOfBirth"); err != nil {
		fail(c, err)
		return
	}
	if err := body.applyTo(&patient.Patient); err != nil {
		fail(c, err)
		return
	}
	if err := models.Validate(&patient.Patient); err != nil {
		fail(c, err)
		return
	}
	if err := h.Store.UpdatePatient(c.Request.Context(), &patient.Patient); err != nil {
		fail(c, err)
		return
	}
	respondMessage(c, "patient updated successfully", patient)
}

// DeletePatient removes the profile and deactivates the paired account.
func (h *Handler) DeletePatient(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	patient, err := h.Store.PatientByID(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	if err := services.ForbidSelf(middleware.PrincipalFrom(c), patient.UserID); err != nil {
		fail(c, err)
		return
	}
	if err := h.Store.DeletePatient(ctx, id); err != nil {
		fail(c, err)
		return
	}
	if err := h.Store.SetUserActive(ctx, patient.UserID, false); err != nil {
		fail(c, err)
		return
	}
	respondMessage(c, "patient deleted successfully", nil)
}

func (h *Handler) PatientAppointments(c *gin.Context) {
	patient, ok := h.loadPatient(c)
	if !ok {
		return
	}
	appointments, err := h.Store.ListAppointments(c.Request.Context(), store.AppointmentFilter{PatientID: patient.ID})
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, appointments)
}
