package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/medicare-api/internal/apperr"
	"github.com/harentsoaR/medicare-api/internal/middleware"
	"github.com/harentsoaR/medicare-api/internal/models"
	"github.com/harentsoaR/medicare-api/internal/services"
	"github.com/harentsoaR/medicare-api/internal/store"
)

type createAppointmentRequest struct {
	DoctorID        primitive.ObjectID `json:"doctorId"`
	PatientID       primitive.ObjectID `json:"patientId"`
	AppointmentDate string             `json:"appointmentDate"`
	AppointmentTime string             `json:"appointmentTime"`
	Reason          string             `json:"reason"`
	Notes           string             `json:"notes"`
}

// scopeFilter restricts appointment queries to what the caller may see.
func (h *Handler) scopeFilter(ctx context.Context, p *services.Principal, f *store.AppointmentFilter) error {
	switch p.Role {
	case models.RolePatient:
		patient, err := h.Store.PatientByUserID(ctx, p.UserID)
		if err != nil {
			return err
		}
		f.PatientID = patient.ID
	case models.RoleDoctor:
		doctor, err := h.Store.DoctorByUserID(ctx, p.UserID)
		if err != nil {
			return err
		}
		f.DoctorID = doctor.ID
	}
	return nil
}

// GetAppointments lists the caller's appointments, newest first.
// Optional filters: ?status=, ?date=YYYY-MM-DD, and for staff ?doctorId= / ?patientId=.
func (h *Handler) GetAppointments(c *gin.Context) {
	var filter store.AppointmentFilter
	if s := c.Query("status"); s != "" {
		status, err := models.ParseAppointmentStatus(s)
		if err != nil {
			fail(c, apperr.Validation("%v", err))
			return
		}
		filter.Status = status
	}
	if date := c.Query("date"); date != "" {
		day, err := parseDate(date)
		if err != nil {
			fail(c, err)
			return
		}
		filter.From, filter.To = services.DayBounds(day)
	}
	for param, dst := range map[string]*primitive.ObjectID{"doctorId": &filter.DoctorID, "patientId": &filter.PatientID} {
		if v := c.Query(param); v != "" {
			id, err := primitive.ObjectIDFromHex(v)
			if err != nil {
				fail(c, apperr.Validation("invalid %s", param))
				return
			}
			*dst = id
		}
	}

	ctx := c.Request.Context()
	if err := h.scopeFilter(ctx, middleware.PrincipalFrom(c), &filter); err != nil {
		fail(c, err)
		return
	}
	appointments, err := h.Store.ListAppointments(ctx, filter)
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, appointments)
}

// CreateAppointment books a visit. Patients book for themselves; staff name the patient.
func (h *Handler) CreateAppointment(c *gin.Context) {
	var req createAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.DoctorID.IsZero() {
		fail(c, apperr.Validation("doctorId is required"))
		return
	}
	if req.AppointmentDate == "" {
		fail(c, apperr.Validation("appointmentDate is required"))
		return
	}
	date, err := parseDate(req.AppointmentDate)
	if err != nil {
		fail(c, err)
		return
	}

	ctx := c.Request.Context()
	p := middleware.PrincipalFrom(c)
	var patient *models.PatientDetail
	if p.Is(models.RoleStaff) {
		if req.PatientID.IsZero() {
			fail(c, apperr.Validation("patientId is required"))
			return
		}
		patient, err = h.Store.PatientByID(ctx, req.PatientID)
	} else {
		patient, err = h.Store.PatientByUserID(ctx, p.UserID)
	}
	if err != nil {
		fail(c, err)
		return
	}

	doctor, err := h.Store.DoctorByID(ctx, req.DoctorID)
	if apperr.Is(err, apperr.KindNotFound) || (err == nil && !doctor.IsAvailable) {
		fail(c, apperr.NotFound("doctor not available"))
		return
	}
	if err != nil {
		fail(c, err)
		return
	}

	apt := models.Appointment{
		PatientID:       patient.ID,
		DoctorID:        doctor.ID,
		AppointmentDate: date,
		AppointmentTime: req.AppointmentTime,
		Reason:          req.Reason,
		Notes:           req.Notes,
		Status:          models.StatusScheduled,
	}
	if err := models.Validate(&apt); err != nil {
		fail(c, err)
		return
	}
	if err := h.Store.CreateAppointment(ctx, &apt); err != nil {
		fail(c, err)
		return
	}

	h.refreshDoctor(ctx, doctor.ID)
	h.Notifier.AppointmentBooked(patient.User, doctor, &apt)
	logrus.WithFields(logrus.Fields{
		"appointment_id": apt.ID.Hex(),
		"doctor_id":      doctor.ID.Hex(),
		"patient_id":     patient.ID.Hex(),
	}).Info("appointment booked")

	detail := models.AppointmentDetail{Appointment: apt, Patient: patient, Doctor: doctor}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "appointment booked successfully", "data": detail})
}

// refreshDoctor recomputes the doctor's stored counters. Failures are logged only.
func (h *Handler) refreshDoctor(ctx context.Context, doctorID primitive.ObjectID) {
	if doctorID.IsZero() {
		return
	}
	if err := h.Stats.RefreshDoctorAggregates(ctx, doctorID); err != nil {
		logrus.WithError(err).WithField("doctor_id", doctorID.Hex()).Warn("failed to refresh doctor aggregates")
	}
}

// loadAppointment fetches the :id appointment and checks the caller is a party to it.
func (h *Handler) loadAppointment(c *gin.Context) (*models.AppointmentDetail, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	apt, err := h.Store.AppointmentByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	patientUser, doctorUser := apt.Owners()
	owners := services.Owners{Patient: patientUser, Doctor: doctorUser}
	if err := services.AppointmentAccess.Authorize(middleware.PrincipalFrom(c), owners); err != nil {
		fail(c, err)
		return nil, false
	}
	return apt, true
}

func (h *Handler) GetAppointment(c *gin.Context) {
	apt, ok := h.loadAppointment(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, apt)
}

// UpdateAppointment merges the body onto the appointment. Patients may only cancel.
func (h *Handler) UpdateAppointment(c *gin.Context) {
	apt, ok := h.loadAppointment(c)
	if !ok {
		return
	}
	body, err := readPatch(c)
	if err != nil {
		fail(c, err)
		return
	}
	p := middleware.PrincipalFrom(c)
	if p.Is(models.RolePatient) {
		if err := services.CheckPatientAppointmentPatch(body.keys(), body.str("status")); err != nil {
			fail(c, err)
			return
		}
	}
	if err := body.normalizeDate("appointmentDate"); err != nil {
		fail(c, err)
		return
	}

	wasCancelled := apt.Status == models.StatusCancelled
	if err := body.applyTo(&apt.Appointment); err != nil {
		fail(c, err)
		return
	}
	if err := models.Validate(&apt.Appointment); err != nil {
		fail(c, err)
		return
	}
	if err := h.Store.UpdateAppointment(c.Request.Context(), &apt.Appointment); err != nil {
		fail(c, err)
		return
	}
	if !wasCancelled && apt.Status == models.StatusCancelled {
		h.notifyCancelled(apt)
	}
	respondMessage(c, "appointment updated successfully", apt)
}

// DeleteAppointment cancels for the patient or doctor and removes the record for staff.
func (h *Handler) DeleteAppointment(c *gin.Context) {
	apt, ok := h.loadAppointment(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if middleware.PrincipalFrom(c).Is(models.RoleStaff) {
		if err := h.Store.DeleteAppointment(ctx, apt.ID); err != nil {
			fail(c, err)
			return
		}
		respondMessage(c, "appointment deleted successfully", nil)
		return
	}

	if apt.Status != models.StatusCancelled {
		apt.Status = models.StatusCancelled
		if err := h.Store.UpdateAppointment(ctx, &apt.Appointment); err != nil {
			fail(c, err)
			return
		}
		h.notifyCancelled(apt)
	}
	respondMessage(c, "appointment cancelled successfully", apt)
}

func (h *Handler) notifyCancelled(apt *models.AppointmentDetail) {
	if apt.Patient == nil {
		return
	}
	h.Notifier.AppointmentCancelled(apt.Patient.User, &apt.Appointment)
}
