package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/medicare-api/internal/apperr"
	"github.com/harentsoaR/medicare-api/internal/middleware"
	"github.com/harentsoaR/medicare-api/internal/models"
	"github.com/harentsoaR/medicare-api/internal/services"
	"github.com/harentsoaR/medicare-api/internal/store"
)

type createFeedbackRequest struct {
	DoctorID      *primitive.ObjectID     `json:"doctorId"`
	AppointmentID *primitive.ObjectID     `json:"appointmentId"`
	Rating        int                     `json:"rating"`
	Comment       string                  `json:"comment"`
	Category      models.FeedbackCategory `json:"category"`
	IsAnonymous   bool                    `json:"isAnonymous"`
}

// visibleTo hides anonymous authors from everyone but staff and the author.
func visibleTo(p *services.Principal, f models.FeedbackDetail) models.FeedbackDetail {
	if p.Is(models.RoleStaff) {
		return f
	}
	if author, _ := f.Owners(); !author.IsZero() && author == p.UserID {
		return f
	}
	return f.Anonymized()
}

func (h *Handler) ListFeedback(c *gin.Context) {
	ctx := c.Request.Context()
	p := middleware.PrincipalFrom(c)

	var filter store.FeedbackFilter
	switch p.Role {
	case models.RolePatient:
		patient, err := h.Store.PatientByUserID(ctx, p.UserID)
		if err != nil {
			fail(c, err)
			return
		}
		filter.PatientID = patient.ID
	case models.RoleDoctor:
		doctor, err := h.Store.DoctorByUserID(ctx, p.UserID)
		if err != nil {
			fail(c, err)
			return
		}
		filter.DoctorID = doctor.ID
	case models.RoleStaff:
		if v := c.Query("doctorId"); v != "" {
			id, err := primitive.ObjectIDFromHex(v)
			if err != nil {
				fail(c, apperr.Validation("invalid doctorId"))
				return
			}
			filter.DoctorID = id
		}
	}

	feedback, err := h.Store.ListFeedback(ctx, filter)
	if err != nil {
		fail(c, err)
		return
	}
	for i := range feedback {
		feedback[i] = visibleTo(p, feedback[i])
	}
	respondList(c, feedback)
}

func (h *Handler) CreateFeedback(c *gin.Context) {
	var req createFeedbackRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Rating < models.MinRating || req.Rating > models.MaxRating {
		fail(c, apperr.Validation("rating must be between %d and %d", models.MinRating, models.MaxRating))
		return
	}

	ctx := c.Request.Context()
	p := middleware.PrincipalFrom(c)
	patient, err := h.Store.PatientByUserID(ctx, p.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	if req.DoctorID != nil && !req.DoctorID.IsZero() {
		if _, err := h.Store.DoctorByID(ctx, *req.DoctorID); err != nil {
			fail(c, err)
			return
		}
	} else {
		req.DoctorID = nil
	}
	if req.AppointmentID != nil && !req.AppointmentID.IsZero() {
		apt, err := h.Store.AppointmentByID(ctx, *req.AppointmentID)
		if err != nil {
			fail(c, err)
			return
		}
		if apt.PatientID != patient.ID {
			fail(c, apperr.Forbidden("you can only review your own appointments"))
			return
		}
	} else {
		req.AppointmentID = nil
	}

	fb := models.Feedback{
		PatientID:     patient.ID,
		DoctorID:      req.DoctorID,
		AppointmentID: req.AppointmentID,
		Rating:        req.Rating,
		Comment:       req.Comment,
		Category:      req.Category,
		IsAnonymous:   req.IsAnonymous,
	}
	fb.Normalize()
	if err := models.Validate(&fb); err != nil {
		fail(c, err)
		return
	}
	if err := h.Store.CreateFeedback(ctx, &fb); err != nil {
		fail(c, err)
		return
	}
	if fb.DoctorID != nil {
		h.refreshDoctor(ctx, *fb.DoctorID)
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "feedback submitted successfully", "data": fb})
}

// loadFeedback fetches the :id feedback and checks rule against the caller.
func (h *Handler) loadFeedback(c *gin.Context, rule services.Rule) (*models.FeedbackDetail, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	fb, err := h.Store.FeedbackByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	author, doctorUser := fb.Owners()
	if err := rule.Authorize(middleware.PrincipalFrom(c), services.Owners{Patient: author, Doctor: doctorUser}); err != nil {
		fail(c, err)
		return nil, false
	}
	return fb, true
}

func (h *Handler) GetFeedback(c *gin.Context) {
	fb, ok := h.loadFeedback(c, services.FeedbackRead)
	if !ok {
		return
	}
	respond(c, http.StatusOK, visibleTo(middleware.PrincipalFrom(c), *fb))
}

func (h *Handler) UpdateFeedback(c *gin.Context) {
	fb, ok := h.loadFeedback(c, services.FeedbackWrite)
	if !ok {
		return
	}
	body, err := readPatch(c)
	if err != nil {
		fail(c, err)
		return
	}
	if err := services.CheckProtectedKeys(middleware.PrincipalFrom(c), body.keys(), "status", "appointmentId"); err != nil {
		fail(c, err)
		return
	}
	if err := body.applyTo(&fb.Feedback); err != nil {
		fail(c, err)
		return
	}
	if err := models.Validate(&fb.Feedback); err != nil {
		fail(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.Store.UpdateFeedback(ctx, &fb.Feedback); err != nil {
		fail(c, err)
		return
	}
	if fb.DoctorID != nil {
		h.refreshDoctor(ctx, *fb.DoctorID)
	}
	respondMessage(c, "feedback updated successfully", fb)
}

func (h *Handler) DeleteFeedback(c *gin.Context) {
	fb, ok := h.loadFeedback(c, services.FeedbackWrite)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.Store.DeleteFeedback(ctx, fb.ID); err != nil {
		fail(c, err)
		return
	}
	if fb.DoctorID != nil {
		h.refreshDoctor(ctx, *fb.DoctorID)
	}
	respondMessage(c, "feedback deleted successfully", nil)
}
