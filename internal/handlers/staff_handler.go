package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/medicare-api/internal/middleware"
	"github.com/harentsoaR/medicare-api/internal/models"
	"github.com/harentsoaR/medicare-api/internal/services"
)

func (h *Handler) ListStaff(c *gin.Context) {
	staff, err := h.Store.ListStaff(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, staff)
}

func (h *Handler) CreateStaff(c *gin.Context) {
	var in services.StaffInput
	if !bindJSON(c, &in) {
		return
	}
	staff, err := h.Auth.RegisterStaff(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "staff member created successfully", "data": staff})
}

func (h *Handler) MyStaffProfile(c *gin.Context) {
	staff, err := h.Store.StaffByUserID(c.Request.Context(), middleware.PrincipalFrom(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, staff)
}

func (h *Handler) GetStaff(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	staff, err := h.Store.StaffByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, staff)
}

func (h *Handler) UpdateStaff(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	body, err := readPatch(c)
	if err != nil {
		fail(c, err)
		return
	}
	if err := body.normalizeDate("joiningDate"); err != nil {
		fail(c, err)
		return
	}
	ctx := c.Request.Context()
	staff, err := h.Store.StaffByID(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	if err := body.applyTo(&staff.Staff); err != nil {
		fail(c, err)
		return
	}
	if err := models.Validate(&staff.Staff); err != nil {
		fail(c, err)
		return
	}
	if err := h.Store.UpdateStaff(ctx, &staff.Staff); err != nil {
		fail(c, err)
		return
	}
	respondMessage(c, "staff member updated successfully", staff)
}

func (h *Handler) DeleteStaff(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	staff, err := h.Store.StaffByID(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	if err := services.ForbidSelf(middleware.PrincipalFrom(c), staff.UserID); err != nil {
		fail(c, err)
		return
	}
	if err := h.Store.DeleteStaff(ctx, id); err != nil {
		fail(c, err)
		return
	}
	if err := h.Store.SetUserActive(ctx, staff.UserID, false); err != nil {
		fail(c, err)
		return
	}
	respondMessage(c, "staff member deleted successfully", nil)
}
