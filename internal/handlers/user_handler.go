package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/medicare-api/internal/apperr"
	"github.com/harentsoaR/medicare-api/internal/middleware"
	"github.com/harentsoaR/medicare-api/internal/models"
	"github.com/harentsoaR/medicare-api/internal/services"
)

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Store.ListUsers(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, users)
}

func (h *Handler) GetUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := services.SelfOrStaff.Authorize(middleware.PrincipalFrom(c), services.Self(id)); err != nil {
		fail(c, err)
		return
	}
	user, err := h.Store.UserByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p := middleware.PrincipalFrom(c)
	if err := services.SelfOrStaff.Authorize(p, services.Self(id)); err != nil {
		fail(c, err)
		return
	}
	body, err := readPatch(c)
	if err != nil {
		fail(c, err)
		return
	}
	if err := services.CheckProtectedKeys(p, body.keys(), "email", "userType", "isActive"); err != nil {
		fail(c, err)
		return
	}

	ctx := c.Request.Context()
	user, err := h.Store.UserByID(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	role := user.UserType
	if err := body.applyTo(user); err != nil {
		fail(c, err)
		return
	}
	if err := models.Validate(user); err != nil {
		fail(c, err)
		return
	}
	if user.UserType != role {
		if err := h.checkRoleChange(ctx, user.ID, role); err != nil {
			fail(c, err)
			return
		}
	}
	if err := h.Store.UpdateUser(ctx, user); err != nil {
		fail(c, err)
		return
	}
	respondMessage(c, "user updated successfully", user)
}

// checkRoleChange refuses to retype a user who still owns a role profile;
// the profile would be orphaned under the new type.
func (h *Handler) checkRoleChange(ctx context.Context, id primitive.ObjectID, current models.Role) error {
	_, err := h.Auth.Profile(ctx, &models.User{ID: id, UserType: current})
	switch {
	case err == nil:
		return apperr.Conflict(fmt.Sprintf("cannot change userType while a %s profile exists", current))
	case apperr.Is(err, apperr.KindNotFound):
		return nil
	default:
		return err
	}
}

// DeleteUser deactivates the account; users are never removed.
func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := services.ForbidSelf(middleware.PrincipalFrom(c), id); err != nil {
		fail(c, err)
		return
	}
	if err := h.Store.SetUserActive(c.Request.Context(), id, false); err != nil {
		fail(c, err)
		return
	}
	respondMessage(c, "user deactivated successfully", nil)
}

func (h *Handler) Dashboard(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p := middleware.PrincipalFrom(c)
	if err := services.SelfOnly.Authorize(p, services.Self(id)); err != nil {
		fail(c, err)
		return
	}
	dash, err := h.Stats.Dashboard(c.Request.Context(), p.User)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, dash)
}
