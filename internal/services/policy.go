package services

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/medicare-api/internal/apperr"
	"github.com/harentsoaR/medicare-api/internal/models"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID primitive.ObjectID
	Email  string
	Role   models.Role
	User   *models.User
}

func (p *Principal) Is(role models.Role) bool {
	return p != nil && p.Role == role
}

type Access int

const (
	Deny Access = iota
	Owner
	Allow
)

// Rule says, per role, whether a caller is refused, must own the resource, or is let through.
type Rule struct {
	Patient Access
	Doctor  Access
	Staff   Access
}

// Owners names the user id that owns a resource on behalf of each role.
type Owners struct {
	Patient primitive.ObjectID
	Doctor  primitive.ObjectID
	Staff   primitive.ObjectID
}

// Self is the owner set of a user account: only that user owns it, whatever the role.
func Self(userID primitive.ObjectID) Owners {
	return Owners{Patient: userID, Doctor: userID, Staff: userID}
}

var (
	SelfOrStaff          = Rule{Patient: Owner, Doctor: Owner, Staff: Allow}
	SelfOnly             = Rule{Patient: Owner, Doctor: Owner, Staff: Owner}
	AppointmentAccess    = Rule{Patient: Owner, Doctor: Owner, Staff: Allow}
	PatientProfileAccess = Rule{Patient: Owner, Doctor: Allow, Staff: Allow}
	DoctorOwnerOrStaff   = Rule{Patient: Deny, Doctor: Owner, Staff: Allow}
	FeedbackRead         = Rule{Patient: Owner, Doctor: Owner, Staff: Allow}
	FeedbackWrite        = Rule{Patient: Owner, Doctor: Deny, Staff: Allow}
)

const errAccessDenied = "access denied"

// Authorize returns a forbidden error unless the principal may act on a
// resource with the given owners.
func (r Rule) Authorize(p *Principal, o Owners) error {
	if p == nil {
		return apperr.Unauthorized("authentication required")
	}
	var access Access
	var owner primitive.ObjectID
	switch p.Role {
	case models.RolePatient:
		access, owner = r.Patient, o.Patient
	case models.RoleDoctor:
		access, owner = r.Doctor, o.Doctor
	case models.RoleStaff:
		access, owner = r.Staff, o.Staff
	}
	switch access {
	case Allow:
		return nil
	case Owner:
		if !owner.IsZero() && owner == p.UserID {
			return nil
		}
	}
	return apperr.Forbidden(errAccessDenied)
}

// ForbidSelf rejects staff removing their own account.
func ForbidSelf(p *Principal, target primitive.ObjectID) error {
	if p != nil && p.UserID == target {
		return apperr.Forbidden("you cannot delete your own account")
	}
	return nil
}

// CheckPatientAppointmentPatch limits what a patient may change on an
// appointment: the status field alone, and only to Cancelled.
func CheckPatientAppointmentPatch(keys []string, status string) error {
	for _, k := range keys {
		if k != "status" {
			return apperr.Forbidden("patients can only cancel appointments")
		}
	}
	if len(keys) == 0 || models.AppointmentStatus(status) != models.StatusCancelled {
		return apperr.Forbidden("patients can only cancel appointments")
	}
	return nil
}

// CheckProtectedKeys rejects non-staff callers touching staff-managed fields.
func CheckProtectedKeys(p *Principal, keys []string, protected ...string) error {
	if p.Is(models.RoleStaff) {
		return nil
	}
	for _, k := range keys {
		for _, pk := range protected {
			if k == pk {
				return apperr.Forbidden("only staff can change " + k)
			}
		}
	}
	return nil
}
