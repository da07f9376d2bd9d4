// Package store persists the hospital's documents in MongoDB.
package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/medicare-api/internal/models"
)

// Store is everything the handlers and services need from persistence.
type Store interface {
	UserStore
	PatientStore
	DoctorStore
	StaffStore
	AppointmentStore
	FeedbackStore
	PharmacyStore
	Ping(ctx context.Context) error
}

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	// UserByEmail is the only lookup that returns the password hash.
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	SetUserActive(ctx context.Context, id primitive.ObjectID, active bool) error
	CountUsers(ctx context.Context) (int64, error)
	// DeleteUser is only used to roll back a half-finished registration.
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
}

type PatientStore interface {
	CreatePatient(ctx context.Context, p *models.Patient) error
	PatientByID(ctx context.Context, id primitive.ObjectID) (*models.PatientDetail, error)
	PatientByUserID(ctx context.Context, userID primitive.ObjectID) (*models.PatientDetail, error)
	ListPatients(ctx context.Context) ([]models.PatientDetail, error)
	UpdatePatient(ctx context.Context, p *models.Patient) error
	DeletePatient(ctx context.Context, id primitive.ObjectID) error
}

type DoctorFilter struct {
	AvailableOnly bool
}

// DoctorAggregates are the counters derived from feedback and appointments.
type DoctorAggregates struct {
	Rating        float64
	TotalRatings  int64
	TotalPatients int64
}

type DoctorStore interface {
	CreateDoctor(ctx context.Context, d *models.Doctor) error
	DoctorByID(ctx context.Context, id primitive.ObjectID) (*models.DoctorDetail, error)
	DoctorByUserID(ctx context.Context, userID primitive.ObjectID) (*models.DoctorDetail, error)
	ListDoctors(ctx context.Context, f DoctorFilter) ([]models.DoctorDetail, error)
	UpdateDoctor(ctx context.Context, d *models.Doctor) error
	UpdateDoctorAggregates(ctx context.Context, id primitive.ObjectID, agg DoctorAggregates) error
	DeleteDoctor(ctx context.Context, id primitive.ObjectID) error
}

type StaffStore interface {
	CreateStaff(ctx context.Context, s *models.Staff) error
	StaffByID(ctx context.Context, id primitive.ObjectID) (*models.StaffDetail, error)
	StaffByUserID(ctx context.Context, userID primitive.ObjectID) (*models.StaffDetail, error)
	ListStaff(ctx context.Context) ([]models.StaffDetail, error)
	UpdateStaff(ctx context.Context, s *models.Staff) error
	DeleteStaff(ctx context.Context, id primitive.ObjectID) error
}

// AppointmentFilter narrows appointment queries. Zero values are ignored.
// From is inclusive and To exclusive on appointmentDate.
type AppointmentFilter struct {
	PatientID     primitive.ObjectID
	DoctorID      primitive.ObjectID
	Status        models.AppointmentStatus
	ExcludeStatus models.AppointmentStatus
	From          time.Time
	To            time.Time
}

func (f AppointmentFilter) bson() bson.M {
	m := bson.M{}
	if !f.PatientID.IsZero() {
		m["patientId"] = f.PatientID
	}
	if !f.DoctorID.IsZero() {
		m["doctorId"] = f.DoctorID
	}
	status := bson.M{}
	if f.Status != "" {
		status["$eq"] = f.Status
	}
	if f.ExcludeStatus != "" {
		status["$ne"] = f.ExcludeStatus
	}
	if len(status) > 0 {
		m["status"] = status
	}
	date := bson.M{}
	if !f.From.IsZero() {
		date["$gte"] = f.From
	}
	if !f.To.IsZero() {
		date["$lt"] = f.To
	}
	if len(date) > 0 {
		m["appointmentDate"] = date
	}
	return m
}

type AppointmentStore interface {
	CreateAppointment(ctx context.Context, a *models.Appointment) error
	AppointmentByID(ctx context.Context, id primitive.ObjectID) (*models.AppointmentDetail, error)
	ListAppointments(ctx context.Context, f AppointmentFilter) ([]models.AppointmentDetail, error)
	UpdateAppointment(ctx context.Context, a *models.Appointment) error
	DeleteAppointment(ctx context.Context, id primitive.ObjectID) error
	CountAppointments(ctx context.Context, f AppointmentFilter) (int64, error)
	// DistinctPatients counts the patients a doctor has had appointments with.
	DistinctPatients(ctx context.Context, doctorID primitive.ObjectID) (int64, error)
}

type FeedbackFilter struct {
	PatientID primitive.ObjectID
	DoctorID  primitive.ObjectID
}

func (f FeedbackFilter) bson() bson.M {
	m := bson.M{}
	if !f.PatientID.IsZero() {
		m["patientId"] = f.PatientID
	}
	if !f.DoctorID.IsZero() {
		m["doctorId"] = f.DoctorID
	}
	return m
}

type FeedbackStore interface {
	CreateFeedback(ctx context.Context, f *models.Feedback) error
	FeedbackByID(ctx context.Context, id primitive.ObjectID) (*models.FeedbackDetail, error)
	ListFeedback(ctx context.Context, f FeedbackFilter) ([]models.FeedbackDetail, error)
	UpdateFeedback(ctx context.Context, f *models.Feedback) error
	DeleteFeedback(ctx context.Context, id primitive.ObjectID) error
	DoctorRatingSummary(ctx context.Context, doctorID primitive.ObjectID) (models.RatingSummary, error)
}

type PharmacyStore interface {
	ListMedicines(ctx context.Context) ([]models.Medicine, error)
	MedicinesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Medicine, error)
	// UpsertMedicine inserts or refreshes a catalog entry keyed by name.
	UpsertMedicine(ctx context.Context, m *models.Medicine) error
	CreateOrder(ctx context.Context, o *models.PharmacyOrder) error
	ListOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.PharmacyOrder, error)
}
