package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/harentsoaR/medicare-api/internal/models"
)

// appointmentPipeline matches appointments, newest first, with patient and
// doctor (and their accounts) populated.
func appointmentPipeline(filter bson.M) mongo.Pipeline {
	return pipeline(
		[]bson.D{matchStage(filter), sortStage("appointmentDate", -1)},
		profileWithUser(colPatients, "patientId", "patient"),
		profileWithUser(colDoctors, "doctorId", "doctor"),
	)
}

func (s *MongoStore) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	now := s.now()
	a.ID = primitive.NewObjectID()
	a.CreatedAt, a.UpdatedAt = now, now
	if a.Status == "" {
		a.Status = models.StatusScheduled
	}
	if _, err := s.col(colAppointments).InsertOne(ctx, a); err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (s *MongoStore) AppointmentByID(ctx context.Context, id primitive.ObjectID) (*models.AppointmentDetail, error) {
	return findOne[models.AppointmentDetail](ctx, s, colAppointments, appointmentPipeline(bson.M{"_id": id}), "appointment not found")
}

func (s *MongoStore) ListAppointments(ctx context.Context, f AppointmentFilter) ([]models.AppointmentDetail, error) {
	out := []models.AppointmentDetail{}
	if err := s.aggregateAll(ctx, colAppointments, appointmentPipeline(f.bson()), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateAppointment replaces the mutable fields. Concurrent writers are last-write-wins.
func (s *MongoStore) UpdateAppointment(ctx context.Context, a *models.Appointment) error {
	a.UpdatedAt = s.now()
	set, err := setDoc(a, "patientId", "doctorId", "createdAt")
	if err != nil {
		return fmt.Errorf("encode appointment: %w", err)
	}
	return s.updateByID(ctx, colAppointments, a.ID, set, "appointment not found")
}

func (s *MongoStore) DeleteAppointment(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteByID(ctx, colAppointments, id, "appointment not found")
}

func (s *MongoStore) CountAppointments(ctx context.Context, f AppointmentFilter) (int64, error) {
	n, err := s.col(colAppointments).CountDocuments(ctx, f.bson())
	if err != nil {
		return 0, fmt.Errorf("count appointments: %w", err)
	}
	return n, nil
}

func (s *MongoStore) DistinctPatients(ctx context.Context, doctorID primitive.ObjectID) (int64, error) {
	ids, err := s.col(colAppointments).Distinct(ctx, "patientId", bson.M{"doctorId": doctorID})
	if err != nil {
		return 0, fmt.Errorf("distinct patients: %w", err)
	}
	return int64(len(ids)), nil
}
