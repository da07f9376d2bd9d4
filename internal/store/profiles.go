package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/harentsoaR/medicare-api/internal/apperr"
	"github.com/harentsoaR/medicare-api/internal/models"
)

// profilePipeline matches role profiles and populates their account.
func profilePipeline(filter bson.M, extra ...bson.D) mongo.Pipeline {
	return pipeline([]bson.D{matchStage(filter)}, extra, userSummaryStages())
}

// findOne runs a pipeline expected to yield at most one document.
func findOne[T any](ctx context.Context, s *MongoStore, col string, p mongo.Pipeline, notFound string) (*T, error) {
	var out []T
	p = append(p, bson.D{{Key: "$limit", Value: 1}})
	if err := s.aggregateAll(ctx, col, p, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, apperr.NotFound(notFound)
	}
	return &out[0], nil
}

func (s *MongoStore) insertProfile(ctx context.Context, col string, doc any, conflict string) error {
	if _, err := s.col(col).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Conflict(conflict)
		}
		return fmt.Errorf("insert into %s: %w", col, err)
	}
	return nil
}

// Patients

func (s *MongoStore) CreatePatient(ctx context.Context, p *models.Patient) error {
	now := s.now()
	p.ID = primitive.NewObjectID()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.MedicalHistory == nil {
		p.MedicalHistory = []models.MedicalHistoryEntry{}
	}
	return s.insertProfile(ctx, colPatients, p, "patient profile already exists for this user")
}

func (s *MongoStore) PatientByID(ctx context.Context, id primitive.ObjectID) (*models.PatientDetail, error) {
	return findOne[models.PatientDetail](ctx, s, colPatients, profilePipeline(bson.M{"_id": id}), "patient not found")
}

func (s *MongoStore) PatientByUserID(ctx context.Context, userID primitive.ObjectID) (*models.PatientDetail, error) {
	return findOne[models.PatientDetail](ctx, s, colPatients, profilePipeline(bson.M{"userId": userID}), "patient profile not found")
}

func (s *MongoStore) ListPatients(ctx context.Context) ([]models.PatientDetail, error) {
	out := []models.PatientDetail{}
	p := profilePipeline(bson.M{}, sortStage("createdAt", -1))
	if err := s.aggregateAll(ctx, colPatients, p, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) UpdatePatient(ctx context.Context, p *models.Patient) error {
	p.UpdatedAt = s.now()
	set, err := setDoc(p, "userId", "createdAt")
	if err != nil {
		return fmt.Errorf("encode patient: %w", err)
	}
	return s.updateByID(ctx, colPatients, p.ID, set, "patient not found")
}

func (s *MongoStore) DeletePatient(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteByID(ctx, colPatients, id, "patient not found")
}

// Doctors

func (s *MongoStore) CreateDoctor(ctx context.Context, d *models.Doctor) error {
	now := s.now()
	d.ID = primitive.NewObjectID()
	d.CreatedAt, d.UpdatedAt = now, now
	return s.insertProfile(ctx, colDoctors, d, "doctor profile or license number already registered")
}

func (s *MongoStore) DoctorByID(ctx context.Context, id primitive.ObjectID) (*models.DoctorDetail, error) {
	return findOne[models.DoctorDetail](ctx, s, colDoctors, profilePipeline(bson.M{"_id": id}), "doctor not found")
}

func (s *MongoStore) DoctorByUserID(ctx context.Context, userID primitive.ObjectID) (*models.DoctorDetail, error) {
	return findOne[models.DoctorDetail](ctx, s, colDoctors, profilePipeline(bson.M{"userId": userID}), "doctor profile not found")
}

func (f DoctorFilter) bson() bson.M {
	if f.AvailableOnly {
		return bson.M{"isAvailable": true}
	}
	return bson.M{}
}

func (s *MongoStore) ListDoctors(ctx context.Context, f DoctorFilter) ([]models.DoctorDetail, error) {
	out := []models.DoctorDetail{}
	p := profilePipeline(f.bson(), sortStage("createdAt", 1))
	if err := s.aggregateAll(ctx, colDoctors, p, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateDoctor leaves the feedback-derived counters alone.
func (s *MongoStore) UpdateDoctor(ctx context.Context, d *models.Doctor) error {
	d.UpdatedAt = s.now()
	set, err := setDoc(d, "userId", "createdAt", "rating", "totalRatings", "totalPatients")
	if err != nil {
		return fmt.Errorf("encode doctor: %w", err)
	}
	err = s.updateByID(ctx, colDoctors, d.ID, set, "doctor not found")
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflict("license number already registered")
	}
	return err
}

func (s *MongoStore) UpdateDoctorAggregates(ctx context.Context, id primitive.ObjectID, agg DoctorAggregates) error {
	set := bson.M{
		"rating":        agg.Rating,
		"totalRatings":  agg.TotalRatings,
		"totalPatients": agg.TotalPatients,
		"updatedAt":     s.now(),
	}
	return s.updateByID(ctx, colDoctors, id, set, "doctor not found")
}

func (s *MongoStore) DeleteDoctor(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteByID(ctx, colDoctors, id, "doctor not found")
}

// Staff

func (s *MongoStore) CreateStaff(ctx context.Context, st *models.Staff) error {
	now := s.now()
	st.ID = primitive.NewObjectID()
	st.CreatedAt, st.UpdatedAt = now, now
	if st.JoiningDate.IsZero() {
		st.JoiningDate = now
	}
	return s.insertProfile(ctx, colStaff, st, "staff profile or employee id already registered")
}

func (s *MongoStore) StaffByID(ctx context.Context, id primitive.ObjectID) (*models.StaffDetail, error) {
	return findOne[models.StaffDetail](ctx, s, colStaff, profilePipeline(bson.M{"_id": id}), "staff member not found")
}

func (s *MongoStore) StaffByUserID(ctx context.Context, userID primitive.ObjectID) (*models.StaffDetail, error) {
	return findOne[models.StaffDetail](ctx, s, colStaff, profilePipeline(bson.M{"userId": userID}), "staff profile not found")
}

func (s *MongoStore) ListStaff(ctx context.Context) ([]models.StaffDetail, error) {
	out := []models.StaffDetail{}
	p := profilePipeline(bson.M{}, sortStage("createdAt", -1))
	if err := s.aggregateAll(ctx, colStaff, p, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) UpdateStaff(ctx context.Context, st *models.Staff) error {
	st.UpdatedAt = s.now()
	set, err := setDoc(st, "userId", "createdAt")
	if err != nil {
		return fmt.Errorf("encode staff: %w", err)
	}
	err = s.updateByID(ctx, colStaff, st.ID, set, "staff member not found")
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflict("employee id already registered")
	}
	return err
}

func (s *MongoStore) DeleteStaff(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteByID(ctx, colStaff, id, "staff member not found")
}
