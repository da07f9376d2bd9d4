package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/harentsoaR/medicare-api/internal/models"
)

func feedbackPipeline(filter bson.M) mongo.Pipeline {
	return pipeline(
		[]bson.D{matchStage(filter), sortStage("createdAt", -1)},
		profileWithUser(colPatients, "patientId", "patient"),
		profileWithUser(colDoctors, "doctorId", "doctor"),
		lookupOne(colAppointments, "appointmentId", "appointment"),
	)
}

// ratingPipeline averages the ratings left for one doctor.
func ratingPipeline(doctorID primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		matchStage(bson.M{"doctorId": doctorID}),
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "average", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
}

func (s *MongoStore) CreateFeedback(ctx context.Context, f *models.Feedback) error {
	now := s.now()
	f.ID = primitive.NewObjectID()
	f.CreatedAt, f.UpdatedAt = now, now
	f.Normalize()
	if _, err := s.col(colFeedback).InsertOne(ctx, f); err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (s *MongoStore) FeedbackByID(ctx context.Context, id primitive.ObjectID) (*models.FeedbackDetail, error) {
	return findOne[models.FeedbackDetail](ctx, s, colFeedback, feedbackPipeline(bson.M{"_id": id}), "feedback not found")
}

func (s *MongoStore) ListFeedback(ctx context.Context, f FeedbackFilter) ([]models.FeedbackDetail, error) {
	out := []models.FeedbackDetail{}
	if err := s.aggregateAll(ctx, colFeedback, feedbackPipeline(f.bson()), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) UpdateFeedback(ctx context.Context, f *models.Feedback) error {
	f.UpdatedAt = s.now()
	f.Normalize()
	set, err := setDoc(f, "patientId", "createdAt")
	if err != nil {
		return fmt.Errorf("encode feedback: %w", err)
	}
	return s.updateByID(ctx, colFeedback, f.ID, set, "feedback not found")
}

func (s *MongoStore) DeleteFeedback(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteByID(ctx, colFeedback, id, "feedback not found")
}

func (s *MongoStore) DoctorRatingSummary(ctx context.Context, doctorID primitive.ObjectID) (models.RatingSummary, error) {
	var out []models.RatingSummary
	if err := s.aggregateAll(ctx, colFeedback, ratingPipeline(doctorID), &out); err != nil {
		return models.RatingSummary{}, err
	}
	if len(out) == 0 {
		return models.RatingSummary{}, nil
	}
	return out[0], nil
}
