package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/medicare-api/internal/models"
)

func (s *MongoStore) ListMedicines(ctx context.Context) ([]models.Medicine, error) {
	return s.findMedicines(ctx, bson.M{})
}

func (s *MongoStore) MedicinesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Medicine, error) {
	return s.findMedicines(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (s *MongoStore) findMedicines(ctx context.Context, filter bson.M) ([]models.Medicine, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := s.col(colMedicines).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find medicines: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.Medicine{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode medicines: %w", err)
	}
	return out, nil
}

func (s *MongoStore) UpsertMedicine(ctx context.Context, m *models.Medicine) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now()
	}
	set, err := setDoc(m, "createdAt")
	if err != nil {
		return fmt.Errorf("encode medicine: %w", err)
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"createdAt": m.CreatedAt},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err = s.col(colMedicines).FindOneAndUpdate(ctx, bson.M{"name": m.Name}, update, opts).Decode(m)
	if err != nil {
		return fmt.Errorf("upsert medicine %q: %w", m.Name, err)
	}
	return nil
}

func (s *MongoStore) CreateOrder(ctx context.Context, o *models.PharmacyOrder) error {
	now := s.now()
	o.ID = primitive.NewObjectID()
	o.CreatedAt, o.UpdatedAt = now, now
	if _, err := s.col(colOrders).InsertOne(ctx, o); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *MongoStore) ListOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.PharmacyOrder, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.col(colOrders).Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.PharmacyOrder{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return out, nil
}
