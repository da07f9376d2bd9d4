package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/medicare-api/internal/apperr"
	"github.com/harentsoaR/medicare-api/internal/models"
)

var withoutPassword = bson.D{{Key: "password", Value: 0}}

func (s *MongoStore) CreateUser(ctx context.Context, u *models.User) error {
	now := s.now()
	u.ID = primitive.NewObjectID()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.CreatedAt, u.UpdatedAt = now, now
	if _, err := s.col(colUsers).InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Conflict("user already exists with this email")
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *MongoStore) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	err := s.col(colUsers).FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(withoutPassword)).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (s *MongoStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	filter := bson.M{"email": strings.ToLower(strings.TrimSpace(email))}
	err := s.col(colUsers).FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &u, nil
}

func (s *MongoStore) ListUsers(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetProjection(withoutPassword).SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.col(colUsers).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// UpdateUser writes every field except the password hash.
func (s *MongoStore) UpdateUser(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.UpdatedAt = s.now()
	set, err := setDoc(u, "password", "createdAt")
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	err = s.updateByID(ctx, colUsers, u.ID, set, "user not found")
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflict("user already exists with this email")
	}
	return err
}

func (s *MongoStore) SetUserActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	return s.updateByID(ctx, colUsers, id, bson.M{"isActive": active, "updatedAt": s.now()}, "user not found")
}

func (s *MongoStore) CountUsers(ctx context.Context) (int64, error) {
	n, err := s.col(colUsers).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (s *MongoStore) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteByID(ctx, colUsers, id, "user not found")
}
