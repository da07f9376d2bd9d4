package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/harentsoaR/medicare-api/internal/apperr"
)

const (
	colUsers        = "users"
	colPatients     = "patients"
	colDoctors      = "doctors"
	colStaff        = "staffs"
	colAppointments = "appointments"
	colFeedback     = "feedbacks"
	colMedicines    = "medicines"
	colOrders       = "orders"
)

// MongoStore implements Store on a single database.
type MongoStore struct {
	db  *mongo.Database
	now func() time.Time
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db, now: time.Now}
}

// Connect dials the server and checks it answers within the timeout.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return client, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

func (s *MongoStore) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// EnsureIndexes creates the unique and lookup indexes the queries rely on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	specs := map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		colPatients: {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: unique},
		},
		colDoctors: {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "licenseNumber", Value: 1}}, Options: unique},
		},
		colStaff: {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "employeeId", Value: 1}}, Options: unique},
		},
		colAppointments: {
			{Keys: bson.D{{Key: "doctorId", Value: 1}, {Key: "appointmentDate", Value: -1}}},
			{Keys: bson.D{{Key: "patientId", Value: 1}, {Key: "appointmentDate", Value: -1}}},
		},
		colFeedback: {
			{Keys: bson.D{{Key: "doctorId", Value: 1}}},
			{Keys: bson.D{{Key: "patientId", Value: 1}}},
		},
		colMedicines: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique},
		},
		colOrders: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}
	for name, idx := range specs {
		if _, err := s.col(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// setDoc converts a model into a $set document, dropping the given keys.
func setDoc(v any, drop ...string) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	delete(m, "_id")
	for _, k := range drop {
		delete(m, k)
	}
	return m, nil
}

// updateByID applies $set to one document, reporting notFound when nothing matched.
func (s *MongoStore) updateByID(ctx context.Context, col string, id primitive.ObjectID, set bson.M, notFound string) error {
	res, err := s.col(col).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update %s: %w", col, err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound(notFound)
	}
	return nil
}

func (s *MongoStore) deleteByID(ctx context.Context, col string, id primitive.ObjectID, notFound string) error {
	res, err := s.col(col).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", col, err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound(notFound)
	}
	return nil
}

// aggregateAll runs a pipeline and decodes every result into out.
func (s *MongoStore) aggregateAll(ctx context.Context, col string, pipeline mongo.Pipeline, out any) error {
	cursor, err := s.col(col).Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("aggregate %s: %w", col, err)
	}
	defer cursor.Close(ctx)
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s: %w", col, err)
	}
	return nil
}

func matchStage(filter bson.M) bson.D {
	return bson.D{{Key: "$match", Value: filter}}
}

func sortStage(field string, dir int) bson.D {
	return bson.D{{Key: "$sort", Value: bson.D{{Key: field, Value: dir}}}}
}

// lookupOne joins a single document from another collection into field as.
// The result stays absent when nothing matches.
func lookupOne(from, localField, as string) []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: from},
			{Key: "localField", Value: localField},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: as},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$" + as},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}
}

// userSummaryStages populates user from userId without the password hash.
func userSummaryStages() []bson.D {
	stages := lookupOne(colUsers, "userId", "user")
	return append(stages, bson.D{{Key: "$project", Value: bson.D{{Key: "user.password", Value: 0}}}})
}

// profileWithUser joins a role profile into field as, with the profile's own
// account populated inside it.
func profileWithUser(from, localField, as string) []bson.D {
	inner := bson.A{
		bson.D{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{{Key: "$eq", Value: bson.A{"$_id", "$$ref"}}}}}}},
	}
	for _, st := range userSummaryStages() {
		inner = append(inner, st)
	}
	return []bson.D{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: from},
			{Key: "let", Value: bson.D{{Key: "ref", Value: "$" + localField}}},
			{Key: "pipeline", Value: inner},
			{Key: "as", Value: as},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$" + as},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}
}

func pipeline(groups ...[]bson.D) mongo.Pipeline {
	var p mongo.Pipeline
	for _, g := range groups {
		p = append(p, g...)
	}
	return p
}
