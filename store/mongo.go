package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/avelar-dev/go-tours/models"
)

// MongoStore implements UserStore on a MongoDB collection.
type MongoStore struct {
	users *mongo.Collection
}

// NewMongoStore wraps the users collection of db and ensures the unique
// email index exists.
func NewMongoStore(ctx context.Context, db *mongo.Database) (*MongoStore, error) {
	users := db.Collection("users")

	_, err := users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, err
	}

	return &MongoStore{users: users}, nil
}

// activeFilter hides soft-deleted users from every lookup.
func activeFilter(filter bson.M) bson.M {
	filter["active"] = bson.M{"$ne": false}
	return filter
}

func (s *MongoStore) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.Active = true
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (s *MongoStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, activeFilter(bson.M{"email": email}))
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.findOne(ctx, activeFilter(bson.M{"_id": oid}))
}

func (s *MongoStore) FindByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	return s.findOne(ctx, activeFilter(bson.M{
		"password_reset_token":   tokenHash,
		"password_reset_expires": bson.M{"$gt": time.Now()},
	}))
}

func (s *MongoStore) SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error {
	return s.updateByID(ctx, id, bson.M{
		"$set": bson.M{
			"password_reset_token":   tokenHash,
			"password_reset_expires": expires,
		},
	})
}

func (s *MongoStore) ClearResetToken(ctx context.Context, id string) error {
	return s.updateByID(ctx, id, bson.M{
		"$unset": bson.M{
			"password_reset_token":   "",
			"password_reset_expires": "",
		},
	})
}

func (s *MongoStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	// The changed-at timestamp is backdated one second so a token minted
	// right after the update never looks stale.
	return s.updateByID(ctx, id, bson.M{
		"$set": bson.M{
			"password":            passwordHash,
			"password_changed_at": time.Now().Add(-time.Second),
			"updated_at":          time.Now().UTC(),
		},
		"$unset": bson.M{
			"password_reset_token":   "",
			"password_reset_expires": "",
		},
	})
}

func (s *MongoStore) UpdateProfile(ctx context.Context, id, name, email string) (*models.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if name != "" {
		set["name"] = name
	}
	if email != "" {
		set["email"] = email
	}
	if err := s.updateByID(ctx, id, bson.M{"$set": set}); err != nil {
		return nil, err
	}
	return s.FindByID(ctx, id)
}

func (s *MongoStore) Deactivate(ctx context.Context, id string) error {
	return s.updateByID(ctx, id, bson.M{"$set": bson.M{"active": false}})
}

func (s *MongoStore) List(ctx context.Context) ([]models.User, error) {
	cur, err := s.users.Find(ctx, activeFilter(bson.M{}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *MongoStore) updateByID(ctx context.Context, id string, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.users.UpdateByID(ctx, oid, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
