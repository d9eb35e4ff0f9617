package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskdeck/taskdeck-backend/internal/models"
)

// MongoUserStore implements UserStore over the "users" collection.
type MongoUserStore struct {
	col *mongo.Collection
}

func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{col: db.Collection("users")}
}

func (s *MongoUserStore) Insert(ctx context.Context, user *models.User) error {
	_, err := s.col.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := s.col.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *MongoUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *MongoUserStore) FindByIDAndToken(ctx context.Context, id primitive.ObjectID, token string) (*models.User, error) {
	// Array containment: matches only when token is in the tokens list.
	return s.findOne(ctx, bson.M{"_id": id, "tokens": token})
}

func (s *MongoUserStore) AppendToken(ctx context.Context, id primitive.ObjectID, token string) error {
	return s.updateOne(ctx, id, bson.M{
		"$push": bson.M{"tokens": token},
		"$set":  bson.M{"updated_at": time.Now()},
	})
}

func (s *MongoUserStore) RemoveToken(ctx context.Context, id primitive.ObjectID, token string) error {
	return s.updateOne(ctx, id, bson.M{
		"$pull": bson.M{"tokens": token},
		"$set":  bson.M{"updated_at": time.Now()},
	})
}

func (s *MongoUserStore) ClearTokens(ctx context.Context, id primitive.ObjectID) error {
	return s.updateOne(ctx, id, bson.M{
		"$set": bson.M{"tokens": []string{}, "updated_at": time.Now()},
	})
}

func (s *MongoUserStore) SaveProfile(ctx context.Context, user *models.User) error {
	err := s.updateOne(ctx, user.ID, bson.M{
		"$set": bson.M{
			"name":       user.Name,
			"email":      user.Email,
			"password":   user.Password,
			"age":        user.Age,
			"updated_at": user.UpdatedAt,
		},
	})
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (s *MongoUserStore) SetAvatar(ctx context.Context, id primitive.ObjectID, avatar []byte) error {
	return s.updateOne(ctx, id, bson.M{
		"$set": bson.M{"avatar": avatar, "updated_at": time.Now()},
	})
}

func (s *MongoUserStore) ClearAvatar(ctx context.Context, id primitive.ObjectID) error {
	return s.updateOne(ctx, id, bson.M{
		"$unset": bson.M{"avatar": ""},
		"$set":   bson.M{"updated_at": time.Now()},
	})
}

func (s *MongoUserStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoUserStore) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
