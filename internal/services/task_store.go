package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskdeck/taskdeck-backend/internal/models"
)

// MongoTaskStore implements TaskStore over the "tasks" collection.
type MongoTaskStore struct {
	col *mongo.Collection
}

func NewMongoTaskStore(db *mongo.Database) *MongoTaskStore {
	return &MongoTaskStore{col: db.Collection("tasks")}
}

func (s *MongoTaskStore) Insert(ctx context.Context, task *models.Task) error {
	_, err := s.col.InsertOne(ctx, task)
	return err
}

func (s *MongoTaskStore) FindByOwner(ctx context.Context, owner primitive.ObjectID, query TaskQuery) ([]models.Task, error) {
	filter := bson.M{"owner": owner}
	if query.Completed != nil {
		filter["completed"] = *query.Completed
	}

	findOptions := options.Find()
	if query.Limit > 0 {
		findOptions.SetLimit(query.Limit)
	}
	if query.Skip > 0 {
		findOptions.SetSkip(query.Skip)
	}
	if len(query.Sort) > 0 {
		// bson.D keeps the listed order, so earlier sortBy terms win.
		sort := bson.D{}
		for _, field := range query.Sort {
			direction := 1
			if field.Desc {
				direction = -1
			}
			sort = append(sort, bson.E{Key: field.Field, Value: direction})
		}
		findOptions.SetSort(sort)
	}

	cursor, err := s.col.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *MongoTaskStore) FindByIDAndOwner(ctx context.Context, id, owner primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := s.col.FindOne(ctx, bson.M{"_id": id, "owner": owner}).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *MongoTaskStore) SaveFields(ctx context.Context, task *models.Task) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": task.ID, "owner": task.Owner}, bson.M{
		"$set": bson.M{
			"description": task.Description,
			"completed":   task.Completed,
			"updated_at":  task.UpdatedAt,
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoTaskStore) DeleteByIDAndOwner(ctx context.Context, id, owner primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := s.col.FindOneAndDelete(ctx, bson.M{"_id": id, "owner": owner}).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *MongoTaskStore) DeleteByOwner(ctx context.Context, owner primitive.ObjectID) error {
	_, err := s.col.DeleteMany(ctx, bson.M{"owner": owner})
	return err
}
