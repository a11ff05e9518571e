package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"streetsense-be/models"
)

// MongoProblemRepository implements ProblemRepository on the problems
// collection. Upvotes and update appends go through FindOneAndUpdate so two
// concurrent writers on the same document both land.
type MongoProblemRepository struct {
	collection *mongo.Collection
}

func NewMongoProblemRepository(collection *mongo.Collection) *MongoProblemRepository {
	return &MongoProblemRepository{collection: collection}
}

func (r *MongoProblemRepository) Create(ctx context.Context, problem *models.Problem) error {
	if problem.ID.IsZero() {
		problem.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, problem)
	return err
}

func (r *MongoProblemRepository) GetByID(ctx context.Context, id primitive.ObjectID) (models.Problem, error) {
	var problem models.Problem
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&problem)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Problem{}, ErrNotFound
	}
	return problem, err
}

func (r *MongoProblemRepository) List(ctx context.Context, filter ProblemFilter) ([]models.Problem, error) {
	query := bson.M{}

	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Search != "" {
		pattern := regexp.QuoteMeta(filter.Search)
		query["$or"] = []bson.M{
			{"title": bson.M{"$regex": pattern, "$options": "i"}},
			{"description": bson.M{"$regex": pattern, "$options": "i"}},
			{"location.address": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}
	if filter.Pincode != "" {
		query["location.address"] = bson.M{
			"$regex":   regexp.QuoteMeta(filter.Pincode),
			"$options": "i",
		}
	}

	return r.find(ctx, query)
}

func (r *MongoProblemRepository) ListByReporter(ctx context.Context, userID primitive.ObjectID) ([]models.Problem, error) {
	return r.find(ctx, bson.M{"reportedBy": userID})
}

func (r *MongoProblemRepository) find(ctx context.Context, query bson.M) ([]models.Problem, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	problems := []models.Problem{}
	if err := cursor.All(ctx, &problems); err != nil {
		return nil, err
	}
	return problems, nil
}

func (r *MongoProblemRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status models.ProblemStatus) (models.Problem, error) {
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}}
	return r.findOneAndUpdate(ctx, id, update)
}

func (r *MongoProblemRepository) IncrementUpvotes(ctx context.Context, id primitive.ObjectID) (models.Problem, error) {
	update := bson.M{
		"$inc": bson.M{"upvotes": 1},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	return r.findOneAndUpdate(ctx, id, update)
}

func (r *MongoProblemRepository) PushUpdate(ctx context.Context, id primitive.ObjectID, entry models.Update) (models.Problem, error) {
	update := bson.M{
		"$push": bson.M{"updates": entry},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	return r.findOneAndUpdate(ctx, id, update)
}

func (r *MongoProblemRepository) findOneAndUpdate(ctx context.Context, id primitive.ObjectID, update bson.M) (models.Problem, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var problem models.Problem
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&problem)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Problem{}, ErrNotFound
	}
	return problem, err
}
