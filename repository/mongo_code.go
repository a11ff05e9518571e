package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"streetsense-be/models"
)

// MongoCodeRepository implements CodeRepository on the verification_codes
// collection. The unique email index plus upserted replaces keep at most one
// live code per email even under concurrent issuance.
type MongoCodeRepository struct {
	collection *mongo.Collection
}

func NewMongoCodeRepository(collection *mongo.Collection) *MongoCodeRepository {
	return &MongoCodeRepository{collection: collection}
}

func (r *MongoCodeRepository) Replace(ctx context.Context, code models.VerificationCode) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"email": code.Email}, code, opts)
	return err
}

func (r *MongoCodeRepository) GetByEmail(ctx context.Context, email string) (models.VerificationCode, error) {
	var code models.VerificationCode
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&code)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.VerificationCode{}, ErrNotFound
	}
	return code, err
}

func (r *MongoCodeRepository) Consume(ctx context.Context, email, code string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"email": email, "code": code})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// EnsureCodeIndexes creates the unique email index and the TTL index that
// reaps codes past their validity window.
func EnsureCodeIndexes(collection *mongo.Collection) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(models.CodeTTL.Seconds())),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
