package config

import (
	"context"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	db     *mongo.Database
	client *mongo.Client
	once   sync.Once
)

// ConnectDB initializes and returns the MongoDB database connection
func ConnectDB(mongoURI, databaseName string) *mongo.Database {
	once.Do(func() {
		if mongoURI == "" {
			log.Fatal("Please define the MONGODB_URI environment variable")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		c, err := mongo.NewClient(options.Client().ApplyURI(mongoURI))
		if err != nil {
			log.Fatalf("Failed to create MongoDB client: %v", err)
		}

		if err := c.Connect(ctx); err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}

		client = c
		db = client.Database(databaseName)
	})

	return db
}

// GetCollection returns a MongoDB collection by name. ConnectDB must have
// been called first.
func GetCollection(name string) *mongo.Collection {
	if db == nil {
		log.Fatal("GetCollection called before ConnectDB")
	}
	return db.Collection(name)
}
