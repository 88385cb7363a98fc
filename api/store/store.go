/* store.go
 * Contains the store struct and NewStore function. The store keeps the platform credentials of every discord user
 * that linked their account, so bot commands can act on their behalf. Methods for the sessions collection live in
 * sessions.go, the query cache backends live in cache.go and redis.go
 * Authors: Gamers Bot contributors
 */

package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	Client      *mongo.Client
	Database    *mongo.Database
	Collections struct {
		Sessions *mongo.Collection
	}
}

// Function for initialising Store. Opens the db connection and sets the collection values
// Preconditions: Receives strings containing dbName and mongoURI
// Postconditions: Returns pointer to the Store object, or error if it occurs
func NewStore(dbName string, mongoURI string) (*Store, error) {
	if dbName == "" {
		return nil, fmt.Errorf("dbName cannot be empty")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, err
	}
	db := client.Database(dbName)

	s := &Store{
		Client:   client,
		Database: db,
	}
	s.Collections.Sessions = db.Collection("sessions")
	return s, nil
}

// Close disconnects the mongo client
func (s *Store) Close(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	return s.Client.Disconnect(ctx)
}
