/* sessions.go
 * Contains the methods for interacting with the sessions collection
 * Authors: Gamers Bot contributors
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gamers-bot/api/shared"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNoSession is returned when a discord user has never linked a platform session
var ErrNoSession = errors.New("no session stored for user")

// GetCredentials fetches the stored platform credentials for a discord user
// Preconditions: Receives context and discord user id
// Postconditions: Returns the credentials, ErrNoSession if the user has none, or an error if the lookup fails
func (s *Store) GetCredentials(ctx context.Context, userID string) (shared.Credentials, error) {
	var doc SessionDoc
	err := s.Collections.Sessions.FindOne(ctx, bson.M{"userid": userID}, options.FindOne()).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return shared.Credentials{}, ErrNoSession
		}
		return shared.Credentials{}, fmt.Errorf("failed to fetch session from database: %w", err)
	}
	return doc.Credentials, nil
}

// StoreCredentials inserts or replaces the platform credentials for a discord user
// Preconditions: Receives context, discord user id and non empty credentials
// Postconditions: The sessions collection holds exactly one document for the user, or an error is returned
func (s *Store) StoreCredentials(ctx context.Context, userID string, creds shared.Credentials) error {
	if userID == "" {
		return fmt.Errorf("userID is required")
	}
	if creds.AccessToken == "" || creds.RefreshToken == "" {
		return fmt.Errorf("access and refresh token are required")
	}

	doc := SessionDoc{
		UserID:      userID,
		Credentials: creds,
		UpdatedAt:   time.Now().UTC(),
	}
	filter := bson.M{"userid": userID}
	update := bson.M{"$set": doc}

	_, err := s.Collections.Sessions.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("session upsert failed: %w", err)
	}
	return nil
}

// DeleteCredentials removes a discord user's session
// Postconditions: Returns nil if a session was removed, ErrNoSession if there was none, or an error if it occurs
func (s *Store) DeleteCredentials(ctx context.Context, userID string) error {
	res, err := s.Collections.Sessions.DeleteOne(ctx, bson.M{"userid": userID})
	if err != nil {
		return fmt.Errorf("session delete failed: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNoSession
	}
	return nil
}
