/* models.go
 * This file contain the structs that relate to DB objects
 * Authors: Gamers Bot contributors
 */

package store

import (
	"time"

	"gamers-bot/api/shared"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionDoc is how a discord user's platform credentials are stored in the sessions collection
type SessionDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"userid"`
	Credentials shared.Credentials `bson:"credentials"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}
