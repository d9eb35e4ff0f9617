package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a document in the "users" collection. The password hash, the
// session token list and the avatar blob must never appear in a JSON
// response, so all three are excluded from serialization.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	Name     string   `bson:"name" json:"name"`
	Email    string   `bson:"email" json:"email"`
	Password string   `bson:"password" json:"-"`
	Age      int      `bson:"age" json:"age"`
	Avatar   []byte   `bson:"avatar,omitempty" json:"-"`
	Tokens   []string `bson:"tokens" json:"-"`
}
