package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered account.
//
// OTP holds the pending password reset code; it is empty when no reset is in flight.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password"`
	OTP          string             `bson:"otp,omitempty"`
}
