package database

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/auth"
	"storefront/internal/models"
)

// UserStore is the MongoDB CredentialStore. Each mutation is a single-document
// update, so it is atomic without transactions.
type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection(usersCollection)}
}

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	res, err := s.coll.InsertOne(ctx, bson.M{
		"username": u.Username,
		"email":    u.Email,
		"password": u.PasswordHash,
	})
	if mongo.IsDuplicateKeyError(err) {
		return auth.ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = id
	}
	return nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (s *UserStore) SetOTP(ctx context.Context, email, code string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"otp": code}},
	)
	if err != nil {
		return fmt.Errorf("set otp: %w", err)
	}
	if res.MatchedCount == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

// ResetPassword matches on the code as well as the email, so the replacement
// only lands while that code is still live.
func (s *UserStore) ResetPassword(ctx context.Context, email, code, passwordHash string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"email": email, "otp": code},
		bson.M{
			"$set":   bson.M{"password": passwordHash},
			"$unset": bson.M{"otp": ""},
		},
	)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	if res.MatchedCount == 0 {
		return auth.ErrInvalidOTP
	}
	return nil
}
