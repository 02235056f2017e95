package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"storefront/internal/auth"
	"storefront/internal/models"
)

func TestUserStore_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	defer mt.Close()

	mt.Run("assigns id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		s := &UserStore{coll: mt.Coll}

		u := &models.User{Username: "alice1", Email: "alice@example.com", PasswordHash: "h"}
		require.NoError(t, s.Create(context.Background(), u))
		assert.False(t, u.ID.IsZero())
	})

	mt.Run("duplicate", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "E11000 duplicate key error",
		}))
		s := &UserStore{coll: mt.Coll}

		err := s.Create(context.Background(), &models.User{Username: "alice1", Email: "alice@example.com"})
		assert.ErrorIs(t, err, auth.ErrUserExists)
	})
}

func TestUserStore_FindByEmail(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	defer mt.Close()

	mt.Run("found", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "storefront.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "username", Value: "alice1"},
			{Key: "email", Value: "alice@example.com"},
			{Key: "password", Value: "hash"},
			{Key: "otp", Value: "123456"},
		}))
		s := &UserStore{coll: mt.Coll}

		u, err := s.FindByEmail(context.Background(), "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, id, u.ID)
		assert.Equal(t, "alice1", u.Username)
		assert.Equal(t, "hash", u.PasswordHash)
		assert.Equal(t, "123456", u.OTP)
	})

	mt.Run("missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "storefront.users", mtest.FirstBatch))
		s := &UserStore{coll: mt.Coll}

		_, err := s.FindByEmail(context.Background(), "nobody@example.com")
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})
}

func TestUserStore_SetOTP(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	defer mt.Close()

	mt.Run("matched", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1},
		))
		s := &UserStore{coll: mt.Coll}
		assert.NoError(t, s.SetOTP(context.Background(), "alice@example.com", "654321"))
	})

	mt.Run("unknown email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0},
		))
		s := &UserStore{coll: mt.Coll}
		assert.ErrorIs(t, s.SetOTP(context.Background(), "nobody@example.com", "654321"), auth.ErrUserNotFound)
	})
}

func TestUserStore_ResetPassword(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	defer mt.Close()

	mt.Run("code matches", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1},
		))
		s := &UserStore{coll: mt.Coll}
		assert.NoError(t, s.ResetPassword(context.Background(), "alice@example.com", "654321", "newhash"))
	})

	mt.Run("code stale", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0},
		))
		s := &UserStore{coll: mt.Coll}
		err := s.ResetPassword(context.Background(), "alice@example.com", "000000", "newhash")
		assert.ErrorIs(t, err, auth.ErrInvalidOTP)
	})
}
