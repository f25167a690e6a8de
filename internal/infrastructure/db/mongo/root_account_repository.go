package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/societyhub/backoffice-api/internal/core/domain"
)

const rootAccountCollection = "root_accounts"

// RootAccountRepository implements ports.RootAccountRepository using MongoDB.
type RootAccountRepository struct {
	coll *mongo.Collection
}

func NewRootAccountRepository(db *mongo.Database) *RootAccountRepository {
	return &RootAccountRepository{coll: db.Collection(rootAccountCollection)}
}

type mongoRootAccount struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	TokenVersion int64              `bson:"token_version"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func (r *RootAccountRepository) FindByEmail(ctx context.Context, email string) (*domain.RootAccount, error) {
	var ma mongoRootAccount
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&ma); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find root account: %w", err)
	}
	return ma.toDomain(), nil
}

func (r *RootAccountRepository) CurrentTokenVersion(ctx context.Context, subject string) (int64, error) {
	id, err := primitive.ObjectIDFromHex(subject)
	if err != nil {
		return 0, domain.ErrUserNotFound
	}

	var ma mongoRootAccount
	opts := options.FindOne().SetProjection(bson.M{"token_version": 1})
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&ma); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, domain.ErrUserNotFound
		}
		return 0, fmt.Errorf("find token version: %w", err)
	}
	return ma.TokenVersion, nil
}

// BumpTokenVersion atomically increments the revocation counter and returns
// the new value.
func (r *RootAccountRepository) BumpTokenVersion(ctx context.Context, id string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, domain.ErrUserNotFound
	}

	update := bson.M{
		"$inc": bson.M{"token_version": 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var ma mongoRootAccount
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&ma); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, domain.ErrUserNotFound
		}
		return 0, fmt.Errorf("bump token version: %w", err)
	}
	return ma.TokenVersion, nil
}

func (ma *mongoRootAccount) toDomain() *domain.RootAccount {
	return &domain.RootAccount{
		ID:           ma.ID.Hex(),
		Email:        ma.Email,
		PasswordHash: ma.PasswordHash,
		TokenVersion: ma.TokenVersion,
		UpdatedAt:    ma.UpdatedAt,
	}
}
