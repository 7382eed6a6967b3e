package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/khelarena/khelarena_backend/config"
	"github.com/khelarena/khelarena_backend/models"
)

// UserRepository persists users keyed by canonical phone
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a user repository
func NewUserRepository(db *mongo.Client) *UserRepository {
	return &UserRepository{
		collection: config.GetCollection(db, "users"),
	}
}

// FindByPhone returns the user for phone, or ErrNotFound
func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"phone": phone}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a bare user record for a first-time phone
func (r *UserRepository) Create(ctx context.Context, phone string) (*models.User, error) {
	now := time.Now()
	user := &models.User{
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		return nil, err
	}
	var created models.User
	if err := r.collection.FindOne(ctx, bson.M{"_id": result.InsertedID}).Decode(&created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpsertOnOtpRequest records that phone requested an OTP with consent given
func (r *UserRepository) UpsertOnOtpRequest(ctx context.Context, phone string) error {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"termsAccepted":  true,
			"lastOtpRequest": now,
			"updatedAt":      now,
		},
		"$setOnInsert": bson.M{
			"phone":     phone,
			"createdAt": now,
		},
	}
	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"phone": phone}, update, opts)
	return err
}

// MarkVerified flags the user as phone-verified
func (r *UserRepository) MarkVerified(ctx context.Context, phone string, at time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"isVerified": true,
			"verifiedAt": at,
			"updatedAt":  at,
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"phone": phone}, update)
	return err
}

// MarkOptedIn flags the user as WhatsApp opted-in (webhook path)
func (r *UserRepository) MarkOptedIn(ctx context.Context, phone string) error {
	update := bson.M{
		"$set": bson.M{
			"isOptedIn": true,
			"updatedAt": time.Now(),
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"phone": phone}, update)
	return err
}

// UpdateProfile sets name and age, creating the user when absent
func (r *UserRepository) UpdateProfile(ctx context.Context, phone, name string, age int) (*models.User, error) {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"name":      name,
			"age":       age,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"phone":     phone,
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"phone": phone}, update, opts).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AcceptTerms marks the terms checkbox for an existing user
func (r *UserRepository) AcceptTerms(ctx context.Context, phone string) (*models.User, error) {
	update := bson.M{
		"$set": bson.M{
			"termsAccepted": true,
			"updatedAt":     time.Now(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"phone": phone}, update, opts).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete removes the user for phone. Used when an under-age profile is
// submitted: such records are deleted, never stored.
func (r *UserRepository) Delete(ctx context.Context, phone string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"phone": phone})
	return err
}

// SetFCMToken stores the push token for phone
func (r *UserRepository) SetFCMToken(ctx context.Context, phone, token string) error {
	update := bson.M{
		"$set": bson.M{
			"fcmToken":  token,
			"updatedAt": time.Now(),
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"phone": phone}, update)
	return err
}
