package repositories

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/khelarena/khelarena_backend/config"
	"github.com/khelarena/khelarena_backend/models"
)

// AdminRepository persists the operations accounts
type AdminRepository struct {
	collection *mongo.Collection
}

// NewAdminRepository creates an admin repository
func NewAdminRepository(db *mongo.Client) *AdminRepository {
	return &AdminRepository{
		collection: config.GetCollection(db, "admins"),
	}
}

// FindByEmail returns the admin for email, or ErrNotFound
func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&admin)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// SeedFromEnv creates the admin account named by ADMIN_EMAIL and
// ADMIN_PASSWORD when no account with that email exists yet. The password
// is stored as a bcrypt hash. Missing env vars skip the seed.
func (r *AdminRepository) SeedFromEnv(ctx context.Context) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	if _, err := r.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = r.collection.InsertOne(ctx, models.Admin{
		Email:     email,
		Password:  string(hash),
		CreatedAt: time.Now(),
	})
	if err != nil {
		return err
	}
	log.Printf("Seeded admin account %s", email)
	return nil
}
