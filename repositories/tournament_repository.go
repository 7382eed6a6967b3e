package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/khelarena/khelarena_backend/config"
	"github.com/khelarena/khelarena_backend/models"
)

// TournamentRepository persists tournaments. Roster mutations use a
// compare-and-swap style filter so duplicate and capacity invariants are
// enforced by the database, not by a read-then-write.
type TournamentRepository struct {
	collection *mongo.Collection
}

// NewTournamentRepository creates a tournament repository
func NewTournamentRepository(db *mongo.Client) *TournamentRepository {
	return &TournamentRepository{
		collection: config.GetCollection(db, "tournaments"),
	}
}

// Insert stores a new tournament and fills in its id
func (r *TournamentRepository) Insert(ctx context.Context, t *models.Tournament) error {
	result, err := r.collection.InsertOne(ctx, t)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		t.ID = oid
	}
	return nil
}

// FindByID returns the tournament for the hex id, or ErrNotFound
func (r *TournamentRepository) FindByID(ctx context.Context, id string) (*models.Tournament, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var t models.Tournament
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// AddPlayer appends phone to the roster only when it is not already there
// and the roster has a free slot. The filter carries both invariants so
// the append is atomic; an unmatched filter means another request changed
// the roster first, reported as ErrRosterConflict.
func (r *TournamentRepository) AddPlayer(ctx context.Context, id, phone string, maxPlayers int) (*models.Tournament, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	filter := bson.M{
		"_id":     oid,
		"players": bson.M{"$ne": phone},
		"$expr": bson.M{
			"$lt": bson.A{bson.M{"$size": "$players"}, maxPlayers},
		},
	}
	update := bson.M{
		"$push": bson.M{"players": phone},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var t models.Tournament
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrRosterConflict
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FindByPlayer returns all tournaments whose roster contains phone
func (r *TournamentRepository) FindByPlayer(ctx context.Context, phone string) ([]models.Tournament, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"players": phone})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tournaments []models.Tournament
	if err := cursor.All(ctx, &tournaments); err != nil {
		return nil, err
	}
	return tournaments, nil
}

// FindUpcoming returns tournaments starting after the given time,
// soonest first.
func (r *TournamentRepository) FindUpcoming(ctx context.Context, after time.Time) ([]models.Tournament, error) {
	opts := options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"startTime": bson.M{"$gt": after}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tournaments []models.Tournament
	if err := cursor.All(ctx, &tournaments); err != nil {
		return nil, err
	}
	return tournaments, nil
}
