package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/streamgate/backend/internal/models"
)

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func (d userDoc) toModel() models.User {
	return models.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}
}

// MongoUserRepository provides MongoDB-backed persistence for users.
type MongoUserRepository struct {
	users *mongo.Collection
}

// NewMongoUserRepository constructs a user repository over the provided collection.
func NewMongoUserRepository(users *mongo.Collection) *MongoUserRepository {
	return &MongoUserRepository{users: users}
}

// Create inserts a new user record and returns the store-generated id. The
// unique index on email turns concurrent duplicate signups into ErrConflict.
func (r *MongoUserRepository) Create(ctx context.Context, user models.User) (string, error) {
	doc := userDoc{
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt.UTC().Truncate(time.Millisecond),
	}

	res, err := r.users.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrConflict
		}
		return "", fmt.Errorf("insert user: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("insert user: unexpected inserted id type %T", res.InsertedID)
	}

	return oid.Hex(), nil
}

// FindByEmail fetches a user by email. Callers are expected to lowercase the
// email before lookup; stored emails are always lowercased.
func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var doc userDoc
	if err := r.users.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user by email: %w", err)
	}
	return doc.toModel(), nil
}

// FindByID fetches a user by its store-generated id.
func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.User{}, ErrNotFound
	}

	var doc userDoc
	if err := r.users.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user by id: %w", err)
	}
	return doc.toModel(), nil
}

type videoDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Title        string             `bson:"title"`
	Description  string             `bson:"description"`
	ThumbnailURL string             `bson:"thumbnail_url"`
	SourceID     string             `bson:"source_id"`
	IsActive     bool               `bson:"is_active"`
}

func (d videoDoc) toModel() models.Video {
	return models.Video{
		ID:           d.ID.Hex(),
		Title:        d.Title,
		Description:  d.Description,
		ThumbnailURL: d.ThumbnailURL,
		SourceID:     d.SourceID,
		IsActive:     d.IsActive,
	}
}

// MongoVideoRepository provides MongoDB-backed persistence for the video catalog.
type MongoVideoRepository struct {
	videos *mongo.Collection
}

// NewMongoVideoRepository constructs a video repository over the provided collection.
func NewMongoVideoRepository(videos *mongo.Collection) *MongoVideoRepository {
	return &MongoVideoRepository{videos: videos}
}

// FindByID fetches a video by its store-generated id.
func (r *MongoVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Video{}, ErrNotFound
	}

	var doc videoDoc
	if err := r.videos.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("select video by id: %w", err)
	}
	return doc.toModel(), nil
}

// ListActive returns a page of active videos along with the total active count.
func (r *MongoVideoRepository) ListActive(ctx context.Context, offset, limit int) ([]models.Video, int64, error) {
	filter := bson.D{{Key: "is_active", Value: true}}

	total, err := r.videos.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count active videos: %w", err)
	}

	opts := options.Find().
		SetSkip(int64(offset)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.videos.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list active videos: %w", err)
	}
	defer cursor.Close(ctx)

	var videos []models.Video
	for cursor.Next(ctx) {
		var doc videoDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode video: %w", err)
		}
		videos = append(videos, doc.toModel())
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate videos: %w", err)
	}

	return videos, total, nil
}

// ReplaceAll clears the collection and inserts the provided videos. Used by
// the seed command only.
func (r *MongoVideoRepository) ReplaceAll(ctx context.Context, videos []models.Video) error {
	if _, err := r.videos.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("clear videos: %w", err)
	}
	if len(videos) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(videos))
	for _, v := range videos {
		docs = append(docs, videoDoc{
			Title:        v.Title,
			Description:  v.Description,
			ThumbnailURL: v.ThumbnailURL,
			SourceID:     v.SourceID,
			IsActive:     v.IsActive,
		})
	}

	if _, err := r.videos.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert videos: %w", err)
	}
	return nil
}
