package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/orgdeskhq/orgdesk/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoOrganizationRepository implements domain.OrganizationRepository
type MongoOrganizationRepository struct {
	collection *mongo.Collection
}

func NewMongoOrganizationRepository(db *mongo.Database) *MongoOrganizationRepository {
	coll := db.Collection("organizations")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// One organization per admin user
	_, _ = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return &MongoOrganizationRepository{
		collection: coll,
	}
}

func (r *MongoOrganizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	org.CreatedAt = time.Now()
	org.UpdatedAt = time.Now()
	objID := primitive.NewObjectID()
	org.ID = objID.Hex()

	if org.Features == nil {
		org.Features = []string{}
	}

	doc := bson.M{
		"_id":        objID,
		"name":       org.Name,
		"user_id":    org.UserID,
		"features":   org.Features,
		"created_at": org.CreatedAt,
		"updated_at": org.UpdatedAt,
	}

	_, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}

func (r *MongoOrganizationRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var raw bson.M
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return mapBsonToOrganization(raw), nil
}

func (r *MongoOrganizationRepository) GetByAdminUserID(ctx context.Context, userID string) (*domain.Organization, error) {
	var raw bson.M
	if err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get organization by admin: %w", err)
	}
	return mapBsonToOrganization(raw), nil
}

func (r *MongoOrganizationRepository) Update(ctx context.Context, org *domain.Organization) error {
	objID, err := primitive.ObjectIDFromHex(org.ID)
	if err != nil {
		return fmt.Errorf("invalid id: %w", err)
	}

	org.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"name":       org.Name,
			"user_id":    org.UserID,
			"features":   org.Features,
			"updated_at": org.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoOrganizationRepository) SetFeatures(ctx context.Context, id string, features []string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid id: %w", err)
	}

	if features == nil {
		features = []string{}
	}

	// $addToSet semantics are not wanted here: grants are replaced as a set
	update := bson.M{
		"$set": bson.M{
			"features":   features,
			"updated_at": time.Now(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return fmt.Errorf("failed to set features: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoOrganizationRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid id: %w", err)
	}
	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	return err
}

func (r *MongoOrganizationRepository) GetAll(ctx context.Context) ([]*domain.Organization, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer cursor.Close(ctx)

	var orgs []*domain.Organization
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		orgs = append(orgs, mapBsonToOrganization(raw))
	}
	return orgs, nil
}

func mapBsonToOrganization(raw bson.M) *domain.Organization {
	org := &domain.Organization{Features: []string{}}
	if oid, ok := raw["_id"].(primitive.ObjectID); ok {
		org.ID = oid.Hex()
	}
	if name, ok := raw["name"].(string); ok {
		org.Name = name
	}
	if uid, ok := raw["user_id"].(string); ok {
		org.UserID = uid
	}
	if featuresRaw, ok := raw["features"].(primitive.A); ok {
		for _, f := range featuresRaw {
			if featureStr, ok := f.(string); ok {
				org.Features = append(org.Features, featureStr)
			}
		}
	}
	if created, ok := raw["created_at"].(primitive.DateTime); ok {
		org.CreatedAt = created.Time()
	}
	if updated, ok := raw["updated_at"].(primitive.DateTime); ok {
		org.UpdatedAt = updated.Time()
	}
	return org
}
