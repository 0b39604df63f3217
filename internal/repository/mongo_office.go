package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/orgdeskhq/orgdesk/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoOfficeRepository implements domain.OfficeRepository
type MongoOfficeRepository struct {
	collection *mongo.Collection
}

func NewMongoOfficeRepository(db *mongo.Database) *MongoOfficeRepository {
	coll := db.Collection("offices")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _ = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "organization_id", Value: 1}},
	})

	return &MongoOfficeRepository{
		collection: coll,
	}
}

func (r *MongoOfficeRepository) Create(ctx context.Context, office *domain.Office) error {
	office.CreatedAt = time.Now()
	office.UpdatedAt = time.Now()
	objID := primitive.NewObjectID()
	office.ID = objID.Hex()

	doc := bson.M{
		"_id":             objID,
		"organization_id": office.OrganizationID,
		"name":            office.Name,
		"address":         office.Address,
		"city":            office.City,
		"phone":           office.Phone,
		"created_at":      office.CreatedAt,
		"updated_at":      office.UpdatedAt,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create office: %w", err)
	}
	return nil
}

func (r *MongoOfficeRepository) GetByID(ctx context.Context, id string) (*domain.Office, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var raw bson.M
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get office: %w", err)
	}
	return mapBsonToOffice(raw), nil
}

func (r *MongoOfficeRepository) GetByOrganizationID(ctx context.Context, organizationID string) ([]*domain.Office, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"organization_id": organizationID})
	if err != nil {
		return nil, fmt.Errorf("failed to list offices: %w", err)
	}
	defer cursor.Close(ctx)

	var offices []*domain.Office
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		offices = append(offices, mapBsonToOffice(raw))
	}
	return offices, nil
}

func (r *MongoOfficeRepository) CountByOrganizationID(ctx context.Context, organizationID string) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"organization_id": organizationID})
	if err != nil {
		return 0, fmt.Errorf("failed to count offices: %w", err)
	}
	return count, nil
}

func (r *MongoOfficeRepository) Update(ctx context.Context, office *domain.Office) error {
	objID, err := primitive.ObjectIDFromHex(office.ID)
	if err != nil {
		return fmt.Errorf("invalid id: %w", err)
	}

	office.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"name":       office.Name,
			"address":    office.Address,
			"city":       office.City,
			"phone":      office.Phone,
			"updated_at": office.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return fmt.Errorf("failed to update office: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoOfficeRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid id: %w", err)
	}
	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	return err
}

func mapBsonToOffice(raw bson.M) *domain.Office {
	office := &domain.Office{}
	if oid, ok := raw["_id"].(primitive.ObjectID); ok {
		office.ID = oid.Hex()
	}
	if orgID, ok := raw["organization_id"].(string); ok {
		office.OrganizationID = orgID
	}
	if name, ok := raw["name"].(string); ok {
		office.Name = name
	}
	if address, ok := raw["address"].(string); ok {
		office.Address = address
	}
	if city, ok := raw["city"].(string); ok {
		office.City = city
	}
	if phone, ok := raw["phone"].(string); ok {
		office.Phone = phone
	}
	if created, ok := raw["created_at"].(primitive.DateTime); ok {
		office.CreatedAt = created.Time()
	}
	if updated, ok := raw["updated_at"].(primitive.DateTime); ok {
		office.UpdatedAt = updated.Time()
	}
	return office
}
