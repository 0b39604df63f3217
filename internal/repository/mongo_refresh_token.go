package repository

import (
	"context"
	"time"

	"github.com/orgdeskhq/orgdesk/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRefreshTokenRepository implements domain.RefreshTokenRepository
type MongoRefreshTokenRepository struct {
	collection *mongo.Collection
}

func NewMongoRefreshTokenRepository(db *mongo.Database) *MongoRefreshTokenRepository {
	collection := db.Collection("refresh_tokens")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "token_hash", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
	})
	// TTL index removes rows at their expires_at time
	collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})

	return &MongoRefreshTokenRepository{
		collection: collection,
	}
}

func (r *MongoRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	token.CreatedAt = time.Now()
	objID := primitive.NewObjectID()
	token.ID = objID.Hex()

	doc := bson.M{
		"_id":        objID,
		"user_id":    token.UserID,
		"token_hash": token.TokenHash,
		"expires_at": token.ExpiresAt,
		"created_at": token.CreatedAt,
		"user_agent": token.UserAgent,
		"ip_address": token.IPAddress,
		"revoked":    token.Revoked,
	}

	_, err := r.collection.InsertOne(ctx, doc)
	return err
}

func (r *MongoRefreshTokenRepository) FindByHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	var raw bson.M
	err := r.collection.FindOne(ctx, bson.M{
		"token_hash": hash,
		"revoked":    false,
	}).Decode(&raw)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return mapBsonToRefreshToken(raw), nil
}

func (r *MongoRefreshTokenRepository) RevokeByHash(ctx context.Context, hash string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"token_hash": hash},
		bson.M{"$set": bson.M{"revoked": true}},
	)
	return err
}

func (r *MongoRefreshTokenRepository) RevokeAllByUserID(ctx context.Context, userID string) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"user_id": userID, "revoked": false},
		bson.M{"$set": bson.M{"revoked": true}},
	)
	return err
}

// DeleteExpired removes expired tokens (manual cleanup if TTL index not working)
func (r *MongoRefreshTokenRepository) DeleteExpired(ctx context.Context) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{
		"expires_at": bson.M{"$lt": time.Now()},
	})
	return err
}

func mapBsonToRefreshToken(raw bson.M) *domain.RefreshToken {
	token := &domain.RefreshToken{}
	if oid, ok := raw["_id"].(primitive.ObjectID); ok {
		token.ID = oid.Hex()
	}
	if uid, ok := raw["user_id"].(string); ok {
		token.UserID = uid
	}
	if hash, ok := raw["token_hash"].(string); ok {
		token.TokenHash = hash
	}
	if expires, ok := raw["expires_at"].(primitive.DateTime); ok {
		token.ExpiresAt = expires.Time()
	}
	if created, ok := raw["created_at"].(primitive.DateTime); ok {
		token.CreatedAt = created.Time()
	}
	if agent, ok := raw["user_agent"].(string); ok {
		token.UserAgent = agent
	}
	if ip, ok := raw["ip_address"].(string); ok {
		token.IPAddress = ip
	}
	if revoked, ok := raw["revoked"].(bool); ok {
		token.Revoked = revoked
	}
	return token
}
