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

// MongoBankAccountRepository implements domain.BankAccountRepository
type MongoBankAccountRepository struct {
	collection *mongo.Collection
}

func NewMongoBankAccountRepository(db *mongo.Database) *MongoBankAccountRepository {
	coll := db.Collection("bank_accounts")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _ = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "organization_id", Value: 1}}},
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "account_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})

	return &MongoBankAccountRepository{
		collection: coll,
	}
}

func (r *MongoBankAccountRepository) Create(ctx context.Context, account *domain.BankAccount) error {
	account.CreatedAt = time.Now()
	account.UpdatedAt = time.Now()
	objID := primitive.NewObjectID()
	account.ID = objID.Hex()

	doc := bson.M{
		"_id":             objID,
		"organization_id": account.OrganizationID,
		"bank_name":       account.BankName,
		"account_number":  account.AccountNumber,
		"holder_name":     account.HolderName,
		"currency":        account.Currency,
		"created_at":      account.CreatedAt,
		"updated_at":      account.UpdatedAt,
	}

	if account.DocumentURL != "" {
		doc["document_url"] = account.DocumentURL
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("failed to create bank account: %w", err)
	}
	return nil
}

func (r *MongoBankAccountRepository) GetByID(ctx context.Context, id string) (*domain.BankAccount, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var raw bson.M
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get bank account: %w", err)
	}
	return mapBsonToBankAccount(raw), nil
}

func (r *MongoBankAccountRepository) GetByOrganizationID(ctx context.Context, organizationID string) ([]*domain.BankAccount, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"organization_id": organizationID})
	if err != nil {
		return nil, fmt.Errorf("failed to list bank accounts: %w", err)
	}
	defer cursor.Close(ctx)

	var accounts []*domain.BankAccount
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		accounts = append(accounts, mapBsonToBankAccount(raw))
	}
	return accounts, nil
}

func (r *MongoBankAccountRepository) CountByOrganizationID(ctx context.Context, organizationID string) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"organization_id": organizationID})
	if err != nil {
		return 0, fmt.Errorf("failed to count bank accounts: %w", err)
	}
	return count, nil
}

func (r *MongoBankAccountRepository) Update(ctx context.Context, account *domain.BankAccount) error {
	objID, err := primitive.ObjectIDFromHex(account.ID)
	if err != nil {
		return fmt.Errorf("invalid id: %w", err)
	}

	account.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"bank_name":      account.BankName,
			"account_number": account.AccountNumber,
			"holder_name":    account.HolderName,
			"currency":       account.Currency,
			"updated_at":     account.UpdatedAt,
		},
	}

	if account.DocumentURL != "" {
		update["$set"].(bson.M)["document_url"] = account.DocumentURL
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return fmt.Errorf("failed to update bank account: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoBankAccountRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid id: %w", err)
	}
	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	return err
}

func mapBsonToBankAccount(raw bson.M) *domain.BankAccount {
	account := &domain.BankAccount{}
	if oid, ok := raw["_id"].(primitive.ObjectID); ok {
		account.ID = oid.Hex()
	}
	if orgID, ok := raw["organization_id"].(string); ok {
		account.OrganizationID = orgID
	}
	if bank, ok := raw["bank_name"].(string); ok {
		account.BankName = bank
	}
	if number, ok := raw["account_number"].(string); ok {
		account.AccountNumber = number
	}
	if holder, ok := raw["holder_name"].(string); ok {
		account.HolderName = holder
	}
	if currency, ok := raw["currency"].(string); ok {
		account.Currency = currency
	}
	if url, ok := raw["document_url"].(string); ok {
		account.DocumentURL = url
	}
	if created, ok := raw["created_at"].(primitive.DateTime); ok {
		account.CreatedAt = created.Time()
	}
	if updated, ok := raw["updated_at"].(primitive.DateTime); ok {
		account.UpdatedAt = updated.Time()
	}
	return account
}
