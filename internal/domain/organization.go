package domain

import (
	"context"
	"time"
)

// Feature strings an organization can be granted. The runtime catalog is
// configurable; these are the well-known names the API gates on.
const (
	FeatureOffices          = "offices"
	FeatureBankAccounts     = "bank_accounts"
	FeatureDocuments        = "documents"
	FeatureReports          = "reports"
	FeatureMemberManagement = "member_management"
)

// Organization is the tenant unit. Each organization is administered by
// exactly one user (UserID) and carries the set of feature strings it is
// entitled to. Feature membership is unique; insertion order carries no
// meaning.
type Organization struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Name      string    `bson:"name" json:"name"`
	UserID    string    `bson:"user_id" json:"user_id"` // admin owner
	Features  []string  `bson:"features" json:"features"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Office is a physical location belonging to an organization
type Office struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	OrganizationID string    `bson:"organization_id" json:"organization_id"`
	Name           string    `bson:"name" json:"name"`
	Address        string    `bson:"address" json:"address"`
	City           string    `bson:"city" json:"city"`
	Phone          string    `bson:"phone" json:"phone"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}

// BankAccount is a payment account registered for an organization
type BankAccount struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	OrganizationID string    `bson:"organization_id" json:"organization_id"`
	BankName       string    `bson:"bank_name" json:"bank_name"`
	AccountNumber  string    `bson:"account_number" json:"account_number"`
	HolderName     string    `bson:"holder_name" json:"holder_name"`
	Currency       string    `bson:"currency" json:"currency"`
	DocumentURL    string    `bson:"document_url,omitempty" json:"document_url,omitempty"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}

// OrganizationRepository defines operations for managing organizations
type OrganizationRepository interface {
	Create(ctx context.Context, org *Organization) error
	GetByID(ctx context.Context, id string) (*Organization, error)
	// GetByAdminUserID resolves the single organization a user administers.
	// This is the canonical binding relation used by claims resolution.
	GetByAdminUserID(ctx context.Context, userID string) (*Organization, error)
	Update(ctx context.Context, org *Organization) error
	SetFeatures(ctx context.Context, id string, features []string) error
	Delete(ctx context.Context, id string) error
	GetAll(ctx context.Context) ([]*Organization, error)
}

// OfficeRepository defines operations for managing offices
type OfficeRepository interface {
	Create(ctx context.Context, office *Office) error
	GetByID(ctx context.Context, id string) (*Office, error)
	GetByOrganizationID(ctx context.Context, organizationID string) ([]*Office, error)
	CountByOrganizationID(ctx context.Context, organizationID string) (int64, error)
	Update(ctx context.Context, office *Office) error
	Delete(ctx context.Context, id string) error
}

// BankAccountRepository defines operations for managing bank accounts
type BankAccountRepository interface {
	Create(ctx context.Context, account *BankAccount) error
	GetByID(ctx context.Context, id string) (*BankAccount, error)
	GetByOrganizationID(ctx context.Context, organizationID string) ([]*BankAccount, error)
	CountByOrganizationID(ctx context.Context, organizationID string) (int64, error)
	Update(ctx context.Context, account *BankAccount) error
	Delete(ctx context.Context, id string) error
}

// DocumentRepository stores verification documents in object storage
type DocumentRepository interface {
	Upload(ctx context.Context, file []byte, filename string, contentType string) (string, error)
}
