package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/orgdeskhq/orgdesk/internal/config"
	"github.com/orgdeskhq/orgdesk/internal/domain"
	"github.com/orgdeskhq/orgdesk/internal/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

// Seeds the initial superadmin account. Safe to re-run: an existing account
// with the email is promoted instead of duplicated.
func main() {
	email := os.Getenv("SEED_ADMIN_EMAIL")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD are required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		log.Fatalf("Failed to connect to Mongo: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB.Database)
	userRepo := repository.NewMongoUserRepository(db)

	existing, err := userRepo.GetByEmail(ctx, email)
	if err == nil {
		if existing.HasRole(domain.RoleSuperAdmin) {
			log.Printf("Superadmin %s already exists, nothing to do", email)
			return
		}
		// Prepend so the superadmin binding is the one claims derivation uses
		existing.Roles = append([]string{domain.RoleSuperAdmin}, existing.Roles...)
		if err := userRepo.Update(ctx, existing); err != nil {
			log.Fatalf("Failed to promote %s: %v", email, err)
		}
		log.Printf("✓ Promoted existing user %s to superadmin", email)
		return
	}
	if !errors.Is(err, domain.ErrNotFound) {
		log.Fatalf("Failed to look up %s: %v", email, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user := &domain.User{
		Email:        email,
		Name:         "Platform Admin",
		PasswordHash: string(hash),
		Roles:        []string{domain.RoleSuperAdmin},
	}
	if err := userRepo.Create(ctx, user); err != nil {
		log.Fatalf("Failed to create superadmin: %v", err)
	}

	log.Printf("✓ Created superadmin %s (id %s)", email, user.ID)
}
