// server/internal/database/seeder.go
package database

import (
	"context"
	"log"
	"time"

	"construction-marketplace-api-server/internal/auth"
	"construction-marketplace-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SeedAdmin makes sure the platform has one admin account to run moderation.
func SeedAdmin(db *mongo.Database) error {
	userCollection := db.Collection("users")
	adminEmail := "admin@example.com"

	count, err := userCollection.CountDocuments(context.Background(), bson.M{"email": adminEmail})
	if err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin already exists. Seeding skipped.")
		return nil
	}

	log.Println("Admin not found. Seeding...")
	hashedPassword, err := auth.HashPassword("adminpassword")
	if err != nil {
		return err
	}

	admin := models.User{
		UserID:    "USR-ADMIN001",
		Email:     adminEmail,
		Name:      "Platform Admin",
		Password:  hashedPassword,
		Role:      models.RoleAdmin,
		Status:    "active",
		CreatedAt: time.Now(),
	}

	_, err = userCollection.InsertOne(context.Background(), admin)
	if err != nil {
		return err
	}

	log.Println("Admin seeded successfully.")
	return nil
}
