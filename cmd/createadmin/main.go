// Command createadmin seeds or resets the panel's admin account. It is
// safe to re-run; an existing account just gets a fresh password hash.
//
//	go run ./cmd/createadmin -email admin@example.com -password secret
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"priceboard/internal/config"
	"priceboard/internal/database"
	"priceboard/internal/domain"
	"priceboard/internal/logger"
	"priceboard/internal/repository"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	email := flag.String("email", "", "admin email address")
	password := flag.String("password", "", "admin password")
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: createadmin -email <email> -password <password>")
		os.Exit(2)
	}

	// Best effort; config falls back to real environment variables.
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "no .env file loaded: %v\n", err)
	}

	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	dbService := database.New(cfg.Database)
	defer dbService.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password", zap.Error(err))
	}

	admin := &domain.Admin{
		ID:           uuid.New(),
		Email:        *email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	adminRepo := repository.NewAdminRepository(dbService.DB())
	if err := adminRepo.Upsert(ctx, admin); err != nil {
		log.Fatal("Failed to upsert admin account", zap.Error(err))
	}

	log.Info("Admin account ready", zap.String("email", admin.Email))
}
