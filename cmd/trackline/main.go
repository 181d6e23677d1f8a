package main

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/trackline-dev/trackline/db"
	"github.com/trackline-dev/trackline/internal/auth"
	"github.com/trackline-dev/trackline/internal/handlers"
	"github.com/trackline-dev/trackline/internal/router"
	"github.com/trackline-dev/trackline/internal/services"
	"github.com/trackline-dev/trackline/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	if err := auth.InitJWTSecret(); err != nil {
		log.Fatalf("Failed to initialize JWT secret: %v", err)
	}

	dsn := os.Getenv("DATABASE_URL")

	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if err := db.ConnectDatabase(dsn); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	uploadsDir := os.Getenv("UPLOADS_DIR")

	if uploadsDir == "" {
		uploadsDir = "uploads"
	}

	uploads, err := storage.NewStore(uploadsDir)

	if err != nil {
		log.Fatalf("Failed to initialize uploads directory: %v", err)
	}

	mailer := services.NewMailer(services.MailerConfig{
		APIKey:      os.Getenv("SENDGRID_API_KEY"),
		FromEmail:   os.Getenv("SENDGRID_EMAIL"),
		FromName:    os.Getenv("SENDGRID_FROM_NAME"),
		FrontendURL: os.Getenv("FRONTEND_URL"),
	})

	notifier := services.NewNotifier(db.DB)
	notifier.Start()
	defer notifier.Stop()

	if os.Getenv("REMINDERS_ENABLED") == "true" {
		reminder := services.NewReminder(db.DB, mailer, time.Hour, 24*time.Hour)
		reminder.Start()
		defer reminder.Stop()
	}

	handlers.Init(notifier, mailer, uploads)

	r := router.NewRouter()

	var port string

	if port = os.Getenv("PORT"); port == "" {
		port = "3000"
		log.Println("PORT not set, defaulting to 3000")
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
