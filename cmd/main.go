package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/premierauto/dealership-server/cmd/api"
	"github.com/premierauto/dealership-server/cmd/models"
	"github.com/premierauto/dealership-server/db"
	"github.com/premierauto/dealership-server/service/mailer"
	"github.com/premierauto/dealership-server/service/testdrive"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	// Check for command-line arguments
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			runMigrations()
			return
		case "clear-db":
			runDatabaseClear()
			return
		default:
			log.Fatalf("Unknown command: %s", os.Args[1])
		}
	}

	// Start the server
	startServer()
}

func runMigrations() {
	DB, err := db.NewPSQLStorage()
	if err != nil {
		log.Fatalf("Database initialization error: %v", err)
	}
	defer func() {
		sqlDB, _ := DB.DB()
		sqlDB.Close()
		log.Println("Database connection closed")
	}()
	log.Println("Connected to the database for migrations")

	// Perform migrations
	if err := performMigrations(DB); err != nil {
		log.Fatalf("Migration error: %v", err)
	}
	log.Println("Migrations completed successfully")
}

func performMigrations(DB *gorm.DB) error {

	migrations := map[interface{}]string{
		&models.User{}:              "User",
		&models.Vehicle{}:           "Vehicle",
		&models.VehiclePhoto{}:      "VehiclePhoto",
		&models.Customer{}:          "Customer",
		&models.TestDrive{}:         "TestDrive",
		&models.BlockedTimeSlot{}:   "BlockedTimeSlot",
		&models.VehicleSubmission{}: "VehicleSubmission",
		&models.Transaction{}:       "Transaction",
		&models.MonthlyMetric{}:     "MonthlyMetric",
		&models.ChatSession{}:       "ChatSession",
		&models.ChatMessage{}:       "ChatMessage",
	}

	log.Println("Starting database migrations...")
	for model, name := range migrations {
		log.Printf("Migrating %s table...", name)
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("error migrating %s table: %w", name, err)
		}
		log.Printf("%s migration successful", name)
	}

	// One active booking per slot. Cancelled and soft-deleted rows don't
	// hold the slot, so the index only covers live bookings.
	if err := DB.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_test_drives_active_slot
		ON test_drives (date, time_slot)
		WHERE status != 'cancelled' AND deleted_at IS NULL`).Error; err != nil {
		return fmt.Errorf("error creating slot uniqueness index: %w", err)
	}
	log.Println("Slot uniqueness index created/verified")

	directories := []string{
		"uploads/vehicles",
	}

	for _, dir := range directories {
		if err := createDirectoryIfNotExist(dir); err != nil {
			log.Fatalf("Error creating directory %s: %v", dir, err)
		}
		log.Printf("Directory %s created/verified", dir)
	}

	if err := seedAdminUser(DB); err != nil {
		return err
	}

	log.Println("All migrations and directory setup completed successfully")
	return nil
}

// seedAdminUser creates the first back-office account from ADMIN_EMAIL and
// ADMIN_PASSWORD when the users table is empty.
func seedAdminUser(DB *gorm.DB) error {
	var count int64
	if err := DB.Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("error counting users: %w", err)
	}
	if count > 0 {
		return nil
	}

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("error hashing admin password: %w", err)
	}

	admin := models.User{
		FullName:     "Administrator",
		Email:        email,
		PasswordHash: string(hash),
		Role:         "admin",
	}
	if err := DB.Create(&admin).Error; err != nil {
		return fmt.Errorf("error seeding admin user: %w", err)
	}
	log.Printf("Seeded admin user %s", email)
	return nil
}

func createDirectoryIfNotExist(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("could not create directory %s: %w", path, err)
		}
	}
	return nil
}

func startServer() {
	// Initialize database connection
	DB, err := db.NewPSQLStorage()
	if err != nil {
		log.Fatalf("Database initialization error: %v", err)
	}
	defer func() {
		sqlDB, _ := DB.DB()
		sqlDB.Close()
		log.Println("Database connection closed")
	}()
	log.Println("Connected to the database")

	// Graceful shutdown setup
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// One mailer shared by the HTTP handlers and the reminder sweep.
	m := mailer.New()

	// Daily reminder sweep runs alongside the HTTP server.
	reminders := testdrive.NewReminderService(DB, m)
	go reminders.Run(ctx)

	// Start the API server
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	server := api.NewApiServer(":"+port, DB, m)

	go func() {
		if err := server.Run(reminders); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()
	log.Printf("Server running on port %s", port)

	<-quit
	log.Println("Shutting down server...")
}

func clearDatabase(DB *gorm.DB, tables []interface{}) error {
	if len(tables) == 0 {
		// Default: Drop all tables
		tables = []interface{}{
			&models.ChatMessage{},
			&models.ChatSession{},
			&models.MonthlyMetric{},
			&models.Transaction{},
			&models.VehicleSubmission{},
			&models.BlockedTimeSlot{},
			&models.TestDrive{},
			&models.VehiclePhoto{},
			&models.Vehicle{},
			&models.Customer{},
			&models.User{},
		}
	}

	log.Println("Dropping tables...")

	for _, table := range tables {
		if err := DB.Migrator().DropTable(table); err != nil {
			log.Printf("Warning dropping table %T: %v", table, err)
		} else {
			log.Printf("Table %T dropped", table)
		}
	}

	return nil
}

func runDatabaseClear() {
	DB, err := db.NewPSQLStorage()
	if err != nil {
		log.Fatalf("Database initialization error: %v", err)
	}
	defer func() {
		sqlDB, _ := DB.DB()
		sqlDB.Close()
		log.Println("Database connection closed")
	}()

	log.Println("Preparing to clear database...")

	// Optional: Add a confirmation prompt
	var confirmation string
	fmt.Print("Are you sure you want to clear the database? (yes/no): ")
	fmt.Scanln(&confirmation)

	if confirmation != "yes" {
		log.Println("Database clearing cancelled.")
		return
	}

	// Ask for specific tables to clear
	var tableNames string
	fmt.Print("Enter table names to clear (comma separated) or leave blank to clear all: ")
	fmt.Scanln(&tableNames)

	var tables []interface{}
	if tableNames != "" {
		tableList := splitTableNames(tableNames)
		for _, table := range tableList {
			switch strings.TrimSpace(table) {
			case "User":
				tables = append(tables, &models.User{})
			case "Vehicle":
				tables = append(tables, &models.Vehicle{})
			case "VehiclePhoto":
				tables = append(tables, &models.VehiclePhoto{})
			case "Customer":
				tables = append(tables, &models.Customer{})
			case "TestDrive":
				tables = append(tables, &models.TestDrive{})
			case "BlockedTimeSlot":
				tables = append(tables, &models.BlockedTimeSlot{})
			case "VehicleSubmission":
				tables = append(tables, &models.VehicleSubmission{})
			case "Transaction":
				tables = append(tables, &models.Transaction{})
			case "MonthlyMetric":
				tables = append(tables, &models.MonthlyMetric{})
			case "ChatSession":
				tables = append(tables, &models.ChatSession{})
			case "ChatMessage":
				tables = append(tables, &models.ChatMessage{})
			default:
				log.Printf("Unknown table: %s", table)
			}
		}
	}

	// Clear the specified tables (or all tables if none specified)
	if err := clearDatabase(DB, tables); err != nil {
		log.Fatalf("Error clearing database: %v", err)
	}

	log.Println("Database cleared successfully")
}

func splitTableNames(tableNames string) []string {
	return strings.Split(tableNames, ",")
}
