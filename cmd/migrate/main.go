package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ledgerchat/ledgerchat/internal/database"
)

func main() {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	name := getEnv("DB_NAME", "ledgerchat")
	user := getEnv("DB_USER", "ledgerchat")
	password := getEnv("DB_PASSWORD", "changeme")
	sslMode := getEnv("DB_SSLMODE", "disable")

	fmt.Println("=== Running Database Migrations ===")
	fmt.Printf("Connecting to database: %s@%s:%s/%s\n", user, host, port, name)

	migrationConfig := database.MigrationConfig{
		DatabaseURL: fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			user, password, host, port, name, sslMode),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
	}

	if err := database.RunMigrations(migrationConfig); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	fmt.Println("✓ Database migrations completed successfully!")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
