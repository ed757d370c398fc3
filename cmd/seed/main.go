package main

import (
	"context"
	"flag"
	"log"
	"os"

	"zote/internal/config"
	"zote/internal/repository/postgres"
	postgresFiletree "zote/internal/repository/postgres/filetree"
	"zote/internal/seed"
	serviceFiletree "zote/internal/service/filetree"

	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed nodes")
	clearData := flag.Bool("clear-data", false, "Clear the dev user's nodes (keep schema)")
	fixturePath := flag.String("fixture", "", "YAML fixture to load instead of the built-in sample workspace")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}
	if cfg.DatabaseURL == "" {
		log.Fatalf("DATABASE_URL is required")
	}

	logger := config.NewLogger(cfg, os.Stdout)

	// Load the fixture before touching the database so a bad file changes nothing
	var fixture *seed.Fixture
	if !*schemaOnly && !*clearData {
		var err error
		fixture, err = loadFixture(*fixturePath)
		if err != nil {
			log.Fatalf("Failed to load fixture: %v", err)
		}
	}

	log.Printf("Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("Dropping all tables...")
		if err := postgres.DropTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	}

	log.Println("Ensuring database schema is up to date...")
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}

	if *schemaOnly {
		log.Println("Schema setup complete (schema-only mode)")
		return
	}

	// Seeding always starts from an empty workspace for the dev user
	log.Printf("Clearing nodes for %s...", cfg.DevUserID)
	if err := postgres.ClearOwnerData(ctx, pool, tables, cfg.DevUserID); err != nil {
		log.Fatalf("Failed to clear data: %v", err)
	}

	if *clearData {
		log.Println("Data cleared successfully")
		return
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	nodeRepo := postgresFiletree.NewNodeRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)
	nodeService := serviceFiletree.NewNodeService(nodeRepo, txManager, logger)

	created, err := seed.NewSeeder(nodeService, logger).Seed(ctx, cfg.DevUserID, fixture)
	if err != nil {
		log.Fatalf("Failed to seed (%d nodes created): %v", len(created), err)
	}

	log.Printf("Seeding complete: %d nodes", len(created))
}

func loadFixture(path string) (*seed.Fixture, error) {
	if path == "" {
		return seed.DefaultFixture()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return seed.LoadFixture(f)
}
