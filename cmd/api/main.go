package main

import (
	"database/sql"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/luxeshop/luxe-shop-backend/internal/catalog"
	"github.com/luxeshop/luxe-shop-backend/internal/config"
	"github.com/luxeshop/luxe-shop-backend/internal/storage"
	"github.com/luxeshop/luxe-shop-backend/internal/store"
)

// main wires config, storage, catalog and the store, then serves HTTP.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var db *sql.DB
	if cfg.StorageDriver == "postgres" || cfg.CatalogDriver == "postgres" {
		db = mustOpenDB(cfg.DatabaseURL)
		defer db.Close()
	}

	snapshots := mustOpenStorage(cfg, db)
	provider := mustOpenCatalog(cfg, db)

	st := store.New()
	if snap, err := snapshots.Load(cfg.SnapshotKey); err == nil {
		// totals are recomputed from the restored lines, not trusted
		st.Restore(snap)
	} else if err != storage.ErrNotFound {
		log.Printf("warning: snapshot load failed, starting empty: %v", err)
	}

	app := fiber.New()
	setupCORS(app)

	storeHandler := store.NewHandler(st, snapshots, cfg.SnapshotKey, []byte(cfg.JWTSecret), provider)
	catalogHandler := catalog.NewHandler(provider)

	// public routes first, then the JWT gate, then protected routes
	catalogHandler.RegisterPublicRoutes(app)
	storeHandler.RegisterPublicRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
	}))

	storeHandler.RegisterProtectedRoutes(app)

	log.Printf("starting server on %s", cfg.Addr)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func mustOpenStorage(cfg config.Config, db *sql.DB) storage.Repository {
	switch cfg.StorageDriver {
	case "postgres":
		repo := storage.NewPostgresRepository(db)
		if err := repo.Migrate(); err != nil {
			log.Fatalf("storage migrate: %v", err)
		}
		return repo
	case "memory":
		return storage.NewInMemoryRepository()
	default:
		repo, err := storage.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("open sqlite storage: %v", err)
		}
		return repo
	}
}

func mustOpenCatalog(cfg config.Config, db *sql.DB) catalog.Provider {
	if cfg.CatalogDriver == "postgres" {
		repo := catalog.NewPostgresRepository(db)
		if err := repo.Migrate(); err != nil {
			log.Fatalf("catalog migrate: %v", err)
		}
		return repo
	}
	return catalog.NewClient(cfg.CatalogBaseURL)
}

func mustOpenDB(dbURL string) *sql.DB {
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("ping database: %v", err)
	}
	return db
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}
