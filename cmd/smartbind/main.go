// cmd/smartbind/main.go
package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"

	"smartbin/internal/bins"
	"smartbin/internal/clients"
	"smartbin/internal/scan"
	"smartbin/internal/telemetry"
)

func main() {
	ctx := context.Background()

	shutdown, err := telemetry.Init(ctx, "smartbin", os.Getenv("OTLP_ENDPOINT"))
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer shutdown(ctx)

	var store bins.Store
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		db, err := sql.Open("postgres", dbURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		pg := bins.NewPostgresStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to prepare database schema: %v", err)
		}
		store = pg
	} else {
		log.Println("DATABASE_URL not set, running with in-memory storage")
		store = bins.NewMemoryStore()
	}

	repo := bins.NewRepository(store)
	if err := repo.Load(ctx); err != nil {
		log.Fatalf("Failed to load bins: %v", err)
	}

	visionClient := clients.NewVisionClient(
		getEnv("VISION_API_URL", "http://localhost:11434/v1/chat/completions"),
		os.Getenv("VISION_API_KEY"),
		getEnv("VISION_MODEL", "qwen2.5vl:7b"),
	)
	images := clients.NewImageStore(getEnv("IMAGES_DIR", "./images"))

	binSvc := bins.NewService(repo)
	binHandler := bins.NewHandler(binSvc)
	scanSvc := scan.NewService(repo, visionClient, images)
	scanHandler := scan.NewHandler(scanSvc)

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/bins", binHandler.HandleListBins)
	router.Route("/bins/{binID}", func(r chi.Router) {
		r.Get("/", binHandler.HandleGetBin)
		r.Get("/status", binHandler.HandleStatus)
		r.Get("/history", binHandler.HandleHistory)
		r.Get("/count", binHandler.HandleItemCount)
		r.Post("/scans", scanHandler.HandleStartScan)
		r.Post("/items", binHandler.HandleAddItem)
		r.Patch("/items/{name}", binHandler.HandleUpdateItem)
		r.Delete("/items/{name}", binHandler.HandleRemoveItem)
		// No name removes the most recently listed item.
		r.Delete("/items", binHandler.HandleRemoveItem)
		r.Delete("/inventory", binHandler.HandleClearInventory)
		r.Post("/images", binHandler.HandleAddImage)
		r.Delete("/images/{filename}", binHandler.HandleRemoveImage)
		r.Delete("/images", binHandler.HandleClearImages)
	})
	router.Get("/search", binHandler.HandleSearch)

	port := getEnv("PORT", "8080")
	log.Printf("Smartbin service listening on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
