package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/voyago/voyago/internal/adapters/postgres"
	"github.com/voyago/voyago/internal/core/domain"
	"github.com/voyago/voyago/internal/pkg/config"
)

// The seeder loads a JSON place catalog into Postgres. Catalog files
// are arrays of places in the API's wire format.
func main() {
	file := flag.String("file", "seed/places.json", "path to the place catalog JSON file")
	flag.Parse()

	cfg, err := config.Load("voyago-seeder")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("read %s: %v", *file, err)
	}

	var places []domain.Place
	if err := json.Unmarshal(data, &places); err != nil {
		log.Fatalf("parse %s: %v", *file, err)
	}
	if len(places) == 0 {
		log.Fatalf("%s contains no places", *file)
	}
	for i := range places {
		if places[i].ID == "" || places[i].Name == "" {
			log.Fatalf("place %d: id and name are required", i)
		}
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewPlaceRepo(db)
	if err := repo.UpsertBatch(ctx, places); err != nil {
		log.Fatalf("upsert: %v", err)
	}

	log.Printf("seeded %d places from %s", len(places), *file)
}
