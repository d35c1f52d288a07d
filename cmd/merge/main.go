package main

import (
	"context"
	"flag"
	"log"

	"github.com/mindplate/backend/config"
	"github.com/mindplate/backend/internal/database"
	"github.com/mindplate/backend/internal/service"
)

func main() {
	name := flag.String("name", "", "Merge all source records matching this food name")
	all := flag.Bool("all", false, "Merge every duplicate cluster in the database")
	flag.Parse()

	if *name == "" && !*all {
		log.Fatal("Either -name or -all is required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	fusion := service.NewFusionService(db, service.DefaultMergePolicy())
	ctx := context.Background()

	if *name != "" {
		merged, err := fusion.MergeByName(ctx, *name)
		if err != nil {
			log.Fatalf("Merge failed: %v", err)
		}
		log.Printf("Merged %q into canonical record %s", *name, merged.FoodID)
		return
	}

	stats, err := fusion.MergeAll(ctx)
	if err != nil {
		log.Fatalf("Merge failed: %v", err)
	}
	log.Printf("Merge complete: %d groups processed, %d records merged, %d failed",
		stats.GroupsProcessed, stats.RecordsMerged, stats.Failed)
}
