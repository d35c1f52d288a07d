package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm/clause"

	"github.com/mindplate/backend/config"
	"github.com/mindplate/backend/internal/database"
	"github.com/mindplate/backend/internal/model"
)

// seed_foods imports food documents (one JSON object per file) into the
// database. Files produced by the collection pipelines carry prefixed
// food ids (usda_, off_, lit_, ai_) which drive source attribution.
func main() {
	dir := flag.String("dir", "data/foods", "Directory containing food JSON documents")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("Failed to read data directory: %v", err)
	}

	imported, failed := 0, 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(*dir, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			log.Printf("Failed to read %s: %v", path, err)
			failed++
			continue
		}

		var food model.Food
		if err := json.Unmarshal(content, &food); err != nil {
			log.Printf("Failed to parse %s: %v", path, err)
			failed++
			continue
		}
		if food.FoodID == "" || food.Name == "" {
			log.Printf("Skipping %s: missing food_id or name", path)
			failed++
			continue
		}

		food.NormalizedName = model.NormalizeName(food.Name)
		food.DataQuality.Completeness = food.ComputeCompleteness()
		if food.Meta.Created.IsZero() {
			food.Meta.Created = time.Now().UTC()
		}
		food.Meta.LastUpdated = time.Now().UTC()

		err = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "food_id"}},
			UpdateAll: true,
		}).Create(&food).Error
		if err != nil {
			log.Printf("Failed to save %s: %v", food.FoodID, err)
			failed++
			continue
		}
		imported++
	}

	log.Printf("Seed complete: %d imported, %d failed", imported, failed)
}
