// seed-catalog loads the ingredient and tag reference data into postgres.
// Both catalogs are read-only over HTTP, so this tool is how they get
// populated and refreshed. Input is the JSON export shipped with the
// project data set:
//
//	ingredients.json  [{"name": "flour", "measurement_unit": "g"}, ...]
//	tags.json         [{"name": "breakfast", "colour": "#E26C2D", "slug": "breakfast"}, ...]
//
// Re-running is safe: rows are upserted by their unique name.
package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type ingredientRow struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type tagRow struct {
	Name   string `json:"name"`
	Colour string `json:"colour"`
	Slug   string `json:"slug"`
}

func main() {
	ingredientsFile := "data/ingredients.json"
	tagsFile := ""
	if len(os.Args) > 1 {
		ingredientsFile = os.Args[1]
	}
	if len(os.Args) > 2 {
		tagsFile = os.Args[2]
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("Connected to database")

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	ingredientCount, err := importIngredients(tx, ingredientsFile)
	if err != nil {
		log.Fatalf("Failed to import ingredients: %v", err)
	}
	log.Printf("Imported %d ingredients", ingredientCount)

	if tagsFile != "" {
		tagCount, err := importTags(tx, tagsFile)
		if err != nil {
			log.Fatalf("Failed to import tags: %v", err)
		}
		log.Printf("Imported %d tags", tagCount)
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("Failed to commit transaction: %v", err)
	}
	log.Println("Catalog import completed")
}

func importIngredients(tx *sql.Tx, filename string) (int, error) {
	var rows []ingredientRow
	if err := readJSONFile(filename, &rows); err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO ingredients (name, measurement_unit)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET measurement_unit = EXCLUDED.measurement_unit
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	count := 0
	for _, row := range rows {
		if row.Name == "" || row.MeasurementUnit == "" {
			log.Printf("Warning: skipping incomplete ingredient entry %+v", row)
			continue
		}
		if _, err := stmt.Exec(row.Name, row.MeasurementUnit); err != nil {
			return count, fmt.Errorf("failed to insert ingredient %q: %w", row.Name, err)
		}
		count++
	}
	return count, nil
}

func importTags(tx *sql.Tx, filename string) (int, error) {
	var rows []tagRow
	if err := readJSONFile(filename, &rows); err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO tags (name, colour, slug)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET
			colour = EXCLUDED.colour,
			slug = EXCLUDED.slug
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	count := 0
	for _, row := range rows {
		if row.Name == "" || row.Slug == "" {
			log.Printf("Warning: skipping incomplete tag entry %+v", row)
			continue
		}
		if _, err := stmt.Exec(row.Name, row.Colour, row.Slug); err != nil {
			return count, fmt.Errorf("failed to insert tag %q: %w", row.Name, err)
		}
		count++
	}
	return count, nil
}

func readJSONFile(filename string, target interface{}) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(target); err != nil {
		return fmt.Errorf("failed to decode JSON: %w", err)
	}
	return nil
}
