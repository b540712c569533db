package datastore

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lepinkainen/mensa/internal/menu"
)

const (
	// Database is the Datasette database menus are exported to.
	Database = "mensa"
	// Table holds one row per dish and run.
	Table = "dishes"
)

// Schema creates the dishes table.
const Schema = `CREATE TABLE IF NOT EXISTS dishes (
	run_id TEXT NOT NULL,
	date TEXT NOT NULL,
	category TEXT NOT NULL,
	name TEXT NOT NULL,
	price_student TEXT,
	price_employee TEXT,
	price_guest TEXT,
	extras TEXT,
	locations TEXT,
	image_url TEXT,
	exported_at TEXT NOT NULL
)`

// DishRecord is one exported row.
type DishRecord struct {
	RunID         string `db:"run_id"`
	Date          time.Time
	Category      string
	Name          string
	PriceStudent  *string
	PriceEmployee *string
	PriceGuest    *string
	Extras        []string
	Locations     []string
	ImageURL      string `db:"image_url"`
	ExportedAt    string
}

// Records flattens a menu into export rows.
func Records(m menu.Menu, runID uuid.UUID, exportedAt time.Time) []DishRecord {
	var records []DishRecord
	for _, cat := range menu.Categories {
		for _, d := range m.Of(cat) {
			records = append(records, DishRecord{
				RunID:         runID.String(),
				Date:          m.Date,
				Category:      cat.String(),
				Name:          d.Name,
				PriceStudent:  d.Prices.Student,
				PriceEmployee: d.Prices.Employee,
				PriceGuest:    d.Prices.Guest,
				Extras:        d.Extras,
				Locations:     d.LocationNames(),
				ImageURL:      d.ImageURL,
				ExportedAt:    exportedAt.UTC().Format(time.RFC3339),
			})
		}
	}
	return records
}

// ExportMenu writes every dish of m to store, tagged with runID.
func ExportMenu(store Store, m menu.Menu, runID uuid.UUID) error {
	if err := store.Connect(); err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.CreateTable(Schema); err != nil {
		return err
	}

	records := Records(m, runID, time.Now())
	rows := make([]map[string]any, len(records))
	for i, r := range records {
		rows[i] = structToMap(r)
	}

	if err := store.BatchInsert(Database, Table, rows); err != nil {
		return fmt.Errorf("failed to export menu: %w", err)
	}
	slog.Info("Exported menu", "dishes", len(rows), "run_id", runID)
	return nil
}
