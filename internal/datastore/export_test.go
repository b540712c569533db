package datastore

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/mensa/internal/location"
	"github.com/lepinkainen/mensa/internal/menu"
)

func exportMenu(t *testing.T) menu.Menu {
	t.Helper()
	c := location.NewCatalog("")
	forum, _ := c.Lookup("forum")
	zm2, _ := c.Lookup("zm2")
	return menu.Aggregate(time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), []menu.LocationMenu{
		{Location: forum, Courses: menu.Courses{
			Main:    []menu.RawDish{{Name: "Linseneintopf", Prices: menu.Prices{Student: menu.Price("2,20€")}, Extras: []string{"Vegan", "Bio"}}},
			Dessert: []menu.RawDish{{Name: "Obst"}},
		}},
		{Location: zm2, Courses: menu.Courses{
			Main: []menu.RawDish{{Name: "Linseneintopf", Prices: menu.Prices{Student: menu.Price("2,20€")}, Extras: []string{"Bio", "Vegan"}}},
		}},
	})
}

func TestRecords(t *testing.T) {
	runID := uuid.New()
	records := Records(exportMenu(t), runID, time.Date(2024, 5, 13, 11, 0, 0, 0, time.UTC))
	require.Len(t, records, 2)

	row := structToMap(records[0])
	assert.Equal(t, runID.String(), row["run_id"])
	assert.Equal(t, "2024-05-13", row["date"])
	assert.Equal(t, "main", row["category"])
	assert.Equal(t, "Linseneintopf", row["name"])
	assert.Equal(t, "2,20€", row["price_student"])
	assert.Nil(t, row["price_guest"])
	assert.Equal(t, "Bio,Vegan", row["extras"])
	assert.Equal(t, "Forum,ZM2", row["locations"])
	assert.Equal(t, "2024-05-13T11:00:00Z", row["exported_at"])
	assert.Contains(t, row, "image_url")

	assert.Equal(t, "dessert", records[1].Category)
}

func TestExportMenuToSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mensa.db")
	runID := uuid.New()

	require.NoError(t, ExportMenu(NewSQLiteStore(path), exportMenu(t), runID))
	// a second run appends
	require.NoError(t, ExportMenu(NewSQLiteStore(path), exportMenu(t), uuid.New()))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var total int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM dishes").Scan(&total))
	assert.Equal(t, 4, total)

	var name, locations string
	var guest sql.NullString
	require.NoError(t, db.QueryRow(
		"SELECT name, locations, price_guest FROM dishes WHERE run_id = ? AND category = 'main'", runID.String(),
	).Scan(&name, &locations, &guest))
	assert.Equal(t, "Linseneintopf", name)
	assert.Equal(t, "Forum,ZM2", locations)
	assert.False(t, guest.Valid)
}

type failingStore struct {
	connectErr error
	inserted   int
}

func (f *failingStore) Connect() error { return f.connectErr }
func (f *failingStore) CreateTable(string) error { return nil }
func (f *failingStore) Close() error { return nil }
func (f *failingStore) BatchInsert(_, _ string, records []map[string]any) error {
	f.inserted += len(records)
	return errors.New("disk full")
}

func TestExportMenuErrors(t *testing.T) {
	boom := errors.New("no route")
	err := ExportMenu(&failingStore{connectErr: boom}, exportMenu(t), uuid.New())
	assert.ErrorIs(t, err, boom)

	store := &failingStore{}
	err = ExportMenu(store, exportMenu(t), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to export menu: disk full")
	assert.Equal(t, 2, store.inserted)
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Name":         "name",
		"PriceStudent": "price_student",
		"ImageURL":     "image_url",
		"RunID":        "run_id",
		"URLPath":      "url_path",
		"ExportedAt":   "exported_at",
	}
	for in, want := range tests {
		assert.Equal(t, want, toSnakeCase(in), in)
	}
}
