package store

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.sqlite")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenAppliesSchemaIdempotently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.sqlite")
	db1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	db1.Close()

	db2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open (idempotent schema): %v", err)
	}
	defer db2.Close()
}

func TestGetOrCreateLookupsAreStableWithinTransaction(t *testing.T) {
	db := openTestDB(t)
	tx, err := db.Conn().Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.Rollback()

	id1, err := GetOrCreateCountry(tx, "United States")
	if err != nil {
		t.Fatalf("GetOrCreateCountry: %v", err)
	}
	id2, err := GetOrCreateCountry(tx, "United States")
	if err != nil {
		t.Fatalf("GetOrCreateCountry (second call): %v", err)
	}
	if id1 != id2 {
		t.Fatalf("ids differ for the same input: %d != %d", id1, id2)
	}

	stateID, err := GetOrCreateState(tx, "New Jersey", id1)
	if err != nil {
		t.Fatalf("GetOrCreateState: %v", err)
	}
	cityID, err := GetOrCreateCity(tx, "Newark", stateID, id1)
	if err != nil {
		t.Fatalf("GetOrCreateCity: %v", err)
	}
	if cityID == 0 {
		t.Fatalf("cityID should be non-zero")
	}
}

func TestSceneryPathSeenRoundTrip(t *testing.T) {
	db := openTestDB(t)
	tx, err := db.Conn().Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.Rollback()

	seen, err := SceneryPathSeen(tx, "/xp/Global Scenery/apt.dat")
	if err != nil {
		t.Fatalf("SceneryPathSeen: %v", err)
	}
	if seen {
		t.Fatalf("expected not seen before insertion")
	}
	if err := RecordSceneryPath(tx, "/xp/Global Scenery/apt.dat"); err != nil {
		t.Fatalf("RecordSceneryPath: %v", err)
	}
	seen, err = SceneryPathSeen(tx, "/xp/Global Scenery/apt.dat")
	if err != nil {
		t.Fatalf("SceneryPathSeen (after insert): %v", err)
	}
	if !seen {
		t.Fatalf("expected seen after insertion")
	}
}

func TestAirportQueryBuilderFilters(t *testing.T) {
	db := openTestDB(t)
	tx, err := db.Conn().Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	countryID, err := GetOrCreateCountry(tx, "United States")
	if err != nil {
		t.Fatalf("GetOrCreateCountry: %v", err)
	}
	if _, err := tx.Exec(`INSERT INTO airports (icao, airport_name, elevation, kind, lat, lon, country_id) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		"KEWR", "Newark Liberty Intl", 17, "land", 40.6925, -74.1687, countryID); err != nil {
		t.Fatalf("insert airport: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	q := NewAirportQuery(db)
	result, err := q.ByICAO("KEWR")
	if err != nil {
		t.Fatalf("ByICAO: %v", err)
	}
	if result == nil {
		t.Fatalf("expected a result for KEWR")
	}
	if result.ICAO != "KEWR" {
		t.Fatalf("ICAO = %q, want KEWR", result.ICAO)
	}

	near, err := q.Near(40.0, -74.0, 200)
	if err != nil {
		t.Fatalf("Near: %v", err)
	}
	if len(near) != 1 {
		t.Fatalf("Near within 200km: len = %d, want 1", len(near))
	}

	far, err := q.Near(0, 0, 10)
	if err != nil {
		t.Fatalf("Near (far): %v", err)
	}
	if len(far) != 0 {
		t.Fatalf("Near far away: len = %d, want 0", len(far))
	}

	count, err := q.Airports().Country("United").Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Fatalf("Count = %d, want 1", count)
	}
}
