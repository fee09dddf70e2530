package store

import (
	"database/sql"
	"fmt"
)

// The get-or-create helpers below make at most one SELECT and one INSERT
// per miss; the lookup tables' UNIQUE constraints are the source of truth,
// so no in-transaction cache is required for correctness. The loader may
// still keep one to cut round trips -- the spec permits but does not
// require it.

// GetOrCreateCountry resolves name to a country_id, inserting a new row if
// none exists yet.
func GetOrCreateCountry(tx *sql.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRow(`SELECT country_id FROM countries WHERE country_name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("lookup country %q: %w", name, err)
	}
	res, err := tx.Exec(`INSERT INTO countries (country_name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("insert country %q: %w", name, err)
	}
	return res.LastInsertId()
}

// GetOrCreateRegion resolves code to a region_id, inserting a new row if
// none exists yet.
func GetOrCreateRegion(tx *sql.Tx, code string) (int64, error) {
	var id int64
	err := tx.QueryRow(`SELECT region_id FROM regions WHERE region_code = ?`, code).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("lookup region %q: %w", code, err)
	}
	res, err := tx.Exec(`INSERT INTO regions (region_code) VALUES (?)`, code)
	if err != nil {
		return 0, fmt.Errorf("insert region %q: %w", code, err)
	}
	return res.LastInsertId()
}

// GetOrCreateState resolves (name, countryID) to a state_id, inserting a
// new row if none exists yet. Requires a resolved country.
func GetOrCreateState(tx *sql.Tx, name string, countryID int64) (int64, error) {
	var id int64
	err := tx.QueryRow(`SELECT state_id FROM states WHERE state_name = ? AND country_id = ?`, name, countryID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("lookup state %q: %w", name, err)
	}
	res, err := tx.Exec(`INSERT INTO states (state_name, country_id) VALUES (?, ?)`, name, countryID)
	if err != nil {
		return 0, fmt.Errorf("insert state %q: %w", name, err)
	}
	return res.LastInsertId()
}

// GetOrCreateCity resolves (name, stateID, countryID) to a city_id,
// inserting a new row if none exists yet. Requires a resolved state.
func GetOrCreateCity(tx *sql.Tx, name string, stateID, countryID int64) (int64, error) {
	var id int64
	err := tx.QueryRow(`SELECT city_id FROM cities WHERE city_name = ? AND state_id = ? AND country_id = ?`, name, stateID, countryID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("lookup city %q: %w", name, err)
	}
	res, err := tx.Exec(`INSERT INTO cities (city_name, state_id, country_id) VALUES (?, ?, ?)`, name, stateID, countryID)
	if err != nil {
		return 0, fmt.Errorf("insert city %q: %w", name, err)
	}
	return res.LastInsertId()
}

// GetOrCreateAircraftType resolves code to an aircraft_type_id, inserting
// a new row if none exists (INSERT OR IGNORE, then re-select).
func GetOrCreateAircraftType(tx *sql.Tx, code string) (int64, error) {
	if _, err := tx.Exec(`INSERT OR IGNORE INTO aircraft_types (aircraft_type_code) VALUES (?)`, code); err != nil {
		return 0, fmt.Errorf("insert aircraft type %q: %w", code, err)
	}
	var id int64
	if err := tx.QueryRow(`SELECT aircraft_type_id FROM aircraft_types WHERE aircraft_type_code = ?`, code).Scan(&id); err != nil {
		return 0, fmt.Errorf("lookup aircraft type %q: %w", code, err)
	}
	return id, nil
}

// SceneryPathSeen reports whether path is already recorded in
// scenery_paths within the current transaction's view.
func SceneryPathSeen(tx *sql.Tx, path string) (bool, error) {
	var id int64
	err := tx.QueryRow(`SELECT path_id FROM scenery_paths WHERE scenery_path = ?`, path).Scan(&id)
	if err == nil {
		return true, nil
	}
	if err == sql.ErrNoRows {
		return false, nil
	}
	return false, fmt.Errorf("lookup scenery path %q: %w", path, err)
}

// RecordSceneryPath inserts path into scenery_paths within the current
// transaction.
func RecordSceneryPath(tx *sql.Tx, path string) error {
	_, err := tx.Exec(`INSERT INTO scenery_paths (scenery_path) VALUES (?)`, path)
	if err != nil {
		return fmt.Errorf("insert scenery path %q: %w", path, err)
	}
	return nil
}
