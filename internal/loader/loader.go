// Package loader implements the ingest transaction (C5): it consumes
// ParsedFile batches, resolves lookup foreign keys, applies the
// base-vs-overlay replacement policy, and commits everything in one
// transaction.
package loader

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/PlatosRepublic7/navdatamanager/internal/errs"
	"github.com/PlatosRepublic7/navdatamanager/internal/recordparser"
	"github.com/PlatosRepublic7/navdatamanager/internal/scenery"
	"github.com/PlatosRepublic7/navdatamanager/internal/store"
)

// ParseFunc produces a ParsedFile for one scanned file. The loader calls
// it only for files that survive the incremental pre-pass.
type ParseFunc func(path string) (*recordparser.ParsedFile, error)

// Summary reports what one Load call did.
type Summary struct {
	FilesParsed  int
	FilesSkipped int
	Duration     time.Duration
}

// Loader drives the single ingest transaction.
type Loader struct {
	db *store.DB
}

// New builds a Loader over an open store.
func New(db *store.DB) *Loader {
	return &Loader{db: db}
}

// Load runs the full pre-pass-plus-ingest-plus-commit-plus-optimize cycle
// over files, in the order given (Global-first, Custom-second matters for
// the overlay policy below). Any error aborts the transaction: nothing is
// persisted except what a prior, already-committed call wrote.
func (l *Loader) Load(files []scenery.File, parse ParseFunc, forceFullParse bool) (Summary, error) {
	start := time.Now()

	tx, err := l.db.Conn().Begin()
	if err != nil {
		return Summary{}, errs.Wrap(errs.KindStoreError, fmt.Errorf("begin transaction: %w", err))
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	var summary Summary
	airportsInTx := make(map[string]bool)

	for _, f := range files {
		seen, err := store.SceneryPathSeen(tx, f.Path)
		if err != nil {
			return Summary{}, errs.Wrap(errs.KindStoreError, err)
		}
		if seen && !forceFullParse {
			summary.FilesSkipped++
			continue
		}
		if !seen {
			if err := store.RecordSceneryPath(tx, f.Path); err != nil {
				return Summary{}, errs.Wrap(errs.KindStoreError, err)
			}
		}

		pf, err := parse(f.Path)
		if err != nil {
			return Summary{}, err
		}
		if err := loadFile(tx, pf, f.IsOverlay, airportsInTx); err != nil {
			return Summary{}, err
		}
		summary.FilesParsed++
	}

	if err := tx.Commit(); err != nil {
		return Summary{}, errs.Wrap(errs.KindStoreError, fmt.Errorf("commit: %w", err))
	}
	committed = true

	if err := l.db.Optimize(); err != nil {
		return Summary{}, err
	}

	summary.Duration = time.Since(start)
	return summary, nil
}

// loadFile writes one ParsedFile's records in FK dependency order:
// airports, runways, taxi nodes, taxi edges, linear features, linear
// feature nodes, startup locations.
func loadFile(tx *sql.Tx, pf *recordparser.ParsedFile, isOverlay bool, airportsInTx map[string]bool) error {
	for _, am := range pf.Airports {
		if am.ICAO == "" {
			continue
		}
		if err := loadAirport(tx, am, isOverlay, airportsInTx); err != nil {
			return err
		}
	}
	for _, rw := range pf.Runways {
		if err := loadRunway(tx, rw); err != nil {
			return err
		}
	}
	for _, n := range pf.TaxiNodes {
		if err := loadTaxiNode(tx, n); err != nil {
			return err
		}
	}
	for _, e := range pf.TaxiEdges {
		if err := loadTaxiEdge(tx, e); err != nil {
			return err
		}
	}
	for _, feat := range pf.LinearFeatures {
		if err := loadLinearFeature(tx, feat); err != nil {
			return err
		}
	}
	for _, n := range pf.LinearFeatureNodes {
		if err := loadLinearFeatureNode(tx, n); err != nil {
			return err
		}
	}
	for _, s := range pf.StartupLocations {
		if err := loadStartupLocation(tx, s); err != nil {
			return err
		}
	}
	return nil
}

func airportExists(tx *sql.Tx, icao string) bool {
	var x int
	return tx.QueryRow(`SELECT 1 FROM airports WHERE icao = ?`, icao).Scan(&x) == nil
}

func loadAirport(tx *sql.Tx, am recordparser.AirportMeta, isOverlay bool, airportsInTx map[string]bool) error {
	icao := am.ICAO

	if isOverlay && (airportExists(tx, icao) || airportsInTx[icao]) {
		if _, err := tx.Exec(`DELETE FROM airports WHERE icao = ?`, icao); err != nil {
			return errs.Wrap(errs.KindStoreError, fmt.Errorf("delete overlay airport %s: %w", icao, err))
		}
	}

	var countryID, stateID, cityID, regionID *int64

	if am.Country != nil && *am.Country != "" {
		id, err := store.GetOrCreateCountry(tx, *am.Country)
		if err != nil {
			return errs.Wrap(errs.KindStoreError, err)
		}
		countryID = &id
	}
	if am.Region != nil && *am.Region != "" {
		id, err := store.GetOrCreateRegion(tx, *am.Region)
		if err != nil {
			return errs.Wrap(errs.KindStoreError, err)
		}
		regionID = &id
	}
	if am.State != nil && *am.State != "" && countryID != nil {
		id, err := store.GetOrCreateState(tx, *am.State, *countryID)
		if err != nil {
			return errs.Wrap(errs.KindStoreError, err)
		}
		stateID = &id
	}
	if am.City != nil && *am.City != "" && stateID != nil && countryID != nil {
		id, err := store.GetOrCreateCity(tx, *am.City, *stateID, *countryID)
		if err != nil {
			return errs.Wrap(errs.KindStoreError, err)
		}
		cityID = &id
	}

	_, err := tx.Exec(`INSERT OR REPLACE INTO airports
		(icao, iata, faa, airport_name, elevation, kind, lat, lon, country_id, state_id, city_id, region_id, transition_alt, transition_level)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		icao, am.IATA, am.FAA, am.AirportName, am.ElevationFt, am.Kind.String(), am.Latitude, am.Longitude,
		countryID, stateID, cityID, regionID, am.TransitionAlt, am.TransitionLevel)
	if err != nil {
		return errs.Wrap(errs.KindStoreError, fmt.Errorf("insert airport %s: %w", icao, err))
	}
	airportsInTx[icao] = true
	return nil
}

func loadRunway(tx *sql.Tx, rw recordparser.RunwayData) error {
	_, err := tx.Exec(`INSERT OR REPLACE INTO runways
		(airport_icao, width, surface, end1_rw_number, end1_lat, end1_lon, end1_displaced, end1_marking, end1_approach,
		 end2_rw_number, end2_lat, end2_lon, end2_displaced, end2_marking, end2_approach)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rw.AirportICAO, rw.WidthM, rw.SurfaceCode,
		rw.End1.RwNumber, rw.End1.Lat, rw.End1.Lon, rw.End1.DisplacedThresholdM, rw.End1.MarkingCode, rw.End1.ApproachLightCode,
		rw.End2.RwNumber, rw.End2.Lat, rw.End2.Lon, rw.End2.DisplacedThresholdM, rw.End2.MarkingCode, rw.End2.ApproachLightCode)
	if err != nil {
		return errs.Wrap(errs.KindStoreError, fmt.Errorf("insert runway %s: %w", rw.AirportICAO, err))
	}
	return nil
}

func loadTaxiNode(tx *sql.Tx, n recordparser.TaxiwayNode) error {
	_, err := tx.Exec(`INSERT OR REPLACE INTO taxi_nodes (node_id, airport_icao, lat, lon, node_type) VALUES (?, ?, ?, ?, ?)`,
		n.NodeID, n.AirportICAO, n.Latitude, n.Longitude, n.NodeKind)
	if err != nil {
		return errs.Wrap(errs.KindStoreError, fmt.Errorf("insert taxi node %s/%d: %w", n.AirportICAO, n.NodeID, err))
	}
	return nil
}

func loadTaxiEdge(tx *sql.Tx, e recordparser.TaxiwayEdge) error {
	_, err := tx.Exec(`INSERT INTO taxi_edges (airport_icao, start_node_id, end_node_id, is_two_way, taxiway_name, width_class) VALUES (?, ?, ?, ?, ?, ?)`,
		e.AirportICAO, e.StartNodeID, e.EndNodeID, e.IsTwoWay, e.TaxiwayName, string(e.WidthClass))
	if err != nil {
		return errs.Wrap(errs.KindStoreError, fmt.Errorf("insert taxi edge %s: %w", e.AirportICAO, err))
	}
	return nil
}

func loadLinearFeature(tx *sql.Tx, f recordparser.LinearFeature) error {
	_, err := tx.Exec(`INSERT OR REPLACE INTO linear_features (airport_icao, feature_sequence, line_type) VALUES (?, ?, ?)`,
		f.AirportICAO, f.FeatureSequence, f.LineType)
	if err != nil {
		return errs.Wrap(errs.KindStoreError, fmt.Errorf("insert linear feature %s/%d: %w", f.AirportICAO, f.FeatureSequence, err))
	}
	return nil
}

func loadLinearFeatureNode(tx *sql.Tx, n recordparser.LinearFeatureNode) error {
	_, err := tx.Exec(`INSERT OR REPLACE INTO linear_feature_nodes (airport_icao, feature_sequence, lat, lon, bezier_lat, bezier_lon, node_order) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.AirportICAO, n.FeatureSequence, n.Lat, n.Lon, n.BezierLat, n.BezierLon, n.NodeOrder)
	if err != nil {
		return errs.Wrap(errs.KindStoreError, fmt.Errorf("insert linear feature node %s/%d/%d: %w", n.AirportICAO, n.FeatureSequence, n.NodeOrder, err))
	}
	return nil
}

func loadStartupLocation(tx *sql.Tx, s recordparser.StartupLocation) error {
	res, err := tx.Exec(`INSERT INTO startup_locations (airport_icao, lat, lon, heading, location_type, ramp_name) VALUES (?, ?, ?, ?, ?, ?)`,
		s.AirportICAO, s.Lat, s.Lon, s.HeadingDeg, s.Kind, s.RampName)
	if err != nil {
		return errs.Wrap(errs.KindStoreError, fmt.Errorf("insert startup location %s: %w", s.AirportICAO, err))
	}
	locationID, err := res.LastInsertId()
	if err != nil {
		return errs.Wrap(errs.KindStoreError, err)
	}
	for _, code := range s.AircraftTypes {
		aircraftID, err := store.GetOrCreateAircraftType(tx, code)
		if err != nil {
			return errs.Wrap(errs.KindStoreError, err)
		}
		if _, err := tx.Exec(`INSERT OR IGNORE INTO startup_location_aircraft_types (location_id, aircraft_type_id) VALUES (?, ?)`, locationID, aircraftID); err != nil {
			return errs.Wrap(errs.KindStoreError, fmt.Errorf("link aircraft type %s to location %d: %w", code, locationID, err))
		}
	}
	return nil
}
