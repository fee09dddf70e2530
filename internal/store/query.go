package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// AirportResult is one row returned by an airport query, with lookup
// tables already resolved to their display names.
type AirportResult struct {
	ICAO            string
	IATA            *string
	FAA             *string
	AirportName     *string
	Elevation       *int
	Kind            *string
	Lat             *float64
	Lon             *float64
	Country         *string
	State           *string
	City            *string
	TransitionAlt   *string
	TransitionLevel *string
}

// RunwayResult is one row returned by a runway query.
type RunwayResult struct {
	AirportICAO    string
	WidthM         *float64
	SurfaceCode    *int
	End1RwNumber   *string
	End1Lat        *float64
	End1Lon        *float64
	End2RwNumber   *string
	End2Lat        *float64
	End2Lon        *float64
}

type nearFilter struct {
	lat, lon, radiusKm float64
}

// AirportQueryBuilder composes airport filters into a dynamic SQL
// statement, following the teacher's conditions-plus-args pattern.
type AirportQueryBuilder struct {
	db *sql.DB

	icao, country, state, city, kind *string
	elevMin, elevMax                 *int
	near                             *nearFilter
	orderByICAO                      bool
	limit                            int
}

func newAirportQueryBuilder(db *sql.DB) *AirportQueryBuilder {
	return &AirportQueryBuilder{db: db}
}

func (b *AirportQueryBuilder) ICAO(v string) *AirportQueryBuilder       { b.icao = &v; return b }
func (b *AirportQueryBuilder) Country(v string) *AirportQueryBuilder    { b.country = &v; return b }
func (b *AirportQueryBuilder) State(v string) *AirportQueryBuilder      { b.state = &v; return b }
func (b *AirportQueryBuilder) City(v string) *AirportQueryBuilder       { b.city = &v; return b }
func (b *AirportQueryBuilder) Type(v string) *AirportQueryBuilder       { b.kind = &v; return b }
func (b *AirportQueryBuilder) MaxResults(n int) *AirportQueryBuilder    { b.limit = n; return b }
func (b *AirportQueryBuilder) OrderByICAO() *AirportQueryBuilder        { b.orderByICAO = true; return b }

func (b *AirportQueryBuilder) ElevationRange(min, max int) *AirportQueryBuilder {
	b.elevMin, b.elevMax = &min, &max
	return b
}

func (b *AirportQueryBuilder) Near(lat, lon, radiusKm float64) *AirportQueryBuilder {
	b.near = &nearFilter{lat: lat, lon: lon, radiusKm: radiusKm}
	return b
}

func (b *AirportQueryBuilder) conditions() ([]string, []any) {
	var conditions []string
	var args []any
	if b.icao != nil {
		conditions = append(conditions, "a.icao LIKE ?")
		args = append(args, "%"+*b.icao+"%")
	}
	if b.country != nil {
		conditions = append(conditions, "co.country_name LIKE ?")
		args = append(args, "%"+*b.country+"%")
	}
	if b.state != nil {
		conditions = append(conditions, "st.state_name LIKE ?")
		args = append(args, "%"+*b.state+"%")
	}
	if b.city != nil {
		conditions = append(conditions, "ci.city_name LIKE ?")
		args = append(args, "%"+*b.city+"%")
	}
	if b.kind != nil {
		conditions = append(conditions, "a.kind = ?")
		args = append(args, *b.kind)
	}
	if b.elevMin != nil {
		conditions = append(conditions, "a.elevation >= ?")
		args = append(args, *b.elevMin)
	}
	if b.elevMax != nil {
		conditions = append(conditions, "a.elevation <= ?")
		args = append(args, *b.elevMax)
	}
	return conditions, args
}

const airportSelect = `
SELECT a.icao, a.iata, a.faa, a.airport_name, a.elevation, a.kind, a.lat, a.lon,
       co.country_name, st.state_name, ci.city_name, a.transition_alt, a.transition_level
FROM airports a
LEFT JOIN countries co ON a.country_id = co.country_id
LEFT JOIN states st ON a.state_id = st.state_id
LEFT JOIN cities ci ON a.city_id = ci.city_id`

func (b *AirportQueryBuilder) runQuery(applySQLLimit bool) ([]AirportResult, error) {
	conditions, args := b.conditions()
	query := airportSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	if b.orderByICAO {
		query += " ORDER BY a.icao"
	}
	if applySQLLimit && b.limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", b.limit)
	}

	rows, err := b.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("airport query: %w", err)
	}
	defer rows.Close()

	var results []AirportResult
	for rows.Next() {
		var r AirportResult
		if err := rows.Scan(&r.ICAO, &r.IATA, &r.FAA, &r.AirportName, &r.Elevation, &r.Kind,
			&r.Lat, &r.Lon, &r.Country, &r.State, &r.City, &r.TransitionAlt, &r.TransitionLevel); err != nil {
			return nil, fmt.Errorf("scan airport row: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// filterNear drops rows without coordinates or outside the radius, using
// orb/geo's Haversine distance in place of a hand-rolled formula.
func filterNear(results []AirportResult, f *nearFilter) []AirportResult {
	center := orb.Point{f.lon, f.lat}
	var kept []AirportResult
	for _, r := range results {
		if r.Lat == nil || r.Lon == nil {
			continue
		}
		p := orb.Point{*r.Lon, *r.Lat}
		distKm := geo.Distance(center, p) / 1000.0
		if distKm <= f.radiusKm {
			kept = append(kept, r)
		}
	}
	return kept
}

// Execute runs the composed query and returns every matching row.
func (b *AirportQueryBuilder) Execute() ([]AirportResult, error) {
	results, err := b.runQuery(b.near == nil)
	if err != nil {
		return nil, err
	}
	if b.near != nil {
		results = filterNear(results, b.near)
		if b.limit > 0 && len(results) > b.limit {
			results = results[:b.limit]
		}
	}
	return results, nil
}

// First returns the first matching row, or nil if none match.
func (b *AirportQueryBuilder) First() (*AirportResult, error) {
	savedLimit := b.limit
	b.limit = 1
	results, err := b.Execute()
	b.limit = savedLimit
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// Count returns the number of matching rows. Without a Near filter it runs
// a SQL COUNT(*); with one, the matching rows are fetched and filtered by
// distance before counting.
func (b *AirportQueryBuilder) Count() (int, error) {
	if b.near != nil {
		results, err := b.runQuery(false)
		if err != nil {
			return 0, err
		}
		return len(filterNear(results, b.near)), nil
	}
	conditions, args := b.conditions()
	query := `SELECT COUNT(*) FROM airports a
LEFT JOIN countries co ON a.country_id = co.country_id
LEFT JOIN states st ON a.state_id = st.state_id
LEFT JOIN cities ci ON a.city_id = ci.city_id`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	var n int
	if err := b.db.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("airport count: %w", err)
	}
	return n, nil
}

// RunwayQueryBuilder composes runway filters into a dynamic SQL statement.
type RunwayQueryBuilder struct {
	db *sql.DB

	airportICAO  *string
	surface      *int
	minWidth     *float64
	runwayNumber *string
	limit        int
}

func newRunwayQueryBuilder(db *sql.DB) *RunwayQueryBuilder {
	return &RunwayQueryBuilder{db: db}
}

func (b *RunwayQueryBuilder) AirportICAO(v string) *RunwayQueryBuilder { b.airportICAO = &v; return b }
func (b *RunwayQueryBuilder) Surface(v int) *RunwayQueryBuilder        { b.surface = &v; return b }
func (b *RunwayQueryBuilder) MinWidth(v float64) *RunwayQueryBuilder   { b.minWidth = &v; return b }
func (b *RunwayQueryBuilder) RunwayNumber(v string) *RunwayQueryBuilder {
	b.runwayNumber = &v
	return b
}
func (b *RunwayQueryBuilder) MaxResults(n int) *RunwayQueryBuilder { b.limit = n; return b }

const runwaySelect = `
SELECT airport_icao, width, surface, end1_rw_number, end1_lat, end1_lon, end2_rw_number, end2_lat, end2_lon
FROM runways`

func (b *RunwayQueryBuilder) build() (string, []any) {
	var conditions []string
	var args []any
	if b.airportICAO != nil {
		conditions = append(conditions, "airport_icao = ?")
		args = append(args, *b.airportICAO)
	}
	if b.surface != nil {
		conditions = append(conditions, "surface = ?")
		args = append(args, *b.surface)
	}
	if b.minWidth != nil {
		conditions = append(conditions, "width >= ?")
		args = append(args, *b.minWidth)
	}
	if b.runwayNumber != nil {
		conditions = append(conditions, "(end1_rw_number = ? OR end2_rw_number = ?)")
		args = append(args, *b.runwayNumber, *b.runwayNumber)
	}
	query := runwaySelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	return query, args
}

// Execute runs the composed query and returns every matching row.
func (b *RunwayQueryBuilder) Execute() ([]RunwayResult, error) {
	query, args := b.build()
	if b.limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", b.limit)
	}
	rows, err := b.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("runway query: %w", err)
	}
	defer rows.Close()

	var results []RunwayResult
	for rows.Next() {
		var r RunwayResult
		if err := rows.Scan(&r.AirportICAO, &r.WidthM, &r.SurfaceCode, &r.End1RwNumber, &r.End1Lat, &r.End1Lon,
			&r.End2RwNumber, &r.End2Lat, &r.End2Lon); err != nil {
			return nil, fmt.Errorf("scan runway row: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// First returns the first matching row, or nil if none match.
func (b *RunwayQueryBuilder) First() (*RunwayResult, error) {
	savedLimit := b.limit
	b.limit = 1
	results, err := b.Execute()
	b.limit = savedLimit
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// Count returns the number of matching rows without materializing them.
func (b *RunwayQueryBuilder) Count() (int, error) {
	query, args := b.build()
	countQuery := "SELECT COUNT(*) FROM (" + query + ")"
	var n int
	if err := b.db.QueryRow(countQuery, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("runway count: %w", err)
	}
	return n, nil
}

// AirportQuery is the read-only query façade returned by Manager once
// connected. It exposes both the chainable builders and a handful of
// convenience shortcuts for the common cases.
type AirportQuery struct {
	db *sql.DB
}

// NewAirportQuery builds the façade over an open connection.
func NewAirportQuery(db *DB) *AirportQuery {
	return &AirportQuery{db: db.Conn()}
}

func (q *AirportQuery) Airports() *AirportQueryBuilder { return newAirportQueryBuilder(q.db) }
func (q *AirportQuery) Runways() *RunwayQueryBuilder    { return newRunwayQueryBuilder(q.db) }

// ByICAO returns the first airport whose ICAO contains icao as a
// case-insensitive substring (the same LIKE match as the ICAO builder
// filter), or nil if none match. Which row is returned when several match
// is not defined.
func (q *AirportQuery) ByICAO(icao string) (*AirportResult, error) {
	return q.Airports().ICAO(icao).First()
}

// ByCountry returns every airport whose country name contains the substring.
func (q *AirportQuery) ByCountry(country string) ([]AirportResult, error) {
	return q.Airports().Country(country).Execute()
}

// ByState returns every airport whose state name contains the substring.
func (q *AirportQuery) ByState(state string) ([]AirportResult, error) {
	return q.Airports().State(state).Execute()
}

// Near returns every airport within radiusKm of the given point.
func (q *AirportQuery) Near(lat, lon, radiusKm float64) ([]AirportResult, error) {
	return q.Airports().Near(lat, lon, radiusKm).Execute()
}

// RunwaysForAirport returns every runway belonging to icao.
func (q *AirportQuery) RunwaysForAirport(icao string) ([]RunwayResult, error) {
	return q.Runways().AirportICAO(icao).Execute()
}

// RunwaysBySurface returns every runway with the given surface code.
func (q *AirportQuery) RunwaysBySurface(surfaceCode int) ([]RunwayResult, error) {
	return q.Runways().Surface(surfaceCode).Execute()
}
