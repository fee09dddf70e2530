package store

// schema is the normalized relational schema (C4), applied idempotently
// via CREATE TABLE IF NOT EXISTS. Table and column names follow the
// persisted layout: airports plus four lookup tables, the taxiway graph,
// linear surface features, startup locations and their aircraft-type
// junction, and the scenery_paths incremental-reparse ledger.
const schema = `
CREATE TABLE IF NOT EXISTS countries (
	country_id   INTEGER PRIMARY KEY,
	country_name TEXT UNIQUE NOT NULL
);

CREATE TABLE IF NOT EXISTS regions (
	region_id   INTEGER PRIMARY KEY,
	region_code TEXT UNIQUE NOT NULL
);

CREATE TABLE IF NOT EXISTS states (
	state_id   INTEGER PRIMARY KEY,
	state_name TEXT NOT NULL,
	country_id INTEGER NOT NULL REFERENCES countries(country_id),
	UNIQUE(state_name, country_id)
);

CREATE TABLE IF NOT EXISTS cities (
	city_id    INTEGER PRIMARY KEY,
	city_name  TEXT NOT NULL,
	state_id   INTEGER NOT NULL REFERENCES states(state_id),
	country_id INTEGER NOT NULL REFERENCES countries(country_id),
	UNIQUE(city_name, state_id, country_id)
);

CREATE TABLE IF NOT EXISTS airports (
	icao             TEXT PRIMARY KEY,
	iata             TEXT,
	faa              TEXT,
	airport_name     TEXT,
	elevation        INTEGER,
	kind             TEXT,
	lat              REAL,
	lon              REAL,
	country_id       INTEGER REFERENCES countries(country_id),
	state_id         INTEGER REFERENCES states(state_id),
	city_id          INTEGER REFERENCES cities(city_id),
	region_id        INTEGER REFERENCES regions(region_id),
	transition_alt   TEXT,
	transition_level TEXT
);

CREATE TABLE IF NOT EXISTS runways (
	runway_id       INTEGER PRIMARY KEY AUTOINCREMENT,
	airport_icao    TEXT NOT NULL REFERENCES airports(icao) ON DELETE CASCADE,
	width           REAL,
	surface         INTEGER,
	end1_rw_number  TEXT,
	end1_lat        REAL,
	end1_lon        REAL,
	end1_displaced  REAL,
	end1_marking    INTEGER,
	end1_approach   INTEGER,
	end2_rw_number  TEXT,
	end2_lat        REAL,
	end2_lon        REAL,
	end2_displaced  REAL,
	end2_marking    INTEGER,
	end2_approach   INTEGER,
	UNIQUE(airport_icao, end1_rw_number, end2_rw_number)
);

CREATE TABLE IF NOT EXISTS taxi_nodes (
	node_id      INTEGER NOT NULL,
	airport_icao TEXT NOT NULL REFERENCES airports(icao) ON DELETE CASCADE,
	lat          REAL,
	lon          REAL,
	node_type    TEXT,
	PRIMARY KEY (airport_icao, node_id)
);

CREATE TABLE IF NOT EXISTS taxi_edges (
	airport_icao  TEXT NOT NULL REFERENCES airports(icao) ON DELETE CASCADE,
	start_node_id INTEGER NOT NULL,
	end_node_id   INTEGER NOT NULL,
	is_two_way    INTEGER NOT NULL,
	taxiway_name  TEXT,
	width_class   TEXT
);

CREATE TABLE IF NOT EXISTS linear_features (
	airport_icao     TEXT NOT NULL REFERENCES airports(icao) ON DELETE CASCADE,
	feature_sequence INTEGER NOT NULL,
	line_type        TEXT,
	PRIMARY KEY (airport_icao, feature_sequence)
);

CREATE TABLE IF NOT EXISTS linear_feature_nodes (
	airport_icao     TEXT NOT NULL,
	feature_sequence INTEGER NOT NULL,
	lat              REAL,
	lon              REAL,
	bezier_lat       REAL,
	bezier_lon       REAL,
	node_order       INTEGER NOT NULL,
	PRIMARY KEY (airport_icao, feature_sequence, node_order),
	FOREIGN KEY (airport_icao, feature_sequence) REFERENCES linear_features(airport_icao, feature_sequence) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS startup_locations (
	location_id   INTEGER PRIMARY KEY AUTOINCREMENT,
	airport_icao  TEXT NOT NULL REFERENCES airports(icao) ON DELETE CASCADE,
	lat           REAL,
	lon           REAL,
	heading       REAL,
	location_type TEXT,
	ramp_name     TEXT
);

CREATE TABLE IF NOT EXISTS aircraft_types (
	aircraft_type_id   INTEGER PRIMARY KEY,
	aircraft_type_code TEXT UNIQUE NOT NULL
);

CREATE TABLE IF NOT EXISTS startup_location_aircraft_types (
	location_id      INTEGER NOT NULL REFERENCES startup_locations(location_id) ON DELETE CASCADE,
	aircraft_type_id INTEGER NOT NULL REFERENCES aircraft_types(aircraft_type_id),
	PRIMARY KEY (location_id, aircraft_type_id)
);

CREATE TABLE IF NOT EXISTS scenery_paths (
	path_id      INTEGER PRIMARY KEY,
	scenery_path TEXT UNIQUE NOT NULL
);
`
