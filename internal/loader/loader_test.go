package loader

import (
	"path/filepath"
	"testing"

	"github.com/PlatosRepublic7/navdatamanager/internal/recordparser"
	"github.com/PlatosRepublic7/navdatamanager/internal/scenery"
	"github.com/PlatosRepublic7/navdatamanager/internal/store"
)

func openTestDB(t *testing.T) *store.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.sqlite")
	db, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func globalKEWR() *recordparser.ParsedFile {
	elev := 17
	name := "Newark Liberty Intl"
	return &recordparser.ParsedFile{
		Path: "/xp/Global Scenery/apt.dat",
		Airports: []recordparser.AirportMeta{
			{ICAO: "KEWR", ElevationFt: &elev, AirportName: &name, Kind: recordparser.KindLand},
		},
		Runways: []recordparser.RunwayData{
			{AirportICAO: "KEWR", WidthM: 45, SurfaceCode: 1,
				End1: recordparser.RunwayEnd{RwNumber: "04L"},
				End2: recordparser.RunwayEnd{RwNumber: "22R"}},
		},
	}
}

func customKEWR() *recordparser.ParsedFile {
	elev := 18
	name := "Newark Liberty Intl"
	return &recordparser.ParsedFile{
		Path: "/xp/Custom Scenery/Addon/apt.dat",
		Airports: []recordparser.AirportMeta{
			{ICAO: "KEWR", ElevationFt: &elev, AirportName: &name, Kind: recordparser.KindLand},
		},
		Runways: []recordparser.RunwayData{
			{AirportICAO: "KEWR", WidthM: 45, SurfaceCode: 1,
				End1: recordparser.RunwayEnd{RwNumber: "04L"},
				End2: recordparser.RunwayEnd{RwNumber: "22R"}},
			{AirportICAO: "KEWR", WidthM: 30, SurfaceCode: 1,
				End1: recordparser.RunwayEnd{RwNumber: "11"},
				End2: recordparser.RunwayEnd{RwNumber: "29"}},
		},
	}
}

func parseFromMemory(files map[string]*recordparser.ParsedFile) ParseFunc {
	return func(path string) (*recordparser.ParsedFile, error) {
		return files[path], nil
	}
}

func TestOverlayReplacesBaseAirportAndRunways(t *testing.T) {
	db := openTestDB(t)
	l := New(db)

	files := []scenery.File{
		{Path: "/xp/Global Scenery/apt.dat", IsOverlay: false},
		{Path: "/xp/Custom Scenery/Addon/apt.dat", IsOverlay: true},
	}
	parse := parseFromMemory(map[string]*recordparser.ParsedFile{
		"/xp/Global Scenery/apt.dat":       globalKEWR(),
		"/xp/Custom Scenery/Addon/apt.dat": customKEWR(),
	})

	summary, err := l.Load(files, parse, false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if summary.FilesParsed != 2 {
		t.Fatalf("FilesParsed = %d, want 2", summary.FilesParsed)
	}

	var elevation int
	if err := db.Conn().QueryRow(`SELECT elevation FROM airports WHERE icao = ?`, "KEWR").Scan(&elevation); err != nil {
		t.Fatalf("query elevation: %v", err)
	}
	if elevation != 18 {
		t.Fatalf("elevation = %d, want 18 (custom scenery should win)", elevation)
	}

	var runwayCount int
	if err := db.Conn().QueryRow(`SELECT COUNT(*) FROM runways WHERE airport_icao = ?`, "KEWR").Scan(&runwayCount); err != nil {
		t.Fatalf("query runway count: %v", err)
	}
	if runwayCount != 2 {
		t.Fatalf("runwayCount = %d, want 2 (only custom scenery's runways)", runwayCount)
	}
}

func TestIncrementalSkipOnSecondCall(t *testing.T) {
	db := openTestDB(t)
	l := New(db)

	files := []scenery.File{{Path: "/xp/Global Scenery/apt.dat", IsOverlay: false}}
	parse := parseFromMemory(map[string]*recordparser.ParsedFile{
		"/xp/Global Scenery/apt.dat": globalKEWR(),
	})

	first, err := l.Load(files, parse, false)
	if err != nil {
		t.Fatalf("first Load: %v", err)
	}
	if first.FilesParsed != 1 || first.FilesSkipped != 0 {
		t.Fatalf("first Load summary = %+v, want FilesParsed=1 FilesSkipped=0", first)
	}

	second, err := l.Load(files, parse, false)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if second.FilesParsed != 0 || second.FilesSkipped != 1 {
		t.Fatalf("second Load summary = %+v, want FilesParsed=0 FilesSkipped=1", second)
	}

	var pathCount int
	if err := db.Conn().QueryRow(`SELECT COUNT(*) FROM scenery_paths`).Scan(&pathCount); err != nil {
		t.Fatalf("query scenery_paths count: %v", err)
	}
	if pathCount != 1 {
		t.Fatalf("scenery_paths count = %d, want 1 (recorded exactly once)", pathCount)
	}
}

func TestForceFullParseReparsesAndRowCountsStable(t *testing.T) {
	db := openTestDB(t)
	l := New(db)

	files := []scenery.File{{Path: "/xp/Global Scenery/apt.dat", IsOverlay: false}}
	parse := parseFromMemory(map[string]*recordparser.ParsedFile{
		"/xp/Global Scenery/apt.dat": globalKEWR(),
	})

	if _, err := l.Load(files, parse, false); err != nil {
		t.Fatalf("first Load: %v", err)
	}
	third, err := l.Load(files, parse, true)
	if err != nil {
		t.Fatalf("force Load: %v", err)
	}
	if third.FilesParsed != 1 || third.FilesSkipped != 0 {
		t.Fatalf("force Load summary = %+v, want FilesParsed=1 FilesSkipped=0", third)
	}

	var airportCount int
	if err := db.Conn().QueryRow(`SELECT COUNT(*) FROM airports`).Scan(&airportCount); err != nil {
		t.Fatalf("query airport count: %v", err)
	}
	if airportCount != 1 {
		t.Fatalf("airportCount = %d, want 1 (INSERT OR REPLACE keeps counts stable)", airportCount)
	}
}
