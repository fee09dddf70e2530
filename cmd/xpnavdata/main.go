// Command xpnavdata scans an X-Plane installation, parses its apt.dat
// scenery files, and loads the result into a SQLite navigation data
// store. It also exposes a handful of read-only lookups against an
// already-loaded store.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/PlatosRepublic7/navdatamanager/internal/config"
	"github.com/PlatosRepublic7/navdatamanager/internal/manager"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "xpnavdata - commands:")
	fmt.Fprintln(w, "  ingest   - scan, parse and load apt.dat scenery into the store")
	fmt.Fprintln(w, "  query    - look up an airport by ICAO code in an existing store")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  xpnavdata ingest -config config.yaml [-xp-root PATH] [-db PATH] [-force-full-parse] [-verbose]")
	fmt.Fprintln(w, "  xpnavdata query  -db PATH -icao KEWR")
	fmt.Fprintln(w, "")
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	cmd := strings.ToLower(os.Args[1])
	switch cmd {
	case "ingest":
		runIngest(os.Args[2:])
	case "query":
		runQuery(os.Args[2:])
	case "-h", "--help", "help":
		usage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage(os.Stderr)
		os.Exit(2)
	}
}

func runIngest(args []string) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config file (required)")
	xpRoot := fs.String("xp-root", "", "Override xp_root_path from config")
	dbPath := fs.String("db", "", "Override db_path from config")
	forceFullParse := fs.Bool("force-full-parse", false, "Override force_full_parse from config")
	verbose := fs.Bool("verbose", false, "Override logging_enabled from config")
	_ = fs.Parse(args)

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "ingest: -config is required")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *xpRoot != "" {
		cfg.XPRootPath = *xpRoot
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if isFlagSet(fs, "force-full-parse") {
		cfg.ForceFullParse = *forceFullParse
	}
	if isFlagSet(fs, "verbose") {
		cfg.LoggingEnabled = *verbose
	}

	m := manager.New(cfg.XPRootPath, cfg.LoggingEnabled, cfg.LinearFeatureFilter)

	if err := m.Scan(); err != nil {
		fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
		os.Exit(1)
	}
	if err := m.Connect(cfg.DBPath); err != nil {
		fmt.Fprintf(os.Stderr, "Connect failed: %v\n", err)
		os.Exit(1)
	}
	defer m.Close()

	summary, err := m.ParseAndLoad(cfg.ForceFullParse)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ParseAndLoad failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "ingest complete: files_parsed=%d files_skipped=%d duration=%s\n",
		summary.FilesParsed, summary.FilesSkipped, summary.Duration)
}

func runQuery(args []string) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	dbPath := fs.String("db", "", "Path to an existing SQLite store (required)")
	icao := fs.String("icao", "", "Airport ICAO code to look up")
	country := fs.String("country", "", "Filter by country (substring match)")
	near := fs.String("near", "", "lat,lon,radius_km to find nearby airports")
	limit := fs.Int("limit", 20, "Maximum rows to print")
	_ = fs.Parse(args)

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "query: -db is required")
		os.Exit(2)
	}

	m := manager.New("", false, nil)
	if err := m.Connect(*dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "Connect failed: %v\n", err)
		os.Exit(1)
	}
	defer m.Close()

	q, err := m.AirportQuery()
	if err != nil {
		fmt.Fprintf(os.Stderr, "AirportQuery failed: %v\n", err)
		os.Exit(1)
	}

	builder := q.Airports().OrderByICAO().MaxResults(*limit)
	if *icao != "" {
		builder = builder.ICAO(*icao)
	}
	if *country != "" {
		builder = builder.Country(*country)
	}
	if *near != "" {
		lat, lon, radiusKm, err := parseNear(*near)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bad -near value: %v\n", err)
			os.Exit(2)
		}
		builder = builder.Near(lat, lon, radiusKm)
	}

	results, err := builder.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
		os.Exit(1)
	}
	if len(results) == 0 {
		fmt.Fprintln(os.Stdout, "no matching airports")
		return
	}
	for _, r := range results {
		fmt.Fprintf(os.Stdout, "%s\t%s\n", r.ICAO, stringOrDash(r.AirportName))
	}
}

func parseNear(s string) (lat, lon, radiusKm float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("expected lat,lon,radius_km, got %q", s)
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, 0, err
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, 0, err
	}
	radiusKm, err = strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return 0, 0, 0, err
	}
	return lat, lon, radiusKm, nil
}

func stringOrDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
