// Package manager implements the top-level lifecycle orchestration: a
// one-shot scan -> connect -> parse_and_load pipeline behind an opaque
// handle, matching the public API surface the spec describes.
package manager

import (
	"fmt"
	"log/slog"

	"github.com/PlatosRepublic7/navdatamanager/internal/errs"
	"github.com/PlatosRepublic7/navdatamanager/internal/loader"
	"github.com/PlatosRepublic7/navdatamanager/internal/recordparser"
	"github.com/PlatosRepublic7/navdatamanager/internal/scenery"
	"github.com/PlatosRepublic7/navdatamanager/internal/store"
)

// Manager is the opaque handle over one ingest run. Its public lifecycle
// calls are blocking, synchronous, and must be invoked in order: Scan,
// Connect, ParseAndLoad. AirportQuery before Connect fails with a
// precondition error.
type Manager struct {
	xpRootPath string
	logger     *slog.Logger

	scanner *scenery.Scanner
	parser  *recordparser.Parser

	scannedFiles []scenery.File
	scanned      bool

	db        *store.DB
	connected bool
}

// New builds a Manager for the given X-Plane installation root. A nil or
// empty linearFeatureFilter uses recordparser.DefaultLinearFeatureFilter.
// When loggingEnabled is false, log output is discarded.
func New(xpRootPath string, loggingEnabled bool, linearFeatureFilter []int) *Manager {
	logger := slog.New(slog.NewTextHandler(discardIfDisabled(loggingEnabled), nil))
	return &Manager{
		xpRootPath: xpRootPath,
		logger:     logger,
		scanner:    scenery.New(nil),
		parser:     recordparser.New(linearFeatureFilter),
	}
}

// Scan enumerates candidate apt.dat files under xpRootPath. It must run
// before ParseAndLoad; Connect does not depend on it.
func (m *Manager) Scan() error {
	files, err := m.scanner.Scan(m.xpRootPath)
	if err != nil {
		return err
	}
	m.scannedFiles = files
	m.scanned = true
	m.logger.Info("scenery scan complete", "files_found", len(files))
	return nil
}

// Connect opens (creating if necessary) the store at dbPath and applies
// the schema and performance pragmas.
func (m *Manager) Connect(dbPath string) error {
	db, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	m.db = db
	m.connected = true
	m.logger.Info("store connected", "path", dbPath)
	return nil
}

// ParseAndLoad parses every file from Scan not yet recorded in
// scenery_paths (unless forceFullParse is set) and loads them in one
// transaction, then runs the post-ingest optimize pass.
func (m *Manager) ParseAndLoad(forceFullParse bool) (loader.Summary, error) {
	if !m.scanned {
		return loader.Summary{}, errs.New(errs.KindPreconditionError, "Scan must be called before ParseAndLoad")
	}
	if !m.connected {
		return loader.Summary{}, errs.New(errs.KindPreconditionError, "Connect must be called before ParseAndLoad")
	}

	l := loader.New(m.db)
	summary, err := l.Load(m.scannedFiles, m.loggingParseFunc(), forceFullParse)
	if err != nil {
		m.logger.Error("parse_and_load failed", "error", err)
		return loader.Summary{}, err
	}
	m.logger.Info("parse_and_load complete",
		"files_parsed", summary.FilesParsed,
		"files_skipped", summary.FilesSkipped,
		"duration", summary.Duration.String())
	return summary, nil
}

// AirportQuery returns the read-only query façade. It fails with a
// precondition error if Connect has not yet been called.
func (m *Manager) AirportQuery() (*store.AirportQuery, error) {
	if !m.connected {
		return nil, errs.New(errs.KindPreconditionError, "Connect must be called before AirportQuery")
	}
	return store.NewAirportQuery(m.db), nil
}

// loggingParseFunc wraps the parser so each successfully parsed file logs
// one line with a done/total count of the scanned files. Progress within a
// single file (reader.LineReader's Progress()) is not logged.
func (m *Manager) loggingParseFunc() loader.ParseFunc {
	total := len(m.scannedFiles)
	done := 0
	return func(path string) (*recordparser.ParsedFile, error) {
		pf, err := m.parser.ParseFile(path)
		done++
		if err == nil {
			m.logger.Info("file parsed", "path", path, "progress", fmt.Sprintf("%d/%d", done, total))
		}
		return pf, err
	}
}

// Close releases the store handle. Safe to call even if Connect never
// succeeded.
func (m *Manager) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}
