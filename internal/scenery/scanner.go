// Package scenery implements the scenery scanner (C3): it walks the two
// X-Plane scenery roots, applies the exclusion rules, deduplicates by
// scenery-package identity, and returns an ordered list of apt.dat files
// with base scenery first and overlays second.
package scenery

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/PlatosRepublic7/navdatamanager/internal/errs"
)

// DefaultExclusionPatterns is the case-insensitive substring list applied
// to directory names under Custom Scenery. A directory matching any
// pattern is pruned from the walk entirely.
var DefaultExclusionPatterns = []string{
	"z_", "ortho", "zortho4xp_", "simheaven_",
	"x-plane landmarks", "uhd_", "hd_", "library",
}

const (
	globalSceneryDir = "Global Scenery"
	customSceneryDir = "Custom Scenery"
	globalAptDatPath = "Global Airports/Earth nav data"
)

// File describes one discovered apt.dat with the overlay flag the loader
// needs to apply the base-vs-overlay replacement policy.
type File struct {
	Path      string
	IsOverlay bool
}

// found is an internal candidate before package-identity dedup.
type found struct {
	path      string
	pkg       string
	isOverlay bool
}

// Scanner enumerates apt.dat files under an X-Plane root.
type Scanner struct {
	exclusions []string
}

// New builds a Scanner. A nil or empty patterns slice uses
// DefaultExclusionPatterns.
func New(patterns []string) *Scanner {
	if len(patterns) == 0 {
		patterns = DefaultExclusionPatterns
	}
	return &Scanner{exclusions: patterns}
}

// Scan walks xpRoot and returns the deduplicated, Global-first /
// Custom-second ordered list of apt.dat files.
func (s *Scanner) Scan(xpRoot string) ([]File, error) {
	info, err := os.Stat(xpRoot)
	if err != nil || !info.IsDir() {
		return nil, errs.Newf(errs.KindInvalidRoot, "%s is not a directory", xpRoot)
	}

	globalRoot := filepath.Join(xpRoot, globalSceneryDir, globalAptDatPath)
	if gi, err := os.Stat(globalRoot); err != nil || !gi.IsDir() {
		return nil, errs.Newf(errs.KindMissingGlobalScenery, "missing %s", globalRoot)
	}

	var all []found

	globalFiles, err := s.walkRoot(xpRoot, globalSceneryDir, false)
	if err != nil {
		return nil, err
	}
	all = append(all, globalFiles...)

	customRoot := filepath.Join(xpRoot, customSceneryDir)
	if ci, err := os.Stat(customRoot); err == nil && ci.IsDir() {
		customFiles, err := s.walkRoot(xpRoot, customSceneryDir, true)
		if err != nil {
			return nil, err
		}
		all = append(all, customFiles...)
	}

	// Package dedup: keep the shortest path per package.
	shortest := make(map[string]found)
	for _, f := range all {
		existing, ok := shortest[f.pkg]
		if !ok || len(f.path) < len(existing.path) {
			shortest[f.pkg] = f
		}
	}

	var globals, customs []File
	for _, f := range shortest {
		if f.isOverlay {
			customs = append(customs, File{Path: f.path, IsOverlay: true})
		} else {
			globals = append(globals, File{Path: f.path, IsOverlay: false})
		}
	}
	return append(globals, customs...), nil
}

// walkRoot descends <xpRoot>/<sceneryDir>, pruning excluded subtrees when
// applyExclusions is set (only Custom Scenery applies exclusions), and
// returns every apt.dat found along with its package identity.
func (s *Scanner) walkRoot(xpRoot, sceneryDir string, applyExclusions bool) ([]found, error) {
	root := filepath.Join(xpRoot, sceneryDir)
	var results []found

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errs.Wrap(errs.KindFilesystemError, err)
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if applyExclusions && s.excluded(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != "apt.dat" {
			return nil
		}
		pkg := packageName(root, path)
		if pkg == "" {
			return nil
		}
		results = append(results, found{
			path:      path,
			pkg:       sceneryDir + "/" + pkg,
			isOverlay: applyExclusions,
		})
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(errs.KindFilesystemError, err)
	}
	return results, nil
}

func (s *Scanner) excluded(dirName string) bool {
	lower := strings.ToLower(dirName)
	for _, pat := range s.exclusions {
		if strings.Contains(lower, pat) {
			return true
		}
	}
	return false
}

// packageName returns the first path segment under root, which identifies
// the scenery package an apt.dat file belongs to.
func packageName(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return ""
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}
