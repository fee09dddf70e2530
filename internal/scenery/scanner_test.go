package scenery

import (
	"os"
	"path/filepath"
	"testing"
)

func mustMkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("MkdirAll %s: %v", path, err)
	}
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	mustMkdirAll(t, filepath.Dir(path))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile %s: %v", path, err)
	}
}

func TestScanInvalidRoot(t *testing.T) {
	_, err := New(nil).Scan(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatalf("expected InvalidRoot error")
	}
}

func TestScanMissingGlobalScenery(t *testing.T) {
	root := t.TempDir()
	_, err := New(nil).Scan(root)
	if err == nil {
		t.Fatalf("expected MissingGlobalScenery error")
	}
}

func TestScanGlobalFirstCustomSecond(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "Global Scenery", "Global Airports", "Earth nav data", "apt.dat"), "1 0 0 0 KEWR\n")
	mustWriteFile(t, filepath.Join(root, "Custom Scenery", "MyAirport", "Earth nav data", "apt.dat"), "1 0 0 0 KJFK\n")

	files, err := New(nil).Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("len(files) = %d, want 2: %+v", len(files), files)
	}
	if files[0].IsOverlay {
		t.Fatalf("files[0] should be global (Global Scenery first)")
	}
	if !files[1].IsOverlay {
		t.Fatalf("files[1] should be an overlay (Custom Scenery second)")
	}
}

func TestScanExcludesCustomSceneryPatterns(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "Global Scenery", "Global Airports", "Earth nav data", "apt.dat"), "1 0 0 0 KEWR\n")
	mustWriteFile(t, filepath.Join(root, "Custom Scenery", "zOrtho4XP_Test", "Earth nav data", "apt.dat"), "1 0 0 0 KXXX\n")
	mustWriteFile(t, filepath.Join(root, "Custom Scenery", "RealAddon", "Earth nav data", "apt.dat"), "1 0 0 0 KJFK\n")

	files, err := New(nil).Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("len(files) = %d, want 2 (excluded package pruned): %+v", len(files), files)
	}
}

func TestScanPackageDedupKeepsShortestPath(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "Global Scenery", "Global Airports", "Earth nav data", "apt.dat"), "1 0 0 0 KEWR\n")
	mustWriteFile(t, filepath.Join(root, "Custom Scenery", "MyAirport", "Earth nav data", "apt.dat"), "1 0 0 0 KJFK\n")
	mustWriteFile(t, filepath.Join(root, "Custom Scenery", "MyAirport", "nested", "test_fixture", "apt.dat"), "1 0 0 0 KJFK\n")

	files, err := New(nil).Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	var overlayCount int
	for _, f := range files {
		if f.IsOverlay {
			overlayCount++
			if filepath.Base(filepath.Dir(filepath.Dir(f.Path))) != "MyAirport" {
				t.Fatalf("expected the shorter path to win, got %s", f.Path)
			}
		}
	}
	if overlayCount != 1 {
		t.Fatalf("overlayCount = %d, want 1 (deduplicated by package)", overlayCount)
	}
}
