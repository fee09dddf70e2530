package reader

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "apt.dat")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestAdvanceAndLineNumber(t *testing.T) {
	path := writeTemp(t, "1 17 1 0 KEWR Newark Liberty Intl\n100 45.72 1\n")
	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	ok, err := r.Advance()
	if err != nil || !ok {
		t.Fatalf("Advance 1: ok=%v err=%v", ok, err)
	}
	if r.LineNumber() != 1 {
		t.Fatalf("LineNumber = %d, want 1", r.LineNumber())
	}
	if r.RowCode() != 1 {
		t.Fatalf("RowCode = %d, want 1", r.RowCode())
	}

	ok, err = r.Advance()
	if err != nil || !ok {
		t.Fatalf("Advance 2: ok=%v err=%v", ok, err)
	}
	if r.LineNumber() != 2 {
		t.Fatalf("LineNumber = %d, want 2", r.LineNumber())
	}
	if r.RowCode() != 100 {
		t.Fatalf("RowCode = %d, want 100", r.RowCode())
	}

	ok, err = r.Advance()
	if err != nil {
		t.Fatalf("Advance 3: err=%v", err)
	}
	if ok {
		t.Fatalf("Advance 3: expected EOF")
	}
}

func TestPushbackSingleSlot(t *testing.T) {
	path := writeTemp(t, "1 17 1 0 KEWR Newark\n100 45.72 1\n")
	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if _, err := r.Advance(); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	before := r.BytesProcessed()
	lineBefore := r.LineNumber()

	if err := r.Pushback(); err != nil {
		t.Fatalf("Pushback: %v", err)
	}
	if err := r.Pushback(); err == nil {
		t.Fatalf("second Pushback should fail")
	}

	ok, err := r.Advance()
	if err != nil || !ok {
		t.Fatalf("Advance after pushback: ok=%v err=%v", ok, err)
	}
	if r.LineNumber() != lineBefore {
		t.Fatalf("LineNumber after pushback-advance = %d, want unchanged %d", r.LineNumber(), lineBefore)
	}
	if r.BytesProcessed() != before {
		t.Fatalf("BytesProcessed after pushback-advance = %d, want restored %d", r.BytesProcessed(), before)
	}
	if r.RowCode() != 1 {
		t.Fatalf("RowCode after pushback-advance = %d, want 1", r.RowCode())
	}
}

func TestTokensSkipEmptyRuns(t *testing.T) {
	path := writeTemp(t, "1   17\t1  0   KEWR   Newark  Liberty\n")
	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if _, err := r.Advance(); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	toks := r.Tokens()
	want := []string{"1", "17", "1", "0", "KEWR", "Newark", "Liberty"}
	if len(toks) != len(want) {
		t.Fatalf("Tokens = %v, want %v", toks, want)
	}
	for i := range want {
		if toks[i] != want[i] {
			t.Fatalf("Tokens[%d] = %q, want %q", i, toks[i], want[i])
		}
	}
}

func TestRowCodeNonNumeric(t *testing.T) {
	cases := []struct {
		name string
		line string
		want int
	}{
		{"numeric", "100 45.72 1", 100},
		{"negative-like-text", "abc row", -1},
		{"empty", "", -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTemp(t, tc.line+"\n")
			r, err := Open(path)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer r.Close()
			if _, err := r.Advance(); err != nil {
				t.Fatalf("Advance: %v", err)
			}
			if got := r.RowCode(); got != tc.want {
				t.Fatalf("RowCode = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestCRLFTolerated(t *testing.T) {
	path := writeTemp(t, "1 17 1 0 KEWR Newark\r\n100 45.72 1\r\n")
	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if _, err := r.Advance(); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if got := r.Line(); got != "1 17 1 0 KEWR Newark" {
		t.Fatalf("Line = %q, want trimmed of CR", got)
	}
}

func TestProgress(t *testing.T) {
	path := writeTemp(t, "aaaa\nbbbb\n")
	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if p := r.Progress(); p != 0 {
		t.Fatalf("initial Progress = %v, want 0", p)
	}
	if _, err := r.Advance(); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if p := r.Progress(); p <= 0 || p > 1 {
		t.Fatalf("Progress after one line = %v, want in (0,1]", p)
	}
}
