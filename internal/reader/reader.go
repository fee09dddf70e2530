// Package reader implements the lookahead line reader (C1): a line-oriented
// stream over a single apt.dat file with one line of pushback, lazy
// whitespace tokenization, row-code extraction and byte/line accounting.
package reader

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/PlatosRepublic7/navdatamanager/internal/errs"
)

// maxLineBuffer bounds the longest single line the scanner will accept.
// apt.dat lines are short; this only guards against corrupt input.
const maxLineBuffer = 1 << 20

// LineReader streams lines from one file. Exactly one line of pushback is
// supported; a second pushback without an intervening Advance is a
// programming error.
type LineReader struct {
	file     *os.File
	scanner  *bufio.Scanner
	fileSize int64

	lineNumber     int
	bytesProcessed int64

	current     string
	haveCurrent bool

	pushedBack  string
	hasPushback bool

	tokens      []string
	tokensValid bool
}

// Open opens path in binary/text-agnostic mode (line endings LF or CRLF are
// both tolerated by bufio.ScanLines) and prepares it for reading.
func Open(path string) (*LineReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.KindReaderError, fmt.Errorf("open %s: %w", path, err))
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errs.Wrap(errs.KindReaderError, fmt.Errorf("stat %s: %w", path, err))
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBuffer)
	return &LineReader{file: f, scanner: sc, fileSize: info.Size()}, nil
}

// Close releases the underlying file handle.
func (r *LineReader) Close() error {
	return r.file.Close()
}

// Advance reads the next line, preferring a pushed-back line over the
// stream. The line counter only increments when a line is read fresh from
// the stream. Returns false at EOF.
func (r *LineReader) Advance() (bool, error) {
	if r.hasPushback {
		r.current = r.pushedBack
		r.hasPushback = false
		r.haveCurrent = true
		r.tokensValid = false
		r.bytesProcessed += int64(len(r.current)) + 1
		return true, nil
	}
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return false, errs.Wrap(errs.KindReaderError, fmt.Errorf("read line %d: %w", r.lineNumber+1, err))
		}
		r.haveCurrent = false
		return false, nil
	}
	r.current = r.scanner.Text()
	r.haveCurrent = true
	r.lineNumber++
	r.tokensValid = false
	r.bytesProcessed += int64(len(r.current)) + 1
	return true, nil
}

// Pushback buffers the current line for the next Advance call. The buffer
// is a single slot: calling Pushback twice without an intervening Advance
// fails loudly, per the reader's contract.
func (r *LineReader) Pushback() error {
	if r.hasPushback {
		return fmt.Errorf("reader: cannot push back more than one line at a time")
	}
	if !r.haveCurrent {
		return fmt.Errorf("reader: no current line to push back")
	}
	r.pushedBack = r.current
	r.hasPushback = true
	r.bytesProcessed -= int64(len(r.current)) + 1
	r.tokens = nil
	r.tokensValid = false
	return nil
}

// Tokens splits the current line on runs of spaces and tabs, skipping empty
// runs. The slice is computed lazily and cached until the next Advance.
func (r *LineReader) Tokens() []string {
	if r.tokensValid {
		return r.tokens
	}
	r.tokens = strings.FieldsFunc(r.current, func(c rune) bool {
		return c == ' ' || c == '\t'
	})
	r.tokensValid = true
	return r.tokens
}

// RowCode returns the integer value of the first token of the current line
// when it begins with a digit, otherwise -1.
func (r *LineReader) RowCode() int {
	toks := r.Tokens()
	if len(toks) == 0 || toks[0] == "" {
		return -1
	}
	if c := toks[0][0]; c < '0' || c > '9' {
		return -1
	}
	n, err := strconv.Atoi(toks[0])
	if err != nil {
		return -1
	}
	return n
}

// Line returns the raw text of the current line.
func (r *LineReader) Line() string { return r.current }

// LineNumber returns the 1-based line number of the current line.
func (r *LineReader) LineNumber() int { return r.lineNumber }

// BytesProcessed returns the number of bytes consumed so far, accounting
// for any currently pushed-back line.
func (r *LineReader) BytesProcessed() int64 { return r.bytesProcessed }

// FileSize returns the total size of the file in bytes.
func (r *LineReader) FileSize() int64 { return r.fileSize }

// Progress returns the fraction of the file consumed so far, in [0,1].
func (r *LineReader) Progress() float64 {
	if r.fileSize <= 0 {
		return 0
	}
	p := float64(r.bytesProcessed) / float64(r.fileSize)
	if p > 1 {
		p = 1
	}
	if p < 0 {
		p = 0
	}
	return p
}
