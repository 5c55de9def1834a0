// Package coeffs loads and saves FIR coefficient files.
//
// The text format holds one real number per line. Blank lines and lines
// starting with '#' are ignored on load; on save an optional '#' header
// precedes the data.
package coeffs

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tphakala/go-fir-optimizer/internal/filter"
)

const (
	commentPrefix = "#"

	// DefaultPrecision is the number of significant digits written per tap.
	DefaultPrecision = 12

	// FullPrecision round-trips any float64 exactly.
	FullPrecision = 17

	maxLineBytes = 1 << 20

	outputFileMode = 0o644
)

var (
	// ErrEmpty is returned when a coefficient source contains no data lines.
	// It wraps filter.ErrDegenerateInput.
	ErrEmpty = fmt.Errorf("%w: no coefficients found", filter.ErrDegenerateInput)

	// ErrNonFinite is returned when saving a NaN or Inf tap.
	ErrNonFinite = errors.New("non-finite coefficient")
)

// ParseError reports a data line that is not a real number.
type ParseError struct {
	Line int    // 1-based line number
	Text string // trimmed line content
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: cannot parse %q as a coefficient: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads a text coefficient file.
func Load(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open coefficient file: %w", err)
	}
	defer func() { _ = f.Close() }()

	taps, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return taps, nil
}

// Read parses coefficients from r. No partial result is returned on error.
func Read(r io.Reader) ([]float64, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var taps []float64
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}

		v, err := strconv.ParseFloat(line, 64)
		if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
			err = ErrNonFinite
		}
		if err != nil {
			return nil, &ParseError{Line: lineNo, Text: line, Err: err}
		}
		taps = append(taps, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read coefficients: %w", err)
	}
	if len(taps) == 0 {
		return nil, ErrEmpty
	}
	return taps, nil
}

// WriteOptions controls the text rendering.
type WriteOptions struct {
	// Header is written first, one '#'-prefixed line per header line.
	Header string

	// Precision is the number of significant digits; 0 selects DefaultPrecision.
	Precision int
}

// Write renders taps to w.
func Write(w io.Writer, taps []float64, opts WriteOptions) error {
	precision := opts.Precision
	if precision <= 0 {
		precision = DefaultPrecision
	}

	bw := bufio.NewWriter(w)
	if opts.Header != "" {
		for _, line := range strings.Split(strings.TrimRight(opts.Header, "\n"), "\n") {
			if !strings.HasPrefix(line, commentPrefix) {
				line = commentPrefix + " " + line
			}
			if _, err := bw.WriteString(line + "\n"); err != nil {
				return err
			}
		}
	}

	buf := make([]byte, 0, 32)
	for i, v := range taps {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("tap %d: %w", i, ErrNonFinite)
		}
		buf = strconv.AppendFloat(buf[:0], v, 'g', precision, 64)
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Save writes taps to path. The data goes to a temporary file in the same
// directory which is renamed over path only after a complete write, so a
// failed save leaves no partial file behind.
func Save(path string, taps []float64, opts WriteOptions) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = Write(tmp, taps, opts); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return commitTemp(tmp, path)
}

// commitTemp closes tmp and renames it to path.
func commitTemp(tmp *os.File, path string) error {
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Chmod(tmp.Name(), outputFileMode); err != nil {
		return fmt.Errorf("chmod %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

// LoadAny loads a coefficient file, dispatching on the extension:
// ".wav" files are decoded as impulse responses, everything else as text.
func LoadAny(path string) ([]float64, error) {
	if IsWAV(path) {
		return LoadWAV(path)
	}
	return Load(path)
}

// IsWAV reports whether path has a .wav extension.
func IsWAV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".wav")
}
