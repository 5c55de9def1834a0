package firopt

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Report collects the outcome of a batch.
type Report struct {
	// Records holds one entry per successful filter, in input order.
	Records []Record

	// Failures holds one entry per failed filter, in input order.
	Failures []Failure
}

// Failure is a filter that could not be optimized or written.
type Failure struct {
	Path string
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Path, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Err joins all failures, or returns nil when the batch fully succeeded.
func (r *Report) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// ReportFormat selects a report encoding.
type ReportFormat string

// Supported report formats.
const (
	ReportText    ReportFormat = "text"
	ReportJSON    ReportFormat = "json"
	ReportParquet ReportFormat = "parquet"
)

// ParseReportFormat validates a report format name.
func ParseReportFormat(name string) (ReportFormat, error) {
	switch f := ReportFormat(strings.ToLower(strings.TrimSpace(name))); f {
	case ReportText, ReportJSON, ReportParquet:
		return f, nil
	default:
		return "", fmt.Errorf("unknown report format %q (want text, json or parquet)", name)
	}
}

// Write encodes the report in the given format.
func (r *Report) Write(w io.Writer, format ReportFormat) error {
	switch format {
	case ReportText, "":
		return r.WriteText(w)
	case ReportJSON:
		return r.WriteJSON(w)
	case ReportParquet:
		return WriteParquet(w, r.Records)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// WriteText prints the human-readable summary, one block per filter.
func (r *Report) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for i := range r.Records {
		writeRecordText(bw, &r.Records[i])
	}
	if len(r.Failures) > 0 {
		_, _ = fmt.Fprintf(bw, "\nfailed (%d):\n", len(r.Failures))
		for _, f := range r.Failures {
			_, _ = fmt.Fprintf(bw, "  %s: %v\n", f.Path, f.Err)
		}
	}
	_, _ = fmt.Fprintf(bw, "\nSummary: %d optimized, %d failed\n", len(r.Records), len(r.Failures))
	return bw.Flush()
}

func writeRecordText(w io.Writer, rec *Record) {
	name := rec.Source
	if name == "" {
		name = "(memory)"
	}
	_, _ = fmt.Fprintf(w, "--- %s\n", filepath.Base(name))
	_, _ = fmt.Fprintf(w, "taps=%d max|h|=%.6g sum=%.6g L2=%.6g\n",
		rec.OriginalTaps, rec.OriginalPeak, rec.OriginalSum, rec.OriginalEnergy)
	if rec.Passthrough {
		_, _ = fmt.Fprintf(w, "too short to redesign, passed through unchanged\n")
	}
	_, _ = fmt.Fprintf(w, "new_taps=%d max|h|=%.6g sum=%.6g L2=%.6g scale_factor=%.6g comp_db=%.3f\n",
		rec.NewTaps, rec.NewPeak, rec.NewSum, rec.NewEnergy, rec.ScaleFactor, rec.CompensationDB)
	if rec.Output != "" {
		_, _ = fmt.Fprintf(w, "wrote %s\n", rec.Output)
	}
}

type jsonFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type jsonReport struct {
	Records  []Record      `json:"records"`
	Failures []jsonFailure `json:"failures,omitempty"`
}

// WriteJSON encodes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	out := jsonReport{Records: r.Records}
	if out.Records == nil {
		out.Records = []Record{}
	}
	for _, f := range r.Failures {
		out.Failures = append(out.Failures, jsonFailure{Path: f.Path, Error: f.Err.Error()})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// WriteParquet encodes records as a Snappy-compressed Parquet file.
func WriteParquet(w io.Writer, records []Record) error {
	pw := parquet.NewGenericWriter[Record](w, parquet.Compression(&parquet.Snappy))
	if len(records) > 0 {
		if _, err := pw.Write(records); err != nil {
			_ = pw.Close()
			return fmt.Errorf("write parquet rows: %w", err)
		}
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

// ReadParquet decodes records written by WriteParquet.
func ReadParquet(ra io.ReaderAt) ([]Record, error) {
	gr := parquet.NewGenericReader[Record](ra)
	defer func() { _ = gr.Close() }()

	out := make([]Record, 0, gr.NumRows())
	batch := make([]Record, parquetReadBatch)
	for {
		n, err := gr.Read(batch)
		if n > 0 {
			out = append(out, batch[:n]...)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read parquet rows: %w", err)
		}
	}
	return out, nil
}

const parquetReadBatch = 256
