package firopt

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-fir-optimizer/internal/coeffs"
	"github.com/tphakala/go-fir-optimizer/internal/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func writeTaps(t *testing.T, dir, name string, taps []float64) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, coeffs.Save(path, taps, coeffs.WriteOptions{Precision: coeffs.FullPrecision}))
	return path
}

func TestRunBatch_IsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	good1 := writeTaps(t, dir, "a.txt", testutil.LowPass(31, 0.2))
	bad := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(bad, []byte("0.1\nnot-a-number\n"), 0o600))
	missing := filepath.Join(dir, "missing.txt")
	good2 := writeTaps(t, dir, "c.txt", testutil.LowPass(21, 0.3))

	core, logs := observer.New(zap.InfoLevel)
	var (
		mu   sync.Mutex
		done []string
	)
	cfg := BatchConfig{
		Options: DefaultOptions(),
		Workers: 2,
		Logger:  zap.New(core),
		Now:     func() time.Time { return time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC) },
		OnDone: func(path string, _ error) {
			mu.Lock()
			done = append(done, path)
			mu.Unlock()
		},
	}

	jobs := []Job{{Path: good1, GrowthFactor: 2}, {Path: bad}, {Path: missing}, {Path: good2}}
	report, err := RunBatch(context.Background(), jobs, cfg)
	require.NoError(t, err)

	require.Len(t, report.Records, 2)
	assert.Equal(t, good1, report.Records[0].Source)
	assert.Equal(t, 61, report.Records[0].NewTaps)
	assert.Equal(t, good2, report.Records[1].Source)

	require.Len(t, report.Failures, 2)
	assert.Equal(t, bad, report.Failures[0].Path)
	var perr *coeffs.ParseError
	assert.ErrorAs(t, report.Failures[0].Err, &perr)
	assert.Equal(t, missing, report.Failures[1].Path)
	assert.ErrorIs(t, report.Err(), os.ErrNotExist)

	assert.FileExists(t, OutputPath(good1))
	assert.FileExists(t, OutputPath(good2))
	assert.NoFileExists(t, OutputPath(bad))
	assert.Equal(t, OutputPath(good1), report.Records[0].Output)

	assert.ElementsMatch(t, []string{good1, bad, missing, good2}, done)
	assert.Equal(t, 2, logs.FilterMessage("optimized filter").Len())
}

func TestRunBatch_DryRun(t *testing.T) {
	dir := t.TempDir()
	path := writeTaps(t, dir, "a.txt", testutil.LowPass(31, 0.2))

	cfg := DefaultBatchConfig()
	cfg.DryRun = true
	report, err := RunBatch(context.Background(), []Job{{Path: path}}, cfg)
	require.NoError(t, err)

	require.Len(t, report.Records, 1)
	assert.Empty(t, report.Records[0].Output)
	assert.NoError(t, report.Err())
	assert.NoFileExists(t, OutputPath(path))
}

func TestRunBatch_CustomOutput(t *testing.T) {
	dir := t.TempDir()
	path := writeTaps(t, dir, "a.txt", testutil.LowPass(31, 0.2))
	out := filepath.Join(dir, "custom.txt")

	report, err := RunBatch(context.Background(), []Job{{Path: path, Output: out}}, DefaultBatchConfig())
	require.NoError(t, err)
	require.Len(t, report.Records, 1)
	assert.Equal(t, out, report.Records[0].Output)
	assert.FileExists(t, out)
}

// TestRunBatch_Ordering checks that records follow input order regardless of
// completion order.
func TestRunBatch_Ordering(t *testing.T) {
	dir := t.TempDir()
	var jobs []Job
	for i, n := range []int{301, 15, 151, 7, 63, 31, 201, 11} {
		name := filepath.Join(dir, string(rune('a'+i))+".txt")
		require.NoError(t, coeffs.Save(name, testutil.LowPass(n, 0.2), coeffs.WriteOptions{}))
		jobs = append(jobs, Job{Path: name})
	}

	cfg := DefaultBatchConfig()
	cfg.Workers = 4
	cfg.DryRun = true
	report, err := RunBatch(context.Background(), jobs, cfg)
	require.NoError(t, err)
	require.Len(t, report.Records, len(jobs))
	for i, rec := range report.Records {
		assert.Equal(t, jobs[i].Path, rec.Source)
	}
}

func TestRunBatch_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	path := writeTaps(t, dir, "a.txt", testutil.LowPass(31, 0.2))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := RunBatch(ctx, []Job{{Path: path}, {Path: path}}, DefaultBatchConfig())
	require.NoError(t, err)
	assert.Empty(t, report.Records)
	require.Len(t, report.Failures, 2)
	for _, f := range report.Failures {
		assert.ErrorIs(t, f.Err, context.Canceled)
	}
	assert.NoFileExists(t, OutputPath(path))
}

func TestRunBatch_InvalidConfig(t *testing.T) {
	cfg := DefaultBatchConfig()
	cfg.Workers = -1
	_, err := RunBatch(context.Background(), nil, cfg)
	assert.ErrorIs(t, err, ErrInvalidOptions)

	cfg = DefaultBatchConfig()
	cfg.Options.GrowthFactor = -3
	_, err = RunBatch(context.Background(), nil, cfg)
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestRunBatch_Empty(t *testing.T) {
	report, err := RunBatch(context.Background(), nil, DefaultBatchConfig())
	require.NoError(t, err)
	assert.Empty(t, report.Records)
	assert.Empty(t, report.Failures)
	assert.NoError(t, report.Err())
}
