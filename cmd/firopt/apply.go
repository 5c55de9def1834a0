package main

import (
	"fmt"
	"io"
	"os"
	"time"

	firopt "github.com/tphakala/go-fir-optimizer"
	"go.uber.org/zap"
)

// applyResults replaces each optimized source with its output, copying the
// original to <source>.bak.<timestamp> first. A filter whose replacement
// fails is moved from the report's records to its failures.
func applyResults(report *firopt.Report, now time.Time, logger *zap.Logger) {
	stamp := now.Format(backupTimeLayout)
	kept := report.Records[:0]
	for _, rec := range report.Records {
		backup, err := replaceWithBackup(rec.Source, rec.Output, stamp)
		if err != nil {
			logger.Error("apply failed", zap.String("path", rec.Source), zap.Error(err))
			report.Failures = append(report.Failures, firopt.Failure{Path: rec.Source, Err: err})
			continue
		}
		logger.Info("replaced original", zap.String("path", rec.Source), zap.String("backup", backup))
		rec.Output = rec.Source
		kept = append(kept, rec)
	}
	report.Records = kept
}

// replaceWithBackup copies source to a timestamped backup and renames
// optimized over it. It returns the backup path.
func replaceWithBackup(source, optimized, stamp string) (string, error) {
	if optimized == "" {
		return "", fmt.Errorf("%s: nothing to apply", source)
	}
	backup := source + backupInfix + stamp
	if err := copyFile(source, backup); err != nil {
		return "", fmt.Errorf("backup %s: %w", source, err)
	}
	if err := os.Rename(optimized, source); err != nil {
		return "", fmt.Errorf("replace %s: %w", source, err)
	}
	return backup, nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, backupFileMode)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	_, err = io.Copy(out, in)
	return err
}
