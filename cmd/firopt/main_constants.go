package main

// Command-line defaults
const (
	defaultReportFormat = "text"
	defaultLogFormat    = "console"
)

// Backup naming
const (
	backupInfix       = ".bak."
	backupTimeLayout  = "20060102-150405"
	wavOutputSuffix   = ".opt.wav"
	backupFileMode    = 0o644
	reportFileMode    = 0o644
	progressBarPrefix = "Optimizing "
)
