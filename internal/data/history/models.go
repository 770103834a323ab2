package history

import "time"

const SchemaVersion = 1

// Record captures the outcome of one rewrite run. A row per run turns the
// database into a burndown ledger for gradual FQCN adoption.
type Record struct {
	SchemaVersion   int
	RunID           string
	Timestamp       time.Time
	CommitHash      string
	CommitTimestamp time.Time
	DryRun          bool
	KnownModules    int
	FilesScanned    int
	FilesChanged    int
	FilesFailed     int
	LinesScanned    int
	LinesMatched    int
	LinesRewritten  int
	Duration        time.Duration
}
