package domain

// ProgressState is the status carried by a fetcher progress event
type ProgressState string

const (
	ProgressDownloading ProgressState = "downloading"
	ProgressFinished    ProgressState = "finished"
)

// ProgressEvent is a structured progress report from the fetcher.
// Empty display fields mean "not reported".
type ProgressEvent struct {
	State    ProgressState
	Percent  string
	Speed    string
	ETA      string
	Filename string
}

// Log line prefixes distinguishing fetcher severities
const (
	WarningPrefix = "WARNING: "
	ErrorPrefix   = "ERROR: "
)
