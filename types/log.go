package types

import "time"

// LogEntry is the in-memory form of a request log before the async logger persists it.
type LogEntry struct {
	Method          string
	URL             string
	IPAddress       string
	AccountID       *uint
	RequestBody     string
	ResponseBody    string
	RequestHeaders  string
	ResponseHeaders string
	StatusCode      int
	DurationMs      int64
	CreatedAt       time.Time
}
