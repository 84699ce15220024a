package inference

import "time"

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// Result is one detection pass over a single frame. It supersedes the
// previous result entirely; no history is kept here.
type Result struct {
	Alerts         []string
	ProcessedImage string
	Timestamp      int64
}
