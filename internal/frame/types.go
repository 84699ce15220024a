package frame

import "time"

// Frame is one encoded camera image, keyed to the stream that produced it.
type Frame struct {
	StreamID  string
	Timestamp int64
	Data      []byte
	Width     int
	Height    int
}

type CompressorConfig struct {
	MaxWidth int
	Quality  float64
}

type StoreConfig struct {
	FrameTTL time.Duration
}
