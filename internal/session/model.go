package session

import (
	"strconv"
	"time"

	"github.com/eleven-am/pathsense/internal/shared"
)

type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
	StatusError  Status = "error"
)

// Record is the persisted summary of one client stream.
type Record struct {
	ID              string             `gorm:"primaryKey" json:"id"`
	RemoteAddr      string             `json:"remote_addr,omitempty"`
	Status          Status             `gorm:"index" json:"status"`
	StartedAt       time.Time          `json:"started_at"`
	EndedAt         *time.Time         `json:"ended_at,omitempty"`
	FramesProcessed int64              `json:"frames_processed"`
	AlertsRaised    int64              `json:"alerts_raised"`
	Utterances      int64              `json:"utterances"`
	AvgLatencyMs    int64              `json:"avg_latency_ms"`
	LastAlerts      shared.StringSlice `gorm:"type:text" json:"last_alerts,omitempty"`
}

type Metrics struct {
	Date         string `json:"date"`
	Hour         int    `json:"hour"`
	Streams      int64  `json:"streams"`
	Frames       int64  `json:"frames"`
	Alerts       int64  `json:"alerts"`
	Utterances   int64  `json:"utterances"`
	ErrorCount   int64  `json:"error_count"`
	AvgLatencyMs int64  `json:"avg_latency_ms"`
}

func MetricsRedisKey(date string, hour int) string {
	return "pathsense:metrics:" + date + ":" + strconv.Itoa(hour)
}
