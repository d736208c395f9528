package storage

import (
	"time"
)

// Session is a stored synthesis run
type Session struct {
	ID        int64
	StartTime time.Time
	DroneID   string
	Config    *string // JSON encoded run configuration, if any
}
