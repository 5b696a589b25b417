package database

import "time"

// Connection pool defaults. Sync passes hold connections briefly, so a small
// pool with hourly recycling covers one instance comfortably.
const (
	DefaultMinConnections = 2
	DefaultMaxConnections = 10
	DefaultMaxIdleTime    = 30 * time.Minute
	DefaultMaxLifetime    = time.Hour
)
