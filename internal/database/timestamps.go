package database

import (
	"database/sql"
	"time"
)

// Timestamps are stored as unix milliseconds in BIGINT columns so both
// dialects agree on ordering and precision.

// Millis converts t for storage.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMillis converts a stored value back to UTC time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// NullMillis converts an optional time for storage.
func NullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

// TimePtr converts an optional stored value.
func TimePtr(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := FromMillis(v.Int64)
	return &t
}

// Now returns the current time at storage precision.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
