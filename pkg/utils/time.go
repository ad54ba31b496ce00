package utils

import "time"

// SystemClock is the wall-clock implementation of the logical clock the
// simulation core is parameterized on. Tests substitute a fixed clock.
type SystemClock struct{}

// NowMillis returns the current Unix time in milliseconds.
func (SystemClock) NowMillis() int64 {
	return time.Now().UnixMilli()
}

// NowRFC3339 returns the current time in RFC3339 format.
func NowRFC3339() string {
	return time.Now().Format(time.RFC3339)
}
