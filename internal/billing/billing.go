// Package billing computes reservation cost from elapsed time and an hourly
// rate. It is pure: the same inputs always produce the same cost, so it serves
// both final settlement and live estimates (pass "now" as end).
package billing

import (
	"math"
	"time"
)

// Cost returns the charge for parking from start to end at hourlyRate,
// rounded to two decimal places. A negative duration (clock skew) clamps to
// zero rather than producing a negative charge.
func Cost(start, end time.Time, hourlyRate float64) float64 {
	hours := end.Sub(start).Hours()
	if hours < 0 {
		hours = 0
	}
	return math.Round(hours*hourlyRate*100) / 100
}
