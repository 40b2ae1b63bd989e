package domain

import (
	"fmt"
	"math"
)

// FormatDuration renders seconds as "1h 5m", "12 min" or "40 sec".
func FormatDuration(seconds float64) string {
	if math.IsNaN(seconds) || seconds <= 0 {
		return "Unknown"
	}

	total := int(math.Floor(seconds))
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	if minutes > 0 {
		return fmt.Sprintf("%d min", minutes)
	}
	return fmt.Sprintf("%d sec", secs)
}

// FormatDistance renders kilometers with two decimals.
func FormatDistance(km float64) string {
	if math.IsNaN(km) || km <= 0 {
		return "Unknown"
	}
	return fmt.Sprintf("%.2f km", km)
}
