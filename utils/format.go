package utils

import (
	"fmt"
	"time"
)

// FormatFileSize converts a byte count to a human readable string.
func FormatFileSize(size int64) string {
	if size == 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB"}
	value := float64(size)
	i := 0
	for value >= 1024 && i < len(units)-1 {
		value /= 1024
		i++
	}
	return fmt.Sprintf("%.1f %s", value, units[i])
}

// FormatTimeRemaining renders the time left until expiry: "{d}d {h}h" when a
// day or more remains, "{h}h {m}m" when an hour or more, else "{m}m".
// A nil expiry is "Never", a past one "Expired".
func FormatTimeRemaining(expiresAt *time.Time, now time.Time) string {
	if expiresAt == nil {
		return "Never"
	}
	if !expiresAt.After(now) {
		return "Expired"
	}
	delta := expiresAt.Sub(now)
	days := int(delta.Hours()) / 24
	hours := int(delta.Hours()) % 24
	minutes := int(delta.Minutes()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
