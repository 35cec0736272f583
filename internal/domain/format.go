package domain

import (
	"fmt"
	"time"
)

func FormatDuration(totalSeconds uint) string {
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

func FormatDistance(km float64) string {
	return fmt.Sprintf("%.2f", km)
}

func FormatClock(t time.Time) string {
	return t.Format("Monday, January 2, 2006") + " | " + t.Format("15:04:05")
}
