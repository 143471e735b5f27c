package utils

import "strings"

// ReadingSpeedWPM is the assumed reading speed for Arabic prose.
const ReadingSpeedWPM = 180

// EstimateMinutes returns ceil(words / ReadingSpeedWPM). An empty body
// reads in 0 minutes; any other body takes at least 1.
func EstimateMinutes(body string) int {
	if strings.TrimSpace(body) == "" {
		return 0
	}
	words := CountWords(body)
	minutes := (words + ReadingSpeedWPM - 1) / ReadingSpeedWPM
	if minutes < 1 {
		return 1
	}
	return minutes
}
