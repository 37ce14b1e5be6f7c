package utils

import (
	"fmt"
	"strconv"
	"time"
)

// Number formats an integer with thousands separators: 1234567 -> "1,234,567"
func Number(n int64) string {
	s := strconv.FormatInt(n, 10)

	sign := ""
	if n < 0 {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}

	out := make([]byte, 0, len(s)+len(s)/3)
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	return sign + string(out)
}

// Bytes formats a size with a binary unit suffix: 1536 -> "1.5KiB"
func Bytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}

	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// Duration formats a duration for summaries.
// Examples:
//   - under a second: "350ms"
//   - under a minute: "5.2s"
//   - under an hour:  "3m5.2s"
//   - otherwise:      "2h15m"
func Duration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		minutes := int(d.Minutes())
		return fmt.Sprintf("%dm%.1fs", minutes, d.Seconds()-float64(minutes*60))
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

// Rate formats a per-second rate with K/M suffixes
func Rate(rate float64) string {
	switch {
	case rate < 1000:
		return fmt.Sprintf("%.2f", rate)
	case rate < 1000000:
		return fmt.Sprintf("%.2fK", rate/1000)
	default:
		return fmt.Sprintf("%.2fM", rate/1000000)
	}
}
