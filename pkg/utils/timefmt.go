package utils

import (
	"fmt"
	"time"
)

// FormatTimestamp 相对时间：<1h 按分钟、<1d 按小时、<7d 按天，更早显示日期
func FormatTimestamp(ts, now time.Time) string {
	diff := now.Sub(ts)
	if diff < 0 {
		diff = 0
	}
	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff/time.Minute))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff/time.Hour))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff/(24*time.Hour)))
	}
	return ts.Format("Jan 2, 2006")
}
