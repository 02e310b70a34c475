package web

import (
	"fmt"
	"strings"
	"time"
)

// FormatTotalConsumption renders a Wh total as kWh with two decimals.
func FormatTotalConsumption(wh float64) string {
	return fmt.Sprintf("%.2f kWh", wh/1000)
}

// FormatPeakDemand renders a kW peak with one decimal.
func FormatPeakDemand(kw float64) string {
	return fmt.Sprintf("%.1f kW", kw)
}

// FormatPeakHour reformats a 24-hour "HH:MM-HH:MM" window as two 12-hour
// clock labels, e.g. "14:00-16:00" -> "02:00 PM - 04:00 PM". The literal
// end time "24:00" maps to "12:00 AM". Anything that does not parse is
// returned unchanged.
func FormatPeakHour(window string) string {
	parts := strings.Split(window, "-")
	if len(parts) != 2 {
		return window
	}
	from, err := formatClock(strings.TrimSpace(parts[0]))
	if err != nil {
		return window
	}
	to, err := formatClock(strings.TrimSpace(parts[1]))
	if err != nil {
		return window
	}
	return from + " - " + to
}

func formatClock(hhmm string) (string, error) {
	if hhmm == "24:00" {
		return "12:00 AM", nil
	}
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return "", err
	}
	return t.Format("03:04 PM"), nil
}
