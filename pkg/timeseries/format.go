package timeseries

import "time"

// Axis label layouts by period. Short windows keep the time of day; longer
// windows collapse to dates.
const (
	layoutTimeOnly    = "15:04"
	layoutDayAndTime  = "02/01 15:04"
	layoutDateCompact = "02/01/06"
)

// FormatLabel renders a bucket start as a chart axis label appropriate for
// the selected period.
func FormatLabel(t time.Time, period Period) string {
	switch period {
	case Period1Day:
		return t.Format(layoutTimeOnly)
	case Period5Days:
		return t.Format(layoutDayAndTime)
	default:
		return t.Format(layoutDateCompact)
	}
}
