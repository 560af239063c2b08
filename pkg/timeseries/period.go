package timeseries

// Period is the user-facing choice of how much history to chart. The string
// values match the gateway dashboard's period selector.
type Period string

const (
	Period1Day   Period = "1d"
	Period5Days  Period = "5d"
	Period1Month Period = "1m"
	Period1Year  Period = "1a"
	Period5Years Period = "5a"
	PeriodMax    Period = "max"
)

// fallbackLookbackHours is used for the open-ended "max" period and any
// unrecognized selector.
const fallbackLookbackHours = 8760

// LookbackHours maps a period to the number of hours of history to request
// from the gateway.
func (p Period) LookbackHours() int {
	switch p {
	case Period1Day:
		return 24
	case Period5Days:
		return 120
	case Period1Month:
		return 720
	case Period1Year:
		return 8760
	case Period5Years:
		return 43800
	default:
		return fallbackLookbackHours
	}
}

// Policy returns the bucket width used when charting this period. Width
// grows with the window so the chart stays at roughly 30-48 points
// regardless of period.
func (p Period) Policy() BucketPolicy {
	switch p {
	case Period1Day:
		return Bucket30Min
	case Period5Days:
		return BucketHour
	default:
		return BucketDay
	}
}

// Valid reports whether p is one of the known period selectors.
func (p Period) Valid() bool {
	switch p {
	case Period1Day, Period5Days, Period1Month, Period1Year, Period5Years, PeriodMax:
		return true
	}
	return false
}
