package timeseries

import (
	"math"
	"sort"
	"time"
)

// BucketPolicy is the rule for flooring a reading's timestamp to the start
// of its aggregation window.
type BucketPolicy int

const (
	// Bucket30Min floors minutes to the nearest lower multiple of 30.
	Bucket30Min BucketPolicy = iota
	// BucketHour floors to the top of the hour.
	BucketHour
	// BucketDay floors to local midnight.
	BucketDay
)

// String returns a human-readable policy name.
func (p BucketPolicy) String() string {
	switch p {
	case Bucket30Min:
		return "30min"
	case BucketHour:
		return "hour"
	case BucketDay:
		return "day"
	}
	return "unknown"
}

// FloorTime returns the bucket start for a timestamp under this policy.
// Seconds and sub-second precision are always zeroed.
func (p BucketPolicy) FloorTime(t time.Time) time.Time {
	switch p {
	case Bucket30Min:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), (t.Minute()/30)*30, 0, 0, t.Location())
	case BucketDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	}
}

// Bucket is an aggregated summary of all readings whose timestamps floor to
// the same window start. Averages are true arithmetic means of the members,
// rounded to one decimal place.
type Bucket struct {
	BucketStart    time.Time `json:"timestamp"`
	AvgTemperature float64   `json:"temperatura"`
	AvgHumidity    float64   `json:"umidade"`
	SampleCount    int       `json:"amostras"`
}

type accumulator struct {
	start   time.Time
	tempSum float64
	humSum  float64
	count   int
}

// Aggregate buckets readings by the policy's floored timestamp and computes
// per-bucket averages. Every input reading lands in exactly one bucket;
// readings sharing a floored key collapse into the same bucket. Input order
// does not affect the averages or counts, only the emission order; callers
// that chart the result must sort with SortBuckets first. An empty input
// yields an empty (non-nil) slice.
func Aggregate(readings []Reading, policy BucketPolicy) []Bucket {
	grouped := make(map[int64]*accumulator)

	for _, r := range readings {
		start := policy.FloorTime(r.Timestamp)
		key := start.Unix()
		acc, ok := grouped[key]
		if !ok {
			acc = &accumulator{start: start}
			grouped[key] = acc
		}
		acc.tempSum += r.Temperature
		acc.humSum += r.Humidity
		acc.count++
	}

	buckets := make([]Bucket, 0, len(grouped))
	for _, acc := range grouped {
		buckets = append(buckets, Bucket{
			BucketStart:    acc.start,
			AvgTemperature: roundTenth(acc.tempSum / float64(acc.count)),
			AvgHumidity:    roundTenth(acc.humSum / float64(acc.count)),
			SampleCount:    acc.count,
		})
	}
	return buckets
}

// SortBuckets orders buckets by ascending bucket start, in place.
func SortBuckets(buckets []Bucket) {
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].BucketStart.Before(buckets[j].BucketStart)
	})
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
