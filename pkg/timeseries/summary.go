package timeseries

import "gonum.org/v1/gonum/stat"

// SeriesSummary describes a bucketed series for display next to the chart.
// It is a presentation convenience; statistical analysis proper lives in
// the analytics service.
type SeriesSummary struct {
	Buckets        int     `json:"buckets"`
	Samples        int     `json:"amostras"`
	TempMin        float64 `json:"temperatura_min"`
	TempMax        float64 `json:"temperatura_max"`
	TempMean       float64 `json:"temperatura_media"`
	TempStdDev     float64 `json:"temperatura_desvio"`
	HumidityMin    float64 `json:"umidade_min"`
	HumidityMax    float64 `json:"umidade_max"`
	HumidityMean   float64 `json:"umidade_media"`
	HumidityStdDev float64 `json:"umidade_desvio"`
}

// Summarize computes min/max/mean/stddev over the bucket averages. Returns
// the zero summary for an empty series.
func Summarize(buckets []Bucket) SeriesSummary {
	if len(buckets) == 0 {
		return SeriesSummary{}
	}

	temps := make([]float64, len(buckets))
	hums := make([]float64, len(buckets))
	samples := 0
	for i, b := range buckets {
		temps[i] = b.AvgTemperature
		hums[i] = b.AvgHumidity
		samples += b.SampleCount
	}

	s := SeriesSummary{
		Buckets:      len(buckets),
		Samples:      samples,
		TempMin:      temps[0],
		TempMax:      temps[0],
		HumidityMin:  hums[0],
		HumidityMax:  hums[0],
		TempMean:     roundTenth(stat.Mean(temps, nil)),
		HumidityMean: roundTenth(stat.Mean(hums, nil)),
	}
	if len(buckets) > 1 {
		s.TempStdDev = roundTenth(stat.StdDev(temps, nil))
		s.HumidityStdDev = roundTenth(stat.StdDev(hums, nil))
	}
	for i := 1; i < len(buckets); i++ {
		if temps[i] < s.TempMin {
			s.TempMin = temps[i]
		}
		if temps[i] > s.TempMax {
			s.TempMax = temps[i]
		}
		if hums[i] < s.HumidityMin {
			s.HumidityMin = hums[i]
		}
		if hums[i] > s.HumidityMax {
			s.HumidityMax = hums[i]
		}
	}
	return s
}
