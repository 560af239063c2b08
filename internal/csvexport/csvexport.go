// Package csvexport flattens analytics responses into CSV text for report
// downloads. Each report kind has a fixed header row and field order.
//
// Fields are joined with bare commas and rows with \n, with no quoting or
// escaping. That is safe while every exported field is numeric or
// enumerated; if a free-text field is ever added, proper CSV quoting must
// be added with it.
package csvexport

import (
	"strconv"
	"strings"

	"github.com/joao-cbj/silowatch/internal/analytics"
)

// Statistics renders a device statistics report as Métrica,Valor rows.
func Statistics(stats *analytics.DeviceStatistics) string {
	rows := [][]string{
		{"Métrica", "Valor"},
		{"Dispositivo", stats.DeviceID},
		{"Período Início", stats.Period.Start},
		{"Período Fim", stats.Period.End},
		{"Total Leituras", strconv.Itoa(stats.TotalReadings)},
		{"Temperatura Média", num(stats.Temperature.Mean)},
		{"Temperatura Mínima", num(stats.Temperature.Min)},
		{"Temperatura Máxima", num(stats.Temperature.Max)},
		{"Temperatura Desvio Padrão", num(stats.Temperature.StdDev)},
		{"Umidade Média", num(stats.Humidity.Mean)},
		{"Umidade Mínima", num(stats.Humidity.Min)},
		{"Umidade Máxima", num(stats.Humidity.Max)},
		{"Umidade Desvio Padrão", num(stats.Humidity.StdDev)},
	}
	return join(rows)
}

// Anomalies renders one row per detected anomaly.
func Anomalies(report *analytics.AnomalyReport) string {
	rows := [][]string{
		{"Timestamp", "Tipo", "Valor", "Z-Score", "Gravidade"},
	}
	for _, a := range report.Anomalies {
		rows = append(rows, []string{a.Timestamp, a.Kind, num(a.Value), num(a.ZScore), a.Severity})
	}
	return join(rows)
}

// Trends renders one row per metric with the regression outcome.
func Trends(report *analytics.TrendReport) string {
	rows := [][]string{
		{"Métrica", "Tendência", "Variação/Hora", "Variação/Dia", "R²", "Confiabilidade"},
		{
			"Temperatura",
			report.Temperature.Direction,
			num(report.Temperature.ChangePerHr),
			num(report.Temperature.ChangePerDay),
			num(report.Temperature.RSquared),
			report.Temperature.Reliability,
		},
		{
			"Umidade",
			report.Humidity.Direction,
			num(report.Humidity.ChangePerHr),
			num(report.Humidity.ChangePerDay),
			num(report.Humidity.RSquared),
			report.Humidity.Reliability,
		},
	}
	return join(rows)
}

// num renders an optional numeric field, empty when absent.
func num(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func join(rows [][]string) string {
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = strings.Join(row, ",")
	}
	return strings.Join(lines, "\n")
}
