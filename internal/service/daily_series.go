package service

import (
	"time"

	"github.com/noah-isme/evalink-api/internal/dto"
)

const (
	defaultStatsDays = 7
	maxStatsDays     = 365
	dayLayout        = "2006-01-02"
)

// NormalizeStatsDays applies the default window to non-positive values and caps large ones.
func NormalizeStatsDays(days int) int {
	if days <= 0 {
		return defaultStatsDays
	}
	if days > maxStatsDays {
		return maxStatsDays
	}
	return days
}

// FillDailySeries expands sparse daily counts into exactly days points covering the
// calendar days that end with today, oldest first. Days without a count are zero.
func FillDailySeries(counts []dto.DailyEvaluationCount, days int, today time.Time) []dto.DailyEvaluationCount {
	days = NormalizeStatsDays(days)

	byDate := make(map[string]int64, len(counts))
	for _, count := range counts {
		byDate[count.EvaluationDate] += count.EvaluationCount
	}

	end := startOfDay(today)
	series := make([]dto.DailyEvaluationCount, 0, days)
	for offset := days - 1; offset >= 0; offset-- {
		date := end.AddDate(0, 0, -offset).Format(dayLayout)
		series = append(series, dto.DailyEvaluationCount{EvaluationDate: date, EvaluationCount: byDate[date]})
	}
	return series
}

func startOfDay(t time.Time) time.Time {
	utc := t.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}
