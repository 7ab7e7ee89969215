package weather

// ForecastSummary condenses the forecast entries of a report for the
// details panel.
type ForecastSummary struct {
	MinTemperature float64   `json:"minTemperatureC"`
	MaxTemperature float64   `json:"maxTemperatureC"`
	AvgTemperature float64   `json:"avgTemperatureC"`
	AvgHumidity    float64   `json:"avgHumidityPercent"`
	AvgWindSpeed   float64   `json:"avgWindSpeed"`
	Condition      Condition `json:"condition"`
}

// SummarizeForecast averages the numeric fields of entries and picks the
// majority condition (earliest entry wins ties). ok is false for no entries.
func SummarizeForecast(entries []ForecastEntry) (summary ForecastSummary, ok bool) {
	if len(entries) == 0 {
		return ForecastSummary{}, false
	}

	var (
		sumTemp     float64
		sumHumidity float64
		sumWind     float64
	)

	minTemp, maxTemp := entries[0].Temperature, entries[0].Temperature
	conditionCounts := make(map[Condition]int)
	order := make([]Condition, 0, len(entries))

	for _, e := range entries {
		sumTemp += e.Temperature
		sumHumidity += float64(e.Humidity)
		sumWind += e.WindSpeed

		if e.Temperature < minTemp {
			minTemp = e.Temperature
		}
		if e.Temperature > maxTemp {
			maxTemp = e.Temperature
		}

		if conditionCounts[e.Condition] == 0 {
			order = append(order, e.Condition)
		}
		conditionCounts[e.Condition]++
	}

	n := float64(len(entries))

	// Pick majority condition.
	bestCond := ConditionOther
	bestCount := 0
	for _, cond := range order {
		if conditionCounts[cond] > bestCount {
			bestCount = conditionCounts[cond]
			bestCond = cond
		}
	}

	return ForecastSummary{
		MinTemperature: minTemp,
		MaxTemperature: maxTemp,
		AvgTemperature: sumTemp / n,
		AvgHumidity:    sumHumidity / n,
		AvgWindSpeed:   sumWind / n,
		Condition:      bestCond,
	}, true
}
