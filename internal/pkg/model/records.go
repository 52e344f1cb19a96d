package model

import (
	"fmt"
	"math"
	"time"
)

// DailyRecord is the per-day reconciliation result persisted keyed on Date.
// Monetary fields are pounds rounded to 2dp, energy fields kWh.
type DailyRecord struct {
	Date            string  `json:"date"`
	HomeConsumption float64 `json:"home_consumption"`
	GridImport      float64 `json:"grid_import"`
	GridExport      float64 `json:"grid_export"`
	Cost            float64 `json:"cost"`
	Income          float64 `json:"income"`
	NoPvCost        float64 `json:"no_pv_cost"`
	Roi             float64 `json:"roi"`
}

// Validate checks the record is safe to persist: a parseable date and finite
// numeric fields. Records failing validation are skipped with a warning, not
// treated as a run failure.
func (r DailyRecord) Validate() error {
	if _, err := time.Parse(time.DateOnly, r.Date); err != nil {
		return fmt.Errorf("invalid date %q: %w", r.Date, err)
	}
	fields := map[string]float64{
		"home_consumption": r.HomeConsumption,
		"grid_import":      r.GridImport,
		"grid_export":      r.GridExport,
		"cost":             r.Cost,
		"income":           r.Income,
		"no_pv_cost":       r.NoPvCost,
		"roi":              r.Roi,
	}
	for name, v := range fields {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("field %s is not finite", name)
		}
	}
	return nil
}

// ForecastRecord is one solar generation forecast period, persisted keyed on
// PeriodEnd. The estimate is passed through from the forecaster unmodified.
type ForecastRecord struct {
	PeriodEnd  time.Time `json:"period_end"`
	PvEstimate float64   `json:"pv_estimate"`
}
