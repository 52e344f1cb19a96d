package model

import "time"

type MeterDirection string

const (
	MeterDirectionImport MeterDirection = "import"
	MeterDirectionExport MeterDirection = "export"
)

// TariffPeriod is a priced interval of time. Price is held in pounds;
// construct via NewTariffPeriod which converts from the pence figure the
// retailer API reports.
type TariffPeriod struct {
	ValidFrom time.Time `json:"valid_from"`
	ValidTo   time.Time `json:"valid_to"`
	Price     float64   `json:"price"` // pounds per kWh
}

func NewTariffPeriod(validFrom, validTo time.Time, pricePence float64) TariffPeriod {
	return TariffPeriod{
		ValidFrom: validFrom,
		ValidTo:   validTo,
		Price:     pricePence / 100,
	}
}

// IsActive reports whether t falls within the period, inclusive at both ends.
func (p TariffPeriod) IsActive(t time.Time) bool {
	return !t.Before(p.ValidFrom) && !t.After(p.ValidTo)
}

// Agreement binds a meter to a tariff product for a date range. Dates are
// ISO date strings as returned by the retailer; ValidTo is nil for an
// open-ended agreement.
type Agreement struct {
	TariffCode string  `json:"tariff_code"`
	ValidFrom  string  `json:"valid_from"`
	ValidTo    *string `json:"valid_to"`
}

// Meter is one electricity meter point on the account. An account has at
// most one import and one export meter.
type Meter struct {
	Direction  MeterDirection `json:"direction"`
	MPAN       string         `json:"mpan"`
	Serial     string         `json:"serial"`
	Agreements []Agreement    `json:"agreements"`
}

// ConsumptionSample is a single metering sub-interval from the retailer.
// IntervalStart is kept as the raw ISO timestamp string so day comparisons
// match the feed exactly.
type ConsumptionSample struct {
	IntervalStart string  `json:"interval_start"`
	Quantity      float64 `json:"consumption"`
}

// Date returns the calendar-day portion of the sample's start instant.
func (s ConsumptionSample) Date() string {
	if len(s.IntervalStart) < 10 {
		return s.IntervalStart
	}
	return s.IntervalStart[:10]
}

// ConsumptionPeriod is a half-hourly home consumption figure from the
// inverter, normalised to UTC.
type ConsumptionPeriod struct {
	ValidFrom   time.Time `json:"valid_from"`
	ValidTo     time.Time `json:"valid_to"`
	Consumption float64   `json:"consumption"`
}

// DayUsage aggregates one calendar day of inverter telemetry.
type DayUsage struct {
	TotalHomeConsumption float64             `json:"total_home_consumption"`
	TotalGridImport      float64             `json:"total_grid_import"`
	Periods              []ConsumptionPeriod `json:"consumption_periods"`
}
