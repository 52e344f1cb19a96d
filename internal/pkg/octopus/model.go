package octopus

// Grouping selects how the retailer buckets consumption samples.
type Grouping string

const (
	// GroupingHalfHour is the API default: one sample per half-hourly
	// settlement period.
	GroupingHalfHour Grouping = ""
	GroupingDay      Grouping = "day"
)

// Rate is one raw standard-unit-rate sub-period as returned by the retailer.
// Timestamps stay as the feed's strings: the aligner's boundary rules compare
// textual dates before anything is parsed.
type Rate struct {
	ValidFrom     string  `json:"valid_from"`
	ValidTo       *string `json:"valid_to"`
	ValueIncVAT   float64 `json:"value_inc_vat"` // pence per kWh
	PaymentMethod *string `json:"payment_method"`
}

type accountResponse struct {
	Properties []struct {
		ElectricityMeterPoints []meterPoint `json:"electricity_meter_points"`
	} `json:"properties"`
}

type meterPoint struct {
	MPAN     string `json:"mpan"`
	IsExport bool   `json:"is_export"`
	Meters   []struct {
		SerialNumber string `json:"serial_number"`
	} `json:"meters"`
	Agreements []agreementRecord `json:"agreements"`
}

type agreementRecord struct {
	TariffCode string  `json:"tariff_code"`
	ValidFrom  string  `json:"valid_from"`
	ValidTo    *string `json:"valid_to"`
}

type unitRatesResponse struct {
	Count   int    `json:"count"`
	Results []Rate `json:"results"`
}

type consumptionResponse struct {
	Count   int     `json:"count"`
	Next    *string `json:"next"`
	Results []struct {
		IntervalStart string  `json:"interval_start"`
		Consumption   float64 `json:"consumption"`
	} `json:"results"`
}
