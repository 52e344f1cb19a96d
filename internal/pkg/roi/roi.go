package roi

import (
	"errors"
	"sort"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/anicoll/solarroi/internal/pkg/model"
	"github.com/anicoll/solarroi/internal/pkg/octopus"
	"github.com/anicoll/solarroi/pkg/utils"
)

// ErrNoReconciledDays means not a single day survived aggregation, so the
// per-day average would be 0/0. The run must fail loudly rather than report
// a silent zero.
var ErrNoReconciledDays = errors.New("no reconciled days to aggregate")

// Summary is the range-level rollup printed to the user.
type Summary struct {
	Roi       float64
	Days      int
	RoiPerDay float64
}

// Aggregate merges inverter telemetry with the import and export
// reconciliations into per-day records. Days with home consumption but no
// import cost data cannot be reconciled and are dropped: they count toward
// neither the total nor the average. Export-side absence is not a drop, it
// is an explicit zero.
func Aggregate(usage map[string]model.DayUsage, imp, exp *octopus.Reconciliation, logger *zap.Logger) (map[string]model.DailyRecord, Summary, error) {
	if logger == nil {
		logger = zap.L()
	}

	records := make(map[string]model.DailyRecord)
	totalRoi := 0.0

	days := lo.Keys(usage)
	sort.Strings(days)

	for _, day := range days {
		dayUsage := usage[day]

		cost, ok := imp.MoneyFor(day)
		if !ok {
			logger.Warn("no import cost data for day, skipping", zap.String("day", day))
			continue
		}
		gridImport, _ := imp.QuantityFor(day)

		noPvCost := 0.0
		for _, period := range dayUsage.Periods {
			for _, price := range imp.PricesFor(day) {
				if price.IsActive(period.ValidFrom) {
					noPvCost += price.Price * period.Consumption
					break
				}
			}
		}
		noPvCost = utils.Round2(noPvCost)

		income, _ := exp.MoneyFor(day)
		gridExport, _ := exp.QuantityFor(day)

		record := model.DailyRecord{
			Date:            day,
			HomeConsumption: dayUsage.TotalHomeConsumption,
			GridImport:      gridImport,
			GridExport:      gridExport,
			Cost:            cost,
			Income:          income,
			NoPvCost:        noPvCost,
			Roi:             (noPvCost - cost) + income,
		}
		records[day] = record
		totalRoi += record.Roi
	}

	if len(records) == 0 {
		return nil, Summary{}, ErrNoReconciledDays
	}

	summary := Summary{
		Roi:       utils.Round2(totalRoi),
		Days:      len(records),
		RoiPerDay: utils.Round2(totalRoi / float64(len(records))),
	}
	return records, summary, nil
}
