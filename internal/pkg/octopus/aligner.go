package octopus

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/anicoll/solarroi/internal/pkg/model"
)

type consumptionSource interface {
	Consumption(ctx context.Context, mpan, serial, from, to string, groupBy Grouping) ([]model.ConsumptionSample, error)
}

// Aligner prices a day's consumption against that day's tariff sub-periods.
type Aligner struct {
	consumption consumptionSource
	logger      *zap.Logger
}

func NewAligner(consumption consumptionSource, logger *zap.Logger) *Aligner {
	if logger == nil {
		logger = zap.L()
	}
	return &Aligner{
		consumption: consumption,
		logger:      logger,
	}
}

// AlignResult is one day's accumulation. CostPence stays in the source minor
// unit; the caller converts and rounds once per day.
type AlignResult struct {
	Periods   []model.TariffPeriod
	CostPence float64
	Quantity  float64
	Samples   int
}

// Align walks the raw rate sub-periods for day, normalises each into a
// closed TariffPeriod and accumulates quantity * unit price over the
// consumption samples inside that period. Samples whose start date is not
// the target day are dropped: the clamped windows can brush the neighbouring
// days and those samples belong to another day's accumulation.
func (a *Aligner) Align(ctx context.Context, meter *model.Meter, day time.Time, rates []Rate) (AlignResult, error) {
	result := AlignResult{}
	dayISO := day.Format(time.DateOnly)

	for _, rate := range rates {
		period, err := clampRate(rate, day)
		if err != nil {
			return AlignResult{}, err
		}
		result.Periods = append(result.Periods, period)

		samples, err := a.consumption.Consumption(
			ctx,
			meter.MPAN,
			meter.Serial,
			period.ValidFrom.Format(time.RFC3339),
			period.ValidTo.Format(time.RFC3339),
			GroupingDay,
		)
		if err != nil {
			return AlignResult{}, err
		}
		if len(samples) == 0 {
			a.logger.Warn("no consumption samples in tariff period",
				zap.String("day", dayISO),
				zap.String("mpan", meter.MPAN),
				zap.Time("valid_from", period.ValidFrom),
				zap.Time("valid_to", period.ValidTo),
			)
			continue
		}

		for _, sample := range samples {
			if sample.Date() != dayISO {
				continue
			}
			result.CostPence += sample.Quantity * rate.ValueIncVAT
			result.Quantity += sample.Quantity
			result.Samples++
		}
	}
	return result, nil
}

// clampRate normalises a raw rate's boundaries to the target day. A
// valid_from dated neither on the day nor the previous day is clamped to
// 00:00:00; a missing valid_to, or one dated off the day, is clamped to
// 23:59:59. A valid_to on the day loses one second: the feed's valid_to is
// exclusive and the closed period must not double count the boundary.
func clampRate(rate Rate, day time.Time) (model.TariffPeriod, error) {
	dayISO := day.Format(time.DateOnly)
	prevISO := day.AddDate(0, 0, -1).Format(time.DateOnly)

	validFrom := dayStart(day)
	if strings.Contains(rate.ValidFrom, dayISO) || strings.Contains(rate.ValidFrom, prevISO) {
		parsed, err := time.Parse(time.RFC3339, rate.ValidFrom)
		if err != nil {
			return model.TariffPeriod{}, err
		}
		validFrom = parsed
	}

	validTo := dayEnd(day)
	if rate.ValidTo != nil && strings.Contains(*rate.ValidTo, dayISO) {
		parsed, err := time.Parse(time.RFC3339, *rate.ValidTo)
		if err != nil {
			return model.TariffPeriod{}, err
		}
		validTo = parsed.Add(-time.Second)
	}

	return model.NewTariffPeriod(validFrom, validTo, rate.ValueIncVAT), nil
}

func dayStart(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}

func dayEnd(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, time.UTC)
}
