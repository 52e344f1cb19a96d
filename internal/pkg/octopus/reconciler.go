package octopus

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/anicoll/solarroi/internal/pkg/model"
	"github.com/anicoll/solarroi/pkg/utils"
)

type ratesSource interface {
	UnitRates(ctx context.Context, productCode, tariffCode, day string) ([]Rate, error)
}

// Reconciliation is one meter's reconciled date range. Days are keyed by ISO
// date. A day missing from Money or Quantity means the retailer had no data
// for it, which is distinct from a present zero; use the For accessors'
// second return to tell the two apart.
type Reconciliation struct {
	Direction model.MeterDirection
	Prices    map[string][]model.TariffPeriod
	Quantity  map[string]float64
	Money     map[string]float64
}

// MoneyFor returns the day's expenditure (import meters) or income (export
// meters) in pounds.
func (r *Reconciliation) MoneyFor(day string) (float64, bool) {
	if r == nil {
		return 0, false
	}
	v, ok := r.Money[day]
	return v, ok
}

// QuantityFor returns the day's grid import or export in kWh.
func (r *Reconciliation) QuantityFor(day string) (float64, bool) {
	if r == nil {
		return 0, false
	}
	v, ok := r.Quantity[day]
	return v, ok
}

// PricesFor returns the day's tariff sub-periods.
func (r *Reconciliation) PricesFor(day string) []model.TariffPeriod {
	if r == nil {
		return nil
	}
	return r.Prices[day]
}

// Reconciler walks a date range for one meter, resolving the agreement and
// pricing the day's consumption against its tariff sub-periods.
type Reconciler struct {
	rates   ratesSource
	aligner *Aligner
	logger  *zap.Logger
}

func NewReconciler(rates ratesSource, aligner *Aligner, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.L()
	}
	return &Reconciler{
		rates:   rates,
		aligner: aligner,
		logger:  logger,
	}
}

// Reconcile processes every calendar day in [start, end] inclusive. Days with
// no resolvable tariff or no published rates are recorded at zero cost and do
// not abort the range; collaborator failures do, carrying the mpan and day.
func (r *Reconciler) Reconcile(ctx context.Context, meter *model.Meter, start, end time.Time) (*Reconciliation, error) {
	result := &Reconciliation{
		Direction: meter.Direction,
		Prices:    make(map[string][]model.TariffPeriod),
		Quantity:  make(map[string]float64),
		Money:     make(map[string]float64),
	}

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		dayISO := day.Format(time.DateOnly)

		tariffCode, ok := ResolveTariff(meter.Agreements, dayISO)
		if !ok {
			r.logger.Warn("could not determine tariff code",
				zap.String("day", dayISO),
				zap.String("mpan", meter.MPAN),
			)
			result.Money[dayISO] = 0
			result.Prices[dayISO] = []model.TariffPeriod{
				model.NewTariffPeriod(dayStart(day), dayStart(day.AddDate(0, 0, 1)), 0),
			}
			continue
		}

		productCode, err := ProductCode(tariffCode)
		if err != nil {
			r.logger.Warn("could not derive product code",
				zap.String("day", dayISO),
				zap.String("mpan", meter.MPAN),
				zap.Error(err),
			)
			result.Money[dayISO] = 0
			result.Prices[dayISO] = []model.TariffPeriod{
				model.NewTariffPeriod(dayStart(day), dayStart(day.AddDate(0, 0, 1)), 0),
			}
			continue
		}
		r.logger.Debug("resolved tariff",
			zap.String("day", dayISO),
			zap.String("tariff_code", tariffCode),
			zap.String("product_code", productCode),
		)

		rates, err := r.rates.UnitRates(ctx, productCode, tariffCode, dayISO)
		if err != nil {
			return nil, fmt.Errorf("unit rates for mpan %s on %s: %w", meter.MPAN, dayISO, err)
		}
		if len(rates) == 0 {
			r.logger.Error("no prices for day",
				zap.String("day", dayISO),
				zap.String("mpan", meter.MPAN),
			)
			result.Money[dayISO] = 0
			result.Prices[dayISO] = []model.TariffPeriod{}
			continue
		}

		aligned, err := r.aligner.Align(ctx, meter, day, rates)
		if err != nil {
			return nil, fmt.Errorf("align consumption for mpan %s on %s: %w", meter.MPAN, dayISO, err)
		}

		result.Prices[dayISO] = aligned.Periods
		result.Money[dayISO] = utils.Round2(aligned.CostPence / 100)
		if aligned.Samples > 0 {
			result.Quantity[dayISO] = aligned.Quantity
		}
	}

	return result, nil
}
