package octopus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/anicoll/solarroi/internal/pkg/model"
)

type fakeRatesSource struct {
	rates map[string][]Rate
	err   error
	calls int
}

func (f *fakeRatesSource) UnitRates(_ context.Context, _, _, day string) ([]Rate, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.rates[day], nil
}

func TestReconciler_Reconcile(t *testing.T) {
	logger := zaptest.NewLogger(t)
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)

	rates := &fakeRatesSource{
		rates: map[string][]Rate{
			"2024-01-15": {{ValidFrom: "2024-01-15T00:00:00Z", ValidTo: nil, ValueIncVAT: 25}},
			"2024-01-16": {{ValidFrom: "2024-01-16T00:00:00Z", ValidTo: nil, ValueIncVAT: 25}},
		},
	}
	source := &fakeConsumptionSource{
		samples: []model.ConsumptionSample{
			{IntervalStart: "2024-01-15T00:00:00Z", Quantity: 10.0},
			{IntervalStart: "2024-01-16T00:00:00Z", Quantity: 4.0},
		},
	}

	reconciler := NewReconciler(rates, NewAligner(source, logger), logger)

	result, err := reconciler.Reconcile(context.Background(), testMeter(), start, end)
	require.NoError(t, err)

	assert.Equal(t, model.MeterDirectionImport, result.Direction)

	cost, ok := result.MoneyFor("2024-01-15")
	assert.True(t, ok)
	assert.InDelta(t, 2.50, cost, 1e-9)

	quantity, ok := result.QuantityFor("2024-01-15")
	assert.True(t, ok)
	assert.InDelta(t, 10.0, quantity, 1e-9)

	cost, ok = result.MoneyFor("2024-01-16")
	assert.True(t, ok)
	assert.InDelta(t, 1.00, cost, 1e-9)

	assert.Len(t, result.PricesFor("2024-01-15"), 1)
	assert.Equal(t, 2, rates.calls)
}

func TestReconciler_NoAgreementDay(t *testing.T) {
	logger := zaptest.NewLogger(t)
	day := time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)

	// The meter's agreements start 2023-01-01, so this day predates them all
	// and even the fallback rule cannot rescue it.
	meter := testMeter()
	rates := &fakeRatesSource{}
	source := &fakeConsumptionSource{}
	reconciler := NewReconciler(rates, NewAligner(source, logger), logger)

	result, err := reconciler.Reconcile(context.Background(), meter, day, day)
	require.NoError(t, err)

	cost, ok := result.MoneyFor("2022-06-01")
	assert.True(t, ok)
	assert.Zero(t, cost)

	_, ok = result.QuantityFor("2022-06-01")
	assert.False(t, ok, "a day without a tariff has no consumption entry")

	// The day still carries a zero-priced period covering the whole day so
	// downstream no-PV costing finds a price.
	prices := result.PricesFor("2022-06-01")
	require.Len(t, prices, 1)
	assert.Zero(t, prices[0].Price)
	assert.True(t, prices[0].IsActive(time.Date(2022, 6, 1, 12, 0, 0, 0, time.UTC)))

	assert.Zero(t, rates.calls, "no rates lookup without a tariff code")
}

func TestReconciler_NoRatesForDay(t *testing.T) {
	logger := zaptest.NewLogger(t)
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	rates := &fakeRatesSource{rates: map[string][]Rate{}}
	source := &fakeConsumptionSource{}
	reconciler := NewReconciler(rates, NewAligner(source, logger), logger)

	result, err := reconciler.Reconcile(context.Background(), testMeter(), day, day)
	require.NoError(t, err)

	cost, ok := result.MoneyFor("2024-01-15")
	assert.True(t, ok)
	assert.Zero(t, cost)
	assert.Empty(t, result.PricesFor("2024-01-15"))
}

func TestReconciler_RatesErrorIsFatal(t *testing.T) {
	logger := zaptest.NewLogger(t)
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	rates := &fakeRatesSource{err: errors.New("boom")}
	source := &fakeConsumptionSource{}
	reconciler := NewReconciler(rates, NewAligner(source, logger), logger)

	_, err := reconciler.Reconcile(context.Background(), testMeter(), day, day)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1012345678901")
	assert.Contains(t, err.Error(), "2024-01-15")
}

func TestReconciliation_NilAccessors(t *testing.T) {
	var r *Reconciliation

	v, ok := r.MoneyFor("2024-01-15")
	assert.Zero(t, v)
	assert.False(t, ok)

	v, ok = r.QuantityFor("2024-01-15")
	assert.Zero(t, v)
	assert.False(t, ok)

	assert.Nil(t, r.PricesFor("2024-01-15"))
}
