package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/anicoll/solarroi/internal/pkg/model"
	"github.com/anicoll/solarroi/internal/pkg/octopus"
)

// Mock implementations of the command-level service interfaces. Each method
// delegates to its func field when set and falls back to a harmless default.

type accountServiceMock struct {
	AccountFunc func(ctx context.Context) (*model.Meter, *model.Meter, error)
}

func (m *accountServiceMock) Account(ctx context.Context) (*model.Meter, *model.Meter, error) {
	if m.AccountFunc != nil {
		return m.AccountFunc(ctx)
	}
	return nil, nil, errors.New("mocked Account not implemented")
}

type reconcilerServiceMock struct {
	ReconcileFunc func(ctx context.Context, meter *model.Meter, start, end time.Time) (*octopus.Reconciliation, error)
}

func (m *reconcilerServiceMock) Reconcile(ctx context.Context, meter *model.Meter, start, end time.Time) (*octopus.Reconciliation, error) {
	if m.ReconcileFunc != nil {
		return m.ReconcileFunc(ctx, meter, start, end)
	}
	return nil, errors.New("mocked Reconcile not implemented")
}

type telemetryServiceMock struct {
	EnergyFlowsFunc func(ctx context.Context, startDate, endDate string) (map[string]model.DayUsage, error)
}

func (m *telemetryServiceMock) EnergyFlows(ctx context.Context, startDate, endDate string) (map[string]model.DayUsage, error) {
	if m.EnergyFlowsFunc != nil {
		return m.EnergyFlowsFunc(ctx, startDate, endDate)
	}
	return nil, errors.New("mocked EnergyFlows not implemented")
}

type forecastServiceMock struct {
	ForecastsFunc func(ctx context.Context) ([]model.ForecastRecord, error)
}

func (m *forecastServiceMock) Forecasts(ctx context.Context) ([]model.ForecastRecord, error) {
	if m.ForecastsFunc != nil {
		return m.ForecastsFunc(ctx)
	}
	return nil, errors.New("mocked Forecasts not implemented")
}

type storageServiceMock struct {
	UpsertForecastFunc func(ctx context.Context, record model.ForecastRecord) error
	DailyRecordsFunc   func(ctx context.Context, from, to string) ([]model.DailyRecord, error)
	CleanupFunc        func(ctx context.Context) error
	CloseFunc          func() error
}

func (m *storageServiceMock) UpsertForecast(ctx context.Context, record model.ForecastRecord) error {
	if m.UpsertForecastFunc != nil {
		return m.UpsertForecastFunc(ctx, record)
	}
	return nil
}

func (m *storageServiceMock) DailyRecords(ctx context.Context, from, to string) ([]model.DailyRecord, error) {
	if m.DailyRecordsFunc != nil {
		return m.DailyRecordsFunc(ctx, from, to)
	}
	return nil, nil
}

func (m *storageServiceMock) Cleanup(ctx context.Context) error {
	if m.CleanupFunc != nil {
		return m.CleanupFunc(ctx)
	}
	return nil
}

func (m *storageServiceMock) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}
